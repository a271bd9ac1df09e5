package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/device/devicetest"
)

type fakeResolver struct {
	cfg device.Config
	err error
}

func (r *fakeResolver) Resolve(_ context.Context, _ string) (device.Config, error) {
	return r.cfg, r.err
}

func runSession(t *testing.T, backend device.Backend, resolver Resolver, input string) (int, []map[string]any, string) {
	t.Helper()
	var out bytes.Buffer
	code := Run(context.Background(), Options{
		Selector: "Living Room",
		Resolver: resolver,
		Backend:  backend,
	}, bufio.NewReader(strings.NewReader(input)), NewWriter(&out))

	var lines []map[string]any
	for _, l := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(l), &m); err != nil {
			t.Fatalf("output line %q is not JSON: %v", l, err)
		}
		lines = append(lines, m)
	}
	return code, lines, out.String()
}

func livingRoom() *fakeResolver {
	return &fakeResolver{cfg: device.Config{Identifier: "dev-1", Name: "Living Room"}}
}

func TestRun_CloseFirst(t *testing.T) {
	h := &devicetest.Handle{}
	code, lines, raw := runSession(t, &devicetest.Backend{Handle: h}, livingRoom(), `{"type":"close"}`+"\n")

	if code != ExitGraceful {
		t.Errorf("expected exit %d, got %d", ExitGraceful, code)
	}
	want := `{"status":"ready","identifier":"dev-1","name":"Living Room"}` + "\n" + `{"status":"closing"}` + "\n"
	if raw != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", raw, want)
	}
	if len(lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(lines))
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestRun_MalformedInputDoesNotAbort(t *testing.T) {
	h := &devicetest.Handle{}
	input := "not json\n" + `{"type":"dance"}` + "\n" + `{"type":"close"}` + "\n"
	code, lines, _ := runSession(t, &devicetest.Backend{Handle: h}, livingRoom(), input)

	if code != ExitGraceful {
		t.Errorf("expected graceful exit, got %d", code)
	}
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %v", len(lines), lines)
	}
	if lines[1]["error"] != "invalid json" {
		t.Errorf("expected invalid json, got %v", lines[1])
	}
	if lines[2]["error"] != "unknown message type" {
		t.Errorf("expected unknown message type, got %v", lines[2])
	}
	if lines[3]["status"] != StatusClosing {
		t.Errorf("expected closing, got %v", lines[3])
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestRun_UnexpectedFailureIsFatal(t *testing.T) {
	h := &devicetest.Handle{Err: device.ErrConnectionLost}
	input := `{"type":"command","command":"up"}` + "\n" + `{"type":"close"}` + "\n"
	code, lines, _ := runSession(t, &devicetest.Backend{Handle: h}, livingRoom(), input)

	if code != ExitFatal {
		t.Errorf("expected exit %d, got %d", ExitFatal, code)
	}
	if len(lines) != 2 {
		t.Fatalf("expected ready and one error, got %v", lines)
	}
	if lines[1]["fatal"] != true || lines[1]["status"] != StatusError || lines[1]["command"] != "up" {
		t.Errorf("expected fatal command error, got %v", lines[1])
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestRun_PowerConnectionLostIsFatal(t *testing.T) {
	h := &devicetest.Handle{Err: device.ErrConnectionLost}
	input := `{"type":"power","action":"on"}` + "\n" + `{"type":"close"}` + "\n"
	code, lines, raw := runSession(t, &devicetest.Backend{Handle: h}, livingRoom(), input)

	if code != ExitFatal {
		t.Errorf("expected exit %d, got %d", ExitFatal, code)
	}
	if len(lines) != 2 {
		t.Fatalf("expected ready and one error, got %v", lines)
	}
	if lines[1]["fatal"] != true || lines[1]["type"] != TypePower || lines[1]["action"] != "on" {
		t.Errorf("expected fatal power error, got %v", lines[1])
	}
	if strings.Contains(raw, StatusClosing) {
		t.Errorf("close should not be processed after a fatal error: %s", raw)
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestRun_EmptyActionRejected(t *testing.T) {
	h := &devicetest.Handle{}
	input := strings.Join([]string{
		`{"type":"command","command":"up","action":""}`,
		`{"type":"command","command":"up","action":null}`,
		`{"type":"command","command":"up"}`,
		`{"type":"close"}`,
	}, "\n") + "\n"
	code, lines, _ := runSession(t, &devicetest.Backend{Handle: h}, livingRoom(), input)

	if code != ExitGraceful {
		t.Errorf("expected graceful exit, got %d", code)
	}
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %v", len(lines), lines)
	}
	for _, i := range []int{1, 2} {
		if lines[i]["error"] != "unknown input action: " {
			t.Errorf("line %d: expected unknown input action, got %v", i, lines[i])
		}
		if _, ok := lines[i]["fatal"]; ok {
			t.Errorf("line %d: unexpected fatal flag", i)
		}
	}
	if lines[3]["status"] != StatusOK || lines[3]["action"] != "SingleTap" {
		t.Errorf("expected absent action to default to SingleTap, got %v", lines[3])
	}
	if calls := h.Calls(); len(calls) != 1 {
		t.Errorf("expected one device call, got %v", calls)
	}
}

// signalWriter closes first after the first write.
type signalWriter struct {
	bytes.Buffer
	first chan struct{}
	once  sync.Once
}

func (w *signalWriter) Write(p []byte) (int, error) {
	n, err := w.Buffer.Write(p)
	w.once.Do(func() { close(w.first) })
	return n, err
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	h := &devicetest.Handle{}
	out := &signalWriter{first: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)
	go func() {
		done <- Run(ctx, Options{
			Selector: "Living Room",
			Resolver: livingRoom(),
			Backend:  &devicetest.Backend{Handle: h},
		}, bufio.NewReader(pr), NewWriter(out))
	}()

	select {
	case <-out.first:
	case <-time.After(2 * time.Second):
		t.Fatal("ready line never written")
	}
	cancel()

	select {
	case code := <-done:
		if code != ExitFatal {
			t.Errorf("expected exit %d, got %d", ExitFatal, code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run still blocked after cancel")
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestReadLine(t *testing.T) {
	line, err := ReadLine(context.Background(), bufio.NewReader(strings.NewReader("abc\ndef")))
	if err != nil || string(line) != "abc\n" {
		t.Errorf("expected first line, got %q %v", line, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ReadLine(ctx, bufio.NewReader(strings.NewReader("abc\n"))); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_ControlErrorIsNotFatal(t *testing.T) {
	h := &devicetest.Handle{}
	input := strings.Join([]string{
		`{"type":"command","command":"Rewind"}`,
		`{"type":"command","command":"up","action":"Squeeze"}`,
		`{"type":"command"}`,
		`{"type":"power"}`,
		`{"type":"power","action":"Reboot"}`,
		`{"type":"close"}`,
	}, "\n") + "\n"
	code, lines, _ := runSession(t, &devicetest.Backend{Handle: h}, livingRoom(), input)

	if code != ExitGraceful {
		t.Errorf("expected graceful exit, got %d", code)
	}
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d: %v", len(lines), lines)
	}

	expect := []struct {
		typ, errMsg string
	}{
		{"command", "unsupported command: rewind"},
		{"command", "unknown input action: Squeeze"},
		{"command", "missing command"},
		{"power", "missing action"},
		{"power", "unknown power action: Reboot"},
	}
	for i, e := range expect {
		line := lines[i+1]
		if line["type"] != e.typ || line["error"] != e.errMsg {
			t.Errorf("line %d: expected %s/%q, got %v", i+1, e.typ, e.errMsg, line)
		}
		if _, ok := line["fatal"]; ok {
			t.Errorf("line %d: unexpected fatal flag", i+1)
		}
	}
	if lines[1]["command"] != "Rewind" {
		t.Errorf("expected command echoed as sent, got %v", lines[1]["command"])
	}
	if lines[5]["action"] != "Reboot" {
		t.Errorf("expected action echoed, got %v", lines[5]["action"])
	}
	if len(h.Calls()) != 0 {
		t.Errorf("expected no device calls, got %v", h.Calls())
	}
}

func TestRun_CommandsAndPower(t *testing.T) {
	h := &devicetest.Handle{PowerSource: device.PowerStateValue(device.PowerOn)}
	input := strings.Join([]string{
		``,
		`   `,
		`{"type":"command","command":"SELECT","action":"Hold"}`,
		`{"type":"power","action":"on"}`,
		`{"type":"power","action":"status"}`,
	}, "\n")
	_, _, raw := runSession(t, &devicetest.Backend{Handle: h}, livingRoom(), input)

	want := strings.Join([]string{
		`{"status":"ready","identifier":"dev-1","name":"Living Room"}`,
		`{"status":"ok","type":"command","command":"select","action":"Hold"}`,
		`{"status":"ok","type":"power","power":"on"}`,
		`{"status":"ok","type":"power","power_state":"On"}`,
	}, "\n") + "\n"
	if raw != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", raw, want)
	}

	calls := h.Calls()
	if len(calls) != 2 || calls[0].Name != "select" || calls[0].Action != device.Hold || calls[1].Name != "turn_on" {
		t.Errorf("unexpected calls: %v", calls)
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestRun_EndOfInputIsGraceful(t *testing.T) {
	h := &devicetest.Handle{}
	code, lines, _ := runSession(t, &devicetest.Backend{Handle: h}, livingRoom(), "")
	if code != ExitGraceful || len(lines) != 1 {
		t.Errorf("expected graceful exit after ready only, got %d %v", code, lines)
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestRun_DeviceNotFound(t *testing.T) {
	backend := &devicetest.Backend{}
	code, _, raw := runSession(t, backend, &fakeResolver{err: device.ErrNotFound}, `{"type":"close"}`+"\n")

	if code != ExitSetupFailed {
		t.Errorf("expected exit %d, got %d", ExitSetupFailed, code)
	}
	if raw != `{"status":"error","error":"device not found","fatal":true}`+"\n" {
		t.Errorf("unexpected output %q", raw)
	}
	if len(backend.Connected) != 0 {
		t.Error("expected no connection attempt")
	}
}

func TestRun_ConnectFailure(t *testing.T) {
	backend := &devicetest.Backend{ConnectErr: errors.New("connection refused")}
	code, lines, _ := runSession(t, backend, livingRoom(), "")

	if code != ExitSetupFailed {
		t.Errorf("expected exit %d, got %d", ExitSetupFailed, code)
	}
	if len(lines) != 1 || lines[0]["error"] != "connection refused" || lines[0]["fatal"] != true {
		t.Errorf("unexpected output %v", lines)
	}
}

func TestRun_MockBackendPlayPause(t *testing.T) {
	var out bytes.Buffer
	input := `{"type":"command","command":"play_pause"}` + "\n" + `{"type":"command","command":"play_pause"}` + "\n" + `{"type":"close"}` + "\n"
	backend := device.NewMockBackend()

	code := Run(context.Background(), Options{
		Selector: "dev-1",
		Resolver: livingRoom(),
		Backend:  backend,
		Mock:     true,
	}, bufio.NewReader(strings.NewReader(input)), NewWriter(&out))

	if code != ExitGraceful {
		t.Errorf("expected graceful exit, got %d", code)
	}
	if got := backend.Presses("dev-1"); len(got) != 2 || got[0] != "play" || got[1] != "pause" {
		t.Errorf("expected play then pause, got %v", got)
	}
	if !strings.Contains(out.String(), `"mock":true`) {
		t.Errorf("expected mock marker, got %s", out.String())
	}
}

func TestLoop_StateClosedAfterRun(t *testing.T) {
	var out bytes.Buffer
	l := &Loop{
		Handle: &devicetest.Handle{},
		In:     bufio.NewReader(strings.NewReader(`{"type":"close"}`)),
		Out:    NewWriter(&out),
		Logger: zerolog.Nop(),
	}
	graceful, err := l.Run(context.Background())
	if err != nil || !graceful {
		t.Fatalf("expected graceful close, got %v %v", graceful, err)
	}
	if l.State() != StateClosed {
		t.Errorf("expected StateClosed, got %v", l.State())
	}
}

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"power","action":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != TypePower || msg.Action != "1" || !msg.HasAction {
		t.Errorf("unexpected message %+v", msg)
	}

	msg, err = ParseMessage([]byte(`{"type":"command","action":null}`))
	if err != nil || !msg.HasAction || msg.Action != "" {
		t.Errorf("expected null action to count as present, got %+v %v", msg, err)
	}

	msg, err = ParseMessage([]byte(`[1,2]`))
	if err != nil || msg.Type != "" {
		t.Errorf("expected untyped message, got %+v %v", msg, err)
	}

	if _, err := ParseMessage([]byte(`{"type":`)); err == nil {
		t.Error("expected invalid json error")
	}
}

type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() error {
	f.flushes++
	return nil
}

func TestWriter_FlushesEveryLine(t *testing.T) {
	var rec flushRecorder
	w := NewWriter(&rec)
	_ = w.Write(Response{Status: StatusOK})
	_ = w.Write(Response{Status: StatusError, Error: "a<b"})

	if rec.flushes != 2 {
		t.Errorf("expected 2 flushes, got %d", rec.flushes)
	}
	if !strings.Contains(rec.String(), `"error":"a<b"`) {
		t.Errorf("expected unescaped output, got %s", rec.String())
	}
}
