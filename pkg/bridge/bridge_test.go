package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/mabino/atmo/pkg/control"
	"github.com/mabino/atmo/pkg/device"
	"github.com/mabino/atmo/pkg/device/devicetest"
	"github.com/mabino/atmo/pkg/discovery"
	"github.com/mabino/atmo/pkg/pairing"
	"github.com/mabino/atmo/pkg/storage"
)

func newTestBridge(h *devicetest.Handle) (*Bridge, *devicetest.Backend) {
	backend := &devicetest.Backend{Handle: h}
	return &Bridge{
		Scanner: discovery.NewMockScanner(),
		Backend: backend,
		Store:   storage.NewMemory(),
	}, backend
}

func TestCommand(t *testing.T) {
	h := &devicetest.Handle{}
	b, _ := newTestBridge(h)

	res, err := b.Command(context.Background(), "living room", "UP", "DoubleTap")
	if err != nil {
		t.Fatal(err)
	}
	if res.Identifier != "11223344-5566-7788-9900-112233445566" || res.Command != "up" || res.Action != "DoubleTap" {
		t.Errorf("unexpected result %+v", res)
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestCommand_ErrorsCloseHandle(t *testing.T) {
	h := &devicetest.Handle{}
	b, _ := newTestBridge(h)

	_, err := b.Command(context.Background(), "Living Room", "up", "Tap")
	if !errors.Is(err, control.ErrUnknownInputAction) {
		t.Errorf("expected unknown input action, got %v", err)
	}
	if h.Closed() != 1 {
		t.Errorf("expected handle closed once, got %d", h.Closed())
	}
}

func TestCommand_DeviceNotFound(t *testing.T) {
	b, backend := newTestBridge(&devicetest.Handle{})

	_, err := b.Command(context.Background(), "Attic", "up", "")
	if !errors.Is(err, device.ErrNotFound) || err.Error() != "device not found" {
		t.Errorf("expected device not found, got %v", err)
	}
	if len(backend.Connected) != 0 {
		t.Error("expected no connection")
	}
}

func TestCommand_AppliesStoredCredentials(t *testing.T) {
	b, backend := newTestBridge(&devicetest.Handle{})
	ctx := context.Background()

	settings, _ := b.Store.Settings(ctx, discovery.LivingRoom())
	settings.SetCredentials(device.ProtocolCompanion, "stored-creds")

	if _, err := b.Command(ctx, "Living Room", "home", ""); err != nil {
		t.Fatal(err)
	}
	svc := backend.Connected[0].Service(device.ProtocolCompanion)
	if svc == nil || svc.Credentials != "stored-creds" {
		t.Errorf("expected stored credentials on connect, got %+v", svc)
	}
}

func TestPower(t *testing.T) {
	h := &devicetest.Handle{PowerSource: device.PowerStateFunc(func() (device.PowerState, error) {
		return device.PowerOff, nil
	})}
	b, _ := newTestBridge(h)

	res, err := b.Power(context.Background(), "10.0.0.10", "status")
	if err != nil {
		t.Fatal(err)
	}
	if res.PowerState != "Off" || res.Power != "" {
		t.Errorf("unexpected result %+v", res)
	}

	res, err = b.Power(context.Background(), "10.0.0.10", "on")
	if err != nil {
		t.Fatal(err)
	}
	if res.Power != "on" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestScan(t *testing.T) {
	b, _ := newTestBridge(&devicetest.Handle{})
	res, err := b.Scan(context.Background(), discovery.Options{Protocol: device.ProtocolRAOP})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Devices) != 0 {
		t.Errorf("expected no RAOP devices, got %d", len(res.Devices))
	}

	res, err = b.Scan(context.Background(), discovery.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Devices) != 1 || res.Devices[0].Name != "Living Room" {
		t.Errorf("unexpected scan %+v", res)
	}
}

func TestMockBackendEndToEnd(t *testing.T) {
	backend := device.NewMockBackend()
	b := &Bridge{Scanner: discovery.NewMockScanner(), Backend: backend, Store: storage.NewMemory(), Mock: true}
	ctx := context.Background()

	if _, err := b.Power(ctx, "Living Room", "on"); err != nil {
		t.Fatal(err)
	}
	res, err := b.Power(ctx, "Living Room", "status")
	if err != nil {
		t.Fatal(err)
	}
	if res.PowerState != "On" || !res.Mock {
		t.Errorf("expected mock power state On, got %+v", res)
	}

	outcome, err := b.Pairing().Pair(ctx, pairingRequest("Companion", "4021"))
	if err != nil {
		t.Fatal(err)
	}
	paired, ok := outcome.(*pairing.Paired)
	if !ok {
		t.Fatalf("expected Paired, got %T", outcome)
	}
	if paired.Credentials != "mock:companion:11223344-5566-7788-9900-112233445566:4021" || !paired.CredentialsSaved {
		t.Errorf("unexpected pairing result %+v", paired)
	}
}

func pairingRequest(protocol, pin string) pairing.Request {
	return pairing.Request{Identifier: "Living Room", Protocol: protocol, PIN: pin}
}
