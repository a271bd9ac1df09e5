package session

import (
	"encoding/json"
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// Writer emits one compact JSON document per line and flushes after each.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
}

// NewWriter creates a Writer on w. If w has a Flush method it is called
// after every line.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{w: w, enc: enc}
}

// Write encodes v as a single line.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.enc.Encode(v); err != nil {
		return err
	}
	if f, ok := w.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
