package device

import "context"

// NullBackend is a no-op backend used when no device-control implementation
// is linked in. Every operation reports ErrNotConnected.
type NullBackend struct{}

// NewNullBackend creates a new NullBackend.
func NewNullBackend() *NullBackend {
	return &NullBackend{}
}

func (b *NullBackend) Connect(ctx context.Context, cfg Config) (Handle, error) {
	return nil, ErrNotConnected
}

func (b *NullBackend) Pair(ctx context.Context, cfg Config, protocol Protocol, opts PairOptions) (Handshake, error) {
	return nil, ErrNotConnected
}
