package device

// PowerStateResult is the outcome of an asynchronous power-state read.
type PowerStateResult struct {
	State PowerState
	Err   error
}

// PowerStateSource is the shape in which a backend exposes the current power
// state. The set of implementations is closed:
//
//   - PowerStateValue: the state itself
//   - PendingPowerState: a read already in flight
//   - PowerStateFunc: a call returning the state
//   - AsyncPowerStateFunc: a call returning a read in flight
//
// A nil PowerStateSource means the backend cannot report power state.
type PowerStateSource interface {
	powerStateSource()
}

// PowerStateValue is a power state known without further work.
type PowerStateValue PowerState

// PendingPowerState delivers exactly one result when the read completes.
type PendingPowerState <-chan PowerStateResult

// PowerStateFunc computes the power state synchronously.
type PowerStateFunc func() (PowerState, error)

// AsyncPowerStateFunc starts a power-state read and returns it in flight.
type AsyncPowerStateFunc func() PendingPowerState

func (PowerStateValue) powerStateSource()     {}
func (PendingPowerState) powerStateSource()   {}
func (PowerStateFunc) powerStateSource()      {}
func (AsyncPowerStateFunc) powerStateSource() {}

// Resolved returns a pending read that has already completed with state.
func Resolved(state PowerState) PendingPowerState {
	ch := make(chan PowerStateResult, 1)
	ch <- PowerStateResult{State: state}
	close(ch)
	return ch
}
