package stream

// State represents the client connection state.
type State uint8

const (
	// StateIdle indicates no connection has been made, or the last
	// connection cycle ran out of attempts.
	StateIdle State = iota

	// StateConnecting indicates the open loop is running.
	StateConnecting

	// StateConnected indicates the resource is open and the receive worker
	// is running.
	StateConnected

	// StateDisconnected indicates a connection was closed, by request or
	// after a read fault.
	StateDisconnected

	// StateAborted indicates a connection cycle was cancelled.
	StateAborted
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateDisconnected:
		return "DISCONNECTED"
	case StateAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}
