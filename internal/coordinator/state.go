package coordinator

// State is the phase a coordinator is in.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateBatchAttempt
	StateDegrading
	StateMerging
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateBatchAttempt:
		return "batch"
	case StateDegrading:
		return "degrading"
	case StateMerging:
		return "merging"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
