package core

type CommitState int

const (
	CommitStateUnknown CommitState = iota
	CommitStatePending
	CommitStateCommitted
	CommitStateFailed
)

func CommitStateFromString(s string) CommitState {
	switch s {
	case CommitStatePending.String():
		return CommitStatePending
	case CommitStateCommitted.String():
		return CommitStateCommitted
	case CommitStateFailed.String():
		return CommitStateFailed
	default:
		return CommitStateUnknown
	}
}

func (s CommitState) String() string {
	switch s {
	case CommitStatePending:
		return "pending"
	case CommitStateCommitted:
		return "committed"
	case CommitStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsFinished reports whether the commit reached a terminal state.
func (s CommitState) IsFinished() bool {
	return s == CommitStateCommitted || s == CommitStateFailed
}
