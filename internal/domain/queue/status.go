package queue

// Status is the processing state of a queued ticket. Values are persisted
// numerically, so their order is part of the schema.
type Status int

const (
	StatusPending   Status = 0
	StatusClaimed   Status = 1
	StatusCompleted Status = 2
	StatusError     Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusClaimed:
		return "claimed"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the status ends a ticket's normal lifecycle.
// Terminal tickets are only revived by an explicit operator re-queue.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

func (s Status) IsValid() bool {
	return s >= StatusPending && s <= StatusError
}
