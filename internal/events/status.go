package events

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// canTransitionTo enforces the publishing lifecycle: drafts are published,
// published events end up cancelled or completed, terminal states stay put.
func (s Status) canTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPublished || target == StatusCancelled
	case StatusPublished:
		return target == StatusCancelled || target == StatusCompleted
	default:
		return false
	}
}
