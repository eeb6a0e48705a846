package events

type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsSellable reports whether seats for the event can still be held or booked.
func (s Status) IsSellable() bool {
	return s == StatusUpcoming || s == StatusOngoing
}
