package seats

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusHeld      Status = "HELD"
	StatusBooked    Status = "BOOKED"
)

// IsValid checks if the seat status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusBooked:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}
