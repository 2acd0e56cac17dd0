package domain

// Presence is the result of an existence check. PresenceUnknown is always
// paired with the error that prevented the check from completing.
type Presence int

const (
	PresenceUnknown Presence = iota
	PresenceExists
	PresenceAbsent
)

func (p Presence) String() string {
	switch p {
	case PresenceExists:
		return "exists"
	case PresenceAbsent:
		return "absent"
	}
	return "unknown"
}
