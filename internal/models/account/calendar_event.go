package models

// Event types shown on the calendar
const (
	EventTypeMeteor  = "meteor"
	EventTypePlanet  = "planet"
	EventTypeMoon    = "moon"
	EventTypeEclipse = "eclipse"
	EventTypeOther   = "other"
	EventTypeUser    = "user"
)

// CalendarEvent is either a built-in astronomical event (no ID) or a user
// submitted calendar_events document.
type CalendarEvent struct {
	ID          string `json:"id,omitempty" firestore:"-"`
	Date        string `json:"date" firestore:"date"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Time        string `json:"time,omitempty" firestore:"time,omitempty"`
	Type        string `json:"type" firestore:"type"`
	UserID      string `json:"userId,omitempty" firestore:"userId,omitempty"`
	AuthorName  string `json:"authorName,omitempty" firestore:"authorName,omitempty"`
	CreatedAt   int64  `json:"createdAt,omitempty" firestore:"createdAt,omitempty"`
}

// CalendarEventFields are the editable fields of a user event
type CalendarEventFields struct {
	Date        string
	Title       string
	Description string
	Time        string
	Type        string
}

// ValidEventType reports whether t is one of the known event types
func ValidEventType(t string) bool {
	switch t {
	case EventTypeMeteor, EventTypePlanet, EventTypeMoon, EventTypeEclipse, EventTypeOther, EventTypeUser:
		return true
	}
	return false
}
