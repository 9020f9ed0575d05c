package domain

type CalendarEventType string

const (
	EventTypeTask    CalendarEventType = "task"
	EventTypeEvent   CalendarEventType = "event"
	EventTypeRoutine CalendarEventType = "routine"
)

// CalendarEvent is an entry of the style planner.
type CalendarEvent struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Date      string            `json:"date"` // YYYY-MM-DD
	Time      string            `json:"time"` // HH:MM, empty for all-day
	Notes     *string           `json:"notes"`
	Type      CalendarEventType `json:"type"`
	Completed bool              `json:"completed"`
}

// ChallengeProgress tracks completed steps of a glow-up challenge.
type ChallengeProgress struct {
	ID             string   `json:"id"`
	CompletedSteps []string `json:"completedSteps"`
	LastCheckIn    string   `json:"lastCheckIn"` // RFC3339
}

// Setting is a settings or personalization record.
type Setting struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}
