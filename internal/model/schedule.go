package model

// Unresolved is shown in place of a subject, room or teacher that no longer exists.
const Unresolved = "unresolved"

// SessionInput is one submitted session, keyed by day and "HH:MM-HH:MM" range.
type SessionInput struct {
	Subject string `json:"subject" validate:"notblank"`
	Room    string `json:"room" validate:"notblank"`
	Teacher string `json:"teacher" validate:"notblank"`
	Type    string `json:"type"`
}

// WeeklySchedule maps a day name to range tokens to sessions.
type WeeklySchedule map[string]map[string]SessionInput

// SessionDetail is a stored session rendered with directory display data.
type SessionDetail struct {
	SubjectCode string `json:"subject_code"`
	Subject     string `json:"subject"`
	Room        string `json:"room"`
	Teacher     string `json:"teacher"`
	Gender      string `json:"gender"`
	Type        string `json:"type"`
}

// SectionSchedule maps a day to "HH:MM-HH:MM" labels to session details.
type SectionSchedule map[Day]map[string]SessionDetail

// Sessions returns the number of sessions in the schedule.
func (s SectionSchedule) Sessions() int {
	n := 0
	for _, byLabel := range s {
		n += len(byLabel)
	}
	return n
}

// Lookup names the directory lookup that failed for a skipped session.
type Lookup string

const (
	LookupSubject Lookup = "subject"
	LookupRoom    Lookup = "room"
	LookupTeacher Lookup = "teacher"
)

// SkippedSession describes a submitted session that was not stored because
// one or more of its references could not be resolved.
type SkippedSession struct {
	Day     Day      `json:"day"`
	Range   string   `json:"range"`
	Subject string   `json:"subject"`
	Room    string   `json:"room"`
	Teacher string   `json:"teacher"`
	Missing []Lookup `json:"missing"`
}

// ReplaceResult reports the outcome of replacing a section's schedule.
type ReplaceResult struct {
	SectionID int64            `json:"section_id"`
	Inserted  int              `json:"inserted"`
	Skipped   []SkippedSession `json:"skipped"`
}
