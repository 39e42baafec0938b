package model

import "time"

// ConflictReason is the shared resource that makes two overlapping sessions clash.
type ConflictReason string

const (
	ReasonTeacher ConflictReason = "teacher"
	ReasonRoom    ConflictReason = "room"
	ReasonSection ConflictReason = "section"
)

// Conflict is one clashing pair of assignment rows, FirstID < SecondID.
type Conflict struct {
	FirstID  int64            `json:"first_id"`
	SecondID int64            `json:"second_id"`
	Day      Day              `json:"day"`
	Reasons  []ConflictReason `json:"reasons"`
}

// ConflictReasons returns the shared resources of a and b, in teacher, room,
// section order. An empty result means the pair does not clash even if the
// times overlap.
func ConflictReasons(a, b Assignment) []ConflictReason {
	var reasons []ConflictReason
	if SameID(a.TeacherID, b.TeacherID) {
		reasons = append(reasons, ReasonTeacher)
	}
	if SameID(a.RoomID, b.RoomID) {
		reasons = append(reasons, ReasonRoom)
	}
	if a.SectionID == b.SectionID {
		reasons = append(reasons, ReasonSection)
	}
	return reasons
}

// ConflictReport is the result of a full conflict scan.
type ConflictReport struct {
	ConflictCount int        `json:"conflict_count"`
	Conflicts     []Conflict `json:"conflicts"`
	RowsScanned   int        `json:"rows_scanned"`
	GeneratedAt   time.Time  `json:"generated_at"`
}
