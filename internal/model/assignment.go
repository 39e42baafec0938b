package model

// Assignment is one persisted session row of a section's weekly schedule.
// Reference ids are nil when the session is unassigned or the referenced
// entity was deleted.
type Assignment struct {
	ID          int64  `json:"id"`
	SectionID   int64  `json:"section_id"`
	TeacherID   *int64 `json:"teacher_id"`
	RoomID      *int64 `json:"room_id"`
	SubjectID   *int64 `json:"subject_id"`
	Day         Day    `json:"day"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	SessionType string `json:"type"`
}

// Range returns the row's time range.
func (a Assignment) Range() TimeRange {
	return TimeRange{Day: a.Day, Start: a.StartMinute, End: a.EndMinute}
}

// NewAssignment is the input for inserting a row; ids are assigned by the store.
type NewAssignment struct {
	SectionID   int64
	TeacherID   *int64
	RoomID      *int64
	SubjectID   *int64
	Range       TimeRange
	SessionType string
}

// AssignmentDetail is an assignment joined with directory display data.
// Nil pointers mean the referenced row is missing.
type AssignmentDetail struct {
	Assignment

	SectionFormat    *string `json:"section_format"`
	CourseName       *string `json:"course_name"`
	SubjectCode      *string `json:"subject_code"`
	SubjectName      *string `json:"subject_name"`
	RoomCode         *string `json:"room_code"`
	TeacherFirstName *string `json:"teacher_first_name"`
	TeacherLastName  *string `json:"teacher_last_name"`
	TeacherGender    *string `json:"teacher_gender"`
}

// TeacherDisplay returns "Last, First" when the teacher is known.
func (d AssignmentDetail) TeacherDisplay() (string, bool) {
	if d.TeacherFirstName == nil || d.TeacherLastName == nil {
		return "", false
	}
	return TeacherDisplayName(*d.TeacherFirstName, *d.TeacherLastName), true
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr returns a pointer to v.
func StringPtr(v string) *string {
	return &v
}

// SameID reports whether both ids are set and equal. Two nil ids never match.
func SameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}
