package model

import "strings"

type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"subject_name"`
	Code string `json:"subject_code"`
}

type Room struct {
	ID   int64  `json:"id"`
	Code string `json:"room_code"`
	Type string `json:"room_type"`
}

type Teacher struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
}

// DisplayName returns the "Last, First" form used to resolve teachers by name.
func (t Teacher) DisplayName() string {
	return TeacherDisplayName(t.FirstName, t.LastName)
}

type Section struct {
	ID            int64  `json:"id"`
	CourseName    string `json:"course_name"`
	SectionFormat string `json:"section_format"`
}

// TeacherDisplayName joins names as "Last, First".
func TeacherDisplayName(first, last string) string {
	return strings.TrimSpace(last) + ", " + strings.TrimSpace(first)
}
