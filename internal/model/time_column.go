package model

// TimeColumn is a display-only time-slot header of a section's grid.
// Start and End are free-form labels.
type TimeColumn struct {
	ID        int64  `json:"id"`
	SectionID int64  `json:"section_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

type TimeColumnInput struct {
	Start string `json:"start" validate:"notblank"`
	End   string `json:"end" validate:"notblank"`
}
