package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/model"
	"github.com/Freeeeeet/timetable/internal/render"
)

var ErrExportGenerateFail = errors.New("failed to generate export file")

const (
	conflictSheet = "Conflicts"
	summarySheet  = "Summary"
	icsProductID  = "-//Freeeeeet//timetable//EN"

	icsUTCFormat   = "20060102T150405Z"
	icsLocalFormat = "20060102T150405"
)

// ExportService renders schedules and conflict reports as files.
type ExportService struct {
	schedules   *ScheduleService
	conflicts   *ConflictService
	timeColumns *TimeColumnService
	termStart   time.Time
	location    *time.Location
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService builds the exporter. Calendar events start in the week of
// termStart; a zero termStart uses the current week.
func NewExportService(
	schedules *ScheduleService,
	conflicts *ConflictService,
	timeColumns *TimeColumnService,
	termStart time.Time,
	location *time.Location,
	logger *zap.Logger,
) *ExportService {
	if location == nil {
		location = time.Local
	}
	return &ExportService{
		schedules:   schedules,
		conflicts:   conflicts,
		timeColumns: timeColumns,
		termStart:   termStart,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// ConflictReportXLSX writes a workbook with one row per conflicting pair and
// both rows' section, subject, room, teacher and time.
func (s *ExportService) ConflictReportXLSX(ctx context.Context) (*bytes.Buffer, string, error) {
	report, err := s.conflicts.CountConflicts(ctx)
	if err != nil {
		return nil, "", err
	}
	details, err := s.schedules.ListAllDetailed(ctx)
	if err != nil {
		return nil, "", err
	}

	byID := make(map[int64]model.AssignmentDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(conflictSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{
		"#", "Day", "Reasons",
		"First ID", "First section", "First time", "First subject", "First room", "First teacher",
		"Second ID", "Second section", "Second time", "Second subject", "Second room", "Second teacher",
	}
	for i, h := range headers {
		f.SetCellValue(conflictSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(conflictSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(conflictSheet, "A", "A", 6)
	f.SetColWidth(conflictSheet, "B", colName(len(headers)-1), 16)

	for i, c := range report.Conflicts {
		row := i + 2
		reasons := make([]string, 0, len(c.Reasons))
		for _, r := range c.Reasons {
			reasons = append(reasons, string(r))
		}

		values := []any{i + 1, string(c.Day), strings.Join(reasons, ", ")}
		values = append(values, detailCells(c.FirstID, byID)...)
		values = append(values, detailCells(c.SecondID, byID)...)
		for col, v := range values {
			f.SetCellValue(conflictSheet, cell(colName(col), row), v)
		}
	}

	f.NewSheet(summarySheet)
	f.SetCellValue(summarySheet, "A1", "Conflicts")
	f.SetCellValue(summarySheet, "B1", report.ConflictCount)
	f.SetCellValue(summarySheet, "A2", "Rows scanned")
	f.SetCellValue(summarySheet, "B2", report.RowsScanned)
	f.SetCellValue(summarySheet, "A3", "Generated at")
	f.SetCellValue(summarySheet, "B3", report.GeneratedAt.Format(time.RFC3339))
	f.SetColWidth(summarySheet, "A", "B", 24)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("Failed to write conflict workbook", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("conflicts_%s.xlsx", report.GeneratedAt.Format("20060102_150405"))
	return buf, filename, nil
}

// detailCells returns id, section, time, subject, room and teacher for one row.
// A row deleted since the scan leaves the display cells empty.
func detailCells(id int64, byID map[int64]model.AssignmentDetail) []any {
	d, ok := byID[id]
	if !ok {
		return []any{id, "", "", "", "", ""}
	}

	section := fmt.Sprintf("%d", d.SectionID)
	if d.CourseName != nil && *d.CourseName != "" {
		section += " " + *d.CourseName
	}
	teacher, ok := d.TeacherDisplay()
	if !ok {
		teacher = model.Unresolved
	}
	return []any{
		id,
		section,
		d.Range().Label(),
		orUnresolved(d.SubjectName),
		orUnresolved(d.RoomCode),
		teacher,
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// SectionScheduleICS returns a calendar with one weekly recurring event per session.
func (s *ExportService) SectionScheduleICS(ctx context.Context, sectionID int64) ([]byte, error) {
	schedule, err := s.schedules.GetSectionSchedule(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	weekStart := s.weekStart()
	stamp := s.now().UTC()
	if tz := s.tzid(); tz != "" {
		cal.SetXWRTimezone(tz)
	}

	for _, day := range model.Days {
		labels := make([]string, 0, len(schedule[day]))
		for label := range schedule[day] {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		for _, label := range labels {
			rng, err := model.ParseTimeRange(day, label)
			if err != nil {
				continue
			}
			session := schedule[day][label]
			date := weekStart.AddDate(0, 0, day.Index())

			uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("timetable/section/%d/%s/%s", sectionID, day, label)))
			event := cal.AddEvent(uid.String())
			event.SetDtStampTime(stamp)
			s.setEventTime(event, ics.ComponentPropertyDtStart, wallClock(date, rng.Start))
			s.setEventTime(event, ics.ComponentPropertyDtEnd, wallClock(date, rng.End))
			event.SetSummary(strings.TrimSpace(session.Subject + " " + session.Type))
			event.SetLocation(session.Room)
			event.SetDescription("Teacher: " + session.Teacher)
			event.AddRrule("FREQ=WEEKLY")
		}
	}

	return []byte(cal.Serialize()), nil
}

// tzid is the IANA zone name for event times, or empty when times are
// written as UTC (UTC zone) or floating (process-local zone).
func (s *ExportService) tzid() string {
	switch name := s.location.String(); name {
	case "UTC", "Local", "":
		return ""
	default:
		return name
	}
}

// setEventTime writes t as local time with a TZID so weekly recurrences keep
// their wall-clock time across DST changes.
func (s *ExportService) setEventTime(event *ics.VEvent, prop ics.ComponentProperty, t time.Time) {
	tz := s.tzid()
	switch {
	case s.location.String() == "UTC":
		event.SetProperty(prop, t.UTC().Format(icsUTCFormat))
		return
	case tz == "":
		event.SetProperty(prop, t.Format(icsLocalFormat))
		return
	}
	event.SetProperty(prop, t.Format(icsLocalFormat), &ics.KeyValues{
		Key:   string(ics.ParameterTzid),
		Value: []string{tz},
	})
}

// wallClock returns minute-of-day m on date's calendar day in date's zone.
func wallClock(date time.Time, m int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, date.Location())
}

// weekStart returns midnight of the Monday on or before the term start.
func (s *ExportService) weekStart() time.Time {
	start := s.termStart
	if start.IsZero() {
		start = s.now()
	}
	start = start.In(s.location)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.location)

	daysSinceMonday := int(start.Weekday()) - 1
	if start.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}
	return start.AddDate(0, 0, -daysSinceMonday)
}

// SectionSchedulePNG draws the section's week with its time columns in the legend.
func (s *ExportService) SectionSchedulePNG(ctx context.Context, sectionID int64) ([]byte, error) {
	schedule, err := s.schedules.GetSectionSchedule(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	columns, err := s.timeColumns.GetSectionTimeColumns(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	img, err := render.WeekGrid(fmt.Sprintf("Section %d", sectionID), schedule, columns)
	if err != nil {
		s.logger.Error("Failed to render week grid",
			zap.Int64("section_id", sectionID),
			zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return img, nil
}
