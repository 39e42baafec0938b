package handlers

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Freeeeeet/timetable/internal/model"
)

var errUsage = errors.New("usage")

// maxListedConflicts bounds the pairs listed in one message.
const maxListedConflicts = 20

// parseSectionArg reads the section id from "/cmd <id>".
func parseSectionArg(text string) (int64, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, errUsage
	}
	return id, nil
}

// FormatConflictReport renders a report for a chat message.
func FormatConflictReport(r *model.ConflictReport) string {
	if r.ConflictCount == 0 {
		return fmt.Sprintf("✅ No conflicts across %d sessions", r.RowsScanned)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "⚠️ %d conflicts across %d sessions\n", r.ConflictCount, r.RowsScanned)
	for i, c := range r.Conflicts {
		if i == maxListedConflicts {
			fmt.Fprintf(&sb, "… and %d more", len(r.Conflicts)-maxListedConflicts)
			break
		}
		reasons := make([]string, 0, len(c.Reasons))
		for _, reason := range c.Reasons {
			reasons = append(reasons, string(reason))
		}
		fmt.Fprintf(&sb, "\n• #%d ↔ #%d %s (%s)", c.FirstID, c.SecondID, c.Day, strings.Join(reasons, ", "))
	}
	return sb.String()
}

// FormatSchedule renders a section's week as text, one line per session.
func FormatSchedule(sectionID int64, s model.SectionSchedule) string {
	if s.Sessions() == 0 {
		return fmt.Sprintf("📭 Section %d has no sessions", sectionID)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 Section %d\n", sectionID)
	for _, day := range model.Days {
		byLabel := s[day]
		if len(byLabel) == 0 {
			continue
		}
		labels := make([]string, 0, len(byLabel))
		for label := range byLabel {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		fmt.Fprintf(&sb, "\n%s\n", day)
		for _, label := range labels {
			d := byLabel[label]
			fmt.Fprintf(&sb, "  %s %s", label, d.Subject)
			if d.Type != "" {
				fmt.Fprintf(&sb, " (%s)", d.Type)
			}
			fmt.Fprintf(&sb, ", %s, %s\n", d.Room, d.Teacher)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatTimeColumns(sectionID int64, columns []model.TimeColumn) string {
	if len(columns) == 0 {
		return fmt.Sprintf("📭 Section %d has no time columns", sectionID)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🕒 Section %d time columns\n", sectionID)
	for i, c := range columns {
		fmt.Fprintf(&sb, "\n%d. %s - %s", i+1, c.Start, c.End)
	}
	return sb.String()
}
