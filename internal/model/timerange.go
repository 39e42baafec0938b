package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinutesPerDay is the exclusive upper bound for a minute-of-day value.
const MinutesPerDay = 24 * 60

var (
	ErrInvalidDay       = errors.New("invalid day of week")
	ErrInvalidClock     = errors.New("invalid time of day")
	ErrInvalidTimeRange = errors.New("invalid time range")
)

// Day is a canonical English day-of-week name.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists the week in display order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayAliases = map[string]Day{
	"Monday": Monday, "Mon": Monday,
	"Tuesday": Tuesday, "Tue": Tuesday,
	"Wednesday": Wednesday, "Wed": Wednesday,
	"Thursday": Thursday, "Thu": Thursday,
	"Friday": Friday, "Fri": Friday,
	"Saturday": Saturday, "Sat": Saturday,
	"Sunday": Sunday, "Sun": Sunday,
}

// ParseDay normalises a day name. Matching ignores case and accepts
// three-letter abbreviations.
func ParseDay(s string) (Day, error) {
	// Casers are stateful, so one is built per call.
	key := cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
	if d, ok := dayAliases[key]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

// Index returns the position of the day in Monday..Sunday order, or -1.
func (d Day) Index() int {
	for i, day := range Days {
		if d == day {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the seven canonical names.
func (d Day) Valid() bool {
	return d.Index() >= 0
}

// TimeRange is a half-open interval [Start, End) of minutes since midnight on one day.
type TimeRange struct {
	Day   Day `json:"day"`
	Start int `json:"start_minute"`
	End   int `json:"end_minute"`
}

// NewTimeRange builds a validated range.
func NewTimeRange(day Day, start, end int) (TimeRange, error) {
	r := TimeRange{Day: day, Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// ParseTimeRange parses an "HH:MM-HH:MM" token for the given day.
func ParseTimeRange(day Day, token string) (TimeRange, error) {
	parts := strings.Split(strings.TrimSpace(token), "-")
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("%w: %q must look like HH:MM-HH:MM", ErrInvalidTimeRange, token)
	}

	start, err := ParseClock(parts[0])
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimeRange, token, err)
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: %q: %v", ErrInvalidTimeRange, token, err)
	}

	return NewTimeRange(day, start, end)
}

// Validate checks 0 <= Start < End <= 1440 and a canonical day.
func (r TimeRange) Validate() error {
	if !r.Day.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDay, r.Day)
	}
	if r.Start < 0 || r.End > MinutesPerDay {
		return fmt.Errorf("%w: %d-%d is outside the day", ErrInvalidTimeRange, r.Start, r.End)
	}
	if r.Start >= r.End {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidTimeRange, FormatClock(r.Start), FormatClock(r.End))
	}
	return nil
}

// Overlaps reports whether a and b share a day and intersect with nonzero length.
// Touching endpoints do not overlap.
func Overlaps(a, b TimeRange) bool {
	return a.Day == b.Day && a.Start < b.End && a.End > b.Start
}

// Overlaps is the method form of the package-level predicate.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return Overlaps(r, other)
}

// Duration returns the length of the range in minutes.
func (r TimeRange) Duration() int {
	return r.End - r.Start
}

// Label renders the range as "HH:MM-HH:MM".
func (r TimeRange) Label() string {
	return FormatClock(r.Start) + "-" + FormatClock(r.End)
}

func (r TimeRange) String() string {
	return string(r.Day) + " " + r.Label()
}

// ParseClock parses "H:MM" or "HH:MM" into minutes since midnight. "24:00" is
// accepted as the end of the day.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !isDigits(hh) || !isDigits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)
	if minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
