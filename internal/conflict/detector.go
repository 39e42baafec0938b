// Package conflict finds clashing pairs of scheduled sessions.
//
// Two rows clash when they are on the same day, their time ranges overlap and
// they share a teacher, a room or a section. Detectors only differ in cost;
// for the same input they return the same pairs in the same order.
package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/timetable/internal/model"
)

const (
	NamePairwise = "pairwise"
	NameSweep    = "sweep"
)

// Detector returns every clashing pair of rows, each pair once.
type Detector interface {
	Name() string
	Detect(rows []model.Assignment) []model.Conflict
}

// New returns the detector registered under name. An empty name selects the sweep.
func New(name string) (Detector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameSweep:
		return Sweep{}, nil
	case NamePairwise:
		return Pairwise{}, nil
	default:
		return nil, fmt.Errorf("unknown conflict detector %q", name)
	}
}

// Pairwise compares every unordered pair of rows. O(n²).
type Pairwise struct{}

func (Pairwise) Name() string { return NamePairwise }

func (Pairwise) Detect(rows []model.Assignment) []model.Conflict {
	var out []model.Conflict
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			if c, ok := check(rows[i], rows[j]); ok {
				out = append(out, c)
			}
		}
	}
	sortConflicts(out)
	return out
}

// Sweep buckets rows by day, sorts each bucket by start and keeps an active
// set of rows whose end is still ahead of the sweep line. Cost is
// O(n log n + k) where k is the number of overlapping pairs.
type Sweep struct{}

func (Sweep) Name() string { return NameSweep }

func (Sweep) Detect(rows []model.Assignment) []model.Conflict {
	byDay := make(map[model.Day][]model.Assignment)
	for _, r := range rows {
		byDay[r.Day] = append(byDay[r.Day], r)
	}

	var out []model.Conflict
	for _, bucket := range byDay {
		sort.Slice(bucket, func(i, j int) bool {
			if bucket[i].StartMinute != bucket[j].StartMinute {
				return bucket[i].StartMinute < bucket[j].StartMinute
			}
			return bucket[i].ID < bucket[j].ID
		})

		var active []model.Assignment
		for _, cur := range bucket {
			// Drop rows that ended at or before this start; touching is not overlapping.
			kept := active[:0]
			for _, a := range active {
				if a.EndMinute > cur.StartMinute {
					kept = append(kept, a)
				}
			}
			active = kept

			for _, a := range active {
				if c, ok := check(a, cur); ok {
					out = append(out, c)
				}
			}
			active = append(active, cur)
		}
	}
	sortConflicts(out)
	return out
}

func check(a, b model.Assignment) (model.Conflict, bool) {
	if !model.Overlaps(a.Range(), b.Range()) {
		return model.Conflict{}, false
	}
	reasons := model.ConflictReasons(a, b)
	if len(reasons) == 0 {
		return model.Conflict{}, false
	}
	first, second := a.ID, b.ID
	if first > second {
		first, second = second, first
	}
	return model.Conflict{FirstID: first, SecondID: second, Day: a.Day, Reasons: reasons}, true
}

func sortConflicts(cs []model.Conflict) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].FirstID != cs[j].FirstID {
			return cs[i].FirstID < cs[j].FirstID
		}
		return cs[i].SecondID < cs[j].SecondID
	})
}
