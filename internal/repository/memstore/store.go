// Package memstore is an in-memory implementation of the directory,
// assignment and time-column repositories. It backs the memory store backend
// and the service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Freeeeeet/timetable/internal/model"
	"github.com/Freeeeeet/timetable/internal/repository"
)

// Store holds every table behind one lock. Writers build the new row slice
// aside and swap it in, so readers never see a half-replaced section.
type Store struct {
	mu sync.RWMutex

	subjects map[int64]model.Subject
	rooms    map[int64]model.Room
	teachers map[int64]model.Teacher
	sections map[int64]model.Section

	assignments []model.Assignment
	columns     []model.TimeColumn

	nextID     int64
	insertHook func(model.NewAssignment) error
	onChange   func()
}

func New() *Store {
	return &Store{
		subjects: make(map[int64]model.Subject),
		rooms:    make(map[int64]model.Room),
		teachers: make(map[int64]model.Teacher),
		sections: make(map[int64]model.Section),
	}
}

// Directory returns the name resolution view.
func (s *Store) Directory() *Directory { return &Directory{s: s} }

// Assignments returns the assignment store view.
func (s *Store) Assignments() *Assignments { return &Assignments{s: s} }

// TimeColumns returns the time-column store view.
func (s *Store) TimeColumns() *TimeColumns { return &TimeColumns{s: s} }

// SetInsertHook installs fn to run before each assignment is staged. A non-nil
// error aborts the replace and leaves the previous rows in place.
func (s *Store) SetInsertHook(fn func(model.NewAssignment) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertHook = fn
}

// OnChange installs fn to run after a delete has changed stored rows outside
// the assignment replace path. fn runs without the store lock held.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// changed must be called with the lock released.
func (s *Store) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) AddSubject(name, code string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.subjects[id] = model.Subject{ID: id, Name: name, Code: code}
	return id
}

func (s *Store) AddRoom(code, roomType string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.rooms[id] = model.Room{ID: id, Code: code, Type: roomType}
	return id
}

func (s *Store) AddTeacher(firstName, lastName, gender string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.teachers[id] = model.Teacher{ID: id, FirstName: firstName, LastName: lastName, Gender: gender}
	return id
}

func (s *Store) AddSection(courseName, format string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.sections[id] = model.Section{ID: id, CourseName: courseName, SectionFormat: format}
	return id
}

// DeleteSection removes the section together with its assignments and time columns.
func (s *Store) DeleteSection(id int64) {
	s.deleteSection(id)
	s.changed()
}

func (s *Store) deleteSection(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sections, id)

	var rows []model.Assignment
	for _, a := range s.assignments {
		if a.SectionID != id {
			rows = append(rows, a)
		}
	}
	s.assignments = rows

	var cols []model.TimeColumn
	for _, c := range s.columns {
		if c.SectionID != id {
			cols = append(cols, c)
		}
	}
	s.columns = cols
}

// DeleteRoom removes the room and clears it from assignments.
func (s *Store) DeleteRoom(id int64) {
	s.mu.Lock()
	delete(s.rooms, id)
	s.clearRefs(func(a *model.Assignment) **int64 { return &a.RoomID }, id)
	s.mu.Unlock()
	s.changed()
}

// DeleteTeacher removes the teacher and clears it from assignments.
func (s *Store) DeleteTeacher(id int64) {
	s.mu.Lock()
	delete(s.teachers, id)
	s.clearRefs(func(a *model.Assignment) **int64 { return &a.TeacherID }, id)
	s.mu.Unlock()
	s.changed()
}

// DeleteSubject removes the subject and clears it from assignments.
func (s *Store) DeleteSubject(id int64) {
	s.mu.Lock()
	delete(s.subjects, id)
	s.clearRefs(func(a *model.Assignment) **int64 { return &a.SubjectID }, id)
	s.mu.Unlock()
	s.changed()
}

// clearRefs copies the rows so slices handed out earlier stay untouched.
func (s *Store) clearRefs(field func(*model.Assignment) **int64, id int64) {
	rows := make([]model.Assignment, len(s.assignments))
	copy(rows, s.assignments)
	for i := range rows {
		ref := field(&rows[i])
		if *ref != nil && **ref == id {
			*ref = nil
		}
	}
	s.assignments = rows
}

// Directory resolves names against the in-memory tables.
type Directory struct {
	s *Store
}

func (d *Directory) ResolveSubjectID(_ context.Context, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	var found *int64
	for id, sub := range d.s.subjects {
		if sub.Name == name {
			found = lowest(found, id)
		}
	}
	return found, nil
}

func (d *Directory) ResolveRoomID(_ context.Context, code string) (*int64, error) {
	code = strings.TrimSpace(code)
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	var found *int64
	for id, r := range d.s.rooms {
		if r.Code == code {
			found = lowest(found, id)
		}
	}
	return found, nil
}

func (d *Directory) ResolveTeacherID(_ context.Context, displayName string) (*int64, error) {
	displayName = strings.TrimSpace(displayName)
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	var found *int64
	for id, t := range d.s.teachers {
		if t.DisplayName() == displayName {
			found = lowest(found, id)
		}
	}
	return found, nil
}

func lowest(cur *int64, id int64) *int64 {
	if cur == nil || id < *cur {
		return model.Int64Ptr(id)
	}
	return cur
}

// Assignments is the in-memory assignment store.
type Assignments struct {
	s *Store
}

func (a *Assignments) ReplaceForSection(_ context.Context, sectionID int64, rows []model.NewAssignment) (int, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.sections[sectionID]; !ok {
		return 0, repository.ErrSectionNotFound
	}

	next := make([]model.Assignment, 0, len(a.s.assignments)+len(rows))
	for _, existing := range a.s.assignments {
		if existing.SectionID != sectionID {
			next = append(next, existing)
		}
	}

	// Ids are only consumed once the whole batch is staged.
	id := a.s.nextID
	for _, row := range rows {
		if a.s.insertHook != nil {
			if err := a.s.insertHook(row); err != nil {
				return 0, err
			}
		}
		id++
		next = append(next, model.Assignment{
			ID:          id,
			SectionID:   sectionID,
			TeacherID:   row.TeacherID,
			RoomID:      row.RoomID,
			SubjectID:   row.SubjectID,
			Day:         row.Range.Day,
			StartMinute: row.Range.Start,
			EndMinute:   row.Range.End,
			SessionType: row.SessionType,
		})
	}

	a.s.nextID = id
	a.s.assignments = next
	return len(rows), nil
}

func (a *Assignments) ListAll(_ context.Context) ([]model.Assignment, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]model.Assignment, len(a.s.assignments))
	copy(out, a.s.assignments)
	return out, nil
}

func (a *Assignments) ListBySection(_ context.Context, sectionID int64) ([]model.AssignmentDetail, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	var out []model.AssignmentDetail
	for _, row := range a.s.assignments {
		if row.SectionID == sectionID {
			out = append(out, a.s.detail(row))
		}
	}
	sortDetails(out)
	return out, nil
}

func (a *Assignments) ListAllDetailed(_ context.Context) ([]model.AssignmentDetail, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]model.AssignmentDetail, 0, len(a.s.assignments))
	for _, row := range a.s.assignments {
		out = append(out, a.s.detail(row))
	}
	sortDetails(out)
	return out, nil
}

// detail mirrors the LEFT JOINs of the Postgres repository.
func (s *Store) detail(a model.Assignment) model.AssignmentDetail {
	d := model.AssignmentDetail{Assignment: a}
	if sec, ok := s.sections[a.SectionID]; ok {
		d.SectionFormat = model.StringPtr(sec.SectionFormat)
		d.CourseName = model.StringPtr(sec.CourseName)
	}
	if a.SubjectID != nil {
		if sub, ok := s.subjects[*a.SubjectID]; ok {
			d.SubjectCode = model.StringPtr(sub.Code)
			d.SubjectName = model.StringPtr(sub.Name)
		}
	}
	if a.RoomID != nil {
		if r, ok := s.rooms[*a.RoomID]; ok {
			d.RoomCode = model.StringPtr(r.Code)
		}
	}
	if a.TeacherID != nil {
		if t, ok := s.teachers[*a.TeacherID]; ok {
			d.TeacherFirstName = model.StringPtr(t.FirstName)
			d.TeacherLastName = model.StringPtr(t.LastName)
			d.TeacherGender = model.StringPtr(t.Gender)
		}
	}
	return d
}

func sortDetails(ds []model.AssignmentDetail) {
	sort.Slice(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.SectionID != b.SectionID {
			return a.SectionID < b.SectionID
		}
		if a.Day.Index() != b.Day.Index() {
			return a.Day.Index() < b.Day.Index()
		}
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		return a.ID < b.ID
	})
}

// TimeColumns is the in-memory time-column store.
type TimeColumns struct {
	s *Store
}

func (t *TimeColumns) ReplaceForSection(_ context.Context, sectionID int64, columns []model.TimeColumnInput) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if _, ok := t.s.sections[sectionID]; !ok {
		return repository.ErrSectionNotFound
	}

	next := make([]model.TimeColumn, 0, len(t.s.columns)+len(columns))
	for _, c := range t.s.columns {
		if c.SectionID != sectionID {
			next = append(next, c)
		}
	}
	for _, c := range columns {
		next = append(next, model.TimeColumn{
			ID:        t.s.id(),
			SectionID: sectionID,
			Start:     c.Start,
			End:       c.End,
		})
	}
	t.s.columns = next
	return nil
}

func (t *TimeColumns) ListBySection(_ context.Context, sectionID int64) ([]model.TimeColumn, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var out []model.TimeColumn
	for _, c := range t.s.columns {
		if c.SectionID == sectionID {
			out = append(out, c)
		}
	}
	return out, nil
}
