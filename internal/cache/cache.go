// Package cache stores the latest conflict report.
//
// Reports are keyed by a generation number. Every schedule write bumps the
// generation, so a scan that raced with a write is stored under a stale
// generation and never served.
package cache

import (
	"context"
	"sync"

	"github.com/Freeeeeet/timetable/internal/model"
)

// Noop never holds anything.
type Noop struct{}

func (Noop) Generation(context.Context) (int64, error) { return 0, nil }

func (Noop) Get(context.Context, int64) (*model.ConflictReport, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, int64, *model.ConflictReport) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }

// Memory keeps one report in process memory.
type Memory struct {
	mu     sync.Mutex
	gen    int64
	report *model.ConflictReport
	stored int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Generation(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, nil
}

func (m *Memory) Get(_ context.Context, gen int64) (*model.ConflictReport, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.report == nil || m.stored != gen || gen != m.gen {
		return nil, false, nil
	}
	r := *m.report
	return &r, true, nil
}

func (m *Memory) Set(_ context.Context, gen int64, r *model.ConflictReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return nil
	}
	cp := *r
	m.report = &cp
	m.stored = gen
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.report = nil
	return nil
}
