package service

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Freeeeeet/timetable/internal/cache"
	"github.com/Freeeeeet/timetable/internal/conflict"
	"github.com/Freeeeeet/timetable/internal/metrics"
	"github.com/Freeeeeet/timetable/internal/model"
)

// AssignmentScanner reads the whole assignment table.
type AssignmentScanner interface {
	ListAll(ctx context.Context) ([]model.Assignment, error)
}

// ReportCache stores conflict reports by generation.
type ReportCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64) (*model.ConflictReport, bool, error)
	Set(ctx context.Context, gen int64, r *model.ConflictReport) error
	Invalidate(ctx context.Context) error
}

type ConflictService struct {
	assignments AssignmentScanner
	detector    conflict.Detector
	cache       ReportCache
	metrics     *metrics.Metrics
	logger      *zap.Logger

	group singleflight.Group
	// gen changes on every write seen by this process, so a caller that
	// arrives after a write never joins a scan that started before it.
	gen atomic.Int64
	now func() time.Time
}

func NewConflictService(
	assignments AssignmentScanner,
	detector conflict.Detector,
	reportCache ReportCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ConflictService {
	if detector == nil {
		detector = conflict.Sweep{}
	}
	if reportCache == nil {
		reportCache = cache.Noop{}
	}
	return &ConflictService{
		assignments: assignments,
		detector:    detector,
		cache:       reportCache,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// CountConflicts scans every stored row and reports each clashing pair once.
// Concurrent callers share one scan; results are cached until the next write.
func (s *ConflictService) CountConflicts(ctx context.Context) (*model.ConflictReport, error) {
	local := s.gen.Load()

	gen, err := s.cache.Generation(ctx)
	cacheOK := err == nil
	if err != nil {
		s.logger.Warn("Conflict cache unavailable", zap.Error(err))
	}

	if cacheOK {
		report, hit, err := s.cache.Get(ctx, gen)
		switch {
		case err != nil:
			s.logger.Warn("Failed to read cached conflict report", zap.Error(err))
		case hit:
			s.metrics.ObserveCache(true)
			return report, nil
		default:
			s.metrics.ObserveCache(false)
		}
	}

	key := strconv.FormatInt(local, 10) + ":" + strconv.FormatInt(gen, 10)
	v, err, _ := s.group.Do(key, func() (any, error) {
		// One caller's cancellation must not fail the others sharing this scan.
		return s.scan(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	report := v.(*model.ConflictReport)

	if cacheOK {
		if err := s.cache.Set(ctx, gen, report); err != nil {
			s.logger.Warn("Failed to cache conflict report", zap.Error(err))
		}
	}

	return report, nil
}

func (s *ConflictService) scan(ctx context.Context) (*model.ConflictReport, error) {
	start := time.Now()

	rows, err := s.assignments.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load assignments for conflict scan", zap.Error(err))
		return nil, fmt.Errorf("scan conflicts: %w", err)
	}

	conflicts := s.detector.Detect(rows)
	if conflicts == nil {
		conflicts = []model.Conflict{}
	}

	elapsed := time.Since(start)
	s.metrics.ObserveScan(elapsed, len(conflicts))
	s.logger.Info("Conflict scan finished",
		zap.String("detector", s.detector.Name()),
		zap.Int("rows", len(rows)),
		zap.Int("conflicts", len(conflicts)),
		zap.Duration("elapsed", elapsed))

	return &model.ConflictReport{
		ConflictCount: len(conflicts),
		Conflicts:     conflicts,
		RowsScanned:   len(rows),
		GeneratedAt:   s.now().UTC(),
	}, nil
}

// Invalidate drops cached reports after a schedule write.
func (s *ConflictService) Invalidate(ctx context.Context) error {
	s.gen.Add(1)
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate conflict cache: %w", err)
	}
	return nil
}
