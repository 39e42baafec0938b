package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/repository/base"
)

// DirectoryRepository resolves human-readable names to ids. The tables are
// owned by the CRUD layer; this repository only reads them.
type DirectoryRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewDirectoryRepository(pool *pgxpool.Pool, logger *zap.Logger) *DirectoryRepository {
	return &DirectoryRepository{
		pool:   pool,
		logger: logger,
	}
}

// ResolveSubjectID returns the id of the subject with the given name, or nil.
func (r *DirectoryRepository) ResolveSubjectID(ctx context.Context, name string) (*int64, error) {
	query := `SELECT id FROM subjects WHERE subject_name = $1 ORDER BY id LIMIT 1`
	return r.resolve(ctx, "subject", query, strings.TrimSpace(name))
}

// ResolveRoomID returns the id of the room with the given code, or nil.
func (r *DirectoryRepository) ResolveRoomID(ctx context.Context, code string) (*int64, error) {
	query := `SELECT id FROM rooms WHERE room_code = $1 ORDER BY id LIMIT 1`
	return r.resolve(ctx, "room", query, strings.TrimSpace(code))
}

// ResolveTeacherID returns the id of the teacher whose "Last, First" name
// matches, or nil.
func (r *DirectoryRepository) ResolveTeacherID(ctx context.Context, displayName string) (*int64, error) {
	query := `SELECT id FROM teachers WHERE last_name || ', ' || first_name = $1 ORDER BY id LIMIT 1`
	return r.resolve(ctx, "teacher", query, strings.TrimSpace(displayName))
}

func (r *DirectoryRepository) resolve(ctx context.Context, entity, query, key string) (*int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, query, key).Scan(&id)
	if err != nil {
		if base.IsNotFound(err) {
			r.logger.Debug("Directory lookup missed",
				zap.String("entity", entity),
				zap.String("key", key))
			return nil, nil
		}
		return nil, fmt.Errorf("resolve %s: %w", entity, err)
	}
	return &id, nil
}
