package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/model"
	"github.com/Freeeeeet/timetable/internal/repository/base"
)

type TimeColumnRepository struct {
	db     *base.Repository
	logger *zap.Logger
}

func NewTimeColumnRepository(pool *pgxpool.Pool, logger *zap.Logger) *TimeColumnRepository {
	return &TimeColumnRepository{
		db:     base.NewRepository(pool),
		logger: logger,
	}
}

// ReplaceForSection swaps the section's time columns in one transaction.
// Insertion order becomes display order through the serial id.
func (r *TimeColumnRepository) ReplaceForSection(ctx context.Context, sectionID int64, columns []model.TimeColumnInput) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := base.LockSection(ctx, tx, sectionID); err != nil {
			return err
		}

		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM sections WHERE id = $1 FOR KEY SHARE`, sectionID).Scan(&id)
		if err != nil {
			if base.IsNotFound(err) {
				return ErrSectionNotFound
			}
			return fmt.Errorf("check section: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM schedule_time_columns WHERE section_id = $1`, sectionID); err != nil {
			return fmt.Errorf("delete time columns: %w", err)
		}

		// Inserted one by one so ids follow the submitted order.
		for _, c := range columns {
			_, err := tx.Exec(ctx,
				`INSERT INTO schedule_time_columns (section_id, start_time, end_time) VALUES ($1, $2, $3)`,
				sectionID, c.Start, c.End)
			if err != nil {
				return fmt.Errorf("insert time column: %w", err)
			}
		}

		r.logger.Debug("Time columns replaced",
			zap.Int64("section_id", sectionID),
			zap.Int("count", len(columns)))

		return nil
	})
}

// ListBySection returns the section's columns in insertion order.
func (r *TimeColumnRepository) ListBySection(ctx context.Context, sectionID int64) ([]model.TimeColumn, error) {
	query := `
		SELECT id, section_id, start_time, end_time
		FROM schedule_time_columns
		WHERE section_id = $1
		ORDER BY id
	`

	rows, err := r.db.Pool().Query(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list time columns: %w", err)
	}
	defer rows.Close()

	var out []model.TimeColumn
	for rows.Next() {
		var c model.TimeColumn
		if err := rows.Scan(&c.ID, &c.SectionID, &c.Start, &c.End); err != nil {
			return nil, fmt.Errorf("scan time column: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time columns: %w", err)
	}

	return out, nil
}
