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

// dayOrder sorts rows Monday..Sunday.
const dayOrder = `array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'], a.day)`

const detailColumns = `
	a.id, a.section_id, a.teacher_id, a.room_id, a.subject_id, a.day, a.start_minute, a.end_minute, a.type,
	sec.section_format, sec.course_name,
	sub.subject_code, sub.subject_name,
	r.room_code,
	t.first_name, t.last_name, t.gender
`

const detailJoins = `
	FROM schedule_assignments a
	LEFT JOIN sections sec ON sec.id = a.section_id
	LEFT JOIN subjects sub ON sub.id = a.subject_id
	LEFT JOIN rooms r ON r.id = a.room_id
	LEFT JOIN teachers t ON t.id = a.teacher_id
`

type AssignmentRepository struct {
	db     *base.Repository
	logger *zap.Logger
}

func NewAssignmentRepository(pool *pgxpool.Pool, logger *zap.Logger) *AssignmentRepository {
	return &AssignmentRepository{
		db:     base.NewRepository(pool),
		logger: logger,
	}
}

// ReplaceForSection deletes every row of the section and inserts rows in one
// transaction. Concurrent replaces of the same section are serialised by a
// transaction-scoped advisory lock keyed on the section id.
func (r *AssignmentRepository) ReplaceForSection(ctx context.Context, sectionID int64, rows []model.NewAssignment) (int, error) {
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := base.LockSection(ctx, tx, sectionID); err != nil {
			return err
		}

		// Holding a key share lock keeps the section from being deleted mid-replace.
		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM sections WHERE id = $1 FOR KEY SHARE`, sectionID).Scan(&id)
		if err != nil {
			if base.IsNotFound(err) {
				return ErrSectionNotFound
			}
			return fmt.Errorf("check section: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM schedule_assignments WHERE section_id = $1`, sectionID)
		if err != nil {
			return fmt.Errorf("delete section assignments: %w", err)
		}

		r.logger.Debug("Deleted previous assignments",
			zap.Int64("section_id", sectionID),
			zap.Int64("rows", tag.RowsAffected()))

		if len(rows) == 0 {
			return nil
		}

		query := `
			INSERT INTO schedule_assignments (section_id, teacher_id, room_id, subject_id, day, start_minute, end_minute, type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(query,
				sectionID,
				row.TeacherID,
				row.RoomID,
				row.SubjectID,
				string(row.Range.Day),
				row.Range.Start,
				row.Range.End,
				row.SessionType,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range rows {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert assignment: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("close insert batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(rows), nil
}

// ListBySection returns the section's rows with display data, Monday first.
func (r *AssignmentRepository) ListBySection(ctx context.Context, sectionID int64) ([]model.AssignmentDetail, error) {
	query := `SELECT ` + detailColumns + detailJoins + `
		WHERE a.section_id = $1
		ORDER BY ` + dayOrder + `, a.start_minute, a.id
	`
	return r.queryDetails(ctx, query, sectionID)
}

// ListAllDetailed returns every row with display data.
func (r *AssignmentRepository) ListAllDetailed(ctx context.Context) ([]model.AssignmentDetail, error) {
	query := `SELECT ` + detailColumns + detailJoins + `
		ORDER BY a.section_id, ` + dayOrder + `, a.start_minute, a.id
	`
	return r.queryDetails(ctx, query)
}

// ListAll returns every stored row ordered by id.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]model.Assignment, error) {
	query := `
		SELECT id, section_id, teacher_id, room_id, subject_id, day, start_minute, end_minute, type
		FROM schedule_assignments
		ORDER BY id
	`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var day string
		err := rows.Scan(
			&a.ID,
			&a.SectionID,
			&a.TeacherID,
			&a.RoomID,
			&a.SubjectID,
			&day,
			&a.StartMinute,
			&a.EndMinute,
			&a.SessionType,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.Day = model.Day(day)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	return out, nil
}

func (r *AssignmentRepository) queryDetails(ctx context.Context, query string, args ...any) ([]model.AssignmentDetail, error) {
	rows, err := r.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignment details: %w", err)
	}
	defer rows.Close()

	var out []model.AssignmentDetail
	for rows.Next() {
		var d model.AssignmentDetail
		var day string
		err := rows.Scan(
			&d.ID,
			&d.SectionID,
			&d.TeacherID,
			&d.RoomID,
			&d.SubjectID,
			&day,
			&d.StartMinute,
			&d.EndMinute,
			&d.SessionType,
			&d.SectionFormat,
			&d.CourseName,
			&d.SubjectCode,
			&d.SubjectName,
			&d.RoomCode,
			&d.TeacherFirstName,
			&d.TeacherLastName,
			&d.TeacherGender,
		)
		if err != nil {
			return nil, fmt.Errorf("scan assignment detail: %w", err)
		}
		d.Day = model.Day(day)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignment details: %w", err)
	}

	return out, nil
}
