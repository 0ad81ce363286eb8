package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mei-dev/tutor-center-api/internal/models"
)

// ScheduleRepository manages persistence for fee schedules. Reads resolve the
// teacher and subject labels in one query; any missing link in the
// schedule → teacher → subject chain leaves the dependent labels NULL.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns a page of schedules with labels plus the total count.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ListFilter) ([]models.ScheduleWithTeacher, int, error) {
	filter = filter.Normalize()
	query := fmt.Sprintf(`SELECT sc.id, sc.teacher_id, sc.hours, sc.fee, sc.remark, sc.created_at, sc.updated_at,
        t.name AS teacher_name, s.name AS subject_name
        FROM schedules sc
        LEFT JOIN teachers t ON t.id = sc.teacher_id
        LEFT JOIN subjects s ON s.id = t.subject_id
        ORDER BY sc.created_at ASC LIMIT %d OFFSET %d`, filter.Limit, filter.Skip)
	var schedules []models.ScheduleWithTeacher
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM schedules"); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// FindByID fetches a schedule row by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	const query = `SELECT id, teacher_id, hours, fee, remark, created_at, updated_at FROM schedules WHERE id = $1`
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindDetailByID fetches a schedule with teacher and subject labels resolved.
func (r *ScheduleRepository) FindDetailByID(ctx context.Context, id string) (*models.ScheduleWithTeacher, error) {
	const query = `SELECT sc.id, sc.teacher_id, sc.hours, sc.fee, sc.remark, sc.created_at, sc.updated_at,
        t.name AS teacher_name, s.name AS subject_name
        FROM schedules sc
        LEFT JOIN teachers t ON t.id = sc.teacher_id
        LEFT JOIN subjects s ON s.id = t.subject_id
        WHERE sc.id = $1`
	var detail models.ScheduleWithTeacher
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// HasCourses reports whether any course still references the schedule.
func (r *ScheduleRepository) HasCourses(ctx context.Context, id string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM courses WHERE schedule_id = $1 LIMIT 1", id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check schedule courses: %w", err)
	}
	return true, nil
}

// Create inserts a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, teacher_id, hours, fee, remark, created_at, updated_at)
		VALUES (:id, :teacher_id, :hours, :fee, :remark, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update writes back a previously loaded and patched schedule row.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET teacher_id = :teacher_id, hours = :hours, fee = :fee, remark = :remark, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule row.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
