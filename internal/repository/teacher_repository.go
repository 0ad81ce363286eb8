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

// TeacherRepository manages persistence for teachers. Reads resolve the
// subject label with a LEFT JOIN so a dangling subject_id surfaces as a nil
// subject_name instead of an error.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns a page of teachers with subject labels plus the total count.
func (r *TeacherRepository) List(ctx context.Context, filter models.ListFilter) ([]models.TeacherWithSubject, int, error) {
	filter = filter.Normalize()
	query := fmt.Sprintf(`SELECT t.id, t.name, t.remark, t.spell_name, t.gender, t.phone, t.subject_id, t.created_at, t.updated_at,
        s.name AS subject_name
        FROM teachers t
        LEFT JOIN subjects s ON s.id = t.subject_id
        ORDER BY t.created_at ASC LIMIT %d OFFSET %d`, filter.Limit, filter.Skip)
	var teachers []models.TeacherWithSubject
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM teachers"); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher row by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, name, remark, spell_name, gender, phone, subject_id, created_at, updated_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindDetailByID fetches a teacher with its subject label resolved.
func (r *TeacherRepository) FindDetailByID(ctx context.Context, id string) (*models.TeacherWithSubject, error) {
	const query = `SELECT t.id, t.name, t.remark, t.spell_name, t.gender, t.phone, t.subject_id, t.created_at, t.updated_at,
        s.name AS subject_name
        FROM teachers t
        LEFT JOIN subjects s ON s.id = t.subject_id
        WHERE t.id = $1`
	var detail models.TeacherWithSubject
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// HasSchedules reports whether any schedule still references the teacher.
func (r *TeacherRepository) HasSchedules(ctx context.Context, id string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM schedules WHERE teacher_id = $1 LIMIT 1", id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher schedules: %w", err)
	}
	return true, nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, name, remark, spell_name, gender, phone, subject_id, created_at, updated_at)
		VALUES (:id, :name, :remark, :spell_name, :gender, :phone, :subject_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update writes back a previously loaded and patched teacher row.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET name = :name, remark = :remark, spell_name = :spell_name, gender = :gender, phone = :phone, subject_id = :subject_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher row.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM teachers WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}
