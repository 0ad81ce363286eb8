package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mei-dev/tutor-center-api/internal/models"
)

const courseDetailColumns = `c.id, c.schedule_id, c.start_time, c.end_time, c.address, c.status, c.remark, c.created_at, c.updated_at,
        t.name AS teacher_name, s.name AS subject_name`

const courseDetailJoins = `FROM courses c
        LEFT JOIN schedules sc ON sc.id = c.schedule_id
        LEFT JOIN teachers t ON t.id = sc.teacher_id
        LEFT JOIN subjects s ON s.id = t.subject_id`

// CourseRepository manages courses and their student associations. Label
// resolution walks schedule → teacher → subject with LEFT JOINs, so a broken
// link anywhere in the chain yields NULL labels rather than an error. All
// multi-statement writes run in a single transaction.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListDetails returns a page of enriched courses plus the total count.
func (r *CourseRepository) ListDetails(ctx context.Context, filter models.ListFilter) ([]models.CourseWithDetails, int, error) {
	filter = filter.Normalize()
	query := fmt.Sprintf("SELECT %s %s ORDER BY c.created_at ASC LIMIT %d OFFSET %d",
		courseDetailColumns, courseDetailJoins, filter.Limit, filter.Skip)
	var courses []models.CourseWithDetails
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses"); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	if err := r.loadRosters(ctx, courses); err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// ListDetailsByStudent returns the enriched courses a student attends,
// optionally narrowed to one status, plus the matching total.
func (r *CourseRepository) ListDetailsByStudent(ctx context.Context, studentID string, status models.CourseStatus, filter models.ListFilter) ([]models.CourseWithDetails, int, error) {
	filter = filter.Normalize()
	base := courseDetailJoins + `
        JOIN course_students cs ON cs.course_id = c.id
        WHERE cs.student_id = $1`
	args := []interface{}{studentID}
	if status != "" {
		base += fmt.Sprintf(" AND c.status = $%d", len(args)+1)
		args = append(args, status)
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY c.created_at ASC LIMIT %d OFFSET %d",
		courseDetailColumns, base, filter.Limit, filter.Skip)
	var courses []models.CourseWithDetails
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list student courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count student courses: %w", err)
	}

	if err := r.loadRosters(ctx, courses); err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// FindByID fetches a bare course row by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, schedule_id, start_time, end_time, address, status, remark, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindDetailByID fetches one course with labels and roster resolved.
func (r *CourseRepository) FindDetailByID(ctx context.Context, id string) (*models.CourseWithDetails, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1", courseDetailColumns, courseDetailJoins)
	var detail models.CourseWithDetails
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}

	page := []models.CourseWithDetails{detail}
	if err := r.loadRosters(ctx, page); err != nil {
		return nil, err
	}
	return &page[0], nil
}

// Create inserts the course and one association row per student ID in a
// single transaction. Duplicate IDs produce duplicate association rows.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course, studentIDs []string) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	if course.Status == "" {
		course.Status = models.CourseStatusNotStarted
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create course: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO courses (id, schedule_id, start_time, end_time, address, status, remark, created_at, updated_at)
		VALUES (:id, :schedule_id, :start_time, :end_time, :address, :status, :remark, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	if err = insertCourseStudents(ctx, tx, course.ID, studentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create course: %w", err)
	}
	return nil
}

// Update writes back a patched course row. When replaceStudents is true the
// association set is replaced wholesale: every existing row is deleted and a
// fresh row inserted per ID, all inside the same transaction.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course, studentIDs []string, replaceStudents bool) error {
	course.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update course: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const update = `UPDATE courses SET schedule_id = :schedule_id, start_time = :start_time, end_time = :end_time, address = :address, status = :status, remark = :remark, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, update, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}

	if replaceStudents {
		if _, err = tx.ExecContext(ctx, "DELETE FROM course_students WHERE course_id = $1", course.ID); err != nil {
			return fmt.Errorf("clear course students: %w", err)
		}
		if err = insertCourseStudents(ctx, tx, course.ID, studentIDs); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update course: %w", err)
	}
	return nil
}

// Delete removes the association rows and then the course row in one
// transaction, so no orphaned links survive.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete course: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM course_students WHERE course_id = $1", id); err != nil {
		return fmt.Errorf("clear course students: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete course: %w", err)
	}
	return nil
}

func insertCourseStudents(ctx context.Context, tx *sqlx.Tx, courseID string, studentIDs []string) error {
	const insert = `INSERT INTO course_students (id, course_id, student_id) VALUES ($1, $2, $3)`
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), courseID, studentID); err != nil {
			return fmt.Errorf("link course student: %w", err)
		}
	}
	return nil
}

type rosterRow struct {
	CourseID string `db:"course_id"`
	models.StudentPublic
}

// loadRosters attaches student records to each course in the page with one
// IN-clause query per chunk. Association rows pointing at deleted students
// drop out of the inner join; duplicate rows are kept.
func (r *CourseRepository) loadRosters(ctx context.Context, courses []models.CourseWithDetails) error {
	for i := range courses {
		courses[i].Students = []models.StudentPublic{}
	}
	if len(courses) == 0 {
		return nil
	}

	index := make(map[string][]int, len(courses))
	ids := make([]string, 0, len(courses))
	for i := range courses {
		id := courses[i].ID
		if _, seen := index[id]; !seen {
			ids = append(ids, id)
		}
		index[id] = append(index[id], i)
	}

	const chunkSize = 100
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		placeholders := make([]string, len(chunk))
		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = id
		}
		query := fmt.Sprintf(`SELECT cs.course_id, st.id, st.name, st.remark, st.phone, st.gender, st.address
        FROM course_students cs
        JOIN students st ON st.id = cs.student_id
        WHERE cs.course_id IN (%s)`, strings.Join(placeholders, ","))

		var rows []rosterRow
		if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return fmt.Errorf("load course rosters: %w", err)
		}
		for _, row := range rows {
			for _, i := range index[row.CourseID] {
				courses[i].Students = append(courses[i].Students, row.StudentPublic)
			}
		}
	}
	return nil
}
