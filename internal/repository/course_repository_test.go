package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mei-dev/tutor-center-api/internal/models"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func courseDetailMockRows(id string, teacherName, subjectName interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "schedule_id", "start_time", "end_time", "address", "status", "remark", "created_at", "updated_at", "teacher_name", "subject_name"}).
		AddRow(id, "sch-1", "2026-03-01 09:00", "2026-03-01 11:00", "Room 2", "not_started", nil, time.Now(), time.Now(), teacherName, subjectName)
}

func TestCourseRepositoryFindDetailByID(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM courses c").
		WithArgs("c1").
		WillReturnRows(courseDetailMockRows("c1", "Teacher A", "Math"))
	mock.ExpectQuery("SELECT cs.course_id, st.id, st.name").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "id", "name", "remark", "phone", "gender", "address"}).
			AddRow("c1", "s1", "Student One", nil, nil, 0, nil).
			AddRow("c1", "s1", "Student One", nil, nil, 0, nil))

	detail, err := repo.FindDetailByID(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, detail.TeacherName)
	assert.Equal(t, "Teacher A", *detail.TeacherName)
	require.NotNil(t, detail.SubjectName)
	assert.Equal(t, "Math", *detail.SubjectName)
	assert.Len(t, detail.Students, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindDetailByIDNullLabels(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM courses c").
		WithArgs("c1").
		WillReturnRows(courseDetailMockRows("c1", nil, nil))
	mock.ExpectQuery("SELECT cs.course_id, st.id, st.name").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "id", "name", "remark", "phone", "gender", "address"}))

	detail, err := repo.FindDetailByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, detail.TeacherName)
	assert.Nil(t, detail.SubjectName)
	assert.NotNil(t, detail.Students)
	assert.Empty(t, detail.Students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListDetailsByStudentWithStatus(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("JOIN course_students cs ON cs.course_id = c.id").
		WithArgs("s1", "completed").
		WillReturnRows(courseDetailMockRows("c1", "Teacher A", "Math"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("s1", "completed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT cs.course_id, st.id, st.name").
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "id", "name", "remark", "phone", "gender", "address"}).
			AddRow("c1", "s1", "Student One", nil, nil, 0, nil))

	courses, total, err := repo.ListDetailsByStudent(context.Background(), "s1", models.CourseStatusCompleted, models.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, 1, total)
	assert.Len(t, courses[0].Students, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO course_students").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO course_students").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "s2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	course := &models.Course{ScheduleID: "sch-1", StartTime: "2026-03-01 09:00", EndTime: "2026-03-01 11:00", Address: "Room 2"}
	err := repo.Create(context.Background(), course, []string{"s1", "s2"})
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, models.CourseStatusNotStarted, course.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateReplacesRoster(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE courses SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM course_students").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO course_students").
		WithArgs(sqlmock.AnyArg(), "c1", "s2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO course_students").
		WithArgs(sqlmock.AnyArg(), "c1", "s3").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	course := &models.Course{ID: "c1", ScheduleID: "sch-1", Status: models.CourseStatusInProgress}
	err := repo.Update(context.Background(), course, []string{"s2", "s3"}, true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateKeepsRoster(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE courses SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	course := &models.Course{ID: "c1", ScheduleID: "sch-1", Status: models.CourseStatusInProgress}
	err := repo.Update(context.Background(), course, nil, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryDeleteRemovesLinksFirst(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM course_students").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM courses").
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "c1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
