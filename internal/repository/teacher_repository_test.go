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

func newTeacherRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTeacherRepositoryListResolvesSubjectName(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "remark", "spell_name", "gender", "phone", "subject_id", "created_at", "updated_at", "subject_name"}).
		AddRow("t1", "Teacher A", "senior", "ta", 1, nil, "sub-1", time.Now(), time.Now(), "Math").
		AddRow("t2", "Teacher B", "junior", "tb", 0, nil, "gone", time.Now(), time.Now(), nil)
	mock.ExpectQuery("LEFT JOIN subjects s ON s.id = t.subject_id").WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	list, total, err := repo.List(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, total)
	require.NotNil(t, list[0].SubjectName)
	assert.Equal(t, "Math", *list[0].SubjectName)
	assert.Nil(t, list[1].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryHasSchedules(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM schedules WHERE teacher_id = $1 LIMIT 1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM schedules WHERE teacher_id = $1 LIMIT 1")).
		WithArgs("t2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	inUse, err := repo.HasSchedules(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, inUse)

	inUse, err = repo.HasSchedules(context.Background(), "t2")
	require.NoError(t, err)
	assert.False(t, inUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newTeacherRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{Name: "Teacher A", Remark: "senior", SpellName: "ta", Gender: 1, SubjectID: "sub-1"}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.False(t, teacher.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
