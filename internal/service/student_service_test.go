package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mei-dev/tutor-center-api/internal/models"
	appErrors "github.com/mei-dev/tutor-center-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]models.Student
	enrolled map[string]bool
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.ListFilter) ([]models.Student, int, error) {
	var list []models.Student
	for _, s := range m.students {
		list = append(list, s)
	}
	return list, len(list), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) HasCourseLinks(ctx context.Context, id string) (bool, error) {
	return m.enrolled[id], nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = fmt.Sprintf("student-%d", len(m.students)+1)
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	delete(m.students, id)
	return nil
}

func TestStudentServiceCreateValidatesPhone(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, validator.New(), zap.NewNop())

	short := "12345"
	_, err := svc.Create(context.Background(), CreateStudentRequest{Name: "Student A", Phone: &short})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	phone := "13800138000"
	student, err := svc.Create(context.Background(), CreateStudentRequest{Name: "Student A", Phone: &phone, Gender: 1})
	require.NoError(t, err)
	require.NotNil(t, student.Phone)
	assert.Equal(t, phone, *student.Phone)
}

func TestStudentServiceUpdatePartial(t *testing.T) {
	phone := "13800138000"
	repo := &mockStudentRepo{students: map[string]models.Student{"s1": {ID: "s1", Name: "Student A", Phone: &phone, Gender: 1}}}
	svc := NewStudentService(repo, nil, validator.New(), zap.NewNop())

	name := "Student B"
	student, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Student B", student.Name)
	require.NotNil(t, student.Phone)
	assert.Equal(t, phone, *student.Phone)
	assert.Equal(t, 1, student.Gender)
}

func TestStudentServiceDeleteEnrolled(t *testing.T) {
	repo := &mockStudentRepo{
		students: map[string]models.Student{"s1": {ID: "s1", Name: "Student A"}},
		enrolled: map[string]bool{"s1": true},
	}
	svc := NewStudentService(repo, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
	assert.Contains(t, repo.students, "s1")
}
