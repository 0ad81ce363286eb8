package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mei-dev/tutor-center-api/internal/models"
	appErrors "github.com/mei-dev/tutor-center-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects map[string]models.Subject
	teachers map[string]bool
	deleted  []string
}

func (m *mockSubjectRepo) List(ctx context.Context, filter models.ListFilter) ([]models.Subject, int, error) {
	var list []models.Subject
	for _, s := range m.subjects {
		list = append(list, s)
	}
	return list, len(list), nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	for id, s := range m.subjects {
		if id != excludeID && strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSubjectRepo) HasTeachers(ctx context.Context, id string) (bool, error) {
	return m.teachers[id], nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	if m.subjects == nil {
		m.subjects = make(map[string]models.Subject)
	}
	if subject.ID == "" {
		subject.ID = "new-subject"
	}
	m.subjects[subject.ID] = *subject
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.ID] = *subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	delete(m.subjects, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestSubjectServiceCreate(t *testing.T) {
	repo := &mockSubjectRepo{}
	svc := NewSubjectService(repo, nil, validator.New(), zap.NewNop())

	desc := "algebra and geometry"
	subject, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Math", Description: &desc})
	require.NoError(t, err)
	assert.NotEmpty(t, subject.ID)
	require.NotNil(t, subject.Description)
	assert.Equal(t, desc, *subject.Description)
}

func TestSubjectServiceCreateDuplicateName(t *testing.T) {
	repo := &mockSubjectRepo{subjects: map[string]models.Subject{"sub-1": {ID: "sub-1", Name: "Math"}}}
	svc := NewSubjectService(repo, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{Name: "Math"})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestSubjectServiceUpdateClearsDescription(t *testing.T) {
	desc := "old"
	repo := &mockSubjectRepo{subjects: map[string]models.Subject{"sub-1": {ID: "sub-1", Name: "Math", Description: &desc}}}
	svc := NewSubjectService(repo, nil, validator.New(), zap.NewNop())

	empty := ""
	subject, err := svc.Update(context.Background(), "sub-1", UpdateSubjectRequest{Description: &empty})
	require.NoError(t, err)
	assert.Nil(t, subject.Description)
	assert.Equal(t, "Math", subject.Name)
}

func TestSubjectServiceDeleteInUse(t *testing.T) {
	repo := &mockSubjectRepo{
		subjects: map[string]models.Subject{"sub-1": {ID: "sub-1", Name: "Math"}},
		teachers: map[string]bool{"sub-1": true},
	}
	svc := NewSubjectService(repo, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "sub-1")
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
	assert.Empty(t, repo.deleted)
}

func TestSubjectServiceDeleteMissing(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
