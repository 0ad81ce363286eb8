package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mei-dev/tutor-center-api/internal/models"
	appErrors "github.com/mei-dev/tutor-center-api/pkg/errors"
)

type mockCourseRepo struct {
	courses map[string]models.Course
	rosters map[string][]string

	updatedRoster  []string
	rosterReplaced bool
	listedStudent  string
	listedStatus   models.CourseStatus
	listCalled     bool
}

func (m *mockCourseRepo) ListDetails(ctx context.Context, filter models.ListFilter) ([]models.CourseWithDetails, int, error) {
	var list []models.CourseWithDetails
	for id := range m.courses {
		detail, _ := m.FindDetailByID(ctx, id)
		list = append(list, *detail)
	}
	return list, len(list), nil
}

func (m *mockCourseRepo) ListDetailsByStudent(ctx context.Context, studentID string, status models.CourseStatus, filter models.ListFilter) ([]models.CourseWithDetails, int, error) {
	m.listCalled = true
	m.listedStudent = studentID
	m.listedStatus = status
	var list []models.CourseWithDetails
	for id, roster := range m.rosters {
		for _, sid := range roster {
			if sid != studentID {
				continue
			}
			course := m.courses[id]
			if status != "" && course.Status != status {
				break
			}
			detail, _ := m.FindDetailByID(ctx, id)
			list = append(list, *detail)
			break
		}
	}
	return list, len(list), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) FindDetailByID(ctx context.Context, id string) (*models.CourseWithDetails, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	students := []models.StudentPublic{}
	for _, sid := range m.rosters[id] {
		students = append(students, models.StudentPublic{ID: sid, Name: "Student " + sid})
	}
	return &models.CourseWithDetails{Course: c, Students: students}, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course, studentIDs []string) error {
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	if m.rosters == nil {
		m.rosters = make(map[string][]string)
	}
	if course.ID == "" {
		course.ID = "new-course"
	}
	if course.Status == "" {
		course.Status = models.CourseStatusNotStarted
	}
	m.courses[course.ID] = *course
	m.rosters[course.ID] = append([]string{}, studentIDs...)
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course, studentIDs []string, replaceStudents bool) error {
	m.courses[course.ID] = *course
	m.rosterReplaced = replaceStudents
	m.updatedRoster = studentIDs
	if replaceStudents {
		m.rosters[course.ID] = append([]string{}, studentIDs...)
	}
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	delete(m.courses, id)
	delete(m.rosters, id)
	return nil
}

type mockScheduleFinder struct{}

func (m *mockScheduleFinder) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Schedule{ID: id}, nil
}

type mockStudentIDs struct {
	known map[string]bool
}

func (m *mockStudentIDs) ValidateIDs(ctx context.Context, studentIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for _, id := range studentIDs {
		if m.known[id] {
			existing[id] = true
		}
	}
	return existing, nil
}

func newCourseService(repo *mockCourseRepo, known ...string) *CourseService {
	students := &mockStudentIDs{known: make(map[string]bool)}
	for _, id := range known {
		students.known[id] = true
	}
	return NewCourseService(repo, &mockScheduleFinder{}, students, nil, validator.New(), zap.NewNop())
}

func TestCourseServiceCreateKeepsDuplicateStudents(t *testing.T) {
	repo := &mockCourseRepo{}
	svc := newCourseService(repo, "s1", "s2")

	detail, err := svc.Create(context.Background(), CreateCourseRequest{
		ScheduleID: "sch-1",
		StartTime:  "2026-03-01 09:00",
		EndTime:    "2026-03-01 11:00",
		Address:    "Room 2",
		StudentIDs: []string{"s1", "s1", "s2"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusNotStarted, detail.Status)
	assert.Len(t, detail.Students, 3)
	assert.Equal(t, []string{"s1", "s1", "s2"}, repo.rosters[detail.ID])
}

func TestCourseServiceCreateUnknownSchedule(t *testing.T) {
	svc := newCourseService(&mockCourseRepo{})

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		ScheduleID: "missing",
		StartTime:  "2026-03-01 09:00",
		EndTime:    "2026-03-01 11:00",
		Address:    "Room 2",
	})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCourseServiceCreateUnknownStudent(t *testing.T) {
	svc := newCourseService(&mockCourseRepo{}, "s1")

	_, err := svc.Create(context.Background(), CreateCourseRequest{
		ScheduleID: "sch-1",
		StartTime:  "2026-03-01 09:00",
		EndTime:    "2026-03-01 11:00",
		Address:    "Room 2",
		StudentIDs: []string{"s1", "ghost"},
	})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCourseServiceUpdateReplacesRoster(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"c1": {ID: "c1", ScheduleID: "sch-1", Status: models.CourseStatusNotStarted}},
		rosters: map[string][]string{"c1": {"s1", "s2"}},
	}
	svc := newCourseService(repo, "s1", "s2", "s3")

	detail, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{StudentIDs: []string{"s2", "s3"}})
	require.NoError(t, err)
	assert.True(t, repo.rosterReplaced)
	assert.Equal(t, []string{"s2", "s3"}, repo.updatedRoster)
	require.Len(t, detail.Students, 2)
	assert.Equal(t, "s2", detail.Students[0].ID)
	assert.Equal(t, "s3", detail.Students[1].ID)
}

func TestCourseServiceUpdateWithoutStudentIDsKeepsRoster(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"c1": {ID: "c1", ScheduleID: "sch-1", Address: "Room 2", Status: models.CourseStatusNotStarted}},
		rosters: map[string][]string{"c1": {"s1", "s2"}},
	}
	svc := newCourseService(repo, "s1", "s2")

	status := "in_progress"
	detail, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{Status: &status})
	require.NoError(t, err)
	assert.False(t, repo.rosterReplaced)
	assert.Equal(t, models.CourseStatusInProgress, detail.Status)
	assert.Equal(t, "Room 2", detail.Address)
	assert.Len(t, detail.Students, 2)
}

func TestCourseServiceUpdatePartialFields(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"c1": {
			ID:         "c1",
			ScheduleID: "sch-1",
			StartTime:  "2026-03-01 09:00",
			EndTime:    "2026-03-01 11:00",
			Address:    "Room 2",
			Status:     models.CourseStatusNotStarted,
		}},
		rosters: map[string][]string{"c1": {}},
	}
	svc := newCourseService(repo)

	address := "Room 5"
	detail, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, "Room 5", detail.Address)
	assert.Equal(t, "2026-03-01 09:00", detail.StartTime)
	assert.Equal(t, models.CourseStatusNotStarted, detail.Status)
}

func TestCourseServiceUpdateMissingCourse(t *testing.T) {
	svc := newCourseService(&mockCourseRepo{})

	_, err := svc.Update(context.Background(), "ghost", UpdateCourseRequest{})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCourseServiceDelete(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"c1": {ID: "c1"}},
		rosters: map[string][]string{"c1": {"s1"}},
	}
	svc := newCourseService(repo)

	require.NoError(t, svc.Delete(context.Background(), "c1"))
	assert.Empty(t, repo.courses)
	assert.Empty(t, repo.rosters)

	err := svc.Delete(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCourseServiceListStudentCoursesInvalidStatus(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"c1": {ID: "c1", Status: models.CourseStatusInProgress}},
		rosters: map[string][]string{"c1": {"s1"}},
	}
	svc := newCourseService(repo, "s1")

	courses, pagination, err := svc.ListStudentCourses(context.Background(), "s1", "bogus", models.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
	assert.Equal(t, 0, pagination.TotalCount)
	assert.False(t, repo.listCalled)
}

func TestCourseServiceListStudentCoursesStatusFilter(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{
			"c1": {ID: "c1", Status: models.CourseStatusInProgress},
			"c2": {ID: "c2", Status: models.CourseStatusCompleted},
		},
		rosters: map[string][]string{"c1": {"s1"}, "c2": {"s1"}},
	}
	svc := newCourseService(repo, "s1")

	courses, _, err := svc.ListStudentCourses(context.Background(), "s1", "completed", models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "c2", courses[0].ID)
	assert.Equal(t, models.CourseStatusCompleted, repo.listedStatus)
}

func TestCourseServiceListStudentCoursesUnknownStudent(t *testing.T) {
	repo := &mockCourseRepo{
		courses: map[string]models.Course{"c1": {ID: "c1", Status: models.CourseStatusInProgress}},
		rosters: map[string][]string{"c1": {"s1"}},
	}
	svc := newCourseService(repo, "s1")

	courses, _, err := svc.ListStudentCourses(context.Background(), "ghost", "", models.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.Equal(t, "ghost", repo.listedStudent)
}
