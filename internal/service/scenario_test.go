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
)

type mockTeacherRepo struct {
	teachers map[string]models.Teacher
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.ListFilter) ([]models.TeacherWithSubject, int, error) {
	var list []models.TeacherWithSubject
	for _, t := range m.teachers {
		list = append(list, models.TeacherWithSubject{Teacher: t})
	}
	return list, len(list), nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindDetailByID(ctx context.Context, id string) (*models.TeacherWithSubject, error) {
	if t, ok := m.teachers[id]; ok {
		return &models.TeacherWithSubject{Teacher: t}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) HasSchedules(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.teachers == nil {
		m.teachers = make(map[string]models.Teacher)
	}
	if teacher.ID == "" {
		teacher.ID = "new-teacher"
	}
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error {
	delete(m.teachers, id)
	return nil
}

type mockScheduleRepo struct {
	schedules map[string]models.Schedule
}

func (m *mockScheduleRepo) List(ctx context.Context, filter models.ListFilter) ([]models.ScheduleWithTeacher, int, error) {
	var list []models.ScheduleWithTeacher
	for _, s := range m.schedules {
		list = append(list, models.ScheduleWithTeacher{Schedule: s})
	}
	return list, len(list), nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	if s, ok := m.schedules[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleRepo) FindDetailByID(ctx context.Context, id string) (*models.ScheduleWithTeacher, error) {
	if s, ok := m.schedules[id]; ok {
		return &models.ScheduleWithTeacher{Schedule: s}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleRepo) HasCourses(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (m *mockScheduleRepo) Create(ctx context.Context, schedule *models.Schedule) error {
	if m.schedules == nil {
		m.schedules = make(map[string]models.Schedule)
	}
	if schedule.ID == "" {
		schedule.ID = "new-schedule"
	}
	m.schedules[schedule.ID] = *schedule
	return nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, schedule *models.Schedule) error {
	m.schedules[schedule.ID] = *schedule
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id string) error {
	delete(m.schedules, id)
	return nil
}

// Walks the whole chain an operator goes through when setting up a new class:
// subject, teacher, fee schedule, students, then the course session itself.
func TestCourseSetupScenario(t *testing.T) {
	ctx := context.Background()
	validate := validator.New()
	logger := zap.NewNop()

	subjectRepo := &mockSubjectRepo{}
	teacherRepo := &mockTeacherRepo{}
	scheduleRepo := &mockScheduleRepo{}
	studentRepo := &mockStudentRepo{}
	courseRepo := &mockCourseRepo{}

	subjects := NewSubjectService(subjectRepo, nil, validate, logger)
	teachers := NewTeacherService(teacherRepo, subjectRepo, nil, validate, logger)
	schedules := NewScheduleService(scheduleRepo, teacherRepo, nil, validate, logger)
	students := NewStudentService(studentRepo, nil, validate, logger)

	subject, err := subjects.Create(ctx, CreateSubjectRequest{Name: "Math"})
	require.NoError(t, err)

	teacher, err := teachers.Create(ctx, CreateTeacherRequest{
		Name:      "Teacher A",
		Remark:    "senior",
		SpellName: "ta",
		Gender:    1,
		SubjectID: subject.ID,
	})
	require.NoError(t, err)

	schedule, err := schedules.Create(ctx, CreateScheduleRequest{
		TeacherID: teacher.ID,
		Hours:     2,
		Fee:       200,
	})
	require.NoError(t, err)

	one, err := students.Create(ctx, CreateStudentRequest{Name: "Student One", Gender: 0})
	require.NoError(t, err)
	two, err := students.Create(ctx, CreateStudentRequest{Name: "Student Two", Gender: 1})
	require.NoError(t, err)

	studentIDs := &mockStudentIDs{known: map[string]bool{one.ID: true, two.ID: true}}
	courses := NewCourseService(courseRepo, scheduleRepo, studentIDs, nil, validate, logger)

	course, err := courses.Create(ctx, CreateCourseRequest{
		ScheduleID: schedule.ID,
		StartTime:  "2026-03-01 09:00",
		EndTime:    "2026-03-01 11:00",
		Address:    "Room 2",
		StudentIDs: []string{one.ID, two.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusNotStarted, course.Status)
	require.Len(t, course.Students, 2)

	listed, _, err := courses.ListStudentCourses(ctx, one.ID, "", models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, course.ID, listed[0].ID)
}
