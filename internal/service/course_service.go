package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mei-dev/tutor-center-api/internal/models"
	appErrors "github.com/mei-dev/tutor-center-api/pkg/errors"
)

type courseRepository interface {
	ListDetails(ctx context.Context, filter models.ListFilter) ([]models.CourseWithDetails, int, error)
	ListDetailsByStudent(ctx context.Context, studentID string, status models.CourseStatus, filter models.ListFilter) ([]models.CourseWithDetails, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	FindDetailByID(ctx context.Context, id string) (*models.CourseWithDetails, error)
	Create(ctx context.Context, course *models.Course, studentIDs []string) error
	Update(ctx context.Context, course *models.Course, studentIDs []string, replaceStudents bool) error
	Delete(ctx context.Context, id string) error
}

type scheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
}

type studentIDValidator interface {
	ValidateIDs(ctx context.Context, studentIDs []string) (map[string]bool, error)
}

// CreateCourseRequest represents payload for scheduling a course session.
type CreateCourseRequest struct {
	ScheduleID string   `json:"schedule_id" validate:"required"`
	StartTime  string   `json:"start_time" validate:"required"`
	EndTime    string   `json:"end_time" validate:"required"`
	Address    string   `json:"address" validate:"required,max=500"`
	Status     string   `json:"status" validate:"omitempty,oneof=not_started in_progress completed cancelled"`
	Remark     *string  `json:"remark" validate:"omitempty,max=500"`
	StudentIDs []string `json:"student_ids"`
}

// UpdateCourseRequest represents a partial update. A nil StudentIDs leaves the
// roster untouched; a present list, even empty, replaces it wholesale.
type UpdateCourseRequest struct {
	ScheduleID *string  `json:"schedule_id" validate:"omitempty"`
	StartTime  *string  `json:"start_time" validate:"omitempty"`
	EndTime    *string  `json:"end_time" validate:"omitempty"`
	Address    *string  `json:"address" validate:"omitempty,max=500"`
	Status     *string  `json:"status" validate:"omitempty,oneof=not_started in_progress completed cancelled"`
	Remark     *string  `json:"remark" validate:"omitempty,max=500"`
	StudentIDs []string `json:"student_ids"`
}

// CourseService orchestrates course sessions and their rosters.
type CourseService struct {
	repo      courseRepository
	schedules scheduleReader
	students  studentIDValidator
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, schedules scheduleReader, students studentIDValidator, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, schedules: schedules, students: students, cache: cache, validator: validate, logger: logger}
}

// List returns enriched courses plus pagination data.
func (s *CourseService) List(ctx context.Context, filter models.ListFilter) ([]models.CourseWithDetails, *models.Pagination, error) {
	courses, total, err := s.repo.ListDetails(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, pageOf(filter, total), nil
}

// Get returns one enriched course, served from cache when possible.
func (s *CourseService) Get(ctx context.Context, id string) (*models.CourseWithDetails, error) {
	key := courseCacheKeyPrefix + id
	if s.cache.Enabled() {
		var cached models.CourseWithDetails
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, key, detail, 0)
	}
	return detail, nil
}

// Create schedules a new course against an existing fee schedule and links
// the listed students. Duplicate IDs in the list stay duplicated on the
// roster.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.CourseWithDetails, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if _, err := s.schedules.FindByID(ctx, req.ScheduleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule")
	}
	if err := s.ensureStudentsExist(ctx, req.StudentIDs); err != nil {
		return nil, err
	}

	course := &models.Course{
		ScheduleID: req.ScheduleID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Address:    req.Address,
		Status:     models.CourseStatus(req.Status),
		Remark:     normalizeOptional(req.Remark),
	}
	if err := s.repo.Create(ctx, course, req.StudentIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidateCache(ctx)
	return s.Get(ctx, course.ID)
}

// Update applies the supplied fields to an existing course. When student_ids
// is present the roster is replaced wholesale rather than merged.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.CourseWithDetails, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if req.ScheduleID != nil {
		if _, err := s.schedules.FindByID(ctx, *req.ScheduleID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule")
		}
		course.ScheduleID = *req.ScheduleID
	}
	if req.StartTime != nil {
		course.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		course.EndTime = *req.EndTime
	}
	if req.Address != nil {
		course.Address = *req.Address
	}
	if req.Status != nil {
		course.Status = models.CourseStatus(*req.Status)
	}
	if req.Remark != nil {
		course.Remark = normalizeOptional(req.Remark)
	}

	replaceStudents := req.StudentIDs != nil
	if replaceStudents {
		if err := s.ensureStudentsExist(ctx, req.StudentIDs); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, course, req.StudentIDs, replaceStudents); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.invalidateCache(ctx)
	return s.Get(ctx, id)
}

// Delete removes a course together with its roster links.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.invalidateCache(ctx)
	return nil
}

// ListStudentCourses returns the enriched courses a student attends. An
// unknown status value yields an empty page rather than an error, matching
// the behavior the admin frontend relies on.
func (s *CourseService) ListStudentCourses(ctx context.Context, studentID, rawStatus string, filter models.ListFilter) ([]models.CourseWithDetails, *models.Pagination, error) {
	var status models.CourseStatus
	if rawStatus != "" {
		parsed, ok := models.ParseCourseStatus(rawStatus)
		if !ok {
			return []models.CourseWithDetails{}, pageOf(filter, 0), nil
		}
		status = parsed
	}

	courses, total, err := s.repo.ListDetailsByStudent(ctx, studentID, status, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student courses")
	}
	return courses, pageOf(filter, total), nil
}

func (s *CourseService) ensureStudentsExist(ctx context.Context, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	existing, err := s.students.ValidateIDs(ctx, studentIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check students")
	}
	for _, id := range studentIDs {
		if !existing[id] {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
		}
	}
	return nil
}

func (s *CourseService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, courseCachePattern)
	}
}
