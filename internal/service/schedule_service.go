package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mei-dev/tutor-center-api/internal/models"
	appErrors "github.com/mei-dev/tutor-center-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.ScheduleWithTeacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	FindDetailByID(ctx context.Context, id string) (*models.ScheduleWithTeacher, error)
	HasCourses(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// CreateScheduleRequest represents payload for creating fee schedules.
type CreateScheduleRequest struct {
	TeacherID string  `json:"teacher_id" validate:"required"`
	Hours     int     `json:"hours" validate:"required,min=1"`
	Fee       float64 `json:"fee" validate:"required,min=0"`
	Remark    *string `json:"remark" validate:"omitempty,max=500"`
}

// UpdateScheduleRequest represents a partial update; nil fields stay untouched.
type UpdateScheduleRequest struct {
	TeacherID *string  `json:"teacher_id" validate:"omitempty"`
	Hours     *int     `json:"hours" validate:"omitempty,min=1"`
	Fee       *float64 `json:"fee" validate:"omitempty,min=0"`
	Remark    *string  `json:"remark" validate:"omitempty,max=500"`
}

// ScheduleService orchestrates fee schedule operations.
type ScheduleService struct {
	repo      scheduleRepository
	teachers  teacherReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleRepository, teachers teacherReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, teachers: teachers, cache: cache, validator: validate, logger: logger}
}

// List returns schedules with labels plus pagination data.
func (s *ScheduleService) List(ctx context.Context, filter models.ListFilter) ([]models.ScheduleWithTeacher, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return schedules, pageOf(filter, total), nil
}

// Get returns a schedule with labels resolved.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleWithTeacher, error) {
	schedule, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// Create registers a new schedule against an existing teacher.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.ScheduleWithTeacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
	}

	schedule := &models.Schedule{
		TeacherID: req.TeacherID,
		Hours:     req.Hours,
		Fee:       req.Fee,
		Remark:    normalizeOptional(req.Remark),
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.invalidateCourseCache(ctx)
	return s.Get(ctx, schedule.ID)
}

// Update applies the supplied fields to an existing schedule.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.ScheduleWithTeacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	if req.TeacherID != nil {
		if _, err := s.teachers.FindByID(ctx, *req.TeacherID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
		}
		schedule.TeacherID = *req.TeacherID
	}
	if req.Hours != nil {
		schedule.Hours = *req.Hours
	}
	if req.Fee != nil {
		schedule.Fee = *req.Fee
	}
	if req.Remark != nil {
		schedule.Remark = normalizeOptional(req.Remark)
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	s.invalidateCourseCache(ctx)
	return s.Get(ctx, id)
}

// Delete removes a schedule unless courses still reference it.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	inUse, err := s.repo.HasCourses(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule usage")
	}
	if inUse {
		return appErrors.Clone(appErrors.ErrConflict, "schedule still referenced by courses")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidateCourseCache(ctx)
	return nil
}

func (s *ScheduleService) invalidateCourseCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, courseCachePattern)
	}
}
