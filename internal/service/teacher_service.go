package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mei-dev/tutor-center-api/internal/models"
	appErrors "github.com/mei-dev/tutor-center-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.ListFilter) ([]models.TeacherWithSubject, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindDetailByID(ctx context.Context, id string) (*models.TeacherWithSubject, error)
	HasSchedules(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// CreateTeacherRequest represents payload for creating teachers.
type CreateTeacherRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Remark    string  `json:"remark" validate:"required,max=255"`
	SpellName string  `json:"spell_name" validate:"required,max=255"`
	Gender    int     `json:"gender" validate:"oneof=0 1"`
	Phone     *string `json:"phone" validate:"omitempty,len=11"`
	SubjectID string  `json:"subject_id" validate:"required"`
}

// UpdateTeacherRequest represents a partial update; nil fields stay untouched.
type UpdateTeacherRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	Remark    *string `json:"remark" validate:"omitempty,max=255"`
	SpellName *string `json:"spell_name" validate:"omitempty,max=255"`
	Gender    *int    `json:"gender" validate:"omitempty,oneof=0 1"`
	Phone     *string `json:"phone" validate:"omitempty,len=11"`
	SubjectID *string `json:"subject_id" validate:"omitempty"`
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	subjects  subjectReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, subjects subjectReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

// List returns teachers with subject labels plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.ListFilter) ([]models.TeacherWithSubject, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, pageOf(filter, total), nil
}

// Get returns a teacher with its subject label resolved.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherWithSubject, error) {
	teacher, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher against an existing subject.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.TeacherWithSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}

	teacher := &models.Teacher{
		Name:      req.Name,
		Remark:    req.Remark,
		SpellName: req.SpellName,
		Gender:    req.Gender,
		Phone:     normalizeOptional(req.Phone),
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	s.invalidateCourseCache(ctx)
	return s.Get(ctx, teacher.ID)
}

// Update applies the supplied fields to an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.TeacherWithSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	if req.SubjectID != nil {
		if _, err := s.subjects.FindByID(ctx, *req.SubjectID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
		}
		teacher.SubjectID = *req.SubjectID
	}
	if req.Name != nil {
		teacher.Name = *req.Name
	}
	if req.Remark != nil {
		teacher.Remark = *req.Remark
	}
	if req.SpellName != nil {
		teacher.SpellName = *req.SpellName
	}
	if req.Gender != nil {
		teacher.Gender = *req.Gender
	}
	if req.Phone != nil {
		teacher.Phone = normalizeOptional(req.Phone)
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	s.invalidateCourseCache(ctx)
	return s.Get(ctx, id)
}

// Delete removes a teacher unless schedules still reference it.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	inUse, err := s.repo.HasSchedules(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher usage")
	}
	if inUse {
		return appErrors.Clone(appErrors.ErrConflict, "teacher still referenced by schedules")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	s.invalidateCourseCache(ctx)
	return nil
}

func (s *TeacherService) invalidateCourseCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, courseCachePattern)
	}
}
