package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/vqdung71104/student-management-sub000/internal/models"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// SubjectService exposes read access to subjects and their sections.
type SubjectService struct {
	subjects subjectRepository
	sections scheduleSectionRepository
	logger   *zap.Logger
}

// NewSubjectService constructs the service.
func NewSubjectService(subjects subjectRepository, sections scheduleSectionRepository, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{subjects: subjects, sections: sections, logger: logger}
}

// List returns subjects matching the filter with pagination metadata.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, total, err := s.subjects.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return subjects, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one subject.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// ListSections returns every section for a subject. An empty list is
// surfaced as a typed error so callers can tell the student directly.
func (s *SubjectService) ListSections(ctx context.Context, subjectID string) ([]models.ClassSection, error) {
	if _, err := s.Get(ctx, subjectID); err != nil {
		return nil, err
	}
	sections, err := s.sections.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	if len(sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoSections, "no sections available for subject "+subjectID)
	}
	return sections, nil
}
