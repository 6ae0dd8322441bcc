package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vqdung71104/student-management-sub000/internal/dto"
	"github.com/vqdung71104/student-management-sub000/internal/models"
	"github.com/vqdung71104/student-management-sub000/pkg/config"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
)

type scheduleSectionRepository interface {
	ListBySubject(ctx context.Context, subjectID string) ([]models.ClassSection, error)
	ListRegisteredByStudent(ctx context.Context, studentID string) ([]models.ClassSection, error)
}

type sectionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ScheduleService orchestrates a suggestion request: load candidates per
// subject, prune them against the collected preferences, enumerate and rank
// combinations. All scheduling work is pure and in-memory; only the candidate
// loads touch Postgres and Redis.
type ScheduleService struct {
	sections      scheduleSectionRepository
	cache         sectionCache
	conversations *ConversationService
	generator     *CombinationGenerator
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	cfg           config.SchedulerConfig
}

// NewScheduleService constructs the orchestrator.
func NewScheduleService(
	sections scheduleSectionRepository,
	cache sectionCache,
	conversations *ConversationService,
	generator *CombinationGenerator,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxCombinations <= 0 {
		cfg.MaxCombinations = defaultMaxCombinations
	}
	if cfg.WeeksPerTerm <= 0 {
		cfg.WeeksPerTerm = models.DefaultWeeksPerTerm
	}
	return &ScheduleService{
		sections:      sections,
		cache:         cache,
		conversations: conversations,
		generator:     generator,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		cfg:           cfg,
	}
}

// Suggest returns ranked conflict-free combinations for the student's
// requested subjects, honouring the preferences collected by the
// conversation. The conversation state is dropped once results are returned.
func (s *ScheduleService) Suggest(ctx context.Context, studentID string, req dto.SuggestScheduleRequest) (*dto.SuggestScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid suggestion payload")
	}

	prefs, err := s.conversations.Preferences(ctx, studentID)
	if err != nil {
		return nil, err
	}

	registered, err := s.sections.ListRegisteredByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registered sections")
	}
	for i := range registered {
		registered[i].Normalize(s.cfg.WeeksPerTerm)
	}
	registeredSubjects := make(map[string]bool, len(registered))
	for i := range registered {
		registeredSubjects[registered[i].SubjectID] = true
	}

	perSubject := make([]SubjectCandidates, 0, len(req.Subjects))
	skipped := make([]dto.SkippedSubject, 0)
	requested := make(map[string]bool, len(req.Subjects))
	for _, selection := range req.Subjects {
		if requested[selection.SubjectID] {
			skipped = append(skipped, dto.SkippedSubject{
				SubjectID: selection.SubjectID,
				Reason:    "subject listed more than once",
			})
			continue
		}
		requested[selection.SubjectID] = true

		if registeredSubjects[selection.SubjectID] {
			skipped = append(skipped, dto.SkippedSubject{
				SubjectID: selection.SubjectID,
				Reason:    "already registered",
			})
			continue
		}

		candidates, err := s.loadSections(ctx, selection.SubjectID)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			skipped = append(skipped, dto.SkippedSubject{
				SubjectID: selection.SubjectID,
				Reason:    fmt.Sprintf("no sections available for subject %s", selection.SubjectID),
			})
			continue
		}

		candidates = filterSections(candidates, func(section *models.ClassSection) bool {
			return !ConflictsWithAny(section, registered)
		})
		if len(candidates) == 0 {
			skipped = append(skipped, dto.SkippedSubject{
				SubjectID: selection.SubjectID,
				Reason:    "every section conflicts with an already registered class",
			})
			continue
		}

		filtered := FilterSections(candidates, prefs, true)
		if len(filtered) == 0 {
			filtered = FilterSections(candidates, prefs, false)
		}
		candidates = filtered
		if s.cfg.CandidatesPerSubject > 0 && len(candidates) > s.cfg.CandidatesPerSubject {
			candidates = candidates[:s.cfg.CandidatesPerSubject]
		}

		perSubject = append(perSubject, SubjectCandidates{
			SubjectID: selection.SubjectID,
			Sections:  candidates,
		})
	}

	response := &dto.SuggestScheduleResponse{
		FullySatisfied: []models.Combination{},
		WithViolations: []models.Combination{},
		Skipped:        skipped,
	}

	if len(perSubject) > 0 {
		combinations := s.generator.Generate(perSubject, prefs, s.cfg.MaxCombinations)
		topK := req.TopK
		if topK <= 0 {
			topK = s.cfg.TopK
		}
		for _, combination := range combinations {
			if combination.HasViolations {
				response.WithViolations = append(response.WithViolations, combination)
			} else if len(response.FullySatisfied) < topK || topK <= 0 {
				response.FullySatisfied = append(response.FullySatisfied, combination)
			}
		}
	}

	if err := s.conversations.Reset(ctx, studentID); err != nil {
		s.logger.Warn("failed to drop conversation state after suggestion",
			zap.String("student_id", studentID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordSuggestion()
	}
	return response, nil
}

// loadSections returns normalised sections for a subject, served from the
// Redis cache when fresh. Derived fields are not serialised, so sections are
// re-normalised after every load regardless of origin.
func (s *ScheduleService) loadSections(ctx context.Context, subjectID string) ([]models.ClassSection, error) {
	key := fmt.Sprintf("sections:subject:%s", subjectID)

	var sections []models.ClassSection
	if s.cache != nil {
		start := time.Now()
		err := s.cache.Get(ctx, key, &sections)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		}
		if err == nil {
			s.normalizeAll(sections)
			return sections, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("section cache read failed", zap.String("subject_id", subjectID), zap.Error(err))
		}
	}

	sections, err := s.sections.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject sections")
	}

	if s.cache != nil && len(sections) > 0 {
		start := time.Now()
		if err := s.cache.Set(ctx, key, sections, s.cfg.SectionCacheTTL); err != nil {
			s.logger.Warn("section cache write failed", zap.String("subject_id", subjectID), zap.Error(err))
		} else if s.metrics != nil {
			s.metrics.ObserveCacheWrite(time.Since(start))
		}
	}

	s.normalizeAll(sections)
	return sections, nil
}

func (s *ScheduleService) normalizeAll(sections []models.ClassSection) {
	for i := range sections {
		sections[i].Normalize(s.cfg.WeeksPerTerm)
	}
}
