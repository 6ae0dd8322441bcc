package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vqdung71104/student-management-sub000/internal/dto"
	"github.com/vqdung71104/student-management-sub000/internal/models"
	"github.com/vqdung71104/student-management-sub000/pkg/config"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
)

type stubSectionRepository struct {
	bySubject  map[string][]models.ClassSection
	registered []models.ClassSection
	listCalls  int
}

func (s *stubSectionRepository) ListBySubject(_ context.Context, subjectID string) ([]models.ClassSection, error) {
	s.listCalls++
	return s.bySubject[subjectID], nil
}

func (s *stubSectionRepository) ListRegisteredByStudent(_ context.Context, _ string) ([]models.ClassSection, error) {
	return s.registered, nil
}

type stubSectionCache struct {
	entries map[string][]models.ClassSection
	sets    int
}

func (s *stubSectionCache) Get(_ context.Context, key string, dest interface{}) error {
	sections, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	out, ok := dest.(*[]models.ClassSection)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*out = append([]models.ClassSection(nil), sections...)
	return nil
}

func (s *stubSectionCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.entries == nil {
		s.entries = make(map[string][]models.ClassSection)
	}
	sections, ok := value.([]models.ClassSection)
	if ok {
		s.entries[key] = append([]models.ClassSection(nil), sections...)
	}
	s.sets++
	return nil
}

func completedConversation(t *testing.T, studentID string) *ConversationService {
	t.Helper()
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := svc.PendingQuestion(ctx, studentID)
	require.NoError(t, err)
	for _, answer := range []string{
		"không quan trọng",
		"5",
		"3",
		"3",
		"không",
	} {
		_, err = svc.SubmitAnswer(ctx, studentID, answer)
		require.NoError(t, err)
	}
	return svc
}

func newScheduleService(repo *stubSectionRepository, cache *stubSectionCache, conversations *ConversationService) *ScheduleService {
	return NewScheduleService(
		repo,
		cache,
		conversations,
		NewCombinationGenerator(nil, nil),
		nil,
		nil,
		nil,
		config.SchedulerConfig{TopK: 5, SectionCacheTTL: time.Minute},
	)
}

func TestSuggestReturnsCombinations(t *testing.T) {
	repo := &stubSectionRepository{
		bySubject: map[string][]models.ClassSection{
			"MI1111": {
				newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
				newSection("1002", "MI1111", "Thứ 3", "1-16", "07:00", "09:00"),
			},
			"PH1110": {
				newSection("2001", "PH1110", "Thứ 4", "1-16", "13:00", "15:00"),
			},
		},
	}
	conversations := completedConversation(t, "20216666")
	svc := newScheduleService(repo, &stubSectionCache{}, conversations)

	resp, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}, {SubjectID: "PH1110"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.FullySatisfied, 2)
	require.Empty(t, resp.WithViolations)
	require.Empty(t, resp.Skipped)
	for _, combination := range resp.FullySatisfied {
		require.Len(t, combination.Sections, 2)
	}

	// State is dropped after a successful suggestion.
	_, err = conversations.Status(context.Background(), "20216666")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSuggestRequiresCompletedConversation(t *testing.T) {
	conversations := NewConversationService(newMemoryConversationStore(), nil)
	_, err := conversations.PendingQuestion(context.Background(), "20216666")
	require.NoError(t, err)

	svc := newScheduleService(&stubSectionRepository{}, &stubSectionCache{}, conversations)
	_, err = svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "CONVERSATION_INCOMPLETE", appErr.Code)
}

func TestSuggestSkipsRegisteredSubject(t *testing.T) {
	repo := &stubSectionRepository{
		bySubject: map[string][]models.ClassSection{
			"PH1110": {newSection("2001", "PH1110", "Thứ 4", "1-16", "13:00", "15:00")},
		},
		registered: []models.ClassSection{
			newSection("9001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
		},
	}
	svc := newScheduleService(repo, &stubSectionCache{}, completedConversation(t, "20216666"))

	resp, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}, {SubjectID: "PH1110"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Skipped, 1)
	require.Equal(t, "MI1111", resp.Skipped[0].SubjectID)
	require.Equal(t, "already registered", resp.Skipped[0].Reason)
	require.Len(t, resp.FullySatisfied, 1)
}

func TestSuggestSkipsSubjectWithoutSections(t *testing.T) {
	repo := &stubSectionRepository{
		bySubject: map[string][]models.ClassSection{
			"PH1110": {newSection("2001", "PH1110", "Thứ 4", "1-16", "13:00", "15:00")},
		},
	}
	svc := newScheduleService(repo, &stubSectionCache{}, completedConversation(t, "20216666"))

	resp, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "EM1010"}, {SubjectID: "PH1110"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Skipped, 1)
	require.Equal(t, "EM1010", resp.Skipped[0].SubjectID)
	require.Contains(t, resp.Skipped[0].Reason, "no sections available")
}

func TestSuggestDropsSectionsConflictingWithRegistered(t *testing.T) {
	repo := &stubSectionRepository{
		bySubject: map[string][]models.ClassSection{
			"MI1111": {
				newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
				newSection("1002", "MI1111", "Thứ 3", "1-16", "07:00", "09:00"),
			},
		},
		registered: []models.ClassSection{
			newSection("9001", "EM1010", "Thứ 2", "1-16", "08:00", "10:00"),
		},
	}
	svc := newScheduleService(repo, &stubSectionCache{}, completedConversation(t, "20216666"))

	resp, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.FullySatisfied, 1)
	require.Len(t, resp.FullySatisfied[0].Sections, 1)
	require.Equal(t, "1002", resp.FullySatisfied[0].Sections[0].ID)
}

func TestSuggestAllSectionsConflictWithRegistered(t *testing.T) {
	repo := &stubSectionRepository{
		bySubject: map[string][]models.ClassSection{
			"MI1111": {
				newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
			},
		},
		registered: []models.ClassSection{
			newSection("9001", "EM1010", "Thứ 2", "1-16", "08:00", "10:00"),
		},
	}
	svc := newScheduleService(repo, &stubSectionCache{}, completedConversation(t, "20216666"))

	resp, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}},
	})
	require.NoError(t, err)
	require.Empty(t, resp.FullySatisfied)
	require.Len(t, resp.Skipped, 1)
	require.Contains(t, resp.Skipped[0].Reason, "conflicts with an already registered class")
}

func TestSuggestSkipsDuplicateSubject(t *testing.T) {
	repo := &stubSectionRepository{
		bySubject: map[string][]models.ClassSection{
			"MI1111": {
				newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00"),
				newSection("1002", "MI1111", "Thứ 3", "1-16", "07:00", "09:00"),
			},
		},
	}
	svc := newScheduleService(repo, &stubSectionCache{}, completedConversation(t, "20216666"))

	resp, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}, {SubjectID: "MI1111"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Skipped, 1)
	require.Equal(t, "MI1111", resp.Skipped[0].SubjectID)
	require.Equal(t, "subject listed more than once", resp.Skipped[0].Reason)

	require.Len(t, resp.FullySatisfied, 2)
	for _, combination := range resp.FullySatisfied {
		require.Len(t, combination.Sections, 1)
		subjects := make(map[string]bool)
		for _, section := range combination.Sections {
			require.False(t, subjects[section.SubjectID])
			subjects[section.SubjectID] = true
		}
	}
}

func TestSuggestRelaxesPreferredDaysWhenNothingMatches(t *testing.T) {
	store := newMemoryConversationStore()
	conversations := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := conversations.PendingQuestion(ctx, "20216666")
	require.NoError(t, err)
	for _, answer := range []string{
		"thứ 2",
		"5",
		"3",
		"3",
		"không",
	} {
		_, err = conversations.SubmitAnswer(ctx, "20216666", answer)
		require.NoError(t, err)
	}

	// No section falls on the preferred Monday; the relaxed pass keeps them.
	repo := &stubSectionRepository{
		bySubject: map[string][]models.ClassSection{
			"MI1111": {newSection("1001", "MI1111", "Thứ 5", "1-16", "07:00", "09:00")},
		},
	}
	svc := newScheduleService(repo, &stubSectionCache{}, conversations)

	resp, err := svc.Suggest(ctx, "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.FullySatisfied, 1)
	require.Equal(t, "1001", resp.FullySatisfied[0].Sections[0].ID)
}

func TestSuggestHonoursTopK(t *testing.T) {
	sections := make([]models.ClassSection, 0, 6)
	days := []string{"Thứ 2", "Thứ 3", "Thứ 4", "Thứ 5", "Thứ 6", "Thứ 7"}
	for i, day := range days {
		sections = append(sections, newSection(
			string(rune('a'+i)), "MI1111", day, "1-16", "07:00", "09:00"))
	}
	repo := &stubSectionRepository{bySubject: map[string][]models.ClassSection{"MI1111": sections}}
	svc := newScheduleService(repo, &stubSectionCache{}, completedConversation(t, "20216666"))

	resp, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}},
		TopK:     3,
	})
	require.NoError(t, err)
	require.Len(t, resp.FullySatisfied, 3)
}

func TestSuggestValidatesPayload(t *testing.T) {
	svc := newScheduleService(&stubSectionRepository{}, &stubSectionCache{}, completedConversation(t, "20216666"))

	_, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSuggestServesSectionsFromCache(t *testing.T) {
	cached := newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00")
	cache := &stubSectionCache{entries: map[string][]models.ClassSection{
		"sections:subject:MI1111": {cached},
	}}
	repo := &stubSectionRepository{}
	svc := newScheduleService(repo, cache, completedConversation(t, "20216666"))

	resp, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.FullySatisfied, 1)
	require.Zero(t, repo.listCalls)
}

func TestSuggestPopulatesCacheOnMiss(t *testing.T) {
	repo := &stubSectionRepository{
		bySubject: map[string][]models.ClassSection{
			"MI1111": {newSection("1001", "MI1111", "Thứ 2", "1-16", "07:00", "09:00")},
		},
	}
	cache := &stubSectionCache{}
	svc := newScheduleService(repo, cache, completedConversation(t, "20216666"))

	_, err := svc.Suggest(context.Background(), "20216666", dto.SuggestScheduleRequest{
		Subjects: []models.SubjectSelection{{SubjectID: "MI1111"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)
	require.Contains(t, cache.entries, "sections:subject:MI1111")
}
