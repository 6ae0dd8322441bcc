package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vqdung71104/student-management-sub000/internal/models"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
)

type memoryConversationStore struct {
	states map[string]models.ConversationState
}

func newMemoryConversationStore() *memoryConversationStore {
	return &memoryConversationStore{states: make(map[string]models.ConversationState)}
}

func (m *memoryConversationStore) Get(_ context.Context, studentID string) (*models.ConversationState, error) {
	state, ok := m.states[studentID]
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	copied := state
	return &copied, nil
}

func (m *memoryConversationStore) Save(_ context.Context, state *models.ConversationState) error {
	m.states[state.StudentID] = *state
	return nil
}

func (m *memoryConversationStore) Delete(_ context.Context, studentID string) error {
	delete(m.states, studentID)
	return nil
}

func TestPendingQuestionStartsSession(t *testing.T) {
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)

	state, err := svc.PendingQuestion(context.Background(), "20216666")
	require.NoError(t, err)
	require.Equal(t, models.StageCollecting, state.Stage)
	require.NotNil(t, state.PendingQuestion)
	require.Equal(t, models.CategoryDay, state.PendingQuestion.Key)
	require.Equal(t, len(models.CategoryOrder), state.QuestionsRemaining)

	_, saved := store.states["20216666"]
	require.True(t, saved)
}

func TestSubmitAnswerAdvancesCategories(t *testing.T) {
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := svc.PendingQuestion(ctx, "20216666")
	require.NoError(t, err)

	state, err := svc.SubmitAnswer(ctx, "20216666", "Thứ 2, thứ 4")
	require.NoError(t, err)
	require.Equal(t, models.PreferenceSet, state.Preferences.Day.Status)
	require.Equal(t, []int{2, 4}, state.Preferences.Day.Preferred)
	require.Equal(t, 1, state.QuestionsAsked)
	require.Equal(t, models.CategoryTime, state.PendingQuestion.Key)

	state, err = svc.SubmitAnswer(ctx, "20216666", "1. Buổi sáng")
	require.NoError(t, err)
	require.Equal(t, models.PeriodMorning, state.Preferences.Time.Period)
	require.Equal(t, models.CategoryContinuous, state.PendingQuestion.Key)
	require.Equal(t, []models.PreferenceCategory{
		models.CategoryContinuous,
		models.CategoryFreeDays,
		models.CategorySpecific,
	}, state.Preferences.MissingCategories())
}

func TestSubmitAnswerUnparsableKeepsQuestion(t *testing.T) {
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := svc.PendingQuestion(ctx, "20216666")
	require.NoError(t, err)

	state, err := svc.SubmitAnswer(ctx, "20216666", "asdfgh")
	require.NoError(t, err)
	require.Equal(t, 0, state.QuestionsAsked)
	require.Equal(t, models.CategoryDay, state.PendingQuestion.Key)
	require.Equal(t, models.PreferenceUnanswered, state.Preferences.Day.Status)
}

func TestSubmitAnswerAvoidedDays(t *testing.T) {
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := svc.PendingQuestion(ctx, "20216666")
	require.NoError(t, err)

	state, err := svc.SubmitAnswer(ctx, "20216666", "không thứ 7")
	require.NoError(t, err)
	require.Equal(t, models.PreferenceAvoid, state.Preferences.Day.Status)
	require.Equal(t, []int{7}, state.Preferences.Day.Avoided)
}

func TestFullConversationCompletes(t *testing.T) {
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := svc.PendingQuestion(ctx, "20216666")
	require.NoError(t, err)

	answers := []string{
		"thứ 2, thứ 3, thứ 5",
		"2. Buổi chiều",
		"có",
		"2",
		"thầy Bình, mã lớp 140001",
	}
	var state *models.ConversationState
	for _, answer := range answers {
		state, err = svc.SubmitAnswer(ctx, "20216666", answer)
		require.NoError(t, err)
	}

	require.Equal(t, models.StageCompleted, state.Stage)
	require.Nil(t, state.PendingQuestion)
	require.Equal(t, 0, state.QuestionsRemaining)
	require.Equal(t, len(models.CategoryOrder), state.QuestionsAsked)

	prefs, err := svc.Preferences(ctx, "20216666")
	require.NoError(t, err)
	require.Equal(t, models.PeriodAfternoon, prefs.Time.Period)
	require.True(t, prefs.Continuous.Wanted)
	require.Equal(t, models.PreferenceAvoid, prefs.FreeDays.Status)
	require.Contains(t, prefs.Specific.Teachers, "bình")
	require.Contains(t, prefs.Specific.SectionIDs, "140001")

	complete, err := svc.IsComplete(ctx, "20216666")
	require.NoError(t, err)
	require.True(t, complete)

	_, err = svc.SubmitAnswer(ctx, "20216666", "thứ 2")
	require.ErrorIs(t, err, appErrors.ErrConversationDone)
}

func TestSubmitAnswerTimeWindowWithoutDiacritics(t *testing.T) {
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := svc.PendingQuestion(ctx, "20216666")
	require.NoError(t, err)

	answers := []string{
		"không quan trọng",
		"5",
		"3",
		"3",
		"tu 08:00 den 11:30",
	}
	for _, answer := range answers {
		_, err = svc.SubmitAnswer(ctx, "20216666", answer)
		require.NoError(t, err)
	}

	prefs, err := svc.Preferences(ctx, "20216666")
	require.NoError(t, err)
	require.True(t, prefs.Specific.HasWindow())
	require.Equal(t, 8*60, prefs.Specific.WindowStart)
	require.Equal(t, 11*60+30, prefs.Specific.WindowEnd)
}

func TestPreferencesWhileCollecting(t *testing.T) {
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := svc.PendingQuestion(ctx, "20216666")
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, "20216666", "không quan trọng")
	require.NoError(t, err)

	_, err = svc.Preferences(ctx, "20216666")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "CONVERSATION_INCOMPLETE", appErr.Code)
}

func TestStatusMissingSession(t *testing.T) {
	svc := NewConversationService(newMemoryConversationStore(), nil)

	_, err := svc.Status(context.Background(), "20216666")
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	complete, err := svc.IsComplete(context.Background(), "20216666")
	require.NoError(t, err)
	require.False(t, complete)
}

func TestResetClearsSession(t *testing.T) {
	store := newMemoryConversationStore()
	svc := NewConversationService(store, nil)
	ctx := context.Background()

	_, err := svc.PendingQuestion(ctx, "20216666")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, "20216666"))

	_, err = svc.Status(ctx, "20216666")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
