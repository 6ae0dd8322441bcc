package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vqdung71104/student-management-sub000/internal/models"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
)

// ConversationRepository stores per-student conversation state in Redis.
// Every Save rewrites the whole state and refreshes the TTL, so a stalled
// conversation expires on its own and counts as an implicit reset.
type ConversationRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewConversationRepository constructs the store.
func NewConversationRepository(client *redis.Client, ttl time.Duration) *ConversationRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ConversationRepository{client: client, ttl: ttl}
}

func conversationKey(studentID string) string {
	return fmt.Sprintf("conversation:student:%s", studentID)
}

// Get loads the live state for a student, or ErrCacheMiss when absent.
func (r *ConversationRepository) Get(ctx context.Context, studentID string) (*models.ConversationState, error) {
	raw, err := r.client.Get(ctx, conversationKey(studentID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get conversation %s: %w", studentID, err)
	}

	var state models.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal conversation state %s: %w", studentID, err)
	}
	return &state, nil
}

// Save overwrites the student's state and refreshes its TTL.
func (r *ConversationRepository) Save(ctx context.Context, state *models.ConversationState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal conversation state %s: %w", state.StudentID, err)
	}
	if err := r.client.Set(ctx, conversationKey(state.StudentID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set conversation %s: %w", state.StudentID, err)
	}
	return nil
}

// Delete drops the student's state.
func (r *ConversationRepository) Delete(ctx context.Context, studentID string) error {
	if err := r.client.Del(ctx, conversationKey(studentID)).Err(); err != nil {
		return fmt.Errorf("redis delete conversation %s: %w", studentID, err)
	}
	return nil
}
