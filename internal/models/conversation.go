package models

import "time"

// ConversationStage tracks the preference-collection lifecycle.
type ConversationStage string

const (
	StageCollecting ConversationStage = "COLLECTING"
	StageCompleted  ConversationStage = "COMPLETED"
)

// ConversationQuestion is the question currently awaiting an answer.
type ConversationQuestion struct {
	Key     PreferenceCategory `json:"key"`
	Text    string             `json:"text"`
	Options []string           `json:"options,omitempty"`
}

// ConversationState is the per-student preference-collection session. It is
// persisted in Redis under a per-student key with a TTL and overwritten on
// every turn (last-write-wins); there is exactly one live state per student.
type ConversationState struct {
	StudentID          string               `json:"student_id"`
	Stage              ConversationStage    `json:"stage"`
	Preferences        PreferenceModel      `json:"preferences"`
	PendingQuestion    *ConversationQuestion `json:"pending_question,omitempty"`
	QuestionsAsked     int                  `json:"questions_asked"`
	QuestionsRemaining int                  `json:"questions_remaining"`
	StartedAt          time.Time            `json:"started_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// NewConversationState starts a fresh collecting session for a student.
func NewConversationState(studentID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		StudentID:          studentID,
		Stage:              StageCollecting,
		QuestionsRemaining: len(CategoryOrder),
		StartedAt:          now,
		UpdatedAt:          now,
	}
}
