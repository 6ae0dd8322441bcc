package dto

import "github.com/vqdung71104/student-management-sub000/internal/models"

// AnswerRequest carries one free-text or choice answer from the student.
type AnswerRequest struct {
	Text string `json:"text" validate:"required"`
}

// QuestionResponse describes the question currently awaiting an answer.
type QuestionResponse struct {
	Stage              models.ConversationStage     `json:"stage"`
	Question           *models.ConversationQuestion `json:"question,omitempty"`
	QuestionsAsked     int                          `json:"questions_asked"`
	QuestionsRemaining int                          `json:"questions_remaining"`
}

// AnswerResponse reports the state after consuming one answer.
type AnswerResponse struct {
	Stage        models.ConversationStage     `json:"stage"`
	Complete     bool                         `json:"complete"`
	NextQuestion *models.ConversationQuestion `json:"next_question,omitempty"`
	Preferences  *models.PreferenceModel      `json:"preferences,omitempty"`
}

// ConversationStatusResponse summarises session completeness.
type ConversationStatusResponse struct {
	Stage             models.ConversationStage    `json:"stage"`
	Complete          bool                        `json:"complete"`
	MissingCategories []models.PreferenceCategory `json:"missing_categories"`
}
