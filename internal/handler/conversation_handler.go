package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vqdung71104/student-management-sub000/internal/dto"
	"github.com/vqdung71104/student-management-sub000/internal/models"
	"github.com/vqdung71104/student-management-sub000/internal/service"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
	"github.com/vqdung71104/student-management-sub000/pkg/response"
)

// ConversationHandler drives the question/answer flow over HTTP.
type ConversationHandler struct {
	service *service.ConversationService
}

// NewConversationHandler creates a new handler.
func NewConversationHandler(svc *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: svc}
}

// Question godoc
// @Summary Get the pending preference question
// @Description Returns the question awaiting an answer, starting a session when none exists
// @Tags Conversation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /conversation/question [get]
func (h *ConversationHandler) Question(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	state, err := h.service.PendingQuestion(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.QuestionResponse{
		Stage:              state.Stage,
		Question:           state.PendingQuestion,
		QuestionsAsked:     state.QuestionsAsked,
		QuestionsRemaining: state.QuestionsRemaining,
	}, nil)
}

// Answer godoc
// @Summary Submit one answer
// @Description Consumes one answer for the pending question and returns the next question or the collected preferences
// @Tags Conversation
// @Accept json
// @Produce json
// @Param payload body dto.AnswerRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /conversation/answer [post]
func (h *ConversationHandler) Answer(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}

	state, err := h.service.SubmitAnswer(c.Request.Context(), claims.StudentID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	res := dto.AnswerResponse{
		Stage:        state.Stage,
		Complete:     state.Stage == models.StageCompleted,
		NextQuestion: state.PendingQuestion,
	}
	if res.Complete {
		prefs := state.Preferences
		res.Preferences = &prefs
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Status godoc
// @Summary Conversation completeness
// @Tags Conversation
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conversation/status [get]
func (h *ConversationHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	state, err := h.service.Status(c.Request.Context(), claims.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.ConversationStatusResponse{
		Stage:             state.Stage,
		Complete:          state.Stage == models.StageCompleted,
		MissingCategories: state.Preferences.MissingCategories(),
	}, nil)
}

// Reset godoc
// @Summary Reset the conversation
// @Description Drops the session so the next question starts a fresh one
// @Tags Conversation
// @Produce json
// @Success 204 {object} response.Envelope
// @Router /conversation [delete]
func (h *ConversationHandler) Reset(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Reset(c.Request.Context(), claims.StudentID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
