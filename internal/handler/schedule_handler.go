package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vqdung71104/student-management-sub000/internal/dto"
	"github.com/vqdung71104/student-management-sub000/internal/service"
	appErrors "github.com/vqdung71104/student-management-sub000/pkg/errors"
	"github.com/vqdung71104/student-management-sub000/pkg/response"
)

// ScheduleHandler exposes the suggestion endpoint.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Suggest godoc
// @Summary Suggest ranked schedule combinations
// @Description Enumerates conflict-free one-section-per-subject combinations ranked by the collected preferences
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SuggestScheduleRequest true "Subjects to schedule"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/suggest [post]
func (h *ScheduleHandler) Suggest(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SuggestScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid suggestion payload"))
		return
	}

	res, err := h.service.Suggest(c.Request.Context(), claims.StudentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
