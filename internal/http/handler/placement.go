// Package handler wires HTTP requests to internal/service.Orchestrator,
// grounded on the teacher's internal/http/handler/user.go bind-call-respond
// shape.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langtest/catengine/internal/domainerr"
	"github.com/langtest/catengine/internal/http/dto"
	"github.com/langtest/catengine/internal/http/problem"
	"github.com/langtest/catengine/internal/model"
	"github.com/langtest/catengine/internal/service"
)

// PlacementHandler serves the adaptive placement test endpoints.
type PlacementHandler struct {
	orchestrator *service.Orchestrator
}

// NewPlacementHandler builds a PlacementHandler.
func NewPlacementHandler(orchestrator *service.Orchestrator) *PlacementHandler {
	return &PlacementHandler{orchestrator: orchestrator}
}

// Start handles POST /api/v1/placement/:assigned_id/start.
func (h *PlacementHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()
	assignedID := c.Param("assigned_id")

	result, err := h.orchestrator.StartSession(ctx, assignedID)
	if err != nil {
		problem.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStartResponse(result))
}

// SubmitAnswer handles POST /api/v1/placement/:session_id/answer.
func (h *PlacementHandler) SubmitAnswer(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("session_id")

	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, problem.Document{
			Type:   domainerr.TypeInvalidResponse,
			Title:  "invalid request body",
			Status: http.StatusBadRequest,
			Detail: err.Error(),
		})
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")

	result, err := h.orchestrator.SubmitAnswer(ctx, sessionID, model.ResponseData(req.ResponseData), req.TimeTaken, idempotencyKey)
	if err != nil {
		problem.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSubmitAnswerResponse(result))
}
