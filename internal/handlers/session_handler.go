package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chronoquiz/quiz-service/internal/services"
	"github.com/chronoquiz/quiz-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession opens a session against a shared quiz
// @Summary Start quiz session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session data"
// @Success 201 {object} services.StartSessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting quiz session", "shared_quiz_id", req.SharedQuizID)

	resp, err := h.sessionService.Start(c.Request.Context(), &req, optionalUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RecordAnswer submits one answer for a session question
// @Summary Record answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param token path string true "Session token"
// @Param answer body services.RecordAnswerRequest true "Answer data"
// @Success 200 {object} services.RecordAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{token}/answers [post]
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	var req services.RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.sessionService.RecordAnswer(c.Request.Context(), token, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// FinishSession freezes a session into a scored attempt
// @Summary Finish session
// @Tags sessions
// @Produce json
// @Param token path string true "Session token"
// @Success 200 {object} services.FinishSessionResponse
// @Failure 401 {object} ErrorResponse
// @Router /sessions/{token}/finish [post]
func (h *SessionHandler) FinishSession(c *gin.Context) {
	token := ParseStringIDParam(c, "token")
	if token == "" {
		return
	}

	resp, err := h.sessionService.Finish(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
