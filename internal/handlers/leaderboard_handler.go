package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chronoquiz/quiz-service/internal/services"
	"github.com/chronoquiz/quiz-service/internal/utils"
)

type LeaderboardHandler struct {
	BaseHandler
	leaderboardService services.LeaderboardService
	exportService      services.ExportService
}

func NewLeaderboardHandler(
	leaderboardService services.LeaderboardService,
	exportService services.ExportService,
	logger utils.Logger,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler:        NewBaseHandler(logger),
		leaderboardService: leaderboardService,
		exportService:      exportService,
	}
}

// GlobalLeaderboard returns the global ranking window
// @Summary Global leaderboard
// @Tags leaderboards
// @Produce json
// @Success 200 {object} services.GlobalLeaderboardResponse
// @Failure 500 {object} ErrorResponse
// @Router /leaderboard [get]
func (h *LeaderboardHandler) GlobalLeaderboard(c *gin.Context) {
	resp, err := h.leaderboardService.Global(c.Request.Context(), optionalUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// QuizLeaderboard returns the ranking of a shared quiz
// @Summary Quiz leaderboard
// @Tags leaderboards
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} services.QuizLeaderboardResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{code}/leaderboard [get]
func (h *LeaderboardHandler) QuizLeaderboard(c *gin.Context) {
	code := ParseStringIDParam(c, "code")
	if code == "" {
		return
	}

	resp, err := h.leaderboardService.SharedQuizLeaderboard(c.Request.Context(), code, optionalUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportQuizLeaderboard downloads a quiz leaderboard as XLSX
// @Summary Export quiz leaderboard
// @Tags leaderboards
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param code path string true "Share code"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{code}/leaderboard/export [get]
func (h *LeaderboardHandler) ExportQuizLeaderboard(c *gin.Context) {
	code := ParseStringIDParam(c, "code")
	if code == "" {
		return
	}

	h.LogRequest(c, "Exporting quiz leaderboard", "share_code", code)

	data, filename, err := h.exportService.ExportQuizLeaderboard(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}
