package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chronoquiz/quiz-service/internal/services"
	"github.com/chronoquiz/quiz-service/internal/utils"
)

// xlsxContentType is the MIME type for XLSX downloads.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
}

func NewQuizHandler(
	quizService services.QuizService,
	exportService services.ExportService,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuiz creates a shared quiz and returns its share code
// @Summary Create shared quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.CreateQuizRequest true "Quiz data"
// @Success 201 {object} services.CreateQuizResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	creatorID := requireUserID(c)
	if creatorID == "" {
		return
	}

	h.LogRequest(c, "Creating shared quiz", "question_count", len(req.Questions))

	resp, err := h.quizService.CreateSharedQuiz(c.Request.Context(), &req, creatorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetQuiz retrieves the play view of a quiz by share code
// @Summary Get quiz by share code
// @Tags quizzes
// @Produce json
// @Param code path string true "Share code"
// @Success 200 {object} services.QuizPlayView
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{code} [get]
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	code := ParseStringIDParam(c, "code")
	if code == "" {
		return
	}

	view, err := h.quizService.GetByShareCode(c.Request.Context(), code)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SaveAttempt records a standalone attempt and returns its rating
// @Summary Save standalone attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body services.SaveAttemptRequest true "Attempt data"
// @Success 201 {object} services.SaveAttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /attempts [post]
func (h *QuizHandler) SaveAttempt(c *gin.Context) {
	var req services.SaveAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.quizService.SaveStandaloneAttempt(c.Request.Context(), &req, optionalUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListAttempts returns the caller's attempt history
// @Summary List caller's attempts
// @Tags attempts
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} services.AttemptHistoryResponse
// @Failure 401 {object} ErrorResponse
// @Router /attempts [get]
func (h *QuizHandler) ListAttempts(c *gin.Context) {
	userID := requireUserID(c)
	if userID == "" {
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	resp, err := h.quizService.AttemptHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportAttempts downloads the caller's attempt history as XLSX
// @Summary Export caller's attempts
// @Tags attempts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 401 {object} ErrorResponse
// @Router /attempts/export [get]
func (h *QuizHandler) ExportAttempts(c *gin.Context) {
	userID := requireUserID(c)
	if userID == "" {
		return
	}

	data, filename, err := h.exportService.ExportAttemptHistory(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}
