package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/chronoquiz/quiz-service/internal/events"
	"github.com/chronoquiz/quiz-service/internal/models"
	"github.com/chronoquiz/quiz-service/internal/repositories"
	"github.com/chronoquiz/quiz-service/internal/scoring"
	"github.com/chronoquiz/quiz-service/internal/utils"
)

// ===== REQUEST / RESPONSE TYPES =====

type CreateQuestionRequest struct {
	Kind        models.QuestionKind `json:"kind" validate:"required,question_kind"`
	Prompt      string              `json:"prompt" validate:"required"`
	Correct     models.AnswerValue  `json:"correct"`
	Explanation *string             `json:"explanation,omitempty"`
}

type CreateQuizRequest struct {
	Title       string                  `json:"title" validate:"required,min=1,max=200"`
	Description *string                 `json:"description,omitempty" validate:"omitempty,max=1000"`
	Config      models.QuizConfig       `json:"config"`
	Questions   []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`

	// Optional result of the creator's own play-through, recorded against the
	// new quiz in the same call.
	CreatorAttempt *SaveAttemptRequest `json:"creator_attempt,omitempty"`
}

type CreateQuizResponse struct {
	ID        uint   `json:"id"`
	ShareCode string `json:"share_code"`
}

type AnswerOutcomeRequest struct {
	IsCorrect   bool `json:"is_correct"`
	TimeSpentMs int  `json:"time_spent_ms" validate:"gte=0"`
}

type SaveAttemptRequest struct {
	CorrectAnswers int                    `json:"correct_answers" validate:"gte=0"`
	TotalQuestions int                    `json:"total_questions" validate:"required,gt=0"`
	TotalTimeMs    int                    `json:"total_time_ms" validate:"gte=0"`
	Kinds          []models.QuestionKind  `json:"kinds" validate:"required,min=1,dive,question_kind"`
	Detailed       []AnswerOutcomeRequest `json:"detailed,omitempty" validate:"omitempty,dive"`
	Config         *models.QuizConfig     `json:"config,omitempty"`
}

type SaveAttemptResponse struct {
	AttemptID    uint    `json:"attempt_id"`
	RatingPoints float64 `json:"rating_points"`
}

// QuestionPlayView is a question as shown to a player, without the canonical
// answer or the explanation.
type QuestionPlayView struct {
	ID       uint                `json:"id"`
	Position int                 `json:"position"`
	Kind     models.QuestionKind `json:"kind"`
	Prompt   string              `json:"prompt"`
}

type QuizPlayView struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description,omitempty"`
	ShareCode   string             `json:"share_code"`
	Config      json.RawMessage    `json:"config,omitempty"`
	Questions   []QuestionPlayView `json:"questions"`
}

type AttemptHistoryResponse struct {
	Attempts []*models.QuizAttempt `json:"attempts"`
	Total    int64                 `json:"total"`
}

// ===== SERVICE =====

// QuizService covers quiz creation and sharing plus standalone attempts that
// never went through a session.
type QuizService interface {
	CreateSharedQuiz(ctx context.Context, req *CreateQuizRequest, creatorID string) (*CreateQuizResponse, error)
	GetByShareCode(ctx context.Context, code string) (*QuizPlayView, error)
	SaveStandaloneAttempt(ctx context.Context, req *SaveAttemptRequest, userID *string) (*SaveAttemptResponse, error)
	AttemptHistory(ctx context.Context, userID string, limit, offset int) (*AttemptHistoryResponse, error)
}

type quizService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *utils.Validator
	shareCodes ShareCodeGenerator
	publisher  events.EventPublisher
}

func NewQuizService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, shareCodes ShareCodeGenerator, publisher events.EventPublisher) QuizService {
	return &quizService{
		repo:       repo,
		logger:     logger,
		validator:  validator,
		shareCodes: shareCodes,
		publisher:  publisher,
	}
}

// ===== QUIZ OPERATIONS =====

func (s *quizService) CreateSharedQuiz(ctx context.Context, req *CreateQuizRequest, creatorID string) (*CreateQuizResponse, error) {
	s.logger.Info("Creating shared quiz",
		"creator_id", creatorID,
		"question_count", len(req.Questions))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if req.CreatorAttempt != nil {
		if err := s.validateAttempt(req.CreatorAttempt); err != nil {
			return nil, err
		}
	}

	code, err := s.shareCodes.Generate(ctx)
	if err != nil {
		return nil, err
	}

	configJSON, err := json.Marshal(req.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quiz config: %w", err)
	}

	quiz := &models.SharedQuiz{
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		ShareCode:   code,
		Config:      configJSON,
		Questions:   make([]models.Question, len(req.Questions)),
	}
	for i, q := range req.Questions {
		quiz.Questions[i] = models.Question{
			Position:    i + 1,
			Kind:        q.Kind,
			Prompt:      q.Prompt,
			Correct:     q.Correct,
			Explanation: q.Explanation,
		}
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	if req.CreatorAttempt != nil {
		if _, err := s.saveAttempt(ctx, req.CreatorAttempt, &creatorID, &quiz.ID); err != nil {
			return nil, fmt.Errorf("failed to save creator attempt: %w", err)
		}
	}

	s.publish(ctx, events.NewQuizCreatedEvent(
		quiz.ID, quiz.ShareCode, quiz.Title, creatorID, len(quiz.Questions), quiz.CreatedAt))

	s.logger.Info("Shared quiz created",
		"quiz_id", quiz.ID,
		"share_code", quiz.ShareCode)

	return &CreateQuizResponse{ID: quiz.ID, ShareCode: quiz.ShareCode}, nil
}

// GetByShareCode returns the play view of a quiz. Canonical answers and
// explanations are stripped; they only come back in the finish breakdown.
func (s *quizService) GetByShareCode(ctx context.Context, code string) (*QuizPlayView, error) {
	quiz, err := s.repo.Quiz().GetByShareCode(ctx, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz by share code: %w", err)
	}

	view := &QuizPlayView{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		ShareCode:   quiz.ShareCode,
		Config:      json.RawMessage(quiz.Config),
		Questions:   make([]QuestionPlayView, len(quiz.Questions)),
	}
	for i, q := range quiz.Questions {
		view.Questions[i] = QuestionPlayView{
			ID:       q.ID,
			Position: q.Position,
			Kind:     q.Kind,
			Prompt:   q.Prompt,
		}
	}
	return view, nil
}

// ===== ATTEMPT OPERATIONS =====

func (s *quizService) SaveStandaloneAttempt(ctx context.Context, req *SaveAttemptRequest, userID *string) (*SaveAttemptResponse, error) {
	if err := s.validateAttempt(req); err != nil {
		return nil, err
	}
	return s.saveAttempt(ctx, req, userID, nil)
}

func (s *quizService) AttemptHistory(ctx context.Context, userID string, limit, offset int) (*AttemptHistoryResponse, error) {
	attempts, total, err := s.repo.Attempt().ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptHistoryResponse{Attempts: attempts, Total: total}, nil
}

// ===== HELPERS =====

func (s *quizService) validateAttempt(req *SaveAttemptRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if req.CorrectAnswers > req.TotalQuestions {
		return fmt.Errorf("%w: correct_answers exceeds total_questions", ErrValidationFailed)
	}
	if len(req.Kinds) != req.TotalQuestions {
		return fmt.Errorf("%w: kinds length must equal total_questions", ErrValidationFailed)
	}
	return nil
}

func (s *quizService) saveAttempt(ctx context.Context, req *SaveAttemptRequest, userID *string, sharedQuizID *uint) (*SaveAttemptResponse, error) {
	var outcomes []scoring.AnswerOutcome
	if req.Detailed != nil {
		outcomes = make([]scoring.AnswerOutcome, len(req.Detailed))
		for i, d := range req.Detailed {
			outcomes[i] = scoring.AnswerOutcome{IsCorrect: d.IsCorrect, TimeSpentMs: d.TimeSpentMs}
		}
	}

	rating := scoring.Score(req.CorrectAnswers, req.TotalQuestions, req.TotalTimeMs, req.Kinds, outcomes)

	attempt := &models.QuizAttempt{
		UserID:         userID,
		SharedQuizID:   sharedQuizID,
		CorrectAnswers: req.CorrectAnswers,
		TotalQuestions: req.TotalQuestions,
		TotalTimeMs:    req.TotalTimeMs,
		RatingPoints:   rating,
	}
	if req.Config != nil {
		configJSON, err := json.Marshal(req.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attempt config: %w", err)
		}
		attempt.Config = configJSON
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.publish(ctx, events.NewAttemptCompletedEvent(
		attempt.ID, sharedQuizID, userID,
		req.CorrectAnswers, req.TotalQuestions, req.TotalTimeMs, rating, time.Now()))

	s.logger.Info("Attempt saved",
		"attempt_id", attempt.ID,
		"rating_points", rating)

	return &SaveAttemptResponse{AttemptID: attempt.ID, RatingPoints: rating}, nil
}

func (s *quizService) publish(ctx context.Context, event *events.QuizEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", event.Type,
			"error", err)
	}
}
