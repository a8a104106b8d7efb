package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chronoquiz/quiz-service/internal/events"
	"github.com/chronoquiz/quiz-service/internal/models"
	"github.com/chronoquiz/quiz-service/internal/repositories"
	"github.com/chronoquiz/quiz-service/internal/scoring"
	"github.com/chronoquiz/quiz-service/internal/utils"
)

// DefaultSessionTTL is how long a session accepts answers after starting.
const DefaultSessionTTL = 2 * time.Hour

// ===== REQUEST / RESPONSE TYPES =====

type StartSessionRequest struct {
	SharedQuizID uint `json:"shared_quiz_id" validate:"required"`
}

type StartSessionResponse struct {
	SessionToken string    `json:"session_token"`
	SharedQuizID uint      `json:"shared_quiz_id"`
	StartedAt    time.Time `json:"started_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RecordAnswerRequest struct {
	QuestionID  uint               `json:"question_id" validate:"required"`
	Answer      models.AnswerValue `json:"answer"`
	TimeSpentMs int                `json:"time_spent_ms" validate:"gte=0"`
}

// RecordAnswerResponse deliberately carries only the verdict. The canonical
// answer stays server-side until the session finishes.
type RecordAnswerResponse struct {
	IsCorrect bool `json:"is_correct"`
}

type FinishSessionResponse struct {
	AttemptID      uint                         `json:"attempt_id"`
	CorrectAnswers int                          `json:"correct_answers"`
	TotalQuestions int                          `json:"total_questions"`
	TotalTimeMs    int                          `json:"total_time_ms"`
	RatingPoints   float64                      `json:"rating_points"`
	Answers        []models.AttemptAnswerDetail `json:"answers"`
}

// ===== SERVICE =====

// SessionService drives the quiz session state machine: start, record answers
// exactly once per question, finish once into an immutable attempt.
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest, userID *string) (*StartSessionResponse, error)
	RecordAnswer(ctx context.Context, token string, req *RecordAnswerRequest) (*RecordAnswerResponse, error)
	Finish(ctx context.Context, token string) (*FinishSessionResponse, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *utils.Validator
	publisher events.EventPublisher
	ttl       time.Duration
}

func NewSessionService(repo repositories.Repository, logger *slog.Logger, validator *utils.Validator, publisher events.EventPublisher, ttl time.Duration) SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		ttl:       ttl,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest, userID *string) (*StartSessionResponse, error) {
	s.logger.Info("Starting quiz session",
		"shared_quiz_id", req.SharedQuizID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, req.SharedQuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := &models.QuizSession{
		SessionToken: token,
		SharedQuizID: quiz.ID,
		UserID:       userID,
		StartedAt:    now,
		ExpiresAt:    now.Add(s.ttl),
	}
	if err := s.repo.Session().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publish(ctx, events.NewSessionStartedEvent(quiz.ID, userID, session.StartedAt, session.ExpiresAt))

	s.logger.Info("Quiz session started",
		"session_id", session.ID,
		"shared_quiz_id", quiz.ID,
		"expires_at", session.ExpiresAt)

	return &StartSessionResponse{
		SessionToken: token,
		SharedQuizID: quiz.ID,
		StartedAt:    session.StartedAt,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *sessionService) RecordAnswer(ctx context.Context, token string, req *RecordAnswerRequest) (*RecordAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()

	session, err := s.repo.Session().GetByToken(ctx, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !session.Active(now) {
		return nil, ErrSessionInvalid
	}

	// A question id outside the session's quiz must not mutate anything.
	question, err := s.repo.Quiz().GetQuestion(ctx, session.SharedQuizID, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	answer := &models.SessionAnswer{
		QuestionID:  question.ID,
		Submitted:   req.Answer,
		IsCorrect:   scoring.IsCorrect(question.Kind, req.Answer, question.Correct),
		TimeSpentMs: req.TimeSpentMs,
	}

	// The repository re-checks the active state under a row lock and the
	// unique constraint backs the duplicate check, so racing submissions for
	// one question yield exactly one accepted row.
	if err := s.repo.Session().AppendAnswer(ctx, token, now, answer); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateAnswer):
			return nil, ErrQuestionAlreadyAnswered
		case errors.Is(err, repositories.ErrSessionNotActive):
			return nil, ErrSessionInvalid
		default:
			return nil, fmt.Errorf("failed to record answer: %w", err)
		}
	}

	s.logger.Info("Answer recorded",
		"session_id", session.ID,
		"question_id", question.ID,
		"is_correct", answer.IsCorrect)

	return &RecordAnswerResponse{IsCorrect: answer.IsCorrect}, nil
}

func (s *sessionService) Finish(ctx context.Context, token string) (*FinishSessionResponse, error) {
	now := time.Now()

	// Single conditional finish transition; a second finish, an expired
	// session and an unknown token all land in the same collapsed error.
	session, err := s.repo.Session().MarkFinished(ctx, token, now)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotActive) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("failed to finish session: %w", err)
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, session.SharedQuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz for finished session: %w", err)
	}

	answersByQuestion := make(map[uint]*models.SessionAnswer, len(session.Answers))
	for i := range session.Answers {
		answersByQuestion[session.Answers[i].QuestionID] = &session.Answers[i]
	}

	total := len(quiz.Questions)
	correct := 0
	totalTimeMs := 0
	kinds := make([]models.QuestionKind, 0, total)
	outcomes := make([]scoring.AnswerOutcome, 0, total)
	details := make([]models.AttemptAnswerDetail, 0, total)

	for _, question := range quiz.Questions {
		kinds = append(kinds, question.Kind)

		detail := models.AttemptAnswerDetail{
			QuestionID:  question.ID,
			Kind:        question.Kind,
			Prompt:      question.Prompt,
			Correct:     question.Correct,
			Explanation: question.Explanation,
		}
		outcome := scoring.AnswerOutcome{}

		if answer, ok := answersByQuestion[question.ID]; ok {
			detail.Submitted = answer.Submitted
			detail.IsCorrect = answer.IsCorrect
			detail.TimeSpentMs = answer.TimeSpentMs
			outcome.IsCorrect = answer.IsCorrect
			outcome.TimeSpentMs = answer.TimeSpentMs
			if answer.IsCorrect {
				correct++
			}
			totalTimeMs += answer.TimeSpentMs
		}

		details = append(details, detail)
		outcomes = append(outcomes, outcome)
	}

	rating := scoring.Score(correct, total, totalTimeMs, kinds, outcomes)

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answer details: %w", err)
	}

	attempt := &models.QuizAttempt{
		UserID:         session.UserID,
		SharedQuizID:   &session.SharedQuizID,
		CorrectAnswers: correct,
		TotalQuestions: total,
		TotalTimeMs:    totalTimeMs,
		RatingPoints:   rating,
		Config:         quiz.Config,
		Details:        detailsJSON,
	}
	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.publish(ctx, events.NewAttemptCompletedEvent(
		attempt.ID, attempt.SharedQuizID, attempt.UserID,
		correct, total, totalTimeMs, rating, now))

	s.logger.Info("Quiz session finished",
		"session_id", session.ID,
		"attempt_id", attempt.ID,
		"correct", correct,
		"total", total,
		"rating_points", rating)

	return &FinishSessionResponse{
		AttemptID:      attempt.ID,
		CorrectAnswers: correct,
		TotalQuestions: total,
		TotalTimeMs:    totalTimeMs,
		RatingPoints:   rating,
		Answers:        details,
	}, nil
}

// SweepExpired purges sessions that expired without finishing. Correctness
// never depends on the sweeper running; expiry is checked lazily on every
// session operation.
func (s *sessionService) SweepExpired(ctx context.Context) (int64, error) {
	purged, err := s.repo.Session().DeleteExpiredUnfinished(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired sessions: %w", err)
	}
	if purged > 0 {
		s.logger.Info("Swept expired sessions", "purged", purged)
	}
	return purged, nil
}

// publish logs publish failures and moves on; events never fail the
// user-facing operation.
func (s *sessionService) publish(ctx context.Context, event *events.QuizEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishQuizEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", event.Type,
			"error", err)
	}
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
