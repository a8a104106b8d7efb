package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of quiz engine events
type EventType string

const (
	// Quiz events
	EventQuizCreated EventType = "quiz.created"

	// Session events
	EventSessionStarted EventType = "session.started"

	// Attempt events
	EventAttemptCompleted EventType = "attempt.completed"
)

// QuizEvent is the base event structure for all engine events
type QuizEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type QuizCreatedEvent struct {
	QuizID        uint      `json:"quiz_id"`
	ShareCode     string    `json:"share_code"`
	Title         string    `json:"title"`
	CreatorID     string    `json:"creator_id"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type SessionStartedEvent struct {
	SharedQuizID uint      `json:"shared_quiz_id"`
	UserID       *string   `json:"user_id,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type AttemptCompletedEvent struct {
	AttemptID      uint      `json:"attempt_id"`
	SharedQuizID   *uint     `json:"shared_quiz_id,omitempty"`
	UserID         *string   `json:"user_id,omitempty"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	TotalTimeMs    int       `json:"total_time_ms"`
	RatingPoints   float64   `json:"rating_points"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Event factory functions

func NewQuizCreatedEvent(quizID uint, shareCode, title, creatorID string, questionCount int, createdAt time.Time) *QuizEvent {
	return &QuizEvent{
		ID:        generateEventID(),
		Type:      EventQuizCreated,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: QuizCreatedEvent{
			QuizID:        quizID,
			ShareCode:     shareCode,
			Title:         title,
			CreatorID:     creatorID,
			QuestionCount: questionCount,
			CreatedAt:     createdAt,
		},
	}
}

func NewSessionStartedEvent(sharedQuizID uint, userID *string, startedAt, expiresAt time.Time) *QuizEvent {
	return &QuizEvent{
		ID:        generateEventID(),
		Type:      EventSessionStarted,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: SessionStartedEvent{
			SharedQuizID: sharedQuizID,
			UserID:       userID,
			StartedAt:    startedAt,
			ExpiresAt:    expiresAt,
		},
	}
}

func NewAttemptCompletedEvent(attemptID uint, sharedQuizID *uint, userID *string, correct, total, totalTimeMs int, rating float64, completedAt time.Time) *QuizEvent {
	return &QuizEvent{
		ID:        generateEventID(),
		Type:      EventAttemptCompleted,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Version:   "1.0",
		Data: AttemptCompletedEvent{
			AttemptID:      attemptID,
			SharedQuizID:   sharedQuizID,
			UserID:         userID,
			CorrectAnswers: correct,
			TotalQuestions: total,
			TotalTimeMs:    totalTimeMs,
			RatingPoints:   rating,
			CompletedAt:    completedAt,
		},
	}
}

func generateEventID() string {
	return uuid.NewString()
}
