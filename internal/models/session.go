package models

import (
	"time"
)

// QuizSession is one participant's in-progress run through a shared quiz,
// identified by an opaque bearer token. Answers are append-only, at most one
// per question; setting FinishedAt freezes the row. Sessions are never deleted
// on finish; expired unfinished rows are left for the sweeper.
type QuizSession struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	SessionToken string     `json:"session_token" gorm:"not null;uniqueIndex;size:64"`
	SharedQuizID uint       `json:"shared_quiz_id" gorm:"not null;index"`
	UserID       *string    `json:"user_id,omitempty" gorm:"size:64;index"`
	StartedAt    time.Time  `json:"started_at" gorm:"not null"`
	ExpiresAt    time.Time  `json:"expires_at" gorm:"not null"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`

	Answers []SessionAnswer `json:"answers" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// Active reports whether the session can still accept answers at the given
// instant. Expiry is evaluated lazily against ExpiresAt; there is no timer.
func (s *QuizSession) Active(now time.Time) bool {
	return s.FinishedAt == nil && now.Before(s.ExpiresAt)
}

// SessionAnswer is one recorded answer. The (session_id, question_id) unique
// index is the final arbiter of exactly-once semantics under concurrency.
type SessionAnswer struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	SessionID   uint        `json:"session_id" gorm:"not null;uniqueIndex:idx_session_question"`
	QuestionID  uint        `json:"question_id" gorm:"not null;uniqueIndex:idx_session_question"`
	Submitted   AnswerValue `json:"submitted" gorm:"type:jsonb"`
	IsCorrect   bool        `json:"is_correct" gorm:"not null"`
	TimeSpentMs int         `json:"time_spent_ms" gorm:"not null"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

func (SessionAnswer) TableName() string {
	return "quiz_session_answers"
}
