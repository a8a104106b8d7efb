package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizAttempt is the immutable scored record of a completed play-through,
// either saved directly for a standalone quiz or created when a session
// finishes. This is the unit leaderboards rank over.
type QuizAttempt struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         *string        `json:"user_id,omitempty" gorm:"size:64;index"`
	SharedQuizID   *uint          `json:"shared_quiz_id,omitempty" gorm:"index"`
	CorrectAnswers int            `json:"correct_answers" gorm:"not null"`
	TotalQuestions int            `json:"total_questions" gorm:"not null"`
	TotalTimeMs    int            `json:"total_time_ms" gorm:"not null"`
	RatingPoints   float64        `json:"rating_points" gorm:"not null"`
	Config         datatypes.JSON `json:"config,omitempty" gorm:"type:jsonb"`
	Details        datatypes.JSON `json:"details,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at"`
}

// AttemptAnswerDetail is one entry of the per-question snapshot stored with an
// attempt and returned from finish for post-quiz review.
type AttemptAnswerDetail struct {
	QuestionID  uint         `json:"question_id"`
	Kind        QuestionKind `json:"kind"`
	Prompt      string       `json:"prompt"`
	Submitted   AnswerValue  `json:"submitted"`
	Correct     AnswerValue  `json:"correct"`
	IsCorrect   bool         `json:"is_correct"`
	TimeSpentMs int          `json:"time_spent_ms"`
	Explanation *string      `json:"explanation,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
