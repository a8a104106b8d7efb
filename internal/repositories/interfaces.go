package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/chronoquiz/quiz-service/internal/models"
)

// ===== STORAGE-LEVEL CONDITIONS =====

var (
	// ErrDuplicateAnswer is reported when an answer for the same question id
	// already exists in the session. The unique index is the final arbiter.
	ErrDuplicateAnswer = errors.New("answer already recorded for question")

	// ErrSessionNotActive is reported when a conditional session write finds
	// no active row: unknown token, expired, or already finished.
	ErrSessionNotActive = errors.New("session is not active")
)

// IsNotFoundError reports whether err is the store's "no rows" condition.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== REPOSITORY INTERFACES =====

type QuizRepository interface {
	// Create persists the quiz together with its questions.
	Create(ctx context.Context, quiz *models.SharedQuiz) error
	GetByID(ctx context.Context, id uint) (*models.SharedQuiz, error)
	GetByShareCode(ctx context.Context, code string) (*models.SharedQuiz, error)
	// GetQuestion fetches a question only if it belongs to the given quiz.
	GetQuestion(ctx context.Context, sharedQuizID, questionID uint) (*models.Question, error)
	ShareCodeExists(ctx context.Context, code string) (bool, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.QuizSession) error
	// GetByToken loads a session with its recorded answers.
	GetByToken(ctx context.Context, token string) (*models.QuizSession, error)
	// AppendAnswer atomically appends an answer to an active session. The
	// session row is locked for the duration of the check-and-insert, so two
	// racing submissions for one question id yield exactly one accepted row.
	// Returns ErrSessionNotActive or ErrDuplicateAnswer accordingly.
	AppendAnswer(ctx context.Context, token string, now time.Time, answer *models.SessionAnswer) error
	// MarkFinished performs the single finish transition as a conditional
	// update (finished_at IS NULL AND expires_at > now) and returns the frozen
	// session with answers. ErrSessionNotActive when no row transitioned.
	MarkFinished(ctx context.Context, token string, now time.Time) (*models.QuizSession, error)
	// DeleteExpiredUnfinished purges sessions that expired without finishing
	// before the cutoff. Finished sessions are retained for audit.
	DeleteExpiredUnfinished(ctx context.Context, cutoff time.Time) (int64, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.QuizAttempt, int64, error)
	// GlobalRanking groups attempts with a known user by user and returns the
	// full ranking ordered by total rating descending.
	GlobalRanking(ctx context.Context) ([]*GlobalRankingRow, error)
	// QuizRanking returns every attempt for the quiz ordered by correct
	// answers descending, total time ascending.
	QuizRanking(ctx context.Context, sharedQuizID uint) ([]*QuizRankingRow, error)
}

// Repository aggregates entity repositories over one backing store.
type Repository interface {
	Quiz() QuizRepository
	Session() SessionRepository
	Attempt() AttemptRepository
}

// ===== RANKING ROWS =====

// GlobalRankingRow is one user's aggregate standing across all rated attempts.
type GlobalRankingRow struct {
	UserID       string  `json:"user_id"`
	TotalRating  float64 `json:"total_rating"`
	GamesPlayed  int     `json:"games_played"`
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
}

// QuizRankingRow is one attempt in a shared quiz's ranking.
type QuizRankingRow struct {
	AttemptID      uint      `json:"attempt_id"`
	UserID         *string   `json:"user_id,omitempty"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	TotalTimeMs    int       `json:"total_time_ms"`
	RatingPoints   float64   `json:"rating_points"`
	CompletedAt    time.Time `json:"completed_at"`
}
