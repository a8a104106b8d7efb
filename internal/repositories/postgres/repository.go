package postgres

import (
	"gorm.io/gorm"

	"github.com/chronoquiz/quiz-service/internal/models"
	"github.com/chronoquiz/quiz-service/internal/repositories"
)

type repository struct {
	quiz    repositories.QuizRepository
	session repositories.SessionRepository
	attempt repositories.AttemptRepository
}

// NewRepository wires the entity repositories over one gorm handle. The handle
// must be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		quiz:    NewQuizPostgreSQL(db),
		session: NewSessionPostgreSQL(db),
		attempt: NewAttemptPostgreSQL(db),
	}
}

func (r *repository) Quiz() repositories.QuizRepository       { return r.quiz }
func (r *repository) Session() repositories.SessionRepository { return r.session }
func (r *repository) Attempt() repositories.AttemptRepository { return r.attempt }

// AutoMigrate creates or updates the engine's tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SharedQuiz{},
		&models.Question{},
		&models.QuizSession{},
		&models.SessionAnswer{},
		&models.QuizAttempt{},
	)
}
