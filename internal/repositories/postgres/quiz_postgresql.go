package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/chronoquiz/quiz-service/internal/models"
	"github.com/chronoquiz/quiz-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db *gorm.DB
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db}
}

func (q QuizPostgreSQL) Create(ctx context.Context, quiz *models.SharedQuiz) error {
	// Questions are created in the same insert via the association.
	return q.db.WithContext(ctx).Create(quiz).Error
}

func (q QuizPostgreSQL) GetByID(ctx context.Context, id uint) (*models.SharedQuiz, error) {
	var quiz models.SharedQuiz
	if err := q.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_questions.position ASC")
		}).
		First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q QuizPostgreSQL) GetByShareCode(ctx context.Context, code string) (*models.SharedQuiz, error) {
	var quiz models.SharedQuiz
	if err := q.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_questions.position ASC")
		}).
		Where("share_code = ?", code).
		First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q QuizPostgreSQL) GetQuestion(ctx context.Context, sharedQuizID, questionID uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Where("id = ? AND shared_quiz_id = ?", questionID, sharedQuizID).
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuizPostgreSQL) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&models.SharedQuiz{}).
		Where("share_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
