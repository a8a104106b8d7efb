package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/chronoquiz/quiz-service/internal/models"
	"github.com/chronoquiz/quiz-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.QuizAttempt{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Order("created_at DESC").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// GlobalRanking groups rated attempts per user and orders the whole ranking by
// total rating so top-N windowing and the caller's own rank come from the same
// list.
func (a AttemptPostgreSQL) GlobalRanking(ctx context.Context) ([]*repositories.GlobalRankingRow, error) {
	var rows []*repositories.GlobalRankingRow
	err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select("user_id, " +
			"SUM(rating_points) AS total_rating, " +
			"COUNT(*) AS games_played, " +
			"AVG(correct_answers * 100.0 / total_questions) AS average_score, " +
			"MAX(correct_answers * 100.0 / total_questions) AS best_score").
		Where("user_id IS NOT NULL").
		Group("user_id").
		Order("total_rating DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (a AttemptPostgreSQL) QuizRanking(ctx context.Context, sharedQuizID uint) ([]*repositories.QuizRankingRow, error) {
	var rows []*repositories.QuizRankingRow
	err := a.db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select("id AS attempt_id, user_id, correct_answers, total_questions, total_time_ms, rating_points, created_at AS completed_at").
		Where("shared_quiz_id = ?", sharedQuizID).
		Order("correct_answers DESC, total_time_ms ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
