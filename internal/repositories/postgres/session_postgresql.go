package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chronoquiz/quiz-service/internal/models"
	"github.com/chronoquiz/quiz-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s SessionPostgreSQL) Create(ctx context.Context, session *models.QuizSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s SessionPostgreSQL) GetByToken(ctx context.Context, token string) (*models.QuizSession, error) {
	var session models.QuizSession
	if err := s.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("quiz_session_answers.id ASC")
		}).
		Where("session_token = ?", token).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// AppendAnswer locks the session row, re-checks the active state under the
// lock, then inserts. The (session_id, question_id) unique index backs the
// explicit duplicate check, so concurrent duplicates lose either way.
func (s SessionPostgreSQL) AppendAnswer(ctx context.Context, token string, now time.Time, answer *models.SessionAnswer) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session models.QuizSession
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_token = ?", token).
			First(&session).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repositories.ErrSessionNotActive
			}
			return err
		}
		if !session.Active(now) {
			return repositories.ErrSessionNotActive
		}

		var count int64
		if err := tx.Model(&models.SessionAnswer{}).
			Where("session_id = ? AND question_id = ?", session.ID, answer.QuestionID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repositories.ErrDuplicateAnswer
		}

		answer.SessionID = session.ID
		if err := tx.Create(answer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return repositories.ErrDuplicateAnswer
			}
			return err
		}
		return nil
	})
}

// MarkFinished performs the finish transition as a single conditional update.
// Zero affected rows means the token never existed, expired, or was finished
// already; callers cannot tell these apart, by contract.
func (s SessionPostgreSQL) MarkFinished(ctx context.Context, token string, now time.Time) (*models.QuizSession, error) {
	var session *models.QuizSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.QuizSession{}).
			Where("session_token = ? AND finished_at IS NULL AND expires_at > ?", token, now).
			Update("finished_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repositories.ErrSessionNotActive
		}

		var frozen models.QuizSession
		if err := tx.
			Preload("Answers", func(db *gorm.DB) *gorm.DB {
				return db.Order("quiz_session_answers.id ASC")
			}).
			Where("session_token = ?", token).
			First(&frozen).Error; err != nil {
			return err
		}
		session = &frozen
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteExpiredUnfinished purges abandoned sessions together with their
// recorded answers. The answers go first in the same transaction; the FK from
// quiz_session_answers would otherwise reject deleting a session that has any.
func (s SessionPostgreSQL) DeleteExpiredUnfinished(ctx context.Context, cutoff time.Time) (int64, error) {
	var swept int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expired := tx.Model(&models.QuizSession{}).
			Select("id").
			Where("finished_at IS NULL AND expires_at <= ?", cutoff)
		if err := tx.
			Where("session_id IN (?)", expired).
			Delete(&models.SessionAnswer{}).Error; err != nil {
			return err
		}

		res := tx.
			Where("finished_at IS NULL AND expires_at <= ?", cutoff).
			Delete(&models.QuizSession{})
		if res.Error != nil {
			return res.Error
		}
		swept = res.RowsAffected
		return nil
	})
	return swept, err
}
