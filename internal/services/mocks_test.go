package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/chronoquiz/quiz-service/internal/models"
	"github.com/chronoquiz/quiz-service/internal/repositories"
)

// MockQuizRepository is a mock implementation of QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.SharedQuiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.SharedQuiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SharedQuiz), args.Error(1)
}

func (m *MockQuizRepository) GetByShareCode(ctx context.Context, code string) (*models.SharedQuiz, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SharedQuiz), args.Error(1)
}

func (m *MockQuizRepository) GetQuestion(ctx context.Context, sharedQuizID, questionID uint) (*models.Question, error) {
	args := m.Called(ctx, sharedQuizID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuizRepository) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.QuizSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.QuizSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizSession), args.Error(1)
}

func (m *MockSessionRepository) AppendAnswer(ctx context.Context, token string, now time.Time, answer *models.SessionAnswer) error {
	args := m.Called(ctx, token, now, answer)
	return args.Error(0)
}

func (m *MockSessionRepository) MarkFinished(ctx context.Context, token string, now time.Time) (*models.QuizSession, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizSession), args.Error(1)
}

func (m *MockSessionRepository) DeleteExpiredUnfinished(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.QuizAttempt, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.QuizAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GlobalRanking(ctx context.Context) ([]*repositories.GlobalRankingRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.GlobalRankingRow), args.Error(1)
}

func (m *MockAttemptRepository) QuizRanking(ctx context.Context, sharedQuizID uint) ([]*repositories.QuizRankingRow, error) {
	args := m.Called(ctx, sharedQuizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.QuizRankingRow), args.Error(1)
}

// MockRepository bundles the entity mocks behind the Repository interface
type MockRepository struct {
	quiz    *MockQuizRepository
	session *MockSessionRepository
	attempt *MockAttemptRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		quiz:    &MockQuizRepository{},
		session: &MockSessionRepository{},
		attempt: &MockAttemptRepository{},
	}
}

func (m *MockRepository) Quiz() repositories.QuizRepository       { return m.quiz }
func (m *MockRepository) Session() repositories.SessionRepository { return m.session }
func (m *MockRepository) Attempt() repositories.AttemptRepository { return m.attempt }

// ===== TEST HELPERS =====

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stringPtr(s string) *string { return &s }
