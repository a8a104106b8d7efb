package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/chronoquiz/quiz-service/internal/models"
)

func TestExportService_QuizLeaderboard(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, newTestLogger())

	repo.quiz.On("GetByShareCode", mock.Anything, "ABCD1234").Return(testQuiz(), nil)
	repo.attempt.On("QuizRanking", mock.Anything, uint(7)).Return(quizRows(), nil)

	data, filename, err := svc.ExportQuizLeaderboard(context.Background(), "ABCD1234")

	require.NoError(t, err)
	assert.Equal(t, "leaderboard_ABCD1234.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Leaderboard", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Rank", header)

	topUser, err := f.GetCellValue("Leaderboard", "B2")
	require.NoError(t, err)
	assert.Equal(t, "alice", topUser)

	anonUser, err := f.GetCellValue("Leaderboard", "B4")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", anonUser)
}

func TestExportService_QuizLeaderboard_UnknownCode(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, newTestLogger())

	repo.quiz.On("GetByShareCode", mock.Anything, "NOPE0000").Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.ExportQuizLeaderboard(context.Background(), "NOPE0000")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestExportService_AttemptHistory(t *testing.T) {
	repo := newMockRepository()
	svc := NewExportService(repo, newTestLogger())

	quizID := uint(7)
	attempts := []*models.QuizAttempt{
		{ID: 2, SharedQuizID: &quizID, CorrectAnswers: 5, TotalQuestions: 5, TotalTimeMs: 9000, RatingPoints: 140},
		{ID: 1, CorrectAnswers: 3, TotalQuestions: 5, TotalTimeMs: 12000, RatingPoints: 60},
	}
	repo.attempt.On("ListByUser", mock.Anything, "user-1", 0, 0).Return(attempts, int64(2), nil)

	data, filename, err := svc.ExportAttemptHistory(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "attempts_user-1.xlsx", filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Attempts", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Attempt ID", header)
}
