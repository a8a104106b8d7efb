package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chronoquiz/quiz-service/internal/events"
	"github.com/chronoquiz/quiz-service/internal/models"
	"github.com/chronoquiz/quiz-service/internal/utils"
)

func newQuizTestService(repo *MockRepository) (QuizService, *events.MockEventPublisher) {
	logger := newTestLogger()
	publisher := events.NewMockEventPublisher(logger)
	gen := NewShareCodeGenerator(repo.quiz, logger)
	svc := NewQuizService(repo, logger, utils.NewValidator(), gen, publisher)
	return svc, publisher
}

func createQuizRequest() *CreateQuizRequest {
	return &CreateQuizRequest{
		Title:  "Renaissance Masters",
		Config: models.QuizConfig{QuestionCount: 2, Language: "en"},
		Questions: []CreateQuestionRequest{
			{Kind: models.KindBirthYear, Prompt: "Birth year of Leonardo?", Correct: models.ScalarAnswer("1452")},
			{Kind: models.KindContemporaries, Prompt: "Group the contemporaries", Correct: models.GroupAnswer([][]string{{"Leonardo", "Michelangelo"}, {"Rembrandt"}})},
		},
	}
}

func TestQuizService_CreateSharedQuiz(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newQuizTestService(repo)

	repo.quiz.On("ShareCodeExists", mock.Anything, mock.Anything).Return(false, nil)
	repo.quiz.On("Create", mock.Anything, mock.MatchedBy(func(q *models.SharedQuiz) bool {
		return q.Title == "Renaissance Masters" &&
			q.CreatorID == "creator-1" &&
			len(q.Questions) == 2 &&
			q.Questions[0].Position == 1 &&
			q.Questions[1].Position == 2 &&
			len(q.ShareCode) == 8
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.SharedQuiz).ID = 5
	}).Return(nil)

	resp, err := svc.CreateSharedQuiz(context.Background(), createQuizRequest(), "creator-1")

	require.NoError(t, err)
	assert.Equal(t, uint(5), resp.ID)
	assert.Regexp(t, shareCodePattern, resp.ShareCode)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuizCreated, published[0].Type)
}

func TestQuizService_CreateSharedQuiz_WithCreatorAttempt(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newQuizTestService(repo)

	req := createQuizRequest()
	req.CreatorAttempt = &SaveAttemptRequest{
		CorrectAnswers: 2,
		TotalQuestions: 2,
		TotalTimeMs:    9000,
		Kinds:          []models.QuestionKind{models.KindBirthYear, models.KindContemporaries},
	}

	repo.quiz.On("ShareCodeExists", mock.Anything, mock.Anything).Return(false, nil)
	repo.quiz.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.SharedQuiz).ID = 5
	}).Return(nil)
	repo.attempt.On("Create", mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
		return *a.SharedQuizID == 5 && *a.UserID == "creator-1" && a.RatingPoints > 0
	})).Return(nil)

	_, err := svc.CreateSharedQuiz(context.Background(), req, "creator-1")
	require.NoError(t, err)
	repo.attempt.AssertExpectations(t)
}

func TestQuizService_CreateSharedQuiz_ValidationFailures(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newQuizTestService(repo)

	tests := []struct {
		name string
		req  *CreateQuizRequest
	}{
		{
			name: "missing title",
			req: &CreateQuizRequest{
				Questions: []CreateQuestionRequest{{Kind: models.KindBirthYear, Prompt: "p"}},
			},
		},
		{
			name: "no questions",
			req:  &CreateQuizRequest{Title: "Empty"},
		},
		{
			name: "unknown question kind",
			req: &CreateQuizRequest{
				Title:     "Bad kind",
				Questions: []CreateQuestionRequest{{Kind: "essay", Prompt: "p"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSharedQuiz(context.Background(), tt.req, "creator-1")
			assert.Error(t, err)
		})
	}
	repo.quiz.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuizService_GetByShareCode_StripsAnswers(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newQuizTestService(repo)

	repo.quiz.On("GetByShareCode", mock.Anything, "ABCD1234").Return(testQuiz(), nil)

	view, err := svc.GetByShareCode(context.Background(), "ABCD1234")

	require.NoError(t, err)
	assert.Equal(t, "Ancient Rome", view.Title)
	require.Len(t, view.Questions, 3)
	for _, q := range view.Questions {
		assert.NotEmpty(t, q.Prompt)
		assert.NotEmpty(t, q.Kind)
	}
}

func TestQuizService_GetByShareCode_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newQuizTestService(repo)

	repo.quiz.On("GetByShareCode", mock.Anything, "ZZZZZZZZ").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByShareCode(context.Background(), "ZZZZZZZZ")
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizService_SaveStandaloneAttempt(t *testing.T) {
	repo := newMockRepository()
	svc, publisher := newQuizTestService(repo)

	repo.attempt.On("Create", mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
		return a.SharedQuizID == nil && a.CorrectAnswers == 4 && a.TotalQuestions == 5
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.QuizAttempt).ID = 31
	}).Return(nil)

	resp, err := svc.SaveStandaloneAttempt(context.Background(), &SaveAttemptRequest{
		CorrectAnswers: 4,
		TotalQuestions: 5,
		TotalTimeMs:    20000,
		Kinds: []models.QuestionKind{
			models.KindBirthYear, models.KindDeathYear, models.KindProfession,
			models.KindGuessPerson, models.KindContemporaries,
		},
	}, stringPtr("user-1"))

	require.NoError(t, err)
	assert.Equal(t, uint(31), resp.AttemptID)
	assert.Greater(t, resp.RatingPoints, 0.0)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptCompleted, published[0].Type)
}

func TestQuizService_SaveStandaloneAttempt_ZeroCorrectZeroRating(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newQuizTestService(repo)

	repo.attempt.On("Create", mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
		return a.RatingPoints == 0
	})).Return(nil)

	resp, err := svc.SaveStandaloneAttempt(context.Background(), &SaveAttemptRequest{
		CorrectAnswers: 0,
		TotalQuestions: 3,
		TotalTimeMs:    5000,
		Kinds:          []models.QuestionKind{models.KindBirthYear, models.KindDeathYear, models.KindCountry},
	}, nil)

	require.NoError(t, err)
	assert.Zero(t, resp.RatingPoints)
}

func TestQuizService_SaveStandaloneAttempt_Invalid(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newQuizTestService(repo)

	tests := []struct {
		name string
		req  *SaveAttemptRequest
	}{
		{
			name: "correct exceeds total",
			req: &SaveAttemptRequest{
				CorrectAnswers: 4,
				TotalQuestions: 3,
				Kinds:          []models.QuestionKind{models.KindBirthYear, models.KindBirthYear, models.KindBirthYear},
			},
		},
		{
			name: "kinds length mismatch",
			req: &SaveAttemptRequest{
				CorrectAnswers: 1,
				TotalQuestions: 3,
				Kinds:          []models.QuestionKind{models.KindBirthYear},
			},
		},
		{
			name: "zero questions",
			req: &SaveAttemptRequest{
				TotalQuestions: 0,
				Kinds:          []models.QuestionKind{models.KindBirthYear},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveStandaloneAttempt(context.Background(), tt.req, nil)
			assert.Error(t, err)
		})
	}
	repo.attempt.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuizService_AttemptHistory(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newQuizTestService(repo)

	attempts := []*models.QuizAttempt{
		{ID: 2, CorrectAnswers: 5, TotalQuestions: 5, RatingPoints: 130},
		{ID: 1, CorrectAnswers: 3, TotalQuestions: 5, RatingPoints: 60},
	}
	repo.attempt.On("ListByUser", mock.Anything, "user-1", 20, 0).Return(attempts, int64(2), nil)

	resp, err := svc.AttemptHistory(context.Background(), "user-1", 20, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Attempts, 2)
	assert.Equal(t, uint(2), resp.Attempts[0].ID)
}
