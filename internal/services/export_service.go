package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/chronoquiz/quiz-service/internal/repositories"
)

// ExportService renders leaderboards and attempt histories as XLSX downloads.
type ExportService interface {
	ExportQuizLeaderboard(ctx context.Context, code string) ([]byte, string, error)
	ExportAttemptHistory(ctx context.Context, userID string) ([]byte, string, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportQuizLeaderboard returns the full ranking of a shared quiz as an XLSX
// file plus a suggested filename.
func (s *exportService) ExportQuizLeaderboard(ctx context.Context, code string) ([]byte, string, error) {
	quiz, err := s.repo.Quiz().GetByShareCode(ctx, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrQuizNotFound
		}
		return nil, "", fmt.Errorf("failed to get quiz by share code: %w", err)
	}

	rows, err := s.repo.Attempt().QuizRanking(ctx, quiz.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get quiz ranking: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Leaderboard"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Rank", "User ID", "Correct Answers", "Total Questions",
		"Total Time (ms)", "Rating Points", "Completed At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, entry := range rows {
		userID := "anonymous"
		if entry.UserID != nil {
			userID = *entry.UserID
		}
		row := []interface{}{
			rowIndex + 1,
			userID,
			entry.CorrectAnswers,
			entry.TotalQuestions,
			entry.TotalTimeMs,
			entry.RatingPoints,
			entry.CompletedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported quiz leaderboard",
		"quiz_id", quiz.ID,
		"rows", len(rows))

	filename := fmt.Sprintf("leaderboard_%s.xlsx", quiz.ShareCode)
	return buf.Bytes(), filename, nil
}

// ExportAttemptHistory returns every attempt of a user as an XLSX file.
func (s *exportService) ExportAttemptHistory(ctx context.Context, userID string) ([]byte, string, error) {
	attempts, _, err := s.repo.Attempt().ListByUser(ctx, userID, 0, 0)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Attempts"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Attempt ID", "Quiz ID", "Correct Answers", "Total Questions",
		"Total Time (ms)", "Rating Points", "Played At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		quizID := ""
		if attempt.SharedQuizID != nil {
			quizID = fmt.Sprintf("%d", *attempt.SharedQuizID)
		}
		row := []interface{}{
			attempt.ID,
			quizID,
			attempt.CorrectAnswers,
			attempt.TotalQuestions,
			attempt.TotalTimeMs,
			attempt.RatingPoints,
			attempt.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("attempts_%s.xlsx", userID)
	return buf.Bytes(), filename, nil
}
