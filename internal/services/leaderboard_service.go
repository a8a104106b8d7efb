package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chronoquiz/quiz-service/internal/cache"
	"github.com/chronoquiz/quiz-service/internal/repositories"
)

const (
	// DefaultLeaderboardSize is the size of the visible ranking window.
	DefaultLeaderboardSize = 100

	// DefaultLeaderboardCacheTTL bounds how stale a cached ranking can get.
	DefaultLeaderboardCacheTTL = 30 * time.Second

	globalLeaderboardCacheKey  = "leaderboard:global"
	quizLeaderboardCacheKeyFmt = "leaderboard:quiz:%d"
)

// ===== RESPONSE TYPES =====

// GlobalLeaderboardEntry is one ranked row of the global leaderboard.
type GlobalLeaderboardEntry struct {
	Rank         int     `json:"rank"`
	UserID       string  `json:"user_id"`
	TotalRating  float64 `json:"total_rating"`
	GamesPlayed  int     `json:"games_played"`
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
}

type GlobalLeaderboardResponse struct {
	Entries      []GlobalLeaderboardEntry `json:"entries"`
	TotalPlayers int                      `json:"total_players"`

	// Caller is set when the requesting user ranks outside the window. It is
	// computed from the same full ranking as the window, never a second query.
	Caller *GlobalLeaderboardEntry `json:"caller,omitempty"`
}

// QuizLeaderboardEntry is one ranked attempt in a shared quiz's leaderboard.
type QuizLeaderboardEntry struct {
	Rank           int       `json:"rank"`
	AttemptID      uint      `json:"attempt_id"`
	UserID         *string   `json:"user_id,omitempty"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	TotalTimeMs    int       `json:"total_time_ms"`
	RatingPoints   float64   `json:"rating_points"`
	CompletedAt    time.Time `json:"completed_at"`
}

type QuizLeaderboardResponse struct {
	QuizID        uint                   `json:"quiz_id"`
	ShareCode     string                 `json:"share_code"`
	Title         string                 `json:"title"`
	Entries       []QuizLeaderboardEntry `json:"entries"`
	TotalAttempts int                    `json:"total_attempts"`
	Caller        *QuizLeaderboardEntry  `json:"caller,omitempty"`
}

// ===== SERVICE =====

// LeaderboardService aggregates completed attempts into the global ranking and
// per-shared-quiz rankings.
type LeaderboardService interface {
	Global(ctx context.Context, callerUserID *string) (*GlobalLeaderboardResponse, error)
	SharedQuizLeaderboard(ctx context.Context, code string, callerUserID *string) (*QuizLeaderboardResponse, error)
}

type leaderboardService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	cache      cache.CacheService
	cacheTTL   time.Duration
	windowSize int
}

// NewLeaderboardService wires the aggregator. cache may be nil, in which case
// every read goes straight to the store.
func NewLeaderboardService(repo repositories.Repository, logger *slog.Logger, cacheService cache.CacheService, cacheTTL time.Duration, windowSize int) LeaderboardService {
	if windowSize <= 0 {
		windowSize = DefaultLeaderboardSize
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultLeaderboardCacheTTL
	}
	return &leaderboardService{
		repo:       repo,
		logger:     logger,
		cache:      cacheService,
		cacheTTL:   cacheTTL,
		windowSize: windowSize,
	}
}

// ===== GLOBAL LEADERBOARD =====

func (s *leaderboardService) Global(ctx context.Context, callerUserID *string) (*GlobalLeaderboardResponse, error) {
	var rows []*repositories.GlobalRankingRow
	if !s.cacheGet(ctx, globalLeaderboardCacheKey, &rows) {
		var err error
		rows, err = s.repo.Attempt().GlobalRanking(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get global ranking: %w", err)
		}
		s.cacheSet(ctx, globalLeaderboardCacheKey, rows)
	}

	resp := &GlobalLeaderboardResponse{
		Entries:      make([]GlobalLeaderboardEntry, 0, min(len(rows), s.windowSize)),
		TotalPlayers: len(rows),
	}

	callerInWindow := false
	for i, row := range rows {
		entry := GlobalLeaderboardEntry{
			Rank:         i + 1,
			UserID:       row.UserID,
			TotalRating:  row.TotalRating,
			GamesPlayed:  row.GamesPlayed,
			AverageScore: row.AverageScore,
			BestScore:    row.BestScore,
		}
		if i < s.windowSize {
			resp.Entries = append(resp.Entries, entry)
			if callerUserID != nil && row.UserID == *callerUserID {
				callerInWindow = true
			}
		} else if callerUserID != nil && !callerInWindow && row.UserID == *callerUserID {
			resp.Caller = &entry
			break
		}
	}

	return resp, nil
}

// ===== PER-QUIZ LEADERBOARD =====

func (s *leaderboardService) SharedQuizLeaderboard(ctx context.Context, code string, callerUserID *string) (*QuizLeaderboardResponse, error) {
	quiz, err := s.repo.Quiz().GetByShareCode(ctx, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz by share code: %w", err)
	}

	cacheKey := fmt.Sprintf(quizLeaderboardCacheKeyFmt, quiz.ID)
	var rows []*repositories.QuizRankingRow
	if !s.cacheGet(ctx, cacheKey, &rows) {
		rows, err = s.repo.Attempt().QuizRanking(ctx, quiz.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get quiz ranking: %w", err)
		}
		s.cacheSet(ctx, cacheKey, rows)
	}

	resp := &QuizLeaderboardResponse{
		QuizID:        quiz.ID,
		ShareCode:     quiz.ShareCode,
		Title:         quiz.Title,
		Entries:       make([]QuizLeaderboardEntry, 0, min(len(rows), s.windowSize)),
		TotalAttempts: len(rows),
	}

	callerInWindow := false
	for i, row := range rows {
		entry := QuizLeaderboardEntry{
			Rank:           i + 1,
			AttemptID:      row.AttemptID,
			UserID:         row.UserID,
			CorrectAnswers: row.CorrectAnswers,
			TotalQuestions: row.TotalQuestions,
			TotalTimeMs:    row.TotalTimeMs,
			RatingPoints:   row.RatingPoints,
			CompletedAt:    row.CompletedAt,
		}
		if i < s.windowSize {
			resp.Entries = append(resp.Entries, entry)
			if isCaller(row.UserID, callerUserID) {
				callerInWindow = true
			}
		} else if !callerInWindow && isCaller(row.UserID, callerUserID) {
			// Best attempt outside the window; rows are ordered, so the first
			// match is the caller's highest placement.
			resp.Caller = &entry
			break
		}
	}

	return resp, nil
}

// ===== CACHE HELPERS =====

// cacheGet reports whether dest was filled from the cache. Any cache failure
// degrades to the store silently.
func (s *leaderboardService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Leaderboard cache read failed, falling through to store",
			"key", key,
			"error", err)
	}
	return false
}

func (s *leaderboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Leaderboard cache write failed",
			"key", key,
			"error", err)
	}
}

func isCaller(rowUserID, callerUserID *string) bool {
	return rowUserID != nil && callerUserID != nil && *rowUserID == *callerUserID
}
