package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/chronoquiz/quiz-service/internal/repositories"
)

const (
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shareCodeLength   = 8
	shareCodeAttempts = 10
)

// ShareCodeGenerator produces short unique public codes for shared quizzes.
type ShareCodeGenerator interface {
	Generate(ctx context.Context) (string, error)
}

type shareCodeGenerator struct {
	quizzes repositories.QuizRepository
	logger  *slog.Logger
}

func NewShareCodeGenerator(quizzes repositories.QuizRepository, logger *slog.Logger) ShareCodeGenerator {
	return &shareCodeGenerator{quizzes: quizzes, logger: logger}
}

// Generate draws random codes until one is free, giving up after a bounded
// number of attempts. The 36^8 space makes collisions astronomically unlikely;
// the cap is a safety valve, not a normal path. The DB unique constraint on
// share_code remains the final arbiter under concurrent creation.
func (g *shareCodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= shareCodeAttempts; attempt++ {
		code, err := randomShareCode()
		if err != nil {
			return "", fmt.Errorf("failed to draw share code: %w", err)
		}

		taken, err := g.quizzes.ShareCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check share code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}

		g.logger.Warn("Share code collision, redrawing",
			"attempt", attempt,
			"max_attempts", shareCodeAttempts)
	}
	return "", ErrShareCodeExhausted
}

// randomShareCode draws characters by rejection sampling. 256 is not a
// multiple of the alphabet size, so bytes at or past the largest multiple are
// discarded instead of folded in, keeping every character equally likely.
func randomShareCode() (string, error) {
	const limit = byte(256 - 256%len(shareCodeAlphabet))

	code := make([]byte, 0, shareCodeLength)
	buf := make([]byte, shareCodeLength)
	for len(code) < shareCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, shareCodeAlphabet[int(b)%len(shareCodeAlphabet)])
			if len(code) == shareCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
