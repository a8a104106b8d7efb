package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var shareCodePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func TestShareCodeGenerator_Shape(t *testing.T) {
	quizzes := &MockQuizRepository{}
	quizzes.On("ShareCodeExists", mock.Anything, mock.Anything).Return(false, nil)
	gen := NewShareCodeGenerator(quizzes, newTestLogger())

	for i := 0; i < 100; i++ {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, shareCodePattern, code)
	}
}

// Rejection sampling discards bytes past the largest multiple of the alphabet
// size instead of folding them in, so the codes always reach full length and
// every alphabet character shows up over a large enough sample.
func TestRandomShareCode_Uniform(t *testing.T) {
	seen := make(map[byte]int, len(shareCodeAlphabet))
	for i := 0; i < 1000; i++ {
		code, err := randomShareCode()
		require.NoError(t, err)
		require.Len(t, code, shareCodeLength)
		for j := 0; j < len(code); j++ {
			seen[code[j]]++
		}
	}

	// 8000 draws over 36 characters; an absent character would mean the
	// sampler cannot produce part of the alphabet.
	for i := 0; i < len(shareCodeAlphabet); i++ {
		assert.Contains(t, seen, shareCodeAlphabet[i])
	}
}

func TestShareCodeGenerator_RetriesOnCollision(t *testing.T) {
	quizzes := &MockQuizRepository{}
	quizzes.On("ShareCodeExists", mock.Anything, mock.Anything).Return(true, nil).Times(3)
	quizzes.On("ShareCodeExists", mock.Anything, mock.Anything).Return(false, nil).Once()
	gen := NewShareCodeGenerator(quizzes, newTestLogger())

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, shareCodePattern, code)
	quizzes.AssertNumberOfCalls(t, "ShareCodeExists", 4)
}

func TestShareCodeGenerator_Exhaustion(t *testing.T) {
	quizzes := &MockQuizRepository{}
	quizzes.On("ShareCodeExists", mock.Anything, mock.Anything).Return(true, nil)
	gen := NewShareCodeGenerator(quizzes, newTestLogger())

	_, err := gen.Generate(context.Background())
	assert.ErrorIs(t, err, ErrShareCodeExhausted)
	quizzes.AssertNumberOfCalls(t, "ShareCodeExists", 10)
}
