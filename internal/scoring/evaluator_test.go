package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chronoquiz/quiz-service/internal/models"
)

func TestIsCorrect_YearKinds(t *testing.T) {
	tests := []struct {
		name      string
		kind      models.QuestionKind
		submitted string
		canonical string
		want      bool
	}{
		{"equal years", models.KindBirthYear, "1820", "1820", true},
		{"different years", models.KindBirthYear, "1820", "1821", false},
		{"leading zero still numeric equal", models.KindDeathYear, "0476", "476", true},
		{"non-numeric submission is unequal", models.KindBirthYear, "about 1820", "1820", false},
		{"non-numeric canonical is unequal", models.KindDeathYear, "1900", "unknown", false},
		{"negative year", models.KindBirthYear, "-44", "-44", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsCorrect(tt.kind, models.ScalarAnswer(tt.submitted), models.ScalarAnswer(tt.canonical))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCorrect_ScalarKindsAreCaseSensitive(t *testing.T) {
	assert.True(t, IsCorrect(models.KindProfession, models.ScalarAnswer("painter"), models.ScalarAnswer("painter")))
	assert.False(t, IsCorrect(models.KindProfession, models.ScalarAnswer("Painter"), models.ScalarAnswer("painter")))
	assert.False(t, IsCorrect(models.KindCountry, models.ScalarAnswer(" france"), models.ScalarAnswer("france")))
	assert.True(t, IsCorrect(models.KindGuessPerson, models.ScalarAnswer("p42"), models.ScalarAnswer("p42")))
}

func TestIsCorrect_OrderedList(t *testing.T) {
	canonical := models.ListAnswer([]string{"a", "b", "c"})

	assert.True(t, IsCorrect(models.KindBirthOrder, models.ListAnswer([]string{"a", "b", "c"}), canonical))
	assert.False(t, IsCorrect(models.KindBirthOrder, models.ListAnswer([]string{"b", "a", "c"}), canonical),
		"order must matter for birth_order")
	assert.False(t, IsCorrect(models.KindBirthOrder, models.ListAnswer([]string{"a", "b"}), canonical))
	assert.True(t, IsCorrect(models.KindBirthOrder, models.ListAnswer(nil), models.ListAnswer(nil)),
		"empty list equals empty list")
}

func TestIsCorrect_ContemporariesPartition(t *testing.T) {
	canonical := models.GroupAnswer([][]string{{"caesar", "cicero"}, {"napoleon", "goethe"}})

	t.Run("identical partition", func(t *testing.T) {
		submitted := models.GroupAnswer([][]string{{"caesar", "cicero"}, {"napoleon", "goethe"}})
		assert.True(t, IsCorrect(models.KindContemporaries, submitted, canonical))
	})

	t.Run("member order within a group is irrelevant", func(t *testing.T) {
		submitted := models.GroupAnswer([][]string{{"cicero", "caesar"}, {"goethe", "napoleon"}})
		assert.True(t, IsCorrect(models.KindContemporaries, submitted, canonical))
	})

	t.Run("group order is irrelevant", func(t *testing.T) {
		submitted := models.GroupAnswer([][]string{{"goethe", "napoleon"}, {"cicero", "caesar"}})
		assert.True(t, IsCorrect(models.KindContemporaries, submitted, canonical))
	})

	t.Run("different partition fails", func(t *testing.T) {
		submitted := models.GroupAnswer([][]string{{"caesar", "napoleon"}, {"cicero", "goethe"}})
		assert.False(t, IsCorrect(models.KindContemporaries, submitted, canonical))
	})

	t.Run("missing member fails", func(t *testing.T) {
		submitted := models.GroupAnswer([][]string{{"caesar"}, {"napoleon", "goethe"}})
		assert.False(t, IsCorrect(models.KindContemporaries, submitted, canonical))
	})
}

// Symmetry: permuting groups and members on both sides never changes the verdict.
func TestIsCorrect_ContemporariesPermutationSymmetry(t *testing.T) {
	a := [][]string{{"x", "y"}, {"z"}, {"w", "v", "u"}}
	b := [][]string{{"y", "x"}, {"u", "v", "w"}, {"z"}}
	permA := [][]string{{"w", "u", "v"}, {"y", "x"}, {"z"}}
	permB := [][]string{{"z"}, {"x", "y"}, {"v", "u", "w"}}

	direct := IsCorrect(models.KindContemporaries, models.GroupAnswer(a), models.GroupAnswer(b))
	permuted := IsCorrect(models.KindContemporaries, models.GroupAnswer(permA), models.GroupAnswer(permB))
	assert.True(t, direct)
	assert.Equal(t, direct, permuted)
}
