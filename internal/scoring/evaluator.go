package scoring

import (
	"sort"
	"strconv"

	"github.com/chronoquiz/quiz-service/internal/models"
)

// IsCorrect compares a submitted answer against the canonical one for the
// given question kind. Pure; no I/O. Normalization such as trimming or case
// folding belongs to the presentation layer, not here.
func IsCorrect(kind models.QuestionKind, submitted, canonical models.AnswerValue) bool {
	switch {
	case kind == models.KindBirthYear || kind == models.KindDeathYear:
		return yearsEqual(submitted.Scalar, canonical.Scalar)
	case kind.IsGroupKind():
		return groupsEqual(submitted.Groups, canonical.Groups)
	case kind.IsListKind():
		return listsEqual(submitted.List, canonical.List)
	default:
		// If the canonical answer is list-shaped for some other kind, compare
		// the lists in order; otherwise exact string equality.
		if canonical.List != nil || submitted.List != nil {
			return listsEqual(submitted.List, canonical.List)
		}
		return submitted.Scalar == canonical.Scalar
	}
}

// yearsEqual parses both sides as integers. Non-numeric input is simply
// unequal, never an error.
func yearsEqual(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA != nil || errB != nil {
		return false
	}
	return ai == bi
}

func listsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// groupsEqual checks partition equality invariant to member order within a
// group and to group order: members are sorted per group, groups are sorted by
// their first (sorted) member, then compared structurally.
func groupsEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	na := normalizeGroups(a)
	nb := normalizeGroups(b)
	for i := range na {
		if !listsEqual(na[i], nb[i]) {
			return false
		}
	}
	return true
}

func normalizeGroups(groups [][]string) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		sorted := make([]string, len(g))
		copy(sorted, g)
		sort.Strings(sorted)
		out[i] = sorted
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) == 0 || len(out[j]) == 0 {
			return len(out[i]) < len(out[j])
		}
		return out[i][0] < out[j][0]
	})
	return out
}
