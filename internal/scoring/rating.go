package scoring

import (
	"math"

	"github.com/chronoquiz/quiz-service/internal/models"
)

// AnswerOutcome is the per-question detail the detailed rating mode consumes.
// The slice must align 1:1 with the question kinds passed alongside it.
type AnswerOutcome struct {
	IsCorrect   bool
	TimeSpentMs int
}

// timeBonusTier holds the rectangular-hyperbola parameters for a kind tier.
type timeBonusTier struct {
	maxBonus float64
	k        float64
	offset   float64
}

var (
	tierSimple         = timeBonusTier{maxBonus: 1.5, k: 3000, offset: 500}
	tierContemporaries = timeBonusTier{maxBonus: 2.0, k: 20000, offset: 2000}
	tierComplex        = timeBonusTier{maxBonus: 1.8, k: 10000, offset: 1000}
)

// difficultyWeight maps each question kind to its fixed difficulty weight.
func difficultyWeight(kind models.QuestionKind) float64 {
	switch kind {
	case models.KindBirthYear, models.KindDeathYear, models.KindProfession, models.KindCountry:
		return 0.0
	case models.KindAchievementsMatch, models.KindGuessPerson:
		return 0.1
	case models.KindBirthOrder, models.KindContemporaries:
		return 0.2
	default:
		return 0.0
	}
}

func tierFor(kind models.QuestionKind) timeBonusTier {
	switch kind {
	case models.KindBirthYear, models.KindDeathYear, models.KindProfession, models.KindCountry:
		return tierSimple
	case models.KindContemporaries:
		return tierContemporaries
	default:
		return tierComplex
	}
}

// TimeBonus is the per-question speed multiplier: 1 + k/(t+offset), clamped to
// [1.0, maxBonus] for the kind's tier. It rewards near-instant answers steeply
// and asymptotes to 1.0 as time grows.
func TimeBonus(kind models.QuestionKind, timeSpentMs int) float64 {
	tier := tierFor(kind)
	bonus := 1 + tier.k/(float64(timeSpentMs)+tier.offset)
	if bonus > tier.maxBonus {
		return tier.maxBonus
	}
	if bonus < 1.0 {
		return 1.0
	}
	return bonus
}

// questionCountTerm rewards longer quizzes; negative below five questions,
// which is intentional.
func questionCountTerm(total int) float64 {
	return float64(total-5) * 0.1
}

// Score computes the rating for a play-through. When detailed is non-nil and
// aligned 1:1 with kinds, the per-question detailed formula is used; otherwise
// the coarser fallback formula. The two formulas are structurally different
// and will generally disagree for equivalent inputs; both are kept on purpose.
// totalCount > 0 is the caller's responsibility.
func Score(correctCount, totalCount, totalTimeMs int, kinds []models.QuestionKind, detailed []AnswerOutcome) float64 {
	if correctCount == 0 {
		return 0
	}
	if detailed != nil && len(detailed) == len(kinds) {
		return scoreDetailed(totalCount, kinds, detailed)
	}
	return scoreFallback(correctCount, totalCount, totalTimeMs, kinds)
}

func scoreDetailed(totalCount int, kinds []models.QuestionKind, detailed []AnswerOutcome) float64 {
	basePoints := 100.0 / float64(totalCount)
	countTerm := questionCountTerm(totalCount)

	var sum float64
	for i, outcome := range detailed {
		if !outcome.IsCorrect {
			continue
		}
		kind := kinds[i]
		multiplier := 1 + countTerm + difficultyWeight(kind)
		sum += basePoints * multiplier * TimeBonus(kind, outcome.TimeSpentMs)
	}
	return round2(sum)
}

func scoreFallback(correctCount, totalCount, totalTimeMs int, kinds []models.QuestionKind) float64 {
	correctRatio := float64(correctCount) / float64(totalCount)
	baseScore := correctRatio * 100

	var weightSum float64
	for _, kind := range kinds {
		weightSum += difficultyWeight(kind)
	}
	multiplier := 1 + questionCountTerm(totalCount) + weightSum

	// Single blended speed factor from the average per-question time, capped
	// to [1.0, 1.5], then pulled toward 1.0 in proportion to the miss rate so
	// low-accuracy runs cannot fully benefit from speed.
	avgMs := float64(totalTimeMs) / float64(totalCount)
	capped := 1 + tierSimple.k/(avgMs+tierSimple.offset)
	if capped > 1.5 {
		capped = 1.5
	}
	if capped < 1.0 {
		capped = 1.0
	}
	timeBonus := 1 + (capped-1)*correctRatio

	return round2(baseScore * multiplier * timeBonus)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
