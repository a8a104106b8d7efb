package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type QuestionKind string

const (
	KindBirthYear         QuestionKind = "birth_year"
	KindDeathYear         QuestionKind = "death_year"
	KindProfession        QuestionKind = "profession"
	KindCountry           QuestionKind = "country"
	KindAchievementsMatch QuestionKind = "achievements_match"
	KindGuessPerson       QuestionKind = "guess_person"
	KindBirthOrder        QuestionKind = "birth_order"
	KindContemporaries    QuestionKind = "contemporaries"
)

// AllQuestionKinds lists every supported kind, used by validation.
var AllQuestionKinds = []QuestionKind{
	KindBirthYear,
	KindDeathYear,
	KindProfession,
	KindCountry,
	KindAchievementsMatch,
	KindGuessPerson,
	KindBirthOrder,
	KindContemporaries,
}

// IsListKind reports whether answers for the kind are ordered lists.
func (k QuestionKind) IsListKind() bool {
	return k == KindBirthOrder
}

// IsGroupKind reports whether answers for the kind are group partitions.
func (k QuestionKind) IsGroupKind() bool {
	return k == KindContemporaries
}

// AnswerValue is the tagged union for question answers. Exactly one of the
// fields is meaningful for a given question kind: Groups for contemporaries,
// List for ordered-list kinds, Scalar for everything else. The owning
// question's kind is the tag; the evaluator dispatches on it rather than
// sniffing shapes. The scalar field cannot be named Value because that name is
// taken by the driver.Valuer method.
type AnswerValue struct {
	Scalar string     `json:"value,omitempty"`
	List   []string   `json:"list,omitempty"`
	Groups [][]string `json:"groups,omitempty"`
}

func ScalarAnswer(v string) AnswerValue     { return AnswerValue{Scalar: v} }
func ListAnswer(items []string) AnswerValue { return AnswerValue{List: items} }
func GroupAnswer(g [][]string) AnswerValue  { return AnswerValue{Groups: g} }

// Value implements driver.Valuer so answers serialize into JSON columns.
func (a AnswerValue) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading JSON columns.
func (a *AnswerValue) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = AnswerValue{}
		return nil
	default:
		return fmt.Errorf("unsupported answer value source type %T", src)
	}
}

// QuizConfig carries client-chosen quiz settings. The engine stores it with the
// quiz and echoes it back on attempts; it never interprets the contents.
type QuizConfig struct {
	QuestionCount int      `json:"question_count"`
	Categories    []string `json:"categories,omitempty"`
	TimeLimitSec  int      `json:"time_limit_sec,omitempty"`
	Language      string   `json:"language,omitempty"`
}

type Question struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	SharedQuizID uint           `json:"shared_quiz_id" gorm:"not null;index"`
	Position     int            `json:"position" gorm:"not null"`
	Kind         QuestionKind   `json:"kind" gorm:"not null;size:32" validate:"required,question_kind"`
	Prompt       string         `json:"prompt" gorm:"not null;type:text" validate:"required"`
	Correct      AnswerValue    `json:"correct" gorm:"type:jsonb"`
	Explanation  *string        `json:"explanation,omitempty" gorm:"type:text"`
}

type SharedQuiz struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	CreatorID   string         `json:"creator_id" gorm:"not null;index;size:64" validate:"required"`
	Title       string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string        `json:"description,omitempty" gorm:"type:text" validate:"omitempty,max=1000"`
	ShareCode   string         `json:"share_code" gorm:"not null;uniqueIndex;size:8"`
	Config      datatypes.JSON `json:"config" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at"`

	// Ordered by Position; immutable once the quiz is created.
	Questions []Question `json:"questions" gorm:"foreignKey:SharedQuizID"`
}

func (SharedQuiz) TableName() string {
	return "shared_quizzes"
}

func (Question) TableName() string {
	return "quiz_questions"
}
