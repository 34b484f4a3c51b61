package quiz

import (
	"strconv"
	"strings"
)

type QuestionType string

const (
	TypeSingle   QuestionType = "MC" // one correct option, rcardinality Single
	TypeMultiple QuestionType = "MA" // several correct options, rcardinality Multiple
)

// OptionCount is the number of options a generated question carries.
const OptionCount = 4

// MaxOptions is the widest option list the table surface accepts (A..E).
const MaxOptions = 5

type Question struct {
	Type    QuestionType `json:"type,omitempty"` // empty means MC
	Text    string       `json:"text"`
	Options []string     `json:"options"`
	// CorrectAnswer holds 1-indexed option positions, never letters.
	// MC: "2"; MA: "1,3"; "" when unresolved.
	CorrectAnswer string  `json:"correct_answer,omitempty"`
	Points        float64 `json:"points,omitempty"` // 0 -> Settings.PointsPerQuestion
	Tier          string  `json:"tier,omitempty"`
}

// Multiple reports whether the question is a multiple-answers item.
func (q Question) Multiple() bool { return q.Type == TypeMultiple }

// Valid reports the parser invariant: non-empty text, exactly four options
// and a correct answer that indexes one of them.
func (q Question) Valid() bool {
	if strings.TrimSpace(q.Text) == "" || len(q.Options) != OptionCount {
		return false
	}
	pos := q.AnswerPositions()
	if len(pos) == 0 {
		return false
	}
	for _, p := range pos {
		if p < 1 || p > len(q.Options) {
			return false
		}
	}
	return true
}

// AnswerPositions parses CorrectAnswer into 1-indexed positions. Tokens that
// are not integers are skipped; an MC question only honours the first token.
func (q Question) AnswerPositions() []int {
	var out []int
	for _, tok := range strings.Split(q.CorrectAnswer, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		out = append(out, n)
		if !q.Multiple() {
			break
		}
	}
	return out
}

// Settings are quiz-level values fixed for one encoding pass.
type Settings struct {
	Title             string  `json:"title,omitempty" yaml:"title"`
	Ident             string  `json:"ident,omitempty" yaml:"ident"`
	AttemptsAllowed   int     `json:"attempts_allowed" yaml:"attempts_allowed" validate:"gte=1"`
	PointsPerQuestion float64 `json:"points_per_question" yaml:"points_per_question" validate:"gt=0"`
}

const (
	DefaultTitle = "Quiz_Import_Example"
	DefaultIdent = "quiz_import_example"
)

func DefaultSettings() Settings {
	return Settings{
		Title:             DefaultTitle,
		Ident:             DefaultIdent,
		AttemptsAllowed:   1,
		PointsPerQuestion: 1,
	}
}

// PointsFor returns the question's own points or the quiz-wide value.
func (s Settings) PointsFor(q Question) float64 {
	if q.Points > 0 {
		return q.Points
	}
	return s.PointsPerQuestion
}

// PointsPerQuestion splits total marks evenly, rounded to two decimals.
func PointsPerQuestion(totalMarks float64, n int) float64 {
	if n <= 0 {
		return totalMarks
	}
	v := totalMarks / float64(n)
	return float64(int64(v*100+0.5)) / 100
}

// FormatPoints renders a point value without a trailing ".0" for integers.
func FormatPoints(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
