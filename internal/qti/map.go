package qti

import (
	"strconv"
	"strings"

	"github.com/mind-engage/mindengage-quizgen/internal/qti/export"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/parser"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

// MapToRows turns a parsed document back into editable rows plus the quiz
// settings it was exported with. Option positions are recovered from the
// numeric option identifiers when present, so omitted blank options keep
// their slots; other packages fall back to document order.
func MapToRows(doc parser.Document) (quiz.Settings, []quiz.Row) {
	s := quiz.DefaultSettings()
	if doc.Title != "" {
		s.Title = doc.Title
	}
	if doc.Ident != "" {
		s.Ident = doc.Ident
	}
	if n := doc.MaxAttempts(); n > 0 {
		s.AttemptsAllowed = n
	}

	rows := make([]quiz.Row, 0, len(doc.Items))
	for i, it := range doc.Items {
		rows = append(rows, mapItem(i+1, it))
	}
	if p, ok := uniformPoints(rows); ok {
		s.PointsPerQuestion = p
	}
	return s, rows
}

func mapItem(ordinal int, it parser.Item) quiz.Row {
	typ := quiz.TypeSingle
	if it.QuestionType() == export.TypeMultipleAnswer || strings.EqualFold(it.Cardinality, "Multiple") {
		typ = quiz.TypeMultiple
	}

	slots := positions(ordinal, it.Choices)
	opts := make([]string, quiz.MaxOptions)
	posOf := map[string]int{}
	for i, c := range it.Choices {
		p := slots[i]
		if p < 1 || p > quiz.MaxOptions {
			continue
		}
		opts[p-1] = c.Text
		posOf[c.Ident] = p
	}

	var answers []string
	if len(it.Conditions) > 0 {
		for _, id := range it.Conditions[0].Equals {
			if p, ok := posOf[id]; ok {
				answers = append(answers, strconv.Itoa(p))
			}
		}
	}

	return quiz.Row{
		Type:          string(typ),
		Points:        it.Points(),
		Question:      it.PromptHTML,
		CorrectAnswer: strings.Join(answers, ","),
		OptionA:       opts[0],
		OptionB:       opts[1],
		OptionC:       opts[2],
		OptionD:       opts[3],
		OptionE:       opts[4],
	}
}

// positions maps each choice to a 1-based option slot.
func positions(ordinal int, choices []parser.Choice) []int {
	out := make([]int, len(choices))
	numeric := true
	base, _ := strconv.Atoi(export.OptionIdent(ordinal, 0))
	for i, c := range choices {
		n, err := strconv.Atoi(c.Ident)
		if err != nil || n <= base || n > base+quiz.MaxOptions {
			numeric = false
			break
		}
		out[i] = n - base
	}
	if numeric {
		return out
	}
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func uniformPoints(rows []quiz.Row) (float64, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	p := rows[0].Points
	for _, r := range rows[1:] {
		if r.Points != p {
			return 0, false
		}
	}
	return p, p > 0
}
