package grading

import (
	"sort"

	"github.com/mind-engage/mindengage-quizgen/internal/qti/export"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/parser"
)

// Result is the outcome of grading a single item response.
type Result struct {
	AutoPoints float64  // points awarded
	MaxPoints  float64  // the item's points_possible
	Feedback   []string // optional notes
}

// Strategy grades one item against a set of selected option identifiers.
type Strategy interface {
	Grade(it parser.Item, selected []string) Result
}

// Grader routes by question_type to the matching Strategy. Items of an
// unknown type are scored by running their response processing.
type Grader interface {
	Grade(it parser.Item, selected []string) Result
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(it parser.Item, selected []string) Result {
	s, ok := g.strategies[it.QuestionType()]
	if !ok {
		return Evaluate(it, selected)
	}
	return s.Grade(it, selected)
}

// NewDefaultGrader installs the key-based strategies for the two item
// types the exporter writes.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			export.TypeSingleChoice:   singleStrategy{},
			export.TypeMultipleAnswer: multiStrategy{},
		},
	}
}

// Key is the answer key of an item: the positive comparisons of its first
// response condition.
func Key(it parser.Item) []string {
	if len(it.Conditions) == 0 {
		return nil
	}
	return it.Conditions[0].Equals
}

// --- Strategies ---

type singleStrategy struct{}

func (singleStrategy) Grade(it parser.Item, selected []string) Result {
	res := Result{MaxPoints: it.Points()}
	if len(selected) != 1 {
		res.Feedback = append(res.Feedback, "single choice expects exactly one selection")
		return res
	}
	for _, k := range Key(it) {
		if selected[0] == k {
			res.AutoPoints = res.MaxPoints
			return res
		}
	}
	return res
}

// multiStrategy is all-or-nothing: the selection must equal the key.
type multiStrategy struct{}

func (multiStrategy) Grade(it parser.Item, selected []string) Result {
	res := Result{MaxPoints: it.Points()}
	if setEqual(toSet(Key(it)), toSet(selected)) {
		res.AutoPoints = res.MaxPoints
	}
	return res
}

// Evaluate runs the item's respconditions in order against the selection.
// A matching condition with continue="No" ends processing. The score is
// clamped to the declared SCORE range.
func Evaluate(it parser.Item, selected []string) Result {
	res := Result{MaxPoints: it.Points()}
	sel := toSet(selected)
	if len(sel) > 1 && it.Cardinality == "Single" {
		res.Feedback = append(res.Feedback, "single cardinality with several selections")
		return res
	}
	score := 0.0
	for _, c := range it.Conditions {
		if !matches(c, sel) {
			continue
		}
		switch c.Action {
		case "Add":
			score += c.Value
		case "Subtract":
			score -= c.Value
		default:
			score = c.Value
		}
		if !c.Continue {
			break
		}
	}
	if it.ScoreMax > 0 && score > it.ScoreMax {
		score = it.ScoreMax
	}
	if score < it.ScoreMin {
		score = it.ScoreMin
	}
	res.AutoPoints = score
	return res
}

func matches(c parser.Condition, sel map[string]struct{}) bool {
	if len(c.Equals) == 0 {
		return false
	}
	if c.All {
		for _, v := range c.Equals {
			if _, ok := sel[v]; !ok {
				return false
			}
		}
		for _, v := range c.Excluded {
			if _, ok := sel[v]; ok {
				return false
			}
		}
		return true
	}
	for _, v := range c.Equals {
		if _, ok := sel[v]; ok {
			return true
		}
	}
	return false
}

// helpers

func toSet(arr []string) map[string]struct{} {
	m := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		m[s] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
