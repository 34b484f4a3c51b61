package grading

import (
	"fmt"
	"math"

	"github.com/mind-engage/mindengage-quizgen/internal/qti/parser"
)

// Problem is one defect found by CheckDocument.
type Problem struct {
	Item    string `json:"item,omitempty"` // item ident, empty for document-level problems
	Message string `json:"message"`
}

func (p Problem) String() string {
	if p.Item == "" {
		return p.Message
	}
	return fmt.Sprintf("%s: %s", p.Item, p.Message)
}

// CheckDocument verifies the properties an LMS import relies on: every
// identifier is unique, each item's key references a rendered option, the
// keyed response scores exactly points_possible under both the item's
// response processing and its type strategy, and a wrong response scores
// nothing.
func CheckDocument(doc parser.Document) []Problem {
	var out []Problem
	add := func(item, format string, args ...any) {
		out = append(out, Problem{Item: item, Message: fmt.Sprintf(format, args...)})
	}

	if doc.MaxAttempts() < 1 {
		add("", "cc_maxattempts missing or below 1")
	}
	if len(doc.Items) == 0 {
		add("", "document has no items")
	}

	seen := map[string]int{}
	note := func(id string) {
		if id != "" {
			seen[id]++
		}
	}
	note(doc.Ident)
	note(doc.SectionIdent)

	g := NewDefaultGrader()
	for _, it := range doc.Items {
		note(it.Ident)
		note(it.QuestionRef())
		choices := map[string]bool{}
		for _, c := range it.Choices {
			note(c.Ident)
			choices[c.Ident] = true
		}

		if len(it.Choices) == 0 {
			add(it.Ident, "no options rendered")
			continue
		}
		key := Key(it)
		if len(key) == 0 {
			add(it.Ident, "no scoring condition")
			continue
		}
		for _, k := range key {
			if !choices[k] {
				add(it.Ident, "condition references %q which is not a rendered option", k)
			}
		}

		pts := it.Points()
		if got := Evaluate(it, key).AutoPoints; !same(got, pts) {
			add(it.Ident, "keyed response scores %v under resprocessing, want %v", got, pts)
		}
		if got := g.Grade(it, key).AutoPoints; !same(got, pts) {
			add(it.Ident, "keyed response scores %v under %s, want %v", got, it.QuestionType(), pts)
		}
		if wrong, ok := wrongResponse(it, key); ok {
			if got := Evaluate(it, wrong).AutoPoints; got != 0 {
				add(it.Ident, "wrong response %v scores %v", wrong, got)
			}
		}
	}

	for _, id := range sortedKeys(seen) {
		if seen[id] > 1 {
			add("", "identifier %q used %d times", id, seen[id])
		}
	}
	return out
}

// wrongResponse picks a response that must not score: the first unkeyed
// option for single choice, every option for multiple answers.
func wrongResponse(it parser.Item, key []string) ([]string, bool) {
	keyed := toSet(key)
	if it.Cardinality == "Multiple" {
		if len(it.Choices) == len(keyed) {
			return nil, false
		}
		all := make([]string, 0, len(it.Choices))
		for _, c := range it.Choices {
			all = append(all, c.Ident)
		}
		return all, true
	}
	for _, c := range it.Choices {
		if _, ok := keyed[c.Ident]; !ok {
			return []string{c.Ident}, true
		}
	}
	return nil, false
}

func same(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
