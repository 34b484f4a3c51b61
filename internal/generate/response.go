package generate

import (
	"strings"

	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

const (
	questionMarker = "Q:"
	answerMarker   = "Correct Answer:"

	// MissingOption stands in for an option line that carries a marker but no text.
	MissingOption = "Option Missing"
)

// answerPositions maps the answer letter to its 1-indexed option position.
var answerPositions = map[byte]string{'A': "1", 'B': "2", 'C': "3", 'D': "4"}

var optionMarkers = []string{"A)", "B)", "C)", "D)"}

// ParseResponse turns model output in the
//
//	Q: <text>
//	A) <option> ... D) <option>
//	Correct Answer: <letter>
//
// line grammar into questions. Malformed records are dropped silently: every
// returned question satisfies quiz.Question.Valid. expected > 0 truncates the
// result; expected <= 0 returns all valid records.
func ParseResponse(raw string, expected int) []quiz.Question {
	var (
		out []quiz.Question
		cur *quiz.Question
	)
	flush := func() {
		if cur != nil && cur.Valid() {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, questionMarker):
			flush()
			cur = &quiz.Question{
				Type: quiz.TypeSingle,
				Text: strings.TrimSpace(strings.TrimPrefix(line, questionMarker)),
			}
		case isOptionLine(line):
			if cur == nil {
				continue
			}
			text := strings.TrimSpace(line[2:])
			if text == "" {
				text = MissingOption
			}
			cur.Options = append(cur.Options, text)
		case strings.HasPrefix(line, answerMarker):
			if cur == nil {
				continue
			}
			// unrecognised letters leave the answer unresolved
			cur.CorrectAnswer = answerPositions[answerLetter(strings.TrimPrefix(line, answerMarker))]
		}
	}
	flush()

	if expected > 0 && len(out) > expected {
		out = out[:expected]
	}
	return out
}

func isOptionLine(line string) bool {
	for _, m := range optionMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

// answerLetter extracts the answer letter from "B", "b", "B)" or
// "B) Records changes". Anything else yields 0.
func answerLetter(s string) byte {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if len(s) > 1 && !strings.ContainsRune(") .", rune(s[1])) {
		return 0
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c
}
