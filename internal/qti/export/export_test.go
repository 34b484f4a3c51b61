package export_test

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-quizgen/internal/grading"
	"github.com/mind-engage/mindengage-quizgen/internal/ident"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/export"
	"github.com/mind-engage/mindengage-quizgen/internal/qti/parser"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

func settings(attempts int, points float64) quiz.Settings {
	s := quiz.DefaultSettings()
	s.AttemptsAllowed = attempts
	s.PointsPerQuestion = points
	return s
}

func encode(t *testing.T, qs []quiz.Question, s quiz.Settings) ([]byte, parser.Document) {
	t.Helper()
	b, err := export.NewEncoder(ident.NewSequence("i")).Encode(qs, s)
	require.NoError(t, err)
	doc, err := parser.ParseDocument(bytes.NewReader(b))
	require.NoError(t, err, "output must be well-formed")
	return b, doc
}

func TestEncodeSingleChoice(t *testing.T) {
	q := quiz.Question{Text: "What is 2+2?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: "2"}
	raw, doc := encode(t, []quiz.Question{q}, settings(3, 10))

	assert.True(t, strings.HasPrefix(string(raw), export.Header))
	assert.Equal(t, quiz.DefaultIdent, doc.Ident)
	assert.Equal(t, quiz.DefaultTitle, doc.Title)
	assert.Equal(t, "3", doc.Metadata[export.FieldMaxAttempts])
	assert.Equal(t, export.SchemaLocation, doc.SchemaLocation)
	assert.Equal(t, export.SectionIdent, doc.SectionIdent)

	require.Len(t, doc.Items, 1)
	it := doc.Items[0]
	assert.Equal(t, "i000001", it.Ident)
	assert.Equal(t, "i000002", it.QuestionRef())
	assert.Equal(t, "Question 1", it.Title)
	assert.Equal(t, export.TypeSingleChoice, it.QuestionType())
	assert.Equal(t, "10", it.Metadata[export.FieldPoints])
	assert.Equal(t, "What is 2+2?", it.PromptHTML)
	assert.Equal(t, "Single", it.Cardinality)
	assert.Equal(t, export.ResponseIdent, it.ResponseIdent)
	assert.Equal(t, []parser.Choice{
		{Ident: "1001", Text: "3"}, {Ident: "1002", Text: "4"}, {Ident: "1003", Text: "5"}, {Ident: "1004", Text: "6"},
	}, it.Choices)
	assert.Equal(t, 10.0, it.ScoreMax)
	assert.Equal(t, 0.0, it.ScoreMin)

	require.Len(t, it.Conditions, 1)
	c := it.Conditions[0]
	assert.Equal(t, []string{"1002"}, c.Equals)
	assert.Equal(t, export.ResponseIdent, c.RespIdent)
	assert.False(t, c.All)
	assert.False(t, c.Continue)
	assert.Equal(t, "Set", c.Action)
	assert.Equal(t, export.ScoreVar, c.VarName)
	assert.Equal(t, 10.0, c.Value)
}

func TestEncodeMultipleAnswers(t *testing.T) {
	q := quiz.Question{
		Type:          quiz.TypeMultiple,
		Text:          "Which are primes?",
		Options:       []string{"2", "4", "5", "9"},
		CorrectAnswer: "1,3",
	}
	raw, doc := encode(t, []quiz.Question{q}, settings(1, 2))
	assert.Contains(t, string(raw), `rcardinality="Multiple"`)

	it := doc.Items[0]
	assert.Equal(t, export.TypeMultipleAnswer, it.QuestionType())
	c := it.Conditions[0]
	assert.True(t, c.All)
	assert.Equal(t, []string{"1001", "1003"}, c.Equals)
	assert.Equal(t, []string{"1002", "1004"}, c.Excluded)

	assert.Equal(t, 2.0, grading.Evaluate(it, []string{"1001", "1003"}).AutoPoints)
	assert.Equal(t, 0.0, grading.Evaluate(it, []string{"1001", "1002", "1003"}).AutoPoints)
}

func TestEncodeIdentifiersUnique(t *testing.T) {
	var qs []quiz.Question
	for i := 0; i < 12; i++ {
		qs = append(qs, quiz.Question{Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "4"})
	}
	_, doc := encode(t, qs, settings(1, 1))

	seen := map[string]bool{}
	for i, it := range doc.Items {
		for _, id := range append([]string{it.Ident, it.QuestionRef()}, idents(it.Choices)...) {
			assert.False(t, seen[id], "duplicate identifier %s", id)
			seen[id] = true
		}
		assert.Equal(t, []string{export.OptionIdent(i+1, 4)}, it.Conditions[0].Equals)
	}
	assert.Len(t, seen, 12*6)
	assert.Empty(t, grading.CheckDocument(doc))
}

func idents(cs []parser.Choice) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Ident)
	}
	return out
}

func TestEncodeScoringRoundTrip(t *testing.T) {
	qs := []quiz.Question{
		{Text: "a", Options: []string{"w", "x", "y", "z"}, CorrectAnswer: "1"},
		{Text: "b", Options: []string{"w", "x", "y", "z"}, CorrectAnswer: "4", Points: 2.5},
		{Type: quiz.TypeMultiple, Text: "c", Options: []string{"w", "x", "y", "z"}, CorrectAnswer: "2,3"},
	}
	_, doc := encode(t, qs, settings(1, 1.25))
	for i, it := range doc.Items {
		want := settings(1, 1.25).PointsFor(qs[i])
		assert.Equal(t, want, it.Points())
		assert.Equal(t, want, grading.Evaluate(it, grading.Key(it)).AutoPoints)

		var keyed []string
		for _, p := range qs[i].AnswerPositions() {
			keyed = append(keyed, it.Choices[p-1].Ident)
		}
		assert.Equal(t, keyed, grading.Key(it), "key references the option at the answer position")
	}
	assert.Equal(t, "2.5", doc.Items[1].Metadata[export.FieldPoints])
	assert.Equal(t, "1.25", doc.Items[0].Metadata[export.FieldPoints])
}

func TestEncodeOmitsBlankOptions(t *testing.T) {
	q := quiz.Question{Text: "gap", Options: []string{"a", "  ", "c", "d", ""}, CorrectAnswer: "3"}
	_, doc := encode(t, []quiz.Question{q}, settings(1, 1))
	it := doc.Items[0]
	assert.Equal(t, []string{"1001", "1003", "1004"}, idents(it.Choices))
	assert.Equal(t, []string{"1003"}, it.Conditions[0].Equals)
}

func TestEncodeFallsBackToFirstOption(t *testing.T) {
	for _, answer := range []string{"", "9", "x", "2"} {
		q := quiz.Question{Text: "q", Options: []string{"", "", "c", "d"}, CorrectAnswer: answer}
		_, doc := encode(t, []quiz.Question{q}, settings(1, 1))
		assert.Equal(t, []string{"1003"}, doc.Items[0].Conditions[0].Equals, "answer %q", answer)
	}
}

func TestEncodeWholePointsHaveNoDecimal(t *testing.T) {
	raw, _ := encode(t, []quiz.Question{{Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "1"}}, settings(1, 5))
	s := string(raw)
	assert.Contains(t, s, `<fieldentry>5</fieldentry>`)
	assert.Contains(t, s, `maxvalue="5"`)
	assert.Contains(t, s, `>5</setvar>`)
	assert.NotContains(t, s, "5.0")
}

func TestEncodeLatin1(t *testing.T) {
	q := quiz.Question{
		Text:          "Café costs 5 €?",
		Options:       []string{"<yes>", "no & maybe", "c", "d"},
		CorrectAnswer: "1",
	}
	raw, doc := encode(t, []quiz.Question{q}, settings(1, 1))

	assert.Contains(t, string(raw), "Caf\xe9", "composed and written as one Latin-1 byte")
	assert.Contains(t, string(raw), "&#8364;")
	assert.Contains(t, string(raw), "&lt;yes&gt;")
	assert.Equal(t, "Café costs 5 €?", doc.Items[0].PromptHTML)
	assert.Equal(t, "no & maybe", doc.Items[0].Choices[1].Text)
}

func TestEncodeEmptyAndSettings(t *testing.T) {
	s := settings(2, 1)
	s.Title = "Unit 3"
	s.Ident = "unit_3"
	_, doc := encode(t, nil, s)
	assert.Empty(t, doc.Items)
	assert.Equal(t, "Unit 3", doc.Title)
	assert.Equal(t, "unit_3", doc.Ident)

	_, err := export.NewEncoder(nil).Encode(nil, settings(0, 1))
	require.ErrorContains(t, err, "AttemptsAllowed")
	_, err = export.NewEncoder(nil).Encode(nil, settings(1, 0))
	require.ErrorContains(t, err, "PointsPerQuestion")
}

func TestEncodeDeterministicWithSequence(t *testing.T) {
	qs := []quiz.Question{{Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "2"}}
	a, _ := encode(t, qs, settings(1, 1))
	b, _ := encode(t, qs, settings(1, 1))
	assert.Equal(t, a, b)
}

func TestExportPackage(t *testing.T) {
	qs := []quiz.Question{{Text: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "2"}}
	pkg, err := export.Export(qs, settings(3, 10), nil)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, export.PackageEntry, zr.File[0].Name)
	assert.Equal(t, zip.Deflate, zr.File[0].Method)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.True(t, strings.HasPrefix(string(body), export.Header))

	doc, err := parser.ReadPackage(pkg)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.True(t, strings.HasPrefix(doc.Items[0].Ident, "i"))
	assert.Len(t, doc.Items[0].Ident, 33)

	_, err = export.Export(qs, settings(0, 10), nil)
	require.Error(t, err)
}
