package quiz

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one line of the editable question table.
// Columns: Type, Unused, Points, Question, CorrectAnswer, Option A..E, Difficulty.
type Row struct {
	Type          string  `json:"type" validate:"omitempty,oneof=MC MA"`
	Unused        string  `json:"unused,omitempty"`
	Points        float64 `json:"points" validate:"gte=0"`
	Question      string  `json:"question" validate:"required"`
	CorrectAnswer string  `json:"correct_answer" validate:"required,answerlist"`
	OptionA       string  `json:"option_a"`
	OptionB       string  `json:"option_b"`
	OptionC       string  `json:"option_c"`
	OptionD       string  `json:"option_d"`
	OptionE       string  `json:"option_e,omitempty"`
	Difficulty    string  `json:"difficulty,omitempty"`
}

var Columns = []string{
	"Type", "Unused", "Points", "Question", "CorrectAnswer",
	"Option A", "Option B", "Option C", "Option D", "Option E", "Difficulty",
}

func (r Row) Options() []string {
	return []string{r.OptionA, r.OptionB, r.OptionC, r.OptionD, r.OptionE}
}

// RowIssue describes a table row that failed validation. Skipped rows are
// not encoded; kept rows are encoded with the encoder's fallbacks.
type RowIssue struct {
	Row     int    `json:"row"` // 1-based
	Field   string `json:"field"`
	Message string `json:"message"`
	Skipped bool   `json:"skipped"`
}

func (i RowIssue) String() string {
	verb := "kept"
	if i.Skipped {
		verb = "skipped"
	}
	return fmt.Sprintf("row %d: %s %s (%s)", i.Row, i.Field, i.Message, verb)
}

// FromQuestion builds a table row, padding options to five columns.
func FromQuestion(q Question, points float64) Row {
	opts := make([]string, MaxOptions)
	copy(opts, q.Options)
	t := q.Type
	if t == "" {
		t = TypeSingle
	}
	if q.Points > 0 {
		points = q.Points
	}
	return Row{
		Type:          string(t),
		Points:        points,
		Question:      q.Text,
		CorrectAnswer: q.CorrectAnswer,
		OptionA:       opts[0],
		OptionB:       opts[1],
		OptionC:       opts[2],
		OptionD:       opts[3],
		OptionE:       opts[4],
		Difficulty:    q.Tier,
	}
}

func FromQuestions(qs []Question, points float64) []Row {
	out := make([]Row, 0, len(qs))
	for _, q := range qs {
		out = append(out, FromQuestion(q, points))
	}
	return out
}

// ToQuestion converts a row back into a question; trailing blank options are
// dropped but interior blanks keep their position.
func (r Row) ToQuestion() Question {
	opts := r.Options()
	n := len(opts)
	for n > 0 && strings.TrimSpace(opts[n-1]) == "" {
		n--
	}
	t := QuestionType(strings.ToUpper(strings.TrimSpace(r.Type)))
	if t != TypeMultiple {
		t = TypeSingle
	}
	return Question{
		Type:          t,
		Text:          strings.TrimSpace(r.Question),
		Options:       opts[:n],
		CorrectAnswer: strings.TrimSpace(r.CorrectAnswer),
		Points:        r.Points,
		Tier:          r.Difficulty,
	}
}

// RowsToQuestions re-validates edited rows before encoding. Rows without
// question text are skipped; any other problem is reported and the row is
// kept so the encoder can apply its fallbacks.
func RowsToQuestions(rows []Row) ([]Question, []RowIssue) {
	out := make([]Question, 0, len(rows))
	var issues []RowIssue
	for i, r := range rows {
		r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
		r.Question = strings.TrimSpace(r.Question)
		if r.Question == "" {
			// The row is dropped; its other problems are moot.
			issues = append(issues, RowIssue{Row: i + 1, Field: "Question", Message: "is empty", Skipped: true})
			continue
		}
		for _, fe := range validateRow(r) {
			issues = append(issues, RowIssue{Row: i + 1, Field: fe.field, Message: fe.msg})
		}
		out = append(out, r.ToQuestion())
	}
	return out, issues
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Type, r.Unused, FormatPoints(r.Points), r.Question, r.CorrectAnswer,
			r.OptionA, r.OptionB, r.OptionC, r.OptionD, r.OptionE, r.Difficulty,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV. Columns are matched by header
// name so the Difficulty column may be absent.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv: missing header")
		}
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range []string{"Question", "CorrectAnswer"} {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", c)
		}
	}
	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		var pts float64
		if s := strings.TrimSpace(get("Points")); s != "" {
			pts, err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: points %q: %w", line, s, err)
			}
		}
		rows = append(rows, Row{
			Type:          get("Type"),
			Unused:        get("Unused"),
			Points:        pts,
			Question:      get("Question"),
			CorrectAnswer: get("CorrectAnswer"),
			OptionA:       get("Option A"),
			OptionB:       get("Option B"),
			OptionC:       get("Option C"),
			OptionD:       get("Option D"),
			OptionE:       get("Option E"),
			Difficulty:    get("Difficulty"),
		})
	}
	return rows, nil
}
