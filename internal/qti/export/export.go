package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/mind-engage/mindengage-quizgen/internal/ident"
	"github.com/mind-engage/mindengage-quizgen/internal/quiz"
)

const (
	Namespace      = "http://www.imsglobal.org/xsd/ims_qtiasiv1p2"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = Namespace + " http://www.imsglobal.org/xsd/ims_qtiasiv1p2p1.xsd"

	Header = `<?xml version="1.0" encoding="ISO-8859-1"?>` + "\n"

	FieldMaxAttempts   = "cc_maxattempts"
	FieldQuestionType  = "question_type"
	FieldPoints        = "points_possible"
	FieldQuestionRef   = "assessment_question_identifierref"
	TypeSingleChoice   = "multiple_choice_question"
	TypeMultipleAnswer = "multiple_answers_question"

	SectionIdent  = "root_section"
	ResponseIdent = "response1"
	ScoreVar      = "SCORE"

	// option identifier = item ordinal * optionStride + option position
	optionStride = 1000
)

// Encoder turns questions into a QTI 1.2 questestinterop document.
type Encoder struct {
	ids ident.Generator
}

// NewEncoder uses ids for item and question-bank identifiers (uuid based
// when nil).
func NewEncoder(ids ident.Generator) *Encoder {
	if ids == nil {
		ids = ident.UUID{}
	}
	return &Encoder{ids: ids}
}

// OptionIdent is the identifier rendered for option position pos (1-based)
// of the item at ordinal (1-based).
func OptionIdent(ordinal, pos int) string {
	return strconv.Itoa(ordinal*optionStride + pos)
}

// encodedItem lives only for one Encode call.
type encodedItem struct {
	ordinal  int
	ident    string
	refIdent string
	points   float64
	choices  []responseLabel
	correct  []string
	fallback bool
}

func (e *Encoder) plan(ordinal int, q quiz.Question, s quiz.Settings) encodedItem {
	it := encodedItem{
		ordinal:  ordinal,
		ident:    e.ids.NewID(),
		refIdent: e.ids.NewID(),
		points:   s.PointsFor(q),
	}
	opts := q.Options
	if len(opts) >= optionStride {
		opts = opts[:optionStride-1]
	}
	rendered := map[int]bool{}
	first := 0
	for i, o := range opts {
		if strings.TrimSpace(o) == "" {
			continue
		}
		pos := i + 1
		rendered[pos] = true
		if first == 0 {
			first = pos
		}
		it.choices = append(it.choices, responseLabel{
			Ident:    OptionIdent(ordinal, pos),
			Material: material{Text: mattext{TextType: "text/plain", Value: clean(o)}},
		})
	}
	seen := map[int]bool{}
	for _, p := range q.AnswerPositions() {
		if rendered[p] && !seen[p] {
			seen[p] = true
			it.correct = append(it.correct, OptionIdent(ordinal, p))
		}
	}
	if len(it.correct) == 0 {
		// unresolved answer: reference the first option rather than drop the condition
		if first == 0 {
			first = 1
		}
		it.correct = []string{OptionIdent(ordinal, first)}
		it.fallback = true
	}
	return it
}

// Encode renders questions in input order. It only fails on invalid settings.
func (e *Encoder) Encode(qs []quiz.Question, s quiz.Settings) ([]byte, error) {
	if err := quiz.ValidateSettings(s); err != nil {
		return nil, err
	}
	if s.Title == "" {
		s.Title = quiz.DefaultTitle
	}
	if s.Ident == "" {
		s.Ident = quiz.DefaultIdent
	}

	doc := questestinterop{
		Xmlns:          Namespace,
		XmlnsXSI:       XSINamespace,
		SchemaLocation: SchemaLocation,
		Assessment: assessment{
			Ident: s.Ident,
			Title: clean(s.Title),
			Metadata: qtiMetadata{Fields: []metadataField{
				{Label: FieldMaxAttempts, Entry: strconv.Itoa(s.AttemptsAllowed)},
			}},
			Section: section{Ident: SectionIdent, Items: make([]item, 0, len(qs))},
		},
	}
	for i, q := range qs {
		doc.Assessment.Section.Items = append(doc.Assessment.Section.Items, render(e.plan(i+1, q, s), q))
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal qti: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(Header) + len(body) + 1)
	buf.WriteString(Header)
	writeLatin1(&buf, body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func render(it encodedItem, q quiz.Question) item {
	qtype, card := TypeSingleChoice, "Single"
	if q.Multiple() {
		qtype, card = TypeMultipleAnswer, "Multiple"
	}
	pts := quiz.FormatPoints(it.points)

	cond := respcondition{
		Continue: "No",
		Set:      setvar{Action: "Set", VarName: ScoreVar, Value: pts},
	}
	equals := make([]varequal, 0, len(it.correct))
	for _, id := range it.correct {
		equals = append(equals, varequal{RespIdent: ResponseIdent, Value: id})
	}
	if q.Multiple() {
		and := &andCondition{Equals: equals}
		for _, c := range it.choices {
			if !contains(it.correct, c.Ident) {
				and.Not = append(and.Not, notCondition{Equal: varequal{RespIdent: ResponseIdent, Value: c.Ident}})
			}
		}
		cond.Var.And = and
	} else {
		cond.Var.Equals = equals
	}

	return item{
		Ident: it.ident,
		Title: fmt.Sprintf("Question %d", it.ordinal),
		Metadata: qtiMetadata{Fields: []metadataField{
			{Label: FieldQuestionType, Entry: qtype},
			{Label: FieldPoints, Entry: pts},
			{Label: FieldQuestionRef, Entry: it.refIdent},
		}},
		Presentation: presentation{
			Material: material{Text: mattext{TextType: "text/html", Value: clean(q.Text)}},
			Response: responseLID{
				Ident:        ResponseIdent,
				RCardinality: card,
				Render:       renderChoice{Labels: it.choices},
			},
		},
		Processing: resprocessing{
			Outcomes:   outcomes{Vars: []decvar{{MaxValue: pts, MinValue: "0", VarName: ScoreVar, VarType: "Decimal"}}},
			Conditions: []respcondition{cond},
		},
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// clean NFC-normalizes text so composed Latin-1 letters stay single bytes.
func clean(s string) string { return norm.NFC.String(strings.TrimSpace(s)) }

// writeLatin1 transcodes UTF-8 XML to ISO-8859-1, writing runes outside the
// charset as numeric character references.
func writeLatin1(buf *bytes.Buffer, utf8 []byte) {
	for _, r := range string(utf8) {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			buf.WriteByte(b)
			continue
		}
		fmt.Fprintf(buf, "&#%d;", r)
	}
}
