package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

type questestinterop struct {
	XMLName        xml.Name   `xml:"questestinterop"`
	SchemaLocation string     `xml:"schemaLocation,attr"`
	Assessment     assessment `xml:"assessment"`
}

type assessment struct {
	Ident    string      `xml:"ident,attr"`
	Title    string      `xml:"title,attr"`
	Metadata []metaField `xml:"qtimetadata>qtimetadatafield"`
	Sections []section   `xml:"section"`
}

type metaField struct {
	Label string `xml:"fieldlabel"`
	Entry string `xml:"fieldentry"`
}

type section struct {
	Ident string    `xml:"ident,attr"`
	Items []xmlItem `xml:"item"`
}

type xmlItem struct {
	Ident        string        `xml:"ident,attr"`
	Title        string        `xml:"title,attr"`
	Metadata     []metaField   `xml:"itemmetadata>qtimetadata>qtimetadatafield"`
	Presentation xmlPresent    `xml:"presentation"`
	Processing   xmlProcessing `xml:"resprocessing"`
}

type xmlPresent struct {
	Text     string `xml:"material>mattext"`
	Response struct {
		Ident       string `xml:"ident,attr"`
		Cardinality string `xml:"rcardinality,attr"`
		Labels      []struct {
			Ident string `xml:"ident,attr"`
			Text  string `xml:"material>mattext"`
		} `xml:"render_choice>response_label"`
	} `xml:"response_lid"`
}

type xmlProcessing struct {
	Vars []struct {
		VarName  string `xml:"varname,attr"`
		MaxValue string `xml:"maxvalue,attr"`
		MinValue string `xml:"minvalue,attr"`
	} `xml:"outcomes>decvar"`
	Conditions []struct {
		Continue string `xml:"continue,attr"`
		Var      struct {
			Equals []xmlEqual `xml:"varequal"`
			And    *struct {
				Equals []xmlEqual `xml:"varequal"`
				Not    []struct {
					Equals []xmlEqual `xml:"varequal"`
				} `xml:"not"`
			} `xml:"and"`
		} `xml:"conditionvar"`
		Set struct {
			Action  string `xml:"action,attr"`
			VarName string `xml:"varname,attr"`
			Value   string `xml:",chardata"`
		} `xml:"setvar"`
	} `xml:"respcondition"`
}

type xmlEqual struct {
	RespIdent string `xml:"respident,attr"`
	Value     string `xml:",chardata"`
}

// Document is a parsed questestinterop assessment.
type Document struct {
	Ident          string
	Title          string
	SchemaLocation string
	Metadata       map[string]string
	SectionIdent   string
	Items          []Item
}

// MaxAttempts reads cc_maxattempts; 0 when absent or not a number.
func (d Document) MaxAttempts() int {
	n, err := strconv.Atoi(strings.TrimSpace(d.Metadata["cc_maxattempts"]))
	if err != nil {
		return 0
	}
	return n
}

type Item struct {
	Ident         string
	Title         string
	Metadata      map[string]string
	PromptHTML    string
	ResponseIdent string
	Cardinality   string // Single | Multiple
	Choices       []Choice
	ScoreMax      float64
	ScoreMin      float64
	Conditions    []Condition
}

// QuestionType is the question_type metadata entry.
func (it Item) QuestionType() string { return it.Metadata["question_type"] }

// Points is points_possible, falling back to the SCORE maxvalue.
func (it Item) Points() float64 {
	if p, err := strconv.ParseFloat(strings.TrimSpace(it.Metadata["points_possible"]), 64); err == nil {
		return p
	}
	return it.ScoreMax
}

// QuestionRef is the assessment_question_identifierref entry.
func (it Item) QuestionRef() string { return it.Metadata["assessment_question_identifierref"] }

type Choice struct {
	Ident string
	Text  string
}

// Condition is one respcondition. All marks an <and> group: every Equals
// value must be selected and no Excluded value may be.
type Condition struct {
	RespIdent string
	Equals    []string
	Excluded  []string
	All       bool
	Continue  bool
	Action    string
	VarName   string
	Value     float64
}

// Decoder returns an XML decoder that understands the Latin-1 family of
// declared encodings on top of UTF-8.
func Decoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(label string, in io.Reader) (io.Reader, error) {
		switch strings.ToLower(label) {
		case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
			return charmap.ISO8859_1.NewDecoder().Reader(in), nil
		case "windows-1252", "cp1252":
			return charmap.Windows1252.NewDecoder().Reader(in), nil
		}
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return dec
}

// ParseDocument reads a QTI 1.2 questestinterop document.
func ParseDocument(r io.Reader) (Document, error) {
	var raw questestinterop
	if err := Decoder(r).Decode(&raw); err != nil {
		return Document{}, fmt.Errorf("parse qti: %w", err)
	}
	a := raw.Assessment
	doc := Document{
		Ident:          a.Ident,
		Title:          a.Title,
		SchemaLocation: raw.SchemaLocation,
		Metadata:       fields(a.Metadata),
	}
	for i, sec := range a.Sections {
		if i == 0 {
			doc.SectionIdent = sec.Ident
		}
		for _, x := range sec.Items {
			it, err := convertItem(x)
			if err != nil {
				return Document{}, fmt.Errorf("item %q: %w", x.Ident, err)
			}
			doc.Items = append(doc.Items, it)
		}
	}
	return doc, nil
}

func fields(fs []metaField) map[string]string {
	m := make(map[string]string, len(fs))
	for _, f := range fs {
		m[strings.TrimSpace(f.Label)] = strings.TrimSpace(f.Entry)
	}
	return m
}

func convertItem(x xmlItem) (Item, error) {
	it := Item{
		Ident:         x.Ident,
		Title:         x.Title,
		Metadata:      fields(x.Metadata),
		PromptHTML:    strings.TrimSpace(x.Presentation.Text),
		ResponseIdent: x.Presentation.Response.Ident,
		Cardinality:   x.Presentation.Response.Cardinality,
	}
	for _, l := range x.Presentation.Response.Labels {
		it.Choices = append(it.Choices, Choice{Ident: strings.TrimSpace(l.Ident), Text: strings.TrimSpace(l.Text)})
	}
	for _, v := range x.Processing.Vars {
		if !strings.EqualFold(v.VarName, "SCORE") {
			continue
		}
		it.ScoreMax, _ = strconv.ParseFloat(strings.TrimSpace(v.MaxValue), 64)
		it.ScoreMin, _ = strconv.ParseFloat(strings.TrimSpace(v.MinValue), 64)
	}
	for _, rc := range x.Processing.Conditions {
		c := Condition{
			Continue: strings.EqualFold(rc.Continue, "Yes"),
			Action:   rc.Set.Action,
			VarName:  rc.Set.VarName,
		}
		if s := strings.TrimSpace(rc.Set.Value); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Item{}, fmt.Errorf("setvar %q: %w", s, err)
			}
			c.Value = v
		}
		equals := rc.Var.Equals
		if rc.Var.And != nil {
			c.All = true
			equals = append(equals, rc.Var.And.Equals...)
			for _, n := range rc.Var.And.Not {
				for _, e := range n.Equals {
					c.Excluded = append(c.Excluded, strings.TrimSpace(e.Value))
				}
			}
		}
		for _, e := range equals {
			if c.RespIdent == "" {
				c.RespIdent = e.RespIdent
			}
			c.Equals = append(c.Equals, strings.TrimSpace(e.Value))
		}
		it.Conditions = append(it.Conditions, c)
	}
	return it, nil
}
