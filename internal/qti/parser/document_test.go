package parser

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="ISO-8859-1"?>
<questestinterop xmlns="http://www.imsglobal.org/xsd/ims_qtiasiv1p2" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://www.imsglobal.org/xsd/ims_qtiasiv1p2 http://www.imsglobal.org/xsd/ims_qtiasiv1p2p1.xsd">
  <assessment ident="quiz_1" title="Caf` + "\xe9" + ` quiz">
    <qtimetadata>
      <qtimetadatafield><fieldlabel>cc_maxattempts</fieldlabel><fieldentry>3</fieldentry></qtimetadatafield>
    </qtimetadata>
    <section ident="root_section">
      <item ident="i1" title="Question 1">
        <itemmetadata><qtimetadata>
          <qtimetadatafield><fieldlabel>question_type</fieldlabel><fieldentry>multiple_choice_question</fieldentry></qtimetadatafield>
          <qtimetadatafield><fieldlabel>points_possible</fieldlabel><fieldentry>2.5</fieldentry></qtimetadatafield>
          <qtimetadatafield><fieldlabel>assessment_question_identifierref</fieldlabel><fieldentry>r1</fieldentry></qtimetadatafield>
        </qtimetadata></itemmetadata>
        <presentation>
          <material><mattext texttype="text/html">What is 2+2? &#8364;</mattext></material>
          <response_lid ident="response1" rcardinality="Single">
            <render_choice>
              <response_label ident="1001"><material><mattext texttype="text/plain">3</mattext></material></response_label>
              <response_label ident="1002"><material><mattext texttype="text/plain">4</mattext></material></response_label>
            </render_choice>
          </response_lid>
        </presentation>
        <resprocessing>
          <outcomes><decvar maxvalue="2.5" minvalue="0" varname="SCORE" vartype="Decimal"/></outcomes>
          <respcondition continue="No">
            <conditionvar><varequal respident="response1">1002</varequal></conditionvar>
            <setvar action="Set" varname="SCORE">2.5</setvar>
          </respcondition>
        </resprocessing>
      </item>
      <item ident="i2" title="Question 2">
        <presentation>
          <material><mattext texttype="text/html">Pick primes</mattext></material>
          <response_lid ident="response1" rcardinality="Multiple">
            <render_choice>
              <response_label ident="2001"><material><mattext>2</mattext></material></response_label>
              <response_label ident="2002"><material><mattext>4</mattext></material></response_label>
              <response_label ident="2003"><material><mattext>5</mattext></material></response_label>
            </render_choice>
          </response_lid>
        </presentation>
        <resprocessing>
          <outcomes><decvar maxvalue="1" minvalue="0" varname="SCORE" vartype="Decimal"/></outcomes>
          <respcondition continue="No">
            <conditionvar><and>
              <varequal respident="response1">2001</varequal>
              <varequal respident="response1">2003</varequal>
              <not><varequal respident="response1">2002</varequal></not>
            </and></conditionvar>
            <setvar action="Set" varname="SCORE">1</setvar>
          </respcondition>
        </resprocessing>
      </item>
    </section>
  </assessment>
</questestinterop>
`

func TestParseDocumentLatin1(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "quiz_1", doc.Ident)
	assert.Equal(t, "Café quiz", doc.Title)
	assert.Equal(t, 3, doc.MaxAttempts())
	assert.Equal(t, "root_section", doc.SectionIdent)
	assert.Contains(t, doc.SchemaLocation, "ims_qtiasiv1p2p1.xsd")
	require.Len(t, doc.Items, 2)

	first := doc.Items[0]
	assert.Equal(t, "i1", first.Ident)
	assert.Equal(t, "multiple_choice_question", first.QuestionType())
	assert.Equal(t, 2.5, first.Points())
	assert.Equal(t, "r1", first.QuestionRef())
	assert.Equal(t, "What is 2+2? €", first.PromptHTML)
	assert.Equal(t, "Single", first.Cardinality)
	assert.Equal(t, []Choice{{Ident: "1001", Text: "3"}, {Ident: "1002", Text: "4"}}, first.Choices)
	require.Len(t, first.Conditions, 1)
	assert.Equal(t, []string{"1002"}, first.Conditions[0].Equals)
	assert.Equal(t, "response1", first.Conditions[0].RespIdent)
	assert.False(t, first.Conditions[0].All)
	assert.False(t, first.Conditions[0].Continue)
	assert.Equal(t, 2.5, first.Conditions[0].Value)

	second := doc.Items[1]
	assert.Equal(t, 1.0, second.Points(), "falls back to SCORE maxvalue")
	require.Len(t, second.Conditions, 1)
	c := second.Conditions[0]
	assert.True(t, c.All)
	assert.Equal(t, []string{"2001", "2003"}, c.Equals)
	assert.Equal(t, []string{"2002"}, c.Excluded)
}

func TestParseDocumentErrors(t *testing.T) {
	_, err := ParseDocument(strings.NewReader("<questestinterop><assessment>"))
	require.Error(t, err)

	_, err = ParseDocument(strings.NewReader(`<?xml version="1.0" encoding="EBCDIC"?><questestinterop/>`))
	require.ErrorContains(t, err, "unsupported charset")
}

func zipOf(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestReadPackage(t *testing.T) {
	doc, err := ReadPackage(zipOf(t, map[string]string{DocumentEntry: sample}))
	require.NoError(t, err)
	assert.Len(t, doc.Items, 2)

	// foreign packages: first non-manifest xml entry
	doc, err = ReadPackage(zipOf(t, map[string]string{
		"imsmanifest.xml":      "<manifest/>",
		"items/assessment.xml": sample,
	}))
	require.NoError(t, err)
	assert.Equal(t, "quiz_1", doc.Ident)

	_, err = ReadPackage(zipOf(t, map[string]string{"readme.txt": "hi"}))
	require.ErrorContains(t, err, "no quiz.qti entry")

	_, err = ReadPackage([]byte("not a zip"))
	require.Error(t, err)

	names, err := Entries(zipOf(t, map[string]string{DocumentEntry: sample}))
	require.NoError(t, err)
	assert.Equal(t, []string{DocumentEntry}, names)
}
