package export

import "encoding/xml"

// --- QTI 1.2 document model (export only) ---

type questestinterop struct {
	XMLName        xml.Name   `xml:"questestinterop"`
	Xmlns          string     `xml:"xmlns,attr"`
	XmlnsXSI       string     `xml:"xmlns:xsi,attr"`
	SchemaLocation string     `xml:"xsi:schemaLocation,attr"`
	Assessment     assessment `xml:"assessment"`
}

type assessment struct {
	Ident    string      `xml:"ident,attr"`
	Title    string      `xml:"title,attr"`
	Metadata qtiMetadata `xml:"qtimetadata"`
	Section  section     `xml:"section"`
}

type qtiMetadata struct {
	Fields []metadataField `xml:"qtimetadatafield"`
}

type metadataField struct {
	Label string `xml:"fieldlabel"`
	Entry string `xml:"fieldentry"`
}

type section struct {
	Ident string `xml:"ident,attr"`
	Items []item `xml:"item"`
}

type item struct {
	Ident        string        `xml:"ident,attr"`
	Title        string        `xml:"title,attr"`
	Metadata     qtiMetadata   `xml:"itemmetadata>qtimetadata"`
	Presentation presentation  `xml:"presentation"`
	Processing   resprocessing `xml:"resprocessing"`
}

type presentation struct {
	Material material    `xml:"material"`
	Response responseLID `xml:"response_lid"`
}

type material struct {
	Text mattext `xml:"mattext"`
}

type mattext struct {
	TextType string `xml:"texttype,attr"`
	Value    string `xml:",chardata"`
}

type responseLID struct {
	Ident        string       `xml:"ident,attr"`
	RCardinality string       `xml:"rcardinality,attr"`
	Render       renderChoice `xml:"render_choice"`
}

type renderChoice struct {
	Labels []responseLabel `xml:"response_label"`
}

type responseLabel struct {
	Ident    string   `xml:"ident,attr"`
	Material material `xml:"material"`
}

type resprocessing struct {
	Outcomes   outcomes        `xml:"outcomes"`
	Conditions []respcondition `xml:"respcondition"`
}

type outcomes struct {
	Vars []decvar `xml:"decvar"`
}

type decvar struct {
	MaxValue string `xml:"maxvalue,attr"`
	MinValue string `xml:"minvalue,attr"`
	VarName  string `xml:"varname,attr"`
	VarType  string `xml:"vartype,attr"`
}

type respcondition struct {
	Continue string       `xml:"continue,attr"`
	Var      conditionvar `xml:"conditionvar"`
	Set      setvar       `xml:"setvar"`
}

// conditionvar holds a bare comparison for single-answer items and an <and>
// group for multiple-answer items: one varequal per correct option, and a
// <not> guard per rendered wrong option.
type conditionvar struct {
	Equals []varequal    `xml:"varequal"`
	And    *andCondition `xml:"and,omitempty"`
}

type andCondition struct {
	Equals []varequal     `xml:"varequal"`
	Not    []notCondition `xml:"not"`
}

type notCondition struct {
	Equal varequal `xml:"varequal"`
}

type varequal struct {
	RespIdent string `xml:"respident,attr"`
	Value     string `xml:",chardata"`
}

type setvar struct {
	Action  string `xml:"action,attr"`
	VarName string `xml:"varname,attr"`
	Value   string `xml:",chardata"`
}
