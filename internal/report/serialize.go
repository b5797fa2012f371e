package report

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
)

// stageOrder is the canonical stage sequence; a Report is always empty or
// a prefix of it (spec.md §8 invariant 1). ParseReportJSON walks this
// slice to restore stage order rather than relying on map iteration
// order; ToJSON and ToXML walk the Report's own Parts.
var stageOrder = []Source{SourceStaticAnalyzer, SourceCompiler, SourceUnitTest}

// wireMessage is Message's wire representation: every field is a string,
// per spec.md §6 ("all Message fields as strings").
type wireMessage struct {
	Type string `json:"type"`
	File string `json:"file"`
	Line string `json:"line"`
	Desc string `json:"desc"`
}

func toWireMessage(m Message) wireMessage {
	return wireMessage{Type: string(m.Kind), File: m.File, Line: m.Line, Desc: m.Description}
}

func fromWireMessage(w wireMessage) Message {
	return Message{Kind: Kind(w.Type), File: w.File, Line: w.Line, Description: w.Desc}
}

type wirePart struct {
	ReturnCode int                        `json:"returncode"`
	Messages   []wireMessage              `json:"messages"`
	Tests      map[string]map[string]bool `json:"tests,omitempty"`
}

// ToJSON renders the Report in the §6 wire form: an object keyed by
// stage name. Field-by-field serializer functions are used explicitly
// (no reflection over the Report/ReportPart/Message structs themselves)
// per the teacher corpus's preference for hand-written encode/decode
// over attribute-dictionary reflection.
func (r *Report) ToJSON() ([]byte, error) {
	out := make(map[string]wirePart, len(r.Parts))
	for _, p := range r.Parts {
		wp := wirePart{ReturnCode: p.ReturnCode, Tests: p.Tests}
		wp.Messages = make([]wireMessage, 0, len(p.Messages))
		for _, m := range p.Messages {
			wp.Messages = append(wp.Messages, toWireMessage(m))
		}
		out[string(p.Source)] = wp
	}
	return json.Marshal(out)
}

// ParseReportJSON reverses ToJSON, restoring canonical stage order.
func ParseReportJSON(data []byte) (*Report, error) {
	var in map[string]wirePart
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("report: decode json: %w", err)
	}
	r := New()
	for _, source := range stageOrder {
		wp, ok := in[string(source)]
		if !ok {
			continue
		}
		messages := make([]Message, 0, len(wp.Messages))
		for _, wm := range wp.Messages {
			messages = append(messages, fromWireMessage(wm))
		}
		if source == SourceUnitTest {
			r.Append(NewUnitTestReportPart(wp.ReturnCode, messages, wp.Tests))
		} else {
			r.Append(NewReportPart(source, wp.ReturnCode, messages))
		}
	}
	return r, nil
}

// ToXML renders the §6 XML form: root <report>, one child per
// ReportPart tagged with the stage name and a returncode attribute,
// each containing <message> children with type/file/line/desc
// subelements. Built with a token-level xml.Encoder rather than struct
// tags because the element name is chosen at runtime (Go's encoding/xml
// struct tags cannot express a tag name that varies per value), mirroring
// the original's manual xml.etree.ElementTree tree construction.
func (r *Report) ToXML() ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	root := xml.StartElement{Name: xml.Name{Local: "report"}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}
	for _, p := range r.Parts {
		partStart := xml.StartElement{
			Name: xml.Name{Local: string(p.Source)},
			Attr: []xml.Attr{{Name: xml.Name{Local: "returncode"}, Value: strconv.Itoa(p.ReturnCode)}},
		}
		if err := enc.EncodeToken(partStart); err != nil {
			return nil, err
		}
		for _, m := range p.Messages {
			if err := encodeMessageXML(enc, m); err != nil {
				return nil, err
			}
		}
		if err := enc.EncodeToken(partStart.End()); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeMessageXML(enc *xml.Encoder, m Message) error {
	msgStart := xml.StartElement{Name: xml.Name{Local: "message"}}
	if err := enc.EncodeToken(msgStart); err != nil {
		return err
	}
	fields := []struct {
		name, value string
	}{
		{"type", string(m.Kind)},
		{"file", m.File},
		{"line", m.Line},
		{"desc", m.Description},
	}
	for _, f := range fields {
		fieldStart := xml.StartElement{Name: xml.Name{Local: f.name}}
		if err := enc.EncodeToken(fieldStart); err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CharData(f.value)); err != nil {
			return err
		}
		if err := enc.EncodeToken(fieldStart.End()); err != nil {
			return err
		}
	}
	return enc.EncodeToken(msgStart.End())
}
