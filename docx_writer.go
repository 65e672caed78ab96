package fileconv

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/nicholasgasior/fileconv/internal/ooxml"
)

type wDocument struct {
	XMLName xml.Name `xml:"w:document"`
	NS      string   `xml:"xmlns:w,attr"`
	Body    wBody    `xml:"w:body"`
}

type wBody struct {
	Paragraphs []wParagraph `xml:"w:p"`
}

type wParagraph struct {
	Props *wParagraphProps `xml:"w:pPr,omitempty"`
	Runs  []wRun           `xml:"w:r"`
}

type wParagraphProps struct {
	Style wValue `xml:"w:pStyle"`
}

type wValue struct {
	Val string `xml:"w:val,attr"`
}

type wRun struct {
	Props *wRunProps `xml:"w:rPr,omitempty"`
	Text  wText      `xml:"w:t"`
}

type wRunProps struct {
	Bold   *struct{} `xml:"w:b,omitempty"`
	Italic *struct{} `xml:"w:i,omitempty"`
}

type wText struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

func headingStyleID(level int) string {
	return fmt.Sprintf("Heading%d", level)
}

func docxBody(paras []paragraph) wBody {
	body := wBody{Paragraphs: make([]wParagraph, 0, len(paras))}
	for _, p := range paras {
		var wp wParagraph
		if p.heading > 0 {
			wp.Props = &wParagraphProps{Style: wValue{Val: headingStyleID(p.heading)}}
		}
		for _, r := range p.runs {
			wr := wRun{Text: wText{Value: r.text}}
			if strings.TrimSpace(r.text) != r.text {
				wr.Text.Space = "preserve"
			}
			if r.bold || r.italic {
				wr.Props = &wRunProps{}
				if r.bold {
					wr.Props.Bold = &struct{}{}
				}
				if r.italic {
					wr.Props.Italic = &struct{}{}
				}
			}
			wp.Runs = append(wp.Runs, wr)
		}
		body.Paragraphs = append(body.Paragraphs, wp)
	}
	return body
}

func docxStyles() []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<w:styles xmlns:w="%s">`, ooxml.NSWordprocessingML)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	for level := 1; level <= 6; level++ {
		fmt.Fprintf(&b,
			`<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="heading %d"/><w:basedOn w:val="Normal"/>`+
				`<w:pPr><w:outlineLvl w:val="%d"/></w:pPr><w:rPr><w:b/><w:sz w:val="%d"/></w:rPr></w:style>`,
			headingStyleID(level), level, level-1, 36-4*(level-1))
	}
	b.WriteString(`</w:styles>`)
	return []byte(b.String())
}

// writeDOCX packages paragraphs as a minimal Word document: content types,
// package and document relationships, heading styles and the body.
func writeDOCX(paras []paragraph) ([]byte, error) {
	var buf bytes.Buffer
	w := ooxml.NewWriter(&buf)

	parts := []struct {
		name string
		v    any
	}{
		{"[Content_Types].xml", ooxml.ContentTypes{
			Xmlns: ooxml.NSContentTypes,
			Defaults: []ooxml.TypeDefault{
				{Extension: "rels", ContentType: ooxml.ContentTypeRelationships},
				{Extension: "xml", ContentType: "application/xml"},
			},
			Overrides: []ooxml.TypeOverride{
				{PartName: "/word/document.xml", ContentType: ooxml.ContentTypeDocument},
				{PartName: "/word/styles.xml", ContentType: ooxml.ContentTypeStyles},
			},
		}},
		{"_rels/.rels", ooxml.Relationships{
			Xmlns: ooxml.NSRelationships,
			Relationships: []ooxml.Relationship{
				{ID: "rId1", Type: ooxml.RelTypeOfficeDocument, Target: "word/document.xml"},
			},
		}},
		{ooxml.RelsPathFor(docxDocumentPart), ooxml.Relationships{
			Xmlns: ooxml.NSRelationships,
			Relationships: []ooxml.Relationship{
				{ID: "rId1", Type: ooxml.RelTypeStyles, Target: "styles.xml"},
			},
		}},
		{docxDocumentPart, wDocument{NS: ooxml.NSWordprocessingML, Body: docxBody(paras)}},
	}

	for _, p := range parts {
		if err := w.WriteXML(p.name, p.v); err != nil {
			return nil, err
		}
	}
	if err := w.WritePart("word/styles.xml", docxStyles()); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
