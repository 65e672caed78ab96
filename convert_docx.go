package fileconv

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"html"
	"path"
	"strconv"
	"strings"

	"github.com/nicholasgasior/fileconv/internal/ooxml"
)

const docxDocumentPart = "word/document.xml"

func docxToHTML(ctx context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	page, err := renderDOCX(payload)
	if err != nil {
		return nil, asConversionError(HTML, err)
	}
	return &Result{Data: []byte(page), MIMEType: MIMEType(HTML)}, nil
}

func readDOCXParagraphs(_ context.Context, payload []byte) ([]paragraph, error) {
	page, err := renderDOCX(payload)
	if err != nil {
		return nil, err
	}
	return paragraphsFromHTML(page)
}

func (e *Engine) docxToMarkdown(ctx context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
	page, err := renderDOCX(payload)
	if err != nil {
		return nil, asConversionError(MD, err)
	}
	md, err := e.renderMarkdown(page)
	if err != nil {
		return nil, &ConversionError{Target: MD, Err: err}
	}
	return &Result{Data: []byte(md), MIMEType: MIMEType(MD)}, nil
}

// renderDOCX renders the main document part as HTML: headings from paragraph
// styles, list items, tables, basic run formatting, hyperlinks and inline
// images as data URIs.
func renderDOCX(payload []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", &ValidationError{Format: DOCX, Err: err}
	}
	body, err := ooxml.ReadFile(zr, docxDocumentPart)
	if err != nil {
		return "", &ValidationError{Format: DOCX, Err: err}
	}
	rels, _ := ooxml.ParseRelationships(zr, ooxml.RelsPathFor(docxDocumentPart))

	r := &docxRenderer{
		zr:     zr,
		rels:   rels,
		styles: docxStyleNames(zr),
	}
	return r.render(body), nil
}

// docxStyleNames maps style IDs to their display names.
func docxStyleNames(zr *zip.Reader) map[string]string {
	names := make(map[string]string)
	data, err := ooxml.ReadFile(zr, "word/styles.xml")
	if err != nil {
		return names
	}

	d := xml.NewDecoder(bytes.NewReader(data))
	var current string
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "style":
				current = attrValue(t, "styleId")
			case "name":
				if current != "" {
					names[current] = attrValue(t, "val")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "style" {
				current = ""
			}
		}
	}
	return names
}

func attrValue(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// toggleOn reports whether an on/off property such as <w:b/> is enabled.
func toggleOn(t xml.StartElement) bool {
	switch attrValue(t, "val") {
	case "0", "false", "off":
		return false
	}
	return true
}

type docxRenderer struct {
	zr     *zip.Reader
	rels   map[string]ooxml.Relationship
	styles map[string]string

	out    strings.Builder
	inList bool
}

// docxParagraph accumulates one w:p while it is being read.
type docxParagraph struct {
	style  string
	isList bool
	html   strings.Builder
}

type docxRunProps struct {
	bold, italic, strike bool
}

func (r *docxRenderer) render(body []byte) string {
	d := xml.NewDecoder(bytes.NewReader(body))

	var (
		para   *docxParagraph
		props  docxRunProps
		inRun  bool
		inText bool
		text   strings.Builder
		link   string

		tables []*docxTable
	)

	sink := func() *strings.Builder {
		if para != nil {
			return &para.html
		}
		if n := len(tables); n > 0 {
			return tables[n-1].cell()
		}
		return &r.out
	}

	r.out.WriteString("<html><body>")
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para = &docxParagraph{}
			case "pStyle":
				if para != nil {
					para.style = attrValue(t, "val")
				}
			case "numPr":
				if para != nil {
					para.isList = true
				}
			case "numId":
				if para != nil && attrValue(t, "val") == "0" {
					para.isList = false
				}
			case "r":
				inRun = true
				props = docxRunProps{}
			case "b":
				props.bold = toggleOn(t)
			case "i":
				props.italic = toggleOn(t)
			case "strike", "dstrike":
				props.strike = toggleOn(t)
			case "t":
				inText = true
				text.Reset()
			case "tab":
				// w:tab also defines tab stops inside w:pPr/w:tabs.
				if inRun {
					sink().WriteString("\t")
				}
			case "br", "cr":
				sink().WriteString("<br/>")
			case "hyperlink":
				if rel, ok := r.rels[attrValue(t, "id")]; ok {
					link = rel.Target
				}
			case "tbl":
				if para == nil {
					r.closeList(len(tables) == 0)
				}
				tables = append(tables, &docxTable{})
			case "tr":
				if n := len(tables); n > 0 {
					tables[n-1].rows = append(tables[n-1].rows, nil)
				}
			case "tc":
				if n := len(tables); n > 0 {
					tables[n-1].addCell()
				}
			case "drawing", "pict":
				if img := r.image(d); img != "" {
					sink().WriteString(img)
				}
			}

		case xml.CharData:
			if inText {
				text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
				sink().WriteString(formatRun(text.String(), props, link))
			case "hyperlink":
				link = ""
			case "p":
				if para != nil {
					p := para
					para = nil
					r.emitParagraph(p, sink(), len(tables) > 0)
				}
			case "tbl":
				if n := len(tables); n > 0 {
					tbl := tables[n-1]
					tables = tables[:n-1]
					sink().WriteString(tbl.html())
				}
			}
		}
	}
	r.closeList(true)
	r.out.WriteString("</body></html>")
	return r.out.String()
}

func formatRun(text string, p docxRunProps, link string) string {
	text = html.EscapeString(text)
	if p.bold {
		text = "<b>" + text + "</b>"
	}
	if p.italic {
		text = "<i>" + text + "</i>"
	}
	if p.strike {
		text = "<s>" + text + "</s>"
	}
	if link != "" {
		text = `<a href="` + html.EscapeString(link) + `">` + text + "</a>"
	}
	return text
}

// emitParagraph writes a finished paragraph. Inside table cells paragraphs are
// separated by line breaks; at body level consecutive list items are grouped
// into one <ul>.
func (r *docxRenderer) emitParagraph(p *docxParagraph, dst *strings.Builder, inTable bool) {
	content := p.html.String()
	if inTable {
		if dst.Len() > 0 && content != "" {
			dst.WriteString("<br/>")
		}
		dst.WriteString(content)
		return
	}

	if level := r.headingLevel(p.style); level > 0 {
		r.closeList(true)
		fmt.Fprintf(dst, "<h%d>%s</h%d>\n", level, content, level)
		return
	}
	if p.isList {
		if !r.inList {
			dst.WriteString("<ul>\n")
			r.inList = true
		}
		dst.WriteString("<li>" + content + "</li>\n")
		return
	}

	r.closeList(true)
	if content != "" {
		dst.WriteString("<p>" + content + "</p>\n")
	}
}

func (r *docxRenderer) closeList(atBody bool) {
	if atBody && r.inList {
		r.out.WriteString("</ul>\n")
		r.inList = false
	}
}

// headingLevel derives 1-6 from a style ID such as "Heading2" or a style
// named "heading 2"; anything else is 0.
func (r *docxRenderer) headingLevel(styleID string) int {
	if styleID == "" {
		return 0
	}
	candidates := []string{strings.ToLower(styleID), strings.ToLower(r.styles[styleID])}
	for _, c := range candidates {
		c = strings.ReplaceAll(c, " ", "")
		if rest, ok := strings.CutPrefix(c, "heading"); ok {
			if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 6 {
				return n
			}
		}
	}
	return 0
}

// image consumes a drawing or pict element and returns an <img> tag for the
// embedded picture, or "" if there is none.
func (r *docxRenderer) image(d *xml.Decoder) string {
	var embed, alt string
	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "blip":
				embed = attrValue(t, "embed")
			case "imagedata":
				if embed == "" {
					embed = attrValue(t, "id")
				}
			case "docPr":
				alt = attrValue(t, "descr")
			}
		case xml.EndElement:
			depth--
		}
	}

	rel, ok := r.rels[embed]
	if embed == "" || !ok {
		return ""
	}
	data, err := ooxml.ReadFile(r.zr, ooxml.ResolveTarget(docxDocumentPart, rel.Target))
	if err != nil {
		return ""
	}

	mimeType := MIMEType(strings.TrimPrefix(path.Ext(rel.Target), "."))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/png"
	}
	if alt == "" {
		alt = path.Base(rel.Target)
	}
	return fmt.Sprintf(`<img src="data:%s;base64,%s" alt="%s"/>`,
		mimeType, base64.StdEncoding.EncodeToString(data), html.EscapeString(alt))
}

type docxTable struct {
	rows [][]*strings.Builder
}

func (t *docxTable) addCell() {
	if len(t.rows) == 0 {
		t.rows = append(t.rows, nil)
	}
	last := len(t.rows) - 1
	t.rows[last] = append(t.rows[last], &strings.Builder{})
}

func (t *docxTable) cell() *strings.Builder {
	if len(t.rows) == 0 || len(t.rows[len(t.rows)-1]) == 0 {
		t.addCell()
	}
	row := t.rows[len(t.rows)-1]
	return row[len(row)-1]
}

// html renders the table with the first row as header cells.
func (t *docxTable) html() string {
	if len(t.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<table>")
	for i, row := range t.rows {
		tag := "td"
		if i == 0 {
			tag = "th"
		}
		b.WriteString("<tr>")
		for _, c := range row {
			b.WriteString("<" + tag + ">" + c.String() + "</" + tag + ">")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>\n")
	return b.String()
}
