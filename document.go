package fileconv

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// paragraph is the common document model shared by the PDF, DOCX, HTML and
// text readers and writers.
type paragraph struct {
	heading int // 1-6; 0 for body text
	runs    []run
}

type run struct {
	text   string
	bold   bool
	italic bool
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.runs {
		b.WriteString(r.text)
	}
	return b.String()
}

func plainParagraph(text string) paragraph {
	if text == "" {
		return paragraph{}
	}
	return paragraph{runs: []run{{text: text}}}
}

type paragraphReader func(ctx context.Context, payload []byte) ([]paragraph, error)

type paragraphWriter func(paras []paragraph) ([]byte, error)

// documentConverter chains a reader and a writer of the paragraph model.
func documentConverter(read paragraphReader, write paragraphWriter, target string) Converter {
	return ConverterFunc(func(ctx context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
		paras, err := read(ctx, payload)
		if err != nil {
			return nil, asConversionError(target, err)
		}
		data, err := write(paras)
		if err != nil {
			return nil, &ConversionError{Target: target, Err: err}
		}
		return &Result{Data: data, MIMEType: MIMEType(target)}, nil
	})
}

// asConversionError keeps errors that already carry a category and wraps
// everything else as a failure to produce target.
func asConversionError(target string, err error) error {
	var c categorized
	if errors.As(err, &c) {
		return err
	}
	return &ConversionError{Target: target, Err: err}
}

// readTextParagraphs yields one paragraph per line.
func readTextParagraphs(_ context.Context, payload []byte) ([]paragraph, error) {
	text := strings.ReplaceAll(decodeText(payload), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	paras := make([]paragraph, len(lines))
	for i, line := range lines {
		paras[i] = plainParagraph(line)
	}
	return paras, nil
}

func readHTMLParagraphs(_ context.Context, payload []byte) ([]paragraph, error) {
	return paragraphsFromHTML(decodeText(payload))
}

func readMarkdownParagraphs(_ context.Context, payload []byte) ([]paragraph, error) {
	page, _ := markdownToHTML(decodeText(payload))
	return paragraphsFromHTML(page)
}

// paragraphsFromHTML walks an HTML document and splits it into paragraphs at
// block boundaries, keeping bold and italic runs.
func paragraphsFromHTML(src string) ([]paragraph, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, &ValidationError{Format: HTML, Err: err}
	}
	w := &htmlWalker{}
	w.walk(doc)
	w.flush()
	return w.paras, nil
}

type htmlWalker struct {
	paras  []paragraph
	cur    paragraph
	bold   int
	italic int
	pre    int
}

func (w *htmlWalker) add(text string) {
	w.cur.runs = append(w.cur.runs, run{text: text, bold: w.bold > 0, italic: w.italic > 0})
}

// flush closes the current paragraph. Leading and trailing blanks are dropped
// and paragraphs without visible text are discarded.
func (w *htmlWalker) flush() {
	p := w.cur
	w.cur = paragraph{}

	if len(p.runs) == 0 {
		return
	}
	p.runs[0].text = strings.TrimLeft(p.runs[0].text, " ")
	last := len(p.runs) - 1
	p.runs[last].text = strings.TrimRight(p.runs[last].text, " ")

	runs := p.runs[:0]
	for _, r := range p.runs {
		if r.text != "" {
			runs = append(runs, r)
		}
	}
	if len(runs) == 0 {
		return
	}
	p.runs = runs
	w.paras = append(w.paras, p)
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Pre, atom.Tr, atom.Blockquote,
		atom.Section, atom.Article, atom.Header, atom.Footer, atom.Table,
		atom.Ul, atom.Ol, atom.Body, atom.Dt, atom.Dd, atom.Hr:
		return true
	}
	_, heading := headingLevels[a]
	return heading
}

func (w *htmlWalker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Template:
		return
	case atom.Br:
		w.flush()
		return
	case atom.Td, atom.Th:
		if len(w.cur.runs) > 0 {
			w.add("\t")
		}
	}

	block := isBlock(n.DataAtom)
	if block {
		w.flush()
		w.cur.heading = headingLevels[n.DataAtom]
	}

	switch n.DataAtom {
	case atom.B, atom.Strong:
		w.bold++
		defer func() { w.bold-- }()
	case atom.I, atom.Em:
		w.italic++
		defer func() { w.italic-- }()
	case atom.Pre:
		w.pre++
		defer func() { w.pre-- }()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		w.flush()
	}
}

func (w *htmlWalker) text(data string) {
	if w.pre > 0 {
		lines := strings.Split(data, "\n")
		for i, line := range lines {
			if i > 0 {
				w.flush()
			}
			if line != "" {
				w.add(line)
			}
		}
		return
	}

	text := strings.Join(strings.Fields(data), " ")
	if text == "" {
		if len(w.cur.runs) > 0 && data != "" {
			w.add(" ")
		}
		return
	}
	if startsWithSpace(data) {
		text = " " + text
	}
	if endsWithSpace(data) {
		text += " "
	}
	w.add(text)
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[0]))
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r\f", rune(s[len(s)-1]))
}

// writeText joins paragraphs with newlines.
func writeText(paras []paragraph) ([]byte, error) {
	lines := make([]string, len(paras))
	for i, p := range paras {
		lines[i] = p.text()
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// writeHTML renders paragraphs as a minimal HTML page.
func writeHTML(paras []paragraph) ([]byte, error) {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	for _, p := range paras {
		tag := "p"
		if p.heading > 0 {
			tag = "h" + string(rune('0'+p.heading))
		}
		b.WriteString("<" + tag + ">")
		for _, r := range p.runs {
			text := html.EscapeString(r.text)
			if r.bold {
				text = "<b>" + text + "</b>"
			}
			if r.italic {
				text = "<i>" + text + "</i>"
			}
			b.WriteString(text)
		}
		b.WriteString("</" + tag + ">\n")
	}
	b.WriteString("</body></html>")
	return []byte(b.String()), nil
}
