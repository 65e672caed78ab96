package fileconv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphsFromHTML(t *testing.T) {
	paras, err := paragraphsFromHTML(`<html><head><title>x</title><style>p{}</style></head><body>
<h2>Title</h2>
<p>Some <b>bold</b> and <i>italic</i>   text</p>
<div>line one<br>line two</div>
<table><tr><td>a</td><td>b</td></tr></table>
<pre>x  y
z</pre>
</body></html>`)
	require.NoError(t, err)

	var texts []string
	for _, p := range paras {
		texts = append(texts, p.text())
	}
	assert.Equal(t, []string{
		"Title",
		"Some bold and italic text",
		"line one",
		"line two",
		"a\tb",
		"x  y",
		"z",
	}, texts)

	assert.Equal(t, 2, paras[0].heading)
	require.Len(t, paras[1].runs, 5)
	assert.True(t, paras[1].runs[1].bold)
	assert.True(t, paras[1].runs[3].italic)
	assert.False(t, paras[1].runs[0].bold)
}

func TestReadTextParagraphs(t *testing.T) {
	paras, err := readTextParagraphs(context.Background(), []byte("one\r\ntwo\n\nfour\n"))
	require.NoError(t, err)
	require.Len(t, paras, 4)
	assert.Equal(t, "two", paras[1].text())
	assert.Empty(t, paras[2].runs)

	paras, err = readTextParagraphs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, paras)
}

func TestWriteHTMLEscapes(t *testing.T) {
	out, err := writeHTML([]paragraph{
		{heading: 1, runs: []run{{text: "A & B"}}},
		{runs: []run{{text: "x<y", bold: true}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "<html><body>\n<h1>A &amp; B</h1>\n<p><b>x&lt;y</b></p>\n</body></html>", string(out))
}

func TestDocumentRoundTrips(t *testing.T) {
	e := New()
	ctx := context.Background()

	docx, err := e.RequestConversion(ctx, []byte("Hello\nWorld"), TXT, DOCX, nil)
	require.NoError(t, err)
	assert.Equal(t, MIMEType(DOCX), docx.MIMEType)

	text, err := e.RequestConversion(ctx, docx.Data, DOCX, TXT, nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", string(text.Data))

	docx, err = e.RequestConversion(ctx, []byte("<h1>Title</h1><p>Some <b>bold</b> text</p>"), HTML, DOCX, nil)
	require.NoError(t, err)

	md, err := e.RequestConversion(ctx, docx.Data, DOCX, MD, nil)
	require.NoError(t, err)
	assert.Contains(t, string(md.Data), "# Title")
	assert.Contains(t, string(md.Data), "Some **bold** text")

	docx, err = e.RequestConversion(ctx, []byte("# Notes\n\nplain *words*"), MD, DOCX, nil)
	require.NoError(t, err)
	page, err := e.RequestConversion(ctx, docx.Data, DOCX, HTML, nil)
	require.NoError(t, err)
	assert.Contains(t, string(page.Data), "<h1>Notes</h1>")
	assert.Contains(t, string(page.Data), "<i>words</i>")
}
