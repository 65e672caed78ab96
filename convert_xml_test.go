package fileconv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLToJSON(t *testing.T) {
	in := `<root><item id="1"><name>A</name></item><item id="2"><name>B</name></item></root>`
	got, err := xmlToJSON(in)
	require.NoError(t, err)
	assert.Equal(t, `{
  "item": [
    {
      "@attributes": {
        "id": "1"
      },
      "name": "A"
    },
    {
      "@attributes": {
        "id": "2"
      },
      "name": "B"
    }
  ]
}`, got)
}

func TestXMLTreeShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"text only", `<a>hi</a>`, `"hi"`},
		{"indentation dropped", "<r>\n  <x>1</x>\n</r>", `{"x":"1"}`},
		{"mixed content keeps text", `<r>one<b>two</b></r>`, `{"#text":"one","b":"two"}`},
		{"empty element", `<r/>`, `{}`},
		{"entities", `<r>a &amp; b&nbsp;c</r>`, "\"a & b\u00a0c\""},
		{"cdata", `<r><![CDATA[<raw>]]></r>`, `"<raw>"`},
		{"comments ignored", `<r><!-- c --><x>1</x></r>`, `{"x":"1"}`},
		{"truncated input", `<r><a>1</a><b>2`, `{"a":"1","b":"2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := parseXMLTree(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, marshalJSON(tree, ""))
		})
	}
}

func TestXMLNoRoot(t *testing.T) {
	_, err := xmlToJSON("just text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNoRootElement))

	info := Classify(err)
	assert.Equal(t, CategoryValidation, info.Category)
	assert.Equal(t, "Invalid XML format detected.", info.Message)
}

func TestXMLToCSV(t *testing.T) {
	got, err := xmlToCSV(`<rows><row><a>1</a><b>x</b></row><row><a>2</a><b>y</b></row></rows>`)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n\"1\",\"x\"\n\"2\",\"y\"", got)

	got, err = xmlToCSV(`<rows><row><a>1</a></row></rows>`)
	require.NoError(t, err)
	assert.Equal(t, "a\n\"1\"", got)

	_, err = xmlToCSV(`<rows/>`)
	assert.True(t, errors.Is(err, errNoRecords))
}

func TestXMLToTSV(t *testing.T) {
	got, err := xmlToTSV(`<rows><row><a>1</a><b>x</b></row></rows>`)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n\"1\"\t\"x\"", got)
}

func TestXMLToTextAndMarkdown(t *testing.T) {
	got, err := xmlToText(`<r><x>1</x></r>`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"x\": \"1\"\n}", got)

	got, err = xmlToMarkdown(`<r/>`)
	require.NoError(t, err)
	assert.Equal(t, "```xml\n<r/>\n```", got)
}
