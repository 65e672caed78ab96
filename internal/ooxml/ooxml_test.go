package ooxml

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelsPathFor(t *testing.T) {
	assert.Equal(t, "word/_rels/document.xml.rels", RelsPathFor("word/document.xml"))
	assert.Equal(t, "_rels/.rels", RelsPathFor(""))
}

func TestResolveTarget(t *testing.T) {
	assert.Equal(t, "word/media/image1.png", ResolveTarget("word/document.xml", "media/image1.png"))
	assert.Equal(t, "word/media/image1.png", ResolveTarget("word/document.xml", "/word/media/image1.png"))
	assert.Equal(t, "media/a.png", ResolveTarget("word/document.xml", "../media/a.png"))
}

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteXML("word/_rels/document.xml.rels", Relationships{
		Xmlns: NSRelationships,
		Relationships: []Relationship{
			{ID: "rId1", Type: RelTypeHyperlink, Target: "https://example.com", TargetMode: "External"},
			{ID: "rId2", Type: RelTypeImage, Target: "media/image1.png"},
		},
	}))
	require.NoError(t, w.WritePart("word/document.xml", []byte("<w:document/>")))
	require.NoError(t, w.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	rels, err := ParseRelationships(zr, RelsPathFor("word/document.xml"))
	require.NoError(t, err)
	require.Len(t, rels, 2)
	assert.Equal(t, "https://example.com", rels["rId1"].Target)
	assert.Equal(t, "External", rels["rId1"].TargetMode)
	assert.Equal(t, RelTypeImage, rels["rId2"].Type)

	data, err := ReadFile(zr, "word/document.xml")
	require.NoError(t, err)
	assert.Equal(t, "<w:document/>", string(data))

	_, err = ReadFile(zr, "word/styles.xml")
	assert.Error(t, err)
}

func TestParseRelationshipsMissingPart(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	rels, err := ParseRelationships(zr, "_rels/.rels")
	require.NoError(t, err)
	assert.Empty(t, rels)
}
