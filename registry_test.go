package fileconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListCompatibleTargets(t *testing.T) {
	e := New()

	tests := map[string][]string{
		TXT:    {HTML, JSON, CSV, XML, MD, PDF, DOCX},
		"json": {CSV, TSV, XML, TXT, MD, XLSX},
		CSV:    {JSON, TSV, XML, TXT, MD, XLSX},
		XML:    {JSON, CSV, TSV, TXT, MD},
		HTML:   {TXT, MD, PDF, DOCX},
		TSV:    {CSV, JSON, XML, TXT, MD},
		MD:     {HTML, TXT, PDF, DOCX},
		PDF:    {TXT, HTML, DOCX},
		DOCX:   {HTML, TXT, MD, PDF},
		XLSX:   {CSV, JSON},
		XLS:    {CSV, JSON},
		RSS:    {JSON, CSV, MD},
		ATOM:   {JSON, CSV, MD},
		"jpeg": {PNG, WEBP, BMP, ICO, GIF},
		PNG:    {JPG, WEBP, BMP, ICO, GIF},
		WAV:    {MP3, OGG, FLAC, AAC, M4A},
		MP4:    {WEBM, AVI, MOV, MKV, MP3, WAV},
	}
	for source, want := range tests {
		assert.Equal(t, want, e.ListCompatibleTargets(source), "targets of %s", source)
	}

	assert.Empty(t, e.ListCompatibleTargets("FOO"))
	assert.Empty(t, e.ListCompatibleTargets(""))
}

func TestRegistryHasNoSelfRoutes(t *testing.T) {
	e := New()
	for source, routes := range e.registry.routes {
		for _, rt := range routes {
			assert.NotEqual(t, source, rt.target)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	e := New()

	_, ok := e.registry.lookup("json", CSV)
	assert.True(t, ok, "source is canonicalized")

	_, ok = e.registry.lookup(JSON, "csv")
	assert.False(t, ok, "target must match exactly")

	_, ok = e.registry.lookup(XLSX, XML)
	assert.False(t, ok)

	_, ok = e.registry.lookup(JSON, XLSX)
	assert.True(t, ok)
}
