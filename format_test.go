package fileconv

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := map[string]string{
		"json": JSON,
		"Csv":  CSV,
		"jpeg": JPG,
		"JPG":  JPG,
		"htm":  HTML,
		"foo":  "FOO",
		"":     "",
	}
	for in, want := range tests {
		got := Canonicalize(in)
		assert.Equal(t, want, got, "Canonicalize(%q)", in)
		assert.Equal(t, got, Canonicalize(got), "Canonicalize is idempotent for %q", in)
	}
}

func TestMIMETypeAndExtension(t *testing.T) {
	assert.Equal(t, "image/jpeg", MIMEType("jpeg"))
	assert.Equal(t, "text/csv", MIMEType(CSV))
	assert.Equal(t, "application/octet-stream", MIMEType("nope"))
	assert.Equal(t, "jpg", Extension("JPEG"))
	assert.Equal(t, "mp3", Extension(MP3))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, JSON, DetectFormat([]byte("{}"), "data.json"))
	assert.Equal(t, JPG, DetectFormat(nil, "photo.JPEG"))
	assert.Equal(t, HTML, DetectFormat(nil, "index.htm"))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	assert.Equal(t, PNG, DetectFormat(buf.Bytes(), ""))
	assert.Equal(t, PNG, DetectFormat(buf.Bytes(), "upload.bin"))

	assert.Equal(t, PDF, DetectFormat([]byte("%PDF-1.4\n%âãÏÓ\n"), ""))
}
