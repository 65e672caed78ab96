package fileconv

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format tags.
const (
	TXT  = "TXT"
	JSON = "JSON"
	CSV  = "CSV"
	TSV  = "TSV"
	XML  = "XML"
	HTML = "HTML"
	MD   = "MD"
	PDF  = "PDF"
	DOCX = "DOCX"
	XLSX = "XLSX"
	XLS  = "XLS"
	RSS  = "RSS"
	ATOM = "ATOM"

	JPG  = "JPG"
	PNG  = "PNG"
	WEBP = "WEBP"
	BMP  = "BMP"
	ICO  = "ICO"
	GIF  = "GIF"

	MP3  = "MP3"
	WAV  = "WAV"
	OGG  = "OGG"
	FLAC = "FLAC"
	AAC  = "AAC"
	M4A  = "M4A"

	MP4  = "MP4"
	WEBM = "WEBM"
	AVI  = "AVI"
	MOV  = "MOV"
	MKV  = "MKV"
)

var (
	imageFormats = []string{JPG, PNG, WEBP, BMP, ICO, GIF}
	audioFormats = []string{MP3, WAV, OGG, FLAC, AAC, M4A}
	videoFormats = []string{MP4, WEBM, AVI, MOV, MKV}
)

var formatAliases = map[string]string{
	"JPEG": JPG,
	"HTM":  HTML,
}

// Canonicalize uppercases a format tag and resolves known aliases. It is
// total and idempotent: unknown tags come back uppercased.
func Canonicalize(raw string) string {
	tag := strings.ToUpper(raw)
	if alias, ok := formatAliases[tag]; ok {
		return alias
	}
	return tag
}

var formatMIME = map[string]string{
	TXT:  "text/plain",
	JSON: "application/json",
	CSV:  "text/csv",
	TSV:  "text/tab-separated-values",
	XML:  "application/xml",
	HTML: "text/html",
	MD:   "text/markdown",
	PDF:  "application/pdf",
	DOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	XLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	XLS:  "application/vnd.ms-excel",
	RSS:  "application/rss+xml",
	ATOM: "application/atom+xml",
	JPG:  "image/jpeg",
	PNG:  "image/png",
	WEBP: "image/webp",
	BMP:  "image/bmp",
	ICO:  "image/x-icon",
	GIF:  "image/gif",
	MP3:  "audio/mpeg",
	WAV:  "audio/wav",
	OGG:  "audio/ogg",
	FLAC: "audio/flac",
	AAC:  "audio/aac",
	M4A:  "audio/mp4",
	MP4:  "video/mp4",
	WEBM: "video/webm",
	AVI:  "video/x-msvideo",
	MOV:  "video/quicktime",
	MKV:  "video/x-matroska",
}

// MIMEType returns the MIME type for a format tag.
func MIMEType(tag string) string {
	if m, ok := formatMIME[Canonicalize(tag)]; ok {
		return m
	}
	return "application/octet-stream"
}

// Extension returns the lowercase file extension, without the dot, used for
// files of the given format.
func Extension(tag string) string {
	return strings.ToLower(Canonicalize(tag))
}

// mimeAliases maps sniffed MIME types onto format tags where the MIME table
// above doesn't have an exact entry.
var mimeAliases = map[string]string{
	"text/xml":                  XML,
	"application/x-ndjson":      JSON,
	"image/vnd.microsoft.icon":  ICO,
	"audio/x-wav":               WAV,
	"audio/x-flac":              FLAC,
	"audio/x-m4a":               M4A,
	"video/x-m4v":               MP4,
	"application/x-ole-storage": XLS,
}

// DetectFormat guesses the format tag of data. The filename extension wins when
// it names a known format; otherwise the content is sniffed.
func DetectFormat(data []byte, filename string) string {
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		tag := Canonicalize(ext)
		if _, ok := formatMIME[tag]; ok {
			return tag
		}
	}

	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		mime := m.String()
		if i := strings.IndexByte(mime, ';'); i >= 0 {
			mime = mime[:i]
		}
		if tag, ok := mimeAliases[mime]; ok {
			return tag
		}
		for tag, known := range formatMIME {
			if known == mime {
				return tag
			}
		}
	}
	return ""
}
