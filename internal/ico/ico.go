// Package ico reads and writes Windows icon files. Decoding handles both
// PNG-compressed and DIB entries; encoding always writes a single PNG entry.
package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
)

const (
	headerSize = 6
	entrySize  = 16
	typeIcon   = 1
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

var (
	ErrFormat  = errors.New("ico: invalid format")
	errNoEntry = errors.New("ico: no images")
)

func init() {
	image.RegisterFormat("ico", "\x00\x00\x01\x00", Decode, DecodeConfig)
}

type entry struct {
	width, height int
	bitCount      uint16
	size, offset  uint32
}

func readEntries(data []byte) ([]entry, error) {
	if len(data) < headerSize {
		return nil, ErrFormat
	}
	if binary.LittleEndian.Uint16(data[0:]) != 0 || binary.LittleEndian.Uint16(data[2:]) != typeIcon {
		return nil, ErrFormat
	}
	count := int(binary.LittleEndian.Uint16(data[4:]))
	if count == 0 {
		return nil, errNoEntry
	}
	if len(data) < headerSize+count*entrySize {
		return nil, ErrFormat
	}

	entries := make([]entry, count)
	for i := range entries {
		b := data[headerSize+i*entrySize:]
		e := entry{
			width:    int(b[0]),
			height:   int(b[1]),
			bitCount: binary.LittleEndian.Uint16(b[6:]),
			size:     binary.LittleEndian.Uint32(b[8:]),
			offset:   binary.LittleEndian.Uint32(b[12:]),
		}
		if e.width == 0 {
			e.width = 256
		}
		if e.height == 0 {
			e.height = 256
		}
		if uint64(e.offset)+uint64(e.size) > uint64(len(data)) {
			return nil, ErrFormat
		}
		entries[i] = e
	}
	return entries, nil
}

// largest picks the entry with the most pixels, preferring deeper colour.
func largest(entries []entry) entry {
	best := entries[0]
	for _, e := range entries[1:] {
		ep, bp := e.width*e.height, best.width*best.height
		if ep > bp || (ep == bp && e.bitCount > best.bitCount) {
			best = e
		}
	}
	return best
}

func payload(data []byte, e entry) []byte {
	return data[e.offset : e.offset+e.size]
}

// Decode returns the largest image stored in the icon.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	entries, err := readEntries(data)
	if err != nil {
		return nil, err
	}

	img := payload(data, largest(entries))
	if bytes.HasPrefix(img, pngSignature) {
		return png.Decode(bytes.NewReader(img))
	}
	return decodeDIB(img)
}

// DecodeConfig returns the dimensions of the largest image in the icon.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	entries, err := readEntries(data)
	if err != nil {
		return image.Config{}, err
	}

	e := largest(entries)
	img := payload(data, e)
	if bytes.HasPrefix(img, pngSignature) {
		return png.DecodeConfig(bytes.NewReader(img))
	}
	return image.Config{ColorModel: color.RGBAModel, Width: e.width, Height: e.height}, nil
}

// decodeDIB decodes an icon bitmap entry. Icon DIBs have no file header and
// store twice the real height (colour rows followed by the AND mask), so a
// file header is synthesised and the height halved before handing the bytes
// to the BMP decoder.
func decodeDIB(dib []byte) (image.Image, error) {
	if len(dib) < 40 {
		return nil, ErrFormat
	}
	infoSize := binary.LittleEndian.Uint32(dib[0:])
	if infoSize < 40 || int(infoSize) > len(dib) {
		return nil, ErrFormat
	}

	fixed := append([]byte(nil), dib...)
	height := int32(binary.LittleEndian.Uint32(fixed[8:]))
	binary.LittleEndian.PutUint32(fixed[8:], uint32(height/2))

	bitCount := binary.LittleEndian.Uint16(fixed[14:])
	colors := binary.LittleEndian.Uint32(fixed[32:])
	if colors == 0 && bitCount <= 8 {
		colors = 1 << bitCount
	}
	pixelOffset := 14 + infoSize + colors*4

	var file bytes.Buffer
	file.WriteString("BM")
	binary.Write(&file, binary.LittleEndian, uint32(14+len(fixed)))
	binary.Write(&file, binary.LittleEndian, uint32(0))
	binary.Write(&file, binary.LittleEndian, pixelOffset)
	file.Write(fixed)

	img, err := bmp.Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("ico: decode bitmap entry: %w", err)
	}
	return img, nil
}

// Encode writes img as a single-entry icon holding a PNG stream. Dimensions of
// 256 or more are stored as 0 in the directory, as the format requires.
func Encode(w io.Writer, img image.Image) error {
	var pngData bytes.Buffer
	if err := png.Encode(&pngData, img); err != nil {
		return err
	}

	b := img.Bounds()
	dim := func(n int) byte {
		if n >= 256 {
			return 0
		}
		return byte(n)
	}

	header := make([]byte, headerSize+entrySize)
	binary.LittleEndian.PutUint16(header[2:], typeIcon)
	binary.LittleEndian.PutUint16(header[4:], 1)
	e := header[headerSize:]
	e[0] = dim(b.Dx())
	e[1] = dim(b.Dy())
	binary.LittleEndian.PutUint16(e[4:], 1)
	binary.LittleEndian.PutUint16(e[6:], 32)
	binary.LittleEndian.PutUint32(e[8:], uint32(pngData.Len()))
	binary.LittleEndian.PutUint32(e[12:], uint32(len(header)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(pngData.Bytes())
	return err
}
