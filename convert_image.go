package fileconv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/nicholasgasior/fileconv/internal/ico"
)

// ImageEncoder writes img in one particular image format.
type ImageEncoder func(w io.Writer, img image.Image) error

const jpegQuality = 92

var defaultImageEncoders = map[string]ImageEncoder{
	"image/png": png.Encode,
	"image/jpeg": func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	},
	"image/gif": func(w io.Writer, img image.Image) error {
		return gif.Encode(w, img, nil)
	},
	"image/bmp":    bmp.Encode,
	"image/x-icon": ico.Encode,
}

var errNoEncoder = errors.New("no encoder for this image type")

// imageConverter re-encodes any decodable raster image into target. The image
// is drawn onto a fresh RGBA surface of the same size first, so the output
// never shares pixel buffers or palettes with the input.
func (e *Engine) imageConverter(target string) Converter {
	mimeType := MIMEType(target)
	return ConverterFunc(func(ctx context.Context, payload []byte, report ProgressFunc) (*Result, error) {
		report(10)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
		if err != nil {
			return nil, &ConversionError{Target: target, Err: fmt.Errorf("failed to load image: %w", err)}
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); e.maxPixels > 0 && pixels > e.maxPixels {
			return nil, &ResourceError{Resource: "image pixel count", Limit: e.maxPixels, Actual: pixels}
		}

		src, format, err := image.Decode(bytes.NewReader(payload))
		if err != nil {
			return nil, &ConversionError{Target: target, Err: fmt.Errorf("failed to load image: %w", err)}
		}
		e.logger.DebugContext(ctx, "image decoded", "format", format, "width", cfg.Width, "height", cfg.Height)
		report(50)

		bounds := src.Bounds()
		canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		report(75)

		draw.Draw(canvas, canvas.Bounds(), src, bounds.Min, draw.Src)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report(90)

		enc, ok := e.imageEncoders[mimeType]
		if !ok {
			return nil, &ConversionError{Target: target, Err: fmt.Errorf("failed to convert image: %w: %s", errNoEncoder, mimeType)}
		}
		var buf bytes.Buffer
		if err := enc(&buf, canvas); err != nil {
			return nil, &ConversionError{Target: target, Err: fmt.Errorf("failed to convert image: %w", err)}
		}
		report(100)

		return &Result{Data: buf.Bytes(), MIMEType: mimeType}, nil
	})
}
