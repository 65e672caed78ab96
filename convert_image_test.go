package fileconv

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(40 * x), G: uint8(60 * y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageConversion(t *testing.T) {
	e := New()
	src := pngFixture(t, 4, 3)

	for _, target := range []string{JPG, BMP, GIF, ICO} {
		t.Run(target, func(t *testing.T) {
			var progress []int
			res, err := e.RequestConversion(context.Background(), src, "png", target, func(p int) {
				progress = append(progress, p)
			})
			require.NoError(t, err)
			assert.Equal(t, MIMEType(target), res.MIMEType)
			assert.Equal(t, []int{10, 50, 75, 90, 100}, progress)

			img, _, err := image.Decode(bytes.NewReader(res.Data))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
		})
	}
}

func TestImageToPNG(t *testing.T) {
	src := pngFixture(t, 5, 2)
	img, err := png.Decode(bytes.NewReader(src))
	require.NoError(t, err)

	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, img, nil))
	bmpRes, err := New().RequestConversion(context.Background(), src, PNG, BMP, nil)
	require.NoError(t, err)

	tests := []struct {
		source string
		data   []byte
	}{
		{JPG, jpg.Bytes()},
		{"jpeg", jpg.Bytes()},
		{BMP, bmpRes.Data},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			var progress []int
			res, err := e.RequestConversion(context.Background(), tt.data, tt.source, PNG, func(p int) {
				progress = append(progress, p)
			})
			require.NoError(t, err)
			assert.Equal(t, "image/png", res.MIMEType)
			assert.Equal(t, []int{10, 50, 75, 90, 100}, progress)

			out, err := png.Decode(bytes.NewReader(res.Data))
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 5, 2), out.Bounds())
		})
	}
}

func TestImageWEBPEncodeUnsupported(t *testing.T) {
	_, err := New().RequestConversion(context.Background(), pngFixture(t, 2, 2), PNG, WEBP, nil)
	require.Error(t, err)

	var convErr *Error
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, CategoryConversion, convErr.Info.Category)
	assert.True(t, convErr.Info.CanRetry)
	assert.True(t, errors.Is(err, errNoEncoder))
}

func TestImageCustomEncoder(t *testing.T) {
	e := New(WithImageEncoder("image/webp", png.Encode))
	res, err := e.RequestConversion(context.Background(), pngFixture(t, 2, 2), PNG, WEBP, nil)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", res.MIMEType)
}

func TestImageTooLarge(t *testing.T) {
	e := New(WithMaxPixels(10))
	_, err := e.RequestConversion(context.Background(), pngFixture(t, 4, 3), PNG, JPG, nil)
	require.Error(t, err)

	info := Classify(err)
	assert.Equal(t, CategoryMemory, info.Category)
	assert.False(t, info.CanRetry)
}

func TestImageUndecodable(t *testing.T) {
	_, err := New().RequestConversion(context.Background(), []byte("not an image"), JPG, PNG, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load image")
	assert.Equal(t, CategoryConversion, Classify(err).Category)
}
