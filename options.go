package fileconv

import (
	"log/slog"
	"time"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for conversion diagnostics. By default
// nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimeout bounds the time a single conversion may spend executing. Zero
// (the default) means no limit beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithMaxPixels limits the decoded size of raster images. Larger images fail
// with a memory-class error before being decoded. Zero disables the check.
func WithMaxPixels(n int64) Option {
	return func(e *Engine) {
		e.maxPixels = n
	}
}

// WithImageEncoder installs or replaces the encoder used for the given image
// MIME type, e.g. to add WEBP output.
func WithImageEncoder(mimeType string, enc ImageEncoder) Option {
	return func(e *Engine) {
		e.imageEncoders[mimeType] = enc
	}
}

// WithCodecLoader replaces the loader of the audio/video codec engine.
func WithCodecLoader(load CodecLoader) Option {
	return func(e *Engine) {
		e.codecLoader = load
	}
}

// WithFFmpegPath sets the ffmpeg binary used by the default codec loader.
func WithFFmpegPath(path string) Option {
	return func(e *Engine) {
		e.ffmpegPath = path
	}
}

// WithStateObserver registers a callback invoked on every state transition of
// every conversion.
func WithStateObserver(fn func(State)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// WithKeepDataURIs configures whether Markdown output keeps full data URIs
// (default: false, which truncates them to data:mime/type;base64...).
func WithKeepDataURIs(keep bool) Option {
	return func(e *Engine) {
		e.keepDataURIs = keep
	}
}
