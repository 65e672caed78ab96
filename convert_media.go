package fileconv

import (
	"context"
	"errors"
	"slices"
)

// codecArgs is the default encoder policy for a target container.
func codecArgs(target string) []string {
	var args []string
	switch target {
	case MP3:
		args = []string{"-c:a", "libmp3lame", "-b:a", "192k"}
	case WAV:
		args = []string{"-c:a", "pcm_s16le"}
	case OGG:
		args = []string{"-c:a", "libvorbis", "-q:a", "5"}
	case FLAC:
		args = []string{"-c:a", "flac"}
	case AAC, M4A:
		args = []string{"-c:a", "aac", "-b:a", "192k"}
	case MP4, MOV, MKV:
		args = []string{"-c:v", "libx264", "-preset", "medium", "-crf", "23", "-c:a", "aac", "-b:a", "192k"}
	case WEBM:
		args = []string{"-c:v", "libvpx-vp9", "-crf", "32", "-b:v", "0", "-c:a", "libopus"}
	case AVI:
		args = []string{"-c:v", "mpeg4", "-q:v", "5", "-c:a", "libmp3lame"}
	}
	if slices.Contains(audioFormats, target) {
		args = append([]string{"-vn"}, args...)
	}
	return args
}

// mediaConverter re-encodes through the codec engine. The input and output
// workspace entries are removed on every path.
func (e *Engine) mediaConverter(source, target string) Converter {
	policy := codecArgs(target)
	input := "input." + Extension(source)
	output := "output." + Extension(target)

	return ConverterFunc(func(ctx context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
		engine, err := e.codec.get(ctx)
		if err != nil {
			var loadErr *CodecLoadError
			if !errors.As(err, &loadErr) {
				err = &CodecLoadError{Err: err}
			}
			return nil, err
		}

		e.codecMu.Lock()
		defer e.codecMu.Unlock()

		defer func() {
			for _, name := range []string{input, output} {
				if err := engine.DeleteFile(name); err != nil {
					e.logger.DebugContext(ctx, "codec workspace cleanup", "file", name, "error", err)
				}
			}
		}()

		if err := engine.WriteFile(input, payload); err != nil {
			e.logger.DebugContext(ctx, "codec write failed", "file", input, "error", err)
			return nil, &ConversionError{Target: target}
		}

		args := slices.Concat([]string{"-hide_banner", "-loglevel", "error", "-y", "-i", input}, policy, []string{output})
		if err := engine.Exec(ctx, args...); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			e.logger.DebugContext(ctx, "codec engine failed", "target", target, "error", err)
			return nil, &ConversionError{Target: target}
		}

		data, err := engine.ReadFile(output)
		if err != nil {
			e.logger.DebugContext(ctx, "codec read failed", "file", output, "error", err)
			return nil, &ConversionError{Target: target}
		}
		return &Result{Data: data, MIMEType: MIMEType(target)}, nil
	})
}
