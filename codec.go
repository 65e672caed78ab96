package fileconv

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/afero"
)

// CodecEngine is an external audio/video codec toolkit with a private
// workspace. File names are relative to that workspace.
type CodecEngine interface {
	WriteFile(name string, data []byte) error
	ReadFile(name string) ([]byte, error)
	DeleteFile(name string) error
	// Exec runs one codec command inside the workspace.
	Exec(ctx context.Context, args ...string) error
	// Close releases the workspace.
	Close() error
}

// CodecLoader creates a CodecEngine. It is called at most once per Engine
// unless it fails.
type CodecLoader func(ctx context.Context) (CodecEngine, error)

// FFmpegLoader returns a loader for the ffmpeg binary at path (looked up in
// PATH when it is a bare name). Each loaded engine works in its own temporary
// directory.
func FFmpegLoader(path string, logger *slog.Logger) CodecLoader {
	return func(ctx context.Context) (CodecEngine, error) {
		bin, err := exec.LookPath(path)
		if err != nil {
			return nil, &CodecLoadError{Err: err}
		}
		if out, err := exec.CommandContext(ctx, bin, "-version").Output(); err != nil {
			return nil, &CodecLoadError{Err: fmt.Errorf("probe %s: %w", bin, err)}
		} else {
			version, _, _ := strings.Cut(string(out), "\n")
			logger.DebugContext(ctx, "codec engine found", "path", bin, "version", version)
		}

		dir, err := os.MkdirTemp("", "fileconv-codec-*")
		if err != nil {
			return nil, &CodecLoadError{Err: err}
		}
		return &ffmpegEngine{
			bin:    bin,
			dir:    dir,
			fs:     afero.NewBasePathFs(afero.NewOsFs(), dir),
			logger: logger,
		}, nil
	}
}

type ffmpegEngine struct {
	bin    string
	dir    string
	fs     afero.Fs
	logger *slog.Logger
}

func (f *ffmpegEngine) WriteFile(name string, data []byte) error {
	return afero.WriteFile(f.fs, name, data, 0o600)
}

func (f *ffmpegEngine) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(f.fs, name)
}

func (f *ffmpegEngine) DeleteFile(name string) error {
	return f.fs.Remove(name)
}

func (f *ffmpegEngine) Exec(ctx context.Context, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.bin, args...)
	cmd.Dir = f.dir
	cmd.Stderr = &stderr

	f.logger.DebugContext(ctx, "running codec engine", "args", args)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

func (f *ffmpegEngine) Close() error {
	return os.RemoveAll(f.dir)
}
