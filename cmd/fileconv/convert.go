package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicholasgasior/fileconv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type convertFlags struct {
	to     string
	from   string
	outDir string
}

func newConvertCmd() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert files to another format",
		Long: `Convert one or more files to the format given with --to.

The source format is taken from --from, or detected from each file's
extension and content. Output files are written next to their inputs
(or into --output) with the target extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := createLogger(cfg)

			engine := fileconv.New(
				fileconv.WithLogger(logger),
				fileconv.WithFFmpegPath(cfg.FFmpeg),
				fileconv.WithTimeout(cfg.Timeout),
				fileconv.WithMaxPixels(cfg.MaxPixels),
			)
			defer engine.Close()

			return convertAll(cmd.Context(), engine, logger, cfg.Workers, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.to, "to", "t", "", "target format (e.g. PDF, CSV, PNG)")
	cmd.Flags().StringVarP(&flags.from, "from", "f", "", "source format (detected when omitted)")
	cmd.Flags().StringVarP(&flags.outDir, "output", "o", "", "output directory (default: next to each input)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// convertAll converts every file, at most workers at a time. A failing file
// does not stop the others; the first failure is returned.
func convertAll(ctx context.Context, engine *fileconv.Engine, logger *slog.Logger, workers int, flags convertFlags, files []string) error {
	target := fileconv.Canonicalize(flags.to)

	var g errgroup.Group
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			out, err := convertFile(ctx, engine, logger, flags, target, path)
			if err != nil {
				var convErr *fileconv.Error
				if errors.As(err, &convErr) {
					logger.ErrorContext(ctx, "conversion failed",
						"file", path,
						"category", convErr.Info.Category,
						"message", convErr.Info.Message,
						"suggestion", convErr.Info.Suggestion,
						"can_retry", convErr.Info.CanRetry,
					)
				} else {
					logger.ErrorContext(ctx, "conversion failed", "file", path, "error", err)
				}
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.InfoContext(ctx, "converted", "file", path, "output", out)
			return nil
		})
	}
	return g.Wait()
}

func convertFile(ctx context.Context, engine *fileconv.Engine, logger *slog.Logger, flags convertFlags, target, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	source := flags.from
	if source == "" {
		source = fileconv.DetectFormat(data, path)
		if source == "" {
			return "", errors.New("cannot detect source format, use --from")
		}
	}

	res, err := engine.RequestConversion(ctx, data, source, target, func(p int) {
		logger.DebugContext(ctx, "progress", "file", path, "percent", p)
	})
	if err != nil {
		return "", err
	}

	out := outputPath(path, flags.outDir, target)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func outputPath(input, outDir, target string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+"."+fileconv.Extension(target))
}
