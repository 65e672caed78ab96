package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/nicholasgasior/fileconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("in", "data.csv"), outputPath(filepath.Join("in", "data.json"), "", fileconv.CSV))
	assert.Equal(t, filepath.Join("out", "photo.png"), outputPath("photo.jpeg", "out", fileconv.PNG))
	assert.Equal(t, filepath.Join(".", "notes.md"), outputPath("notes", "", fileconv.MD))
}

func TestConvertAll(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rows.json")
	bad := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"a":1,"b":"x"}]`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`{nope`), 0o644))

	engine := fileconv.New()
	logger := slog.New(slog.DiscardHandler)
	flags := convertFlags{to: "csv", outDir: filepath.Join(dir, "out")}

	err := convertAll(context.Background(), engine, logger, 2, flags, []string{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")

	out, err := os.ReadFile(filepath.Join(dir, "out", "rows.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x\"", string(out))
}

func TestCreateLoggerLevels(t *testing.T) {
	logger := createLogger(cmdConfig{LogFormat: "json", LogLevel: "warn"})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}
