package main

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog"
)

// cmdConfig is read from the environment.
type cmdConfig struct {
	LogFormat string        `env:"FILECONV_LOG_FORMAT" env-default:"text" env-description:"Log output format (text or json)"`
	LogLevel  string        `env:"FILECONV_LOG_LEVEL" env-default:"info" env-description:"Log level (debug, info, warn, error)"`
	FFmpeg    string        `env:"FILECONV_FFMPEG" env-default:"ffmpeg" env-description:"ffmpeg binary used for audio and video"`
	Timeout   time.Duration `env:"FILECONV_TIMEOUT" env-default:"0s" env-description:"Per-file conversion timeout (0 disables it)"`
	MaxPixels int64         `env:"FILECONV_MAX_PIXELS" env-default:"67108864" env-description:"Largest image, in pixels, that will be decoded"`
	Workers   int           `env:"FILECONV_WORKERS" env-default:"4" env-description:"Files converted in parallel"`
}

func loadConfig() (cmdConfig, error) {
	var cfg cmdConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func createLogger(conf cmdConfig) *slog.Logger {
	var level slog.Level
	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var zl zerolog.Logger
	if conf.LogFormat == "json" {
		zl = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()
	}

	logger := slog.New(slogzerolog.Option{
		Level:  level,
		Logger: &zl,
	}.NewZerologHandler())

	log.SetFlags(0)
	slog.SetDefault(logger)
	return logger
}
