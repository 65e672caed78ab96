// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package fileconv converts files between formats: structured data (JSON, CSV,
// TSV, XML), text and markup, raster images, documents, spreadsheets, feeds,
// and audio/video through an external codec engine.
package fileconv

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"
)

// State is a step of a single conversion.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateDispatching
	StateExecuting
	StateFinalizing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateDispatching:
		return "dispatching"
	case StateExecuting:
		return "executing"
	case StateFinalizing:
		return "finalizing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Engine is the conversion engine. It is safe for concurrent use; every
// RequestConversion call runs its own state machine.
type Engine struct {
	logger       *slog.Logger
	timeout      time.Duration
	maxPixels    int64
	keepDataURIs bool
	observer     func(State)

	imageEncoders map[string]ImageEncoder

	codecLoader CodecLoader
	ffmpegPath  string
	codec       *lazy[CodecEngine]
	codecMu     sync.Mutex

	pdf      *pdfBackend
	registry *registry
}

const defaultMaxPixels = 1 << 26

var errNoCodec = errors.New("codec loader returned no engine")

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:        slog.New(slog.DiscardHandler),
		maxPixels:     defaultMaxPixels,
		imageEncoders: maps.Clone(defaultImageEncoders),
		ffmpegPath:    "ffmpeg",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.codecLoader == nil {
		e.codecLoader = FFmpegLoader(e.ffmpegPath, e.logger)
	}
	e.codec = newLazy(func(ctx context.Context) (CodecEngine, error) {
		e.logger.DebugContext(ctx, "loading codec engine")
		codec, err := e.codecLoader(ctx)
		if err == nil && codec == nil {
			err = errNoCodec
		}
		return codec, err
	})
	e.pdf = newPDFBackend()
	e.registry = e.buildRegistry()
	return e
}

// ListCompatibleTargets returns the formats source can be converted to, in
// registry order. Unknown sources yield an empty list.
func (e *Engine) ListCompatibleTargets(source string) []string {
	return e.registry.targets(source)
}

// RequestConversion converts payload from source to target. onProgress, when
// non-nil, receives non-decreasing values in [0, 100] ending with 100 on
// success. Every failure is returned as *Error.
func (e *Engine) RequestConversion(ctx context.Context, payload []byte, source, target string, onProgress ProgressFunc) (*Result, error) {
	c := &conversion{
		engine:   e,
		source:   Canonicalize(source),
		target:   target,
		progress: newProgressReporter(onProgress),
	}

	res, err := c.run(ctx, payload)
	if err != nil {
		c.transition(ctx, StateFailed)
		convErr := newError(c.source, c.target, err)
		e.logger.WarnContext(ctx, "conversion failed",
			"source", c.source,
			"target", c.target,
			"category", convErr.Info.Category,
			"error", err,
		)
		return nil, convErr
	}

	c.transition(ctx, StateSucceeded)
	e.logger.DebugContext(ctx, "conversion finished",
		"source", c.source,
		"target", c.target,
		"bytes", len(res.Data),
		"mime", res.MIMEType,
	)
	return res, nil
}

type conversion struct {
	engine   *Engine
	source   string
	target   string
	state    State
	progress *progressReporter
}

func (c *conversion) transition(ctx context.Context, s State) {
	c.engine.logger.DebugContext(ctx, "conversion state",
		"source", c.source,
		"target", c.target,
		"from", c.state,
		"to", s,
	)
	c.state = s
	if c.engine.observer != nil {
		c.engine.observer(s)
	}
}

func (c *conversion) run(ctx context.Context, payload []byte) (*Result, error) {
	c.transition(ctx, StateValidating)
	conv, ok := c.engine.registry.lookup(c.source, c.target)
	if !ok {
		return nil, &UnsupportedPairError{Source: c.source, Target: c.target}
	}

	c.transition(ctx, StateDispatching)
	c.progress.report(10)

	c.transition(ctx, StateExecuting)
	if c.engine.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.engine.timeout)
		defer cancel()
	}
	res, err := conv.Convert(ctx, payload, c.progress.report)
	if err != nil {
		return nil, err
	}

	c.transition(ctx, StateFinalizing)
	if res == nil || len(res.Data) == 0 {
		return nil, &EmptyOutputError{Source: c.source, Target: c.target}
	}
	c.progress.report(100)
	return res, nil
}

// Close releases the codec engine workspace and the PDF backend if they were
// started. The Engine must not be used afterwards.
func (e *Engine) Close() error {
	var errs []error
	if codec, ok := e.codec.loaded(); ok {
		errs = append(errs, codec.Close())
	}
	errs = append(errs, e.pdf.close())
	return errors.Join(errs...)
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// RequestConversion converts payload using a shared default Engine.
func RequestConversion(ctx context.Context, payload []byte, source, target string, onProgress ProgressFunc) (*Result, error) {
	return defaultEngine().RequestConversion(ctx, payload, source, target, onProgress)
}

// ListCompatibleTargets lists targets using a shared default Engine.
func ListCompatibleTargets(source string) []string {
	return defaultEngine().ListCompatibleTargets(source)
}
