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

package fileconv

import (
	"errors"
	"fmt"
	"net"
)

// Category groups failures by what the user can do about them.
type Category string

const (
	CategoryValidation Category = "validation"
	CategoryConversion Category = "conversion"
	CategoryMemory     Category = "memory"
	CategoryNetwork    Category = "network"
	CategoryUnknown    Category = "unknown"
)

// ErrorInfo is the user-facing description of a failed conversion.
type ErrorInfo struct {
	Category   Category
	Message    string
	Suggestion string
	CanRetry   bool
}

// categorized is implemented by every error type in this package that knows
// its own category.
type categorized interface {
	Category() Category
}

// UnsupportedPairError is returned when the registry has no converter for a
// (source, target) pair.
type UnsupportedPairError struct {
	Source string
	Target string
}

func (e *UnsupportedPairError) Error() string {
	return fmt.Sprintf("conversion from %s to %s is not supported", e.Source, e.Target)
}

func (e *UnsupportedPairError) Category() Category { return CategoryConversion }

// ValidationError is returned when the input payload is not valid for its
// declared format.
type ValidationError struct {
	Format string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s input", e.Format)
	}
	return fmt.Sprintf("invalid %s input: %v", e.Format, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Category() Category { return CategoryValidation }

// ConversionError is returned when a converter accepted the input but could
// not produce the target format.
type ConversionError struct {
	Target string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to convert to %s", e.Target)
	}
	return fmt.Sprintf("failed to convert to %s: %v", e.Target, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Category() Category { return CategoryConversion }

// EmptyOutputError is returned when a converter succeeded but produced no bytes.
type EmptyOutputError struct {
	Source string
	Target string
}

func (e *EmptyOutputError) Error() string {
	return fmt.Sprintf("conversion from %s to %s produced an empty file", e.Source, e.Target)
}

func (e *EmptyOutputError) Category() Category { return CategoryConversion }

// ResourceError is returned when an input would exceed a configured resource
// budget.
type ResourceError struct {
	Resource string
	Limit    int64
	Actual   int64
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %d exceeds limit %d", e.Resource, e.Actual, e.Limit)
}

func (e *ResourceError) Category() Category { return CategoryMemory }

// CodecLoadError is returned when the external codec engine cannot be loaded.
type CodecLoadError struct {
	Err error
}

func (e *CodecLoadError) Error() string {
	return fmt.Sprintf("load codec engine: %v", e.Err)
}

func (e *CodecLoadError) Unwrap() error { return e.Err }

func (e *CodecLoadError) Category() Category {
	var netErr net.Error
	if errors.As(e.Err, &netErr) {
		return CategoryNetwork
	}
	return CategoryConversion
}

// Error is returned by RequestConversion for every failure. Info carries the
// classified, user-facing description; the underlying cause stays reachable
// through errors.Unwrap for logging.
type Error struct {
	Info   ErrorInfo
	Source string
	Target string
	err    error
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.Info.Message
	}
	return fmt.Sprintf("%s (%v)", e.Info.Message, e.err)
}

func (e *Error) Unwrap() error { return e.err }

func newError(source, target string, err error) *Error {
	return &Error{
		Info:   Classify(err),
		Source: source,
		Target: target,
		err:    err,
	}
}

// IsUnsupportedPair reports whether the error was caused by a missing registry entry.
func IsUnsupportedPair(err error) bool {
	var target *UnsupportedPairError
	return errors.As(err, &target)
}
