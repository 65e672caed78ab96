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

import "context"

// ProgressFunc receives completion percentages in the range [0, 100].
type ProgressFunc func(percent int)

// Result holds the output of a conversion.
type Result struct {
	Data     []byte
	MIMEType string
}

// Converter is the interface all format converters implement.
type Converter interface {
	// Convert transforms payload into the converter's target format. Converters
	// that report granular progress call report; others may ignore it.
	Convert(ctx context.Context, payload []byte, report ProgressFunc) (*Result, error)
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(ctx context.Context, payload []byte, report ProgressFunc) (*Result, error)

func (f ConverterFunc) Convert(ctx context.Context, payload []byte, report ProgressFunc) (*Result, error) {
	return f(ctx, payload, report)
}

// textConverter wraps a string-to-string transform. The payload is decoded to
// UTF-8 before the transform runs.
func textConverter(mimeType string, fn func(string) (string, error)) Converter {
	return ConverterFunc(func(_ context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
		out, err := fn(decodeText(payload))
		if err != nil {
			return nil, err
		}
		return &Result{Data: []byte(out), MIMEType: mimeType}, nil
	})
}
