package fileconv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

const (
	suggestRetryOtherFile = "The input file may be corrupted or in an unsupported format. Try a different file."
	suggestOtherTarget    = "This conversion combination is not currently supported. Try a different output format."
	suggestSmallerFile    = "The file is too large. Try with a smaller file or different format."
	suggestNetwork        = "Please check your internet connection and try again."
	suggestTryAgain       = "Please try again. If the problem persists, try a different file or format."
)

var validationInfo = map[string]ErrorInfo{
	JSON: {
		Category:   CategoryValidation,
		Message:    "Invalid JSON format detected.",
		Suggestion: "Please check your JSON file for syntax errors like missing commas, quotes, or brackets.",
		CanRetry:   true,
	},
	XML: {
		Category:   CategoryValidation,
		Message:    "Invalid XML format detected.",
		Suggestion: "Please ensure your XML file is well-formed with proper tags and structure.",
		CanRetry:   true,
	},
	CSV: {
		Category:   CategoryValidation,
		Message:    "Invalid CSV format detected.",
		Suggestion: "Please check your CSV file for proper comma separation and consistent columns.",
		CanRetry:   true,
	},
	XLSX: {
		Category:   CategoryValidation,
		Message:    "Invalid Excel file.",
		Suggestion: "Please make sure the file is a valid Excel workbook with at least one sheet.",
		CanRetry:   true,
	},
}

// Classify maps an error onto the user-facing ErrorInfo. Errors that carry a
// category are mapped by type; anything else falls back to matching keywords
// in the error message.
func Classify(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{Category: CategoryUnknown, Message: "An unexpected error occurred.", Suggestion: suggestTryAgain, CanRetry: true}
	}

	var convErr *Error
	if errors.As(err, &convErr) {
		return convErr.Info
	}
	if info, ok := classifyTyped(err); ok {
		return info
	}
	return classifyMessage(err.Error())
}

func classifyTyped(err error) (ErrorInfo, bool) {
	var (
		unsupported *UnsupportedPairError
		validation  *ValidationError
		empty       *EmptyOutputError
		resource    *ResourceError
		codec       *CodecLoadError
		conversion  *ConversionError
		netErr      net.Error
	)

	switch {
	case errors.As(err, &unsupported):
		return ErrorInfo{
			Category:   CategoryConversion,
			Message:    fmt.Sprintf("Conversion from %s to %s is not supported.", unsupported.Source, unsupported.Target),
			Suggestion: suggestOtherTarget,
			CanRetry:   false,
		}, true

	case errors.As(err, &validation):
		if info, ok := validationInfo[validation.Format]; ok {
			return info, true
		}
		return ErrorInfo{
			Category:   CategoryValidation,
			Message:    fmt.Sprintf("Invalid %s format detected.", validation.Format),
			Suggestion: fmt.Sprintf("Please check that the file is a valid %s file.", validation.Format),
			CanRetry:   true,
		}, true

	case errors.As(err, &empty):
		return ErrorInfo{
			Category:   CategoryConversion,
			Message:    "Conversion resulted in an empty file.",
			Suggestion: suggestRetryOtherFile,
			CanRetry:   true,
		}, true

	case errors.As(err, &resource):
		return ErrorInfo{
			Category:   CategoryMemory,
			Message:    "Insufficient memory for conversion.",
			Suggestion: suggestSmallerFile,
			CanRetry:   false,
		}, true

	case errors.As(err, &codec):
		if codec.Category() == CategoryNetwork {
			return ErrorInfo{
				Category:   CategoryNetwork,
				Message:    "Network error occurred.",
				Suggestion: suggestNetwork,
				CanRetry:   true,
			}, true
		}
		return ErrorInfo{
			Category:   CategoryConversion,
			Message:    "The media codec engine could not be loaded.",
			Suggestion: "Make sure ffmpeg is installed and try again.",
			CanRetry:   true,
		}, true

	case errors.Is(err, context.DeadlineExceeded):
		return ErrorInfo{
			Category:   CategoryConversion,
			Message:    "Conversion timed out.",
			Suggestion: "Try again with a smaller file.",
			CanRetry:   true,
		}, true

	case errors.Is(err, context.Canceled):
		return ErrorInfo{
			Category:   CategoryConversion,
			Message:    "Conversion was cancelled.",
			Suggestion: suggestTryAgain,
			CanRetry:   true,
		}, true

	case errors.As(err, &conversion):
		return ErrorInfo{
			Category:   CategoryConversion,
			Message:    fmt.Sprintf("Conversion to %s failed.", conversion.Target),
			Suggestion: suggestRetryOtherFile,
			CanRetry:   true,
		}, true

	case errors.As(err, &netErr):
		return ErrorInfo{
			Category:   CategoryNetwork,
			Message:    "Network error occurred.",
			Suggestion: suggestNetwork,
			CanRetry:   true,
		}, true
	}
	return ErrorInfo{}, false
}

// classifyMessage is the keyword fallback for errors from outside this
// package. Order matters: the first match wins.
func classifyMessage(msg string) ErrorInfo {
	switch {
	case strings.Contains(msg, "JSON"):
		return validationInfo[JSON]
	case strings.Contains(msg, "XML"):
		return validationInfo[XML]
	case strings.Contains(msg, "CSV"):
		return validationInfo[CSV]
	case strings.Contains(msg, "empty"), strings.Contains(msg, "size === 0"):
		return ErrorInfo{
			Category:   CategoryConversion,
			Message:    "Conversion resulted in an empty file.",
			Suggestion: suggestRetryOtherFile,
			CanRetry:   true,
		}
	case strings.Contains(msg, "not supported"), strings.Contains(msg, "unsupported"):
		return ErrorInfo{
			Category:   CategoryConversion,
			Message:    "Conversion format not supported.",
			Suggestion: suggestOtherTarget,
			CanRetry:   false,
		}
	case strings.Contains(msg, "memory"):
		return ErrorInfo{
			Category:   CategoryMemory,
			Message:    "Insufficient memory for conversion.",
			Suggestion: suggestSmallerFile,
			CanRetry:   false,
		}
	case strings.Contains(msg, "network"), strings.Contains(msg, "fetch"):
		return ErrorInfo{
			Category:   CategoryNetwork,
			Message:    "Network error occurred.",
			Suggestion: suggestNetwork,
			CanRetry:   true,
		}
	}

	if msg == "" {
		msg = "An unexpected error occurred."
	}
	return ErrorInfo{
		Category:   CategoryUnknown,
		Message:    msg,
		Suggestion: suggestTryAgain,
		CanRetry:   true,
	}
}
