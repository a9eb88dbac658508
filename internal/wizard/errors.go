package wizard

import (
	"errors"
	"log"

	"github.com/fmuoria/CV-Assessment-agent/internal/ingestion"
	"github.com/fmuoria/CV-Assessment-agent/internal/prompt"
)

var (
	ErrGenerationFailed  = errors.New("generation failed")
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrStaleResult       = errors.New("stale result discarded")
	ErrSessionNotFound   = errors.New("session not found")
)

// Kind names the error category shown to users
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		return "UnsupportedFormat"
	case errors.Is(err, ingestion.ErrProviderNotReady):
		return "ProviderNotReady"
	case errors.Is(err, ingestion.ErrRead):
		return "ReadError"
	case errors.Is(err, ingestion.ErrParse):
		return "ParseError"
	case errors.Is(err, ingestion.ErrNoAttachment):
		return "NoAttachment"
	case errors.Is(err, prompt.ErrMalformedResponse):
		return "MalformedResponse"
	case errors.Is(err, ErrGenerationFailed):
		return "GenerationFailed"
	case errors.Is(err, ErrValidation), errors.Is(err, prompt.ErrInvalidRequest):
		return "ValidationError"
	case errors.Is(err, ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, ErrStaleResult):
		return "StaleResult"
	case errors.Is(err, ErrSessionNotFound):
		return "SessionNotFound"
	default:
		return "InternalError"
	}
}

var verboseMode bool

// SetVerbose turns per-step traces on or off
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// verboseLog logs only when verbose mode is enabled
func verboseLog(format string, v ...any) {
	if verboseMode {
		log.Printf(format, v...)
	}
}
