package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
	"github.com/realspark/console-gateway/internal/core/ports"
)

const (
	genericErrorMessage   = "Failed to process your request"
	genericSuccessMessage = "Operation completed successfully"
)

// responseBodyCarrier is implemented by transport errors that retain the raw
// upstream response body (see upstream.Error).
type responseBodyCarrier interface {
	ResponseBody() []byte
}

// Relay normalizes the heterogeneous failure and success shapes produced by
// the upstream API and the console's own components into uniform notices.
// The raw value is always logged for diagnostics, whatever ends up being
// displayed; a missing sink degrades to the log-only path rather than
// failing.
type Relay struct {
	log  zerolog.Logger
	sink ports.NoticeSink
}

// NewRelay builds a Relay. sink may be nil in headless contexts.
func NewRelay(log zerolog.Logger, sink ports.NoticeSink) *Relay {
	return &Relay{log: log.With().Str("component", "relay").Logger(), sink: sink}
}

// ReportError turns any failure value into an error notice. Extraction
// precedence over the closed set of expected shapes:
//
//  1. a plain string is used verbatim
//  2. a transport error carrying an upstream body: nested error.message,
//     then top-level message, then error-as-string, then the bare body
//  3. any other Go error: its Error() text
//  4. fallback: a generic failure message
func (r *Relay) ReportError(source string, v any) domain.Notice {
	r.log.Error().Str("source", source).Interface("raw", rawForLog(v)).Msg("reported error")

	detail := genericErrorMessage
	switch val := v.(type) {
	case string:
		if val != "" {
			detail = val
		}
	case responseBodyCarrier:
		if msg := ExtractBodyMessage(val.ResponseBody()); msg != "" {
			detail = msg
		} else if err, ok := v.(error); ok && err.Error() != "" {
			detail = err.Error()
		}
	case error:
		if val != nil && val.Error() != "" {
			detail = val.Error()
		}
	}

	return r.emit(domain.Notice{
		ID:       uuid.NewString(),
		Severity: domain.SeverityError,
		Summary:  "Error",
		Detail:   detail,
		Source:   source,
		At:       time.Now().UTC(),
	})
}

// ReportSuccess turns a success payload into a success notice, using the
// payload's message field when one is present.
func (r *Relay) ReportSuccess(source string, v any) domain.Notice {
	detail := genericSuccessMessage
	switch val := v.(type) {
	case string:
		if val != "" {
			detail = val
		}
	case map[string]any:
		if msg, ok := val["message"].(string); ok && msg != "" {
			detail = msg
		}
	case []byte:
		if msg := ExtractBodyMessage(val); msg != "" {
			detail = msg
		}
	}

	return r.emit(domain.Notice{
		ID:       uuid.NewString(),
		Severity: domain.SeveritySuccess,
		Summary:  "Success",
		Detail:   detail,
		Source:   source,
		At:       time.Now().UTC(),
	})
}

func (r *Relay) emit(n domain.Notice) domain.Notice {
	if r.sink != nil {
		r.sink.Publish(n)
	}
	return n
}

// ExtractBodyMessage pulls a human-readable message out of an upstream error
// body. Tolerated shapes, in order: {"error":{"message":...}},
// {"message":...}, {"error":"..."}, and a bare string body.
func ExtractBodyMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var envelope struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Not JSON at all: the backend sent plain text.
		return trimmed
	}

	if len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
		var errStr string
		if err := json.Unmarshal(envelope.Error, &errStr); err == nil && errStr != "" {
			return errStr
		}
	}
	if envelope.Message != "" {
		return envelope.Message
	}

	var bare string
	if err := json.Unmarshal(body, &bare); err == nil && bare != "" {
		return bare
	}
	return ""
}

// rawForLog keeps log output stable for error values, which zerolog would
// otherwise serialize as empty objects.
func rawForLog(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}
