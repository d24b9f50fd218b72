package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/realspark/console-gateway/internal/core/domain"
)

// stubSink captures published notices.
type stubSink struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (s *stubSink) Publish(n domain.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
}

// bodyError mimics a transport error carrying a raw upstream body.
type bodyError struct {
	body []byte
	msg  string
}

func (e *bodyError) Error() string        { return e.msg }
func (e *bodyError) ResponseBody() []byte { return e.body }

func TestReportError_Shapes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"plain string", "You shall not pass", "You shall not pass"},
		{
			"nested error message",
			&bodyError{body: []byte(`{"error":{"message":"Invalid credentials"}}`), msg: "status 401"},
			"Invalid credentials",
		},
		{
			"top-level message",
			&bodyError{body: []byte(`{"message":"Account locked"}`), msg: "status 423"},
			"Account locked",
		},
		{
			"error as string",
			&bodyError{body: []byte(`{"error":"Token expired"}`), msg: "status 401"},
			"Token expired",
		},
		{
			"bare json string body",
			&bodyError{body: []byte(`"Service restarting"`), msg: "status 503"},
			"Service restarting",
		},
		{
			"plain text body",
			&bodyError{body: []byte("Bad Gateway"), msg: "status 502"},
			"Bad Gateway",
		},
		{
			"empty body falls back to error text",
			&bodyError{body: nil, msg: "connection refused"},
			"connection refused",
		},
		{"go error", errors.New("dial tcp: timeout"), "dial tcp: timeout"},
		{"unknown shape", 42, "Failed to process your request"},
		{"nil value", nil, "Failed to process your request"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &stubSink{}
			relay := NewRelay(zerolog.Nop(), sink)

			notice := relay.ReportError("login", tc.in)
			if notice.Detail != tc.want {
				t.Fatalf("detail = %q, want %q", notice.Detail, tc.want)
			}
			if notice.Severity != domain.SeverityError {
				t.Fatalf("severity = %q, want error", notice.Severity)
			}
			if notice.Source != "login" {
				t.Fatalf("source = %q, want login", notice.Source)
			}
			if notice.ID == "" || notice.At.IsZero() {
				t.Fatalf("notice must carry an id and a timestamp: %+v", notice)
			}
			if len(sink.notices) != 1 {
				t.Fatalf("expected one published notice, got %d", len(sink.notices))
			}
		})
	}
}

func TestReportError_NilSink(t *testing.T) {
	relay := NewRelay(zerolog.Nop(), nil)
	notice := relay.ReportError("proxy", "boom")
	if notice.Detail != "boom" {
		t.Fatalf("detail = %q, want boom", notice.Detail)
	}
}

func TestReportSuccess_Shapes(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"plain string", "Saved", "Saved"},
		{"map with message", map[string]any{"message": "User created"}, "User created"},
		{"map without message", map[string]any{"id": 7}, "Operation completed successfully"},
		{"json body", []byte(`{"message":"Profile updated"}`), "Profile updated"},
		{"nil", nil, "Operation completed successfully"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &stubSink{}
			relay := NewRelay(zerolog.Nop(), sink)

			notice := relay.ReportSuccess("account", tc.in)
			if notice.Detail != tc.want {
				t.Fatalf("detail = %q, want %q", notice.Detail, tc.want)
			}
			if notice.Severity != domain.SeveritySuccess {
				t.Fatalf("severity = %q, want success", notice.Severity)
			}
		})
	}
}

func TestExtractBodyMessage_Precedence(t *testing.T) {
	// When both shapes are present the nested error message wins.
	body := []byte(`{"message":"outer","error":{"message":"inner"}}`)
	if got := ExtractBodyMessage(body); got != "inner" {
		t.Fatalf("got %q, want inner", got)
	}

	if got := ExtractBodyMessage([]byte(`{}`)); got != "" {
		t.Fatalf("empty object should yield no message, got %q", got)
	}
	if got := ExtractBodyMessage(nil); got != "" {
		t.Fatalf("nil body should yield no message, got %q", got)
	}
}
