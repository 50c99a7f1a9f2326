package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "session not found")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"session not found"}` {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
		empty   bool
	}{
		{name: "ok", body: `{"text":"hi"}`},
		{name: "empty", body: ``, wantErr: true, empty: true},
		{name: "malformed", body: `{"text":`, wantErr: true},
		{name: "trailing", body: `{"text":"a"}{"text":"b"}`, wantErr: true},
		{name: "too large", body: `{"text":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst struct {
				Text string `json:"text"`
			}
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tc.wantErr != (err != nil) {
				t.Fatalf("unexpected err: %v", err)
			}
			if tc.empty && !errors.Is(err, ErrEmptyBody) {
				t.Fatalf("expected ErrEmptyBody, got %v", err)
			}
			if !tc.wantErr && dst.Text != "hi" {
				t.Fatalf("unexpected decoded value %+v", dst)
			}
		})
	}
}

type plainWriter struct {
	header http.Header
}

func (p *plainWriter) Header() http.Header         { return p.header }
func (p *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (p *plainWriter) WriteHeader(int)             {}

func TestSSEWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	sse, err := NewSSEWriter(rec)
	if err != nil {
		t.Fatalf("NewSSEWriter err: %v", err)
	}

	if err := sse.Send("message", map[string]string{"content": "Hi."}); err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if err := sse.Send("", map[string]bool{"finished": true}); err != nil {
		t.Fatalf("Send err: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	want := "event: message\ndata: {\"content\":\"Hi.\"}\n\ndata: {\"finished\":true}\n\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected frames %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Fatal("expected flush")
	}
}

func TestSSEWriterRequiresFlusher(t *testing.T) {
	if _, err := NewSSEWriter(&plainWriter{header: http.Header{}}); !errors.Is(err, ErrStreamingUnsupported) {
		t.Fatalf("expected ErrStreamingUnsupported, got %v", err)
	}
}
