package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/zhouzirui/summachat/backend/internal/model/summary"
	chatService "github.com/zhouzirui/summachat/backend/internal/service/chat"
	"github.com/zhouzirui/summachat/backend/internal/service/summarizer"
)

func newTestRouter(t *testing.T) (http.Handler, *chatService.Service, *bytes.Buffer) {
	t.Helper()
	gateway := summarizer.Func(func(context.Context, string, summary.Params) (string, error) {
		return "short summary.", nil
	})
	chatSvc := chatService.NewService(gateway, chatService.Config{})

	var logs bytes.Buffer
	logger := log.New(&logs)
	return NewRouter(chatSvc, logger), chatSvc, &logs
}

func TestHealthz(t *testing.T) {
	router, chatSvc, logs := newTestRouter(t)
	if _, err := chatSvc.CreateSession(context.Background()); err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Status != "ok" || body.Sessions != 1 {
		t.Fatalf("unexpected health payload %+v", body)
	}
	if !strings.Contains(logs.String(), "/healthz") {
		t.Fatalf("expected access log line, got %q", logs.String())
	}
}

func TestStreamRouteStatusCodes(t *testing.T) {
	router, chatSvc, _ := newTestRouter(t)
	session, _ := chatSvc.CreateSession(context.Background())

	cases := []struct {
		name   string
		target string
		status int
	}{
		{name: "missing message", target: "/api/stream/" + session.ID, status: http.StatusBadRequest},
		{name: "unknown session", target: "/api/stream/missing?message=hi", status: http.StatusNotFound},
		{name: "ok", target: "/api/stream/" + session.ID + "?message=hello", status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestAPIAndPageAreMounted(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from session create, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from page, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
}
