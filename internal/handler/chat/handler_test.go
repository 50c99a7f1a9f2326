package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/zhouzirui/summachat/backend/internal/model/chat"
	"github.com/zhouzirui/summachat/backend/internal/model/summary"
	chatservice "github.com/zhouzirui/summachat/backend/internal/service/chat"
	"github.com/zhouzirui/summachat/backend/internal/service/summarizer"
)

func setupRouter(gateway summarizer.Summarizer) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService(gateway, chatservice.Config{})
	handler := New(chatSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func okGateway() summarizer.Summarizer {
	return summarizer.Func(func(context.Context, string, summary.Params) (string, error) {
		return "short version. really short", nil
	})
}

func do(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) chatmodel.Session {
	t.Helper()
	resp := do(r, http.MethodPost, "/session", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var session chatmodel.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return session
}

func TestCreateSessionReturnsGreeting(t *testing.T) {
	r, _ := setupRouter(okGateway())
	session := createSession(t, r)

	if session.ID == "" {
		t.Fatal("expected session id")
	}
	if len(session.Transcript) != 1 || session.Transcript[0].Content != chatmodel.Greeting {
		t.Fatalf("expected greeting transcript, got %+v", session.Transcript)
	}
}

func TestSubmitMessage(t *testing.T) {
	r, _ := setupRouter(okGateway())
	session := createSession(t, r)

	resp := do(r, http.MethodPost, "/session/"+session.ID+"/messages", []byte(`{"text":"a long article"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var exchange chatservice.Exchange
	if err := json.Unmarshal(resp.Body.Bytes(), &exchange); err != nil {
		t.Fatalf("decode exchange: %v", err)
	}
	if exchange.User.Content != "a long article" {
		t.Fatalf("unexpected user turn %+v", exchange.User)
	}
	if exchange.Assistant.Content != "Short version. Really short" {
		t.Fatalf("unexpected assistant turn %+v", exchange.Assistant)
	}

	resp = do(r, http.MethodGet, "/session/"+session.ID, nil)
	var got chatmodel.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if len(got.Transcript) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(got.Transcript))
	}
}

func TestSubmitBlankMessageIsIgnored(t *testing.T) {
	r, svc := setupRouter(okGateway())
	session := createSession(t, r)

	resp := do(r, http.MethodPost, "/session/"+session.ID+"/messages", []byte(`{"text":"   "}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte(`"ignored":true`)) {
		t.Fatalf("expected ignored marker, got %s", resp.Body.String())
	}

	turns, _ := svc.LoadTranscript(context.Background(), session.ID)
	if len(turns) != 1 {
		t.Fatalf("expected transcript unchanged, got %d turns", len(turns))
	}
}

func TestSubmitGatewayFailure(t *testing.T) {
	r, svc := setupRouter(summarizer.Func(func(context.Context, string, summary.Params) (string, error) {
		return "", errors.New("model offline")
	}))
	session := createSession(t, r)

	resp := do(r, http.MethodPost, "/session/"+session.ID+"/messages", []byte(`{"text":"text"}`))
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	turns, _ := svc.LoadTranscript(context.Background(), session.ID)
	if len(turns) != 2 {
		t.Fatalf("expected greeting + user turn, got %d", len(turns))
	}
}

func TestSubmitInvalidBody(t *testing.T) {
	r, _ := setupRouter(okGateway())
	session := createSession(t, r)

	resp := do(r, http.MethodPost, "/session/"+session.ID+"/messages", []byte(`not json`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUnknownSession(t *testing.T) {
	r, _ := setupRouter(okGateway())

	if resp := do(r, http.MethodGet, "/session/missing", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp := do(r, http.MethodPost, "/session/missing/messages", []byte(`{"text":"x"}`)); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestEndSession(t *testing.T) {
	r, svc := setupRouter(okGateway())
	session := createSession(t, r)

	if resp := do(r, http.MethodDelete, "/session/"+session.ID, nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if svc.Count() != 0 {
		t.Fatalf("expected session removed, %d left", svc.Count())
	}
	if resp := do(r, http.MethodDelete, "/session/"+session.ID, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
