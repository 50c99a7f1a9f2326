// Package page serves the server-rendered chat page bound to a cookie session.
package page

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/summachat/backend/internal/model/chat"
	"github.com/zhouzirui/summachat/backend/internal/render"
	chatservice "github.com/zhouzirui/summachat/backend/internal/service/chat"
)

// CookieName 保存会话ID的cookie名称
const CookieName = "summachat_session"

const about = `Welcome to the **AI-Powered Summarization Chatbot!** 🤖
This tool helps you quickly summarize and understand large pieces of text by generating **concise, well-structured, and paraphrased summaries**.

### 📌 How to Use:
1. Enter or paste a paragraph in the chat input.
2. Click **Summarize** and let the AI summarize it.
3. Get a **clear, concise, and well-structured** summary instantly.

### **Thanks for using my Chatbot!**`

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Handler 页面处理器
type Handler struct {
	chatSvc *chatservice.Service
}

// New 创建页面处理器
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/", h.submit)
}

type turnView struct {
	ID    string
	Role  chat.Role
	Label string
	HTML  template.HTML
}

type pageView struct {
	About template.HTML
	Turns []turnView
	Error string
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(w, r)
	if err != nil {
		log.Errorf("[page] session unavailable: %v", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, session, "")
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	session, err := h.session(w, r)
	if err != nil {
		log.Errorf("[page] session unavailable: %v", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}

	_, err = h.chatSvc.Submit(r.Context(), session.ID, r.PostForm.Get("text"))
	switch {
	case err == nil, errors.Is(err, chatservice.ErrEmptyInput):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, chatservice.ErrGatewayFailure):
		log.Warnf("[page] summarization failed session=%s: %v", session.ID, err)
		current, getErr := h.chatSvc.GetSession(r.Context(), session.ID)
		if getErr != nil {
			current = session
		}
		h.render(w, http.StatusBadGateway, current, "Summarization failed, please try again.")
	default:
		log.Errorf("[page] submit failed session=%s: %v", session.ID, err)
		http.Error(w, "submit failed", http.StatusInternalServerError)
	}
}

// session 返回cookie绑定的会话，不存在时创建新会话并写入cookie
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (chat.Session, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		session, err := h.chatSvc.GetSession(r.Context(), cookie.Value)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, chatservice.ErrSessionNotFound) {
			return chat.Session{}, err
		}
	}

	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		return chat.Session{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}

func (h *Handler) render(w http.ResponseWriter, status int, session chat.Session, errMsg string) {
	view := pageView{
		About: render.Markdown(about),
		Turns: make([]turnView, 0, len(session.Transcript)),
		Error: errMsg,
	}
	for _, turn := range session.Transcript {
		view.Turns = append(view.Turns, turnView{
			ID:    turn.ID,
			Role:  turn.Role,
			Label: turn.Role.Label(),
			HTML:  render.Markdown(turn.Content),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, view); err != nil {
		log.Errorf("[page] render failed: %v", err)
	}
}
