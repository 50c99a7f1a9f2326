package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatservice "github.com/zhouzirui/summachat/backend/internal/service/chat"
)

const defaultReadTimeout = 60 * time.Second

// Handler WebSocket对话处理器
type Handler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader

	// readTimeout 是两次客户端消息或pong之间允许的最长间隔，
	// 正在生成摘要的时间不计入其中
	readTimeout time.Duration
}

// New 创建WebSocket处理器
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		readTimeout: defaultReadTimeout,
	}
}

func (h *Handler) pingInterval() time.Duration {
	return h.readTimeout * 9 / 10
}

func (h *Handler) extendReadDeadline(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(h.readTimeout))
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Infof("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.extendReadDeadline(conn)
	conn.SetPongHandler(func(string) error {
		h.extendReadDeadline(conn)
		return nil
	})

	// The ping loop and the read loop both write; gorilla allows one writer.
	out := &writer{conn: conn}
	go h.pingLoop(ctx, out)

	out.sendInfo(sessionID, map[string]any{
		"type":       "connected",
		"transcript": session.Transcript,
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("[websocket] read error: %v", err)
			}
			return
		}

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.extendReadDeadline(conn)
			out.sendError("session mismatch")
			continue
		}

		// Nothing reads while a summary is generated, so pongs are not seen
		// and the deadline restarts once the message is handled.
		h.handleMessage(ctx, out, sessionID, &msg)
		h.extendReadDeadline(conn)
	}
}

func (h *Handler) handleMessage(ctx context.Context, out *writer, sessionID string, msg *inboundMessage) {
	switch msg.Type {
	case "text":
		h.handleTextMessage(ctx, out, sessionID, msg.Data)
	case "history":
		turns, err := h.chatSvc.LoadTranscript(ctx, sessionID)
		if err != nil {
			out.sendError(err.Error())
			return
		}
		out.sendInfo(sessionID, map[string]any{"type": "history", "transcript": turns})
	default:
		out.sendError("unsupported message type: " + msg.Type)
	}
}

func (h *Handler) handleTextMessage(ctx context.Context, out *writer, sessionID string, raw json.RawMessage) {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		out.sendError("invalid text payload")
		return
	}

	_, err := h.chatSvc.Submit(ctx, sessionID, text.Text, func(ev chatservice.Event) {
		switch ev.Kind {
		case chatservice.EventUser:
			out.sendInfo(sessionID, map[string]any{"type": "user", "turn": ev.Turn})
		case chatservice.EventProcessing:
			out.sendInfo(sessionID, map[string]any{"type": "processing"})
		case chatservice.EventAssistant:
			out.sendInfo(sessionID, map[string]any{"type": "assistant", "turn": ev.Turn, "isFinal": true})
		}
	})

	switch {
	case errors.Is(err, chatservice.ErrEmptyInput):
	case err != nil:
		out.sendError(err.Error())
	}
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, out *writer) {
	ticker := time.NewTicker(h.pingInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := out.ping(); err != nil {
				return
			}
		}
	}
}
