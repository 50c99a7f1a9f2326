package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	chatService "github.com/zhouzirui/summachat/backend/internal/service/chat"
	"github.com/zhouzirui/summachat/backend/pkg/utils"
)

// ProcessingNotice is shown to the user while the summary is generated.
const ProcessingNotice = "Summarizing your text... ⏳"

var ErrStreamingUnsupported = utils.ErrStreamingUnsupported

// Handler reports a submission's progress via Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	Role      string `json:"role,omitempty"`
	TurnID    string `json:"turnId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest submits userMessage to the session and streams every
// step of the loop. Errors that happen before the stream is opened are
// returned so the caller can answer with a plain status code; later errors are
// delivered in-band as "error" events.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	if _, err := h.chatSvc.GetSession(ctx, sessionID); err != nil {
		return err
	}

	sse, err := utils.NewSSEWriter(w)
	if err != nil {
		return err
	}

	h.send(sse, StreamResponse{Event: "start", SessionID: sessionID})

	_, err = h.chatSvc.Submit(ctx, sessionID, userMessage, func(ev chatService.Event) {
		switch ev.Kind {
		case chatService.EventUser, chatService.EventAssistant:
			event := "user"
			if ev.Kind == chatService.EventAssistant {
				event = "message"
			}
			h.send(sse, StreamResponse{
				Event:     event,
				SessionID: ev.SessionID,
				Role:      string(ev.Turn.Role),
				TurnID:    ev.Turn.ID,
				Content:   ev.Turn.Content,
			})
		case chatService.EventProcessing:
			h.send(sse, StreamResponse{
				Event:     "status",
				SessionID: ev.SessionID,
				Content:   ProcessingNotice,
			})
		}
	})

	switch {
	case errors.Is(err, chatService.ErrEmptyInput):
		h.send(sse, StreamResponse{Event: "ignored", SessionID: sessionID})
	case err != nil:
		log.Warnf("[stream] submission failed session=%s: %v", sessionID, err)
		h.sendError(sse, sessionID, fmt.Sprintf("summary generation failed: %v", err))
	}

	h.send(sse, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Debugf("[stream] completed response for session=%s", sessionID)
	return nil
}

func (h *Handler) send(sse *utils.SSEWriter, response StreamResponse) {
	if err := sse.Send(response.Event, response); err != nil {
		log.Warnf("[stream] send %s event session=%s: %v", response.Event, response.SessionID, err)
	}
}

func (h *Handler) sendError(sse *utils.SSEWriter, sessionID, errorMsg string) {
	h.send(sse, StreamResponse{
		Event:     "error",
		SessionID: sessionID,
		Error:     errorMsg,
	})
}
