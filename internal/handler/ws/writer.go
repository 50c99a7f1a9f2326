package ws

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

type writer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *writer) write(msg outgoingMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.WriteJSON(msg); err != nil {
		log.Warnf("[websocket] write %s failed: %v", msg.Type, err)
	}
}

func (w *writer) sendInfo(sessionID string, data map[string]any) {
	w.write(outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (w *writer) sendError(message string) {
	w.write(outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	})
}

func (w *writer) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}
