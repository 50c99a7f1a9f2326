package chat

import (
	"errors"
	"strings"
	"time"
)

// Greeting is the fixed assistant message shown at the top of every transcript.
const Greeting = "👋 Hello! Welcome to the **AI Summarization Chatbot** 🤖.\n\n" +
	"I can generate **clear and concise summaries** from any text you provide. " +
	"Just enter a paragraph, and I'll create a well-structured summary for you! 🚀\n\n" +
	"Go ahead and type or paste some text to get started! ⬇️"

var (
	ErrEmptyContent = errors.New("turn content is empty")
	ErrInvalidRole  = errors.New("turn role is invalid")
)

// State is the position of a session in the interaction loop.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
)

// Flags holds per-session switches that live exactly as long as the transcript.
type Flags struct {
	GreetingShown bool `json:"greetingShown"`
}

// Session captures a transient anonymous conversation: its ordered transcript
// and the flags that go with it. A Session is not safe for concurrent use; the
// owner serializes access.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	State      State     `json:"state"`
	Flags      Flags     `json:"flags"`
	Transcript []Turn    `json:"transcript"`
}

// NewSession returns an initialized session with an empty transcript and the
// greeting flag unset.
func NewSession(id string) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  time.Now().UTC(),
		State:      StateIdle,
		Transcript: make([]Turn, 0, 16),
	}
}

// EnsureGreeting inserts the greeting at the front of the transcript the first
// time it is called, unless a turn with identical content already exists. The
// flag is set either way, so later calls are no-ops. It reports whether a turn
// was inserted.
func (s *Session) EnsureGreeting() bool {
	if s.Flags.GreetingShown {
		return false
	}
	s.Flags.GreetingShown = true

	for _, turn := range s.Transcript {
		if turn.Content == Greeting {
			return false
		}
	}

	greeting := NewTurn(RoleAssistant, Greeting)
	s.Transcript = append([]Turn{greeting}, s.Transcript...)
	return true
}

// Append adds a turn to the end of the transcript. User turns must carry
// non-blank content.
func (s *Session) Append(turn Turn) error {
	if !turn.Role.Valid() {
		return ErrInvalidRole
	}
	if turn.Role == RoleUser && strings.TrimSpace(turn.Content) == "" {
		return ErrEmptyContent
	}

	s.Transcript = append(s.Transcript, turn)
	return nil
}

// Len returns the number of turns in the transcript.
func (s *Session) Len() int {
	return len(s.Transcript)
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() Session {
	c := *s
	c.Transcript = make([]Turn, len(s.Transcript))
	copy(c.Transcript, s.Transcript)
	return c
}
