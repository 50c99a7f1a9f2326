package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/zhouzirui/summachat/backend/internal/analysis/sentence"
	"github.com/zhouzirui/summachat/backend/internal/model/chat"
)

// EventKind names a step of a submission.
type EventKind string

const (
	EventUser       EventKind = "user"
	EventProcessing EventKind = "processing"
	EventAssistant  EventKind = "assistant"
	EventFailed     EventKind = "failed"
)

// Event reports progress of a submission to listeners. Turn is set for user
// and assistant events, Err for failures.
type Event struct {
	Kind      EventKind
	SessionID string
	Turn      *chat.Turn
	Err       error
}

// Listener observes a submission while it runs. Listeners are called on the
// submitting goroutine; they may read the session but must not submit to it.
type Listener func(Event)

// Exchange is the pair of turns a successful submission appends.
type Exchange struct {
	User      chat.Turn `json:"user"`
	Assistant chat.Turn `json:"assistant"`
}

// Submit runs one pass of the interaction loop for a session: record the user
// turn, summarize it, recapitalize the summary and record the reply.
//
// Blank text returns ErrEmptyInput and changes nothing. A summarizer error
// returns an error matching ErrGatewayFailure; the user turn stays, no reply
// is appended. Submissions for the same session run one at a time; while one
// runs, GetSession reports the session as StateProcessing.
func (s *Service) Submit(ctx context.Context, sessionID, text string, listeners ...Listener) (Exchange, error) {
	if strings.TrimSpace(text) == "" {
		return Exchange{}, ErrEmptyInput
	}

	e, err := s.lookup(sessionID)
	if err != nil {
		return Exchange{}, err
	}

	e.submit.Lock()
	defer e.submit.Unlock()

	notify := func(ev Event) {
		ev.SessionID = sessionID
		for _, l := range listeners {
			l(ev)
		}
	}

	userTurn := chat.NewTurn(chat.RoleUser, text)
	e.mu.Lock()
	err = e.session.Append(userTurn)
	if err == nil {
		e.session.State = chat.StateProcessing
	}
	e.mu.Unlock()
	if err != nil {
		return Exchange{}, fmt.Errorf("append user turn: %w", err)
	}

	defer func() {
		e.mu.Lock()
		e.session.State = chat.StateIdle
		e.session.EnsureGreeting()
		e.mu.Unlock()
		e.touch(time.Now())
	}()
	notify(Event{Kind: EventUser, Turn: &userTurn})
	notify(Event{Kind: EventProcessing})

	started := time.Now()
	raw, err := s.summarize(ctx, text)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrGatewayFailure, err)
		log.Warnf("[chat] summarize failed session=%s elapsed=%s: %v", sessionID, time.Since(started), err)
		notify(Event{Kind: EventFailed, Err: err})
		return Exchange{}, err
	}

	assistantTurn := chat.NewTurn(chat.RoleAssistant, sentence.CapitalizeSentences(raw))
	e.mu.Lock()
	err = e.session.Append(assistantTurn)
	e.mu.Unlock()
	if err != nil {
		return Exchange{}, fmt.Errorf("append assistant turn: %w", err)
	}
	notify(Event{Kind: EventAssistant, Turn: &assistantTurn})

	log.Infof("[chat] summarized session=%s input=%d output=%d elapsed=%s",
		sessionID, len(text), len(assistantTurn.Content), time.Since(started))

	return Exchange{User: userTurn, Assistant: assistantTurn}, nil
}

func (s *Service) summarize(ctx context.Context, text string) (string, error) {
	if s.gateway == nil {
		return "", fmt.Errorf("no summarizer configured")
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	out, err := s.gateway.Summarize(ctx, text, s.cfg.Params)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("gateway returned an empty summary")
	}
	return out, nil
}
