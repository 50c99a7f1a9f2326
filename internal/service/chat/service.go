package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/zhouzirui/summachat/backend/internal/model/chat"
	"github.com/zhouzirui/summachat/backend/internal/model/summary"
	"github.com/zhouzirui/summachat/backend/internal/service/summarizer"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyInput      = errors.New("input is empty")
	ErrGatewayFailure  = errors.New("summarization failed")
)

// Config 控制会话服务的行为。
type Config struct {
	Params  summary.Params
	Timeout time.Duration
	// SessionTTL 会话空闲多久后被回收，0 表示永不回收
	SessionTTL time.Duration
}

// Service encapsulates conversation state management and drives the
// submit -> summarize -> reply loop for every session.
type Service struct {
	gateway summarizer.Summarizer
	cfg     Config

	mu       sync.RWMutex
	sessions map[string]*entry
}

// entry holds one session. submit admits one submission at a time and is held
// across the summarizer call; mu guards the session itself and is only held
// for short reads and writes, so readers can observe a submission in progress.
// The service-wide lock only guards the map, so a slow summary never blocks
// other sessions.
type entry struct {
	submit   sync.Mutex
	mu       sync.Mutex
	session  *chat.Session
	lastSeen atomic.Int64
}

func newEntry(session *chat.Session, now time.Time) *entry {
	e := &entry{session: session}
	e.touch(now)
	return e
}

func (e *entry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

func (e *entry) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, e.lastSeen.Load()))
}

// NewService bootstraps the in-memory chat service.
func NewService(gateway summarizer.Summarizer, cfg Config) *Service {
	if cfg.Params == (summary.Params{}) {
		cfg.Params = summary.DefaultParams()
	}
	return &Service{
		gateway:  gateway,
		cfg:      cfg,
		sessions: make(map[string]*entry),
	}
}

// CreateSession provisions an anonymous session with the greeting in place.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.NewSession(uuid.NewString())
	session.EnsureGreeting()
	snapshot := session.Clone()

	s.mu.Lock()
	s.sessions[session.ID] = newEntry(session, time.Now())
	s.mu.Unlock()

	log.Infof("[chat] session created id=%s", session.ID)
	return snapshot, nil
}

// GetSession retrieves a session by identifier. Reading a session is a render,
// so the greeting is guaranteed first. It does not wait for an in-flight
// submission; the returned copy then reports StateProcessing.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.EnsureGreeting()
	return e.session.Clone(), nil
}

// LoadTranscript returns the turns of the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Transcript, nil
}

// EndSession discards the transcript and flags of a session.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)

	log.Infof("[chat] session ended id=%s", sessionID)
	return nil
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Touching under the read lock orders it before any sweep, which holds
	// the write lock, so a session found here is not evicted as idle.
	e.touch(time.Now())
	return e, nil
}

// Sweep ends every session idle for longer than the configured TTL as of now
// and returns how many were removed. Sessions with a submission in flight are
// kept. It is a no-op when SessionTTL is zero.
func (s *Service) Sweep(now time.Time) int {
	ttl := s.cfg.SessionTTL
	if ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if e.idleSince(now) <= ttl {
			continue
		}
		if !e.submit.TryLock() {
			continue
		}
		delete(s.sessions, id)
		e.submit.Unlock()
		removed++
	}

	if removed > 0 {
		log.Infof("[chat] evicted idle sessions count=%d live=%d", removed, len(s.sessions))
	}
	return removed
}

// RunJanitor sweeps idle sessions until ctx is done. Sweeps run every half
// TTL and at most a minute apart. It returns immediately when SessionTTL is
// zero.
func (s *Service) RunJanitor(ctx context.Context) {
	ttl := s.cfg.SessionTTL
	if ttl <= 0 {
		return
	}

	interval := min(ttl/2, time.Minute)
	if interval <= 0 {
		interval = ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
