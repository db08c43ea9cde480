package generation

import (
	"context"
	"sync"
	"sync/atomic"
)

// Token identifies one in-flight request. Tokens are strictly increasing across all trackers.
type Token uint64

var tokenSeq atomic.Uint64

func nextToken() Token {
	return Token(tokenSeq.Add(1))
}

// Tracker stamps the requests of one session so a consumer can drop results that
// were overtaken by a newer request. Starting a request does not cancel older ones.
type Tracker struct {
	mu       sync.Mutex
	latest   Token
	inFlight map[Token]context.CancelFunc
}

// NewTracker creates an empty Tracker
func NewTracker() *Tracker {
	return &Tracker{inFlight: make(map[Token]context.CancelFunc)}
}

// Begin issues a new latest token. The returned context is cancelled by Cancel or Finish.
func (t *Tracker) Begin(ctx context.Context) (Token, context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	token := nextToken()
	t.latest = token
	t.inFlight[token] = cancel
	return token, ctx
}

// IsLatest reports whether token is the most recent one issued by this tracker.
func (t *Tracker) IsLatest(token Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token == t.latest
}

// Latest returns the most recent token, or zero if none was issued.
func (t *Tracker) Latest() Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Finish releases the request's context. It reports whether the token was still the latest.
func (t *Tracker) Finish(token Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cancel, ok := t.inFlight[token]; ok {
		cancel()
		delete(t.inFlight, token)
	}
	return token == t.latest
}

// Cancel aborts an in-flight request. It returns false if the token already finished.
func (t *Tracker) Cancel(token Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cancel, ok := t.inFlight[token]
	if !ok {
		return false
	}
	cancel()
	delete(t.inFlight, token)
	return true
}

// InFlight returns the number of unfinished requests.
func (t *Tracker) InFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inFlight)
}

// DefaultMaxSessions bounds the number of idle trackers Sessions keeps.
const DefaultMaxSessions = 1024

// Sessions keeps one Tracker per session key.
type Sessions struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
	max      int
}

// NewSessions creates a session registry holding at most max trackers (DefaultMaxSessions if max <= 0).
func NewSessions(max int) *Sessions {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &Sessions{trackers: make(map[string]*Tracker), max: max}
}

// Begin starts a request in the session named key, creating its tracker if needed.
// The lookup and the Begin happen under one lock, so a full registry cannot drop
// the tracker between them. Idle trackers are dropped first when the registry is full.
func (s *Sessions) Begin(ctx context.Context, key string) (*Tracker, Token, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trackers[key]
	if !ok {
		if len(s.trackers) >= s.max {
			for k, idle := range s.trackers {
				if idle.InFlight() == 0 {
					delete(s.trackers, k)
				}
			}
		}
		t = NewTracker()
		s.trackers[key] = t
	}
	token, ctx := t.Begin(ctx)
	return t, token, ctx
}

// Len returns the number of tracked sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trackers)
}
