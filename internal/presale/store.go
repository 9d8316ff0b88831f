package presale

import (
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

// Store keeps purchase sessions in memory, keyed by wallet address. A
// background janitor evicts sessions that have been idle past the TTL, so an
// abandoned browser tab does not pin state forever. Support-required
// sessions are exempt: that state must survive until the buyer explicitly
// resets it.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions:    make(map[string]*Session),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
	go s.cleanupExpired()
	return s
}

// Get returns the session for a wallet, or nil.
func (s *Store) Get(wallet string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[wallet]
}

// GetOrCreate returns the wallet's session, creating one on first contact.
func (s *Store) GetOrCreate(wallet string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, exists := s.sessions[wallet]; exists {
		return sess
	}
	sess := newSession(wallet)
	s.sessions[wallet] = sess
	return sess
}

// Delete removes a session outright.
func (s *Store) Delete(wallet string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, wallet)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the janitor.
func (s *Store) Close() error {
	close(s.stopCleanup)
	<-s.cleanupDone
	return nil
}

func (s *Store) cleanupExpired() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	defer close(s.cleanupDone)

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *Store) removeExpired() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for wallet, sess := range s.sessions {
		if sess.expirable(cutoff) {
			delete(s.sessions, wallet)
		}
	}
}
