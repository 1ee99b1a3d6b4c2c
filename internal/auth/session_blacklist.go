package auth

import (
	"sync"
	"time"
)

// JwtBlacklistStore keep tokens that were logged out until they expire
type JwtBlacklistStore interface {
	// IsBlacklisted checks if the given token is blacklisted.
	IsBlacklisted(token string) (bool, error)
	// AddToBlacklist adds the given token to the blacklist until exp.
	AddToBlacklist(token string, exp time.Time) error
}

// InMemoryBlacklistStore is blacklist kept in process memory
type InMemoryBlacklistStore struct {
	blacklist map[string]time.Time
	mu        sync.RWMutex
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewInMemoryBlacklistStore create store and start its cleanup goroutine
func NewInMemoryBlacklistStore() *InMemoryBlacklistStore {
	return NewInMemoryBlacklistStoreWithInterval(5 * time.Minute)
}

// NewInMemoryBlacklistStoreWithInterval create store that remove expired tokens every interval
func NewInMemoryBlacklistStoreWithInterval(interval time.Duration) *InMemoryBlacklistStore {
	store := &InMemoryBlacklistStore{
		blacklist: make(map[string]time.Time),
		stop:      make(chan struct{}),
	}
	go store.periodicallyCleanUp(interval)
	return store
}

func (s *InMemoryBlacklistStore) periodicallyCleanUp(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanUpExpired()
		case <-s.stop:
			return
		}
	}
}

// Close stop cleanup goroutine
func (s *InMemoryBlacklistStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// CleanUpExpired remove every token whose expiry has passed
func (s *InMemoryBlacklistStore) CleanUpExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, exp := range s.blacklist {
		if exp.Before(now) {
			delete(s.blacklist, token)
		}
	}
}

// IsBlacklisted implements JwtBlacklistStore
func (s *InMemoryBlacklistStore) IsBlacklisted(token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.blacklist[token]
	return exists, nil
}

// AddToBlacklist implements JwtBlacklistStore
func (s *InMemoryBlacklistStore) AddToBlacklist(token string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blacklist[token] = exp
	return nil
}
