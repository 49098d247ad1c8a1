package handoff

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kirillkom/termlens/internal/core/domain"
)

const DefaultTTL = 15 * time.Minute

type entry struct {
	report    *domain.AnalysisReport
	expiresAt time.Time
}

// MemoryStore is a process-local read-once store. Entries are dropped on first
// read or once their TTL passes.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

func (s *MemoryStore) Put(_ context.Context, token string, report *domain.AnalysisReport) error {
	if token == "" || report == nil {
		return domain.WrapError(domain.ErrInvalidInput, "put handoff", errors.New("token and report are required"))
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(now)
	clone := *report
	s.entries[token] = entry{report: &clone, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Take(_ context.Context, token string) (*domain.AnalysisReport, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if ok {
		delete(s.entries, token)
	}
	if !ok || !now.Before(e.expiresAt) {
		return nil, domain.WrapError(domain.ErrHandoffNotFound, "take handoff", fmt.Errorf("token %q", token))
	}
	return e.report, nil
}

// Len reports live entries, expired ones included until the next purge.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) purgeLocked(now time.Time) {
	for token, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, token)
		}
	}
}
