package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var _ Store = (*MemoryStore)(nil)

type entry struct {
	count     int64
	windowEnd time.Time
}

// MemoryStore contador por clave en memoria del proceso.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemoryStore crea el store. Las entradas vencidas se purgan con Purge (ver RunPurge).
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry), now: time.Now}
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.windowEnd) {
		e = &entry{windowEnd: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, e.windowEnd.Sub(now), nil
}

// Purge elimina las ventanas vencidas y retorna cuántas borró.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	purged := 0
	for k, e := range s.entries {
		if !now.Before(e.windowEnd) {
			delete(s.entries, k)
			purged++
		}
	}
	return purged
}

// RunPurge purga periódicamente hasta que ctx se cancele.
func (s *MemoryStore) RunPurge(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Purge(); n > 0 {
				log.Debug().Int("purged", n).Msg("rate limiter: entradas vencidas purgadas")
			}
		}
	}
}
