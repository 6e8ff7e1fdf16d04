package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DraftStore persists drafts between requests.  Implementations store a
// copy: mutating a returned draft has no effect until Save is called.
type DraftStore interface {
	Get(ctx context.Context, id string) (*Draft, error)
	Save(ctx context.Context, d *Draft) error
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryDraftStore keeps drafts in process memory.  Entries expire ttl
// after their last save; a zero ttl keeps them forever.
type MemoryDraftStore struct {
	mu  sync.RWMutex
	m   map[string]memEntry
	ttl time.Duration
	now func() time.Time
}

// NewMemoryDraftStore returns an empty in-memory store.
func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{m: make(map[string]memEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryDraftStore) Get(_ context.Context, id string) (*Draft, error) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrDraftNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()
		return nil, ErrDraftNotFound
	}
	var d Draft
	if err := json.Unmarshal(e.data, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (s *MemoryDraftStore) Save(_ context.Context, d *Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	e := memEntry{data: data}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.m[d.ID] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
	return nil
}

// RedisDraftStore keeps drafts as JSON strings under prefix:<id> with a
// sliding TTL.
type RedisDraftStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDraftStore returns a store backed by rdb.
func NewRedisDraftStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisDraftStore {
	if prefix == "" {
		prefix = "draft"
	}
	return &RedisDraftStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisDraftStore) key(id string) string { return s.prefix + ":" + id }

func (s *RedisDraftStore) Get(ctx context.Context, id string) (*Draft, error) {
	bs, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis get draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(bs, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (s *RedisDraftStore) Save(ctx context.Context, d *Draft) error {
	bs, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(d.ID), bs, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}
