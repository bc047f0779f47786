package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-ticket-booking/internal/booking"
)

// ErrSelectionNotFound is returned when a user has no open selection or it
// has expired.
var ErrSelectionNotFound = errors.New("no open selection")

// SelectionStore keeps one in-progress selection per user.
type SelectionStore interface {
	Load(ctx context.Context, userID uint64) (*booking.Selection, error)
	Save(ctx context.Context, userID uint64, s *booking.Selection) error
	Delete(ctx context.Context, userID uint64) error
}

// NewSelectionStore returns a Redis-backed store, or an in-process one when
// rdb is nil.
func NewSelectionStore(rdb *redis.Client, ttl time.Duration) SelectionStore {
	if rdb == nil {
		return NewMemorySelectionStore(ttl)
	}
	return &RedisSelectionStore{rdb: rdb, ttl: ttl, prefix: "selection"}
}

// RedisSelectionStore stores selections as JSON under selection:{userID}.
// Every save refreshes the TTL.
type RedisSelectionStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func (s *RedisSelectionStore) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", s.prefix, userID)
}

func (s *RedisSelectionStore) Load(ctx context.Context, userID uint64) (*booking.Selection, error) {
	bs, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSelectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	var sel booking.Selection
	if err := json.Unmarshal(bs, &sel); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return &sel, nil
}

func (s *RedisSelectionStore) Save(ctx context.Context, userID uint64, sel *booking.Selection) error {
	bs, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(userID), bs, s.ttl).Err(); err != nil {
		return fmt.Errorf("save selection: %w", err)
	}
	return nil
}

func (s *RedisSelectionStore) Delete(ctx context.Context, userID uint64) error {
	return s.rdb.Del(ctx, s.key(userID)).Err()
}

// MemorySelectionStore keeps selections in process memory. Entries expire
// lazily on Load.
type MemorySelectionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[uint64]memoryEntry
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// NewMemorySelectionStore returns an empty store. ttl <= 0 disables expiry.
func NewMemorySelectionStore(ttl time.Duration) *MemorySelectionStore {
	return &MemorySelectionStore{ttl: ttl, now: time.Now, items: map[uint64]memoryEntry{}}
}

func (m *MemorySelectionStore) Load(_ context.Context, userID uint64) (*booking.Selection, error) {
	m.mu.Lock()
	e, ok := m.items[userID]
	if ok && m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.items, userID)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSelectionNotFound
	}
	// Stored encoded so callers never share slices with the store.
	var sel booking.Selection
	if err := json.Unmarshal(e.data, &sel); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return &sel, nil
}

func (m *MemorySelectionStore) Save(_ context.Context, userID uint64, sel *booking.Selection) error {
	bs, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	m.mu.Lock()
	m.items[userID] = memoryEntry{data: bs, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemorySelectionStore) Delete(_ context.Context, userID uint64) error {
	m.mu.Lock()
	delete(m.items, userID)
	m.mu.Unlock()
	return nil
}
