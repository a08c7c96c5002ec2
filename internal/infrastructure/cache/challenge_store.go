package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"propdesk.backend/internal/domain/entities"
	domainerrors "propdesk.backend/internal/domain/errors"
)

const quoteKeyPrefix = "quotes:"

// MemoryChallengeStore keeps quotes in process memory until they expire.
type MemoryChallengeStore struct {
	mu     sync.Mutex
	quotes map[string]entities.CryptoQuote
	now    func() time.Time
}

// NewMemoryChallengeStore creates an in-memory quote store.
func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{
		quotes: make(map[string]entities.CryptoQuote),
		now:    time.Now,
	}
}

// Put stores a quote until its ExpiresAt.
func (s *MemoryChallengeStore) Put(_ context.Context, quote entities.CryptoQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.quotes[quote.QuoteID] = quote
	return nil
}

// Get returns a live quote or ErrQuoteExpired.
func (s *MemoryChallengeStore) Get(_ context.Context, quoteID string) (entities.CryptoQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[quoteID]
	if !ok || !s.now().Before(q.ExpiresAt) {
		delete(s.quotes, quoteID)
		return entities.CryptoQuote{}, domainerrors.ErrQuoteExpired
	}
	return q, nil
}

// Take removes and returns a live quote or ErrQuoteExpired.
func (s *MemoryChallengeStore) Take(_ context.Context, quoteID string) (entities.CryptoQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[quoteID]
	delete(s.quotes, quoteID)
	if !ok || !s.now().Before(q.ExpiresAt) {
		return entities.CryptoQuote{}, domainerrors.ErrQuoteExpired
	}
	return q, nil
}

func (s *MemoryChallengeStore) sweep() {
	now := s.now()
	for id, q := range s.quotes {
		if !now.Before(q.ExpiresAt) {
			delete(s.quotes, id)
		}
	}
}

// RedisChallengeStore keeps quotes in redis with a TTL.
type RedisChallengeStore struct {
	client *goredis.Client
	now    func() time.Time
}

// NewRedisChallengeStore creates a redis-backed quote store.
func NewRedisChallengeStore(client *goredis.Client) *RedisChallengeStore {
	return &RedisChallengeStore{client: client, now: time.Now}
}

// Put stores a quote until its ExpiresAt.
func (s *RedisChallengeStore) Put(ctx context.Context, quote entities.CryptoQuote) error {
	ttl := quote.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return domainerrors.ErrQuoteExpired
	}
	raw, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, quoteKeyPrefix+quote.QuoteID, raw, ttl).Err()
}

// Get returns a live quote or ErrQuoteExpired.
func (s *RedisChallengeStore) Get(ctx context.Context, quoteID string) (entities.CryptoQuote, error) {
	return decodeQuote(s.client.Get(ctx, quoteKeyPrefix+quoteID).Bytes())
}

// Take removes and returns a live quote with GETDEL, so concurrent
// submissions of one quote see it at most once.
func (s *RedisChallengeStore) Take(ctx context.Context, quoteID string) (entities.CryptoQuote, error) {
	return decodeQuote(s.client.GetDel(ctx, quoteKeyPrefix+quoteID).Bytes())
}

func decodeQuote(raw []byte, err error) (entities.CryptoQuote, error) {
	if err == goredis.Nil {
		return entities.CryptoQuote{}, domainerrors.ErrQuoteExpired
	}
	if err != nil {
		return entities.CryptoQuote{}, err
	}
	var q entities.CryptoQuote
	if err := json.Unmarshal(raw, &q); err != nil {
		return entities.CryptoQuote{}, err
	}
	return q, nil
}
