package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/localpros/backend/internal/models"
)

const idemPendingMarker = "__pending__"

// IdempotencyService deduplicates externally-retried mutating requests. The
// first caller for a key executes the operation and its serialized result is
// stored for the TTL; every later caller gets the stored result back without
// re-running side effects. A concurrent caller that arrives while the first
// execution is still in flight is told to retry shortly rather than being
// made to wait.
//
// Records live in Redis. When Redis is unreachable the service falls back to
// an in-process cache scoped to this process, trading cross-restart dedup for
// availability.
type IdempotencyService struct {
	redis *redis.Client

	mu    sync.Mutex
	local map[string]*localIdemEntry
}

type localIdemEntry struct {
	body      []byte
	pending   bool
	expiresAt time.Time
}

func NewIdempotencyService(redisClient *redis.Client) *IdempotencyService {
	return &IdempotencyService{
		redis: redisClient,
		local: make(map[string]*localIdemEntry),
	}
}

// IdempotencyKey derives the dedup key for an operation acting on a subject.
func IdempotencyKey(operation, actorID, subjectID string) string {
	return fmt.Sprintf("idem:%s:%s:%s", operation, actorID, subjectID)
}

// IdempotencyKeyFromPayload derives the dedup key from the request body for
// operations without a natural subject id, so two semantically identical
// retries still collide.
func IdempotencyKeyFromPayload(operation, actorID string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("idem:%s:%s:%s", operation, actorID, hex.EncodeToString(sum[:]))
}

// Do runs operation under the given key. It returns the operation result, a
// flag telling the caller whether the result was replayed from a prior
// execution, and an error. A failed operation releases the key so the client
// may retry; only successful results are cached.
func (s *IdempotencyService) Do(ctx context.Context, key string, ttl time.Duration, operation func() ([]byte, error)) ([]byte, bool, error) {
	if s.redis == nil {
		return s.doLocal(key, ttl, operation)
	}

	acquired, err := s.redis.SetNX(ctx, key, idemPendingMarker, ttl).Result()
	if err != nil {
		log.Printf("[IDEMPOTENCY] Redis unavailable, using in-process cache: %v", err)
		return s.doLocal(key, ttl, operation)
	}

	if !acquired {
		stored, err := s.redis.Get(ctx, key).Bytes()
		if err == redis.Nil {
			// Claim expired between SetNX and Get; treat as in flight.
			return nil, false, models.ErrDuplicateSubmission
		}
		if err != nil {
			log.Printf("[IDEMPOTENCY] Redis unavailable, using in-process cache: %v", err)
			return s.doLocal(key, ttl, operation)
		}
		if string(stored) == idemPendingMarker {
			return nil, false, models.ErrDuplicateSubmission
		}
		return stored, true, nil
	}

	result, err := operation()
	if err != nil {
		// Release the claim so the client can retry the failed operation.
		if delErr := s.redis.Del(ctx, key).Err(); delErr != nil {
			log.Printf("[IDEMPOTENCY] Failed to release key %s: %v", key, delErr)
		}
		return nil, false, err
	}

	if setErr := s.redis.Set(ctx, key, result, ttl).Err(); setErr != nil {
		log.Printf("[IDEMPOTENCY] Failed to store result for key %s: %v", key, setErr)
	}
	return result, false, nil
}

func (s *IdempotencyService) doLocal(key string, ttl time.Duration, operation func() ([]byte, error)) ([]byte, bool, error) {
	s.mu.Lock()
	if entry, ok := s.local[key]; ok && time.Now().Before(entry.expiresAt) {
		defer s.mu.Unlock()
		if entry.pending {
			return nil, false, models.ErrDuplicateSubmission
		}
		return entry.body, true, nil
	}
	s.local[key] = &localIdemEntry{pending: true, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()

	result, err := operation()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		delete(s.local, key)
		return nil, false, err
	}
	s.local[key] = &localIdemEntry{body: result, expiresAt: time.Now().Add(ttl)}
	s.sweepLocalLocked()
	return result, false, nil
}

// sweepLocalLocked drops expired fallback entries so the map cannot grow
// unbounded during a long Redis outage. Caller holds mu.
func (s *IdempotencyService) sweepLocalLocked() {
	if len(s.local) < 1024 {
		return
	}
	now := time.Now()
	for key, entry := range s.local {
		if now.After(entry.expiresAt) {
			delete(s.local, key)
		}
	}
}
