package token

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"sync"
	"time"
)

var ErrNotRegistered = errors.New("refresh token not registered")

// Registry is the set of refresh tokens that may still be exchanged. Rotate
// must swap old for new atomically: of two concurrent rotations of the same
// token at most one succeeds, the other gets ErrNotRegistered.
type Registry interface {
	Register(ctx context.Context, token string, expiresAt time.Time) error
	IsValid(ctx context.Context, token string) (bool, error)
	Rotate(ctx context.Context, oldToken, newToken string, expiresAt time.Time) error
	Revoke(ctx context.Context, token string) error
}

// Hash is the key registries store instead of the raw token.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// MemoryRegistry keeps the set in process memory. It is emptied by a restart.
type MemoryRegistry struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (r *MemoryRegistry) Register(_ context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[Hash(token)] = expiresAt
	return nil
}

func (r *MemoryRegistry) IsValid(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.liveLocked(Hash(token)), nil
}

func (r *MemoryRegistry) Rotate(_ context.Context, oldToken, newToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oldHash := Hash(oldToken)
	if !r.liveLocked(oldHash) {
		return ErrNotRegistered
	}
	delete(r.tokens, oldHash)
	r.tokens[Hash(newToken)] = expiresAt
	return nil
}

func (r *MemoryRegistry) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, Hash(token))
	return nil
}

// Len reports how many entries are held, expired ones included.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

func (r *MemoryRegistry) liveLocked(hash string) bool {
	expiresAt, ok := r.tokens[hash]
	if !ok {
		return false
	}
	if !r.now().Before(expiresAt) {
		delete(r.tokens, hash)
		return false
	}
	return true
}
