package token

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var bucketRefreshTokens = []byte("refresh_tokens")

// BoltRegistry persists the registry in a bbolt file so it survives restarts.
// Rotation runs inside a single bbolt write transaction.
type BoltRegistry struct {
	db  *bbolt.DB
	now func() time.Time
}

func OpenBoltRegistry(path string) (*BoltRegistry, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRefreshTokens)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create refresh token bucket: %w", err)
	}

	return &BoltRegistry{db: db, now: time.Now}, nil
}

func (r *BoltRegistry) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *BoltRegistry) Register(_ context.Context, token string, expiresAt time.Time) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRefreshTokens).Put([]byte(Hash(token)), encodeExpiry(expiresAt))
	})
}

func (r *BoltRegistry) IsValid(_ context.Context, token string) (bool, error) {
	var valid bool
	err := r.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketRefreshTokens).Get([]byte(Hash(token)))
		valid = r.live(value)
		return nil
	})
	return valid, err
}

func (r *BoltRegistry) Rotate(_ context.Context, oldToken, newToken string, expiresAt time.Time) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRefreshTokens)
		oldKey := []byte(Hash(oldToken))
		if !r.live(b.Get(oldKey)) {
			return ErrNotRegistered
		}
		if err := b.Delete(oldKey); err != nil {
			return err
		}
		return b.Put([]byte(Hash(newToken)), encodeExpiry(expiresAt))
	})
}

func (r *BoltRegistry) Revoke(_ context.Context, token string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRefreshTokens).Delete([]byte(Hash(token)))
	})
}

func (r *BoltRegistry) live(value []byte) bool {
	if len(value) != 8 {
		return false
	}
	expiresAt := time.Unix(int64(binary.BigEndian.Uint64(value)), 0)
	return r.now().Before(expiresAt)
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}
