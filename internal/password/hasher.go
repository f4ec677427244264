// Package password turns cleartext passwords into their stored form and
// checks supplied passwords against it.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnknownHasher = errors.New("unknown password hasher")

// Hasher is a one-way password transform.
type Hasher interface {
	Hash(cleartext string) (string, error)
	Verify(hash, cleartext string) bool
}

// Argon2id parameters for Argon2.
const (
	DefaultTime    = 1
	DefaultMemory  = 64 * 1024
	DefaultThreads = 4
	DefaultKeyLen  = 32
)

const argon2Prefix = "argon2id$"

// Argon2 derives the hash with argon2id over a salt fixed by the server
// pepper, so the same cleartext always yields the same hash.
type Argon2 struct {
	salt    []byte
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
}

func NewArgon2(pepper string) *Argon2 {
	return NewArgon2WithParams(pepper, DefaultTime, DefaultMemory, DefaultThreads)
}

func NewArgon2WithParams(pepper string, time, memory uint32, threads uint8) *Argon2 {
	salt := sha256.Sum256([]byte("fotowand/password:" + pepper))
	return &Argon2{
		salt:    salt[:],
		time:    time,
		memory:  memory,
		threads: threads,
		keyLen:  DefaultKeyLen,
	}
}

func (a *Argon2) Hash(cleartext string) (string, error) {
	key := argon2.IDKey([]byte(cleartext), a.salt, a.time, a.memory, a.threads, a.keyLen)
	return argon2Prefix + base64.RawStdEncoding.EncodeToString(key), nil
}

func (a *Argon2) Verify(hash, cleartext string) bool {
	if !strings.HasPrefix(hash, argon2Prefix) {
		return false
	}
	computed, _ := a.Hash(cleartext)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// Bcrypt salts every hash. Hashes are not comparable by equality; Verify is
// the only way to check a password.
type Bcrypt struct {
	cost int
}

func NewBcrypt(cost int) *Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(cleartext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cleartext), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b *Bcrypt) Verify(hash, cleartext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(cleartext)) == nil
}

// New returns the hasher registered under name.
func New(name, pepper string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "argon2", "argon2id":
		return NewArgon2(pepper), nil
	case "bcrypt":
		return NewBcrypt(bcrypt.DefaultCost), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHasher, name)
	}
}
