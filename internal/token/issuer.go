// Package token mints and verifies the signed access and refresh tokens and
// tracks which refresh tokens are still usable.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("token invalid")
	ErrMisconfigured = errors.New("token config invalid")
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type IssuerConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer refuses to build an issuer that could mint tokens with an empty
// or shared secret.
func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("%w: ACCESS_TOKEN_SECRET is required", ErrMisconfigured)
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("%w: REFRESH_TOKEN_SECRET is required", ErrMisconfigured)
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("%w: access and refresh secrets must differ", ErrMisconfigured)
	}
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("%w: access token TTL must be positive", ErrMisconfigured)
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%w: refresh token TTL must be positive", ErrMisconfigured)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Issuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           now,
	}, nil
}

func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *Issuer) IssueAccessToken(userID int64) (string, error) {
	signed, _, err := i.sign(userID, typeAccess, i.accessSecret, i.accessTTL)
	return signed, err
}

// IssueRefreshToken also returns the expiry so registries can drop the entry
// once the token could no longer verify anyway.
func (i *Issuer) IssueRefreshToken(userID int64) (string, time.Time, error) {
	return i.sign(userID, typeRefresh, i.refreshSecret, i.refreshTTL)
}

func (i *Issuer) VerifyAccessToken(tokenStr string) (int64, error) {
	return i.verify(tokenStr, typeAccess, i.accessSecret)
}

func (i *Issuer) VerifyRefreshToken(tokenStr string) (int64, error) {
	return i.verify(tokenStr, typeRefresh, i.refreshSecret)
}

func (i *Issuer) sign(userID int64, typ string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (i *Issuer) verify(tokenStr, typ string, secret []byte) (int64, error) {
	if tokenStr == "" {
		return 0, ErrTokenInvalid
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	},
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	if claims.Type != typ {
		return 0, ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrTokenInvalid
	}
	return userID, nil
}
