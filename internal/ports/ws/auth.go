package ws

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSecret  = errors.New("token secret is required")
	ErrNameTooLong    = errors.New("name is too long")
	defaultTokenTTL   = 12 * time.Hour
	maxDisplayNameLen = 32
)

// Identity is the verified owner of a session token.
type Identity struct {
	UserID string
	Name   string
}

// TokenIssuer issues and verifies HS256 session tokens for the websocket transport.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// Issue mints a token for a fresh user id.
func (ti *TokenIssuer) Issue(name string) (string, Identity, error) {
	if len(name) > maxDisplayNameLen {
		return "", Identity{}, ErrNameTooLong
	}
	id := Identity{UserID: uuid.NewString(), Name: name}
	now := ti.now()
	claims := jwt.MapClaims{
		"iss":  ti.issuer,
		"sub":  id.UserID,
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(ti.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", Identity{}, err
	}
	return token, id, nil
}

// Verify checks the signature, expiry and issuer of a token.
func (ti *TokenIssuer) Verify(raw string) (Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ti.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if !claims.VerifyIssuer(ti.issuer, ti.issuer != "") {
		return Identity{}, fmt.Errorf("%w: wrong issuer", ErrInvalidToken)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	name, _ := claims["name"].(string)
	return Identity{UserID: sub, Name: name}, nil
}
