package helpers

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = time.Hour

// BearerPrefix precedes the token in Authorization headers and login responses.
const BearerPrefix = "Bearer "

// JWTManager issues and validates HS256 session tokens whose subject is the
// user's email. The key is fixed at construction and never rotated.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager copies secret so later mutation of the caller's slice has no effect.
func NewJWTManager(secret []byte) *JWTManager {
	return NewJWTManagerWithClock(secret, time.Now)
}

// NewJWTManagerWithClock is NewJWTManager with an injectable clock.
func NewJWTManagerWithClock(secret []byte, now func() time.Time) *JWTManager {
	key := make([]byte, len(secret))
	copy(key, secret)
	if now == nil {
		now = time.Now
	}
	return &JWTManager{secret: key, ttl: TokenTTL, now: now}
}

type Claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for subject valid from now until now+TokenTTL.
func (m *JWTManager) Issue(subject string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	// NumericDate drops sub-second precision; report the expiry the token carries.
	return s, claims.ExpiresAt.Time, err
}

// Validate checks structure, signature and the presence of sub, iat and exp.
// Expiry is not enforced here; see IsExpired and Authorize.
func (m *JWTManager) Validate(tokenStr string) (*Claims, error) {
	const op = "token.Validate"

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, domerrors.OpError{Op: op, Kind: domerrors.ErrInvalidToken, Msg: err.Error()}
	}
	if !tkn.Valid {
		return nil, domerrors.OpError{Op: op, Kind: domerrors.ErrInvalidToken}
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, domerrors.OpError{Op: op, Kind: domerrors.ErrInvalidToken, Msg: "missing required claims"}
	}
	return claims, nil
}

// ExtractSubject returns the subject of a correctly signed token, expired or not.
func (m *JWTManager) ExtractSubject(tokenStr string) (string, error) {
	claims, err := m.Validate(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsExpired reports whether now is at or after the token's expiry.
func (m *JWTManager) IsExpired(tokenStr string) (bool, error) {
	claims, err := m.Validate(tokenStr)
	if err != nil {
		return false, err
	}
	return m.expired(claims), nil
}

// Authorize validates the token and rejects it once expired. Callers that
// mutate state go through here.
func (m *JWTManager) Authorize(tokenStr string) (string, error) {
	claims, err := m.Validate(tokenStr)
	if err != nil {
		return "", err
	}
	if m.expired(claims) {
		return "", domerrors.OpError{Op: "token.Authorize", Kind: domerrors.ErrUnauthorized, Msg: "token expired"}
	}
	return claims.Subject, nil
}

func (m *JWTManager) expired(claims *Claims) bool {
	return !m.now().Before(claims.ExpiresAt.Time)
}

// StripBearer removes the 7-character "Bearer " prefix from an
// Authorization header value.
func StripBearer(header string) (string, error) {
	if len(header) <= len(BearerPrefix) || !strings.EqualFold(header[:len(BearerPrefix)], BearerPrefix) {
		return "", domerrors.OpError{Op: "token.StripBearer", Kind: domerrors.ErrInvalidToken, Msg: "missing bearer prefix"}
	}
	return header[len(BearerPrefix):], nil
}
