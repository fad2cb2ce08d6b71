package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domerrors "github.com/oksasatya/go-user-identity/internal/domain/errors"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager() (*JWTManager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return NewJWTManagerWithClock([]byte("0123456789abcdef0123456789abcdef"), clock.Now), clock
}

func TestIssueExtractSubject(t *testing.T) {
	m, _ := newTestManager()
	for _, subject := range []string{"a@x.com", "ümlaut@x.de", "x"} {
		tok, _, err := m.Issue(subject)
		if err != nil {
			t.Fatalf("Issue(%q): %v", subject, err)
		}
		got, err := m.ExtractSubject(tok)
		if err != nil {
			t.Fatalf("ExtractSubject: %v", err)
		}
		if got != subject {
			t.Fatalf("ExtractSubject = %q, want %q", got, subject)
		}
	}
}

func TestIssueSetsOneHourWindow(t *testing.T) {
	m, clock := newTestManager()
	tok, exp, err := m.Issue("a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.Equal(clock.t.Add(time.Hour)) {
		t.Fatalf("exp = %v, want %v", exp, clock.t.Add(time.Hour))
	}
	claims, err := m.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !claims.IssuedAt.Time.Equal(clock.t) || !claims.ExpiresAt.Time.Equal(exp) {
		t.Fatalf("iat=%v exp=%v", claims.IssuedAt.Time, claims.ExpiresAt.Time)
	}
}

func TestIssueReportsEmbeddedExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 900_000_000, time.UTC)}
	m := NewJWTManagerWithClock([]byte("0123456789abcdef0123456789abcdef"), clock.Now)

	tok, exp, err := m.Issue("a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	want := time.Date(2026, 1, 2, 4, 4, 5, 0, time.UTC)
	if !exp.Equal(want) {
		t.Fatalf("exp = %v, want %v", exp, want)
	}
	claims, err := m.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !claims.ExpiresAt.Time.Equal(exp) {
		t.Fatalf("reported exp %v differs from token exp %v", exp, claims.ExpiresAt.Time)
	}

	clock.t = exp
	expired, err := m.IsExpired(tok)
	if err != nil || !expired {
		t.Fatalf("IsExpired at reported expiry = (%v, %v), want (true, nil)", expired, err)
	}
}

func TestIsExpired(t *testing.T) {
	m, clock := newTestManager()
	start := clock.t
	tok, _, _ := m.Issue("a@x.com")

	tests := []struct {
		name    string
		advance time.Duration
		want    bool
	}{
		{"fresh", 0, false},
		{"just before", time.Hour - time.Second, false},
		{"exactly at expiry", time.Hour, true},
		{"after", time.Hour + time.Minute, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.t = start.Add(tt.advance)
			got, err := m.IsExpired(tok)
			if err != nil {
				t.Fatalf("IsExpired: %v", err)
			}
			if got != tt.want {
				t.Fatalf("IsExpired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractSubjectIgnoresExpiryButAuthorizeDoesNot(t *testing.T) {
	m, clock := newTestManager()
	tok, _, _ := m.Issue("a@x.com")
	clock.t = clock.t.Add(2 * time.Hour)

	if got, err := m.ExtractSubject(tok); err != nil || got != "a@x.com" {
		t.Fatalf("ExtractSubject on expired token = (%q, %v)", got, err)
	}
	_, err := m.Authorize(tok)
	if !domerrors.IsUnauthorized(err) {
		t.Fatalf("Authorize on expired token: expected unauthorized, got %v", err)
	}
	if domerrors.IsInvalidToken(err) {
		t.Fatalf("expiry must not be reported as an invalid token")
	}
}

func TestValidateRejects(t *testing.T) {
	m, _ := newTestManager()
	good, _, _ := m.Issue("a@x.com")
	other := NewJWTManager([]byte("another-secret-another-secret-000"))
	foreign, _, _ := other.Issue("a@x.com")

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("0123456789abcdef0123456789abcdef"))

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:  "a@x.com",
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}}).SignedString([]byte("0123456789abcdef0123456789abcdef"))

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "a@x.com",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not.a.jwt",
		"wrong key":      foreign,
		"tampered":       tampered,
		"missing sub":    noSub,
		"missing exp":    noExp,
		"alg none":       unsigned,
		"bearer not cut": BearerPrefix + good,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Validate(tok); !domerrors.IsInvalidToken(err) {
				t.Fatalf("Validate: expected invalid token, got %v", err)
			}
			if _, err := m.ExtractSubject(tok); !domerrors.IsInvalidToken(err) {
				t.Fatalf("ExtractSubject: expected invalid token, got %v", err)
			}
		})
	}
}

func TestSecretIsCopied(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	m := NewJWTManager(secret)
	tok, _, _ := m.Issue("a@x.com")
	secret[0] = 'X'
	if _, err := m.Validate(tok); err != nil {
		t.Fatalf("mutating the caller's secret must not affect the manager: %v", err)
	}
}

func TestStripBearer(t *testing.T) {
	got, err := StripBearer("Bearer abc.def.ghi")
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("StripBearer = (%q, %v)", got, err)
	}
	for _, bad := range []string{"", "Bearer ", "Token abc", "abc.def.ghi"} {
		if _, err := StripBearer(bad); !domerrors.IsInvalidToken(err) {
			t.Fatalf("StripBearer(%q): expected invalid token, got %v", bad, err)
		}
	}
}
