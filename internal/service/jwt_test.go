package service

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testSecret = "this-is-a-test-secret-with-32-bytes!"
	testTTL    = time.Hour
)

var testEpoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTokenService(t *testing.T) (TokenService, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(testEpoch)

	svc, err := NewTokenService(testSecret, testTTL, clk)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return svc, clk
}

// tamper flips one character in the middle of the signature segment.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	i := len(sig) / 2
	if sig[i] == 'A' {
		sig[i] = 'B'
	} else {
		sig[i] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNewTokenService(t *testing.T) {
	svc, _ := newTestTokenService(t)
	if got := svc.TTL(); got != testTTL {
		t.Errorf("TTL() = %v, want %v", got, testTTL)
	}
}

func TestNewTokenService_InvalidArgs(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		ttl    time.Duration
	}{
		{"empty secret", "", testTTL},
		{"short secret", "short", testTTL},
		{"zero ttl", testSecret, 0},
		{"negative ttl", testSecret, -time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenService(tt.secret, tt.ttl, nil); err == nil {
				t.Error("NewTokenService() should fail")
			}
		})
	}
}

func TestNewTokenService_NilClockUsesWallClock(t *testing.T) {
	svc, err := NewTokenService(testSecret, testTTL, nil)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := svc.Verify(token); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

// =============================================================================
// Issue / Verify Tests
// =============================================================================

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc, _ := newTestTokenService(t)

	for _, id := range []string{"user-1", "8b0f6c1e-3d5c-4f52-9f0e-1b2a3c4d5e6f"} {
		token, err := svc.Issue(id)
		if err != nil {
			t.Fatalf("Issue(%s) error = %v", id, err)
		}

		got, err := svc.Verify(token)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if got != id {
			t.Errorf("Verify() = %s, want %s", got, id)
		}
	}
}

func TestIssue_EmptyUserID(t *testing.T) {
	svc, _ := newTestTokenService(t)
	if _, err := svc.Issue(""); err == nil {
		t.Error("Issue() should fail for empty user id")
	}
}

func TestIssue_ClaimsStructure(t *testing.T) {
	svc, _ := newTestTokenService(t)

	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims := &Claims{}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		t.Fatalf("ParseUnverified() error = %v", err)
	}

	if parsed.Method.Alg() != "HS256" {
		t.Errorf("alg = %s, want HS256", parsed.Method.Alg())
	}
	if claims.UserID != "user-1" {
		t.Errorf("userId = %s, want user-1", claims.UserID)
	}
	if !claims.IssuedAt.Time.Equal(testEpoch) {
		t.Errorf("iat = %v, want %v", claims.IssuedAt.Time, testEpoch)
	}
	if !claims.ExpiresAt.Time.Equal(testEpoch.Add(testTTL)) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt.Time, testEpoch.Add(testTTL))
	}
}

func TestVerify_Expired(t *testing.T) {
	svc, clk := newTestTokenService(t)

	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	clk.Add(testTTL - time.Second)
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("Verify() just before expiry error = %v", err)
	}

	clk.Add(2 * time.Second)
	_, err = svc.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() error = %v, want %v", err, ErrTokenExpired)
	}
}

func TestVerify_Tampered(t *testing.T) {
	svc, _ := newTestTokenService(t)

	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = svc.Verify(tamper(token))
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() error = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	svc, clk := newTestTokenService(t)
	other, err := NewTokenService("another-secret-that-is-32-bytes-long", testTTL, clk)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, _ := other.Issue("user-1")
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() error = %v, want %v", err, ErrTokenInvalid)
	}
}

func TestVerify_Malformed(t *testing.T) {
	svc, _ := newTestTokenService(t)

	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c", "....."} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Verify(%q) error = %v, want %v", token, err, ErrTokenInvalid)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	svc, _ := newTestTokenService(t)

	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(testEpoch.Add(time.Hour)),
		},
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString(none) error = %v", err)
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString(HS512) error = %v", err)
	}

	for name, token := range map[string]string{"none": none, "HS512": hs512} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Verify(%s) error = %v, want %v", name, err, ErrTokenInvalid)
		}
	}
}

func TestVerify_MissingSubjectOrExpiry(t *testing.T) {
	svc, _ := newTestTokenService(t)

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(testEpoch.Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).SignedString([]byte(testSecret))

	for name, token := range map[string]string{"no subject": noSubject, "no expiry": noExpiry} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Verify(%s) error = %v, want %v", name, err, ErrTokenInvalid)
		}
	}
}

func TestConcurrentIssueVerify(t *testing.T) {
	svc, _ := newTestTokenService(t)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := svc.Issue("user-1")
			if err != nil {
				errs <- err
				return
			}
			if _, err := svc.Verify(token); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent issue/verify error = %v", err)
	}
}
