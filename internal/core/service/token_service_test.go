package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestJWT(t *testing.T, secret string, now time.Time) *JWTService {
	t.Helper()
	svc, err := NewJWTService(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	return svc.WithClock(fixedClock(now))
}

func TestNewJWTService_RequiresSecret(t *testing.T) {
	if _, err := NewJWTService("", time.Hour); err == nil {
		t.Fatalf("expected error for empty secret")
	}
	svc, err := NewJWTService("s", 0)
	if err != nil {
		t.Fatalf("NewJWTService: %v", err)
	}
	if svc.ttl != DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %v", svc.ttl)
	}
}

func TestJWTService_IssueVerify_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(t, "secret", now)

	for _, role := range domain.Roles {
		token, err := svc.Issue("user-1", role)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		id, err := svc.Verify(token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if id.UserID != "user-1" || id.Role != role {
			t.Fatalf("unexpected identity: %+v", id)
		}
	}
}

func TestJWTService_ClaimsCarryOneHourExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(t, "secret", now)

	token, err := svc.Issue("user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if !claims.IssuedAt.Time.Equal(now) {
		t.Fatalf("unexpected iat: %v", claims.IssuedAt)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("expected exp = iat + 1h, got %v", got)
	}
}

func TestJWTService_Verify_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(t, "secret", issuedAt)

	token, err := svc.Issue("user-1", domain.RoleOperator)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.WithClock(fixedClock(issuedAt.Add(59 * time.Minute)))
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("expected token to be valid before expiry, got %v", err)
	}

	svc.WithClock(fixedClock(issuedAt.Add(time.Hour + time.Second)))
	_, err = svc.Verify(token)
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected expiry to wrap ErrInvalidToken")
	}
	if errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expiry must not be reported as a signature failure")
	}
}

func TestJWTService_Verify_TamperedSignature(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(t, "secret", now)

	token, err := svc.Issue("user-1", domain.RoleCommuter)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := svc.Verify(tampered); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestJWTService_Verify_TamperedRole(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(t, "secret", now)

	commuter, _ := svc.Issue("user-1", domain.RoleCommuter)
	admin, _ := svc.Issue("user-1", domain.RoleAdmin)

	// Commuter signature on an admin payload.
	c := strings.Split(commuter, ".")
	a := strings.Split(admin, ".")
	forged := a[0] + "." + a[1] + "." + c[2]

	if _, err := svc.Verify(forged); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestJWTService_Verify_WrongKey(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := newTestJWT(t, "one", now).Issue("user-1", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := newTestJWT(t, "two", now).Verify(token); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestJWTService_Verify_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(t, "secret", now)

	claims := Claims{
		UserID: "user-1",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Verify(hs512); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("HS512: expected ErrInvalidSignature, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.Verify(none); !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("none: expected ErrInvalidSignature, got %v", err)
	}
}

func TestJWTService_Verify_RejectsUnknownRoleAndMissingFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWT(t, "secret", now)

	sign := func(c Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	rc := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}

	cases := map[string]string{
		"unknown role": sign(Claims{UserID: "u", Role: "superuser", RegisteredClaims: rc}),
		"missing id":   sign(Claims{Role: domain.RoleAdmin, RegisteredClaims: rc}),
		"missing exp":  sign(Claims{UserID: "u", Role: domain.RoleAdmin}),
		"garbage":      "not-a-token",
		"empty":        "",
	}
	for name, token := range cases {
		if _, err := svc.Verify(token); !errors.Is(err, domain.ErrInvalidSignature) {
			t.Fatalf("%s: expected ErrInvalidSignature, got %v", name, err)
		}
	}
}
