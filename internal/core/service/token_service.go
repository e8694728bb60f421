package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/transitops/bus-ticketing/internal/core/domain"
)

// DefaultTokenTTL is the fixed lifetime of an issued token.
const DefaultTokenTTL = time.Hour

// Claims is the JWT payload carried by every issued token.
type Claims struct {
	UserID string      `json:"id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService implements ports.TokenService with HS256-signed JWTs.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService builds a token service. The secret comes from process
// configuration and must not be empty.
func NewJWTService(secret string, ttl time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source. Intended for tests.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Issue signs {id, role, iat, exp} with exp fixed at iat + ttl.
func (s *JWTService) Issue(userID string, role domain.Role) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature first and expiry second. A token issued for a
// user that has since been deleted still verifies until it expires; there is
// no revocation list.
func (s *JWTService) Verify(token string) (domain.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// jwt/v5 only reports expiry after the signature has verified.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, domain.ErrTokenExpired
		}
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return domain.Identity{}, domain.ErrInvalidSignature
	}

	role, err := domain.ParseRole(string(claims.Role))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	return domain.Identity{UserID: claims.UserID, Role: role}, nil
}
