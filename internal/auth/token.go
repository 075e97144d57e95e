package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuer = "store-api"

// TokenClass separates the short-lived access credential from the
// longer-lived single-use refresh credential.
type TokenClass string

const (
	ClassAccess  TokenClass = "access"
	ClassRefresh TokenClass = "refresh"
)

const (
	// DefaultAccessTTL and DefaultRefreshTTL are the reference lifetimes.
	// The access lifetime must stay strictly below the refresh lifetime.
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims are the verified contents of a session token.
type Claims struct {
	Class TokenClass `json:"token_class"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed session tokens. The signing secret
// is injected at construction and immutable afterwards; rotating it
// invalidates every outstanding token, which is the intended fail-closed
// behavior.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenOption configures TokenService behavior.
type TokenOption func(*TokenService) error

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) error {
		issuer = strings.TrimSpace(issuer)
		if issuer != "" {
			s.issuer = issuer
		}
		return nil
	}
}

// WithAccessTTL configures the access token lifetime.
func WithAccessTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) error {
		if ttl > 0 {
			s.accessTTL = ttl
		}
		return nil
	}
}

// WithRefreshTTL configures the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) error {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// NewTokenService constructs a TokenService signing with HS256.
func NewTokenService(secret string, opts ...TokenOption) (*TokenService, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	svc := &TokenService{
		secret:     []byte(secret),
		issuer:     defaultIssuer,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	if svc.accessTTL >= svc.refreshTTL {
		return nil, fmt.Errorf("auth: access ttl %v must be shorter than refresh ttl %v", svc.accessTTL, svc.refreshTTL)
	}
	return svc, nil
}

// TTL returns the configured lifetime for the given token class.
func (s *TokenService) TTL(class TokenClass) time.Duration {
	if class == ClassRefresh {
		return s.refreshTTL
	}
	return s.accessTTL
}

// Issue signs a token for the subject. ttlOverride replaces the class default
// when positive.
func (s *TokenService) Issue(subjectUserID string, class TokenClass, ttlOverride time.Duration) (string, time.Time, error) {
	subjectUserID = strings.TrimSpace(subjectUserID)
	if subjectUserID == "" {
		return "", time.Time{}, errors.New("auth: subject is required")
	}
	if class != ClassAccess && class != ClassRefresh {
		return "", time.Time{}, fmt.Errorf("auth: unknown token class %q", class)
	}
	ttl := s.TTL(class)
	if ttlOverride > 0 {
		ttl = ttlOverride
	}

	now := s.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		Class: class,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subjectUserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature integrity first and expiry second. Malformed,
// tampered and expired tokens all yield ErrInvalidToken without distinction;
// the call is side-effect free and safe on adversarial input.
func (s *TokenService) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	if claims.Class != ClassAccess && claims.Class != ClassRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Fingerprint derives the storage key for a token. The revocation ledger
// holds fingerprints only, never raw credentials.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
