package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const recoveryTTL = time.Hour

// Service implements the session lifecycle: credential verification, token
// pair issuance, single-use refresh rotation and explicit invalidation.
type Service struct {
	store  Store
	tokens *TokenService
	now    func() time.Time
}

// NewService constructs the session service.
func NewService(store Store, tokens *TokenService) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	return &Service{store: store, tokens: tokens, now: time.Now}, nil
}

// Tokens exposes the underlying token service for the gate and handlers.
func (s *Service) Tokens() *TokenService { return s.tokens }

// SignUp registers a new customer account and opens a session for it.
func (s *Service) SignUp(ctx context.Context, username, password string) (*User, TokenPair, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, TokenPair{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	users := s.store.Users()
	if _, err := users.FindByUsername(ctx, username); err == nil {
		return nil, TokenPair{}, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, TokenPair{}, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("hash password: %w", err)
	}
	user := &User{
		Username:     username,
		PasswordHash: hash,
		Role:         RoleCustomer,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// SignIn verifies credentials and opens a fresh session.
func (s *Service) SignIn(ctx context.Context, username, password string) (*User, TokenPair, error) {
	username = normalizeUsername(username)
	if username == "" || password == "" {
		return nil, TokenPair{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, TokenPair{}, ErrBadCredentials
	}
	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new pair. Each refresh token is
// single-use: the consumed token enters the revocation ledger atomically with
// the check, so of two concurrent exchanges of the same token exactly one
// succeeds.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return TokenPair{}, ErrInvalidToken
	}

	ledger := s.store.Ledger()
	fingerprint := Fingerprint(refreshToken)

	revoked, err := ledger.IsRevoked(ctx, fingerprint)
	if err != nil {
		return TokenPair{}, err
	}
	if revoked {
		return TokenPair{}, ErrTokenRevoked
	}

	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}
	if claims.Class != ClassRefresh {
		return TokenPair{}, ErrInvalidToken
	}

	// Single-use enforcement: the store insert is the critical section. A
	// concurrent exchange of the same token loses the insert and is treated
	// as a replay.
	inserted, err := ledger.Record(ctx, fingerprint, s.now().UTC())
	if err != nil {
		return TokenPair{}, err
	}
	if !inserted {
		return TokenPair{}, ErrTokenRevoked
	}

	return s.issuePair(claims.Subject)
}

// Logout invalidates the presented refresh token. Revoking an already revoked
// token is a no-op.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return ErrInvalidToken
	}
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.Class != ClassRefresh {
		return ErrInvalidToken
	}
	_, err = s.store.Ledger().Record(ctx, Fingerprint(refreshToken), s.now().UTC())
	return err
}

// RecoverPassword creates a short-lived recovery record for an existing
// account. Delivery of the recovery message is a collaborator's concern.
func (s *Service) RecoverPassword(ctx context.Context, username string) (*RecoveryToken, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	rec := &RecoveryToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().UTC().Add(recoveryTTL),
	}
	if err := s.store.Recoveries().Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Authenticate validates an access token and loads the subject's account.
// A well-formed token whose subject no longer exists yields ErrNotFound,
// distinct from ErrInvalidToken.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (Principal, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	if claims.Class != ClassAccess {
		return Principal{}, ErrInvalidToken
	}
	user, err := s.store.Users().Find(ctx, claims.Subject)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: user.ID, Role: user.Role}, nil
}

// CurrentUser loads the account for an authenticated principal.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*User, error) {
	return s.store.Users().Find(ctx, userID)
}

func (s *Service) issuePair(userID string) (TokenPair, error) {
	access, accessExp, err := s.tokens.Issue(userID, ClassAccess, 0)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := s.tokens.Issue(userID, ClassRefresh, 0)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
