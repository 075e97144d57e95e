package auth

import "time"

// Role classifies what a user account is allowed to reach.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User is the identity record owned by the credential store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedToken marks a consumed or invalidated refresh token. Tokens are
// keyed by a SHA-256 fingerprint so the raw credential never reaches storage.
type RevokedToken struct {
	Fingerprint string
	RevokedAt   time.Time
}

// RecoveryToken is a short-lived password recovery record.
type RecoveryToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AccessLogEntry is appended for every authorized mutating request.
type AccessLogEntry struct {
	ID         string
	UserID     string
	Path       string
	Method     string
	ClientIP   string
	OccurredAt time.Time
}

// TokenPair carries a freshly issued session: a short-lived access token and
// the longer-lived single-use refresh token paired with it.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
