package auth

import (
	"context"
	"time"
)

// Store describes persistence operations required by the session core. The
// surrounding catalog resources (products, discounts, reviews, transactions)
// live behind their own stores and never enter this interface.
type Store interface {
	Users() UserStore
	Ledger() RevocationLedger
	Recoveries() RecoveryStore
	AccessLog() AccessLogStore
}

// UserStore manages identity records.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// RevocationLedger tracks consumed refresh tokens by fingerprint.
type RevocationLedger interface {
	// IsRevoked reports ledger membership for the fingerprint.
	IsRevoked(ctx context.Context, fingerprint string) (bool, error)

	// Record inserts the fingerprint. It is idempotent; the returned bool
	// reports whether this call performed the insert. Implementations must
	// make the insert atomic with respect to concurrent callers so that for
	// any fingerprint exactly one caller observes true.
	Record(ctx context.Context, fingerprint string, revokedAt time.Time) (bool, error)

	// Purge removes all revoked records and returns how many were deleted.
	Purge(ctx context.Context) (int64, error)
}

// RecoveryStore persists password recovery records.
type RecoveryStore interface {
	Create(ctx context.Context, rec *RecoveryToken) error
}

// AccessLogStore appends immutable access entries.
type AccessLogStore interface {
	Append(ctx context.Context, entry *AccessLogEntry) error
}
