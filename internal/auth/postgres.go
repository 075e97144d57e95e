package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dspedroborges/store-api/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL. The revocation ledger relies on
// the primary key of revoked_tokens: the second concurrent writer of a
// fingerprint hits the conflict and observes inserted=false, which serializes
// check-then-record across service instances.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Users() UserStore          { return &pgUsers{db: s.db} }
func (s *PGStore) Ledger() RevocationLedger  { return &pgLedger{db: s.db} }
func (s *PGStore) Recoveries() RecoveryStore { return &pgRecoveries{db: s.db} }
func (s *PGStore) AccessLog() AccessLogStore { return &pgAccessLog{db: s.db} }

// User store ---------------------------------------------------------------
type pgUsers struct{ db *sql.DB }

func (s *pgUsers) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx,
		`insert into users(id, username, password_hash, role) values($1,$2,$3,$4)
		 returning created_at, updated_at`,
		u.ID, u.Username, u.PasswordHash, string(u.Role),
	)
	return row.Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (s *pgUsers) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, password_hash, role, created_at, updated_at from users where id=$1`, id)
	return scanUser(row)
}

func (s *pgUsers) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, username, password_hash, role, created_at, updated_at from users where username=$1`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

// Revocation ledger --------------------------------------------------------
type pgLedger struct{ db *sql.DB }

func (s *pgLedger) IsRevoked(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from revoked_tokens where fingerprint=$1)`, fingerprint).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *pgLedger) Record(ctx context.Context, fingerprint string, revokedAt time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`insert into revoked_tokens(fingerprint, revoked_at) values($1,$2)
		 on conflict (fingerprint) do nothing`,
		fingerprint, revokedAt,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *pgLedger) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `delete from revoked_tokens`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Recovery store -----------------------------------------------------------
type pgRecoveries struct{ db *sql.DB }

func (s *pgRecoveries) Create(ctx context.Context, rec *RecoveryToken) error {
	row := s.db.QueryRowContext(ctx,
		`insert into recovery_tokens(token, user_id, expires_at) values($1,$2,$3)
		 returning created_at`,
		rec.Token, rec.UserID, rec.ExpiresAt,
	)
	return row.Scan(&rec.CreatedAt)
}

// Access log ---------------------------------------------------------------
type pgAccessLog struct{ db *sql.DB }

func (s *pgAccessLog) Append(ctx context.Context, entry *AccessLogEntry) error {
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into access_log(id, user_id, path, method, client_ip, occurred_at)
		 values($1,$2,$3,$4,$5,$6)`,
		entry.ID, entry.UserID, entry.Path, entry.Method, entry.ClientIP, entry.OccurredAt,
	)
	return err
}
