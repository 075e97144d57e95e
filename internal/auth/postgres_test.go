package auth

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPGStore(db), mock
}

func TestPGUsersCreate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`insert into users`)).
		WithArgs(sqlmock.AnyArg(), "alice", "hash", "customer").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u := &User{Username: "alice", PasswordHash: "hash", Role: RoleCustomer}
	require.NoError(t, store.Users().Create(context.Background(), u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.Equal(t, now, u.UpdatedAt)
}

func TestPGUsersFindByUsernameNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`select id, username, password_hash, role, created_at, updated_at from users where username=$1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at", "updated_at"}))

	_, err := store.Users().FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPGUsersFind(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`select id, username, password_hash, role, created_at, updated_at from users where id=$1`)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at", "updated_at"}).
			AddRow("u-1", "alice", "hash", "admin", now, now))

	u, err := store.Users().Find(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, RoleAdmin, u.Role)
}

func TestPGLedgerIsRevoked(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`select exists(select 1 from revoked_tokens where fingerprint=$1)`)).
		WithArgs("fp-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	revoked, err := store.Ledger().IsRevoked(context.Background(), "fp-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestPGLedgerRecordFirstWriterWins(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	// First insert lands; the conflicting one affects zero rows.
	mock.ExpectExec(regexp.QuoteMeta(`insert into revoked_tokens`)).
		WithArgs("fp-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`insert into revoked_tokens`)).
		WithArgs("fp-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := store.Ledger().Record(context.Background(), "fp-1", now)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.Ledger().Record(context.Background(), "fp-1", now)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestPGLedgerPurge(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`delete from revoked_tokens`)).
		WillReturnResult(sqlmock.NewResult(0, 7))

	count, err := store.Ledger().Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestPGRecoveriesCreate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`insert into recovery_tokens`)).
		WithArgs("tok-1", "u-1", now.Add(time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	rec := &RecoveryToken{Token: "tok-1", UserID: "u-1", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Recoveries().Create(context.Background(), rec))
	assert.Equal(t, now, rec.CreatedAt)
}

func TestPGAccessLogAppend(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`insert into access_log`)).
		WithArgs(sqlmock.AnyArg(), "u-1", "/v1/reviews", "POST", "203.0.113.9", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &AccessLogEntry{UserID: "u-1", Path: "/v1/reviews", Method: "POST", ClientIP: "203.0.113.9", OccurredAt: now}
	require.NoError(t, store.AccessLog().Append(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
}
