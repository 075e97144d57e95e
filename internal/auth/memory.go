package auth

import (
	"context"
	"sync"
	"time"

	"github.com/dspedroborges/store-api/internal/ids"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore implements Store with in-process maps. It serves local
// development without a database and the test suites; the atomicity contract
// of the revocation ledger is provided by a mutex instead of a unique
// constraint.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[string]*User // by id
	byUsername map[string]string
	revoked    map[string]time.Time
	recoveries map[string]*RecoveryToken
	accessLog  []*AccessLogEntry
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*User),
		byUsername: make(map[string]string),
		revoked:    make(map[string]time.Time),
		recoveries: make(map[string]*RecoveryToken),
	}
}

func (m *MemoryStore) Users() UserStore          { return (*memUsers)(m) }
func (m *MemoryStore) Ledger() RevocationLedger  { return (*memLedger)(m) }
func (m *MemoryStore) Recoveries() RecoveryStore { return (*memRecoveries)(m) }
func (m *MemoryStore) AccessLog() AccessLogStore { return (*memAccessLog)(m) }

// AccessLogEntries returns a copy of the appended entries, oldest first.
func (m *MemoryStore) AccessLogEntries() []*AccessLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*AccessLogEntry, len(m.accessLog))
	copy(out, m.accessLog)
	return out
}

// DeleteUser removes an account; used to exercise the deleted-subject path.
func (m *MemoryStore) DeleteUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		delete(m.byUsername, u.Username)
		delete(m.users, id)
	}
}

type memUsers MemoryStore

func (m *memUsers) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byUsername[u.Username]; ok {
		return ErrUsernameTaken
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	clone := *u
	m.users[u.ID] = &clone
	m.byUsername[u.Username] = u.ID
	return nil
}

func (m *memUsers) Find(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) FindByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	id, ok := m.byUsername[username]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return (*memUsers)(m).Find(ctx, id)
}

type memLedger MemoryStore

func (m *memLedger) IsRevoked(_ context.Context, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[fingerprint]
	return ok, nil
}

func (m *memLedger) Record(_ context.Context, fingerprint string, revokedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.revoked[fingerprint]; ok {
		return false, nil
	}
	m.revoked[fingerprint] = revokedAt
	return true, nil
}

func (m *memLedger) Purge(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := int64(len(m.revoked))
	m.revoked = make(map[string]time.Time)
	return count, nil
}

type memRecoveries MemoryStore

func (m *memRecoveries) Create(_ context.Context, rec *RecoveryToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.CreatedAt = time.Now().UTC()
	clone := *rec
	m.recoveries[rec.Token] = &clone
	return nil
}

type memAccessLog MemoryStore

func (m *memAccessLog) Append(_ context.Context, entry *AccessLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	clone := *entry
	m.accessLog = append(m.accessLog, &clone)
	return nil
}
