package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory CredentialsStore used in tests.
type MemoryStore struct {
	mu    sync.Mutex
	creds map[string]Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: map[string]Credential{}}
}

func (m *MemoryStore) HasAny(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creds) > 0, nil
}

func (m *MemoryStore) Find(ctx context.Context, username string) (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[username]
	if !ok {
		return nil, nil
	}
	cp := c
	return &cp, nil
}

func (m *MemoryStore) Add(ctx context.Context, rec *Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[rec.Username]; ok {
		return ErrAlreadyExists
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.creds[rec.Username] = *rec
	return nil
}

func (m *MemoryStore) AddFirst(ctx context.Context, rec *Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.creds) > 0 {
		return ErrAlreadyExists
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	m.creds[rec.Username] = *rec
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, username string, rec *Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[username]; !ok {
		return ErrNotFound
	}
	if rec.Username != username {
		if _, ok := m.creds[rec.Username]; ok {
			return ErrAlreadyExists
		}
	}
	rec.UpdatedAt = time.Now().UTC()
	delete(m.creds, username)
	m.creds[rec.Username] = *rec
	return nil
}
