package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CredentialsStore is the sole owner of credential records. Every call hits
// the database; nothing is cached between calls.
type CredentialsStore interface {
	HasAny(ctx context.Context) (bool, error)
	Find(ctx context.Context, username string) (*Credential, error)
	Add(ctx context.Context, rec *Credential) error
	// AddFirst inserts rec only while the store is empty, failing with
	// ErrAlreadyExists otherwise. The emptiness check and the insert are
	// atomic: of any number of concurrent callers, exactly one wins.
	AddFirst(ctx context.Context, rec *Credential) error
	// Update replaces the record stored under username with rec. It renames
	// when rec.Username differs, failing with ErrAlreadyExists if the new
	// name belongs to another record.
	Update(ctx context.Context, username string, rec *Credential) error
}

type credentialsStore struct {
	db *sql.DB
}

func NewCredentialsStore(db *sql.DB) CredentialsStore {
	return &credentialsStore{db: db}
}

func (s *credentialsStore) HasAny(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM credentials`).Scan(&n); err != nil {
		return false, fmt.Errorf("count credentials: %w", err)
	}
	return n > 0, nil
}

func (s *credentialsStore) Find(ctx context.Context, username string) (*Credential, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT username, password_hash, salt, otp_secret, created_at, updated_at
		FROM credentials WHERE username=?`, username)
	var c Credential
	if err := row.Scan(&c.Username, &c.PasswordHash, &c.Salt, &c.OTPSecret, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &c, nil
}

func (s *credentialsStore) Add(ctx context.Context, rec *Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM credentials WHERE username=?`, rec.Username).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrAlreadyExists
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO credentials(username, password_hash, salt, otp_secret, created_at, updated_at)
		VALUES(?,?,?,?,?,?)`,
		rec.Username, rec.PasswordHash, rec.Salt, rec.OTPSecret, rec.CreatedAt, rec.UpdatedAt); err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return tx.Commit()
}

func (s *credentialsStore) AddFirst(ctx context.Context, rec *Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM credentials`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrAlreadyExists
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO credentials(username, password_hash, salt, otp_secret, created_at, updated_at)
		SELECT ?,?,?,?,?,?
		WHERE NOT EXISTS (SELECT 1 FROM credentials)`,
		rec.Username, rec.PasswordHash, rec.Salt, rec.OTPSecret, rec.CreatedAt, rec.UpdatedAt); err != nil {
		return fmt.Errorf("insert first credential: %w", err)
	}
	return tx.Commit()
}

func (s *credentialsStore) Update(ctx context.Context, username string, rec *Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM credentials WHERE username=?`, username).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if rec.Username != username {
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM credentials WHERE username=?`, rec.Username).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyExists
		}
	}
	rec.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE credentials SET username=?, password_hash=?, salt=?, otp_secret=?, updated_at=?
		WHERE username=?`,
		rec.Username, rec.PasswordHash, rec.Salt, rec.OTPSecret, rec.UpdatedAt, username); err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	return tx.Commit()
}
