package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
)

type DevicesStore interface {
	List(ctx context.Context) ([]Device, error)
	Get(ctx context.Context, id string) (*Device, error)
	Create(ctx context.Context, d *Device) error
	Update(ctx context.Context, d *Device) error
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status DeviceStatus) error
}

type devicesStore struct {
	db *sql.DB
}

func NewDevicesStore(db *sql.DB) DevicesStore {
	return &devicesStore{db: db}
}

const deviceColumns = `id, name, mac, probe_host, status, created_at, updated_at`

func (s *devicesStore) List(ctx context.Context) ([]Device, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY name, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()
	var res []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.ID, &d.Name, &d.MAC, &d.ProbeHost, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (s *devicesStore) Get(ctx context.Context, id string) (*Device, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id=?`, id)
	var d Device
	if err := row.Scan(&d.ID, &d.Name, &d.MAC, &d.ProbeHost, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get device: %w", err)
	}
	return &d, nil
}

func (s *devicesStore) Create(ctx context.Context, d *Device) error {
	if d.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		d.ID = id.String()
	}
	if d.Status == "" {
		d.Status = StatusUnknown
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO devices(`+deviceColumns+`) VALUES(?,?,?,?,?,?,?)`,
		d.ID, d.Name, d.MAC, d.ProbeHost, d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert device: %w", err)
	}
	return nil
}

func (s *devicesStore) Update(ctx context.Context, d *Device) error {
	d.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE devices SET name=?, mac=?, probe_host=?, status=?, updated_at=? WHERE id=?`,
		d.Name, d.MAC, d.ProbeHost, d.Status, d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("update device: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *devicesStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM devices WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *devicesStore) SetStatus(ctx context.Context, id string, status DeviceStatus) error {
	_, err := s.db.ExecContext(ctx, `UPDATE devices SET status=?, updated_at=? WHERE id=?`,
		status, time.Now().UTC(), id)
	return err
}
