package store

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// Credential is the durable per-user record. OTPSecret is the base32 TOTP
// secret; empty means password-only login.
type Credential struct {
	Username     string
	PasswordHash string
	Salt         string
	OTPSecret    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Credential) OTPEnabled() bool {
	return c != nil && c.OTPSecret != ""
}

type DeviceStatus string

const (
	StatusUnknown DeviceStatus = "unknown"
	StatusOnline  DeviceStatus = "online"
	StatusOffline DeviceStatus = "offline"
)

type Device struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	MAC       string       `json:"mac"`
	ProbeHost string       `json:"probe_host,omitempty"`
	Status    DeviceStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
