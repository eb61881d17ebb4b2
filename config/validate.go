package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

func Validate(cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("db_path must be set")
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return fmt.Errorf("session_secret must be set")
	}
	if len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("session_secret must be at least 32 characters")
	}
	if strings.TrimSpace(cfg.Pepper) == "" {
		return fmt.Errorf("pepper must be set")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	if cfg.SessionTTL > 90*24*time.Hour {
		return fmt.Errorf("session_ttl must not exceed 90 days")
	}
	if _, _, err := net.SplitHostPort(cfg.BroadcastAddr); err != nil {
		return fmt.Errorf("broadcast_addr must be host:port: %v", err)
	}
	if cfg.TLSEnabled && (cfg.TLSCert == "" || cfg.TLSKey == "") {
		return fmt.Errorf("tls_cert and tls_key must be set when tls_enabled")
	}
	return nil
}
