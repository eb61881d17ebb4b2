package config

import "time"

type AppConfig struct {
	ListenAddr    string        `yaml:"listen_addr" env:"WAKEGATE_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	DBPath        string        `yaml:"db_path" env:"WAKEGATE_DB_PATH" env-default:"data/wakegate.db"`
	SessionSecret string        `yaml:"session_secret" env:"WAKEGATE_SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"WAKEGATE_SESSION_TTL" env-default:"168h"`
	Pepper        string        `yaml:"pepper" env:"WAKEGATE_PEPPER"`
	Issuer        string        `yaml:"issuer" env:"WAKEGATE_ISSUER" env-default:"Wakegate"`
	BroadcastAddr string        `yaml:"broadcast_addr" env:"WAKEGATE_BROADCAST_ADDR" env-default:"255.255.255.255:9"`
	TLSEnabled    bool          `yaml:"tls_enabled" env:"WAKEGATE_TLS_ENABLED"`
	TLSCert       string        `yaml:"tls_cert" env:"WAKEGATE_TLS_CERT"`
	TLSKey        string        `yaml:"tls_key" env:"WAKEGATE_TLS_KEY"`

	TrustedProxies []string `yaml:"trusted_proxies" env:"WAKEGATE_TRUSTED_PROXIES"`

	StatusCheck StatusCheckConfig `yaml:"status_check"`
}

type StatusCheckConfig struct {
	Enabled    bool   `yaml:"enabled" env:"WAKEGATE_STATUS_CHECK_ENABLED" env-default:"true"`
	Schedule   string `yaml:"schedule" env:"WAKEGATE_STATUS_CHECK_SCHEDULE" env-default:"@every 30s"`
	ProbePort  int    `yaml:"probe_port" env:"WAKEGATE_STATUS_CHECK_PROBE_PORT" env-default:"22"`
	TimeoutSec int    `yaml:"timeout_sec" env:"WAKEGATE_STATUS_CHECK_TIMEOUT_SEC" env-default:"5"`
}
