package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"wakegate/core/utils"
)

const (
	defaultConfigPath = "config/app.yaml"
	envPrefix         = "WAKEGATE_"
)

func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfgPath := resolveConfigPath()
	if st, err := os.Stat(cfgPath); err == nil && !st.IsDir() {
		if err := cleanenv.ReadConfig(cfgPath, cfg); err != nil {
			return nil, err
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, err
		}
	}
	applyEnvAliases(cfg)
	normalizeConfig(cfg)
	if err := EnsureSecrets(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvAliases(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	if v := getEnv("PORT", envPrefix+"PORT"); v != "" {
		cfg.ListenAddr = listenAddrWithPort(cfg.ListenAddr, v)
	}
	if v := getEnv("DATA_PATH", envPrefix+"DATA_PATH"); v != "" {
		cfg.DBPath = filepath.Join(strings.TrimSpace(v), "wakegate.db")
	}
}

func normalizeConfig(cfg *AppConfig) {
	if cfg == nil {
		return
	}
	cfg.ListenAddr = strings.TrimSpace(cfg.ListenAddr)
	cfg.DBPath = strings.TrimSpace(cfg.DBPath)
	cfg.SessionSecret = strings.TrimSpace(cfg.SessionSecret)
	cfg.Pepper = strings.TrimSpace(cfg.Pepper)
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	cfg.BroadcastAddr = strings.TrimSpace(cfg.BroadcastAddr)
	if cfg.Issuer == "" {
		cfg.Issuer = "Wakegate"
	}
}

type persistedSecrets struct {
	SessionSecret string `yaml:"session_secret"`
	Pepper        string `yaml:"pepper"`
}

// EnsureSecrets fills in the signing secret and pepper when the operator
// did not provide them, persisting generated values next to the database so
// a restart does not invalidate every session.
func EnsureSecrets(cfg *AppConfig) error {
	if cfg.SessionSecret != "" && cfg.Pepper != "" {
		return nil
	}
	path := filepath.Join(filepath.Dir(cfg.DBPath), "secrets.yaml")
	var ps persistedSecrets
	if raw, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(raw, &ps)
	}
	dirty := false
	if ps.SessionSecret == "" {
		v, err := utils.RandString(32)
		if err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		ps.SessionSecret = v
		dirty = true
	}
	if ps.Pepper == "" {
		v, err := utils.RandString(32)
		if err != nil {
			return fmt.Errorf("generate pepper: %w", err)
		}
		ps.Pepper = v
		dirty = true
	}
	if dirty {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		raw, err := yaml.Marshal(&ps)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, raw, 0o600); err != nil {
			return fmt.Errorf("persist secrets: %w", err)
		}
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = ps.SessionSecret
	}
	if cfg.Pepper == "" {
		cfg.Pepper = ps.Pepper
	}
	return nil
}

func getEnv(keys ...string) string {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func resolveConfigPath() string {
	if v := getEnv("APP_CONFIG", envPrefix+"APP_CONFIG"); v != "" {
		return strings.TrimSpace(v)
	}
	return defaultConfigPath
}

func listenAddrWithPort(currentAddr, portRaw string) string {
	port := strings.TrimSpace(portRaw)
	if port == "" {
		return currentAddr
	}
	if _, err := strconv.Atoi(port); err != nil {
		return currentAddr
	}
	host := "0.0.0.0"
	parts := strings.Split(strings.TrimSpace(currentAddr), ":")
	if len(parts) > 1 {
		host = strings.Join(parts[:len(parts)-1], ":")
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host + ":" + port
}
