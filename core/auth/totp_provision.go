package auth

import (
	"crypto/rand"
	"encoding/base32"
	"net/url"
	"strconv"
	"strings"
)

// GenerateTOTPSecret returns a fresh 160-bit secret, base32 without padding.
func GenerateTOTPSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// BuildTOTPProvisioningURI renders the otpauth:// URI authenticator apps
// scan from a QR code. Parameters must match what VerifyTOTP computes.
func BuildTOTPProvisioningURI(issuer, accountName, secretBase32 string, cfg TOTPConfig) string {
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		issuer = "Wakegate"
	}
	accountName = strings.TrimSpace(accountName)
	label := issuer
	if accountName != "" {
		label = issuer + ":" + accountName
	}
	q := url.Values{}
	q.Set("secret", strings.TrimSpace(secretBase32))
	q.Set("issuer", issuer)
	q.Set("algorithm", "SHA256")
	q.Set("digits", strconv.Itoa(cfg.Digits))
	q.Set("period", strconv.FormatInt(cfg.PeriodSec, 10))
	u := &url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + url.PathEscape(label),
		RawQuery: q.Encode(),
	}
	return u.String()
}
