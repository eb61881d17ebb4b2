package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTOTPSecretEntropy(t *testing.T) {
	secret, err := GenerateTOTPSecret()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// 20 bytes base32 without padding is 32 characters.
	if len(secret) != 32 {
		t.Fatalf("unexpected secret length %d", len(secret))
	}
	other, _ := GenerateTOTPSecret()
	if secret == other {
		t.Fatalf("secrets must be random")
	}
}

func TestTOTPVerifySkew(t *testing.T) {
	secret, err := GenerateTOTPSecret()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	cfg := DefaultTOTPConfig()
	now := time.Unix(1700000000, 0)

	code, err := ComputeTOTPCode(secret, now, cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"current step", now, true},
		{"previous step", now.Add(-30 * time.Second), true},
		{"next step", now.Add(30 * time.Second), true},
		{"two steps away", now.Add(60 * time.Second), false},
	}
	for _, tc := range cases {
		ok, err := VerifyTOTP(secret, code, tc.at, cfg)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if ok != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, ok, tc.want)
		}
	}
}

func TestTOTPVerifyRejectsMalformedCodes(t *testing.T) {
	secret, _ := GenerateTOTPSecret()
	cfg := DefaultTOTPConfig()
	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		ok, err := VerifyTOTP(secret, code, now, cfg)
		if err != nil {
			t.Fatalf("code %q: %v", code, err)
		}
		if ok {
			t.Fatalf("code %q must not verify", code)
		}
	}
	if _, err := VerifyTOTP("not-a-secret!", "123456", now, cfg); err == nil {
		t.Fatalf("expected invalid secret error")
	}
}

func TestProvisioningURI(t *testing.T) {
	secret, _ := GenerateTOTPSecret()
	uri := BuildTOTPProvisioningURI("Wakegate", "alice", secret, DefaultTOTPConfig())
	if !strings.HasPrefix(uri, "otpauth://totp/Wakegate:alice?") {
		t.Fatalf("unexpected uri prefix: %s", uri)
	}
	for _, part := range []string{"secret=" + secret, "issuer=Wakegate", "algorithm=SHA256", "digits=6", "period=30"} {
		if !strings.Contains(uri, part) {
			t.Fatalf("uri missing %q: %s", part, uri)
		}
	}
}
