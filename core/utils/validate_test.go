package utils

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	for _, ok := range []string{"alice", "a", "user.name_01-x", strings.Repeat("a", 64)} {
		if err := ValidateUsername(ok); err != nil {
			t.Fatalf("username %q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "with space", "ümlaut", "semi;colon", strings.Repeat("a", 65)} {
		if err := ValidateUsername(bad); err == nil {
			t.Fatalf("username %q accepted", bad)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	for _, ok := range []string{"12345678", "correct-horse-1", strings.Repeat("p", 128)} {
		if err := ValidatePassword(ok); err != nil {
			t.Fatalf("password %q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "1234567", "has a space", "tab\there", strings.Repeat("p", 129)} {
		if err := ValidatePassword(bad); err == nil {
			t.Fatalf("password %q accepted", bad)
		}
	}
}

func TestValidateMAC(t *testing.T) {
	for _, ok := range []string{"aa:bb:cc:dd:ee:ff", "AA-BB-CC-DD-EE-FF"} {
		if err := ValidateMAC(ok); err != nil {
			t.Fatalf("mac %q rejected: %v", ok, err)
		}
	}
	// 8-byte EUI-64 addresses parse but are not wake targets.
	for _, bad := range []string{"", "  ", "not-a-mac", "aa:bb:cc:dd:ee", "01:23:45:67:89:ab:cd:ef"} {
		if err := ValidateMAC(bad); err == nil {
			t.Fatalf("mac %q accepted", bad)
		}
	}
}

func TestRandString(t *testing.T) {
	a, err := RandString(32)
	if err != nil {
		t.Fatalf("rand: %v", err)
	}
	b, _ := RandString(32)
	if a == b {
		t.Fatalf("values must be random")
	}
	// 32 bytes base64url without padding is 43 characters.
	if len(a) != 43 {
		t.Fatalf("unexpected length %d", len(a))
	}
}

func TestConstantTimeEquals(t *testing.T) {
	if !ConstantTimeEquals([]byte("abc"), []byte("abc")) {
		t.Fatalf("equal inputs must match")
	}
	if ConstantTimeEquals([]byte("abc"), []byte("abd")) {
		t.Fatalf("different inputs must not match")
	}
	if ConstantTimeEquals([]byte("abc"), []byte("abcd")) {
		t.Fatalf("different lengths must not match")
	}
}
