package utils

import (
	"errors"
	"net"
	"regexp"
	"strings"
)

var (
	usernameRe   = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)
	whitespaceRe = regexp.MustCompile(`\s`)
)

const (
	passwordMinLength = 8
	passwordMaxLength = 128
)

func ValidateUsername(s string) error {
	if !usernameRe.MatchString(s) {
		return errors.New("username must be 1-64 characters (letters, digits, . _ -)")
	}
	return nil
}

func ValidatePassword(s string) error {
	if len(s) < passwordMinLength {
		return errors.New("password too short (min 8 chars)")
	}
	if len(s) > passwordMaxLength {
		return errors.New("password too long (max 128 chars)")
	}
	if whitespaceRe.MatchString(s) {
		return errors.New("password must not contain spaces")
	}
	return nil
}

func ValidateMAC(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("mac address is required")
	}
	hw, err := net.ParseMAC(s)
	if err != nil {
		return errors.New("invalid mac address")
	}
	if len(hw) != 6 {
		return errors.New("mac address must be 6 bytes")
	}
	return nil
}
