package auth

import (
	"context"
	"fmt"
	"time"

	"wakegate/core/store"
	"wakegate/core/utils"
)

// Service orchestrates credential storage, password hashing, the OTP engine
// and token issuance. All credential mutation in the app funnels through it.
type Service struct {
	creds   store.CredentialsStore
	tokens  *TokenManager
	pepper  string
	issuer  string
	totpCfg TOTPConfig
	logger  *utils.Logger
}

func NewService(creds store.CredentialsStore, tokens *TokenManager, pepper, issuer string, logger *utils.Logger) *Service {
	return &Service{
		creds:   creds,
		tokens:  tokens,
		pepper:  pepper,
		issuer:  issuer,
		totpCfg: DefaultTOTPConfig(),
		logger:  logger,
	}
}

func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// SetupRequired reports whether the store is still empty. The transition to
// false is one-way for the lifetime of the store.
func (s *Service) SetupRequired(ctx context.Context) (bool, error) {
	hasAny, err := s.creds.HasAny(ctx)
	if err != nil {
		return false, fmt.Errorf("setup state: %w", err)
	}
	return !hasAny, nil
}

// Setup creates the first (and only) account. It is rejected outright once
// any credential exists; re-registration on a live instance would let an
// unauthenticated party take it over. When an OTP secret is supplied the
// caller must prove possession with a current code before it is persisted.
func (s *Service) Setup(ctx context.Context, username, password, otpSecret, otpCode string) (string, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := utils.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	hasAny, err := s.creds.HasAny(ctx)
	if err != nil {
		return "", fmt.Errorf("setup: %w", err)
	}
	if hasAny {
		return "", ErrAlreadyExists
	}
	if otpSecret != "" {
		ok, err := VerifyTOTP(otpSecret, otpCode, time.Now(), s.totpCfg)
		if err != nil || !ok {
			return "", ErrOTPInvalid
		}
	}
	ph, err := HashPassword(password, s.pepper)
	if err != nil {
		return "", fmt.Errorf("setup hash: %w", err)
	}
	rec := &store.Credential{
		Username:     username,
		PasswordHash: ph.Hash,
		Salt:         ph.Salt,
		OTPSecret:    otpSecret,
	}
	// The HasAny check above is only a fast path; the slow hash sits between
	// it and the insert, so two concurrent setups could both pass it. The
	// store's first-insert is what actually enforces single occupancy.
	if err := s.creds.AddFirst(ctx, rec); err != nil {
		if err == store.ErrAlreadyExists {
			return "", ErrAlreadyExists
		}
		return "", fmt.Errorf("setup add: %w", err)
	}
	if s.logger != nil {
		s.logger.Printf("setup complete user=%s otp=%v", username, otpSecret != "")
	}
	token, _, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("setup token: %w", err)
	}
	return token, nil
}

// Login verifies the password and, when the account carries a second
// factor, the one-time code. Unknown username and wrong password share the
// same outcome; the OTP outcomes are distinct on purpose so the UI can ask
// for the code without re-asking for the password.
func (s *Service) Login(ctx context.Context, username, password, otpCode string) (string, error) {
	rec, err := s.authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if rec.OTPEnabled() {
		if NormalizeTOTPCode(otpCode) == "" {
			return "", ErrOTPRequired
		}
		ok, err := VerifyTOTP(rec.OTPSecret, otpCode, time.Now(), s.totpCfg)
		if err != nil || !ok {
			if s.logger != nil {
				s.logger.Printf("login otp rejected user=%s", username)
			}
			return "", ErrOTPInvalid
		}
	}
	if s.logger != nil {
		s.logger.Printf("login success user=%s", username)
	}
	token, _, err := s.tokens.Issue(rec.Username)
	if err != nil {
		return "", fmt.Errorf("login token: %w", err)
	}
	return token, nil
}

// ChangeUsername re-keys the credential record. The password is re-verified
// so a hijacked session alone cannot rename the account.
func (s *Service) ChangeUsername(ctx context.Context, current, password, newUsername string) error {
	if err := utils.ValidateUsername(newUsername); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	rec, err := s.authenticate(ctx, current, password)
	if err != nil {
		return err
	}
	rec.Username = newUsername
	if err := s.creds.Update(ctx, current, rec); err != nil {
		switch err {
		case store.ErrAlreadyExists:
			return ErrAlreadyExists
		case store.ErrNotFound:
			return ErrNotFound
		}
		return fmt.Errorf("change username: %w", err)
	}
	if s.logger != nil {
		s.logger.Printf("username changed %s -> %s", current, newUsername)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, current, password, newPassword string) error {
	if err := utils.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	rec, err := s.authenticate(ctx, current, password)
	if err != nil {
		return err
	}
	ph, err := HashPassword(newPassword, s.pepper)
	if err != nil {
		return fmt.Errorf("change password hash: %w", err)
	}
	rec.PasswordHash = ph.Hash
	rec.Salt = ph.Salt
	if err := s.creds.Update(ctx, current, rec); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if s.logger != nil {
		s.logger.Printf("password changed user=%s", current)
	}
	return nil
}

func (s *Service) DisableOTP(ctx context.Context, current, password string) error {
	rec, err := s.authenticate(ctx, current, password)
	if err != nil {
		return err
	}
	rec.OTPSecret = ""
	if err := s.creds.Update(ctx, current, rec); err != nil {
		return fmt.Errorf("disable otp: %w", err)
	}
	if s.logger != nil {
		s.logger.Printf("otp disabled user=%s", current)
	}
	return nil
}

// RegenerateOTP replaces the stored secret immediately. The caller gets the
// new secret before confirming the enrollment scan; failing to scan it
// locks the second factor until it is disabled with the password.
func (s *Service) RegenerateOTP(ctx context.Context, current, password string) (*Enrollment, error) {
	rec, err := s.authenticate(ctx, current, password)
	if err != nil {
		return nil, err
	}
	secret, err := GenerateTOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("regenerate otp: %w", err)
	}
	rec.OTPSecret = secret
	if err := s.creds.Update(ctx, current, rec); err != nil {
		return nil, fmt.Errorf("regenerate otp: %w", err)
	}
	if s.logger != nil {
		s.logger.Printf("otp regenerated user=%s", current)
	}
	return &Enrollment{
		Secret: secret,
		URI:    BuildTOTPProvisioningURI(s.issuer, rec.Username, secret, s.totpCfg),
	}, nil
}

// NewEnrollment generates a candidate secret for the setup flow. Nothing is
// persisted; Setup stores the secret only after a valid code proves the
// authenticator holds it.
func (s *Service) NewEnrollment(username string) (*Enrollment, error) {
	secret, err := GenerateTOTPSecret()
	if err != nil {
		return nil, fmt.Errorf("enrollment: %w", err)
	}
	return &Enrollment{
		Secret: secret,
		URI:    BuildTOTPProvisioningURI(s.issuer, username, secret, s.totpCfg),
	}, nil
}

// Identity resolves a session token to the stored credential. Returns nil
// for any invalid token or when the user no longer exists.
func (s *Service) Identity(ctx context.Context, token string) *Identity {
	username, ok := s.tokens.Verify(token)
	if !ok {
		return nil
	}
	rec, err := s.creds.Find(ctx, username)
	if err != nil || rec == nil {
		return nil
	}
	return &Identity{Username: rec.Username, OTPEnabled: rec.OTPEnabled()}
}

// authenticate maps "no such user" and "wrong password" to the same error.
func (s *Service) authenticate(ctx context.Context, username, password string) (*store.Credential, error) {
	rec, err := s.creds.Find(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if rec == nil {
		return nil, ErrInvalidCredentials
	}
	ph, err := ParsePasswordHash(rec.PasswordHash, rec.Salt)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := VerifyPassword(password, s.pepper, ph)
	if err != nil || !ok {
		if s.logger != nil {
			s.logger.Printf("login rejected user=%s", username)
		}
		return nil, ErrInvalidCredentials
	}
	return rec, nil
}
