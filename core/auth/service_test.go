package auth

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wakegate/core/store"
	"wakegate/core/utils"
)

const (
	testPepper   = "test-pepper"
	testPassword = "correct-horse-1"
)

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	creds := store.NewMemoryStore()
	tokens := NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	svc := NewService(creds, tokens, testPepper, "Wakegate", utils.NewLoggerTo(io.Discard))
	return svc, creds
}

func mustSetup(t *testing.T, svc *Service, username string) string {
	t.Helper()
	token, err := svc.Setup(context.Background(), username, testPassword, "", "")
	require.NoError(t, err)
	return token
}

func addUser(t *testing.T, creds *store.MemoryStore, username, password, otpSecret string) {
	t.Helper()
	ph, err := HashPassword(password, testPepper)
	require.NoError(t, err)
	require.NoError(t, creds.Add(context.Background(), &store.Credential{
		Username:     username,
		PasswordHash: ph.Hash,
		Salt:         ph.Salt,
		OTPSecret:    otpSecret,
	}))
}

func TestSetupFirstRun(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()

	required, err := svc.SetupRequired(ctx)
	require.NoError(t, err)
	assert.True(t, required)

	token := mustSetup(t, svc, "alice")
	username, ok := svc.Tokens().Verify(token)
	require.True(t, ok)
	assert.Equal(t, "alice", username)

	hasAny, err := creds.HasAny(ctx)
	require.NoError(t, err)
	assert.True(t, hasAny)

	required, err = svc.SetupRequired(ctx)
	require.NoError(t, err)
	assert.False(t, required)
}

// emptyReadingStore reports an empty store no matter what it holds, the
// stale read two racing first-run setups would both see before either
// insert lands.
type emptyReadingStore struct {
	*store.MemoryStore
}

func (s *emptyReadingStore) HasAny(ctx context.Context) (bool, error) {
	return false, nil
}

func TestSetupSingleOccupancyUnderRace(t *testing.T) {
	creds := &emptyReadingStore{MemoryStore: store.NewMemoryStore()}
	tokens := NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	svc := NewService(creds, tokens, testPepper, "Wakegate", utils.NewLoggerTo(io.Discard))
	ctx := context.Background()

	// Both calls pass the pre-check; the store's first-insert must still
	// admit exactly one.
	_, err1 := svc.Setup(ctx, "alice", testPassword, "", "")
	_, err2 := svc.Setup(ctx, "mallory", testPassword, "", "")
	require.NoError(t, err1)
	assert.ErrorIs(t, err2, ErrAlreadyExists)

	alice, err := creds.Find(ctx, "alice")
	require.NoError(t, err)
	assert.NotNil(t, alice)
	mallory, err := creds.Find(ctx, "mallory")
	require.NoError(t, err)
	assert.Nil(t, mallory)
}

func TestSetupConcurrent(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, name := range []string{"alice", "mallory"} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			_, errs[i] = svc.Setup(ctx, name, testPassword, "", "")
		}(i, name)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyExists)
		}
	}
	assert.Equal(t, 1, succeeded)

	hasAny, err := creds.HasAny(ctx)
	require.NoError(t, err)
	assert.True(t, hasAny)
}

func TestSetupClosedOnceUserExists(t *testing.T) {
	svc, _ := newTestService(t)
	mustSetup(t, svc, "alice")

	_, err := svc.Setup(context.Background(), "mallory", testPassword, "", "")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestSetupValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Setup(ctx, "", testPassword, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Setup(ctx, "alice", "short", "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetupWithOTPRequiresProof(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()

	enr, err := svc.NewEnrollment("alice")
	require.NoError(t, err)

	_, err = svc.Setup(ctx, "alice", testPassword, enr.Secret, "000000")
	assert.ErrorIs(t, err, ErrOTPInvalid)

	// Nothing persisted after the failed attempt.
	hasAny, err := creds.HasAny(ctx)
	require.NoError(t, err)
	assert.False(t, hasAny)

	code, err := ComputeTOTPCode(enr.Secret, time.Now(), DefaultTOTPConfig())
	require.NoError(t, err)
	_, err = svc.Setup(ctx, "alice", testPassword, enr.Secret, code)
	require.NoError(t, err)

	rec, err := creds.Find(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, enr.Secret, rec.OTPSecret)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	mustSetup(t, svc, "alice")
	ctx := context.Background()

	_, errWrongPass := svc.Login(ctx, "alice", "wrong-password-1", "")
	_, errUnknown := svc.Login(ctx, "bob", "anything-at-all", "")

	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errUnknown.Error())
}

func TestLoginSecondFactor(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()
	secret, err := GenerateTOTPSecret()
	require.NoError(t, err)
	addUser(t, creds, "alice", testPassword, secret)

	_, err = svc.Login(ctx, "alice", testPassword, "")
	assert.ErrorIs(t, err, ErrOTPRequired)

	_, err = svc.Login(ctx, "alice", testPassword, "000000")
	assert.ErrorIs(t, err, ErrOTPInvalid)

	// Wrong password wins over OTP handling: indistinguishable failure.
	_, err = svc.Login(ctx, "alice", "wrong-password-1", "000000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	code, err := ComputeTOTPCode(secret, time.Now(), DefaultTOTPConfig())
	require.NoError(t, err)
	token, err := svc.Login(ctx, "alice", testPassword, code)
	require.NoError(t, err)
	username, ok := svc.Tokens().Verify(token)
	require.True(t, ok)
	assert.Equal(t, "alice", username)
}

func TestChangeUsername(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()
	mustSetup(t, svc, "alice")

	err := svc.ChangeUsername(ctx, "alice", "wrong-password-1", "alice2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangeUsername(ctx, "alice", testPassword, "alice2"))

	old, err := creds.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, old)
	renamed, err := creds.Find(ctx, "alice2")
	require.NoError(t, err)
	require.NotNil(t, renamed)
}

func TestChangeUsernameCollision(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()
	addUser(t, creds, "alice", testPassword, "")
	addUser(t, creds, "bob", testPassword, "")

	err := svc.ChangeUsername(ctx, "alice", testPassword, "bob")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// Both records unchanged.
	for _, name := range []string{"alice", "bob"} {
		rec, err := creds.Find(ctx, name)
		require.NoError(t, err)
		require.NotNil(t, rec, name)
		assert.Equal(t, name, rec.Username)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustSetup(t, svc, "alice")

	err := svc.ChangePassword(ctx, "alice", "wrong-password-1", "new-password-22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, "alice", testPassword, "nope")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, "alice", testPassword, "new-password-22"))

	_, err = svc.Login(ctx, "alice", testPassword, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "new-password-22", "")
	assert.NoError(t, err)
}

func TestDisableOTP(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()
	secret, _ := GenerateTOTPSecret()
	addUser(t, creds, "alice", testPassword, secret)

	err := svc.DisableOTP(ctx, "alice", "wrong-password-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.DisableOTP(ctx, "alice", testPassword))

	// Password-only login is enough now.
	_, err = svc.Login(ctx, "alice", testPassword, "")
	assert.NoError(t, err)
}

func TestRegenerateOTPPersistsImmediately(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()
	addUser(t, creds, "alice", testPassword, "")

	enr, err := svc.RegenerateOTP(ctx, "alice", testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, enr.Secret)
	assert.Contains(t, enr.URI, "otpauth://totp/")

	rec, err := creds.Find(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, enr.Secret, rec.OTPSecret)

	// The new secret is live before any confirmation.
	_, err = svc.Login(ctx, "alice", testPassword, "")
	assert.ErrorIs(t, err, ErrOTPRequired)
}

func TestIdentity(t *testing.T) {
	svc, creds := newTestService(t)
	ctx := context.Background()
	secret, _ := GenerateTOTPSecret()
	addUser(t, creds, "alice", testPassword, secret)

	code, _ := ComputeTOTPCode(secret, time.Now(), DefaultTOTPConfig())
	token, err := svc.Login(ctx, "alice", testPassword, code)
	require.NoError(t, err)

	id := svc.Identity(ctx, token)
	require.NotNil(t, id)
	assert.Equal(t, "alice", id.Username)
	assert.True(t, id.OTPEnabled)

	assert.Nil(t, svc.Identity(ctx, "garbage"))

	// A token naming a user that no longer exists resolves to nothing.
	require.NoError(t, svc.ChangeUsername(ctx, "alice", testPassword, "renamed"))
	assert.Nil(t, svc.Identity(ctx, token))
}
