package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/student-insight/backend/internal/storage/sqlite"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()

	db, err := sqlite.NewClient(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { db.Close() })

	return NewService(db, ttl, 4)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestService(t, time.Hour)

	user, err := s.Register("alice", "correct horse", "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	token, logged, err := s.Login("alice", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, logged.ID)

	userID, err := s.ValidateSession(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestService(t, time.Hour)

	_, err := s.Register("al", "long enough pw", "", "")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, err = s.Register("alice", "short", "", "")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	s := newTestService(t, time.Hour)

	_, err := s.Register("alice", "correct horse", "", "")
	require.NoError(t, err)

	_, err = s.Register("alice", "another password", "", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newTestService(t, time.Hour)

	_, err := s.Register("alice", "correct horse", "", "")
	require.NoError(t, err)

	_, _, err = s.Login("alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	s := newTestService(t, time.Hour)

	_, _, err := s.Login("nobody", "whatever pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateSession_Unknown(t *testing.T) {
	s := newTestService(t, time.Hour)

	_, err := s.ValidateSession("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = s.ValidateSession("")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateSession_Expired(t *testing.T) {
	s := newTestService(t, -time.Minute)

	_, err := s.Register("alice", "correct horse", "", "")
	require.NoError(t, err)

	token, _, err := s.Login("alice", "correct horse")
	require.NoError(t, err)

	_, err = s.ValidateSession(token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// The expired row is gone, so a second check reports it as unknown.
	_, err = s.ValidateSession(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestLogout(t *testing.T) {
	s := newTestService(t, time.Hour)

	_, err := s.Register("alice", "correct horse", "", "")
	require.NoError(t, err)

	token, _, err := s.Login("alice", "correct horse")
	require.NoError(t, err)

	require.NoError(t, s.Logout(token))

	_, err = s.ValidateSession(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
