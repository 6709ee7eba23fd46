package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/student-insight/backend/internal/storage/models"
	"github.com/student-insight/backend/internal/storage/sqlite"
	"github.com/student-insight/backend/pkg/logger"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username must be at least 3 characters")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid session token")
	ErrSessionExpired     = errors.New("session expired")
)

type Service struct {
	db         *sqlite.Client
	sessionTTL time.Duration
	bcryptCost int
}

func NewService(db *sqlite.Client, sessionTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		db:         db,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) Register(username, password, fullName, email string) (*models.User, error) {
	if len(username) < 3 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}

	existing, err := s.db.GetUserByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Email:        email,
		CreatedAt:    time.Now(),
	}

	if err := s.db.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a bearer token backed by a stored
// session row.
func (s *Service) Login(username, password string) (string, *models.User, error) {
	user, err := s.db.GetUserByUsername(username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.db.SaveSession(session); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	if err := s.db.UpdateLastLogin(user.ID, now); err != nil {
		logger.Warn("Failed to update last login", zap.Error(err))
	}

	logger.Info("User logged in", zap.String("user_id", user.ID), zap.String("username", username))

	return session.Token, user, nil
}

// ValidateSession resolves a bearer token to its user ID. Expired sessions
// are deleted on sight.
func (s *Service) ValidateSession(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSession
	}

	session, err := s.db.GetSession(token)
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	if session == nil {
		return "", ErrInvalidSession
	}

	if time.Now().After(session.ExpiresAt) {
		if err := s.db.DeleteSession(token); err != nil {
			logger.Warn("Failed to delete expired session", zap.Error(err))
		}
		return "", ErrSessionExpired
	}

	return session.UserID, nil
}

func (s *Service) Logout(token string) error {
	return s.db.DeleteSession(token)
}
