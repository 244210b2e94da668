package service

import (
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/internal/repository"
	"github.com/minigolfeveryday/mged-site/pkg/jwt"
	"github.com/minigolfeveryday/mged-site/pkg/logger"
)

// Lockout policy carried over from the original API
const (
	maxLoginAttempts = 5
	lockoutDuration  = 30 * time.Minute
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// RegisterRequest registration payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse token plus the authenticated user
type LoginResponse struct {
	Token string               `json:"token"`
	User  *domain.UserResponse `json:"user"`
}

// AuthService authentication and account business logic
type AuthService interface {
	Login(username, password string) (*LoginResponse, error)
	Register(req *RegisterRequest) (*domain.UserResponse, error)
	GetUser(id uint) (*domain.User, error)
	ChangePassword(userID uint, current, next string) error

	// Admin account management
	ListUsers() ([]*domain.UserResponse, error)
	ToggleUserActive(actorID, targetID uint) (*domain.UserResponse, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtManager *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtManager *jwt.Manager) AuthService {
	return &authService{userRepo: userRepo, jwtManager: jwtManager}
}

// Login verifies credentials, enforcing the failed-attempt lockout.
// A locked account reports ErrAccountLocked without revealing whether
// the password was right.
func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, common.ErrInvalidCredentials
	}
	if user.IsLocked() {
		return nil, common.ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		var lockedUntil *time.Time
		if user.LoginAttempts+1 >= maxLoginAttempts {
			until := time.Now().Add(lockoutDuration)
			lockedUntil = &until
			logger.Warn("account %s locked after %d failed logins", username, maxLoginAttempts)
		}
		if err := s.userRepo.RecordFailedLogin(user.ID, lockedUntil); err != nil {
			logger.Error("failed to record login attempt for %s: %v", username, err)
		}
		if lockedUntil != nil {
			return nil, common.ErrAccountLocked
		}
		return nil, common.ErrInvalidCredentials
	}

	if err := s.userRepo.ResetLoginAttempts(user.ID); err != nil {
		logger.Error("failed to reset login attempts for %s: %v", username, err)
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	if err := s.userRepo.Update(user); err != nil {
		logger.Error("failed to stamp last login for %s: %v", username, err)
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token: token,
		User:  user.ToResponse(true),
	}, nil
}

// Register validates and creates an account
func (s *authService) Register(req *RegisterRequest) (*domain.UserResponse, error) {
	if !usernameRe.MatchString(req.Username) {
		return nil, common.ErrInvalidInput
	}
	if !emailRe.MatchString(req.Email) {
		return nil, common.ErrInvalidInput
	}
	if len(req.Password) < 8 {
		return nil, common.ErrInvalidInput
	}

	if _, err := s.userRepo.FindByUsername(req.Username); err == nil {
		return nil, common.ErrUserAlreadyExists
	}
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, common.ErrEmailAlreadyUsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("registered user %s", user.Username)
	return user.ToResponse(true), nil
}

// GetUser loads an account by ID
func (s *authService) GetUser(id uint) (*domain.User, error) {
	return s.userRepo.FindByID(id)
}

// ChangePassword swaps the password after verifying the current one
func (s *authService) ChangePassword(userID uint, current, next string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return common.ErrInvalidCredentials
	}
	if len(next) < 8 {
		return common.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.userRepo.Update(user)
}

// ListUsers returns every account for the admin view
func (s *authService) ListUsers() ([]*domain.UserResponse, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse(true)
	}
	return out, nil
}

// ToggleUserActive flips an account's active flag. Admins cannot
// deactivate themselves, that would strand the site without an admin.
func (s *authService) ToggleUserActive(actorID, targetID uint) (*domain.UserResponse, error) {
	if actorID == targetID {
		return nil, common.ErrForbidden
	}
	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	logger.Info("user %s active=%t (by admin %d)", user.Username, user.IsActive, actorID)
	return user.ToResponse(true), nil
}
