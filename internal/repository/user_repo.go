package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/minigolfeveryday/mged-site/internal/common"
	"github.com/minigolfeveryday/mged-site/internal/domain"
)

// UserRepository account storage
type UserRepository interface {
	FindByID(id uint) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	List() ([]*domain.User, error)
	Create(user *domain.User) error
	Update(user *domain.User) error

	// Login bookkeeping
	RecordFailedLogin(id uint, lockedUntil *time.Time) error
	ResetLoginAttempts(id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository constructor
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List() ([]*domain.User, error) {
	var users []*domain.User
	if err := r.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) Update(user *domain.User) error {
	return r.db.Save(user).Error
}

// RecordFailedLogin bumps the attempt counter and optionally locks the
// account in one update
func (r *userRepository) RecordFailedLogin(id uint, lockedUntil *time.Time) error {
	updates := map[string]interface{}{
		"login_attempts": gorm.Expr("login_attempts + 1"),
	}
	if lockedUntil != nil {
		updates["locked_until"] = *lockedUntil
	}
	return r.db.Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *userRepository) ResetLoginAttempts(id uint) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"login_attempts": 0,
		"locked_until":   nil,
	}).Error
}
