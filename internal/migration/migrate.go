package migration

import (
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/minigolfeveryday/mged-site/internal/domain"
	"github.com/minigolfeveryday/mged-site/pkg/logger"
)

// Run executes AutoMigrate for all tables and seeds the admin account
// when the users table is empty
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.BlogPost{},
		&domain.Video{},
	); err != nil {
		return err
	}

	var count int64
	db.Model(&domain.User{}).Count(&count)
	if count == 0 {
		return seedAdmin(db)
	}
	return nil
}

// seedAdmin creates the initial admin. The password comes from
// ADMIN_PASSWORD; without it no account is created and login stays
// impossible until one is seeded by hand.
func seedAdmin(db *gorm.DB) error {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		logger.Warn("ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@minigolfeveryday.com"
	}

	admin := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("seeded admin account %s", username)
	return nil
}
