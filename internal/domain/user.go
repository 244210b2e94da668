package domain

import "time"

// User is a CMS account. In practice there is one admin, but the model
// keeps the author/admin distinction the blog API has always had.
type User struct {
	ID            uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username      string     `json:"username" gorm:"uniqueIndex;size:80;not null"`
	Email         string     `json:"email" gorm:"uniqueIndex;size:120;not null"`
	PasswordHash  string     `json:"-" gorm:"size:255;not null"`
	IsAdmin       bool       `json:"is_admin" gorm:"not null;default:false"`
	IsActive      bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login"`
	LoginAttempts int        `json:"-" gorm:"default:0"`
	LockedUntil   *time.Time `json:"-"`
}

// TableName gorm table name
func (User) TableName() string {
	return "users"
}

// IsLocked reports whether the account is locked out from failed logins
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}

// UserResponse is the user shape returned by the API
type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	IsAdmin   bool       `json:"is_admin"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// ToResponse converts to the API shape. Email is only included for the
// account owner (include_sensitive in the old API).
func (u *User) ToResponse(includeSensitive bool) *UserResponse {
	resp := &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
	if includeSensitive {
		resp.Email = u.Email
	}
	return resp
}
