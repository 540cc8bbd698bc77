package models

import (
	"time"
)

// User is the administrative principal that can log in
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
}

// UserDTO is the outward representation of a user; the digest never leaves
// the service.
type UserDTO struct {
	UUID      string     `json:"uuid"`
	Email     string     `json:"email"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login"`
}

// ToDTO converts a user for API responses
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		UUID:      u.ID,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// UserCSV represents a user record from CSV import
type UserCSV struct {
	ID       string `csv:"id"`
	Email    string `csv:"email"`
	Password string `csv:"password"`
	IsActive string `csv:"is_active"` // CSV uses string "true"/"false"
}
