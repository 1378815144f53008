// Package models contains data models for the auth service.
package models

import "time"

// User represents a registered identity.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null"`
	ProfilePic   string    `json:"profile_pic" gorm:"column:profile_pic"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserUpdate carries a partial update. Nil fields are left unchanged.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	Role         *Role
	ProfilePic   *string
}

// Columns returns the update as a column/value map.
func (u UserUpdate) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.PasswordHash != nil {
		cols["password_hash"] = *u.PasswordHash
	}
	if u.Role != nil {
		cols["role"] = string(*u.Role)
	}
	if u.ProfilePic != nil {
		cols["profile_pic"] = *u.ProfilePic
	}
	return cols
}

// UserSummary is the subset of identity fields returned by login, token
// validation and role management.
type UserSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// Summary returns the public subset of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		ProfilePic: u.ProfilePic,
	}
}
