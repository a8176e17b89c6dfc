// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a stored account. PasswordHash never leaves the server.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the outward projection of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Public strips the password hash.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, UserName: u.UserName, Email: u.Email, CreatedAt: u.CreatedAt}
}
