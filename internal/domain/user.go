// Package domain contains entities and their validation rules, no I/O.
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUsernameLen  = 36
	DefaultUsername = "guest"
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

// User is the display identity attached to a websocket session.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// NewUser validates username and builds a User with the given id.
func NewUser(id UserID, username string) (*User, error) {
	u := &User{ID: id}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	return u, nil
}

// ValidateUsername trims s and checks its length.
func ValidateUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return "", ErrUsernameEmpty
	}
	if len(s) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return s, nil
}

func (u *User) SetUsername(username string) error {
	name, err := ValidateUsername(username)
	if err != nil {
		return err
	}
	u.Username = name
	return nil
}
