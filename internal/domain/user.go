// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUserIDLen = 78 // encrypted PUUIDs are 78 chars
	MaxLabelLen  = 64
)

var (
	ErrUserIDEmpty   = errors.New("user id empty")
	ErrUserIDTooLong = errors.New("user id too long")
	ErrLabelTooLong  = errors.New("label too long")
)

type UserID string

// User is the stable player identity as supplied by the client.
// Identity is trusted as given; there is no account verification here.
type User struct {
	ID    UserID `json:"id"`
	Label string `json:"label"`
}

func NewUser(id UserID, label string) (*User, error) {
	if len(id) == 0 {
		return nil, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return nil, ErrUserIDTooLong
	}
	if len(label) > MaxLabelLen {
		return nil, ErrLabelTooLong
	}
	if label == "" {
		label = string(id)
	}
	return &User{ID: id, Label: label}, nil
}

func (u *User) SetLabel(label string) error {
	if len(label) > MaxLabelLen {
		return ErrLabelTooLong
	}
	u.Label = label
	return nil
}
