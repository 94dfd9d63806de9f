package models

import "time"

type Admin struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	TOTPSecret   *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Admin) TOTPEnabled() bool {
	return a.TOTPSecret != nil && *a.TOTPSecret != ""
}
