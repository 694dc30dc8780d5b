package domain

import "time"

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	PhoneNumber  string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
