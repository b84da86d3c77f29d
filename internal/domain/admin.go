package domain

import "time"

// Admin is an operator of the marketplace admin console.
type Admin struct {
	ID           string
	Name         string
	PhoneNumber  string
	PasswordHash string
	Role         AdminRole
	Active       bool
	CreatedAt    time.Time
}
