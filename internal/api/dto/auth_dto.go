package dto

import "time"

// LoginRequest payload for admin login.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,min=7,max=20"`
	Password    string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminResponse describes the logged-in operator.
type AdminResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}
