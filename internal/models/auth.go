package models

import "time"

// LoginRequest holds credentials for authenticating an account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a student account and its profile in one call.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ProfileFields
}

// ResetPasswordRequest overwrites the password of the account owning Email.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Role      Role            `json:"role"`
	Account   AccountView     `json:"account"`
	Profile   *StudentProfile `json:"profile,omitempty"`
}
