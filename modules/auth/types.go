package auth

import (
	"time"
)

// UserPayload is the wire representation of a user returned by auth services.
type UserPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

// SignUpRequest is the request for the signup service.
type SignUpRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// SignInRequest is the request for the signin service.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the response for signup and signin.
type AuthResponse struct {
	User      UserPayload `json:"user"`
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
}

// ValidateTokenRequest is the request for the validate-token service.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse is the response for the validate-token service.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserRequest is the request for the get-user service.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse is the response for the get-user service.
type GetUserResponse struct {
	User UserPayload `json:"user"`
}
