package dto

import "time"

// CaptchaChallengeResponse carries a freshly generated arithmetic challenge.
type CaptchaChallengeResponse struct {
	ChallengeID string    `json:"challenge_id"`
	Question    string    `json:"question"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginRequest is the login form.
type LoginRequest struct {
	UserID        string `json:"user_id" validate:"required,max=64"`
	Role          string `json:"role" validate:"required,oneof=student faculty admin"`
	Password      string `json:"password"`
	ChallengeID   string `json:"challenge_id" validate:"required"`
	CaptchaAnswer string `json:"captcha_answer"`
}

// IdentityResponse exposes the logged-in actor.
type IdentityResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token       string           `json:"token"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Identity    IdentityResponse `json:"identity"`
	DefaultView string           `json:"default_view"`
}

// LogoutResponse tells the client which view to reset to.
type LogoutResponse struct {
	DefaultView string `json:"default_view"`
}
