package auth

import "errors"

// Verification errors
var (
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrInvalidCode  = errors.New("invalid verification code")
	ErrCodeExpired  = errors.New("verification code has expired")
	ErrMaxAttempts  = errors.New("maximum verification attempts exceeded")
)

// Token errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token has expired")
)
