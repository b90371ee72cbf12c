package repository

import (
	"context"
	"time"

	"github.com/taskify/backend/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByEmail matches case-insensitively and returns
	// domain.ErrUserNotFound when no row exists.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// SetResetOTP stores a reset code with its expiry, replacing any
	// previous reset credential.
	SetResetOTP(ctx context.Context, id, otp string, expiresAt time.Time) error
	// FindByEmailAndOTP returns the user only when the stored OTP matches
	// and has not expired at the reference instant.
	FindByEmailAndOTP(ctx context.Context, email, otp string, reference time.Time) (*domain.User, error)
	// ResetPassword swaps the password hash and clears all reset
	// credentials in the same statement.
	ResetPassword(ctx context.Context, id, passwordHash string) error
}
