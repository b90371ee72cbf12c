// Package auth implements registration, login, and the OTP password-reset
// flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskify/backend/domain"
	"github.com/taskify/backend/internal/mail"
	"github.com/taskify/backend/internal/session"
	"github.com/taskify/backend/repository"
)

// MinPasswordLength is the shortest password accepted at registration and
// reset.
const MinPasswordLength = 6

type UseCase struct {
	users    repository.UserRepository
	sessions *session.Manager
	mailer   mail.Mailer
	logger   *zap.Logger

	bcryptCost int
	now        func() time.Time
}

func New(users repository.UserRepository, sessions *session.Manager, mailer mail.Mailer, bcryptCost int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:      users,
		sessions:   sessions,
		mailer:     mailer,
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register creates an account and returns the new user with a signed session
// token.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, "", domain.ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return nil, "", domain.ErrPasswordMismatch
	}
	if len(in.Password) < MinPasswordLength {
		return nil, "", domain.NewError(domain.ErrCodeInvalid,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	email := domain.NormalizeEmail(in.Email)
	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "user lookup failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.bcryptCost)
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "password hashing failed", err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
	}
	created, err := uc.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, "", domain.ErrEmailTaken
		}
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "user creation failed", err)
	}

	token, err := uc.sessions.Issue(created)
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "token issuance failed", err)
	}

	uc.logger.Info("user registered", zap.String("user_id", created.ID))
	return created, token, nil
}

// Login verifies credentials and returns the user with a signed session
// token. Unknown email and wrong password are indistinguishable to callers.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", domain.ErrMissingFields
	}

	user, err := uc.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "user lookup failed", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := uc.sessions.Issue(user)
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "token issuance failed", err)
	}
	return user, token, nil
}

// RequestPasswordReset generates and mails a 6-digit OTP. An unknown email
// still succeeds so responses carry no enumeration signal.
func (uc *UseCase) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrMissingFields
	}

	user, err := uc.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.logger.Info("reset requested for unknown email")
			return nil
		}
		return domain.WrapError(domain.ErrCodeInternal, "user lookup failed", err)
	}

	otp, err := domain.GenerateOTP()
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "otp generation failed", err)
	}

	expiresAt := uc.now().Add(domain.ResetCredentialTTL)
	if err := uc.users.SetResetOTP(ctx, user.ID, otp, expiresAt); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "otp persistence failed", err)
	}

	body := fmt.Sprintf(
		"Your OTP is %s. It expires in %d minutes.",
		otp, int(domain.ResetCredentialTTL.Minutes()),
	)
	if err := uc.mailer.Send(ctx, user.Email, "Password Reset OTP", body); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "otp mail failed", err)
	}

	uc.logger.Info("reset otp sent", zap.String("user_id", user.ID))
	return nil
}

// VerifyOTPAndReset checks {email, otp, expiry} and, when valid, replaces the
// password and clears the reset credentials.
func (uc *UseCase) VerifyOTPAndReset(ctx context.Context, email, otp, newPassword, confirmPassword string) error {
	if email == "" || otp == "" || newPassword == "" {
		return domain.ErrMissingFields
	}

	user, err := uc.users.FindByEmailAndOTP(ctx, domain.NormalizeEmail(email), otp, uc.now())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrInvalidOTP
		}
		return domain.WrapError(domain.ErrCodeInternal, "otp lookup failed", err)
	}

	if newPassword != confirmPassword {
		return domain.ErrPasswordMismatch
	}
	if len(newPassword) < MinPasswordLength {
		return domain.NewError(domain.ErrCodeInvalid,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), uc.bcryptCost)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "password hashing failed", err)
	}
	if err := uc.users.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "password reset failed", err)
	}

	uc.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

// CurrentUser loads the account behind a validated session for the dashboard.
func (uc *UseCase) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}
