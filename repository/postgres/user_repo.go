package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskify/backend/domain"
	"github.com/taskify/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, reset_token, reset_token_expires, reset_otp, reset_otp_expires, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = domain.NormalizeEmail(user.Email)

	const query = `
	INSERT INTO users (id, name, email, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

func (r *userRepository) SetResetOTP(ctx context.Context, id, otp string, expiresAt time.Time) error {
	const query = `
	UPDATE users
	SET reset_otp = $2,
		reset_otp_expires = $3,
		reset_token = NULL,
		reset_token_expires = NULL,
		updated_at = NOW()
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, otp, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) FindByEmailAndOTP(ctx context.Context, email, otp string, reference time.Time) (*domain.User, error) {
	const query = `
	SELECT ` + userColumns + `
	FROM users
	WHERE email = lower($1)
	  AND reset_otp = $2
	  AND reset_otp_expires > $3
	`
	return scanUser(r.pool.QueryRow(ctx, query, domain.NormalizeEmail(email), otp, reference))
}

func (r *userRepository) ResetPassword(ctx context.Context, id, passwordHash string) error {
	const query = `
	UPDATE users
	SET password_hash = $2,
		reset_otp = NULL,
		reset_otp_expires = NULL,
		reset_token = NULL,
		reset_token_expires = NULL,
		updated_at = NOW()
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var (
		resetToken    *string
		resetTokenExp *time.Time
		resetOTP      *string
		resetOTPExp   *time.Time
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&resetToken,
		&resetTokenExp,
		&resetOTP,
		&resetOTPExp,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if resetToken != nil {
		user.ResetToken = *resetToken
	}
	user.ResetTokenAt = resetTokenExp
	if resetOTP != nil {
		user.ResetOTP = *resetOTP
	}
	user.ResetOTPAt = resetOTPExp
	return &user, nil
}
