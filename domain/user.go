package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// ResetCredentialTTL is how long a reset OTP or reset token stays valid.
const ResetCredentialTTL = 15 * time.Minute

// User represents a registered account. Password and reset material are never
// serialized.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	ResetToken   string     `json:"-"`
	ResetTokenAt *time.Time `json:"-"`
	ResetOTP     string     `json:"-"`
	ResetOTPAt   *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateOTP returns a crypto-random 6-digit reset code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateResetToken returns the plaintext token to mail to the user and the
// SHA-256 hex digest to persist. Only the digest ever touches storage.
func GenerateResetToken() (token string, digest string, err error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	token = hex.EncodeToString(raw)
	return token, HashResetToken(token), nil
}

// HashResetToken digests a plaintext reset token for storage or lookup.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// HasActiveOTP reports whether a reset OTP is set and unexpired at reference.
func (u *User) HasActiveOTP(reference time.Time) bool {
	if u == nil || u.ResetOTP == "" || u.ResetOTPAt == nil {
		return false
	}
	return u.ResetOTPAt.After(reference)
}
