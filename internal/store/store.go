package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// User represents an authenticated app user
type User struct {
	ID            string     `json:"id"`
	Phone         string     `json:"phone"`
	Name          *string    `json:"name,omitempty"`
	ActiveVoiceID *string    `json:"active_voice_id,omitempty"` // biometric profile used for login
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserSession represents a JWT session for logout/invalidation
type UserSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// GetOrCreateUser finds a user by phone, creating one on first contact.
func (s *Store) GetOrCreateUser(ctx context.Context, phone string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (phone)
		VALUES ($1)
		ON CONFLICT (phone) DO UPDATE SET updated_at = NOW()
		RETURNING id, phone, name, active_voice_id, last_login_at, created_at, updated_at
	`, phone).Scan(&u.ID, &u.Phone, &u.Name, &u.ActiveVoiceID, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID fetches a user.
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, phone, name, active_voice_id, last_login_at, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Phone, &u.Name, &u.ActiveVoiceID, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByPhone fetches a user by phone number. Returns pgx.ErrNoRows for
// unknown numbers.
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, phone, name, active_voice_id, last_login_at, created_at, updated_at
		FROM users WHERE phone = $1
	`, phone).Scan(&u.ID, &u.Phone, &u.Name, &u.ActiveVoiceID, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetActiveVoiceID records which biometric profile the user logs in with.
func (s *Store) SetActiveVoiceID(ctx context.Context, userID string, voiceID *string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET active_voice_id = $2, updated_at = NOW() WHERE id = $1
	`, userID, voiceID)
	return err
}

// MarkLogin stamps the user's last successful voice verification.
func (s *Store) MarkLogin(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1
	`, userID)
	return err
}

// CreateSession records a JWT session by token hash.
func (s *Store) CreateSession(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	return err
}

// IsSessionValid reports whether a session exists, is unexpired, and is not
// revoked.
func (s *Store) IsSessionValid(ctx context.Context, tokenHash string) (bool, error) {
	var valid bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_sessions
			WHERE token_hash = $1 AND expires_at > NOW() AND revoked_at IS NULL
		)
	`, tokenHash).Scan(&valid)
	return valid, err
}

// RevokeSession invalidates a session.
func (s *Store) RevokeSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE user_sessions SET revoked_at = NOW() WHERE token_hash = $1
	`, tokenHash)
	return err
}
