package store

import (
	"context"
	"time"
)

// VoiceProfile is the local record of a biometric enrollment; the template
// itself lives with the provider, we keep the mapping and status.
type VoiceProfile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	VoiceID   string    `json:"voice_id"` // provider-side profile id
	Status    string    `json:"status"`   // active, pending, failed
	CreatedAt time.Time `json:"created_at"`
}

// CreateVoiceProfile records an enrollment.
func (s *Store) CreateVoiceProfile(ctx context.Context, userID, voiceID, status string) (*VoiceProfile, error) {
	var p VoiceProfile
	err := s.db.QueryRow(ctx, `
		INSERT INTO voice_profiles (user_id, voice_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, voice_id, status, created_at
	`, userID, voiceID, status).Scan(&p.ID, &p.UserID, &p.VoiceID, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListVoiceProfiles returns a user's enrollments, newest first.
func (s *Store) ListVoiceProfiles(ctx context.Context, userID string) ([]VoiceProfile, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, voice_id, status, created_at
		FROM voice_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []VoiceProfile
	for rows.Next() {
		var p VoiceProfile
		if err := rows.Scan(&p.ID, &p.UserID, &p.VoiceID, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// GetVoiceProfileOwner returns the user id that owns a provider voice id.
func (s *Store) GetVoiceProfileOwner(ctx context.Context, voiceID string) (string, error) {
	var userID string
	err := s.db.QueryRow(ctx, `
		SELECT user_id FROM voice_profiles WHERE voice_id = $1
	`, voiceID).Scan(&userID)
	return userID, err
}

// DeleteVoiceProfile removes the local record of an enrollment.
func (s *Store) DeleteVoiceProfile(ctx context.Context, voiceID string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM voice_profiles WHERE voice_id = $1
	`, voiceID)
	return err
}
