package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

// AccessibilitySettings are the user's display and reading aids.
type AccessibilitySettings struct {
	HighContrast bool `json:"highContrast"`
	LargeText    bool `json:"largeText"`
	ReduceMotion bool `json:"reduceMotion"`
	ScreenReader bool `json:"screenReader"`
}

// Preferences personalize the voice experience per user.
type Preferences struct {
	PreferredVoice string                `json:"preferredVoice"`
	SpeechRate     float64               `json:"speechRate"`
	Accessibility  AccessibilitySettings `json:"accessibilitySettings"`
}

// defaultPreferences mirror the app's out-of-the-box personalization.
func defaultPreferences() Preferences {
	return Preferences{
		PreferredVoice: "en_us_female_1",
		SpeechRate:     1.0,
		Accessibility: AccessibilitySettings{
			LargeText:    true,
			ReduceMotion: true,
			ScreenReader: true,
		},
	}
}

// GetPreferences returns the user's preferences, or defaults when none have
// been saved yet.
func (s *Store) GetPreferences(ctx context.Context, userID string) (Preferences, error) {
	var raw []byte
	err := s.db.QueryRow(ctx, `
		SELECT preferences FROM user_preferences WHERE user_id = $1
	`, userID).Scan(&raw)
	if err == pgx.ErrNoRows {
		return defaultPreferences(), nil
	}
	if err != nil {
		return Preferences{}, err
	}

	prefs := defaultPreferences()
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return defaultPreferences(), nil
	}
	return prefs, nil
}

// SavePreferences upserts the user's preferences.
func (s *Store) SavePreferences(ctx context.Context, userID string, prefs Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO user_preferences (user_id, preferences)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = EXCLUDED.preferences,
			updated_at = NOW()
	`, userID, raw)
	return err
}

// FrequentFeatures derives the user's most used voice features from the
// interaction log.
func (s *Store) FrequentFeatures(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT event_data->>'intent' AS intent, COUNT(*) AS uses
		FROM interaction_events
		WHERE event_type = 'intent_resolved'
		  AND event_data->>'user_id' = $1
		  AND event_data->>'intent' IS NOT NULL
		GROUP BY intent
		ORDER BY uses DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []string
	for rows.Next() {
		var intent string
		var uses int
		if err := rows.Scan(&intent, &uses); err != nil {
			return nil, err
		}
		features = append(features, intent)
	}
	return features, rows.Err()
}
