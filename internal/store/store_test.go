package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// getTestDB returns a database pool for testing.
// Skips the test if DATABASE_URL is not set.
func getTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	return db
}

func TestUserAndSessionOperations(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	user, err := s.GetOrCreateUser(ctx, "+639171234567")
	if err != nil {
		t.Fatalf("GetOrCreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Error("user ID should not be empty")
	}

	// Creating again with the same phone returns the same user.
	again, err := s.GetOrCreateUser(ctx, "+639171234567")
	if err != nil {
		t.Fatalf("second GetOrCreateUser failed: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("user ID changed on repeat lookup: %q vs %q", again.ID, user.ID)
	}

	tokenHash := "testhash-" + user.ID
	if err := s.CreateSession(ctx, user.ID, tokenHash, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	valid, err := s.IsSessionValid(ctx, tokenHash)
	if err != nil {
		t.Fatalf("IsSessionValid failed: %v", err)
	}
	if !valid {
		t.Error("fresh session should be valid")
	}

	if err := s.RevokeSession(ctx, tokenHash); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	valid, err = s.IsSessionValid(ctx, tokenHash)
	if err != nil {
		t.Fatalf("IsSessionValid after revoke failed: %v", err)
	}
	if valid {
		t.Error("revoked session should be invalid")
	}
}

func TestVoiceProfileOperations(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	user, err := s.GetOrCreateUser(ctx, "+639179999999")
	if err != nil {
		t.Fatalf("GetOrCreateUser failed: %v", err)
	}

	profile, err := s.CreateVoiceProfile(ctx, user.ID, "vp-test-1", "active")
	if err != nil {
		t.Fatalf("CreateVoiceProfile failed: %v", err)
	}
	if profile.Status != "active" {
		t.Errorf("status = %q, want active", profile.Status)
	}

	owner, err := s.GetVoiceProfileOwner(ctx, "vp-test-1")
	if err != nil {
		t.Fatalf("GetVoiceProfileOwner failed: %v", err)
	}
	if owner != user.ID {
		t.Errorf("owner = %q, want %q", owner, user.ID)
	}

	profiles, err := s.ListVoiceProfiles(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListVoiceProfiles failed: %v", err)
	}
	if len(profiles) == 0 {
		t.Error("expected at least one profile")
	}

	if err := s.DeleteVoiceProfile(ctx, "vp-test-1"); err != nil {
		t.Fatalf("DeleteVoiceProfile failed: %v", err)
	}
}

func TestPreferencesDefaults(t *testing.T) {
	prefs := defaultPreferences()

	if prefs.PreferredVoice != "en_us_female_1" {
		t.Errorf("PreferredVoice = %q", prefs.PreferredVoice)
	}
	if prefs.SpeechRate != 1.0 {
		t.Errorf("SpeechRate = %v", prefs.SpeechRate)
	}
	if !prefs.Accessibility.LargeText || !prefs.Accessibility.ScreenReader {
		t.Error("accessibility defaults should favor assistive settings")
	}
	if prefs.Accessibility.HighContrast {
		t.Error("high contrast should default off")
	}
}
