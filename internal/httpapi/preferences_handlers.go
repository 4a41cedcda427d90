package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gabayhq/gabay-backend/internal/store"
	"github.com/gabayhq/gabay-backend/internal/synthesis"
)

// handleGetPreferences returns the caller's preferences along with their most
// used features, derived from the interaction event history.
func (r *Router) handleGetPreferences(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	prefs, err := r.store.GetPreferences(req.Context(), user.ID)
	if err != nil {
		r.logger.Printf("preferences: failed to load for %s: %v", user.ID, err)
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}

	frequent, err := r.store.FrequentFeatures(req.Context(), user.ID, 4)
	if err != nil {
		r.logger.Printf("preferences: failed to load frequent features for %s: %v", user.ID, err)
		frequent = nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"preferences":       prefs,
		"frequent_features": frequent,
	})
}

// handleSavePreferences replaces the caller's preferences.
func (r *Router) handleSavePreferences(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var prefs store.Preferences
	if err := json.NewDecoder(req.Body).Decode(&prefs); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}

	// Unknown voices collapse to the default rather than erroring, matching
	// the synthesis fallback.
	prefs.PreferredVoice = synthesis.ResolveVoice(prefs.PreferredVoice).ID

	if prefs.SpeechRate < 0.5 || prefs.SpeechRate > 2.0 {
		http.Error(w, `{"error": "speechRate must be between 0.5 and 2.0"}`, http.StatusBadRequest)
		return
	}

	if err := r.store.SavePreferences(req.Context(), user.ID, prefs); err != nil {
		r.logger.Printf("preferences: failed to save for %s: %v", user.ID, err)
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"preferences": prefs})
}
