package httpapi

import (
	"net/http"

	"github.com/gabayhq/gabay-backend/internal/eventlog"
	"github.com/gabayhq/gabay-backend/internal/notifications"
)

// handleListVoiceProfiles returns the caller's enrolled biometric profiles.
func (r *Router) handleListVoiceProfiles(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	profiles, err := r.store.ListVoiceProfiles(req.Context(), user.ID)
	if err != nil {
		r.logger.Printf("profiles: failed to list for %s: %v", user.ID, err)
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// handleDeleteVoiceProfile removes an enrollment, both provider-side and the
// local record. A failed provider delete aborts: a dangling remote template
// would still authenticate.
func (r *Router) handleDeleteVoiceProfile(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	voiceID := req.PathValue("id")
	if voiceID == "" {
		http.Error(w, `{"error": "profile id is required"}`, http.StatusBadRequest)
		return
	}

	owner, err := r.store.GetVoiceProfileOwner(req.Context(), voiceID)
	if err != nil || owner != user.ID {
		http.Error(w, `{"error": "profile not found"}`, http.StatusNotFound)
		return
	}

	if err := r.voiceAuth.DeleteProfile(req.Context(), voiceID); err != nil {
		r.logger.Printf("profiles: provider delete failed for %s: %v", voiceID, err)
		captureError(req, err, "voice profile delete failed")
		http.Error(w, `{"error": "profile deletion failed"}`, http.StatusBadGateway)
		return
	}

	if err := r.store.DeleteVoiceProfile(req.Context(), voiceID); err != nil {
		r.logger.Printf("profiles: failed to delete record %s: %v", voiceID, err)
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}

	// Clear the active voice if it pointed at the deleted profile.
	u, err := r.store.GetUserByID(req.Context(), user.ID)
	if err == nil && u.ActiveVoiceID != nil && *u.ActiveVoiceID == voiceID {
		if err := r.store.SetActiveVoiceID(req.Context(), user.ID, nil); err != nil {
			r.logger.Printf("profiles: failed to clear active voice for %s: %v", user.ID, err)
		}
	}

	interactionID := newInteractionID()
	r.eventLog.LogAsync(interactionID, eventlog.EventProfileDeleted, map[string]any{
		"user_id":  user.ID,
		"voice_id": voiceID,
	})
	r.notifyDevices(req, user.ID, notifications.AlertProfileDeleted, voiceID)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
