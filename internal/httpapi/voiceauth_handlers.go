package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gabayhq/gabay-backend/internal/capture"
	"github.com/gabayhq/gabay-backend/internal/eventlog"
	"github.com/gabayhq/gabay-backend/internal/notifications"
)

// maxAudioUpload caps voice sample uploads at 10 MB.
const maxAudioUpload = 10 << 20

// readAudioUpload pulls the "audio" part out of a multipart form.
func readAudioUpload(req *http.Request) (capture.Blob, error) {
	if err := req.ParseMultipartForm(maxAudioUpload); err != nil {
		return capture.Blob{}, fmt.Errorf("invalid multipart form: %w", err)
	}
	file, header, err := req.FormFile("audio")
	if err != nil {
		return capture.Blob{}, fmt.Errorf("missing audio part: %w", err)
	}
	defer file.Close()

	return capture.BlobFromReader(file, header.Header.Get("Content-Type"))
}

// notifyDevices pushes a security alert to all of the user's registered
// devices. Best effort; failures are logged, never surfaced.
func (r *Router) notifyDevices(req *http.Request, userID string, alert notifications.SecurityAlertType, voiceProfileID string) {
	tokens, err := r.store.GetUserPushTokens(req.Context(), userID)
	if err != nil {
		r.logger.Printf("voiceauth: failed to load push tokens for %s: %v", userID, err)
		return
	}
	for _, t := range tokens {
		if t.Platform != "ios" {
			continue
		}
		if err := r.apns.SendSecurityAlert(t.Token, alert, voiceProfileID); err != nil {
			r.logger.Printf("voiceauth: push to device failed: %v", err)
		}
	}
}

// handleVoiceEnroll registers a voice biometric profile. The voiceprint is
// the credential, so this endpoint is public: a new phone number plus a voice
// sample creates the account.
func (r *Router) handleVoiceEnroll(w http.ResponseWriter, req *http.Request) {
	phone := req.FormValue("phone")
	if !isValidE164(phone) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid phone format, use E.164 (e.g., +639171234567)",
		})
		return
	}

	audio, err := readAudioUpload(req)
	if err != nil {
		http.Error(w, `{"error": "audio sample is required"}`, http.StatusBadRequest)
		return
	}
	if audio.Size() == 0 {
		http.Error(w, `{"error": "audio sample is empty"}`, http.StatusBadRequest)
		return
	}
	phrase := req.FormValue("phrase")

	user, err := r.store.GetOrCreateUser(req.Context(), phone)
	if err != nil {
		r.logger.Printf("voiceauth: failed to find/create user for %s: %v", phone, err)
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}

	existing, err := r.store.ListVoiceProfiles(req.Context(), user.ID)
	if err != nil {
		r.logger.Printf("voiceauth: failed to list profiles for %s: %v", user.ID, err)
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}

	result, err := r.voiceAuth.Enroll(req.Context(), user.ID, audio, phrase)
	if err != nil {
		r.logger.Printf("voiceauth: enrollment failed for %s: %v", user.ID, err)
		captureError(req, err, "voice enrollment failed")
		http.Error(w, `{"error": "voice enrollment failed"}`, http.StatusBadGateway)
		return
	}

	profile, err := r.store.CreateVoiceProfile(req.Context(), user.ID, result.VoiceID, "active")
	if err != nil {
		r.logger.Printf("voiceauth: failed to persist profile %s: %v", result.VoiceID, err)
		http.Error(w, `{"error": "database error"}`, http.StatusInternalServerError)
		return
	}
	if err := r.store.SetActiveVoiceID(req.Context(), user.ID, &result.VoiceID); err != nil {
		r.logger.Printf("voiceauth: failed to set active voice for %s: %v", user.ID, err)
	}

	interactionID := newInteractionID()
	r.eventLog.LogAsync(interactionID, eventlog.EventVoiceEnrolled, map[string]any{
		"user_id":  user.ID,
		"voice_id": result.VoiceID,
	})

	r.notifyDevices(req, user.ID, notifications.AlertVoiceEnrolled, result.VoiceID)
	if len(existing) == 0 {
		r.discord.NotifyNewUser(req.Context(), phone)
	}

	r.logger.Printf("voiceauth: enrolled voice %s for user %s", result.VoiceID, user.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"voice_id": result.VoiceID,
		"profile":  profile,
		"user":     user,
	})
}

// handleVoiceVerify scores a voice sample against the user's active profile
// and issues a JWT session when it passes.
func (r *Router) handleVoiceVerify(w http.ResponseWriter, req *http.Request) {
	phone := req.FormValue("phone")
	if !isValidE164(phone) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid phone format",
		})
		return
	}

	audio, err := readAudioUpload(req)
	if err != nil {
		http.Error(w, `{"error": "audio sample is required"}`, http.StatusBadRequest)
		return
	}
	phrase := req.FormValue("phrase")

	user, err := r.store.GetUserByPhone(req.Context(), phone)
	if err != nil {
		// Same response as a failed match so the endpoint doesn't leak which
		// numbers are enrolled.
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "voice verification failed",
		})
		return
	}
	if user.ActiveVoiceID == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "no voice profile enrolled",
		})
		return
	}

	interactionID := newInteractionID()
	result, err := r.voiceAuth.Verify(req.Context(), *user.ActiveVoiceID, audio, phrase)
	if err != nil {
		r.logger.Printf("voiceauth: verification failed for %s: %v", user.ID, err)
		captureError(req, err, "voice verification failed")
		http.Error(w, `{"error": "voice verification unavailable"}`, http.StatusBadGateway)
		return
	}

	if !result.Verified {
		r.eventLog.LogAsync(interactionID, eventlog.EventVoiceVerifyFailed, map[string]any{
			"user_id":    user.ID,
			"confidence": result.Confidence,
		})
		r.notifyDevices(req, user.ID, notifications.AlertVerifyFailed, *user.ActiveVoiceID)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error":      "voice verification failed",
			"confidence": result.Confidence,
		})
		return
	}

	token, expiresAt, err := r.generateJWT(user)
	if err != nil {
		r.logger.Printf("voiceauth: failed to generate JWT: %v", err)
		http.Error(w, `{"error": "failed to create session"}`, http.StatusInternalServerError)
		return
	}

	tokenHash := hashToken(token)
	if err := r.store.CreateSession(req.Context(), user.ID, tokenHash, expiresAt); err != nil {
		r.logger.Printf("voiceauth: failed to store session: %v", err)
		http.Error(w, `{"error": "failed to create session"}`, http.StatusInternalServerError)
		return
	}
	if err := r.store.MarkLogin(req.Context(), user.ID); err != nil {
		r.logger.Printf("voiceauth: failed to mark login for %s: %v", user.ID, err)
	}

	r.eventLog.LogAsync(interactionID, eventlog.EventVoiceVerified, map[string]any{
		"user_id":    user.ID,
		"confidence": result.Confidence,
	})

	r.logger.Printf("voiceauth: user %s verified (confidence %.2f)", user.ID, result.Confidence)
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
		"confidence": result.Confidence,
		"user":       user,
	})
}

// handleLogout revokes the current session
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	authHeader := req.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		tokenHash := hashToken(parts[1])
		_ = r.store.RevokeSession(req.Context(), tokenHash)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleGetMe returns the current user's data
func (r *Router) handleGetMe(w http.ResponseWriter, req *http.Request) {
	authUser := getAuthUser(req.Context())
	if authUser == nil {
		http.Error(w, `{"error": "not authenticated"}`, http.StatusUnauthorized)
		return
	}

	user, err := r.store.GetUserByID(req.Context(), authUser.ID)
	if err != nil {
		http.Error(w, `{"error": "user not found"}`, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
