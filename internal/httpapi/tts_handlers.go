package httpapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabayhq/gabay-backend/internal/eventlog"
	"github.com/gabayhq/gabay-backend/internal/synthesis"
)

// handleListVoices returns the available TTS voices.
func (r *Router) handleListVoices(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"voices":  synthesis.Voices,
		"default": synthesis.DefaultVoiceID,
	})
}

// handleSynthesize renders arbitrary text to speech, for reading OCR results
// and screen content aloud.
func (r *Router) handleSynthesize(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var body struct {
		Text    string `json:"text"`
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		http.Error(w, `{"error": "text is required"}`, http.StatusBadRequest)
		return
	}

	voiceID := body.VoiceID
	if voiceID == "" {
		voiceID = r.preferredVoice(req, user.ID)
	}
	voice := synthesis.ResolveVoice(voiceID)

	path, err := r.synth.Synthesize(req.Context(), body.Text, voice.ID)
	if err != nil {
		r.logger.Printf("tts: synthesis failed for user %s: %v", user.ID, err)
		captureError(req, err, "tts synthesis failed")
		http.Error(w, `{"error": "speech synthesis failed"}`, http.StatusBadGateway)
		return
	}

	interactionID := newInteractionID()
	r.eventLog.LogAsync(interactionID, eventlog.EventSynthesisDone, map[string]any{
		"user_id":  user.ID,
		"voice_id": voice.ID,
		"path":     path,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"audio_url": "/media/" + filepath.Base(path),
		"voice":     voice,
	})
}
