package httpapi

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabayhq/gabay-backend/internal/assistant"
	"github.com/gabayhq/gabay-backend/internal/eventlog"
	"github.com/gabayhq/gabay-backend/internal/synthesis"
)

// preferredVoice resolves the caller's TTS voice, falling back to the default
// when preferences can't be loaded.
func (r *Router) preferredVoice(req *http.Request, userID string) string {
	prefs, err := r.store.GetPreferences(req.Context(), userID)
	if err != nil {
		r.logger.Printf("voice: failed to load preferences for %s: %v", userID, err)
		return synthesis.DefaultVoiceID
	}
	return prefs.PreferredVoice
}

// commandResponse is the wire shape of a processed voice command.
type commandResponse struct {
	InteractionID string  `json:"interaction_id"`
	Transcript    string  `json:"transcript"`
	Confidence    float64 `json:"confidence"`
	Intent        any     `json:"intent"`
	Action        any     `json:"action"`
	AudioURL      string  `json:"audio_url,omitempty"`
}

func commandResponseFrom(interactionID string, outcome assistant.Outcome) commandResponse {
	resp := commandResponse{
		InteractionID: interactionID,
		Transcript:    outcome.Transcript,
		Confidence:    outcome.Confidence,
		Intent:        outcome.Intent,
		Action:        outcome.Action,
	}
	if outcome.AudioPath != "" {
		resp.AudioURL = "/media/" + filepath.Base(outcome.AudioPath)
	}
	return resp
}

// handleVoiceCommand runs one voice command through the pipeline. Accepts
// either a multipart form with an "audio" part, or a JSON body with a typed
// "text" command.
func (r *Router) handleVoiceCommand(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	interactionID := newInteractionID()

	contentType := req.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(body.Text) == "" {
			http.Error(w, `{"error": "text is required"}`, http.StatusBadRequest)
			return
		}
		voiceID := r.preferredVoice(req, user.ID)

		r.eventLog.LogAsync(interactionID, eventlog.EventVoiceCommand, map[string]any{
			"user_id": user.ID,
			"source":  "text",
		})

		outcome, err := r.pipeline.RunText(req.Context(), interactionID, body.Text, voiceID)
		if err != nil {
			r.respondCommandError(w, req, interactionID, outcome, err)
			return
		}
		writeJSON(w, http.StatusOK, commandResponseFrom(interactionID, outcome))
		return
	}

	audio, err := readAudioUpload(req)
	if err != nil {
		http.Error(w, `{"error": "audio is required"}`, http.StatusBadRequest)
		return
	}
	if audio.Size() == 0 {
		http.Error(w, `{"error": "audio is empty"}`, http.StatusBadRequest)
		return
	}
	voiceID := r.preferredVoice(req, user.ID)

	r.eventLog.LogAsync(interactionID, eventlog.EventVoiceCommand, map[string]any{
		"user_id": user.ID,
		"source":  "audio",
		"bytes":   audio.Size(),
	})

	outcome, err := r.pipeline.Run(req.Context(), interactionID, audio, voiceID)
	if err != nil {
		r.respondCommandError(w, req, interactionID, outcome, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponseFrom(interactionID, outcome))
}

// respondCommandError reports a pipeline failure. Only synthesis failures
// reach here; the resolved action still rides along so the app can show the
// text even without audio.
func (r *Router) respondCommandError(w http.ResponseWriter, req *http.Request, interactionID string, outcome assistant.Outcome, err error) {
	r.logger.Printf("voice: command %s failed: %v", interactionID, err)
	captureError(req, err, "voice command pipeline failed")

	resp := commandResponseFrom(interactionID, outcome)
	writeJSON(w, http.StatusBadGateway, map[string]any{
		"error":  "speech synthesis failed",
		"result": resp,
	})
}
