package httpapi

import (
	"encoding/json"
	"net/http"
)

// pushTokenBody is the request body shared by both push token endpoints.
// Unregister only looks at the token.
type pushTokenBody struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// pushPlatforms are the device platforms security alerts can be delivered
// to. Only ios alerts are sent today; android tokens are stored so the
// registration does not have to be repeated once FCM delivery lands.
var pushPlatforms = map[string]bool{
	"ios":     true,
	"android": true,
}

// handlePushRegister stores a device push token so voice security alerts
// (enrollments, failed verifications, profile deletions) reach the device.
func (r *Router) handlePushRegister(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var body pushTokenBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if body.Token == "" {
		http.Error(w, `{"error": "token is required"}`, http.StatusBadRequest)
		return
	}
	if !pushPlatforms[body.Platform] {
		http.Error(w, `{"error": "platform must be 'ios' or 'android'"}`, http.StatusBadRequest)
		return
	}

	if err := r.store.RegisterPushToken(req.Context(), user.ID, body.Token, body.Platform); err != nil {
		r.logger.Printf("push: register failed for user %s: %v", user.ID, err)
		http.Error(w, `{"error": "failed to register token"}`, http.StatusInternalServerError)
		return
	}

	r.logger.Printf("push: %s device registered for user %s", body.Platform, user.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handlePushUnregister drops a device push token. The token alone identifies
// the row, so a device can unregister even after its session was revoked.
func (r *Router) handlePushUnregister(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var body pushTokenBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if body.Token == "" {
		http.Error(w, `{"error": "token is required"}`, http.StatusBadRequest)
		return
	}

	if err := r.store.UnregisterPushToken(req.Context(), body.Token); err != nil {
		r.logger.Printf("push: unregister failed for user %s: %v", user.ID, err)
		http.Error(w, `{"error": "failed to unregister token"}`, http.StatusInternalServerError)
		return
	}

	r.logger.Printf("push: device unregistered for user %s", user.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
