package httpapi

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/websocket"

	"github.com/gabayhq/gabay-backend/internal/capture"
	"github.com/gabayhq/gabay-backend/internal/eventlog"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Stream message types. The client drives the session with small JSON control
// frames; audio rides in binary frames between "start" and "stop".
type streamControl struct {
	Event string `json:"event"` // start, stop, discard
}

type streamResult struct {
	Event  string           `json:"event"` // result, error
	Result *commandResponse `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// handleStreamWS ingests streamed microphone audio over a websocket. Each
// start/stop pair is one capture session and produces one pipeline result on
// the same connection, so the client can chain commands without reconnecting.
func (r *Router) handleStreamWS(w http.ResponseWriter, req *http.Request) {
	user := getAuthUser(req.Context())
	if user == nil {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Printf("stream: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var session *capture.Session
	defer func() {
		if session != nil && session.State() == capture.StateRecording {
			session.Discard()
		}
	}()

	writeResult := func(res streamResult) {
		if err := conn.WriteJSON(res); err != nil {
			r.logger.Printf("stream: write failed: %v", err)
		}
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Printf("stream: connection closed unexpectedly: %v", err)
			}
			return
		}

		if msgType == websocket.BinaryMessage {
			if session == nil || session.State() != capture.StateRecording {
				continue // frames before start are dropped
			}
			if _, err := session.Write(data); err != nil {
				r.logger.Printf("stream: frame write failed: %v", err)
				writeResult(streamResult{Event: "error", Error: "capture write failed"})
				session.Discard()
				session = nil
			}
			continue
		}

		var ctl streamControl
		if err := json.Unmarshal(data, &ctl); err != nil {
			writeResult(streamResult{Event: "error", Error: "invalid control frame"})
			continue
		}

		switch ctl.Event {
		case "start":
			// A start while recording abandons the in-flight capture; its
			// spool file must be released before the replacement opens.
			if session != nil && session.State() == capture.StateRecording {
				session.Discard()
			}
			session = capture.NewSession(r.cfg.MediaDir)
			if err := session.Start(); err != nil {
				r.logger.Printf("stream: capture start failed: %v", err)
				writeResult(streamResult{Event: "error", Error: "could not start capture"})
				session = nil
			}

		case "stop":
			if session == nil {
				writeResult(streamResult{Event: "error", Error: "no active capture"})
				continue
			}
			path, err := session.Stop()
			session = nil
			if err != nil {
				r.logger.Printf("stream: capture stop failed: %v", err)
				writeResult(streamResult{Event: "error", Error: "could not stop capture"})
				continue
			}

			blob, err := capture.ReadBlob(path)
			_ = os.Remove(path) // spool file is consumed by this one command
			if err != nil {
				writeResult(streamResult{Event: "error", Error: "could not read capture"})
				continue
			}

			interactionID := newInteractionID()
			r.eventLog.LogAsync(interactionID, eventlog.EventVoiceCommand, map[string]any{
				"user_id": user.ID,
				"source":  "stream",
				"bytes":   blob.Size(),
			})

			// Preferences are re-read per command so a voice change made in
			// another tab applies without reconnecting.
			outcome, err := r.pipeline.Run(req.Context(), interactionID, blob, r.preferredVoice(req, user.ID))
			resp := commandResponseFrom(interactionID, outcome)
			if err != nil {
				r.logger.Printf("stream: command %s failed: %v", interactionID, err)
				captureError(req, err, "streamed voice command failed")
				writeResult(streamResult{
					Event:  "error",
					Error:  "speech synthesis failed",
					Result: &resp,
				})
				continue
			}
			writeResult(streamResult{Event: "result", Result: &resp})

		case "discard":
			if session != nil {
				session.Discard()
				session = nil
			}

		default:
			writeResult(streamResult{Event: "error", Error: "unknown event"})
		}
	}
}
