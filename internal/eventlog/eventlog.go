package eventlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventType represents the type of interaction event
type EventType string

const (
	EventVoiceCommand      EventType = "voice_command"
	EventRecognitionResult EventType = "recognition_result"
	EventRecognitionError  EventType = "recognition_error"
	EventIntentResolved    EventType = "intent_resolved"
	EventIntentNoSignal    EventType = "intent_no_signal"
	EventIntentError       EventType = "intent_error"
	EventDispatchAction    EventType = "dispatch_action"
	EventSynthesisDone     EventType = "synthesis_completed"
	EventSynthesisError    EventType = "synthesis_error"
	EventOCRExtracted      EventType = "ocr_extracted"
	EventVoiceEnrolled     EventType = "voice_enrolled"
	EventVoiceVerified     EventType = "voice_verified"
	EventVoiceVerifyFailed EventType = "voice_verify_failed"
	EventProfileDeleted    EventType = "voice_profile_deleted"
)

// Logger provides interaction event logging to the database. Events double
// as the personalization signal: frequently used features are derived from
// them.
type Logger struct {
	db *pgxpool.Pool
}

// New creates a new event logger
func New(db *pgxpool.Pool) *Logger {
	return &Logger{db: db}
}

// Log writes an event to the database synchronously
func (l *Logger) Log(ctx context.Context, interactionID string, eventType EventType, data map[string]any) error {
	if l.db == nil || interactionID == "" {
		return nil // Silently skip if no DB or interaction ID
	}

	dataJSON, err := json.Marshal(data)
	if err != nil {
		dataJSON = []byte("{}")
	}

	_, err = l.db.Exec(ctx, `
		INSERT INTO interaction_events (interaction_id, event_type, event_data)
		VALUES ($1, $2, $3)
	`, interactionID, string(eventType), dataJSON)

	return err
}

// LogAsync logs an event without blocking the caller
func (l *Logger) LogAsync(interactionID string, eventType EventType, data map[string]any) {
	if l.db == nil || interactionID == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.Log(ctx, interactionID, eventType, data)
	}()
}
