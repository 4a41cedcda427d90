package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/gabayhq/gabay-backend/internal/assistant"
	"github.com/gabayhq/gabay-backend/internal/eventlog"
	"github.com/gabayhq/gabay-backend/internal/notifications"
	"github.com/gabayhq/gabay-backend/internal/ocr"
	"github.com/gabayhq/gabay-backend/internal/store"
	"github.com/gabayhq/gabay-backend/internal/synthesis"
	"github.com/gabayhq/gabay-backend/internal/voiceauth"
)

type RouterConfig struct {
	// JWT Authentication
	JWTSecret string
	JWTExpiry time.Duration

	// Directory synthesized audio is served from
	MediaDir string
}

// Deps are the services the handlers run on. The cloud clients arrive as
// interfaces; whether they are real or simulated is decided at wiring time.
type Deps struct {
	Store     *store.Store
	Events    *eventlog.Logger
	Pipeline  *assistant.Pipeline
	OCR       ocr.Client
	Synth     synthesis.Client
	VoiceAuth voiceauth.Client
	APNs      *notifications.APNsClient
	Discord   *notifications.Discord
}

type Router struct {
	cfg       RouterConfig
	logger    *log.Logger
	store     *store.Store
	eventLog  *eventlog.Logger
	pipeline  *assistant.Pipeline
	ocr       ocr.Client
	synth     synthesis.Client
	voiceAuth voiceauth.Client
	apns      *notifications.APNsClient
	discord   *notifications.Discord
	mux       *http.ServeMux
}

func NewRouter(cfg RouterConfig, logger *log.Logger, deps Deps) http.Handler {
	r := &Router{
		cfg:       cfg,
		logger:    logger,
		store:     deps.Store,
		eventLog:  deps.Events,
		pipeline:  deps.Pipeline,
		ocr:       deps.OCR,
		synth:     deps.Synth,
		voiceAuth: deps.VoiceAuth,
		apns:      deps.APNs,
		discord:   deps.Discord,
		mux:       http.NewServeMux(),
	}

	r.routes()
	return withSentryRecovery(withCORS(r.mux))
}

func (r *Router) routes() {
	// Health check
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)

	// Voice auth endpoints (public - the voiceprint is the credential)
	r.mux.HandleFunc("POST /auth/voice/enroll", r.handleVoiceEnroll)
	r.mux.HandleFunc("POST /auth/voice/verify", r.handleVoiceVerify)
	r.mux.HandleFunc("POST /auth/logout", r.withAuth(r.handleLogout))

	// Protected API endpoints
	r.mux.HandleFunc("GET /api/me", r.withAuth(r.handleGetMe))
	r.mux.HandleFunc("POST /api/voice/command", r.withAuth(r.handleVoiceCommand))
	r.mux.HandleFunc("GET /stream", r.withAuth(r.handleStreamWS))
	r.mux.HandleFunc("POST /api/ocr", r.withAuth(r.handleOCR))

	// Speech synthesis
	r.mux.HandleFunc("GET /api/voices", r.withAuth(r.handleListVoices))
	r.mux.HandleFunc("POST /api/tts", r.withAuth(r.handleSynthesize))

	// Voice biometric profiles (protected)
	r.mux.HandleFunc("GET /api/voice-profiles", r.withAuth(r.handleListVoiceProfiles))
	r.mux.HandleFunc("DELETE /api/voice-profiles/{id}", r.withAuth(r.handleDeleteVoiceProfile))

	// Preferences and personalization (protected)
	r.mux.HandleFunc("GET /api/preferences", r.withAuth(r.handleGetPreferences))
	r.mux.HandleFunc("PUT /api/preferences", r.withAuth(r.handleSavePreferences))

	// Push notifications (protected)
	r.mux.HandleFunc("POST /api/push/register", r.withAuth(r.handlePushRegister))
	r.mux.HandleFunc("POST /api/push/unregister", r.withAuth(r.handlePushUnregister))

	// Synthesized audio files
	r.mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(r.cfg.MediaDir))))
}

func (r *Router) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withSentryRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(req)
				hub.RecoverWithContext(req.Context(), err)
				hub.Flush(2 * time.Second)
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// captureError sends an error to Sentry with request context
func captureError(req *http.Request, err error, msg string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetExtra("message", msg)
		sentry.CaptureException(err)
	})
}

// newInteractionID mints an opaque id correlating the events of one command.
func newInteractionID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UTC().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(b[:])
}
