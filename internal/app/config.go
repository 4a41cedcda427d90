package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr      string
	PublicBaseURL string
	DatabaseURL   string
	LogLevel      string

	// Alibaba Cloud credentials
	AlibabaAccessKeyID     string
	AlibabaAccessKeySecret string
	AlibabaNLSAppKey       string
	AlibabaNLSToken        string // optional static NLS token, skips the token endpoint

	// Service endpoints (defaults point at the Singapore region gateway)
	NLSTokenEndpoint  string
	ASREndpoint       string
	TTSEndpoint       string
	NLPEndpoint       string
	OCREndpoint       string
	VoiceEndpoint     string
	VoiceAuthEndpoint string // OAuth token URL for the voiceprint service

	// Simulation fallback
	UseRealAPIs           bool
	SimulationDelay       time.Duration
	SimulationSuccessRate float64

	// Synthesized audio output
	MediaDir string

	// JWT Authentication
	JWTSecret string
	JWTExpiry time.Duration

	// Apple push notifications
	APNsKeyPath    string
	APNsKeyID      string
	APNsTeamID     string
	APNsBundleID   string
	APNsProduction bool

	// Ops webhook
	DiscordWebhookURL string

	// Error monitoring
	SentryDSN string
}

func LoadConfigFromEnv() Config {
	jwtExpiry, err := time.ParseDuration(getenv("JWT_EXPIRY", "24h"))
	if err != nil {
		jwtExpiry = 24 * time.Hour
	}

	simDelayMs := getenvIntClamped("SIMULATION_DELAY_MS", 1500, 0, 10000)
	simRate := getenvFloatClamped("SIMULATION_SUCCESS_RATE", 0.9, 0.0, 1.0)

	return Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		PublicBaseURL: getenv("PUBLIC_BASE_URL", "http://localhost:8080"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		LogLevel:      getenv("LOG_LEVEL", "info"),

		// Alibaba Cloud credentials
		AlibabaAccessKeyID:     getenv("ALIBABA_ACCESS_KEY_ID", ""),
		AlibabaAccessKeySecret: getenv("ALIBABA_ACCESS_KEY_SECRET", ""),
		AlibabaNLSAppKey:       getenv("ALIBABA_NLS_APP_KEY", ""),
		AlibabaNLSToken:        getenv("ALIBABA_NLS_TOKEN", ""),

		// Service endpoints
		NLSTokenEndpoint:  getenv("NLS_TOKEN_ENDPOINT", "https://nls-meta.ap-southeast-1.aliyuncs.com/pop/2019-02-28/tokens"),
		ASREndpoint:       getenv("ASR_ENDPOINT", "https://nls-gateway-ap-southeast-1.aliyuncs.com/stream/v1/asr"),
		TTSEndpoint:       getenv("TTS_ENDPOINT", "https://nls-gateway-ap-southeast-1.aliyuncs.com/stream/v1/tts"),
		NLPEndpoint:       getenv("NLP_ENDPOINT", "https://alinlp.ap-southeast-1.aliyuncs.com/nlp/v2/analyze"),
		OCREndpoint:       getenv("OCR_ENDPOINT", "https://ocr-api.ap-southeast-1.aliyuncs.com/ocr/v1/recognize"),
		VoiceEndpoint:     getenv("VOICE_ENDPOINT", "https://voiceprint.ap-southeast-1.aliyuncs.com/v1"),
		VoiceAuthEndpoint: getenv("VOICE_AUTH_ENDPOINT", "https://voiceprint.ap-southeast-1.aliyuncs.com/oauth/token"),

		// Simulation fallback
		UseRealAPIs:           getenvBool("USE_REAL_APIS", false),
		SimulationDelay:       time.Duration(simDelayMs) * time.Millisecond,
		SimulationSuccessRate: simRate,

		// Synthesized audio output
		MediaDir: getenv("MEDIA_DIR", "./media"),

		// JWT Authentication
		JWTSecret: os.Getenv("JWT_SECRET"), // Required - no fallback for security
		JWTExpiry: jwtExpiry,

		// Apple push notifications
		APNsKeyPath:    getenv("APNS_KEY_PATH", ""),
		APNsKeyID:      getenv("APNS_KEY_ID", ""),
		APNsTeamID:     getenv("APNS_TEAM_ID", ""),
		APNsBundleID:   getenv("APNS_BUNDLE_ID", ""),
		APNsProduction: getenvBool("APNS_PRODUCTION", false),

		// Ops webhook
		DiscordWebhookURL: getenv("DISCORD_WEBHOOK_URL", ""),

		// Error monitoring
		SentryDSN: getenv("SENTRY_DSN", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvIntClamped(k string, def, min, max int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func getenvFloatClamped(k string, def, min, max float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}
