package app

import (
	"os"
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		defValue string
		want     string
	}{
		{
			name:     "env set",
			envKey:   "TEST_ENV_VAR",
			envValue: "custom_value",
			defValue: "default",
			want:     "custom_value",
		},
		{
			name:     "env not set",
			envKey:   "TEST_ENV_VAR_NOTSET",
			envValue: "",
			defValue: "default",
			want:     "default",
		},
		{
			name:     "empty default",
			envKey:   "TEST_ENV_VAR_EMPTY",
			envValue: "",
			defValue: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			got := getenv(tt.envKey, tt.defValue)
			if got != tt.want {
				t.Errorf("getenv(%q, %q) = %q, want %q", tt.envKey, tt.defValue, got, tt.want)
			}
		})
	}
}

func TestGetenvBool(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		def      bool
		want     bool
	}{
		{
			name:     "true value",
			envKey:   "TEST_BOOL_TRUE",
			envValue: "true",
			def:      false,
			want:     true,
		},
		{
			name:     "numeric true",
			envKey:   "TEST_BOOL_ONE",
			envValue: "1",
			def:      false,
			want:     true,
		},
		{
			name:     "false value",
			envKey:   "TEST_BOOL_FALSE",
			envValue: "false",
			def:      true,
			want:     false,
		},
		{
			name:     "not set - use default",
			envKey:   "TEST_BOOL_NOTSET",
			envValue: "",
			def:      true,
			want:     true,
		},
		{
			name:     "invalid value - use default",
			envKey:   "TEST_BOOL_INVALID",
			envValue: "yes please",
			def:      false,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			got := getenvBool(tt.envKey, tt.def)
			if got != tt.want {
				t.Errorf("getenvBool(%q, %v) = %v, want %v", tt.envKey, tt.def, got, tt.want)
			}
		})
	}
}

func TestGetenvIntClamped(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		def      int
		min      int
		max      int
		want     int
	}{
		{
			name:     "value within range",
			envKey:   "TEST_INT_NORMAL",
			envValue: "500",
			def:      100,
			min:      0,
			max:      1000,
			want:     500,
		},
		{
			name:     "value below min - clamp to min",
			envKey:   "TEST_INT_LOW",
			envValue: "-100",
			def:      100,
			min:      0,
			max:      1000,
			want:     0,
		},
		{
			name:     "value above max - clamp to max",
			envKey:   "TEST_INT_HIGH",
			envValue: "2000",
			def:      100,
			min:      0,
			max:      1000,
			want:     1000,
		},
		{
			name:     "env not set - use default",
			envKey:   "TEST_INT_NOTSET",
			envValue: "",
			def:      100,
			min:      0,
			max:      1000,
			want:     100,
		},
		{
			name:     "invalid value - use default",
			envKey:   "TEST_INT_INVALID",
			envValue: "not_a_number",
			def:      100,
			min:      0,
			max:      1000,
			want:     100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			got := getenvIntClamped(tt.envKey, tt.def, tt.min, tt.max)
			if got != tt.want {
				t.Errorf("getenvIntClamped(%q, %d, %d, %d) = %d, want %d",
					tt.envKey, tt.def, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestGetenvFloatClamped(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		def      float64
		min      float64
		max      float64
		want     float64
	}{
		{
			name:     "value within range",
			envKey:   "TEST_FLOAT_NORMAL",
			envValue: "0.5",
			def:      0.3,
			min:      0.0,
			max:      1.0,
			want:     0.5,
		},
		{
			name:     "value below min - clamp to min",
			envKey:   "TEST_FLOAT_LOW",
			envValue: "-0.5",
			def:      0.3,
			min:      0.0,
			max:      1.0,
			want:     0.0,
		},
		{
			name:     "value above max - clamp to max",
			envKey:   "TEST_FLOAT_HIGH",
			envValue: "1.5",
			def:      0.3,
			min:      0.0,
			max:      1.0,
			want:     1.0,
		},
		{
			name:     "env not set - use default",
			envKey:   "TEST_FLOAT_NOTSET",
			envValue: "",
			def:      0.75,
			min:      0.0,
			max:      1.0,
			want:     0.75,
		},
		{
			name:     "invalid value - use default",
			envKey:   "TEST_FLOAT_INVALID",
			envValue: "not_a_float",
			def:      0.5,
			min:      0.0,
			max:      1.0,
			want:     0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			}

			got := getenvFloatClamped(tt.envKey, tt.def, tt.min, tt.max)
			if got != tt.want {
				t.Errorf("getenvFloatClamped(%q, %f, %f, %f) = %f, want %f",
					tt.envKey, tt.def, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	keysToClean := []string{
		"HTTP_ADDR", "PUBLIC_BASE_URL", "DATABASE_URL", "LOG_LEVEL",
		"USE_REAL_APIS", "SIMULATION_DELAY_MS", "SIMULATION_SUCCESS_RATE",
		"MEDIA_DIR", "JWT_EXPIRY",
	}
	for _, key := range keysToClean {
		os.Unsetenv(key)
	}

	cfg := LoadConfigFromEnv()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}

	if cfg.PublicBaseURL != "http://localhost:8080" {
		t.Errorf("PublicBaseURL = %q, want %q", cfg.PublicBaseURL, "http://localhost:8080")
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}

	if cfg.UseRealAPIs {
		t.Error("UseRealAPIs should default to false")
	}

	if cfg.SimulationDelay != 1500*time.Millisecond {
		t.Errorf("SimulationDelay = %v, want 1.5s", cfg.SimulationDelay)
	}

	if cfg.SimulationSuccessRate != 0.9 {
		t.Errorf("SimulationSuccessRate = %f, want 0.9", cfg.SimulationSuccessRate)
	}

	if cfg.MediaDir != "./media" {
		t.Errorf("MediaDir = %q, want %q", cfg.MediaDir, "./media")
	}

	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 24h", cfg.JWTExpiry)
	}
}

func TestLoadConfigFromEnvCustomValues(t *testing.T) {
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("PUBLIC_BASE_URL", "https://api.gabay.ph")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("USE_REAL_APIS", "true")
	os.Setenv("SIMULATION_DELAY_MS", "300")
	os.Setenv("SIMULATION_SUCCESS_RATE", "0.75")
	os.Setenv("MEDIA_DIR", "/var/lib/gabay/media")
	os.Setenv("JWT_EXPIRY", "1h")

	defer func() {
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("PUBLIC_BASE_URL")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("USE_REAL_APIS")
		os.Unsetenv("SIMULATION_DELAY_MS")
		os.Unsetenv("SIMULATION_SUCCESS_RATE")
		os.Unsetenv("MEDIA_DIR")
		os.Unsetenv("JWT_EXPIRY")
	}()

	cfg := LoadConfigFromEnv()

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}

	if cfg.PublicBaseURL != "https://api.gabay.ph" {
		t.Errorf("PublicBaseURL = %q, want %q", cfg.PublicBaseURL, "https://api.gabay.ph")
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}

	if !cfg.UseRealAPIs {
		t.Error("UseRealAPIs should be true")
	}

	if cfg.SimulationDelay != 300*time.Millisecond {
		t.Errorf("SimulationDelay = %v, want 300ms", cfg.SimulationDelay)
	}

	if cfg.SimulationSuccessRate != 0.75 {
		t.Errorf("SimulationSuccessRate = %f, want 0.75", cfg.SimulationSuccessRate)
	}

	if cfg.MediaDir != "/var/lib/gabay/media" {
		t.Errorf("MediaDir = %q, want %q", cfg.MediaDir, "/var/lib/gabay/media")
	}

	if cfg.JWTExpiry != time.Hour {
		t.Errorf("JWTExpiry = %v, want 1h", cfg.JWTExpiry)
	}
}
