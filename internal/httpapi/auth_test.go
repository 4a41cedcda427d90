package httpapi

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gabayhq/gabay-backend/internal/store"
)

func TestIsValidE164(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+639171234567", true},
		{"+15551234567", true},
		{"+4201234567", true},
		{"09171234567", false},         // missing +
		{"+0123456", false},            // leading zero
		{"+63", false},                 // too short
		{"+639171234567890123", false}, // too long
		{"", false},
		{"not a phone", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := isValidE164(tt.phone); got != tt.want {
				t.Errorf("isValidE164(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestHashToken(t *testing.T) {
	h1 := hashToken("token-a")
	h2 := hashToken("token-a")
	h3 := hashToken("token-b")

	if h1 != h2 {
		t.Error("same token should hash identically")
	}
	if h1 == h3 {
		t.Error("different tokens should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}

func TestGenerateJWT(t *testing.T) {
	r := &Router{
		cfg: RouterConfig{
			JWTSecret: "test-secret",
			JWTExpiry: time.Hour,
		},
		logger: log.New(io.Discard, "", 0),
	}

	user := &store.User{ID: "user-123", Phone: "+639171234567"}
	tokenString, expiresAt, err := r.generateJWT(user)
	if err != nil {
		t.Fatalf("generateJWT: %v", err)
	}

	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Errorf("expiresAt %v not about an hour out", expiresAt)
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token did not parse back: %v", err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		t.Fatal("claims have wrong type")
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Phone != "+639171234567" {
		t.Errorf("Phone = %q, want %q", claims.Phone, "+639171234567")
	}
}

func TestWithAuthRejections(t *testing.T) {
	r := &Router{
		cfg: RouterConfig{
			JWTSecret: "test-secret",
			JWTExpiry: time.Hour,
		},
		logger: log.New(io.Discard, "", 0),
	}

	handler := r.withAuth(func(w http.ResponseWriter, req *http.Request) {
		t.Error("protected handler should not run")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed", "Bearer"},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestWithAuthRejectsWrongSigningKey(t *testing.T) {
	other := &Router{
		cfg:    RouterConfig{JWTSecret: "other-secret", JWTExpiry: time.Hour},
		logger: log.New(io.Discard, "", 0),
	}
	tokenString, _, err := other.generateJWT(&store.User{ID: "user-123", Phone: "+639171234567"})
	if err != nil {
		t.Fatalf("generateJWT: %v", err)
	}

	r := &Router{
		cfg:    RouterConfig{JWTSecret: "test-secret", JWTExpiry: time.Hour},
		logger: log.New(io.Discard, "", 0),
	}
	handler := r.withAuth(func(w http.ResponseWriter, req *http.Request) {
		t.Error("protected handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
