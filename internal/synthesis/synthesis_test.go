package synthesis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gabayhq/gabay-backend/internal/simulation"
)

type staticTokens struct{ token string }

func (s staticTokens) Token(context.Context) (string, error) { return s.token, nil }

func TestResolveVoice(t *testing.T) {
	t.Run("known id", func(t *testing.T) {
		v := ResolveVoice("fil_female_1")
		if v.Name != "Filipino Female" {
			t.Errorf("Name = %q", v.Name)
		}
	})

	t.Run("unknown id falls back to first entry", func(t *testing.T) {
		v := ResolveVoice("nonexistent")
		if v.ID != Voices[0].ID {
			t.Errorf("ID = %q, want first table entry %q", v.ID, Voices[0].ID)
		}
	})

	t.Run("empty id falls back to first entry", func(t *testing.T) {
		if got := ResolveVoice(""); got.ID != Voices[0].ID {
			t.Errorf("ID = %q, want %q", got.ID, Voices[0].ID)
		}
	})
}

func TestVoice_LanguageCode(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"en-US", "en"},
		{"fil-PH", "fil"},
		{"en-PH", "en"},
	}
	for _, tt := range tests {
		v := Voice{Language: tt.tag}
		if got := v.LanguageCode(); got != tt.want {
			t.Errorf("LanguageCode(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}

	// The fallback voice's language code is the prefix of its tag.
	fallback := ResolveVoice("no-such-voice")
	wantCode, _, _ := strings.Cut(fallback.Language, "-")
	if fallback.LanguageCode() != wantCode {
		t.Errorf("fallback LanguageCode() = %q, want %q", fallback.LanguageCode(), wantCode)
	}
}

func TestAlibabaSynthesize_PersistsAudio(t *testing.T) {
	audioPayload := []byte("mp3-binary-data")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if got := req.Header.Get("X-NLS-Token"); got != "tok" {
			t.Errorf("X-NLS-Token = %q, want tok", got)
		}
		var body ttsRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body.Format != "mp3" {
			t.Errorf("format = %q, want mp3", body.Format)
		}
		if body.Voice != "fil_male_1" {
			t.Errorf("voice = %q, want fil_male_1", body.Voice)
		}
		if body.Text != "Opening buy load feature..." {
			t.Errorf("text = %q", body.Text)
		}
		_, _ = w.Write(audioPayload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	client := NewAlibabaClient(AlibabaConfig{
		Endpoint: srv.URL,
		AppKey:   "app",
		Tokens:   staticTokens{token: "tok"},
		MediaDir: dir,
	})

	path, err := client.Synthesize(context.Background(), "Opening buy load feature...", "fil_male_1")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasPrefix(base, "tts-") || !strings.HasSuffix(base, ".mp3") {
		t.Errorf("artifact name = %q, want tts-<timestamp>.mp3", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(data) != string(audioPayload) {
		t.Errorf("artifact contents = %q, want raw audio payload", data)
	}
}

func TestAlibabaSynthesize_UnknownVoiceUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var body ttsRequest
		_ = json.NewDecoder(req.Body).Decode(&body)
		if body.Voice != Voices[0].ID {
			t.Errorf("voice = %q, want fallback %q", body.Voice, Voices[0].ID)
		}
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	client := NewAlibabaClient(AlibabaConfig{
		Endpoint: srv.URL,
		Tokens:   staticTokens{token: "tok"},
		MediaDir: t.TempDir(),
	})

	if _, err := client.Synthesize(context.Background(), "hello", "bogus-voice"); err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
}

func TestAlibabaSynthesize_HTTPErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewAlibabaClient(AlibabaConfig{
		Endpoint: srv.URL,
		Tokens:   staticTokens{token: "tok"},
		MediaDir: t.TempDir(),
	})

	if _, err := client.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Error("expected synthesis failure to propagate")
	}
}

func TestSimulatedSynthesize_WritesArtifact(t *testing.T) {
	dir := t.TempDir()
	client := NewSimulatedClient(simulation.NewDeterministicConfig(0, 1.0, 5), dir)

	path, err := client.Synthesize(context.Background(), "Your current balance is 5,280 pesos.", "")
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("artifact dir = %q, want %q", filepath.Dir(path), dir)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}
