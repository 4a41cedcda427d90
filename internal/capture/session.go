// Package capture manages audio capture sessions for voice interactions.
//
// Each interaction owns its own Session value; there is no shared "current
// recording" state, so two interactions started back-to-back cannot race on
// a single handle.
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Capture errors.
var (
	ErrPermissionDenied  = errors.New("audio capture permission not granted")
	ErrNoActiveRecording = errors.New("no active recording")
	ErrAlreadyRecording  = errors.New("session is already recording")
	ErrFileNotFound      = errors.New("audio file does not exist")
)

// State is the lifecycle state of a capture session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopped
)

// Blob is an immutable audio byte buffer tagged with its MIME type.
// It is produced once from a file or a finished session and consumed once
// by a recognition or voice-authentication call.
type Blob struct {
	Data     []byte
	MIMEType string
}

// Size returns the blob length in bytes.
func (b Blob) Size() int { return len(b.Data) }

// Session is a single audio capture. It spools incoming frames to a file in
// the session directory and hands back the file path when stopped.
type Session struct {
	state State
	dir   string
	file  *os.File
	path  string
}

// NewSession creates an idle capture session spooling into dir.
func NewSession(dir string) *Session {
	return &Session{state: StateIdle, dir: dir}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Start begins the capture. Returns ErrPermissionDenied when the spool
// directory is not writable, ErrAlreadyRecording on a double start.
func (s *Session) Start() error {
	if s.state == StateRecording {
		return ErrAlreadyRecording
	}
	if s.state == StateStopped {
		return fmt.Errorf("session already stopped: %w", ErrNoActiveRecording)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("capture-%d.wav", time.Now().UnixNano()))
	f, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return fmt.Errorf("failed to open capture file: %w", err)
	}

	s.file = f
	s.path = path
	s.state = StateRecording
	return nil
}

// Write appends an audio frame to the active recording.
func (s *Session) Write(p []byte) (int, error) {
	if s.state != StateRecording {
		return 0, ErrNoActiveRecording
	}
	return s.file.Write(p)
}

// Stop finishes the capture and returns the path of the recorded file.
// Returns ErrNoActiveRecording when Start was never called.
func (s *Session) Stop() (string, error) {
	if s.state != StateRecording {
		return "", ErrNoActiveRecording
	}
	s.state = StateStopped
	if err := s.file.Close(); err != nil {
		return "", fmt.Errorf("device error stopping capture: %w", err)
	}
	return s.path, nil
}

// Discard aborts the session and removes any partial spool file.
func (s *Session) Discard() {
	if s.file != nil {
		_ = s.file.Close()
	}
	if s.path != "" {
		_ = os.Remove(s.path)
	}
	s.state = StateStopped
}

// ReadBlob reads a recorded audio file into a Blob tagged audio/wav.
// Returns ErrFileNotFound when the path no longer resolves to a file.
func ReadBlob(path string) (Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Blob{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return Blob{}, fmt.Errorf("failed to read audio file: %w", err)
	}
	return Blob{Data: data, MIMEType: "audio/wav"}, nil
}

// BlobFromReader drains r into a Blob. Used for direct uploads where no
// capture session is involved. An empty mimeType defaults to audio/wav.
func BlobFromReader(r io.Reader, mimeType string) (Blob, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to read audio stream: %w", err)
	}
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	return Blob{Data: data, MIMEType: mimeType}, nil
}
