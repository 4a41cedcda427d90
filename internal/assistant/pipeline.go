package assistant

import (
	"context"
	"fmt"
	"log"

	"github.com/gabayhq/gabay-backend/internal/capture"
	"github.com/gabayhq/gabay-backend/internal/eventlog"
	"github.com/gabayhq/gabay-backend/internal/nlp"
	"github.com/gabayhq/gabay-backend/internal/recognition"
	"github.com/gabayhq/gabay-backend/internal/synthesis"
)

// RecoveryText is spoken-as-transcript when recognition fails outright, so
// the rest of the pipeline still has something to work with.
const RecoveryText = "Sorry, I encountered an error processing your speech."

// Outcome is everything one voice command produced. AudioPath is empty when
// synthesis failed; the other fields are still valid in that case.
type Outcome struct {
	Transcript string     `json:"transcript"`
	Confidence float64    `json:"confidence"`
	Intent     nlp.Result `json:"intent"`
	Action     Action     `json:"action"`
	AudioPath  string     `json:"audio_path,omitempty"`
}

// Pipeline chains recognition, intent analysis, dispatch and synthesis for a
// single voice command. Recognition and analysis failures degrade to spoken
// fallbacks; only synthesis failures surface as errors.
type Pipeline struct {
	recognizer recognition.Client
	analyzer   nlp.Client
	synth      synthesis.Client
	events     *eventlog.Logger
	logger     *log.Logger
}

func NewPipeline(recognizer recognition.Client, analyzer nlp.Client, synth synthesis.Client, events *eventlog.Logger, logger *log.Logger) *Pipeline {
	return &Pipeline{
		recognizer: recognizer,
		analyzer:   analyzer,
		synth:      synth,
		events:     events,
		logger:     logger,
	}
}

// Run processes a recorded utterance end to end. The stages run in strict
// sequence; each consumes the previous stage's output.
func (p *Pipeline) Run(ctx context.Context, interactionID string, audio capture.Blob, voiceID string) (Outcome, error) {
	if ctx.Err() != nil {
		return Outcome{}, ctx.Err()
	}

	rec, err := p.recognizer.Recognize(ctx, audio)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		p.logger.Printf("recognition failed for interaction %s: %v", interactionID, err)
		p.events.LogAsync(interactionID, eventlog.EventRecognitionError, map[string]any{
			"error": err.Error(),
		})
		rec = recognition.Result{Text: RecoveryText, Confidence: recognition.FallbackConfidence}
	} else {
		p.events.LogAsync(interactionID, eventlog.EventRecognitionResult, map[string]any{
			"transcript": rec.Text,
			"confidence": rec.Confidence,
		})
	}

	return p.runFromTranscript(ctx, interactionID, rec, voiceID)
}

// RunText processes an already-transcribed command, skipping recognition.
// Typed commands arrive here with full confidence.
func (p *Pipeline) RunText(ctx context.Context, interactionID, text, voiceID string) (Outcome, error) {
	return p.runFromTranscript(ctx, interactionID, recognition.Result{Text: text, Confidence: 1.0}, voiceID)
}

func (p *Pipeline) runFromTranscript(ctx context.Context, interactionID string, rec recognition.Result, voiceID string) (Outcome, error) {
	outcome := Outcome{Transcript: rec.Text, Confidence: rec.Confidence}

	intent, err := p.analyzer.Analyze(ctx, rec.Text)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		p.logger.Printf("intent analysis failed for interaction %s: %v", interactionID, err)
		p.events.LogAsync(interactionID, eventlog.EventIntentError, map[string]any{
			"error": err.Error(),
		})
		intent = nlp.ErrorResult()
	} else if intent.Intent == nlp.IntentUnknown {
		p.events.LogAsync(interactionID, eventlog.EventIntentNoSignal, map[string]any{
			"transcript": rec.Text,
		})
	} else {
		p.events.LogAsync(interactionID, eventlog.EventIntentResolved, map[string]any{
			"intent":     intent.Intent,
			"confidence": intent.Confidence,
			"entities":   intent.Entities,
		})
	}
	outcome.Intent = intent

	outcome.Action = Dispatch(intent, rec.Text)
	p.events.LogAsync(interactionID, eventlog.EventDispatchAction, map[string]any{
		"speech":   outcome.Action.Speech,
		"navigate": outcome.Action.Navigate,
	})

	audioPath, err := p.synth.Synthesize(ctx, outcome.Action.Speech, voiceID)
	if err != nil {
		p.events.LogAsync(interactionID, eventlog.EventSynthesisError, map[string]any{
			"error": err.Error(),
		})
		return outcome, fmt.Errorf("synthesize response: %w", err)
	}
	outcome.AudioPath = audioPath
	p.events.LogAsync(interactionID, eventlog.EventSynthesisDone, map[string]any{
		"path": audioPath,
	})

	return outcome, nil
}
