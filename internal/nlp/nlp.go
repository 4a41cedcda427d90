// Package nlp extracts banking intents and entities from recognized text.
package nlp

import "context"

// Known intents. Anything the service cannot classify resolves to
// IntentUnknown; a failed call is reported as IntentError by the caller.
const (
	IntentSendMoney    = "sendMoney"
	IntentPayBill      = "payBill"
	IntentBuyLoad      = "buyLoad"
	IntentCheckBalance = "checkBalance"
	IntentUnknown      = "unknown"
	IntentError        = "error"
)

// serviceIntentNames maps the snake_case intent names the Alibaba text
// analysis service emits onto the canonical constants above.
var serviceIntentNames = map[string]string{
	"send_money":    IntentSendMoney,
	"pay_bill":      IntentPayBill,
	"buy_load":      IntentBuyLoad,
	"check_balance": IntentCheckBalance,
}

// CanonicalIntent resolves a provider intent name to its canonical form.
// Names that are already canonical, or unrecognized, pass through unchanged.
func CanonicalIntent(name string) string {
	if canonical, ok := serviceIntentNames[name]; ok {
		return canonical
	}
	return name
}

// NoSignalConfidence marks a successful call that produced no usable intent.
// It is deliberately distinct from the 0 confidence of a failed call, so
// call sites can tell "uncertain" from "broken".
const NoSignalConfidence = 0.1

// Entity is a slot value extracted alongside an intent.
type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Result is a normalized intent analysis. Entities may be empty but is
// never nil.
type Result struct {
	Intent     string   `json:"intent"`
	Entities   []Entity `json:"entities"`
	Confidence float64  `json:"confidence"`
}

// Entity returns the value of the first entity with the given type, or the
// fallback when no such entity exists.
func (r Result) Entity(entityType, fallback string) string {
	for _, e := range r.Entities {
		if e.Type == entityType {
			return e.Value
		}
	}
	return fallback
}

// Client defines the interface for intent analysis providers.
type Client interface {
	// Analyze extracts intent and entities from text. A successful call with
	// nothing usable returns IntentUnknown at NoSignalConfidence; transport
	// and parse failures return an error.
	Analyze(ctx context.Context, text string) (Result, error)
}

// ErrorResult is what callers should fall back to when Analyze fails: a
// zero-confidence error intent, distinct from the no-signal case.
func ErrorResult() Result {
	return Result{Intent: IntentError, Entities: []Entity{}, Confidence: 0}
}
