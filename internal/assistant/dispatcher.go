// Package assistant turns recognized speech into banking actions and spoken
// confirmations.
package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gabayhq/gabay-backend/internal/nlp"
)

// Navigation targets the app understands.
const (
	RouteSendMoney = "send-money"
	RoutePayBills  = "pay-bills"
	RouteBuyLoad   = "buy-load"
	RouteHome      = "home"
	RouteLogin     = "login"
)

// BalanceText is the fixed balance confirmation. Account lookups are out of
// scope for the voice layer; the balance surface owns the real figure.
const BalanceText = "Your current balance is 5,280 pesos."

// HelpText is spoken when no intent or keyword matches.
const HelpText = "I'm sorry, I didn't understand. You can try commands like 'send money', 'pay bills', 'buy load', or 'check balance'."

// Action is what one voice command resolves to: a confirmation to speak and,
// optionally, a screen to open once the confirmation has been heard.
type Action struct {
	Speech        string
	Navigate      string
	NavigateAfter time.Duration
}

// MarshalJSON reports the navigation delay in milliseconds; a raw Duration
// would serialize as nanoseconds, which no client wants.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Speech          string `json:"speech"`
		Navigate        string `json:"navigate,omitempty"`
		NavigateAfterMS int64  `json:"navigate_after_ms,omitempty"`
	}{a.Speech, a.Navigate, a.NavigateAfter.Milliseconds()})
}

// Dispatch maps an intent result onto an Action. It is a pure function: no
// state is retained between calls. The transcript is consulted only for the
// keyword fallbacks when the intent is unknown. Intent names are folded to
// their canonical forms first, so analyzers that report the service's raw
// snake_case names route the same as those that normalize.
func Dispatch(result nlp.Result, transcript string) Action {
	switch nlp.CanonicalIntent(result.Intent) {
	case nlp.IntentSendMoney:
		recipient := result.Entity("recipient", "someone")
		amount := result.Entity("amount", "")
		if amount == "" || amount == "unspecified" {
			return Action{
				Speech:        fmt.Sprintf("Opening send money to %s...", recipient),
				Navigate:      RouteSendMoney,
				NavigateAfter: 2 * time.Second,
			}
		}
		return Action{
			Speech:        fmt.Sprintf("Opening send money to %s for %s pesos...", recipient, amount),
			Navigate:      RouteSendMoney,
			NavigateAfter: 2 * time.Second,
		}

	case nlp.IntentPayBill:
		billType := result.Entity("billType", "bills")
		if billType == "unspecified" {
			billType = "bills"
		}
		return Action{
			Speech:        fmt.Sprintf("Opening %s payment...", billType),
			Navigate:      RoutePayBills,
			NavigateAfter: 2 * time.Second,
		}

	case nlp.IntentBuyLoad:
		return Action{
			Speech:        "Opening buy load feature...",
			Navigate:      RouteBuyLoad,
			NavigateAfter: 2 * time.Second,
		}

	case nlp.IntentCheckBalance:
		return Action{Speech: BalanceText}

	default:
		lower := strings.ToLower(transcript)
		switch {
		case strings.Contains(lower, "home"):
			return Action{
				Speech:        "Going to home screen...",
				Navigate:      RouteHome,
				NavigateAfter: 1500 * time.Millisecond,
			}
		case strings.Contains(lower, "logout") || strings.Contains(lower, "sign out"):
			return Action{
				Speech:        "Logging you out...",
				Navigate:      RouteLogin,
				NavigateAfter: 2 * time.Second,
			}
		default:
			return Action{Speech: HelpText}
		}
	}
}
