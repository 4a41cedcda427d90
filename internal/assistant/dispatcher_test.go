package assistant

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gabayhq/gabay-backend/internal/nlp"
)

func TestDispatchSendMoney(t *testing.T) {
	t.Run("with recipient and amount", func(t *testing.T) {
		action := Dispatch(nlp.Result{
			Intent: nlp.IntentSendMoney,
			Entities: []nlp.Entity{
				{Type: "recipient", Value: "John"},
				{Type: "amount", Value: "500"},
			},
			Confidence: 0.9,
		}, "send 500 to John")
		if action.Speech != "Opening send money to John for 500 pesos..." {
			t.Errorf("Speech = %q", action.Speech)
		}
		if action.Navigate != RouteSendMoney {
			t.Errorf("Navigate = %q, want %q", action.Navigate, RouteSendMoney)
		}
		if action.NavigateAfter != 2*time.Second {
			t.Errorf("NavigateAfter = %v, want 2s", action.NavigateAfter)
		}
	})

	t.Run("without entities", func(t *testing.T) {
		action := Dispatch(nlp.Result{Intent: nlp.IntentSendMoney, Entities: []nlp.Entity{}}, "send money")
		if action.Speech != "Opening send money to someone..." {
			t.Errorf("Speech = %q", action.Speech)
		}
	})

	t.Run("unspecified amount omitted", func(t *testing.T) {
		action := Dispatch(nlp.Result{
			Intent:   nlp.IntentSendMoney,
			Entities: []nlp.Entity{{Type: "amount", Value: "unspecified"}},
		}, "send money")
		if action.Speech != "Opening send money to someone..." {
			t.Errorf("Speech = %q", action.Speech)
		}
	})
}

func TestDispatchPayBill(t *testing.T) {
	action := Dispatch(nlp.Result{
		Intent:   nlp.IntentPayBill,
		Entities: []nlp.Entity{{Type: "billType", Value: "electricity"}},
	}, "pay my electricity bill")
	if action.Speech != "Opening electricity payment..." {
		t.Errorf("Speech = %q", action.Speech)
	}
	if action.Navigate != RoutePayBills {
		t.Errorf("Navigate = %q, want %q", action.Navigate, RoutePayBills)
	}

	action = Dispatch(nlp.Result{Intent: nlp.IntentPayBill, Entities: []nlp.Entity{}}, "pay bills")
	if action.Speech != "Opening bills payment..." {
		t.Errorf("default bill Speech = %q", action.Speech)
	}
}

func TestDispatchBuyLoad(t *testing.T) {
	action := Dispatch(nlp.Result{Intent: nlp.IntentBuyLoad}, "buy load")
	if action.Speech != "Opening buy load feature..." {
		t.Errorf("Speech = %q", action.Speech)
	}
	if action.Navigate != RouteBuyLoad {
		t.Errorf("Navigate = %q, want %q", action.Navigate, RouteBuyLoad)
	}
}

func TestDispatchCheckBalance(t *testing.T) {
	action := Dispatch(nlp.Result{Intent: nlp.IntentCheckBalance}, "what's my balance")
	if action.Speech != BalanceText {
		t.Errorf("Speech = %q, want %q", action.Speech, BalanceText)
	}
	if action.Navigate != "" {
		t.Errorf("balance check should not navigate, got %q", action.Navigate)
	}
}

func TestDispatchServiceIntentNames(t *testing.T) {
	// Analyzers that report the text analysis service's raw snake_case
	// names must route identically to the canonical constants.
	action := Dispatch(nlp.Result{Intent: "check_balance", Entities: []nlp.Entity{}, Confidence: 0.92}, "check my balance")
	if action.Speech != BalanceText {
		t.Errorf("Speech = %q, want %q", action.Speech, BalanceText)
	}

	tests := []struct {
		intent       string
		wantNavigate string
	}{
		{"send_money", RouteSendMoney},
		{"pay_bill", RoutePayBills},
		{"buy_load", RouteBuyLoad},
	}
	for _, tt := range tests {
		action := Dispatch(nlp.Result{Intent: tt.intent, Entities: []nlp.Entity{}}, "")
		if action.Navigate != tt.wantNavigate {
			t.Errorf("Dispatch(%q) Navigate = %q, want %q", tt.intent, action.Navigate, tt.wantNavigate)
		}
	}
}

func TestDispatchKeywordFallbacks(t *testing.T) {
	t.Run("home", func(t *testing.T) {
		action := Dispatch(nlp.Result{Intent: nlp.IntentUnknown}, "take me Home please")
		if action.Speech != "Going to home screen..." {
			t.Errorf("Speech = %q", action.Speech)
		}
		if action.Navigate != RouteHome {
			t.Errorf("Navigate = %q, want %q", action.Navigate, RouteHome)
		}
		if action.NavigateAfter != 1500*time.Millisecond {
			t.Errorf("NavigateAfter = %v, want 1.5s", action.NavigateAfter)
		}
	})

	t.Run("sign out", func(t *testing.T) {
		action := Dispatch(nlp.Result{Intent: nlp.IntentUnknown}, "please sign out")
		if action.Speech != "Logging you out..." {
			t.Errorf("Speech = %q", action.Speech)
		}
		if action.Navigate != RouteLogin {
			t.Errorf("Navigate = %q, want %q", action.Navigate, RouteLogin)
		}
	})

	t.Run("no match", func(t *testing.T) {
		action := Dispatch(nlp.Result{Intent: nlp.IntentUnknown}, "something else entirely")
		if action.Speech != HelpText {
			t.Errorf("Speech = %q, want help text", action.Speech)
		}
		if action.Navigate != "" {
			t.Errorf("unexpected navigation %q", action.Navigate)
		}
	})

	t.Run("error intent uses same fallbacks", func(t *testing.T) {
		action := Dispatch(nlp.ErrorResult(), "go home")
		if action.Navigate != RouteHome {
			t.Errorf("Navigate = %q, want %q", action.Navigate, RouteHome)
		}
	})
}

func TestActionMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Action{
		Speech:        "Opening buy load feature...",
		Navigate:      RouteBuyLoad,
		NavigateAfter: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"navigate_after_ms":2000`) {
		t.Errorf("JSON = %s, want delay in milliseconds", data)
	}

	data, err = json.Marshal(Action{Speech: BalanceText})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "navigate") {
		t.Errorf("JSON = %s, navigation fields should be omitted", data)
	}
}
