package chat

import (
	"strings"
	"testing"
)

func TestRoute(t *testing.T) {
	q := newQuickReplies()
	tests := []struct {
		msg      string
		category string
		contains string
	}{
		{"Who are you?", CategoryGeneral, "I am Fin AI"},
		{"Hi!", CategoryGreeting, "Hello!"},
		{"Tell me about the SDG goals", CategoryGeneral, "SDG 1"},
		{"Am I eligible for a loan?", CategoryLoan, "Loan Eligibility"},
		{"How much should I save each month?", CategorySavings, "Emergency Fund Plan"},
		{"What is my net worth?", CategoryRisk, "Balance Sheet Score"},
		{"Show my expenses", CategoryExpense, "Spending Breakdown"},
		{"Analyze my budget", CategoryFinancial, "Budget Health: 65/100"},
		{"Explain the 50/30/20 rule", CategoryFinancial, "Budget Health"},
		{"this thing is odd", CategoryGeneral, "not reachable"},
		{"Photosynthesis?", CategoryGeneral, "not reachable"},
	}
	for _, tt := range tests {
		r := route(tt.msg, q)
		if r.Category != tt.category {
			t.Errorf("route(%q) category = %q, want %q", tt.msg, r.Category, tt.category)
		}
		if !strings.Contains(r.Response, tt.contains) {
			t.Errorf("route(%q) response %q does not contain %q", tt.msg, r.Response, tt.contains)
		}
		if len(r.QuickReplies) == 0 {
			t.Errorf("route(%q) returned no quick replies", tt.msg)
		}
	}
}

func TestRoute_HTMLSnippets(t *testing.T) {
	q := newQuickReplies()
	for _, msg := range []string{"loan", "savings", "risk", "expenses", "budget"} {
		r := route(msg, q)
		if !strings.HasPrefix(r.Response, "<h3>") || !strings.Contains(r.Response, "</ul>") {
			t.Errorf("route(%q) did not render an HTML snippet: %q", msg, r.Response)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize("Hey, what's my  BUDGET?"); got != " hey what s my budget " {
		t.Fatalf("normalize = %q", got)
	}
}

func TestContextualReplies(t *testing.T) {
	q := &quickReplies{shuffle: func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = n - 1 - i
		}
		return out
	}}
	if got := q.contextual("I want to borrow money"); got[0] != "How to improve credit score?" {
		t.Fatalf("loan replies = %q", got)
	}
	if got := q.contextual("I want to invest"); got[0] != "SIP vs lump sum?" {
		t.Fatalf("invest replies = %q", got)
	}
	got := q.contextual("tell me a joke")
	want := []string{defaultQuickReplies[5], defaultQuickReplies[4], defaultQuickReplies[3]}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("random replies = %q, want %q", got, want)
		}
	}
}
