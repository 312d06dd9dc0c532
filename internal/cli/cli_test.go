package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finai/internal/engine/risk"
	"finai/internal/engine/savings"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// run executes finai-cli with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(stdin), &out, io.Discard)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		return nil, err
	}
	var body map[string]any
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	return body, nil
}

func TestReadInput(t *testing.T) {
	type profile struct {
		Income   float64            `yaml:"income"`
		Expenses map[string]float64 `yaml:"expenses"`
	}

	cases := []struct {
		name    string
		path    func(t *testing.T) string
		stdin   string
		want    float64
		wantErr bool
	}{
		{"yaml", func(t *testing.T) string { return writeFile(t, "in.yaml", "income: 1200\nexpenses:\n  rent: 400\n") }, "", 1200, false},
		{"json", func(t *testing.T) string {
			return writeFile(t, "in.json", `{"income": 900, "expenses": {"rent": 300}}`)
		}, "", 900, false},
		{"stdin", func(*testing.T) string { return "-" }, "income: 50", 50, false},
		{"empty", func(t *testing.T) string { return writeFile(t, "in.yaml", "  \n") }, "", 0, true},
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }, "", 0, true},
		{"malformed", func(t *testing.T) string { return writeFile(t, "in.yaml", "income: [1,\n") }, "", 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var p profile
			err := readInput(c.path(t), strings.NewReader(c.stdin), &p)
			if (err != nil) != c.wantErr {
				t.Fatalf("readInput() error = %v, wantErr %v", err, c.wantErr)
			}
			if !c.wantErr && p.Income != c.want {
				t.Errorf("income = %v, want %v", p.Income, c.want)
			}
		})
	}
}

func TestBudgetCommand(t *testing.T) {
	path := writeFile(t, "budget.yaml", `
income: 30000
expenses:
  housing: 8000
  dining_out: 4000
  savings: 4000
`)
	body, err := run(t, "", "budget", "--file", path)
	if err != nil {
		t.Fatal(err)
	}
	if body["health_score"] != 80.0 || body["risk_level"] != "medium" {
		t.Errorf("budget = %v / %v", body["health_score"], body["risk_level"])
	}
}

func TestBudgetCommandRejectsZeroIncome(t *testing.T) {
	_, err := run(t, "income: 0", "budget", "-f", "-")
	if err == nil || err.Error() != "please provide a valid income amount" {
		t.Fatalf("error = %v", err)
	}
}

func TestEngineCommandsRequireFile(t *testing.T) {
	for _, args := range [][]string{{"loan"}, {"savings"}, {"risk", "balance-sheet"}} {
		if _, err := run(t, "", args...); err == nil {
			t.Errorf("%v without --file should fail", args)
		}
	}
}

func TestLoanCommand(t *testing.T) {
	path := writeFile(t, "loan.json", `{
		"monthly_income": 30000, "monthly_expenses": 20000, "existing_debt": 10000,
		"savings": 50000, "employment_months": 24, "dependents": 2,
		"has_bank_account": true, "requested_amount": 50000
	}`)
	body, err := run(t, "", "loan", "--file", path)
	if err != nil {
		t.Fatal(err)
	}
	if body["score"] != 68.0 {
		t.Errorf("score = %v, want 68", body["score"])
	}
}

func TestExpensesCommand(t *testing.T) {
	stdin := `
transactions:
  - description: Monthly rent
    amount: 15000
  - description: Netflix subscription
    amount: 650
`
	body, err := run(t, stdin, "expenses", "--file", "-")
	if err != nil {
		t.Fatal(err)
	}
	if body["num_transactions"] != 2.0 || body["total"] != 15650.0 {
		t.Errorf("result = %v", body)
	}
}

func TestSavingsCommandDefaults(t *testing.T) {
	body, err := run(t, "monthly_income: 50000\nmonthly_expenses: 30000\ntarget_amount: 120000\n", "savings", "-f", "-")
	if err != nil {
		t.Fatal(err)
	}
	if body["target_months"] != 12.0 || body["goal_name"] != "My Goal" {
		t.Errorf("plan = %v / %v", body["target_months"], body["goal_name"])
	}
}

func TestSavingsCommandRejectsLongHorizon(t *testing.T) {
	_, err := run(t, "target_amount: 1000\ntarget_months: 5000\n", "savings", "-f", "-")
	if !errors.Is(err, savings.ErrTooManyMonths) {
		t.Fatalf("error = %v, want ErrTooManyMonths", err)
	}
}

func TestRiskCommands(t *testing.T) {
	t.Run("fixed income without holdings", func(t *testing.T) {
		_, err := run(t, "holdings: []\n", "risk", "fixed-income", "-f", "-")
		if !errors.Is(err, risk.ErrNoHoldings) {
			t.Errorf("error = %v, want ErrNoHoldings", err)
		}
	})

	t.Run("fixed income", func(t *testing.T) {
		body, err := run(t, "holdings:\n  - name: Bond\n    principal: 100000\n    rate: 10\n    tenure_years: 3\n", "risk", "fixed-income", "-f", "-")
		if err != nil {
			t.Fatal(err)
		}
		if body["total_invested"] != 100000.0 {
			t.Errorf("total_invested = %v", body["total_invested"])
		}
	})

	t.Run("balance sheet", func(t *testing.T) {
		body, err := run(t, "assets:\n  cash_savings: 50000\nmonthly_income: 30000\n", "risk", "balance-sheet", "-f", "-")
		if err != nil {
			t.Fatal(err)
		}
		if body["liquidity_ratio"] != 999.0 {
			t.Errorf("liquidity_ratio = %v", body["liquidity_ratio"])
		}
	})

	t.Run("decision type is case-insensitive", func(t *testing.T) {
		body, err := run(t, "decision_type: Loan\namount: 100000\nmonthly_income: 50000\nmonthly_expenses: 20000\n", "risk", "decision", "-f", "-")
		if err != nil {
			t.Fatal(err)
		}
		if body["decision_type"] != "loan" {
			t.Errorf("decision_type = %v", body["decision_type"])
		}
	})

	t.Run("unknown decision", func(t *testing.T) {
		_, err := run(t, "decision_type: lottery\namount: 10\n", "risk", "decision", "-f", "-")
		if !errors.Is(err, risk.ErrUnknownDecision) {
			t.Errorf("error = %v, want ErrUnknownDecision", err)
		}
	})
}

func TestChatCommand(t *testing.T) {
	body, err := run(t, "", "chat", "--local", "hello", "there")
	if err != nil {
		t.Fatal(err)
	}
	if body["category"] != "greeting" || body["source"] != "local" || body["session_id"] == "" {
		t.Errorf("reply = %v", body)
	}

	const session = "1b4e28ba-2fa1-4d3b-a3f5-ef19b5a7633d"
	body, err = run(t, "message: show my savings\n", "chat", "--local", "-f", "-", "--session", session)
	if err != nil {
		t.Fatal(err)
	}
	if body["session_id"] != session || body["category"] != "savings" {
		t.Errorf("reply = %v", body)
	}

	if _, err := run(t, "message: hi\n", "chat", "-f", "-", "hello"); err == nil {
		t.Error("message in both --file and arguments should fail")
	}
}
