package expense

import (
	"strings"
	"testing"

	"finai/internal/core"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		desc string
		want core.Category
	}{
		{"Zomato order", core.DiningOut},
		{"Monthly rent", core.Housing},
		{"CARREFOUR SUPERMARKET", core.Groceries},
		{"Netflix subscription", core.Entertainment},
		{"Uber eats pizza", core.Transportation}, // transportation is listed before dining_out
		{"Loan repayment", core.DebtPayment},
		{"Credit card bill", core.Utilities},
		{"School fees", core.Education},
		{"Gift for friend", core.Other},
		{"", core.Other},
	}
	for _, tt := range tests {
		if got := Match(tt.desc); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.desc, got, tt.want)
		}
	}
}

func TestCategorize_Totals(t *testing.T) {
	res := Categorize([]Transaction{
		{"Zomato order", 3000},
		{"Pizza night", 2000},
		{"Supermarket run", 1500},
		{"Movie tickets", 500},
		{"Shopping mall", 2000},
	})

	if res.NumTransactions != 5 || res.CategoriesFound != 4 {
		t.Fatalf("counts = %d/%d", res.NumTransactions, res.CategoriesFound)
	}
	if res.Total != 9000 {
		t.Errorf("total = %v, want 9000", res.Total)
	}
	if res.CategoryTotals["dining_out"] != 5000 {
		t.Errorf("dining total = %v", res.CategoryTotals["dining_out"])
	}
	if len(res.Insights) != 2 {
		t.Fatalf("expected 2 insights, got %q", res.Insights)
	}
	if want := "Highest spending: Dining Out at Ksh 5,000.00 (55.6%)."; res.Insights[0] != want {
		t.Errorf("top insight = %q, want %q", res.Insights[0], want)
	}
	if !strings.Contains(res.Insights[1], "Ksh 1,750.00") {
		t.Errorf("dining insight = %q", res.Insights[1])
	}
}

func TestCategorize_DiscretionaryWarning(t *testing.T) {
	res := Categorize([]Transaction{
		{"Netflix", 400},
		{"Amazon order", 700},
		{"Supermarket", 500},
	})
	if len(res.Insights) != 2 {
		t.Fatalf("expected 2 insights, got %q", res.Insights)
	}
	if !strings.Contains(res.Insights[1], "68.8%") {
		t.Errorf("discretionary insight = %q", res.Insights[1])
	}
}

func TestCategorize_Empty(t *testing.T) {
	res := Categorize(nil)
	if res.Total != 0 || len(res.Insights) != 0 || res.CategoriesFound != 0 {
		t.Fatalf("unexpected result for empty input: %+v", res)
	}
}

func TestCategorize_ZeroAmountsNoDivision(t *testing.T) {
	res := Categorize([]Transaction{{"Rent", 0}, {"Coffee", 0}})
	if len(res.Insights) != 0 {
		t.Fatalf("expected no insights without spend, got %q", res.Insights)
	}
}
