// Package expense assigns free-text transactions to spending categories by
// keyword and derives a few ratio-based insights from the totals.
package expense

import (
	"fmt"
	"strings"

	"finai/internal/core"
)

type (
	Transaction struct {
		Description string  `json:"description" yaml:"description"`
		Amount      float64 `json:"amount" yaml:"amount"`
	}

	Categorized struct {
		Description string        `json:"description"`
		Amount      float64       `json:"amount"`
		Category    core.Category `json:"category"`
	}

	Result struct {
		Transactions    []Categorized      `json:"transactions"`
		CategoryTotals  map[string]float64 `json:"category_totals"`
		Total           float64            `json:"total"`
		Insights        []string           `json:"insights"`
		NumTransactions int                `json:"num_transactions"`
		CategoriesFound int                `json:"categories_found"`
	}

	rule struct {
		category core.Category
		keywords []string
	}
)

// rules are checked in order; the first category with a matching keyword
// wins.
var rules = []rule{
	{core.Housing, []string{"rent", "mortgage", "property", "house", "apartment", "flat", "home loan"}},
	{core.Utilities, []string{"electricity", "water", "gas", "internet", "wifi", "phone", "mobile", "broadband", "bill"}},
	{core.Groceries, []string{"grocery", "food", "vegetables", "fruits", "supermarket", "kirana", "ration"}},
	{core.Transportation, []string{"fuel", "petrol", "diesel", "bus", "train", "metro", "uber", "ola", "auto", "cab", "taxi"}},
	{core.Healthcare, []string{"medicine", "doctor", "hospital", "pharmacy", "medical", "health", "clinic", "dental"}},
	{core.Insurance, []string{"insurance", "premium", "lic", "policy"}},
	{core.Entertainment, []string{"movie", "netflix", "spotify", "games", "concert", "theatre", "streaming"}},
	{core.DiningOut, []string{"restaurant", "cafe", "coffee", "zomato", "swiggy", "dining", "pizza", "burger"}},
	{core.Shopping, []string{"clothes", "shoes", "amazon", "flipkart", "shopping", "mall", "fashion"}},
	{core.Education, []string{"school", "college", "tuition", "course", "books", "training", "fees"}},
	{core.Savings, []string{"savings", "fixed deposit", "fd", "rd", "mutual fund", "sip", "investment"}},
	{core.DebtPayment, []string{"loan", "emi", "credit card", "repayment", "installment"}},
}

// Match returns the category of a transaction description. Matching is a
// case-insensitive substring test; unmatched descriptions are core.Other.
func Match(description string) core.Category {
	desc := strings.ToLower(description)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(desc, kw) {
				return r.category
			}
		}
	}
	return core.Other
}

// Categorize classifies every transaction and aggregates the totals.
func Categorize(txns []Transaction) *Result {
	out := make([]Categorized, 0, len(txns))
	totals := make(map[string]float64)
	var total float64
	for _, t := range txns {
		cat := Match(t.Description)
		out = append(out, Categorized{Description: t.Description, Amount: t.Amount, Category: cat})
		totals[cat.String()] += t.Amount
		total += t.Amount
	}
	return &Result{
		Transactions:    out,
		CategoryTotals:  totals,
		Total:           core.Round2(total),
		Insights:        insights(totals, total),
		NumTransactions: len(txns),
		CategoriesFound: len(totals),
	}
}

func insights(totals map[string]float64, total float64) []string {
	var out []string
	if total > 0 {
		if ranked := core.RankAmounts(totals); len(ranked) > 0 {
			top := ranked[0]
			out = append(out, fmt.Sprintf("Highest spending: %s at %s (%.1f%%).",
				core.Category(top.Name).Label(), core.FormatKsh(top.Amount), top.Amount/total*100))
		}
	}

	dining := totals[core.DiningOut.String()]
	groceries := totals[core.Groceries.String()]
	if dining > groceries && groceries > 0 {
		out = append(out, fmt.Sprintf("Dining out (%s) exceeds groceries (%s). Cooking at home could save ~%s/month.",
			core.FormatKsh(dining), core.FormatKsh(groceries), core.FormatKsh((dining-groceries)*0.5)))
	}

	discretionary := totals[core.Entertainment.String()] + totals[core.Shopping.String()]
	if total > 0 && discretionary/total > 0.30 {
		out = append(out, fmt.Sprintf("Discretionary spending is %.1f%% of total. Aim for under 30%%.",
			discretionary/total*100))
	}
	return out
}
