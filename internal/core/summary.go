package core

import "sort"

// CategoryAmount is an amount aggregated under a category name.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// RankAmounts returns the positive entries of m sorted by amount, largest
// first. Equal amounts are ordered by name so results are stable.
func RankAmounts(m map[string]float64) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for name, amount := range m {
		if amount > 0 {
			out = append(out, CategoryAmount{Name: name, Amount: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// TopAmounts is RankAmounts truncated to n entries.
func TopAmounts(m map[string]float64, n int) []CategoryAmount {
	ranked := RankAmounts(m)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
