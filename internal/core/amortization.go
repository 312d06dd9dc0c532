package core

import "math"

// Installment is one month of a reducing-balance loan schedule.
type Installment struct {
	Month     int     `json:"month"`
	EMI       float64 `json:"emi"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// EMI returns the equated monthly installment for a principal borrowed at
// an annual percentage rate over the given number of months:
//
//	P * r * (1+r)^n / ((1+r)^n - 1), r = annualRate / 12 / 100
//
// A zero rate degrades to straight division. Non-positive principal or
// tenure yields zero.
func EMI(principal, annualRate float64, months int) float64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	r := annualRate / 12 / 100
	if r == 0 {
		return principal / float64(months)
	}
	growth := math.Pow(1+r, float64(months))
	return principal * r * growth / (growth - 1)
}

// Schedule amortizes principal month by month. At most limit installments
// are returned; limit <= 0 returns the full schedule. Amounts are not
// rounded so callers can check the totals.
func Schedule(principal, annualRate float64, months, limit int) []Installment {
	if months <= 0 {
		return nil
	}
	n := months
	if limit > 0 && limit < n {
		n = limit
	}
	r := annualRate / 12 / 100
	emi := EMI(principal, annualRate, months)
	balance := principal
	out := make([]Installment, 0, n)
	for m := 1; m <= n; m++ {
		interest := balance * r
		part := emi - interest
		balance -= part
		out = append(out, Installment{
			Month:     m,
			EMI:       emi,
			Principal: part,
			Interest:  interest,
			Balance:   math.Max(0, balance),
		})
	}
	return out
}
