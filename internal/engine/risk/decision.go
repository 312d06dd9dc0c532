package risk

import (
	"errors"
	"fmt"
	"math"

	"finai/internal/core"
)

const (
	DecisionLoan       = "loan"
	DecisionInvestment = "investment"
	DecisionExpense    = "expense"
)

const (
	DefaultInterestRate = 10
	DefaultTenureMonths = 12
	// MaxTimeline bounds the month-by-month projection.
	MaxTimeline = 24
)

var ErrUnknownDecision = errors.New("unknown decision type")

type (
	// Decision describes a hypothetical move. Nil rate and tenure take the
	// defaults; an empty type is a loan.
	Decision struct {
		Type            string   `json:"decision_type" yaml:"decision_type"`
		Amount          float64  `json:"amount" yaml:"amount"`
		MonthlyIncome   float64  `json:"monthly_income" yaml:"monthly_income"`
		MonthlyExpenses float64  `json:"monthly_expenses" yaml:"monthly_expenses"`
		CurrentSavings  float64  `json:"current_savings" yaml:"current_savings"`
		CurrentDebt     float64  `json:"current_debt" yaml:"current_debt"`
		InterestRate    *float64 `json:"interest_rate,omitempty" yaml:"interest_rate"`
		TenureMonths    *int     `json:"tenure_months,omitempty" yaml:"tenure_months"`
	}

	Snapshot struct {
		MonthlySurplus float64 `json:"monthly_surplus"`
		Savings        float64 `json:"savings"`
		Debt           float64 `json:"debt"`
		NetPosition    float64 `json:"net_position"`
		DebtToIncome   float64 `json:"debt_to_income"`
	}

	// TimelineEntry is one projected month. Loans fill the installment
	// fields, investments fill Value and Returns.
	TimelineEntry struct {
		Month     int      `json:"month"`
		EMI       *float64 `json:"emi,omitempty"`
		Principal *float64 `json:"principal,omitempty"`
		Interest  *float64 `json:"interest,omitempty"`
		Balance   *float64 `json:"balance,omitempty"`
		Value     *float64 `json:"value,omitempty"`
		Returns   *float64 `json:"returns,omitempty"`
	}

	Impact struct {
		DecisionType   string          `json:"decision_type"`
		Before         Snapshot        `json:"before"`
		After          Snapshot        `json:"after"`
		MonthlyImpact  float64         `json:"monthly_impact"`
		EMI            float64         `json:"emi,omitempty"`
		TotalInterest  float64         `json:"total_interest,omitempty"`
		ImpactScore    int             `json:"impact_score"`
		Verdict        string          `json:"verdict"`
		RiskIndicators []core.Insight  `json:"risk_indicators"`
		Timeline       []TimelineEntry `json:"timeline"`
	}
)

func (d Decision) rate() float64 {
	if d.InterestRate == nil {
		return DefaultInterestRate
	}
	return *d.InterestRate
}

func (d Decision) tenure() int {
	if d.TenureMonths == nil {
		return DefaultTenureMonths
	}
	return max(1, *d.TenureMonths)
}

func (s Snapshot) rounded() Snapshot {
	return Snapshot{
		MonthlySurplus: core.Round2(s.MonthlySurplus),
		Savings:        core.Round2(s.Savings),
		Debt:           core.Round2(s.Debt),
		NetPosition:    core.Round2(s.NetPosition),
		DebtToIncome:   core.Round2(s.DebtToIncome),
	}
}

// SimulateDecision projects the decision onto the current cash flow and
// scores it 0-100.
func SimulateDecision(d Decision) (*Impact, error) {
	kind := d.Type
	if kind == "" {
		kind = DecisionLoan
	}
	rate := d.rate()
	tenure := d.tenure()
	income := d.MonthlyIncome

	debtToIncome := func(debt float64) float64 {
		if income == 0 {
			return 0
		}
		return debt / (income * 12) * 100
	}

	before := Snapshot{
		MonthlySurplus: income - d.MonthlyExpenses,
		Savings:        d.CurrentSavings,
		Debt:           d.CurrentDebt,
		NetPosition:    d.CurrentSavings - d.CurrentDebt,
		DebtToIncome:   debtToIncome(d.CurrentDebt),
	}
	after := before
	impact := &Impact{DecisionType: kind}
	limit := min(tenure, MaxTimeline)

	switch kind {
	case DecisionLoan:
		emi := core.EMI(d.Amount, rate, tenure)
		impact.EMI = core.Round2(emi)
		impact.TotalInterest = core.Round2(emi*float64(tenure) - d.Amount)
		impact.MonthlyImpact = -emi
		after.Debt = d.CurrentDebt + d.Amount
		after.MonthlySurplus = before.MonthlySurplus - emi
		after.DebtToIncome = debtToIncome(after.Debt)
		for _, inst := range core.Schedule(d.Amount, rate, tenure, limit) {
			impact.Timeline = append(impact.Timeline, TimelineEntry{
				Month:     inst.Month,
				EMI:       ptr(core.Round2(inst.EMI)),
				Principal: ptr(core.Round2(inst.Principal)),
				Interest:  ptr(core.Round2(inst.Interest)),
				Balance:   ptr(core.Round2(inst.Balance)),
			})
		}

	case DecisionInvestment:
		mr := rate / 100 / 12
		monthlyReturn := d.Amount * mr
		impact.MonthlyImpact = monthlyReturn
		after.Savings = d.CurrentSavings - d.Amount
		after.MonthlySurplus = before.MonthlySurplus + monthlyReturn
		value := d.Amount
		for m := 1; m <= limit; m++ {
			value *= 1 + mr
			impact.Timeline = append(impact.Timeline, TimelineEntry{
				Month:   m,
				Value:   ptr(core.Round2(value)),
				Returns: ptr(core.Round2(value - d.Amount)),
			})
		}

	case DecisionExpense:
		impact.MonthlyImpact = -d.Amount / float64(tenure)
		after.Savings = d.CurrentSavings - d.Amount
		after.MonthlySurplus = before.MonthlySurplus + impact.MonthlyImpact

	default:
		return nil, fmt.Errorf("%w %q: must be loan, investment or expense", ErrUnknownDecision, kind)
	}
	after.NetPosition = after.Savings - after.Debt

	score, indicators := assess(before, after, income, d.MonthlyExpenses)
	impact.Before = before.rounded()
	impact.After = after.rounded()
	impact.MonthlyImpact = core.Round2(impact.MonthlyImpact)
	impact.ImpactScore = score
	impact.Verdict = verdict(score)
	impact.RiskIndicators = indicators
	if impact.Timeline == nil {
		impact.Timeline = []TimelineEntry{}
	}
	return impact, nil
}

func assess(before, after Snapshot, income, expenses float64) (int, []core.Insight) {
	base := income
	if base == 0 {
		base = 1
	}
	score := 50.0
	change := after.MonthlySurplus - before.MonthlySurplus
	if change < 0 {
		score -= math.Min(30, -change/base*100)
	} else {
		score += math.Min(20, change/base*100)
	}

	out := make([]core.Insight, 0, 4)
	if after.MonthlySurplus < 0 {
		out = append(out, core.Insight{Type: core.SeverityCritical, Text: "This decision will make your monthly expenses exceed income!"})
		score -= 20
	}
	if after.DebtToIncome > 50 {
		out = append(out, core.Insight{Type: core.SeverityWarning,
			Text: fmt.Sprintf("Debt-to-income will rise to %.0f%%, above safe levels.", after.DebtToIncome)})
		score -= 10
	}
	if after.Savings < expenses*3 {
		out = append(out, core.Insight{Type: core.SeverityWarning, Text: "Savings will drop below 3-month emergency-fund level."})
		score -= 10
	}
	if after.MonthlySurplus > before.MonthlySurplus {
		out = append(out, core.Insight{Type: core.SeveritySuccess, Text: "This decision improves your monthly cash flow!"})
	}
	if score >= 60 {
		out = append(out, core.Insight{Type: core.SeveritySuccess, Text: "Overall low-risk decision. Proceed with confidence."})
	}
	return int(core.Clamp(math.Trunc(score), 0, 100)), out
}

func verdict(score int) string {
	switch {
	case score >= 60:
		return "Recommended"
	case score >= 40:
		return "Proceed with Caution"
	default:
		return "High Risk"
	}
}

func ptr(v float64) *float64 { return &v }
