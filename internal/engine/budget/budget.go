// Package budget scores a monthly budget against the 50/30/20 rule.
//
// Expenses are grouped into needs, wants and savings buckets by category.
// Each bucket is compared with its share of income; violated thresholds
// cost a fixed number of health points and produce a recommendation.
package budget

import (
	"errors"
	"fmt"

	"finai/internal/core"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Ideal shares of income, in percent.
const (
	IdealNeeds   = 50
	IdealWants   = 30
	IdealSavings = 20
)

// Penalty thresholds, in percent of income.
const (
	needsLimit        = 55
	wantsLimit        = 35
	savingsFloor      = 15
	savingsCritical   = 5
	needsPenalty      = 15
	wantsPenalty      = 10
	savingsPenalty    = 20
	criticalPenalty   = 15
	overspendPenalty  = 30
	topExpensesLength = 5
)

var ErrInvalidIncome = errors.New("please provide a valid income amount")

type (
	Input struct {
		Income   float64            `json:"income" yaml:"income"`
		Expenses map[string]float64 `json:"expenses" yaml:"expenses"`
	}

	BucketSummary struct {
		Amount     float64     `json:"amount"`
		Percentage float64     `json:"percentage"`
		Ideal      float64     `json:"ideal"`
		Status     core.Status `json:"status"`
	}

	Buckets struct {
		Needs   BucketSummary `json:"needs"`
		Wants   BucketSummary `json:"wants"`
		Savings BucketSummary `json:"savings"`
	}

	// Allocation is the suggested spend per bucket once every bucket is
	// brought in line with its ideal share.
	Allocation struct {
		Needs   float64 `json:"needs"`
		Wants   float64 `json:"wants"`
		Savings float64 `json:"savings"`
	}

	Result struct {
		Income          float64               `json:"income"`
		TotalExpenses   float64               `json:"total_expenses"`
		Remaining       float64               `json:"remaining"`
		HealthScore     int                   `json:"health_score"`
		RiskLevel       string                `json:"risk_level"`
		Buckets         Buckets               `json:"budget_data"`
		Recommendations []core.Recommendation `json:"recommendations"`
		TopExpenses     []core.CategoryAmount `json:"top_expenses"`
		Optimized       Allocation            `json:"optimized_budget"`
		Breakdown       map[string]float64    `json:"expense_breakdown"`
	}
)

// Analyze scores the budget. Income must be positive. Categories outside
// the three buckets do not affect the score but appear in the breakdown.
func Analyze(in Input) (*Result, error) {
	if in.Income <= 0 {
		return nil, ErrInvalidIncome
	}
	income := in.Income

	var needs, wants, saved float64
	breakdown := make(map[string]float64)
	for name, amount := range in.Expenses {
		cat, _ := core.ParseCategory(name)
		switch cat.Bucket() {
		case core.BucketNeeds:
			needs += amount
		case core.BucketWants:
			wants += amount
		case core.BucketSavings:
			saved += amount
		}
		if amount > 0 {
			breakdown[cat.String()] += amount
		}
	}
	total := needs + wants + saved
	remaining := income - total

	needsPct := needs / income * 100
	wantsPct := wants / income * 100
	savingsPct := saved / income * 100

	idealNeeds := income * IdealNeeds / 100
	idealWants := income * IdealWants / 100
	idealSavings := income * IdealSavings / 100

	score := 100
	risk := RiskLow
	recs := make([]core.Recommendation, 0, 4)

	if needsPct > needsLimit {
		recs = append(recs, core.Recommendation{
			Type:     core.SeverityWarning,
			Category: "Needs",
			Message: fmt.Sprintf("Essential expenses are %.1f%% of income (recommended at most %d%%). "+
				"Consider reducing housing or utility costs.", needsPct, IdealNeeds),
			SavingPotential: core.Round2(needs - idealNeeds),
		})
		score -= needsPenalty
	}
	if wantsPct > wantsLimit {
		recs = append(recs, core.Recommendation{
			Type:     core.SeverityWarning,
			Category: "Wants",
			Message: fmt.Sprintf("Discretionary spending is %.1f%% of income (recommended at most %d%%). "+
				"Look for areas to cut back.", wantsPct, IdealWants),
			SavingPotential: core.Round2(wants - idealWants),
		})
		score -= wantsPenalty
	}
	if savingsPct < savingsFloor {
		recs = append(recs, core.Recommendation{
			Type:     core.SeverityCritical,
			Category: "Savings",
			Message: fmt.Sprintf("Savings rate is %.1f%% (recommended at least %d%%). "+
				"Increase your savings contributions.", savingsPct, IdealSavings),
			SavingPotential: core.Round2(idealSavings - saved),
		})
		score -= savingsPenalty
		risk = RiskMedium
	}
	if savingsPct < savingsCritical {
		score -= criticalPenalty
		risk = RiskHigh
	}
	if total > income {
		recs = append(recs, core.Recommendation{
			Type:            core.SeverityCritical,
			Category:        "Overall",
			Message:         fmt.Sprintf("You are spending %s more than you earn!", core.FormatKsh(total-income)),
			SavingPotential: core.Round2(total - income),
		})
		score -= overspendPenalty
		risk = RiskHigh
	}
	if remaining > 0 && savingsPct >= IdealSavings {
		recs = append(recs, core.Recommendation{
			Type:     core.SeveritySuccess,
			Category: "Overall",
			Message: fmt.Sprintf("Great job! %s remaining and you meet the %d%% savings target.",
				core.FormatKsh(remaining), IdealSavings),
		})
	}

	return &Result{
		Income:        income,
		TotalExpenses: core.Round2(total),
		Remaining:     core.Round2(remaining),
		HealthScore:   int(core.Clamp(float64(score), 0, 100)),
		RiskLevel:     risk,
		Buckets: Buckets{
			Needs:   summarize(needs, needsPct, IdealNeeds, needsPct <= IdealNeeds),
			Wants:   summarize(wants, wantsPct, IdealWants, wantsPct <= IdealWants),
			Savings: summarize(saved, savingsPct, IdealSavings, savingsPct >= IdealSavings),
		},
		Recommendations: recs,
		TopExpenses:     core.TopAmounts(breakdown, topExpensesLength),
		Optimized: Allocation{
			Needs:   core.Round2(min(needs, idealNeeds)),
			Wants:   core.Round2(min(wants, idealWants)),
			Savings: core.Round2(max(saved, idealSavings)),
		},
		Breakdown: breakdown,
	}, nil
}

func summarize(amount, pct, ideal float64, ok bool) BucketSummary {
	status := core.StatusWarning
	if ok {
		status = core.StatusGood
	}
	return BucketSummary{
		Amount:     core.Round2(amount),
		Percentage: core.Round1(pct),
		Ideal:      ideal,
		Status:     status,
	}
}
