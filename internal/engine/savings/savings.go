// Package savings builds a plan for reaching a savings goal and projects it
// under three fixed annual return rates with monthly compounding.
package savings

import (
	"fmt"
	"math"

	"finai/internal/core"
)

const (
	Conservative = "conservative"
	Moderate     = "moderate"
	Aggressive   = "aggressive"
)

const (
	DefaultGoalName   = "My Goal"
	DefaultMonths     = 12
	MaxMonths         = 1200
	maxMilestones     = 12
	feasibleShare     = 0.8
	recommendedShare  = 0.6
	extraRoomMultiple = 1.5
)

var ErrTooManyMonths = fmt.Errorf("target months cannot exceed %d", MaxMonths)

type (
	Goal struct {
		MonthlyIncome   float64 `json:"monthly_income" yaml:"monthly_income"`
		MonthlyExpenses float64 `json:"monthly_expenses" yaml:"monthly_expenses"`
		CurrentSavings  float64 `json:"current_savings" yaml:"current_savings"`
		TargetAmount    float64 `json:"target_amount" yaml:"target_amount"`
		TargetMonths    int     `json:"target_months" yaml:"target_months"`
		GoalName        string  `json:"goal_name" yaml:"goal_name"`
		RiskTolerance   string  `json:"risk_tolerance" yaml:"risk_tolerance"`
	}

	Scenario struct {
		Label          string  `json:"label"`
		ProjectedValue float64 `json:"projected_value"`
		Returns        float64 `json:"returns"`
		MeetsGoal      bool    `json:"meets_goal"`
	}

	Milestone struct {
		Month      int     `json:"month"`
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
	}

	Strategy struct {
		Name           string `json:"name"`
		Allocation     int    `json:"allocation"`
		ExpectedReturn string `json:"expected_return"`
		Risk           string `json:"risk"`
		Description    string `json:"description"`
	}

	Plan struct {
		GoalName           string      `json:"goal_name"`
		TargetAmount       float64     `json:"target_amount"`
		CurrentSavings     float64     `json:"current_savings"`
		Remaining          float64     `json:"remaining"`
		MonthlyRequired    float64     `json:"monthly_required"`
		Progress           float64     `json:"progress"`
		Feasible           bool        `json:"feasible"`
		DisposableIncome   float64     `json:"disposable_income"`
		Scenarios          []Scenario  `json:"scenarios"`
		Strategies         []Strategy  `json:"strategies"`
		Milestones         []Milestone `json:"milestones"`
		Tips               []string    `json:"tips"`
		TargetMonths       int         `json:"target_months"`
		RiskTolerance      string      `json:"risk_tolerance"`
		RecommendedMonthly float64     `json:"recommended_monthly"`
	}
)

// Rates are the annual return assumptions per risk tolerance.
var Rates = map[string]float64{
	Conservative: 0.06,
	Moderate:     0.10,
	Aggressive:   0.14,
}

var scenarioOrder = []struct {
	label string
	rate  float64
}{
	{"Conservative (6%)", 0.06},
	{"Moderate (10%)", 0.10},
	{"Aggressive (14%)", 0.14},
}

// Strategies is the static allocation table for each risk tolerance.
var Strategies = map[string][]Strategy{
	Conservative: {
		{"Fixed Deposit", 50, "6-7%", "Very Low", "Safe bank deposits with guaranteed returns."},
		{"Recurring Deposit", 30, "5.5-6.5%", "Very Low", "Monthly deposits with fixed returns."},
		{"Government Bonds", 20, "7-8%", "Low", "Sovereign-backed securities."},
	},
	Moderate: {
		{"Balanced Mutual Funds", 40, "10-12%", "Medium", "Equity and debt mix for balanced growth."},
		{"Fixed Deposit", 30, "6-7%", "Very Low", "Safety net for stability."},
		{"SIP (Index Funds)", 30, "12-15%", "Medium", "Systematic market-index investment."},
	},
	Aggressive: {
		{"Equity Mutual Funds", 50, "14-18%", "High", "High-growth equity investments."},
		{"SIP (Small Cap)", 30, "15-20%", "High", "Small-cap funds for maximum growth."},
		{"Balanced Funds", 20, "10-12%", "Medium", "Stability anchor for the portfolio."},
	},
}

// Normalize fills the defaults: months of at least one (12 when unset),
// a goal name and a known risk tolerance.
func (g Goal) Normalize() Goal {
	if g.TargetMonths == 0 {
		g.TargetMonths = DefaultMonths
	}
	g.TargetMonths = max(1, g.TargetMonths)
	if g.GoalName == "" {
		g.GoalName = DefaultGoalName
	}
	if _, ok := Rates[g.RiskTolerance]; !ok {
		g.RiskTolerance = Moderate
	}
	return g
}

// Validate rejects horizons longer than MaxMonths.
func (g Goal) Validate() error {
	if g.TargetMonths > MaxMonths {
		return ErrTooManyMonths
	}
	return nil
}

// Plan computes the contribution schedule and projections for the goal.
func (g Goal) Plan() *Plan {
	g = g.Normalize()
	months := g.TargetMonths
	disposable := g.MonthlyIncome - g.MonthlyExpenses
	remaining := math.Max(0, g.TargetAmount-g.CurrentSavings)
	required := remaining / float64(months)
	feasible := required <= disposable*feasibleShare

	var progress float64
	if g.TargetAmount > 0 {
		progress = math.Min(100, g.CurrentSavings/g.TargetAmount*100)
	}

	scenarios := make([]Scenario, 0, len(scenarioOrder))
	for _, s := range scenarioOrder {
		fv := FutureValue(g.CurrentSavings, required, s.rate, months)
		scenarios = append(scenarios, Scenario{
			Label:          s.label,
			ProjectedValue: core.Round2(fv),
			Returns:        core.Round2(fv - g.CurrentSavings - required*float64(months)),
			MeetsGoal:      fv >= g.TargetAmount,
		})
	}

	return &Plan{
		GoalName:           g.GoalName,
		TargetAmount:       g.TargetAmount,
		CurrentSavings:     g.CurrentSavings,
		Remaining:          core.Round2(remaining),
		MonthlyRequired:    core.Round2(required),
		Progress:           core.Round1(progress),
		Feasible:           feasible,
		DisposableIncome:   core.Round2(disposable),
		Scenarios:          scenarios,
		Strategies:         Strategies[g.RiskTolerance],
		Milestones:         milestones(g, required),
		Tips:               tips(g, disposable, remaining, required, feasible, progress),
		TargetMonths:       months,
		RiskTolerance:      g.RiskTolerance,
		RecommendedMonthly: core.Round2(math.Min(required, disposable*recommendedShare)),
	}
}

// FutureValue compounds current savings and a fixed end-of-month deposit at
// annualRate/12 for the given number of months.
func FutureValue(current, monthly, annualRate float64, months int) float64 {
	if months <= 0 {
		return current
	}
	mr := annualRate / 12
	if mr == 0 {
		return current + monthly*float64(months)
	}
	growth := math.Pow(1+mr, float64(months))
	return current*growth + monthly*(growth-1)/mr
}

func milestones(g Goal, required float64) []Milestone {
	mr := Rates[g.RiskTolerance] / 12
	n := min(g.TargetMonths, maxMilestones)
	out := make([]Milestone, 0, n)
	acc := g.CurrentSavings
	for m := 1; m <= n; m++ {
		acc = acc*(1+mr) + required
		var pct float64
		if g.TargetAmount > 0 {
			pct = core.Round1(math.Min(100, acc/g.TargetAmount*100))
		}
		out = append(out, Milestone{Month: m, Amount: core.Round2(acc), Percentage: pct})
	}
	return out
}

func tips(g Goal, disposable, remaining, required float64, feasible bool, progress float64) []string {
	var out []string
	if !feasible {
		safeMonths := 0
		if disposable > 0 {
			safeMonths = int(remaining / (disposable * recommendedShare))
		}
		out = append(out, fmt.Sprintf("Goal requires %s/month but you have %s disposable. Consider extending to ~%d months.",
			core.FormatKshWhole(required), core.FormatKshWhole(disposable), safeMonths))
	}
	if disposable > required*extraRoomMultiple {
		out = append(out, fmt.Sprintf("Room to save extra! Adding %s/month could accelerate your goal.",
			core.FormatKshWhole((disposable-required)*0.3)))
	}
	if g.TargetMonths > 24 && g.RiskTolerance == Conservative {
		out = append(out, "Consider moderate-risk investments for long-term goals.")
	}
	if g.CurrentSavings > 0 {
		out = append(out, fmt.Sprintf("Great start: %.1f%% of your goal is already saved!", progress))
	}
	return append(out, "Set up automatic transfers on payday to make saving effortless.")
}
