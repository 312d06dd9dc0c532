// Package loan scores microfinance loan eligibility from six weighted
// factors and matches the score against a static product catalog.
package loan

import (
	"fmt"
	"math"

	"finai/internal/core"
)

const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskElevated = "elevated"
	RiskHigh     = "high"
)

type (
	Profile struct {
		MonthlyIncome    float64 `json:"monthly_income" yaml:"monthly_income"`
		MonthlyExpenses  float64 `json:"monthly_expenses" yaml:"monthly_expenses"`
		ExistingDebt     float64 `json:"existing_debt" yaml:"existing_debt"`
		Savings          float64 `json:"savings" yaml:"savings"`
		EmploymentMonths int     `json:"employment_months" yaml:"employment_months"`
		Dependents       int     `json:"dependents" yaml:"dependents"`
		HasBankAccount   bool    `json:"has_bank_account" yaml:"has_bank_account"`
		RequestedAmount  float64 `json:"requested_amount" yaml:"requested_amount"`
	}

	Product struct {
		Name         string  `json:"name"`
		MinScore     int     `json:"min_score"`
		MaxAmount    float64 `json:"max_amount"`
		InterestRate float64 `json:"interest_rate"`
		TenureMonths int     `json:"tenure_months"`
		Description  string  `json:"description"`
	}

	Offer struct {
		Product
		MaxEligibleAmount float64 `json:"max_eligible_amount"`
		MonthlyEMI        float64 `json:"monthly_emi"`
		Affordable        bool    `json:"affordable"`
	}

	Result struct {
		Score             int                `json:"score"`
		Verdict           string             `json:"verdict"`
		RiskLevel         string             `json:"risk_level"`
		Factors           []core.ScoreFactor `json:"factors"`
		EligibleProducts  []Offer            `json:"eligible_products"`
		EligibleCountries []string           `json:"eligible_countries"`
		ImprovementTips   []string           `json:"improvement_tips"`
		MonthlyDisposable float64            `json:"monthly_disposable"`
		SafeEMI           float64            `json:"safe_emi"`
	}
)

// Catalog is the fixed list of loan products, in display order.
var Catalog = []Product{
	{"Community Starter Loan", 30, 25_000, 12, 12, "Entry-level microfinance for first-time borrowers."},
	{"Growth Accelerator Loan", 50, 75_000, 10, 24, "For small-business owners looking to expand."},
	{"Enterprise Builder Loan", 70, 200_000, 8, 36, "Premium product for high-potential entrepreneurs."},
	{"Women Empowerment Fund", 25, 50_000, 7, 18, "Low-interest fund for women entrepreneurs."},
	{"Agricultural Support Loan", 35, 100_000, 9, 12, "Seasonal funding for farmers and agri-workers."},
}

// countryTiers grow the list of lending markets with the score.
var countryTiers = []struct {
	minScore  int
	countries []string
}{
	{0, []string{"Kenya"}},
	{30, []string{"Uganda"}},
	{50, []string{"Tanzania"}},
	{70, []string{"Rwanda", "Burundi", "South Sudan"}},
}

// Check scores the profile and lists the products it qualifies for.
func Check(p Profile) *Result {
	factors := Factors(p)
	var sum float64
	for _, f := range factors {
		sum += f.Score
	}
	score := int(core.Clamp(math.Round(sum), 0, 100))
	disposable := p.MonthlyIncome - p.MonthlyExpenses

	offers := make([]Offer, 0, len(Catalog))
	for _, prod := range Catalog {
		if score < prod.MinScore {
			continue
		}
		maxEligible := math.Min(prod.MaxAmount, p.MonthlyIncome*float64(prod.TenureMonths)*0.3)
		emi := core.EMI(math.Min(p.RequestedAmount, maxEligible), prod.InterestRate, prod.TenureMonths)
		offers = append(offers, Offer{
			Product:           prod,
			MaxEligibleAmount: math.Round(maxEligible),
			MonthlyEMI:        math.Round(emi),
			Affordable:        emi < disposable*0.5,
		})
	}

	verdict, risk := Grade(score)
	return &Result{
		Score:             score,
		Verdict:           verdict,
		RiskLevel:         risk,
		Factors:           roundFactors(factors),
		EligibleProducts:  offers,
		EligibleCountries: Countries(score),
		ImprovementTips:   tips(p, score),
		MonthlyDisposable: core.Round2(disposable),
		SafeEMI:           math.Round(disposable * 0.4),
	}
}

// Factors computes the weighted sub-scores. Factors that need income are
// omitted when income is not positive.
func Factors(p Profile) []core.ScoreFactor {
	income := p.MonthlyIncome
	out := make([]core.ScoreFactor, 0, 6)

	if income > 0 {
		s := math.Min(25, income/1000*2)
		out = append(out, factor("Income Level", s, 25, s > 15, core.StatusFair))

		dti := p.ExistingDebt / income * 100
		s = math.Max(0, 20-dti*0.4)
		out = append(out, factor("Debt-to-Income", s, 20, dti < 30, core.StatusWarning))

		s = savingsBuffer(p.Savings, p.MonthlyExpenses)
		out = append(out, factor("Savings Buffer", s, 20, s > 10, core.StatusFair))
	}

	s := math.Min(15, float64(p.EmploymentMonths)/12*5)
	out = append(out, factor("Employment Stability", s, 15, s > 10, core.StatusFair))

	s = core.Clamp(float64(5-p.Dependents), 0, 5)
	if p.HasBankAccount {
		s += 5
	}
	out = append(out, factor("Financial Inclusion", s, 10, p.HasBankAccount, core.StatusWarning))

	if income > 0 {
		pct := (income - p.MonthlyExpenses) / income * 100
		s = core.Clamp(pct*0.3, 0, 10)
		out = append(out, factor("Disposable Income", s, 10, pct > 20, core.StatusWarning))
	}
	return out
}

// savingsBuffer measures savings against six months of expenses. It does
// not depend on income so a higher income never lowers the score.
func savingsBuffer(savings, expenses float64) float64 {
	if expenses <= 0 {
		if savings > 0 {
			return 20
		}
		return 0
	}
	ratio := savings / (expenses * 6) * 100
	return core.Clamp(ratio*0.2, 0, 20)
}

func factor(name string, score, maxScore float64, good bool, otherwise core.Status) core.ScoreFactor {
	status := otherwise
	if good {
		status = core.StatusGood
	}
	return core.ScoreFactor{Name: name, Score: score, Max: maxScore, Status: status}
}

func roundFactors(fs []core.ScoreFactor) []core.ScoreFactor {
	for i := range fs {
		fs[i].Score = core.Round1(fs[i].Score)
	}
	return fs
}

// Grade maps a score to a verdict and risk level.
func Grade(score int) (verdict, risk string) {
	switch {
	case score >= 70:
		return "Excellent", RiskLow
	case score >= 50:
		return "Good", RiskModerate
	case score >= 30:
		return "Fair", RiskElevated
	default:
		return "Needs Improvement", RiskHigh
	}
}

// Countries lists the markets the score qualifies for. The list only grows
// as the score rises.
func Countries(score int) []string {
	var out []string
	for _, tier := range countryTiers {
		if score >= tier.minScore {
			out = append(out, tier.countries...)
		}
	}
	return out
}

func tips(p Profile, score int) []string {
	var out []string
	if !p.HasBankAccount {
		out = append(out, "Open a bank account to improve your financial-inclusion score.")
	}
	if p.ExistingDebt > p.MonthlyIncome*3 {
		out = append(out, "Reduce existing debt before taking on new loans.")
	}
	if p.Savings < p.MonthlyIncome*3 {
		out = append(out, fmt.Sprintf("Build an emergency fund of at least %s (3 months).",
			core.FormatKshWhole(p.MonthlyIncome*3)))
	}
	if p.EmploymentMonths < 12 {
		out = append(out, "Maintain stable employment for 12+ months.")
	}
	if score >= 60 {
		out = append(out, "Strong profile: you qualify for premium low-interest products!")
	}
	return out
}
