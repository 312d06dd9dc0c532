package risk

import (
	"fmt"
	"math"

	"finai/internal/core"
)

// MaxLiquidityRatio caps the liquidity ratio reported when there are no
// liabilities to divide by.
const MaxLiquidityRatio = 999

type (
	Assets struct {
		CashSavings float64 `json:"cash_savings" yaml:"cash_savings"`
		Investments float64 `json:"investments" yaml:"investments"`
		Property    float64 `json:"property" yaml:"property"`
		Vehicles    float64 `json:"vehicles" yaml:"vehicles"`
		GoldJewelry float64 `json:"gold_jewelry" yaml:"gold_jewelry"`
		Other       float64 `json:"other" yaml:"other"`
	}

	Liabilities struct {
		HomeLoan     float64 `json:"home_loan" yaml:"home_loan"`
		VehicleLoan  float64 `json:"vehicle_loan" yaml:"vehicle_loan"`
		PersonalLoan float64 `json:"personal_loan" yaml:"personal_loan"`
		CreditCard   float64 `json:"credit_card" yaml:"credit_card"`
		Other        float64 `json:"other" yaml:"other"`
	}

	BalanceSheet struct {
		Assets        Assets      `json:"assets" yaml:"assets"`
		Liabilities   Liabilities `json:"liabilities" yaml:"liabilities"`
		MonthlyIncome float64     `json:"monthly_income" yaml:"monthly_income"`
	}

	Valuation struct {
		TotalAssets        float64               `json:"total_assets"`
		TotalLiabilities   float64               `json:"total_liabilities"`
		NetWorth           float64               `json:"net_worth"`
		LiquidAssets       float64               `json:"liquid_assets"`
		SolvencyRatio      float64               `json:"solvency_ratio"`
		DebtToAsset        float64               `json:"debt_to_asset"`
		LiquidityRatio     float64               `json:"liquidity_ratio"`
		MonthsRunway       float64               `json:"months_runway"`
		ValuationScore     int                   `json:"valuation_score"`
		Insights           []core.Insight        `json:"insights"`
		AssetBreakdown     []core.CategoryAmount `json:"asset_breakdown"`
		LiabilityBreakdown []core.CategoryAmount `json:"liability_breakdown"`
	}
)

func (a Assets) Liquid() float64 { return a.CashSavings + a.Investments }

func (a Assets) Total() float64 {
	return a.Liquid() + a.Property + a.Vehicles + a.GoldJewelry + a.Other
}

func (a Assets) breakdown() []core.CategoryAmount {
	return []core.CategoryAmount{
		{Name: "Cash & Savings", Amount: a.CashSavings},
		{Name: "Investments", Amount: a.Investments},
		{Name: "Property", Amount: a.Property},
		{Name: "Vehicles", Amount: a.Vehicles},
		{Name: "Gold & Jewelry", Amount: a.GoldJewelry},
		{Name: "Other", Amount: a.Other},
	}
}

func (l Liabilities) Total() float64 {
	return l.HomeLoan + l.VehicleLoan + l.PersonalLoan + l.CreditCard + l.Other
}

func (l Liabilities) breakdown() []core.CategoryAmount {
	return []core.CategoryAmount{
		{Name: "Home Loan", Amount: l.HomeLoan},
		{Name: "Vehicle Loan", Amount: l.VehicleLoan},
		{Name: "Personal Loan", Amount: l.PersonalLoan},
		{Name: "Credit Card", Amount: l.CreditCard},
		{Name: "Other", Amount: l.Other},
	}
}

// ValueBalanceSheet computes net worth, solvency and liquidity metrics and
// a 0-100 valuation score.
func ValueBalanceSheet(bs BalanceSheet) *Valuation {
	liquid := bs.Assets.Liquid()
	assets := bs.Assets.Total()
	liabilities := bs.Liabilities.Total()
	netWorth := assets - liabilities
	income := bs.MonthlyIncome

	var solvency, debtToAsset, runway float64
	if assets > 0 {
		solvency = netWorth / assets * 100
		debtToAsset = liabilities / assets * 100
	}
	liquidity := math.Inf(1)
	if liabilities > 0 {
		liquidity = liquid / liabilities
	}
	if income > 0 {
		runway = liquid / income
	}

	score := 50.0
	switch {
	case netWorth > 0 && income > 0:
		score += math.Min(20, netWorth/(income*12)*5)
	case netWorth > 0:
		score += 10
	default:
		score -= 20
	}
	if solvency > 60 {
		score += 10
	}
	if liquidity > 1 {
		score += 10
	}
	if runway >= 6 {
		score += 10
	}

	var insights []core.Insight
	switch {
	case netWorth < 0:
		insights = append(insights, core.Insight{Type: core.SeverityCritical,
			Text: fmt.Sprintf("Negative net worth (%s). Focus on debt reduction urgently.", core.FormatKshWhole(netWorth))})
	case netWorth > 0:
		insights = append(insights, core.Insight{Type: core.SeveritySuccess,
			Text: fmt.Sprintf("Positive net worth of %s. You're on the right track!", core.FormatKshWhole(netWorth))})
	}
	if debtToAsset > 50 {
		insights = append(insights, core.Insight{Type: core.SeverityWarning,
			Text: fmt.Sprintf("Debt-to-asset ratio is %.0f%%. Aim for under 40%%.", debtToAsset)})
	}
	if runway < 3 {
		insights = append(insights, core.Insight{Type: core.SeverityWarning,
			Text: fmt.Sprintf("Only %.1f months of liquid runway. Build to 6+ months.", runway)})
	}
	if bs.Liabilities.CreditCard > 0 {
		insights = append(insights, core.Insight{Type: core.SeverityCritical,
			Text: "Outstanding credit-card debt carries 24-40% interest. Prioritize paying it off."})
	}
	if liquidity > 2 {
		insights = append(insights, core.Insight{Type: core.SeveritySuccess,
			Text: "Strong liquidity position: your liquid assets comfortably cover debts."})
	}

	return &Valuation{
		TotalAssets:        core.Round2(assets),
		TotalLiabilities:   core.Round2(liabilities),
		NetWorth:           core.Round2(netWorth),
		LiquidAssets:       core.Round2(liquid),
		SolvencyRatio:      core.Round1(solvency),
		DebtToAsset:        core.Round1(debtToAsset),
		LiquidityRatio:     core.Round2(math.Min(liquidity, MaxLiquidityRatio)),
		MonthsRunway:       core.Round1(runway),
		ValuationScore:     int(core.Clamp(math.Trunc(score), 0, 100)),
		Insights:           insights,
		AssetBreakdown:     bs.Assets.breakdown(),
		LiabilityBreakdown: bs.Liabilities.breakdown(),
	}
}
