// Package risk holds three independent calculators: fixed-income duration
// risk, personal balance-sheet valuation and a before/after simulator for
// a single financial decision.
package risk

import (
	"errors"
	"fmt"
	"math"

	"finai/internal/core"
)

// MaxTenureYears bounds a single holding's tenure.
const MaxTenureYears = 100

var (
	ErrNoHoldings    = errors.New("add at least one fixed-income holding")
	ErrTenureTooLong = fmt.Errorf("tenure cannot exceed %d years", MaxTenureYears)
)

type (
	Holding struct {
		Name        string   `json:"name" yaml:"name"`
		Principal   float64  `json:"principal" yaml:"principal"`
		Rate        float64  `json:"rate" yaml:"rate"` // annual, percent
		TenureYears *float64 `json:"tenure_years,omitempty" yaml:"tenure_years"`
	}

	HoldingRisk struct {
		Name             string  `json:"name"`
		Principal        float64 `json:"principal"`
		Rate             float64 `json:"rate"`
		Tenure           float64 `json:"tenure"`
		MacaulayDuration float64 `json:"macaulay_duration"`
		ModifiedDuration float64 `json:"modified_duration"`
		Convexity        float64 `json:"convexity"`
		MaturityValue    float64 `json:"maturity_value"`
		TotalReturn      float64 `json:"total_return"`
		PriceSensitivity float64 `json:"price_sensitivity"`
	}

	FixedIncomeReport struct {
		Holdings        []HoldingRisk `json:"holdings"`
		TotalInvested   float64       `json:"total_invested"`
		PortfolioReturn float64       `json:"portfolio_return"`
		AvgRate         float64       `json:"avg_rate"`
		AvgDuration     float64       `json:"avg_duration"`
		RiskScore       int           `json:"risk_score"`
		Recommendations []string      `json:"recommendations"`
	}
)

// tenure defaults to one year when unset.
func (h Holding) tenure() float64 {
	if h.TenureYears == nil {
		return 1
	}
	return *h.TenureYears
}

func (h Holding) displayName() string {
	if h.Name == "" {
		return "Unnamed"
	}
	return h.Name
}

// AnalyzeFixedIncome scores interest-rate risk across the holdings. The
// risk score is 0-100, lower is safer.
func AnalyzeFixedIncome(holdings []Holding) (*FixedIncomeReport, error) {
	if len(holdings) == 0 {
		return nil, ErrNoHoldings
	}
	for _, h := range holdings {
		if h.tenure() > MaxTenureYears {
			return nil, fmt.Errorf("%s: %w", h.displayName(), ErrTenureTooLong)
		}
	}

	var invested, weightedRate, weightedDuration, portfolioReturn float64
	results := make([]HoldingRisk, 0, len(holdings))
	for _, h := range holdings {
		hr, mac := measure(h)
		results = append(results, hr)

		invested += h.Principal
		weightedRate += h.Rate / 100 * h.Principal
		weightedDuration += mac * h.Principal
		portfolioReturn += hr.TotalReturn
	}

	var avgRate, avgDuration float64
	if invested != 0 {
		avgRate = weightedRate / invested * 100
		avgDuration = weightedDuration / invested
	}
	score := int(core.Clamp(math.Trunc(avgDuration*8+(100-avgRate*5)), 0, 100))

	var recs []string
	if avgDuration > 5 {
		recs = append(recs, "High duration exposure. Consider shorter-tenure instruments to reduce interest-rate risk.")
	}
	if avgRate < 6 {
		recs = append(recs, "Below-market yields detected. Explore government bonds or top-rated corporate deposits for better risk-adjusted returns.")
	}
	if len(holdings) < 3 {
		recs = append(recs, "Low diversification. Spread across at least 3 instruments with different maturities.")
	}
	if avgDuration < 2 && avgRate < 5 {
		recs = append(recs, "Very conservative portfolio. For longer goals, consider balanced mutual funds for growth.")
	}
	recs = append(recs, fmt.Sprintf("Portfolio average yield: %.1f%% | Average duration: %.1f years.", avgRate, avgDuration))

	return &FixedIncomeReport{
		Holdings:        results,
		TotalInvested:   core.Round2(invested),
		PortfolioReturn: core.Round2(portfolioReturn),
		AvgRate:         core.Round2(avgRate),
		AvgDuration:     core.Round2(avgDuration),
		RiskScore:       score,
		Recommendations: recs,
	}, nil
}

// measure prices a holding as an annual-coupon bond trading at par: whole
// year coupons 1..floor(t) and the face value at t. The unrounded Macaulay
// duration is returned for the portfolio averages.
func measure(h Holding) (HoldingRisk, float64) {
	p := h.Principal
	r := h.Rate / 100
	t := h.tenure()
	name := h.displayName()

	mac, mod, convexity := t, t, 0.0
	if r > 0 && t > 0 {
		coupon := p * r
		var price, weighted, curvature float64
		for yr := 1; yr <= int(t); yr++ {
			pv := coupon / math.Pow(1+r, float64(yr))
			price += pv
			weighted += float64(yr) * pv
			curvature += float64(yr*(yr+1)) * pv
		}
		pvFace := p / math.Pow(1+r, t)
		price += pvFace
		weighted += t * pvFace
		curvature += t * (t + 1) * pvFace
		if price == 0 {
			price = 1
		}
		mac = weighted / price
		mod = mac / (1 + r)
		convexity = curvature / (price * (1 + r) * (1 + r))
	}

	maturity := p * math.Pow(1+r, t)
	return HoldingRisk{
		Name:             name,
		Principal:        p,
		Rate:             h.Rate,
		Tenure:           t,
		MacaulayDuration: core.Round2(mac),
		ModifiedDuration: core.Round2(mod),
		Convexity:        core.Round2(convexity),
		MaturityValue:    core.Round2(maturity),
		TotalReturn:      core.Round2(maturity - p),
		PriceSensitivity: core.Round2(mod * 0.01 * p),
	}, mac
}
