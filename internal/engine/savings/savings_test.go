package savings

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestPlan_Feasible(t *testing.T) {
	p := Goal{
		MonthlyIncome:   50000,
		MonthlyExpenses: 30000,
		CurrentSavings:  20000,
		TargetAmount:    140000,
		TargetMonths:    12,
		GoalName:        "Emergency Fund",
		RiskTolerance:   Moderate,
	}.Plan()

	if p.MonthlyRequired != 10000 || !p.Feasible {
		t.Fatalf("required=%v feasible=%v", p.MonthlyRequired, p.Feasible)
	}
	if p.Progress != 14.3 {
		t.Errorf("progress = %v, want 14.3", p.Progress)
	}
	if p.RecommendedMonthly != 10000 {
		t.Errorf("recommended = %v, want 10000", p.RecommendedMonthly)
	}
	if len(p.Scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(p.Scenarios))
	}
	for _, s := range p.Scenarios {
		if !s.MeetsGoal {
			t.Errorf("scenario %q should meet the goal (%v)", s.Label, s.ProjectedValue)
		}
		if s.Returns <= 0 {
			t.Errorf("scenario %q returns = %v", s.Label, s.Returns)
		}
	}
	if p.Scenarios[0].ProjectedValue >= p.Scenarios[2].ProjectedValue {
		t.Error("higher rates must project higher values")
	}
	if len(p.Tips) != 3 {
		t.Fatalf("tips = %q", p.Tips)
	}
	if !strings.Contains(p.Tips[0], "Ksh 3,000") || !strings.Contains(p.Tips[1], "14.3%") {
		t.Errorf("tips = %q", p.Tips)
	}
	if len(p.Strategies) != 3 || p.Strategies[0].Name != "Balanced Mutual Funds" {
		t.Errorf("strategies = %+v", p.Strategies)
	}
}

func TestPlan_Infeasible(t *testing.T) {
	p := Goal{
		MonthlyIncome:   20000,
		MonthlyExpenses: 15000,
		TargetAmount:    120000,
		TargetMonths:    6,
	}.Plan()

	if p.Feasible {
		t.Fatal("plan should not be feasible")
	}
	if !strings.Contains(p.Tips[0], "~40 months") {
		t.Errorf("first tip = %q", p.Tips[0])
	}
	if p.RecommendedMonthly != 3000 {
		t.Errorf("recommended = %v, want 3000", p.RecommendedMonthly)
	}
	if len(p.Milestones) != 6 {
		t.Errorf("milestones = %d, want 6", len(p.Milestones))
	}
}

func TestGoal_Normalize(t *testing.T) {
	g := Goal{RiskTolerance: "yolo"}.Normalize()
	if g.TargetMonths != DefaultMonths || g.GoalName != DefaultGoalName || g.RiskTolerance != Moderate {
		t.Fatalf("defaults not applied: %+v", g)
	}
	if g := (Goal{TargetMonths: -4}).Normalize(); g.TargetMonths != 1 {
		t.Fatalf("negative months normalised to %d, want 1", g.TargetMonths)
	}
}

func TestPlan_MilestonesNonDecreasing(t *testing.T) {
	for _, risk := range []string{Conservative, Moderate, Aggressive} {
		p := Goal{
			MonthlyIncome:  40000,
			CurrentSavings: 5000,
			TargetAmount:   500000,
			TargetMonths:   36,
			RiskTolerance:  risk,
		}.Plan()
		if len(p.Milestones) != 12 {
			t.Fatalf("%s: expected 12 milestones, got %d", risk, len(p.Milestones))
		}
		for i := 1; i < len(p.Milestones); i++ {
			if p.Milestones[i].Amount < p.Milestones[i-1].Amount {
				t.Fatalf("%s: milestone %d decreased", risk, i+1)
			}
			if p.Milestones[i].Percentage < p.Milestones[i-1].Percentage {
				t.Fatalf("%s: percentage %d decreased", risk, i+1)
			}
		}
	}
}

func TestPlan_TargetAlreadyReached(t *testing.T) {
	p := Goal{MonthlyIncome: 10000, CurrentSavings: 5000, TargetAmount: 4000}.Plan()
	if p.MonthlyRequired != 0 || p.Remaining != 0 || p.Progress != 100 || !p.Feasible {
		t.Fatalf("unexpected plan: %+v", p)
	}
}

func TestPlan_LongConservativeTip(t *testing.T) {
	p := Goal{MonthlyIncome: 1000, TargetAmount: 100000, TargetMonths: 48, RiskTolerance: Conservative}.Plan()
	found := false
	for _, tip := range p.Tips {
		if strings.Contains(tip, "moderate-risk") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the long-horizon tip, got %q", p.Tips)
	}
}

func TestFutureValue(t *testing.T) {
	if got := FutureValue(0, 100, 0, 12); got != 1200 {
		t.Fatalf("zero-rate future value = %v, want 1200", got)
	}
	// 1000 at 12%/year for one month, plus a deposit made at month end.
	if got := FutureValue(1000, 100, 0.12, 1); math.Abs(got-1110) > 1e-9 {
		t.Fatalf("future value = %v, want 1110", got)
	}
}

func TestFutureValue_MatchesMonthlyCompounding(t *testing.T) {
	const current, monthly, rate, months = 2500.0, 300.0, 0.10, 240
	want := current
	for m := 0; m < months; m++ {
		want = want*(1+rate/12) + monthly
	}
	if got := FutureValue(current, monthly, rate, months); math.Abs(got-want) > 1e-6 {
		t.Fatalf("future value = %v, want %v", got, want)
	}
}

func TestGoal_Validate(t *testing.T) {
	tests := []struct {
		months  int
		wantErr bool
	}{
		{0, false},
		{12, false},
		{MaxMonths, false},
		{MaxMonths + 1, true},
		{1 << 30, true},
	}
	for _, tt := range tests {
		err := Goal{TargetMonths: tt.months}.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%d) error = %v, wantErr %v", tt.months, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrTooManyMonths) {
			t.Errorf("Validate(%d) error = %v, want ErrTooManyMonths", tt.months, err)
		}
	}
}
