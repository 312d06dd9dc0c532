// Package http provides HTTP server and handler implementations.
//
// This file holds the request bodies of the JSON API. Numeric fields accept
// JSON numbers or numeric strings ("12,000", "Ksh 4,000"); absent and null
// fields are zero. Each request converts itself into its engine's input.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"finai/internal/core"
	"finai/internal/engine/budget"
	"finai/internal/engine/expense"
	"finai/internal/engine/loan"
	"finai/internal/engine/risk"
	"finai/internal/engine/savings"
)

const maxJSONBody = 1 << 20

var (
	ErrEmptyBody       = errors.New("request body is required")
	ErrMalformedNumber = errors.New("malformed number")
)

// Number is a float that also decodes from a numeric string.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	v, err := parseNumber(b)
	if err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

func (n *Number) ptr() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}

// Int decodes like Number and truncates toward zero.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	v, err := parseNumber(b)
	if err != nil {
		return err
	}
	if math.Abs(v) > math.MaxInt32 {
		return fmt.Errorf("%w: %s out of range", ErrMalformedNumber, b)
	}
	*i = Int(math.Trunc(v))
	return nil
}

func (i *Int) ptr() *int {
	if i == nil {
		return nil
	}
	v := int(*i)
	return &v
}

// Flag is a bool that also decodes from "true"/"false"/"1"/"0" and numbers.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(t)
	case float64:
		*f = t != 0
	case string:
		if strings.TrimSpace(t) == "" {
			*f = false
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return fmt.Errorf("malformed boolean %q", t)
		}
		*f = Flag(parsed)
	default:
		return fmt.Errorf("malformed boolean %s", b)
	}
	return nil
}

func parseNumber(b []byte) (float64, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, fmt.Errorf("%w: %s", ErrMalformedNumber, b)
		}
		if strings.TrimSpace(s) == "" {
			return 0, nil
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
		}
		return v, nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s", ErrMalformedNumber, b)
	}
	return v, nil
}

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("field %q: expected %s", typeErr.Field, typeErr.Type)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

type (
	budgetRequest struct {
		Income   Number            `json:"income"`
		Expenses map[string]Number `json:"expenses"`
	}

	loanRequest struct {
		MonthlyIncome    Number `json:"monthly_income"`
		MonthlyExpenses  Number `json:"monthly_expenses"`
		ExistingDebt     Number `json:"existing_debt"`
		Savings          Number `json:"savings"`
		EmploymentMonths Int    `json:"employment_months"`
		Dependents       Int    `json:"dependents"`
		HasBankAccount   Flag   `json:"has_bank_account"`
		RequestedAmount  Number `json:"requested_amount"`
	}

	transactionRequest struct {
		Description string `json:"description"`
		Amount      Number `json:"amount"`
	}

	expenseRequest struct {
		Transactions []transactionRequest `json:"transactions"`
	}

	savingsRequest struct {
		MonthlyIncome   Number `json:"monthly_income"`
		MonthlyExpenses Number `json:"monthly_expenses"`
		CurrentSavings  Number `json:"current_savings"`
		TargetAmount    Number `json:"target_amount"`
		TargetMonths    Int    `json:"target_months"`
		GoalName        string `json:"goal_name"`
		RiskTolerance   string `json:"risk_tolerance"`
	}

	holdingRequest struct {
		Name        string  `json:"name"`
		Principal   Number  `json:"principal"`
		Rate        Number  `json:"rate"`
		TenureYears *Number `json:"tenure_years"`
	}

	fixedIncomeRequest struct {
		Holdings []holdingRequest `json:"holdings"`
	}

	balanceSheetRequest struct {
		Assets struct {
			CashSavings Number `json:"cash_savings"`
			Investments Number `json:"investments"`
			Property    Number `json:"property"`
			Vehicles    Number `json:"vehicles"`
			GoldJewelry Number `json:"gold_jewelry"`
			Other       Number `json:"other"`
		} `json:"assets"`
		Liabilities struct {
			HomeLoan     Number `json:"home_loan"`
			VehicleLoan  Number `json:"vehicle_loan"`
			PersonalLoan Number `json:"personal_loan"`
			CreditCard   Number `json:"credit_card"`
			Other        Number `json:"other"`
		} `json:"liabilities"`
		MonthlyIncome Number `json:"monthly_income"`
	}

	decisionRequest struct {
		DecisionType    string  `json:"decision_type"`
		Amount          Number  `json:"amount"`
		MonthlyIncome   Number  `json:"monthly_income"`
		MonthlyExpenses Number  `json:"monthly_expenses"`
		CurrentSavings  Number  `json:"current_savings"`
		CurrentDebt     Number  `json:"current_debt"`
		InterestRate    *Number `json:"interest_rate"`
		TenureMonths    *Int    `json:"tenure_months"`
	}

	chatRequest struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}

	cardRequest struct {
		Name   string `json:"name"`
		Number string `json:"number"`
	}
)

func (r budgetRequest) input() budget.Input {
	in := budget.Input{Income: float64(r.Income), Expenses: make(map[string]float64, len(r.Expenses))}
	for k, v := range r.Expenses {
		in.Expenses[sanitizeInput(k)] = float64(v)
	}
	return in
}

func (r loanRequest) profile() loan.Profile {
	return loan.Profile{
		MonthlyIncome:    float64(r.MonthlyIncome),
		MonthlyExpenses:  float64(r.MonthlyExpenses),
		ExistingDebt:     float64(r.ExistingDebt),
		Savings:          float64(r.Savings),
		EmploymentMonths: int(r.EmploymentMonths),
		Dependents:       int(r.Dependents),
		HasBankAccount:   bool(r.HasBankAccount),
		RequestedAmount:  float64(r.RequestedAmount),
	}
}

func (r expenseRequest) transactions() []expense.Transaction {
	txns := make([]expense.Transaction, 0, len(r.Transactions))
	for _, t := range r.Transactions {
		txns = append(txns, expense.Transaction{
			Description: sanitizeInput(t.Description),
			Amount:      float64(t.Amount),
		})
	}
	return txns
}

func (r savingsRequest) goal() savings.Goal {
	return savings.Goal{
		MonthlyIncome:   float64(r.MonthlyIncome),
		MonthlyExpenses: float64(r.MonthlyExpenses),
		CurrentSavings:  float64(r.CurrentSavings),
		TargetAmount:    float64(r.TargetAmount),
		TargetMonths:    int(r.TargetMonths),
		GoalName:        sanitizeInput(r.GoalName),
		RiskTolerance:   strings.ToLower(strings.TrimSpace(r.RiskTolerance)),
	}
}

func (r fixedIncomeRequest) holdings() []risk.Holding {
	hs := make([]risk.Holding, 0, len(r.Holdings))
	for _, h := range r.Holdings {
		hs = append(hs, risk.Holding{
			Name:        sanitizeInput(h.Name),
			Principal:   float64(h.Principal),
			Rate:        float64(h.Rate),
			TenureYears: h.TenureYears.ptr(),
		})
	}
	return hs
}

func (r balanceSheetRequest) sheet() risk.BalanceSheet {
	return risk.BalanceSheet{
		Assets: risk.Assets{
			CashSavings: float64(r.Assets.CashSavings),
			Investments: float64(r.Assets.Investments),
			Property:    float64(r.Assets.Property),
			Vehicles:    float64(r.Assets.Vehicles),
			GoldJewelry: float64(r.Assets.GoldJewelry),
			Other:       float64(r.Assets.Other),
		},
		Liabilities: risk.Liabilities{
			HomeLoan:     float64(r.Liabilities.HomeLoan),
			VehicleLoan:  float64(r.Liabilities.VehicleLoan),
			PersonalLoan: float64(r.Liabilities.PersonalLoan),
			CreditCard:   float64(r.Liabilities.CreditCard),
			Other:        float64(r.Liabilities.Other),
		},
		MonthlyIncome: float64(r.MonthlyIncome),
	}
}

func (r decisionRequest) decision() risk.Decision {
	return risk.Decision{
		Type:            strings.ToLower(strings.TrimSpace(r.DecisionType)),
		Amount:          float64(r.Amount),
		MonthlyIncome:   float64(r.MonthlyIncome),
		MonthlyExpenses: float64(r.MonthlyExpenses),
		CurrentSavings:  float64(r.CurrentSavings),
		CurrentDebt:     float64(r.CurrentDebt),
		InterestRate:    r.InterestRate.ptr(),
		TenureMonths:    r.TenureMonths.ptr(),
	}
}
