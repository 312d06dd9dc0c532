package chat

import (
	"finai/internal/engine/budget"
	"finai/internal/engine/expense"
	"finai/internal/engine/loan"
	"finai/internal/engine/risk"
	"finai/internal/engine/savings"
)

// The demo profile the local router analyses. It matches the dashboard
// figures quoted in the model's system prompt.
const (
	demoIncome   = 30000
	demoExpenses = 21100
	demoSavings  = 12000
)

var demoBudget = budget.Input{
	Income: demoIncome,
	Expenses: map[string]float64{
		"housing":        8000,
		"utilities":      2000,
		"groceries":      4100,
		"dining_out":     3000,
		"transportation": 2500,
		"entertainment":  1500,
		"savings":        4000,
	},
}

var demoLoan = loan.Profile{
	MonthlyIncome:    demoIncome,
	MonthlyExpenses:  demoExpenses,
	ExistingDebt:     5000,
	Savings:          demoSavings,
	EmploymentMonths: 18,
	Dependents:       1,
	HasBankAccount:   true,
	RequestedAmount:  25000,
}

var demoGoal = savings.Goal{
	MonthlyIncome:   demoIncome,
	MonthlyExpenses: demoExpenses,
	CurrentSavings:  demoSavings,
	TargetAmount:    90000,
	TargetMonths:    12,
	GoalName:        "Emergency Fund",
	RiskTolerance:   savings.Moderate,
}

var demoBalanceSheet = risk.BalanceSheet{
	Assets: risk.Assets{
		CashSavings: demoSavings,
		Investments: 8000,
		Vehicles:    150000,
		GoldJewelry: 20000,
	},
	Liabilities: risk.Liabilities{
		VehicleLoan: 60000,
		CreditCard:  4000,
	},
	MonthlyIncome: demoIncome,
}

var demoTransactions = []expense.Transaction{
	{Description: "Monthly rent", Amount: 8000},
	{Description: "Electricity and water bill", Amount: 2000},
	{Description: "Supermarket groceries", Amount: 4100},
	{Description: "Zomato order", Amount: 1800},
	{Description: "Coffee with friends", Amount: 1200},
	{Description: "Matatu and taxi fares", Amount: 2500},
	{Description: "Netflix and movie night", Amount: 1500},
}
