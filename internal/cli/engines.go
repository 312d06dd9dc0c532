package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"finai/internal/engine/budget"
	"finai/internal/engine/expense"
	"finai/internal/engine/loan"
	"finai/internal/engine/risk"
	"finai/internal/engine/savings"
)

type (
	expensesInput struct {
		Transactions []expense.Transaction `yaml:"transactions"`
	}

	holdingsInput struct {
		Holdings []risk.Holding `yaml:"holdings"`
	}
)

// engineCmd builds a command that decodes --file into a fresh In and
// prints what run returns.
func engineCmd[In any](use, short string, run func(In) (any, error)) *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in In
			if err := readInput(file, cmd.InOrStdin(), &in); err != nil {
				return err
			}
			res, err := run(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	addFileFlag(c, &file)
	return c
}

func budgetCmd() *cobra.Command {
	return engineCmd("budget", "Score a monthly budget against the 50/30/20 rule",
		func(in budget.Input) (any, error) {
			return budget.Analyze(in)
		})
}

func loanCmd() *cobra.Command {
	return engineCmd("loan", "Score loan eligibility and list qualifying products",
		func(p loan.Profile) (any, error) {
			return loan.Check(p), nil
		})
}

func expensesCmd() *cobra.Command {
	return engineCmd("expenses", "Categorize transactions by description",
		func(in expensesInput) (any, error) {
			return expense.Categorize(in.Transactions), nil
		})
}

func savingsCmd() *cobra.Command {
	return engineCmd("savings", "Plan monthly contributions toward a savings goal",
		func(g savings.Goal) (any, error) {
			if err := g.Validate(); err != nil {
				return nil, err
			}
			return g.Normalize().Plan(), nil
		})
}

func riskCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "risk",
		Short: "Portfolio, balance sheet and decision risk analysis",
	}
	c.AddCommand(
		engineCmd("fixed-income", "Duration and rate risk of fixed-income holdings",
			func(in holdingsInput) (any, error) {
				return risk.AnalyzeFixedIncome(in.Holdings)
			}),
		engineCmd("balance-sheet", "Net worth, solvency and liquidity of a personal balance sheet",
			func(s risk.BalanceSheet) (any, error) {
				return risk.ValueBalanceSheet(s), nil
			}),
		engineCmd("decision", "Simulate the impact of a loan, investment or purchase",
			func(d risk.Decision) (any, error) {
				d.Type = strings.ToLower(strings.TrimSpace(d.Type))
				return risk.SimulateDecision(d)
			}),
	)
	return c
}
