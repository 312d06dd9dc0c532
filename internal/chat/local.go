package chat

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"finai/internal/core"
	"finai/internal/engine/budget"
	"finai/internal/engine/expense"
	"finai/internal/engine/loan"
	"finai/internal/engine/risk"
)

const (
	identityText = "I am Fin AI, your financial coach. I can help you with budgeting, savings analysis, " +
		"loans or general questions you may have. How can I assist you today?"
	greetingText = "Hello! I am Fin AI. I have analyzed your dashboard data and I am ready to help you " +
		"optimize your finances or answer any general questions. What is on your mind?"
	missionText = "Our mission is to empower financial inclusion through AI. We align with SDG 1 (No Poverty) " +
		"by providing tools to manage debt and SDG 17 (Partnerships) by building community-driven financial literacy."
	fallbackText = "The AI service is not reachable right now, but I can still analyze your budget, loan eligibility, " +
		"savings goals, spending or net worth. What would you like to explore?"
)

// intent is one row of the local routing table. Phrases match on word
// boundaries, so "hi" does not fire on "this".
type intent struct {
	phrases []string
	reply   func(q *quickReplies) Reply
}

var intents = []intent{
	{[]string{"who are you", "what are you", "how are you", "your name"}, func(q *quickReplies) Reply {
		return Reply{Response: identityText, QuickReplies: q.first(4), Category: CategoryGeneral}
	}},
	{[]string{"hello", "hi", "hey"}, func(q *quickReplies) Reply {
		return Reply{Response: greetingText, QuickReplies: q.first(4), Category: CategoryGreeting}
	}},
	{[]string{"sdg", "mission", "hackathon"}, func(q *quickReplies) Reply {
		return Reply{Response: missionText, QuickReplies: q.first(4), Category: CategoryGeneral}
	}},
	{[]string{"loan", "loans", "borrow", "emi", "credit", "eligible", "eligibility"}, loanReply},
	{[]string{"save", "saving", "savings", "goal", "emergency fund"}, savingsReply},
	{[]string{"net worth", "risk", "assets", "balance sheet", "debt", "invest", "investing", "investment"}, riskReply},
	{[]string{"expense", "expenses", "spending", "spend", "categories", "transactions"}, expenseReply},
	{[]string{"budget", "budgeting", "income", "money", "rent", "50/30/20"}, budgetReply},
}

// route answers a message without the language model.
func route(msg string, q *quickReplies) Reply {
	text := normalize(msg)
	for _, in := range intents {
		for _, p := range in.phrases {
			if strings.Contains(text, " "+p+" ") {
				return in.reply(q)
			}
		}
	}
	return Reply{Response: fallbackText, QuickReplies: q.first(4), Category: CategoryGeneral}
}

// normalize lower-cases the message and collapses every run of characters
// other than letters, digits and '/' into one space, padding both ends.
func normalize(msg string) string {
	fields := strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '/'
	})
	return " " + strings.Join(fields, " ") + " "
}

func budgetReply(_ *quickReplies) Reply {
	res, err := budget.Analyze(demoBudget)
	if err != nil {
		return Reply{Response: "<p>I could not analyze your budget right now.</p>", Category: CategoryFinancial}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Budget Health: %d/100</h3>", res.HealthScore)
	fmt.Fprintf(&b, "<p>Your monthly income is <strong>%s</strong> and you have <strong>%s</strong> left after expenses.</p>",
		core.FormatKsh(res.Income), core.FormatKsh(res.Remaining))
	b.WriteString("<ul>")
	writeBucket(&b, "Needs", res.Buckets.Needs)
	writeBucket(&b, "Wants", res.Buckets.Wants)
	writeBucket(&b, "Savings", res.Buckets.Savings)
	b.WriteString("</ul>")
	for _, rec := range res.Recommendations {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(rec.Message))
	}
	return Reply{
		Response:     b.String(),
		QuickReplies: []string{"How to cut dining out?", "What is the 50/30/20 rule?", "Show my expenses"},
		Category:     CategoryFinancial,
	}
}

func writeBucket(b *strings.Builder, name string, s budget.BucketSummary) {
	fmt.Fprintf(b, "<li><strong>%s</strong>: %s (%.1f%% of income, ideal %.0f%%)</li>",
		name, core.FormatKsh(s.Amount), s.Percentage, s.Ideal)
}

func loanReply(_ *quickReplies) Reply {
	res := loan.Check(demoLoan)
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Loan Eligibility: %d/100 (%s)</h3>", res.Score, res.Verdict)
	fmt.Fprintf(&b, "<p>A safe monthly installment for you is about <strong>%s</strong>.</p>", core.FormatKshWhole(res.SafeEMI))
	if len(res.EligibleProducts) > 0 {
		b.WriteString("<ul>")
		for _, o := range res.EligibleProducts {
			fmt.Fprintf(&b, "<li><strong>%s</strong>: up to %s at %.0f%% for %d months</li>",
				html.EscapeString(o.Name), core.FormatKshWhole(o.MaxEligibleAmount), o.InterestRate, o.TenureMonths)
		}
		b.WriteString("</ul>")
	}
	if len(res.ImprovementTips) > 0 {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(res.ImprovementTips[0]))
	}
	return Reply{
		Response:     b.String(),
		QuickReplies: []string{"How to improve credit score?", "What is microfinance?", "How much EMI can I afford?"},
		Category:     CategoryLoan,
	}
}

func savingsReply(_ *quickReplies) Reply {
	plan := demoGoal.Plan()
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s Plan</h3>", html.EscapeString(plan.GoalName))
	fmt.Fprintf(&b, "<p>To reach <strong>%s</strong> in %d months you need to set aside <strong>%s</strong> per month. You are %.1f%% of the way there.</p>",
		core.FormatKshWhole(plan.TargetAmount), plan.TargetMonths, core.FormatKshWhole(plan.MonthlyRequired), plan.Progress)
	b.WriteString("<ul>")
	for _, s := range plan.Scenarios {
		fmt.Fprintf(&b, "<li><strong>%s</strong>: %s</li>", s.Label, core.FormatKshWhole(s.ProjectedValue))
	}
	b.WriteString("</ul>")
	return Reply{
		Response:     b.String(),
		QuickReplies: []string{"Where should I invest?", "What is SIP?", "How to build an emergency fund?"},
		Category:     CategorySavings,
	}
}

func riskReply(_ *quickReplies) Reply {
	v := risk.ValueBalanceSheet(demoBalanceSheet)
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Balance Sheet Score: %d/100</h3>", v.ValuationScore)
	fmt.Fprintf(&b, "<p>Net worth <strong>%s</strong>, solvency %.1f%%, liquidity ratio %.2f, %.1f months of runway.</p>",
		core.FormatKshWhole(v.NetWorth), v.SolvencyRatio, v.LiquidityRatio, v.MonthsRunway)
	b.WriteString("<ul>")
	for _, in := range v.Insights {
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(in.Text))
	}
	b.WriteString("</ul>")
	return Reply{
		Response:     b.String(),
		QuickReplies: []string{"SIP vs lump sum?", "How to manage debt?", "Best investment for beginners?"},
		Category:     CategoryRisk,
	}
}

func expenseReply(_ *quickReplies) Reply {
	res := expense.Categorize(demoTransactions)
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Spending Breakdown: %s</h3>", core.FormatKsh(res.Total))
	b.WriteString("<ul>")
	for _, c := range core.RankAmounts(res.CategoryTotals) {
		fmt.Fprintf(&b, "<li><strong>%s</strong>: %s</li>", core.Category(c.Name).Label(), core.FormatKsh(c.Amount))
	}
	b.WriteString("</ul>")
	for _, in := range res.Insights {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(in))
	}
	return Reply{
		Response:     b.String(),
		QuickReplies: []string{"How to reduce expenses?", "How do I start budgeting?", "Tips for saving money?"},
		Category:     CategoryExpense,
	}
}
