package http

import (
	"net/http"
	"time"

	"finai/internal/engine/budget"
	"finai/internal/engine/expense"
	"finai/internal/engine/loan"
	"finai/internal/engine/risk"
	"finai/internal/log"
)

// decodePOST enforces POST and decodes the JSON body into dst. On failure
// the response has been written and false is returned.
func decodePOST(w http.ResponseWriter, r *http.Request, dst any) bool {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return false
	}
	if err := decodeJSON(w, r, dst); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body",
			log.FieldPath, r.URL.Path,
			log.FieldError, err,
			"error_type", log.ErrorTypeValidation)
		BadRequestError(err.Error()).Write(w)
		return false
	}
	return true
}

// engineRejected answers 422 for inputs an engine refuses to score.
func (s *Server) engineRejected(w http.ResponseWriter, r *http.Request, engine string, err error) {
	s.countEngine(engine, true)
	log.FromContext(r.Context()).WithComponent(log.ComponentEngine).WarnContext(r.Context(), "Engine rejected input",
		log.FieldEngine, engine,
		log.FieldError, err)
	UnprocessableEntityError(err.Error()).Write(w)
}

// engineDone records a successful run and writes the scorecard.
func (s *Server) engineDone(w http.ResponseWriter, r *http.Request, engine string, score int, started time.Time, result any) {
	s.countEngine(engine, false)
	log.NewStructuredLogger(log.FromContext(r.Context()).WithComponent(log.ComponentEngine)).LogEngineRun(r.Context(), engine, score, time.Since(started))
	NewJSONResponse().Body(result).Write(w)
}

func (s *Server) handleBudgetAnalyze(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodePOST(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := budget.Analyze(req.input())
	if err != nil {
		s.engineRejected(w, r, engineBudget, err)
		return
	}
	s.engineDone(w, r, engineBudget, res.HealthScore, start, res)
}

func (s *Server) handleLoanCheck(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !decodePOST(w, r, &req) {
		return
	}

	start := time.Now()
	res := loan.Check(req.profile())
	s.engineDone(w, r, engineLoan, res.Score, start, res)
}

func (s *Server) handleExpenseCategorize(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodePOST(w, r, &req) {
		return
	}

	start := time.Now()
	res := expense.Categorize(req.transactions())
	s.engineDone(w, r, engineExpense, res.CategoriesFound, start, res)
}

func (s *Server) handleSavingsPlan(w http.ResponseWriter, r *http.Request) {
	var req savingsRequest
	if !decodePOST(w, r, &req) {
		return
	}

	start := time.Now()
	goal := req.goal()
	if err := goal.Validate(); err != nil {
		s.engineRejected(w, r, engineSavings, err)
		return
	}
	plan := goal.Normalize().Plan()
	s.engineDone(w, r, engineSavings, int(plan.Progress), start, plan)
}

func (s *Server) handleFixedIncome(w http.ResponseWriter, r *http.Request) {
	var req fixedIncomeRequest
	if !decodePOST(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := risk.AnalyzeFixedIncome(req.holdings())
	if err != nil {
		s.engineRejected(w, r, engineFixedIncome, err)
		return
	}
	s.engineDone(w, r, engineFixedIncome, res.RiskScore, start, res)
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	var req balanceSheetRequest
	if !decodePOST(w, r, &req) {
		return
	}

	start := time.Now()
	res := risk.ValueBalanceSheet(req.sheet())
	s.engineDone(w, r, engineBalanceSheet, res.ValuationScore, start, res)
}

func (s *Server) handleDecisionImpact(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if !decodePOST(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := risk.SimulateDecision(req.decision())
	if err != nil {
		s.engineRejected(w, r, engineDecision, err)
		return
	}
	s.engineDone(w, r, engineDecision, res.ImpactScore, start, res)
}
