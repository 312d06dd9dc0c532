package http

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"finai/internal/cache"
	"finai/internal/chat"
	"finai/internal/log"
	"finai/internal/middleware/ratelimit"
	"finai/internal/middleware/security"
	"finai/internal/middleware/trace"
	"finai/internal/services"
)

const (
	engineBudget       = "budget"
	engineLoan         = "loan"
	engineExpense      = "expense"
	engineSavings      = "savings"
	engineFixedIncome  = "fixed_income"
	engineBalanceSheet = "balance_sheet"
	engineDecision     = "decision_impact"
)

var engineNames = []string{
	engineBudget, engineLoan, engineExpense, engineSavings,
	engineFixedIncome, engineBalanceSheet, engineDecision,
}

type (
	// Onboarding stores KYC uploads and linked cards.
	Onboarding interface {
		SubmitKYC(ctx context.Context, filename string, content io.Reader) (*services.KYCResult, error)
		LinkCard(ctx context.Context, name, number string) (*services.CardResult, error)
	}

	// KYCStats reports stored KYC documents per status for /metrics.
	KYCStats interface {
		KYCStatusCounts(ctx context.Context) (map[string]int64, error)
	}

	// SessionStats is implemented by the in-memory chat session store.
	SessionStats interface {
		Stats() cache.Stats
		Size() int
	}

	// ReadinessCheck reports whether a dependency can serve requests.
	ReadinessCheck func(ctx context.Context) error

	// Dependencies wires the server to the rest of the application. Only
	// Assistant is required; missing onboarding makes those routes 503.
	Dependencies struct {
		Assistant          *chat.Assistant
		Onboarding         Onboarding
		KYCStats           KYCStats
		Sessions           SessionStats
		Checks             map[string]ReadinessCheck
		RateLimitPerMinute int
		Logger             *log.Logger
	}
)

type Server struct {
	http.Server

	logger     *log.Logger
	assistant  *chat.Assistant
	onboarding Onboarding
	kycStats   KYCStats
	sessions   SessionStats
	checks     map[string]ReadinessCheck

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	upgrader         websocket.Upgrader

	appMetrics *appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime      time.Time
	engineRuns  map[string]*int64
	engineFails map[string]*int64
	kycUploads  int64
	cardsLinked int64
	chatReplies map[chat.Source]*int64
}

func newAppMetrics() *appMetrics {
	m := &appMetrics{
		uptime:      time.Now(),
		engineRuns:  make(map[string]*int64, len(engineNames)),
		engineFails: make(map[string]*int64, len(engineNames)),
		chatReplies: map[chat.Source]*int64{chat.SourceAI: new(int64), chat.SourceLocal: new(int64)},
	}
	for _, name := range engineNames {
		m.engineRuns[name] = new(int64)
		m.engineFails[name] = new(int64)
	}
	return m
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(log.DefaultConfig())
	}
	if deps.Assistant == nil {
		deps.Assistant = chat.New(chat.Options{Logger: deps.Logger})
	}

	logger := deps.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:           logger,
		assistant:        deps.Assistant,
		onboarding:       deps.Onboarding,
		kycStats:         deps.KYCStats,
		sessions:         deps.Sessions,
		checks:           deps.Checks,
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		securityDetector: security.NewDetector(deps.Logger),
		appMetrics:       newAppMetrics(),
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, deps.Logger)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     sameOrigin,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/api/budget/analyze", s.handleBudgetAnalyze)
	mux.HandleFunc("/api/loan/check", s.handleLoanCheck)
	mux.HandleFunc("/api/expense/categorize", s.handleExpenseCategorize)
	mux.HandleFunc("/api/savings/plan", s.handleSavingsPlan)
	mux.HandleFunc("/api/risk/fixed-income", s.handleFixedIncome)
	mux.HandleFunc("/api/risk/balance-sheet", s.handleBalanceSheet)
	mux.HandleFunc("/api/risk/decision-impact", s.handleDecisionImpact)

	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/ws/chat", s.handleChatWebSocket)

	mux.HandleFunc("/api/onboarding/kyc", s.handleUploadKYC)
	mux.HandleFunc("/api/onboarding/card", s.handleLinkCard)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})

	// Outermost first: detection, tracing, request logger, headers, limits.
	var handler http.Handler = mux
	handler = s.limitAPI(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.Middleware(logger, trace.FromRequest)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	s.Handler = handler

	return s
}

// limitAPI applies the per-client rate limit to API and websocket routes.
// Probes and metrics are never limited.
func (s *Server) limitAPI(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/ws/") {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sameOrigin accepts websocket upgrades from non-browser clients and from
// pages served by the same host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	host := strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://")
	return strings.EqualFold(host, r.Host)
}

func (s *Server) countEngine(engine string, failed bool) {
	if failed {
		atomic.AddInt64(s.appMetrics.engineFails[engine], 1)
		return
	}
	atomic.AddInt64(s.appMetrics.engineRuns[engine], 1)
}

// Shutdown stops the rate limiter and shuts down the HTTP server. Only the
// first call has an effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
