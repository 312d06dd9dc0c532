package http

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"sync/atomic"
	"time"

	"finai/internal/chat"
	"finai/internal/log"
	"finai/internal/storage"
)

const readinessTimeout = 3 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady runs every registered dependency check. Any failure makes the
// instance not ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any, len(s.checks)+2)

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
				"check", name, log.FieldError, err)
			checks[name] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	if s.assistant.AIEnabled() {
		checks["chat"] = "ai"
	} else {
		checks["chat"] = "local_only"
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	var kycCounts map[string]int64
	if s.kycStats != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		counts, err := s.kycStats.KYCStatusCounts(ctx)
		cancel()
		if err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to count KYC documents", log.FieldError, err)
		}
		kycCounts = counts
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
	}

	metric("http_requests_total", "counter", "Total number of HTTP requests")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	metric("http_server_errors_total", "counter", "HTTP responses with a 5xx status")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	metric("http_request_duration_avg_seconds", "gauge", "Mean request handling time")
	fmt.Fprintf(w, "http_request_duration_avg_seconds %.6f\n\n", traceMetrics.AverageResponseTime().Seconds())

	metric("engine_runs_total", "counter", "Successful scoring engine evaluations")
	for _, name := range engineNames {
		fmt.Fprintf(w, "engine_runs_total{engine=%q} %d\n", name, atomic.LoadInt64(s.appMetrics.engineRuns[name]))
	}
	fmt.Fprintln(w)

	metric("engine_rejections_total", "counter", "Engine inputs rejected as unprocessable")
	for _, name := range engineNames {
		fmt.Fprintf(w, "engine_rejections_total{engine=%q} %d\n", name, atomic.LoadInt64(s.appMetrics.engineFails[name]))
	}
	fmt.Fprintln(w)

	metric("chat_replies_total", "counter", "Chat replies by source")
	for _, src := range []chat.Source{chat.SourceAI, chat.SourceLocal} {
		fmt.Fprintf(w, "chat_replies_total{source=%q} %d\n", src, atomic.LoadInt64(s.appMetrics.chatReplies[src]))
	}
	fmt.Fprintln(w)

	if s.sessions != nil {
		stats := s.sessions.Stats()
		metric("chat_sessions", "gauge", "Chat sessions held in memory")
		fmt.Fprintf(w, "chat_sessions %d\n\n", s.sessions.Size())
		metric("chat_session_cache_total", "counter", "Session cache activity")
		fmt.Fprintf(w, "chat_session_cache_total{result=\"hit\"} %d\n", stats.Hits)
		fmt.Fprintf(w, "chat_session_cache_total{result=\"miss\"} %d\n", stats.Misses)
		fmt.Fprintf(w, "chat_session_cache_total{result=\"eviction\"} %d\n", stats.Evictions)
		fmt.Fprintf(w, "chat_session_cache_total{result=\"expired\"} %d\n\n", stats.Expired)
	}

	metric("kyc_uploads_total", "counter", "KYC documents accepted by this instance")
	fmt.Fprintf(w, "kyc_uploads_total %d\n\n", atomic.LoadInt64(&s.appMetrics.kycUploads))

	metric("cards_linked_total", "counter", "Cards linked by this instance")
	fmt.Fprintf(w, "cards_linked_total %d\n\n", atomic.LoadInt64(&s.appMetrics.cardsLinked))

	if kycCounts != nil {
		metric("kyc_documents", "gauge", "Stored KYC documents by screening status")
		statuses := []string{storage.StatusPending, storage.StatusApproved, storage.StatusManualReview}
		for status := range kycCounts {
			if !slices.Contains(statuses, status) {
				statuses = append(statuses, status)
			}
		}
		sort.Strings(statuses[3:])
		for _, status := range statuses {
			fmt.Fprintf(w, "kyc_documents{status=%q} %d\n", status, kycCounts[status])
		}
		fmt.Fprintln(w)
	}

	metric("rate_limit_hits_total", "counter", "Total rate limit hits")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	metric("suspicious_requests_total", "counter", "Total suspicious requests detected")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	metric("blocked_requests_total", "counter", "Requests rejected by method")
	fmt.Fprintf(w, "blocked_requests_total %d\n\n", securityMetrics.BlockedRequests)

	metric("uptime_seconds", "gauge", "Application uptime in seconds")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.appMetrics.uptime).Seconds())
}
