package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"finai/internal/chat"
	"finai/internal/log"
	"finai/internal/services"
	"finai/internal/storage"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil), Component: "test"})
}

// newTestServer wires a server to a temp SQLite repository, inline
// screening and a local-only assistant.
func newTestServer(t *testing.T, mutate func(*Dependencies)) *Server {
	t.Helper()
	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "finai.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := testLogger()
	sessions := chat.NewMemoryStore(10, time.Hour)
	deps := Dependencies{
		Assistant:  chat.New(chat.Options{Sessions: sessions, Logger: logger}),
		Onboarding: services.NewOnboardingService(repo, nil, nil, filepath.Join(dir, "uploads"), logger),
		KYCStats:   repo,
		Sessions:   sessions,
		Checks: map[string]ReadinessCheck{
			"sqlite": repo.Ping,
		},
		RateLimitPerMinute: 1000,
		Logger:             logger,
	}
	if mutate != nil {
		mutate(&deps)
	}

	srv := NewServer(":0", deps)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON object: %v\n%s", err, rr.Body.String())
	}
	return body
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || decodeBody(t, rr)["status"] != "ok" {
		t.Fatalf("healthz = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/readyz", "")
	body := decodeBody(t, rr)
	if rr.Code != http.StatusOK || body["status"] != "ready" {
		t.Fatalf("readyz = %d %s", rr.Code, rr.Body.String())
	}
	checks := body["checks"].(map[string]any)
	if checks["sqlite"] != "ok" || checks["chat"] != "local_only" {
		t.Errorf("checks = %v", checks)
	}
}

func TestReadyFailsWhenCheckFails(t *testing.T) {
	srv := newTestServer(t, func(d *Dependencies) {
		d.Checks["amqp"] = func(context.Context) error { return errors.New("AMQP connection is down") }
	})

	rr := do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status = %d, want 503", rr.Code)
	}
	checks := decodeBody(t, rr)["checks"].(map[string]any)
	if checks["amqp"] != "failed: AMQP connection is down" {
		t.Errorf("amqp check = %v", checks["amqp"])
	}
}

func TestEngineEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name  string
		path  string
		body  string
		code  int
		check func(t *testing.T, body map[string]any)
	}{
		{
			name: "budget reference profile",
			path: "/api/budget/analyze",
			body: `{"income":30000,"expenses":{"housing":8000,"dining_out":"4000","savings":4000}}`,
			code: http.StatusOK,
			check: func(t *testing.T, b map[string]any) {
				if b["health_score"] != 80.0 || b["risk_level"] != "medium" {
					t.Errorf("budget = %v / %v", b["health_score"], b["risk_level"])
				}
			},
		},
		{
			name: "budget without income",
			path: "/api/budget/analyze",
			body: `{"expenses":{"housing":8000}}`,
			code: http.StatusUnprocessableEntity,
			check: func(t *testing.T, b map[string]any) {
				if b["error"] != "please provide a valid income amount" {
					t.Errorf("error = %v", b["error"])
				}
			},
		},
		{
			name: "loan sample profile",
			path: "/api/loan/check",
			body: `{"monthly_income":30000,"monthly_expenses":20000,"existing_debt":10000,"savings":50000,"employment_months":"24","dependents":2,"has_bank_account":true,"requested_amount":50000}`,
			code: http.StatusOK,
			check: func(t *testing.T, b map[string]any) {
				if b["score"] != 68.0 || b["verdict"] != "Good" {
					t.Errorf("loan = %v / %v", b["score"], b["verdict"])
				}
			},
		},
		{
			name: "expense categorization",
			path: "/api/expense/categorize",
			body: `{"transactions":[{"description":"Monthly rent","amount":15000},{"description":"Uber to work","amount":"450"}]}`,
			code: http.StatusOK,
			check: func(t *testing.T, b map[string]any) {
				totals := b["category_totals"].(map[string]any)
				if totals["housing"] != 15000.0 || totals["transportation"] != 450.0 {
					t.Errorf("totals = %v", totals)
				}
			},
		},
		{
			name: "savings plan defaults",
			path: "/api/savings/plan",
			body: `{"monthly_income":50000,"monthly_expenses":30000,"target_amount":120000}`,
			code: http.StatusOK,
			check: func(t *testing.T, b map[string]any) {
				if b["goal_name"] != "My Goal" || b["target_months"] != 12.0 || b["risk_tolerance"] != "moderate" {
					t.Errorf("plan = %v / %v / %v", b["goal_name"], b["target_months"], b["risk_tolerance"])
				}
			},
		},
		{
			name: "fixed income without holdings",
			path: "/api/risk/fixed-income",
			body: `{"holdings":[]}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "fixed income par bond",
			path: "/api/risk/fixed-income",
			body: `{"holdings":[{"name":"Treasury Bond","principal":100000,"rate":10,"tenure_years":3}]}`,
			code: http.StatusOK,
			check: func(t *testing.T, b map[string]any) {
				h := b["holdings"].([]any)[0].(map[string]any)
				if h["macaulay_duration"] != 2.74 {
					t.Errorf("duration = %v", h["macaulay_duration"])
				}
			},
		},
		{
			name: "fixed income tenure too long",
			path: "/api/risk/fixed-income",
			body: `{"holdings":[{"principal":1000,"rate":5,"tenure_years":1e12}]}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "savings horizon too long",
			path: "/api/savings/plan",
			body: `{"monthly_income":50000,"target_amount":120000,"target_months":2000000000}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "balance sheet without liabilities",
			path: "/api/risk/balance-sheet",
			body: `{"assets":{"cash_savings":50000},"monthly_income":30000}`,
			code: http.StatusOK,
			check: func(t *testing.T, b map[string]any) {
				if b["liquidity_ratio"] != 999.0 {
					t.Errorf("liquidity ratio = %v", b["liquidity_ratio"])
				}
			},
		},
		{
			name: "unknown decision type",
			path: "/api/risk/decision-impact",
			body: `{"decision_type":"lottery","amount":1000}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "malformed number",
			path: "/api/loan/check",
			body: `{"monthly_income":"thirty thousand"}`,
			code: http.StatusBadRequest,
		},
		{
			name: "overflowing numeric string",
			path: "/api/budget/analyze",
			body: `{"income":"1e400","expenses":{}}`,
			code: http.StatusBadRequest,
		},
		{
			name: "empty body",
			path: "/api/savings/plan",
			body: ``,
			code: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, tt.path, tt.body)
			if rr.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.code, rr.Body.String())
			}
			body := decodeBody(t, rr)
			if tt.code >= 400 {
				if _, ok := body["error"].(string); !ok {
					t.Errorf("error body missing: %v", body)
				}
			}
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodGet, "/api/budget/analyze", "")
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "POST" {
		t.Fatalf("status = %d, Allow = %q", rr.Code, rr.Header().Get("Allow"))
	}

	rr = do(t, srv, http.MethodPost, "/healthz", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /healthz status = %d", rr.Code)
	}
}

func TestUnknownPath(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/nope", "")
	if rr.Code != http.StatusNotFound || decodeBody(t, rr)["error"] != "not found" {
		t.Fatalf("status = %d %s", rr.Code, rr.Body.String())
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	srv := newTestServer(t, nil)
	rr := do(t, srv, http.MethodGet, "/healthz", "")

	if !strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_") {
		t.Errorf("X-Request-ID = %q", rr.Header().Get("X-Request-ID"))
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("security headers missing: %v", rr.Header())
	}
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/chat", `{"message":"Hi!"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var reply chat.Reply
	if err := json.Unmarshal(rr.Body.Bytes(), &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Category != chat.CategoryGreeting || reply.Source != chat.SourceLocal || reply.SessionID == "" {
		t.Errorf("reply = %+v", reply)
	}
	if len(reply.QuickReplies) == 0 {
		t.Error("expected quick replies")
	}

	rr = do(t, srv, http.MethodPost, "/api/chat", `{"message":"","session_id":"`+reply.SessionID+`"}`)
	var again chat.Reply
	if err := json.Unmarshal(rr.Body.Bytes(), &again); err != nil {
		t.Fatal(err)
	}
	if again.SessionID != reply.SessionID || again.Category != chat.CategoryGeneral {
		t.Errorf("second reply = %+v", again)
	}
}

func TestChatWebSocket(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(chatRequest{Message: "How is my budget?"}); err != nil {
		t.Fatal(err)
	}
	var first chat.Reply
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if first.Category != chat.CategoryFinancial || first.SessionID == "" {
		t.Errorf("first reply = %+v", first)
	}

	if err := conn.WriteJSON(chatRequest{Message: "Am I eligible for a loan?"}); err != nil {
		t.Fatal(err)
	}
	var second chat.Reply
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatal(err)
	}
	if second.SessionID != first.SessionID || second.Category != chat.CategoryLoan {
		t.Errorf("second reply = %+v", second)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	var errMsg map[string]string
	if err := conn.ReadJSON(&errMsg); err != nil {
		t.Fatal(err)
	}
	if errMsg["error"] != "invalid message format" {
		t.Errorf("error frame = %v", errMsg)
	}
}

func TestChatWebSocketRejectsForeignOrigin(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example"}})
	if err == nil {
		t.Fatal("Dial() should fail for a foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v", resp)
	}
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	} else {
		mw.WriteField("note", "no file")
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadKYC(t *testing.T) {
	srv := newTestServer(t, nil)

	body, contentType := multipartUpload(t, "file", "passport scan.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/api/onboarding/kyc", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	res := decodeBody(t, rr)
	score, _ := res["crb_score"].(float64)
	if res["success"] != true || score < services.MinCRBScore || score > services.MaxCRBScore {
		t.Fatalf("response = %v", res)
	}
	wantStatus := services.Decide(int(score))
	if res["status"] != wantStatus {
		t.Errorf("status = %v, want %v for score %v", res["status"], wantStatus, score)
	}
	if !strings.HasPrefix(res["message"].(string), "Document processed & checked. CRB Status: ") {
		t.Errorf("message = %v", res["message"])
	}

	metrics := do(t, srv, http.MethodGet, "/metrics", "").Body.String()
	if !strings.Contains(metrics, "kyc_uploads_total 1") || !strings.Contains(metrics, `kyc_documents{status="`+wantStatus+`"} 1`) {
		t.Errorf("metrics missing kyc counts:\n%s", metrics)
	}
}

func TestUploadKYCErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name     string
		field    string
		filename string
		want     string
	}{
		{"no file part", "", "", "No file part"},
		{"unusable file name", "file", "..", "No selected file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, tt.field, tt.filename, "x")
			req := httptest.NewRequest(http.MethodPost, "/api/onboarding/kyc", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusBadRequest || decodeBody(t, rr)["error"] != tt.want {
				t.Errorf("got %d %s, want 400 %q", rr.Code, rr.Body.String(), tt.want)
			}
		})
	}

	rr := do(t, srv, http.MethodPost, "/api/onboarding/kyc", `{"file":"x"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-multipart status = %d, want 400", rr.Code)
	}
}

func TestLinkCard(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/api/onboarding/card", `{"name":"Jane Doe","number":"4111 1111 1111 1234"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["success"] != true || body["message"] != "Card ending in 1234 securely linked and stored." {
		t.Errorf("response = %v", body)
	}

	rr = do(t, srv, http.MethodPost, "/api/onboarding/card", `{"number":"4111"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing name status = %d, want 422", rr.Code)
	}
}

func TestOnboardingNotConfigured(t *testing.T) {
	srv := newTestServer(t, func(d *Dependencies) { d.Onboarding = nil })

	rr := do(t, srv, http.MethodPost, "/api/onboarding/card", `{"name":"Jane","number":"4242"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	srv := newTestServer(t, func(d *Dependencies) { d.RateLimitPerMinute = 2 })

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/chat", `{"message":"hi"}`); rr.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPost, "/api/chat", `{"message":"hi"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("third request status = %d, Retry-After = %q", rr.Code, rr.Header().Get("Retry-After"))
	}

	if rr := do(t, srv, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
		t.Errorf("healthz should not be rate limited, got %d", rr.Code)
	}
}

func TestMetricsCountsEngineRuns(t *testing.T) {
	srv := newTestServer(t, nil)

	do(t, srv, http.MethodPost, "/api/budget/analyze", `{"income":1000,"expenses":{}}`)
	do(t, srv, http.MethodPost, "/api/budget/analyze", `{"income":0}`)
	do(t, srv, http.MethodPost, "/api/chat", `{"message":"hello"}`)

	rr := do(t, srv, http.MethodGet, "/metrics", "")
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
	for _, want := range []string{
		`engine_runs_total{engine="budget"} 1`,
		`engine_rejections_total{engine="budget"} 1`,
		`chat_replies_total{source="local"} 1`,
		`http_requests_total 3`,
		`chat_sessions 0`,
	} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("metrics missing %q:\n%s", want, rr.Body.String())
		}
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	srv := newTestServer(t, nil)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}
