package http

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"score": 72}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("X-Custom = %q", w.Header().Get("X-Custom"))
	}
	if w.Body.String() != "{\"score\":72}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d %q, want empty 204", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]float64{"x": math.Inf(1)}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *JSONResponseBuilder
		code    int
		message string
	}{
		{"bad request", BadRequestError("bad input"), http.StatusBadRequest, "bad input"},
		{"unprocessable", UnprocessableEntityError("please provide a valid income amount"), http.StatusUnprocessableEntity, "please provide a valid income amount"},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError, "boom"},
		{"not found", NotFoundError("not found"), http.StatusNotFound, "not found"},
		{"rate limited", TooManyRequestsError(), http.StatusTooManyRequests, "rate limit exceeded, please try again later"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] != tt.message {
				t.Errorf("error = %q, want %q", body["error"], tt.message)
			}
		})
	}
}

func TestMethodNotAllowedError(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(w)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status code = %d, want 405", w.Code)
	}
	if w.Header().Get("Allow") != "POST" {
		t.Errorf("Allow = %q, want POST", w.Header().Get("Allow"))
	}
}

func TestRequireMethod(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if RequirePOST(r) == nil {
		t.Error("RequirePOST() should reject GET")
	}
	if RequireGET(r) != nil {
		t.Error("RequireGET() should accept GET")
	}
	if RequireGET(httptest.NewRequest(http.MethodHead, "/", nil)) != nil {
		t.Error("RequireGET() should accept HEAD")
	}
}
