package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"json number", `12000.5`, 12000.5, false},
		{"numeric string", `"30000"`, 30000, false},
		{"thousands separators", `"12,000"`, 12000, false},
		{"currency prefix", `"Ksh 4,000"`, 4000, false},
		{"null is zero", `null`, 0, false},
		{"empty string is zero", `"  "`, 0, false},
		{"negative", `-250`, -250, false},
		{"word", `"lots"`, 0, true},
		{"boolean", `true`, 0, true},
		{"object", `{}`, 0, true},
		{"overflowing string", `"1e400"`, 0, true},
		{"overflowing number", `1e400`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			err := n.UnmarshalJSON([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalJSON(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedNumber) {
				t.Errorf("error %v should wrap ErrMalformedNumber", err)
			}
			if !tt.wantErr && float64(n) != tt.want {
				t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.input, n, tt.want)
			}
		})
	}
}

func TestInt_UnmarshalJSON(t *testing.T) {
	tests := map[string]int{
		`24`:     24,
		`"36"`:   36,
		`12.9`:   12,
		`"-3.5"`: -3,
		`null`:   0,
	}
	for input, want := range tests {
		var i Int
		if err := i.UnmarshalJSON([]byte(input)); err != nil {
			t.Fatalf("UnmarshalJSON(%s) error = %v", input, err)
		}
		if int(i) != want {
			t.Errorf("UnmarshalJSON(%s) = %d, want %d", input, i, want)
		}
	}

	var i Int
	if err := i.UnmarshalJSON([]byte(`1e12`)); err == nil {
		t.Error("out of range value should be rejected")
	}
}

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`"true"`, true, false},
		{`"0"`, false, false},
		{`1`, true, false},
		{`null`, false, false},
		{`"maybe"`, false, true},
		{`[]`, false, true},
	}
	for _, tt := range tests {
		var f Flag
		err := f.UnmarshalJSON([]byte(tt.input))
		if (err != nil) != tt.wantErr {
			t.Fatalf("UnmarshalJSON(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if bool(f) != tt.want {
			t.Errorf("UnmarshalJSON(%s) = %v, want %v", tt.input, f, tt.want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) (budgetRequest, error) {
		var req budgetRequest
		r := httptest.NewRequest(http.MethodPost, "/api/budget/analyze", strings.NewReader(body))
		err := decodeJSON(httptest.NewRecorder(), r, &req)
		return req, err
	}

	req, err := decode(`{"income":"30000","expenses":{"housing":8000,"dining_out":"4,000"},"extra":1}`)
	if err != nil {
		t.Fatalf("decodeJSON() error = %v", err)
	}
	in := req.input()
	if in.Income != 30000 || in.Expenses["housing"] != 8000 || in.Expenses["dining_out"] != 4000 {
		t.Errorf("input = %+v", in)
	}

	if _, err := decode(""); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("empty body error = %v, want ErrEmptyBody", err)
	}
	if _, err := decode(`{"income":`); err == nil {
		t.Error("truncated JSON should fail")
	}
	if _, err := decode(`{"income":"abc"}`); !errors.Is(err, ErrMalformedNumber) {
		t.Errorf("malformed number error = %v", err)
	}
	if _, err := decode(`{"expenses":[1,2]}`); err == nil {
		t.Error("wrong shape should fail")
	}
}

func TestDecodeJSON_BodyLimit(t *testing.T) {
	body := `{"income":1,"pad":"` + strings.Repeat("x", maxJSONBody) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var req budgetRequest
	if err := decodeJSON(httptest.NewRecorder(), r, &req); err == nil {
		t.Error("oversized body should be rejected")
	}
}

func TestRequestConversions(t *testing.T) {
	rate := Number(7.5)
	tenure := Int(0)
	d := decisionRequest{DecisionType: " Investment ", Amount: 1000, InterestRate: &rate, TenureMonths: &tenure}.decision()
	if d.Type != "investment" || *d.InterestRate != 7.5 || *d.TenureMonths != 0 {
		t.Errorf("decision = %+v", d)
	}

	d = decisionRequest{}.decision()
	if d.InterestRate != nil || d.TenureMonths != nil {
		t.Error("absent optional fields should stay nil so engine defaults apply")
	}

	holdings := fixedIncomeRequest{Holdings: []holdingRequest{{Name: "T-Bill\x00", Principal: 1000, Rate: 8}}}.holdings()
	if holdings[0].Name != "T-Bill" || holdings[0].TenureYears != nil {
		t.Errorf("holding = %+v", holdings[0])
	}

	g := savingsRequest{RiskTolerance: "AGGRESSIVE", GoalName: "  Car "}.goal()
	if g.RiskTolerance != "aggressive" || g.GoalName != "Car" {
		t.Errorf("goal = %+v", g)
	}

	txns := expenseRequest{Transactions: []transactionRequest{{Description: " Uber ride ", Amount: 300}}}.transactions()
	if len(txns) != 1 || txns[0].Description != "Uber ride" || txns[0].Amount != 300 {
		t.Errorf("transactions = %+v", txns)
	}
}
