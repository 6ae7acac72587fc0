package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuilderWritesTriggers(t *testing.T) {
	rec := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerTransactionCreated("Jan 2024").
		TriggerFormReset().
		BodyHTML(`<div class="success">ok</div>`).
		Write(rec)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	header := rec.Header().Get("HX-Trigger")
	var triggers map[string]any
	if err := json.Unmarshal([]byte(header), &triggers); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	if _, ok := triggers["transaction:created"]; !ok {
		t.Errorf("missing transaction:created trigger in %q", header)
	}
	if _, ok := triggers["form:reset"]; !ok {
		t.Errorf("missing form:reset trigger in %q", header)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	UnprocessableEntityError(`<script>alert(1)</script>`).Write(rec)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Fatalf("error message was not escaped: %q", body)
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("POST").Write(rec)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "POST" {
		t.Fatalf("Allow = %q, want POST", allow)
	}
}

func TestRequestBodyParserForm(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/transactions/delete",
		strings.NewReader("id=tx-1&extra=val"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := p.Get("id"); got != "tx-1" {
		t.Fatalf("Get(id) = %q, want tx-1", got)
	}
}

func TestRequestBodyParserJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/transactions/delete",
		strings.NewReader(`{"id": "tx-2"}`))
	r.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := p.Get("id"); got != "tx-2" {
		t.Fatalf("Get(id) = %q, want tx-2", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "₹12.34"},
		{7500000, "₹75000.00"},
		{5, "₹0.05"},
		{-1234, "-₹12.34"},
		{0, "₹0.00"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.cents); got != tt.want {
			t.Errorf("formatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	if got := formatPct(12.5); got != "+12.5%" {
		t.Errorf("formatPct(12.5) = %q", got)
	}
	if got := formatPct(-3.25); got != "-3.2%" && got != "-3.3%" {
		t.Errorf("formatPct(-3.25) = %q", got)
	}
	if got := formatPct(0); got != "+0.0%" {
		t.Errorf("formatPct(0) = %q", got)
	}
}
