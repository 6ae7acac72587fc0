package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/services"
	"fintrack/internal/store"
	"fintrack/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	st := store.New(memory.NewSeeded("demo"), "demo")
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("load store: %v", err)
	}
	svc := services.NewTransactionService(st, nil)

	srv := NewServer(":0", svc, st)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv, st
}

func doRequest(srv *Server, method, target, body, contentType string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", contentType)
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, r)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	if rec := doRequest(srv, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("/healthz = %d, want 200", rec.Code)
	}
	if rec := doRequest(srv, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Errorf("/readyz = %d, want 200", rec.Code)
	}
}

func TestIndex(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/ = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fintrack") {
		t.Error("index page should mention the app name")
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, st := newTestServer(t)
	before := len(st.List())

	form := url.Values{
		"type":        {"expense"},
		"amount":      {"42.50"},
		"category":    {"Food"},
		"description": {"Dinner"},
		"date":        {"2024-03-10"},
	}
	rec := doRequest(srv, http.MethodPost, "/transactions", form.Encode(), "application/x-www-form-urlencoded")
	if rec.Code != http.StatusOK {
		t.Fatalf("create = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if len(st.List()) != before+1 {
		t.Fatalf("store should have grown to %d, has %d", before+1, len(st.List()))
	}
	if trigger := rec.Header().Get("HX-Trigger"); !strings.Contains(trigger, "transaction:created") {
		t.Errorf("HX-Trigger = %q, want transaction:created", trigger)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv, st := newTestServer(t)
	before := len(st.List())

	tests := []struct {
		name string
		form url.Values
	}{
		{"zero amount", url.Values{
			"type": {"expense"}, "amount": {"0"}, "category": {"Food"},
			"description": {"x"}, "date": {"2024-03-10"},
		}},
		{"negative amount", url.Values{
			"type": {"expense"}, "amount": {"-5"}, "category": {"Food"},
			"description": {"x"}, "date": {"2024-03-10"},
		}},
		{"bad date", url.Values{
			"type": {"expense"}, "amount": {"5"}, "category": {"Food"},
			"description": {"x"}, "date": {"10/03/2024"},
		}},
		{"missing category", url.Values{
			"type": {"expense"}, "amount": {"5"}, "category": {""},
			"description": {"x"}, "date": {"2024-03-10"},
		}},
		{"bad type", url.Values{
			"type": {"transfer"}, "amount": {"5"}, "category": {"Food"},
			"description": {"x"}, "date": {"2024-03-10"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPost, "/transactions", tt.form.Encode(), "application/x-www-form-urlencoded")
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}
		})
	}

	if len(st.List()) != before {
		t.Fatalf("rejected requests must not change the store: %d != %d", len(st.List()), before)
	}
}

func TestCreateTransactionMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/transactions", "", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /transactions = %d, want 405", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv, st := newTestServer(t)
	before := len(st.List())

	rec := doRequest(srv, http.MethodPost, "/transactions/delete", "id=sample-2", "application/x-www-form-urlencoded")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	if len(st.List()) != before-1 {
		t.Fatalf("store should have shrunk to %d, has %d", before-1, len(st.List()))
	}
}

func TestDeleteUnknownTransaction(t *testing.T) {
	srv, st := newTestServer(t)
	before := len(st.List())

	rec := doRequest(srv, http.MethodPost, "/transactions/delete", "id=never-existed", "application/x-www-form-urlencoded")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete unknown = %d, want 404", rec.Code)
	}
	if len(st.List()) != before {
		t.Fatal("failed delete must not change the store")
	}
}

func TestSummaryPartial(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/ui/summary?month=Jan+2024", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/ui/summary = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	// Seeded January: 75000 income, 16700 expenses, 58300 savings.
	for _, want := range []string{"₹75000.00", "₹16700.00", "₹58300.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("summary missing %q in %q", want, body)
		}
	}
}

func TestCategoriesPartial(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/ui/categories?month=Jan+2024", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/ui/categories = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, cat := range []string{"Food", "Transportation", "Entertainment", "Utilities"} {
		if !strings.Contains(body, cat) {
			t.Errorf("breakdown missing category %q", cat)
		}
	}
	// Food is the largest slice and must come first.
	if strings.Index(body, "Food") > strings.Index(body, "Utilities") {
		t.Error("breakdown should list Food before Utilities")
	}
}

func TestMonthOptionsPartial(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/ui/months?month=Jan+2024", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/ui/months = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Feb 2024") || !strings.Contains(body, "Jan 2024") {
		t.Errorf("month options missing seeded months: %q", body)
	}
	// Most recent first.
	if strings.Index(body, "Feb 2024") > strings.Index(body, "Jan 2024") {
		t.Error("months should be listed most recent first")
	}
}

func TestComparePartial(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/ui/compare?month=Feb+2024", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/ui/compare = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Feb 2024") || !strings.Contains(body, "Jan 2024") {
		t.Errorf("compare should name both months: %q", body)
	}
	if !strings.Contains(body, "Food") {
		t.Errorf("compare should show the top category: %q", body)
	}
}

func TestBalancePartial(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/ui/balance", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/ui/balance = %d, want 200", rec.Code)
	}
	// Full seeded ledger: 150000 income - 27700 expenses = 122300.
	if !strings.Contains(rec.Body.String(), "₹122300.00") {
		t.Errorf("balance = %q, want ₹122300.00", rec.Body.String())
	}

	asOf := doRequest(srv, http.MethodGet, "/ui/balance?as_of=2024-01-31", "", "")
	if !strings.Contains(asOf.Body.String(), "₹58300.00") {
		t.Errorf("balance as of Jan 31 = %q, want ₹58300.00", asOf.Body.String())
	}

	bad := doRequest(srv, http.MethodGet, "/ui/balance?as_of=tomorrow", "", "")
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("bad as_of = %d, want 400", bad.Code)
	}
}

func TestSeriesJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/ui/series", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("/ui/series = %d, want 200", rec.Code)
	}

	var points []struct {
		Month    string  `json:"month"`
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
		Savings  float64 `json:"savings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &points); err != nil {
		t.Fatalf("series is not valid JSON: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 series points, got %d", len(points))
	}
	if points[0].Month != "Jan 2024" || points[1].Month != "Feb 2024" {
		t.Errorf("series out of order: %+v", points)
	}
	if points[0].Savings != points[0].Income-points[0].Expenses {
		t.Error("savings identity violated in series")
	}
}

func TestPartialCacheInvalidatedByMutation(t *testing.T) {
	srv, _ := newTestServer(t)

	first := doRequest(srv, http.MethodGet, "/ui/summary?month=Mar+2024", "", "").Body.String()
	if !strings.Contains(first, "₹0.00") {
		t.Fatalf("March should start empty, got %q", first)
	}

	form := url.Values{
		"type":        {"income"},
		"amount":      {"100"},
		"category":    {"Income"},
		"description": {"Gift"},
		"date":        {"2024-03-01"},
	}
	rec := doRequest(srv, http.MethodPost, "/transactions", form.Encode(), "application/x-www-form-urlencoded")
	if rec.Code != http.StatusOK {
		t.Fatalf("create = %d", rec.Code)
	}

	second := doRequest(srv, http.MethodGet, "/ui/summary?month=Mar+2024", "", "").Body.String()
	if !strings.Contains(second, "₹100.00") {
		t.Fatalf("summary still stale after mutation: %q", second)
	}
}

func TestRequestLogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	srv, _ := newTestServer(t)
	doRequest(srv, http.MethodGet, "/ui/balance", "", "")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req_`) {
		t.Errorf("request logs missing request id: %q", out)
	}
	if !strings.Contains(out, `"component":"http"`) {
		t.Errorf("request logs missing component tag: %q", out)
	}
	if !strings.Contains(out, "Request completed") {
		t.Errorf("request logs missing completion record: %q", out)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/", "", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
