package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// monthParam reads the month selector value, defaulting to the current month.
func monthParam(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		return v
	}
	return analytics.CurrentMonthKey()
}

func (s *Server) executePartial(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// handleSummary renders the income/expenses/savings cards for a month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month := monthParam(r)
	s.renderCached(w, r, "summary", month, func() ([]byte, error) {
		summary := analytics.SummaryFor(s.store.List(), month)

		savingsRate := 0.0
		if summary.Income.Cents > 0 {
			savingsRate = float64(summary.Savings.Cents) / float64(summary.Income.Cents) * 100
		}

		data := struct {
			Month       string
			Income      string
			Expenses    string
			Savings     string
			SavingsRate string
			Negative    bool
		}{
			Month:       month,
			Income:      formatAmount(summary.Income.Cents),
			Expenses:    formatAmount(summary.Expenses.Cents),
			Savings:     formatAmount(summary.Savings.Cents),
			SavingsRate: fmt.Sprintf("%.1f%%", savingsRate),
			Negative:    summary.Savings.Cents < 0,
		}
		return s.executePartial("summary_cards.html", data)
	})
}

// handleCategories renders the expense breakdown for a month. An explicit
// month=all shows the breakdown across the whole ledger.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	month := monthParam(r)
	filter := month
	if month == "all" {
		filter = ""
	}
	s.renderCached(w, r, "categories", month, func() ([]byte, error) {
		slices := analytics.CategoryBreakdown(s.store.List(), filter)

		var total int64
		for _, sl := range slices {
			total += sl.Amount.Cents
		}

		type row struct {
			Name   string
			Amount string
			Color  string
			Width  int
		}
		data := struct {
			Month string
			Total string
			Rows  []row
		}{Month: month, Total: formatAmount(total)}

		for _, sl := range slices {
			width := 0
			if total > 0 {
				width = int((sl.Amount.Cents*100 + total/2) / total)
				if width > 0 && width < 2 {
					width = 2
				}
				if width > 100 {
					width = 100
				}
			}
			data.Rows = append(data.Rows, row{
				Name:   sl.Name,
				Amount: formatAmount(sl.Amount.Cents),
				Color:  sl.Color,
				Width:  width,
			})
		}
		return s.executePartial("category_breakdown.html", data)
	})
}

// handleTransactionList renders the transaction table for a month,
// newest first.
func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	month := monthParam(r)
	s.renderCached(w, r, "transactions", month, func() ([]byte, error) {
		var txs []core.Transaction
		for _, tx := range s.store.List() {
			if month == "all" || analytics.MonthKey(tx.Date) == month {
				txs = append(txs, tx)
			}
		}
		sort.SliceStable(txs, func(i, j int) bool {
			if di, dj := txs[i].Date.ISO(), txs[j].Date.ISO(); di != dj {
				return di > dj
			}
			return txs[i].ID > txs[j].ID
		})

		type row struct {
			ID          string
			Date        string
			Description string
			Category    string
			Amount      string
			Income      bool
		}
		data := struct {
			Month string
			Rows  []row
		}{Month: month}

		for _, tx := range txs {
			data.Rows = append(data.Rows, row{
				ID:          tx.ID,
				Date:        tx.Date.ISO(),
				Description: template.HTMLEscapeString(tx.Description),
				Category:    tx.Category,
				Amount:      formatAmount(tx.Amount.Cents),
				Income:      tx.Type == core.Income,
			})
		}
		return s.executePartial("transactions.html", data)
	})
}

// handleMonthOptions renders the month selector options, most recent first.
func (s *Server) handleMonthOptions(w http.ResponseWriter, r *http.Request) {
	selected := monthParam(r)
	s.renderCached(w, r, "months", selected, func() ([]byte, error) {
		months := analytics.AvailableMonths(s.store.List())

		type option struct {
			Value    string
			Selected bool
		}
		data := struct{ Options []option }{}
		for _, m := range months {
			data.Options = append(data.Options, option{Value: m, Selected: m == selected})
		}
		return s.executePartial("month_options.html", data)
	})
}

// handleCompare renders the month-over-month comparison panel.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	month := monthParam(r)
	s.renderCached(w, r, "compare", month, func() ([]byte, error) {
		cmp := analytics.CompareMonths(s.store.List(), month, analytics.PreviousMonthKey(month))

		data := struct {
			Month            string
			PrevMonth        string
			Income           string
			Expenses         string
			PrevIncome       string
			PrevExpenses     string
			IncomeChange     string
			ExpenseChange    string
			IncomeUp         bool
			ExpenseUp        bool
			DailyAvgIncome   string
			DailyAvgExpense  string
			TopCategory      string
			TopCategoryColor string
		}{
			Month:           month,
			PrevMonth:       analytics.PreviousMonthKey(month),
			Income:          formatAmount(cmp.Current.Income.Cents),
			Expenses:        formatAmount(cmp.Current.Expenses.Cents),
			PrevIncome:      formatAmount(cmp.Previous.Income.Cents),
			PrevExpenses:    formatAmount(cmp.Previous.Expenses.Cents),
			IncomeChange:    formatPct(cmp.IncomeChangePct),
			ExpenseChange:   formatPct(cmp.ExpenseChangePct),
			IncomeUp:        cmp.IncomeChangePct >= 0,
			ExpenseUp:       cmp.ExpenseChangePct >= 0,
			DailyAvgIncome:  formatAmount(cmp.DailyAvgIncome.Cents),
			DailyAvgExpense: formatAmount(cmp.DailyAvgExpense.Cents),
			TopCategory:     cmp.TopCategory,
		}
		if cmp.TopCategory != "" {
			data.TopCategoryColor = analytics.CategoryColor(cmp.TopCategory)
		}
		return s.executePartial("month_compare.html", data)
	})
}

// handleBalance renders the running balance, optionally as of a cutoff date
// (as_of=YYYY-MM-DD).
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	asOfParam := strings.TrimSpace(r.URL.Query().Get("as_of"))

	var asOf core.Date
	if asOfParam != "" {
		parsed, err := core.ParseDate(asOfParam)
		if err != nil {
			BadRequestError("as_of must be in YYYY-MM-DD format").Write(w)
			return
		}
		asOf = parsed
	}

	s.renderCached(w, r, "balance", asOfParam, func() ([]byte, error) {
		balance := analytics.RunningBalance(s.store.List(), asOf)

		data := struct {
			AsOf     string
			Balance  string
			Negative bool
		}{
			AsOf:     asOfParam,
			Balance:  formatAmount(balance.Cents),
			Negative: balance.Cents < 0,
		}
		return s.executePartial("running_balance.html", data)
	})
}

// handleSeries returns the monthly series as JSON for the trend chart.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	points := analytics.MonthlySeries(s.store.List())

	type point struct {
		Month    string  `json:"month"`
		Income   float64 `json:"income"`
		Expenses float64 `json:"expenses"`
		Savings  float64 `json:"savings"`
	}
	out := make([]point, 0, len(points))
	for _, p := range points {
		out = append(out, point{
			Month:    p.Month,
			Income:   p.Income.Units(),
			Expenses: p.Expenses.Units(),
			Savings:  p.Savings.Units(),
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Series encode failed",
			log.FieldError, err)
	}
}
