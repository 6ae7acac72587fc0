// Package analytics derives read-only views from a transaction list:
// monthly summaries, category breakdowns, running balances and
// month-over-month comparisons.
//
// Every function is pure: it never mutates its input, recomputes from the
// full list on each call, and treats an empty list as a valid input that
// yields zero-filled summaries and empty sequences.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// monthKeyLayout renders a (year, month) bucket as a human label, e.g. "Jan 2024".
const monthKeyLayout = "Jan 2006"

// MonthKey returns the month bucket label for a date. Two transactions share
// a bucket iff their dates share calendar year and month.
func MonthKey(d core.Date) string {
	return d.Format(monthKeyLayout)
}

// CurrentMonthKey returns the bucket label for the present month.
func CurrentMonthKey() string {
	return time.Now().Format(monthKeyLayout)
}

func parseMonthKey(key string) (time.Time, bool) {
	t, err := time.Parse(monthKeyLayout, key)
	return t, err == nil
}

// Summary is the income/expense/savings triple for one month bucket.
type Summary struct {
	Income   core.Money
	Expenses core.Money
	Savings  core.Money
}

// SummaryFor sums the transactions whose month bucket equals monthKey.
// A month with no transactions yields a zero-filled summary, not an error.
func SummaryFor(txs []core.Transaction, monthKey string) Summary {
	var s Summary
	for _, tx := range txs {
		if MonthKey(tx.Date) != monthKey {
			continue
		}
		switch tx.Type {
		case core.Income:
			s.Income.Cents += tx.Amount.Cents
		case core.Expense:
			s.Expenses.Cents += tx.Amount.Cents
		}
	}
	s.Savings.Cents = s.Income.Cents - s.Expenses.Cents
	return s
}

// MonthPoint is one bucket of the monthly time series.
type MonthPoint struct {
	Month    string
	Income   core.Money
	Expenses core.Money
	Savings  core.Money
}

// MonthlySeries groups all transactions by month bucket and returns per-bucket
// summaries ordered by actual calendar date ascending ("Dec 2023" sorts before
// "Jan 2024"). Only months with at least one transaction are emitted; gaps are
// not zero-filled.
func MonthlySeries(txs []core.Transaction) []MonthPoint {
	type bucket struct {
		income   int64
		expenses int64
	}
	buckets := make(map[string]*bucket)
	for _, tx := range txs {
		key := MonthKey(tx.Date)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		switch tx.Type {
		case core.Income:
			b.income += tx.Amount.Cents
		case core.Expense:
			b.expenses += tx.Amount.Cents
		}
	}

	points := make([]MonthPoint, 0, len(buckets))
	for key, b := range buckets {
		points = append(points, MonthPoint{
			Month:    key,
			Income:   core.Money{Cents: b.income},
			Expenses: core.Money{Cents: b.expenses},
			Savings:  core.Money{Cents: b.income - b.expenses},
		})
	}
	sort.Slice(points, func(i, j int) bool {
		ti, _ := parseMonthKey(points[i].Month)
		tj, _ := parseMonthKey(points[j].Month)
		return ti.Before(tj)
	})
	return points
}

// palette is the fixed display palette for category colors.
var palette = [...]string{
	"#EF4444", "#F59E0B", "#8B5CF6", "#EC4899", "#06B6D4",
	"#10B981", "#3B82F6", "#F97316", "#6B7280",
}

// CategoryColor maps a category name to a palette color. The mapping is a
// pure hash (sum of character codes modulo palette size), so the same name
// yields the same color across calls and sessions without any stored mapping.
func CategoryColor(name string) string {
	sum := 0
	for _, r := range name {
		sum += int(r)
	}
	return palette[sum%len(palette)]
}

// CategorySlice is one category's share of the expense breakdown.
type CategorySlice struct {
	Name   string
	Amount core.Money
	Color  string
}

// CategoryBreakdown groups expense transactions by category and sums amounts
// per group, sorted descending by amount (ties keep first-encountered order).
// Income is never broken down by category. A non-empty monthKey restricts the
// breakdown to that bucket; empty input yields an empty sequence.
func CategoryBreakdown(txs []core.Transaction, monthKey string) []CategorySlice {
	totals := make(map[string]int64)
	var order []string
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if monthKey != "" && MonthKey(tx.Date) != monthKey {
			continue
		}
		if _, ok := totals[tx.Category]; !ok {
			order = append(order, tx.Category)
		}
		totals[tx.Category] += tx.Amount.Cents
	}

	out := make([]CategorySlice, 0, len(order))
	for _, name := range order {
		out = append(out, CategorySlice{
			Name:   name,
			Amount: core.Money{Cents: totals[name]},
			Color:  CategoryColor(name),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// RunningBalance folds all transactions in date order, income positive and
// expense negative, and returns the signed total. A non-zero asOf limits the
// fold to dates <= asOf (end-of-day inclusive). The input order is irrelevant:
// the fold sorts internally with a deterministic (date, id) tie-break, so
// shuffling the input never changes the result. Overspending yields a
// negative balance, which is representable and not an error.
func RunningBalance(txs []core.Transaction, asOf core.Date) core.Money {
	ordered := make([]core.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		di, dj := ordered[i].Date.ISO(), ordered[j].Date.ISO()
		if di != dj {
			return di < dj
		}
		return ordered[i].ID < ordered[j].ID
	})

	var total int64
	for _, tx := range ordered {
		if !asOf.IsZero() && tx.Date.ISO() > asOf.ISO() {
			break
		}
		total += tx.Signed()
	}
	return core.Money{Cents: total}
}

// MonthComparison relates one month bucket to the previous one.
type MonthComparison struct {
	Current  Summary
	Previous Summary

	// Percent change versus the previous month, 0 when the previous month's
	// total is 0 (a zero baseline reads as "no change", not an infinite jump).
	IncomeChangePct  float64
	ExpenseChangePct float64

	DailyAvgIncome  core.Money
	DailyAvgExpense core.Money

	// TopCategory is the highest-spending expense category of the current
	// month, empty when the month has no expenses.
	TopCategory string
}

// CompareMonths derives comparative analytics for a month against its
// predecessor: change percentages, per-day averages over the month's actual
// day count, and the top spending category.
func CompareMonths(txs []core.Transaction, monthKey, prevMonthKey string) MonthComparison {
	cmp := MonthComparison{
		Current:  SummaryFor(txs, monthKey),
		Previous: SummaryFor(txs, prevMonthKey),
	}
	cmp.IncomeChangePct = changePct(cmp.Current.Income.Cents, cmp.Previous.Income.Cents)
	cmp.ExpenseChangePct = changePct(cmp.Current.Expenses.Cents, cmp.Previous.Expenses.Cents)

	if days := DaysInMonth(monthKey); days > 0 {
		cmp.DailyAvgIncome = core.Money{Cents: cmp.Current.Income.Cents / int64(days)}
		cmp.DailyAvgExpense = core.Money{Cents: cmp.Current.Expenses.Cents / int64(days)}
	}

	if slices := CategoryBreakdown(txs, monthKey); len(slices) > 0 {
		cmp.TopCategory = slices[0].Name
	}
	return cmp
}

func changePct(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	pct, _ := decimal.New(current-previous, 0).
		Div(decimal.New(previous, 0)).
		Mul(decimal.New(100, 0)).
		Float64()
	return pct
}

// DaysInMonth returns the calendar day count of a month bucket, 0 for an
// unparseable key.
func DaysInMonth(monthKey string) int {
	t, ok := parseMonthKey(monthKey)
	if !ok {
		return 0
	}
	// Day 0 of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// PreviousMonthKey returns the bucket label immediately before monthKey,
// empty when the key does not parse.
func PreviousMonthKey(monthKey string) string {
	t, ok := parseMonthKey(monthKey)
	if !ok {
		return ""
	}
	return t.AddDate(0, -1, 0).Format(monthKeyLayout)
}

// AvailableMonths returns the distinct month buckets present in the list,
// most recent first. Empty input yields an empty sequence. Buckets from
// different years never merge even when the month number matches.
func AvailableMonths(txs []core.Transaction) []string {
	seen := make(map[string]time.Time)
	for _, tx := range txs {
		key := MonthKey(tx.Date)
		if _, ok := seen[key]; !ok {
			seen[key] = time.Date(tx.Date.Year(), tx.Date.Time.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return seen[keys[i]].After(seen[keys[j]])
	})
	return keys
}
