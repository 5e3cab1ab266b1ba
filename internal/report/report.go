// Package report computes summary structures from raw expense records.
// Every function is pure: no side effects, deterministic for a fixed
// reference time, safe to call repeatedly.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/pasalkarvaibhavi/fintrack/internal/store"
)

type Range string

const (
	Range3Months Range = "3months"
	Range6Months Range = "6months"
	Range1Year   Range = "1year"
	RangeAll     Range = "all"
)

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ChartPoint is one labeled bucket of a chart series.
type ChartPoint struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// BreakdownEntry is a per-category summary row of a report.
type BreakdownEntry struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	Color        string  `json:"color"`
	Amount       float64 `json:"amount"`
	Budget       float64 `json:"budget,omitempty"`
	Percentage   float64 `json:"percentage"`
	Transactions int     `json:"transactions"`
}

// Report is the shape export collaborators consume verbatim.
type Report struct {
	TotalExpenses     float64          `json:"totalExpenses"`
	Budget            float64          `json:"budget,omitempty"`
	ChartData         []ChartPoint     `json:"chartData,omitempty"`
	CategoryBreakdown []BreakdownEntry `json:"categoryBreakdown"`
	Transactions      []store.Expense  `json:"transactions,omitempty"`
}

// CategoryTrend is a per-category total over a trend window with its
// month-over-month growth percentage.
type CategoryTrend struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Icon   string  `json:"icon"`
	Color  string  `json:"color"`
	Budget float64 `json:"budget"`
	Amount float64 `json:"amount"`
	Growth float64 `json:"growth"`
}

// Alert flags a category whose current-month spending approaches or
// exceeds its budget.
type Alert struct {
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Spent        float64 `json:"spent"`
	Budget       float64 `json:"budget"`
	Level        string  `json:"level"` // "warning" or "over"
}

// expenseDate parses the stored date string, tolerating full timestamps.
func expenseDate(e store.Expense) (time.Time, bool) {
	if t, err := time.Parse(store.DateLayout, e.Date); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, e.Date); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Total sums expense amounts; 0 for empty input.
func Total(expenses []store.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// ByCategory maps category id to summed amount, seeded with 0 for every
// known category so empty ones still appear. Expenses pointing at unknown
// categories are ignored.
func ByCategory(expenses []store.Expense, categories []store.Category) map[string]float64 {
	totals := make(map[string]float64, len(categories))
	for _, c := range categories {
		totals[c.ID] = 0
	}
	for _, e := range expenses {
		if _, known := totals[e.CategoryID]; known {
			totals[e.CategoryID] += e.Amount
		}
	}
	return totals
}

// CurrentMonth filters to expenses dated in the calendar month of now.
func CurrentMonth(expenses []store.Expense, now time.Time) []store.Expense {
	out := []store.Expense{}
	for _, e := range expenses {
		d, parsed := expenseDate(e)
		if parsed && d.Year() == now.Year() && d.Month() == now.Month() {
			out = append(out, e)
		}
	}
	return out
}

// Today filters to expenses dated on the calendar day of now.
func Today(expenses []store.Expense, now time.Time) []store.Expense {
	out := []store.Expense{}
	for _, e := range expenses {
		d, parsed := expenseDate(e)
		if parsed && d.Year() == now.Year() && d.Month() == now.Month() && d.Day() == now.Day() {
			out = append(out, e)
		}
	}
	return out
}

// MonthlySeries buckets all expenses into a fixed Jan-Dec series by month
// name, regardless of year. Year-scoped views are Yearly and TrendSeries;
// this one is deliberately cross-year.
func MonthlySeries(expenses []store.Expense) []ChartPoint {
	series := make([]ChartPoint, 12)
	for i, name := range monthNames {
		series[i] = ChartPoint{Name: name}
	}
	for _, e := range expenses {
		d, parsed := expenseDate(e)
		if !parsed {
			continue
		}
		series[int(d.Month())-1].Amount += e.Amount
	}
	return series
}

func rangeStart(expenses []store.Expense, rng Range, now time.Time) time.Time {
	switch rng {
	case Range3Months:
		return now.AddDate(0, -3, 0)
	case Range6Months:
		return now.AddDate(0, -6, 0)
	case Range1Year:
		return now.AddDate(-1, 0, 0)
	case RangeAll:
		earliest := time.Time{}
		for _, e := range expenses {
			if d, parsed := expenseDate(e); parsed && (earliest.IsZero() || d.Before(earliest)) {
				earliest = d
			}
		}
		if !earliest.IsZero() {
			return earliest
		}
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -6, 0)
	}
}

func monthTotal(expenses []store.Expense, year int, month time.Month, categoryID string) float64 {
	var total float64
	for _, e := range expenses {
		if categoryID != "" && e.CategoryID != categoryID {
			continue
		}
		if d, parsed := expenseDate(e); parsed && d.Year() == year && d.Month() == month {
			total += e.Amount
		}
	}
	return total
}

// TrendSeries buckets the windowed expenses into one entry per calendar
// month from the range start to now inclusive, and computes per-category
// totals with month-over-month growth: (last - prior) / prior * 100,
// defined as 0 when the prior month total is 0.
func TrendSeries(expenses []store.Expense, categories []store.Category, rng Range, now time.Time) ([]ChartPoint, []CategoryTrend) {
	start := rangeStart(expenses, rng, now)

	windowed := []store.Expense{}
	for _, e := range expenses {
		d, parsed := expenseDate(e)
		if !parsed {
			continue
		}
		if !d.Before(start) && !d.After(now) {
			windowed = append(windowed, e)
		}
	}

	points := []ChartPoint{}
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		points = append(points, ChartPoint{
			Name:   fmt.Sprintf("%s %d", monthNames[int(cursor.Month())-1], cursor.Year()),
			Amount: monthTotal(windowed, cursor.Year(), cursor.Month(), ""),
		})
		cursor = cursor.AddDate(0, 1, 0)
	}

	lastMonth := now.AddDate(0, -1, 0)
	priorMonth := now.AddDate(0, -2, 0)

	trends := []CategoryTrend{}
	for _, c := range categories {
		amount := 0.0
		for _, e := range windowed {
			if e.CategoryID == c.ID {
				amount += e.Amount
			}
		}
		if amount <= 0 {
			continue
		}

		growth := 0.0
		if len(points) >= 2 {
			last := monthTotal(windowed, lastMonth.Year(), lastMonth.Month(), c.ID)
			prior := monthTotal(windowed, priorMonth.Year(), priorMonth.Month(), c.ID)
			if prior > 0 {
				growth = (last - prior) / prior * 100
			}
		}

		trends = append(trends, CategoryTrend{
			ID:     c.ID,
			Name:   c.Name,
			Icon:   c.Icon,
			Color:  c.Color,
			Budget: c.Budget,
			Amount: amount,
			Growth: growth,
		})
	}

	sort.SliceStable(trends, func(i, j int) bool { return trends[i].Amount > trends[j].Amount })
	return points, trends
}

func sortNewestFirst(expenses []store.Expense) []store.Expense {
	out := append([]store.Expense{}, expenses...)
	sort.SliceStable(out, func(i, j int) bool {
		di, _ := expenseDate(out[i])
		dj, _ := expenseDate(out[j])
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// breakdown builds per-category rows for the filtered set. Categories with
// zero spend are dropped, unlike ByCategory which keeps them.
func breakdown(filtered []store.Expense, categories []store.Category, total float64, budgetScale float64) []BreakdownEntry {
	rows := []BreakdownEntry{}
	for _, c := range categories {
		var amount float64
		var count int
		for _, e := range filtered {
			if e.CategoryID == c.ID {
				amount += e.Amount
				count++
			}
		}
		if amount <= 0 {
			continue
		}

		percentage := 0.0
		if total > 0 {
			percentage = amount / total * 100
		}
		rows = append(rows, BreakdownEntry{
			ID:           c.ID,
			Name:         c.Name,
			Icon:         c.Icon,
			Color:        c.Color,
			Amount:       amount,
			Budget:       c.Budget * budgetScale,
			Percentage:   percentage,
			Transactions: count,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Amount > rows[j].Amount })
	return rows
}

// Monthly builds the report for one calendar month, with day-of-month
// chart buckets. Returns nil when the month has no expenses: callers must
// distinguish "no data" from a zeroed report.
func Monthly(expenses []store.Expense, categories []store.Category, budget float64, year int, month time.Month) *Report {
	filtered := []store.Expense{}
	for _, e := range expenses {
		if d, parsed := expenseDate(e); parsed && d.Year() == year && d.Month() == month {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	total := Total(filtered)

	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	chart := make([]ChartPoint, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		var dayTotal float64
		for _, e := range filtered {
			if d, _ := expenseDate(e); d.Day() == day {
				dayTotal += e.Amount
			}
		}
		chart = append(chart, ChartPoint{Name: fmt.Sprintf("%d", day), Amount: dayTotal})
	}

	return &Report{
		TotalExpenses:     total,
		Budget:            budget,
		ChartData:         chart,
		CategoryBreakdown: breakdown(filtered, categories, total, 1),
		Transactions:      sortNewestFirst(filtered),
	}
}

// Yearly builds the report for one calendar year, with month-of-year chart
// buckets. Budgets are annualized. Returns nil when the year is empty.
func Yearly(expenses []store.Expense, categories []store.Category, budget float64, year int) *Report {
	filtered := []store.Expense{}
	for _, e := range expenses {
		if d, parsed := expenseDate(e); parsed && d.Year() == year {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	total := Total(filtered)

	chart := make([]ChartPoint, 0, 12)
	for month := time.January; month <= time.December; month++ {
		chart = append(chart, ChartPoint{
			Name:   monthNames[int(month)-1],
			Amount: monthTotal(filtered, year, month, ""),
		})
	}

	return &Report{
		TotalExpenses:     total,
		Budget:            budget * 12,
		ChartData:         chart,
		CategoryBreakdown: breakdown(filtered, categories, total, 12),
		Transactions:      sortNewestFirst(filtered),
	}
}

// CategoryTotals builds the all-time category breakdown. Returns nil for
// an empty expense set.
func CategoryTotals(expenses []store.Expense, categories []store.Category) *Report {
	if len(expenses) == 0 {
		return nil
	}
	total := Total(expenses)
	return &Report{
		TotalExpenses:     total,
		CategoryBreakdown: breakdown(expenses, categories, total, 0),
	}
}

// Progress is the displayed budget-progress percentage, clamped to
// [0, 100]. The unclamped overage is reported separately by Overage.
func Progress(spent float64, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	pct := spent / budget * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Overage is the amount spent beyond the budget, 0 when within it.
func Overage(spent float64, budget float64) float64 {
	if spent > budget {
		return spent - budget
	}
	return 0
}

// ProjectedMonthEnd extrapolates the month total from the current
// day-of-month run rate.
func ProjectedMonthEnd(monthTotal float64, now time.Time) float64 {
	day := now.Day()
	if day == 0 {
		return monthTotal
	}
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return monthTotal / float64(day) * float64(daysInMonth)
}

// Alerts flags categories whose current-month spend reached 80% of budget
// ("warning") or exceeded it ("over").
func Alerts(expenses []store.Expense, categories []store.Category, now time.Time) []Alert {
	month := CurrentMonth(expenses, now)
	totals := ByCategory(month, categories)

	alerts := []Alert{}
	for _, c := range categories {
		if c.Budget <= 0 {
			continue
		}
		spent := totals[c.ID]
		level := ""
		switch {
		case spent > c.Budget:
			level = "over"
		case spent/c.Budget*100 >= 80:
			level = "warning"
		default:
			continue
		}
		alerts = append(alerts, Alert{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Spent:        spent,
			Budget:       c.Budget,
			Level:        level,
		})
	}
	return alerts
}
