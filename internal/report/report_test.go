package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pasalkarvaibhavi/fintrack/internal/store"
)

var testCategories = []store.Category{
	{ID: "c1", Name: "Food", Icon: "🍔", Color: "#3B82F6", Budget: 100},
	{ID: "c2", Name: "Transport", Icon: "🚗", Color: "#22C55E", Budget: 200},
	{ID: "c3", Name: "Fun", Icon: "🎉", Color: "#EF4444", Budget: 50},
}

func expense(id, categoryID string, amount float64, date string) store.Expense {
	return store.Expense{ID: id, CategoryID: categoryID, Amount: amount, Date: date}
}

func TestTotal(t *testing.T) {
	require.Equal(t, 0.0, Total(nil))
	require.Equal(t, 0.0, Total([]store.Expense{}))

	expenses := []store.Expense{
		expense("e1", "c1", 12.5, "2026-08-01"),
		expense("e2", "c2", 7.5, "2026-08-02"),
	}
	require.Equal(t, 20.0, Total(expenses))
}

func TestByCategorySeedsEveryCategory(t *testing.T) {
	expenses := []store.Expense{
		expense("e1", "c1", 120, "2026-08-01"),
		expense("e2", "c2", 10, "2026-08-02"),
		expense("e3", "unknown", 999, "2026-08-03"),
	}

	totals := ByCategory(expenses, testCategories)
	require.Len(t, totals, len(testCategories))
	require.Equal(t, 120.0, totals["c1"])
	require.Equal(t, 10.0, totals["c2"])
	require.Equal(t, 0.0, totals["c3"])

	// Known-category amounts always sum to the filtered total.
	var sum float64
	for _, amount := range totals {
		sum += amount
	}
	require.Equal(t, 130.0, sum)
}

func TestCurrentMonthAndTodayBoundaries(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	expenses := []store.Expense{
		expense("e1", "c1", 10, "2026-08-01"),
		expense("e2", "c1", 20, "2026-08-15"),
		expense("e3", "c1", 30, "2026-08-31"),
		expense("e4", "c1", 40, "2026-07-31"),
		expense("e5", "c1", 50, "2026-09-01"),
		expense("e6", "c1", 60, "2025-08-15"),
		expense("e7", "c1", 70, "not-a-date"),
	}

	month := CurrentMonth(expenses, now)
	require.Len(t, month, 3)
	require.Equal(t, 60.0, Total(month))

	today := Today(expenses, now)
	require.Len(t, today, 1)
	require.Equal(t, "e2", today[0].ID)
}

func TestMonthlySeriesAggregatesAcrossYears(t *testing.T) {
	expenses := []store.Expense{
		expense("e1", "c1", 10, "2026-03-01"),
		expense("e2", "c1", 15, "2025-03-20"),
		expense("e3", "c1", 5, "2026-12-31"),
	}

	series := MonthlySeries(expenses)
	require.Len(t, series, 12)
	require.Equal(t, "Jan", series[0].Name)
	require.Equal(t, "Dec", series[11].Name)
	// March of both years lands in one bucket.
	require.Equal(t, 25.0, series[2].Amount)
	require.Equal(t, 5.0, series[11].Amount)
	require.Equal(t, 0.0, series[0].Amount)
}

func TestProgressClampsToRange(t *testing.T) {
	require.Equal(t, 0.0, Progress(100, 0))
	require.Equal(t, 0.0, Progress(100, -5))
	require.Equal(t, 0.0, Progress(-10, 100))
	require.Equal(t, 50.0, Progress(50, 100))
	require.Equal(t, 100.0, Progress(100, 100))
	require.Equal(t, 100.0, Progress(150, 100))
	require.Equal(t, 100.0, Progress(1000, 100))
}

func TestOverage(t *testing.T) {
	require.Equal(t, 0.0, Overage(50, 100))
	require.Equal(t, 0.0, Overage(100, 100))
	require.Equal(t, 20.0, Overage(120, 100))
}

func TestProjectedMonthEnd(t *testing.T) {
	// Aug 10, 300 spent: run rate extrapolates to 930 over 31 days.
	now := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	require.InDelta(t, 930.0, ProjectedMonthEnd(300, now), 0.001)

	// On the last day the projection equals the spend.
	now = time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	require.InDelta(t, 300.0, ProjectedMonthEnd(300, now), 0.001)
}

func TestAlerts(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	expenses := []store.Expense{
		// c1 over budget: 120 of 100.
		expense("e1", "c1", 120, "2026-08-01"),
		// c2 in warning band: 160 of 200 is exactly 80%.
		expense("e2", "c2", 160, "2026-08-02"),
		// c3 untouched this month.
		expense("e3", "c3", 45, "2026-07-20"),
	}

	alerts := Alerts(expenses, testCategories, now)
	require.Len(t, alerts, 2)
	require.Equal(t, "c1", alerts[0].CategoryID)
	require.Equal(t, "over", alerts[0].Level)
	require.Equal(t, 120.0, alerts[0].Spent)
	require.Equal(t, "c2", alerts[1].CategoryID)
	require.Equal(t, "warning", alerts[1].Level)
}

func TestMonthlyReturnsNilOnEmptyMonth(t *testing.T) {
	require.Nil(t, Monthly(nil, testCategories, 1000, 2026, time.August))

	expenses := []store.Expense{expense("e1", "c1", 10, "2026-07-01")}
	require.Nil(t, Monthly(expenses, testCategories, 1000, 2026, time.August))
}

func TestMonthlyReport(t *testing.T) {
	expenses := []store.Expense{
		expense("e1", "c1", 120, "2026-08-01"),
		expense("e2", "c2", 10, "2026-08-15"),
		expense("e3", "c1", 40, "2026-07-10"),
	}

	rep := Monthly(expenses, testCategories, 1000, 2026, time.August)
	require.NotNil(t, rep)
	require.Equal(t, 130.0, rep.TotalExpenses)
	require.Equal(t, 1000.0, rep.Budget)

	// One chart bucket per day of August.
	require.Len(t, rep.ChartData, 31)
	require.Equal(t, "1", rep.ChartData[0].Name)
	require.Equal(t, 120.0, rep.ChartData[0].Amount)
	require.Equal(t, 10.0, rep.ChartData[14].Amount)

	// Zero-spend categories are dropped, rows sorted by amount descending.
	require.Len(t, rep.CategoryBreakdown, 2)
	require.Equal(t, "c1", rep.CategoryBreakdown[0].ID)
	require.Equal(t, 120.0, rep.CategoryBreakdown[0].Amount)
	require.Equal(t, 100.0, rep.CategoryBreakdown[0].Budget)
	require.InDelta(t, 120.0/130.0*100, rep.CategoryBreakdown[0].Percentage, 0.001)
	require.Equal(t, 1, rep.CategoryBreakdown[0].Transactions)
	require.Equal(t, "c2", rep.CategoryBreakdown[1].ID)

	// Transactions list is newest first and excludes other months.
	require.Len(t, rep.Transactions, 2)
	require.Equal(t, "e2", rep.Transactions[0].ID)
	require.Equal(t, "e1", rep.Transactions[1].ID)
}

func TestYearlyReport(t *testing.T) {
	expenses := []store.Expense{
		expense("e1", "c1", 120, "2026-03-01"),
		expense("e2", "c2", 10, "2026-09-15"),
		expense("e3", "c1", 40, "2025-03-10"),
	}

	require.Nil(t, Yearly(expenses, testCategories, 1000, 2024))

	rep := Yearly(expenses, testCategories, 1000, 2026)
	require.NotNil(t, rep)
	require.Equal(t, 130.0, rep.TotalExpenses)
	require.Equal(t, 12000.0, rep.Budget)
	require.Len(t, rep.ChartData, 12)
	require.Equal(t, 120.0, rep.ChartData[2].Amount)
	require.Equal(t, 10.0, rep.ChartData[8].Amount)

	// Category budgets are annualized too.
	require.Equal(t, 1200.0, rep.CategoryBreakdown[0].Budget)
}

func TestCategoryTotals(t *testing.T) {
	require.Nil(t, CategoryTotals(nil, testCategories))

	expenses := []store.Expense{
		expense("e1", "c1", 120, "2026-08-01"),
		expense("e2", "c2", 10, "2025-01-02"),
	}

	rep := CategoryTotals(expenses, testCategories)
	require.NotNil(t, rep)
	require.Equal(t, 130.0, rep.TotalExpenses)
	require.Empty(t, rep.ChartData)
	require.Len(t, rep.CategoryBreakdown, 2)
	// The all-time view carries no budget column.
	require.Equal(t, 0.0, rep.CategoryBreakdown[0].Budget)
}

func TestTrendSeriesWindowAndGrowth(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	expenses := []store.Expense{
		// c1: 100 in June, 150 in July. Growth (150-100)/100 = 50%.
		expense("e1", "c1", 100, "2026-06-10"),
		expense("e2", "c1", 150, "2026-07-10"),
		// c2: nothing in June, 80 in July. Zero prior month means 0 growth.
		expense("e3", "c2", 80, "2026-07-05"),
		// Outside the 3-month window.
		expense("e4", "c3", 999, "2026-01-01"),
	}

	points, trends := TrendSeries(expenses, testCategories, Range3Months, now)

	// May through August inclusive.
	require.Len(t, points, 4)
	require.Equal(t, "May 2026", points[0].Name)
	require.Equal(t, "Aug 2026", points[3].Name)
	require.Equal(t, 100.0, points[1].Amount)
	require.Equal(t, 230.0, points[2].Amount)
	require.Equal(t, 0.0, points[3].Amount)

	require.Len(t, trends, 2)
	require.Equal(t, "c1", trends[0].ID)
	require.Equal(t, 250.0, trends[0].Amount)
	require.InDelta(t, 50.0, trends[0].Growth, 0.001)
	require.Equal(t, "c2", trends[1].ID)
	require.Equal(t, 80.0, trends[1].Amount)
	require.Equal(t, 0.0, trends[1].Growth)
}

func TestTrendSeriesAllRangeStartsAtEarliestExpense(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	expenses := []store.Expense{
		expense("e1", "c1", 10, "2026-05-05"),
		expense("e2", "c1", 20, "2026-08-01"),
	}

	points, _ := TrendSeries(expenses, testCategories, RangeAll, now)
	require.Len(t, points, 4)
	require.Equal(t, "May 2026", points[0].Name)
}

func TestTrendSeriesEmptyWindow(t *testing.T) {
	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

	points, trends := TrendSeries(nil, testCategories, Range6Months, now)
	require.Len(t, points, 7)
	for _, p := range points {
		require.Equal(t, 0.0, p.Amount)
	}
	require.Empty(t, trends)
}

func TestSortNewestFirstBreaksTiesByCreatedAt(t *testing.T) {
	early := time.Date(2026, time.August, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.August, 1, 11, 0, 0, 0, time.UTC)

	expenses := []store.Expense{
		{ID: "a", CategoryID: "c1", Amount: 1, Date: "2026-08-01", CreatedAt: early},
		{ID: "b", CategoryID: "c1", Amount: 1, Date: "2026-08-02"},
		{ID: "c", CategoryID: "c1", Amount: 1, Date: "2026-08-01", CreatedAt: late},
	}

	sorted := sortNewestFirst(expenses)
	require.Equal(t, "b", sorted[0].ID)
	require.Equal(t, "c", sorted[1].ID)
	require.Equal(t, "a", sorted[2].ID)
	// Input order is untouched.
	require.Equal(t, "a", expenses[0].ID)
}
