package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/0xcafe-io/iz"

	"github.com/pasalkarvaibhavi/fintrack/internal/report"
	"github.com/pasalkarvaibhavi/fintrack/internal/session"
)

// SummaryResponse is the dashboard snapshot the UI renders.
type SummaryResponse struct {
	Total         float64             `json:"total"`
	MonthTotal    float64             `json:"monthTotal"`
	TodayTotal    float64             `json:"todayTotal"`
	ByCategory    map[string]float64  `json:"byCategory"`
	MonthlySeries []report.ChartPoint `json:"monthlySeries"`
	Progress      float64             `json:"progress"`
	Overage       float64             `json:"overage"`
	Projected     float64             `json:"projected"`
	Alerts        []report.Alert      `json:"alerts"`
}

func (api *Api) currentUser(r *iz.Request) (session.User, iz.Responder) {
	if err := api.authorize(r); err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return session.User{}, iz.Respond().Status(401).Text(msg)
	}
	user, _ := api.Service.CurrentUser()
	return user, nil
}

func (api *Api) SummaryHandler(r *iz.Request) iz.Responder {
	user, denied := api.currentUser(r)
	if denied != nil {
		return denied
	}

	now := time.Now()
	monthExpenses := report.CurrentMonth(user.Expenses, now)
	monthTotal := report.Total(monthExpenses)

	resp := SummaryResponse{
		Total:         report.Total(user.Expenses),
		MonthTotal:    monthTotal,
		TodayTotal:    report.Total(report.Today(user.Expenses, now)),
		ByCategory:    report.ByCategory(user.Expenses, user.Categories),
		MonthlySeries: report.MonthlySeries(user.Expenses),
		Progress:      report.Progress(monthTotal, user.Budget),
		Overage:       report.Overage(monthTotal, user.Budget),
		Projected:     report.ProjectedMonthEnd(monthTotal, now),
		Alerts:        report.Alerts(user.Expenses, user.Categories, now),
	}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) MonthlyReportHandler(r *iz.Request) iz.Responder {
	user, denied := api.currentUser(r)
	if denied != nil {
		return denied
	}

	now := time.Now()
	year := now.Year()
	month := int(now.Month())

	params := r.URL.Query()
	if y := params.Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			return iz.Respond().Status(400).Text("invalid year parameter")
		}
		year = parsed
	}
	if m := params.Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			return iz.Respond().Status(400).Text("invalid month parameter, expected 1-12")
		}
		month = parsed
	}

	rep := report.Monthly(user.Expenses, user.Categories, user.Budget, year, time.Month(month))
	if rep == nil {
		msg := fmt.Sprintf("no expenses recorded for %d-%02d", year, month)
		return iz.Respond().Status(404).Text(msg)
	}
	return iz.Respond().Status(200).JSON(rep)
}

func (api *Api) YearlyReportHandler(r *iz.Request) iz.Responder {
	user, denied := api.currentUser(r)
	if denied != nil {
		return denied
	}

	year := time.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			return iz.Respond().Status(400).Text("invalid year parameter")
		}
		year = parsed
	}

	rep := report.Yearly(user.Expenses, user.Categories, user.Budget, year)
	if rep == nil {
		msg := fmt.Sprintf("no expenses recorded for %d", year)
		return iz.Respond().Status(404).Text(msg)
	}
	return iz.Respond().Status(200).JSON(rep)
}

func (api *Api) CategoryReportHandler(r *iz.Request) iz.Responder {
	user, denied := api.currentUser(r)
	if denied != nil {
		return denied
	}

	rep := report.CategoryTotals(user.Expenses, user.Categories)
	if rep == nil {
		return iz.Respond().Status(404).Text("no expenses recorded")
	}
	return iz.Respond().Status(200).JSON(rep)
}

type TrendsResponse struct {
	Range      report.Range           `json:"range"`
	Series     []report.ChartPoint    `json:"series"`
	Categories []report.CategoryTrend `json:"categories"`
}

func (api *Api) TrendsHandler(r *iz.Request) iz.Responder {
	user, denied := api.currentUser(r)
	if denied != nil {
		return denied
	}

	rng := report.Range6Months
	switch report.Range(r.URL.Query().Get("range")) {
	case report.Range3Months:
		rng = report.Range3Months
	case report.Range6Months, "":
		rng = report.Range6Months
	case report.Range1Year:
		rng = report.Range1Year
	case report.RangeAll:
		rng = report.RangeAll
	default:
		return iz.Respond().Status(400).Text("invalid range parameter, expected one of: 3months, 6months, 1year, all")
	}

	series, categories := report.TrendSeries(user.Expenses, user.Categories, rng, time.Now())
	return iz.Respond().Status(200).JSON(TrendsResponse{Range: rng, Series: series, Categories: categories})
}
