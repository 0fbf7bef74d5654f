package dashboard

import (
	"time"

	"pyme-backend/internal/auth"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"

	maxChartPoints = 366
)

type CashChartPoint struct {
	Label   string          `json:"label"` // inicio del día, semana (lunes) o mes
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type CashChartTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

type CashChartResponse struct {
	Period      string           `json:"period"`
	From        string           `json:"from"`
	To          string           `json:"to"`
	Points      []CashChartPoint `json:"points"`
	GrandTotals CashChartTotals  `json:"grand_totals"`
}

func defaultCount(period string) int {
	switch period {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	default:
		return 7
	}
}

// bucketStart truncates t to the start of its day, ISO week or month.
func bucketStart(period string, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // lunes = 0
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextBucket(period string, t time.Time) time.Time {
	switch period {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// chartWindow returns the first bucket start and the exclusive end of the
// window holding count buckets up to and including the one of now.
func chartWindow(period string, count int, now time.Time) (time.Time, time.Time) {
	last := bucketStart(period, now)
	end := nextBucket(period, last)

	var start time.Time
	switch period {
	case PeriodWeekly:
		start = last.AddDate(0, 0, -7*(count-1))
	case PeriodMonthly:
		start = last.AddDate(0, -(count - 1), 0)
	default:
		start = last.AddDate(0, 0, -(count - 1))
	}
	return start, end
}

// CashChart buckets the treasury entries of userID into count periods ending
// with the one containing now. Empty periods are included with zero totals.
func CashChart(userID uuid.UUID, period string, count int, now time.Time) (CashChartResponse, error) {
	start, end := chartWindow(period, count, now)

	resp := CashChartResponse{
		Period: period,
		From:   start.Format(httpx.DateLayout),
		To:     end.AddDate(0, 0, -1).Format(httpx.DateLayout),
		Points: make([]CashChartPoint, 0, count),
	}

	index := make(map[time.Time]int, count)
	for b := start; b.Before(end); b = nextBucket(period, b) {
		index[b] = len(resp.Points)
		resp.Points = append(resp.Points, CashChartPoint{Label: b.Format(httpx.DateLayout)})
	}

	var entries []models.Treasury
	if err := database.DB.
		Select("transaction_type", "amount", "transaction_date").
		Where("user_id = ?", userID).
		Where("transaction_date >= ? AND transaction_date < ?", start, end).
		Find(&entries).Error; err != nil {
		return resp, err
	}

	for _, e := range entries {
		i, ok := index[bucketStart(period, e.TransactionDate.UTC())]
		if !ok {
			continue
		}
		p := &resp.Points[i]
		switch e.TransactionType {
		case models.TreasuryIncome:
			p.Income = p.Income.Add(e.Amount)
			resp.GrandTotals.Income = resp.GrandTotals.Income.Add(e.Amount)
		case models.TreasuryExpense:
			p.Expense = p.Expense.Add(e.Amount)
			resp.GrandTotals.Expense = resp.GrandTotals.Expense.Add(e.Amount)
		}
	}

	for i := range resp.Points {
		resp.Points[i].Balance = resp.Points[i].Income.Sub(resp.Points[i].Expense)
	}
	resp.GrandTotals.Balance = resp.GrandTotals.Income.Sub(resp.GrandTotals.Expense)
	return resp, nil
}

// GET /api/dashboard/cash-chart?period=daily&count=7
func CashChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := auth.SessionFrom(c)
		if err != nil {
			return err
		}

		period := c.Query("period", PeriodDaily)
		switch period {
		case PeriodDaily, PeriodWeekly, PeriodMonthly:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period debe ser daily, weekly o monthly")
		}

		count := c.QueryInt("count", defaultCount(period))
		if count <= 0 || count > maxChartPoints {
			return fiber.NewError(fiber.StatusBadRequest, "count inválido")
		}

		resp, err := CashChart(session.UserID, period, count, time.Now().UTC())
		if err != nil {
			logger.FromCtx(c).Error("cash chart failed", zap.Error(err))
		}
		return c.JSON(resp)
	}
}
