package calendar

import (
	"fmt"
	"time"

	"StockPull/internal/domain/models"
	"StockPull/pkg/util"
)

// Markers maps a YYYYMMDD date to whether the exchange is open that day.
type Markers map[string]bool

// MarkersFrom indexes provider rows by date. Rows for other exchanges are skipped.
func MarkersFrom(exchange string, rows []models.TradeDayMarker) Markers {
	m := make(Markers, len(rows))
	for _, r := range rows {
		if r.Exchange != "" && r.Exchange != exchange {
			continue
		}
		m[r.CalDate] = r.IsOpen
	}
	return m
}

// Generate classifies every day of the month. A day without a marker is
// neither trading nor holiday; weekend status comes from the date alone.
func Generate(exchange string, year, month int, markers Markers) ([]models.CalendarDay, error) {
	if month < 1 || month > 12 {
		return nil, &models.ValidationError{Field: "month", Value: fmt.Sprint(month), Message: "must be within 1..12"}
	}
	if year < 1000 || year > 9999 {
		return nil, &models.ValidationError{Field: "year", Value: fmt.Sprint(year), Message: "must have four digits"}
	}

	n := util.DaysIn(year, time.Month(month))
	days := make([]models.CalendarDay, 0, n)
	for d := 1; d <= n; d++ {
		date := time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
		wd := date.Weekday()
		day := models.CalendarDay{
			Date:      date,
			ISODate:   date.Format(time.DateOnly),
			CalDate:   util.FormatDate8(date),
			Exchange:  exchange,
			IsWeekend: wd == time.Saturday || wd == time.Sunday,
		}
		if open, ok := markers[day.CalDate]; ok {
			day.IsTrading = open
			day.IsHoliday = !open && !day.IsWeekend
		}
		days = append(days, day)
	}
	return days, nil
}

// TradingDays counts the trading days in days.
func TradingDays(days []models.CalendarDay) int {
	n := 0
	for _, d := range days {
		if d.IsTrading {
			n++
		}
	}
	return n
}
