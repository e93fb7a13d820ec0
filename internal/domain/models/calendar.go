package models

import "time"

// TradeDayMarker is one provider row stating whether an exchange is open on a date.
type TradeDayMarker struct {
	Exchange     string
	CalDate      string
	IsOpen       bool
	PretradeDate string
}

// CalendarDay classifies one day of a month for one exchange.
type CalendarDay struct {
	Date      time.Time `json:"calendar_date"`
	ISODate   string    `json:"date"`
	CalDate   string    `json:"cal_date"`
	Exchange  string    `json:"exchange"`
	IsTrading bool      `json:"is_trading"`
	IsWeekend bool      `json:"is_weekend"`
	IsHoliday bool      `json:"is_holiday"`
}

// MonthCalendarEntry is an immutable cached month. Refreshes replace it.
type MonthCalendarEntry struct {
	Exchange    string        `json:"exchange"`
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Days        []CalendarDay `json:"days"`
	TradingDays int           `json:"trading_days"`
	ComputedAt  time.Time     `json:"computed_at"`
}

// CalendarParams selects days across one or more exchanges.
type CalendarParams struct {
	Exchange  string
	StartDate string
	EndDate   string
	// IsOpen filters on trading status when non-nil.
	IsOpen *bool
}

type ExchangeCalendarStats struct {
	Exchange       string  `json:"exchange"`
	TradingDays    int     `json:"trading_days"`
	NonTradingDays int     `json:"non_trading_days"`
	TradingRatio   float64 `json:"trading_ratio"`
}

type CalendarStats struct {
	TotalDays      int                     `json:"total_days"`
	TradingDays    int                     `json:"trading_days"`
	NonTradingDays int                     `json:"non_trading_days"`
	TradingRatio   float64                 `json:"trading_ratio"`
	ByExchange     []ExchangeCalendarStats `json:"by_exchange"`
}

type CalendarResult struct {
	Days  []CalendarDay `json:"days"`
	Stats CalendarStats `json:"stats"`
}
