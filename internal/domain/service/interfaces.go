package service

import (
	"context"

	"StockPull/internal/domain/models"
)

// InstrumentAggregator builds merged instrument sets.
type InstrumentAggregator interface {
	Aggregate(ctx context.Context, p models.AggregateParams) (*models.AggregateResult, error)
}

// TradingCalendar serves cached month calendars and date ranges.
type TradingCalendar interface {
	Range(ctx context.Context, p models.CalendarParams) (*models.CalendarResult, error)
	Month(ctx context.Context, exchange string, year, month int, refresh bool) (*models.MonthCalendarEntry, error)
	Invalidate(ctx context.Context, exchange string, year, month int) (bool, error)
	Clear(ctx context.Context) error
}
