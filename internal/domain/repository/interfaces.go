package repository

import (
	"context"

	"StockPull/internal/domain/models"
)

// SourceClient performs raw dataset calls against the quote provider.
type SourceClient interface {
	Call(ctx context.Context, dataset string, params map[string]string, fields string) ([]models.Row, error)
}

// MarketData exposes the provider datasets as typed rows.
type MarketData interface {
	Roster(ctx context.Context, market models.Market, status models.ListStatus) ([]models.RosterRow, error)
	Quotes(ctx context.Context, tradeDate string, codes []string) ([]models.QuoteRow, error)
	Indicators(ctx context.Context, tradeDate string, codes []string) ([]models.IndicatorRow, error)
	TradeCalendar(ctx context.Context, exchange, startDate, endDate string) ([]models.TradeDayMarker, error)
}

// MarkerSource loads trading-day markers for one exchange and date range.
type MarkerSource interface {
	TradeCalendar(ctx context.Context, exchange, startDate, endDate string) ([]models.TradeDayMarker, error)
}

type Metrics interface {
	RecordSourceCall(dataset, result string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordCacheLookup(result string)
	RecordCoverage(overlay string, pct int)
}
