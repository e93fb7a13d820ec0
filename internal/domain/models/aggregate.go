package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AggregateParams drives one instrument aggregation.
type AggregateParams struct {
	Market         Market // empty means all sub-markets
	Limit          int
	WithQuote      bool
	WithIndicators bool
	ListStatus     ListStatus
	TradeDate      string // YYYYMMDD; empty means the prior business day
	Codes          []string
}

type AggregateResult struct {
	Records []InstrumentRecord `json:"records"`
	Meta    AggregateMeta      `json:"meta"`
}

type AggregateMeta struct {
	Total       int                           `json:"total"`
	Returned    int                           `json:"returned"`
	TradeDate   string                        `json:"trade_date"`
	Market      Market                        `json:"market,omitempty"`
	ListStatus  ListStatus                    `json:"list_status"`
	Overlays    map[OverlayKind]OverlayStatus `json:"overlays"`
	Errors      map[OverlayKind]string        `json:"errors,omitempty"`
	Stats       Stats                         `json:"stats"`
	GeneratedAt time.Time                     `json:"generated_at"`
	ElapsedMs   int64                         `json:"elapsed_ms"`
}

type MarketCount struct {
	Market Market `json:"market"`
	Count  int    `json:"count"`
}

type Coverage struct {
	QuoteCount        int `json:"quote_count"`
	QuotePercent      int `json:"quote_pct"`
	IndicatorCount    int `json:"indicator_count"`
	IndicatorsPercent int `json:"indicators_pct"`
}

type PriceStats struct {
	Advancers    int             `json:"advancers"`
	Decliners    int             `json:"decliners"`
	Unchanged    int             `json:"unchanged"`
	TotalVolume  decimal.Decimal `json:"total_vol"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	AvgChangePct decimal.Decimal `json:"avg_pct_chg"`
}

type ValuationStats struct {
	TotalMarketCap  decimal.Decimal `json:"total_mv"`
	FloatMarketCap  decimal.Decimal `json:"circ_mv"`
	AvgTurnoverRate decimal.Decimal `json:"avg_turnover_rate"`
}

type IndustryShare struct {
	Industry string  `json:"industry"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// Stats summarizes one merged record set.
type Stats struct {
	Total         int             `json:"total"`
	NoData        bool            `json:"no_data"`
	ByMarket      []MarketCount   `json:"by_market"`
	Coverage      Coverage        `json:"coverage"`
	Price         PriceStats      `json:"price"`
	Valuation     ValuationStats  `json:"valuation"`
	TopIndustries []IndustryShare `json:"top_industries"`
}
