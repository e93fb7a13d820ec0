package models

import "strings"

// Market is the sub-market an instrument is listed on.
type Market string

const (
	MarketMain  Market = "main"
	MarketGEM   Market = "gem"
	MarketSTAR  Market = "star"
	MarketBSE   Market = "bse"
	MarketCDR   Market = "cdr"
	MarketOther Market = "other"
)

var providerMarkets = map[Market]string{
	MarketMain: "主板",
	MarketGEM:  "创业板",
	MarketSTAR: "科创板",
	MarketBSE:  "北交所",
	MarketCDR:  "CDR",
}

// Markets returns every sub-market in reporting order.
func Markets() []Market {
	return []Market{MarketMain, MarketGEM, MarketSTAR, MarketBSE, MarketCDR, MarketOther}
}

// ProviderName is the label the quote provider uses for m, or "" for MarketOther.
func (m Market) ProviderName() string {
	return providerMarkets[m]
}

func (m Market) Valid() bool {
	switch m {
	case MarketMain, MarketGEM, MarketSTAR, MarketBSE, MarketCDR, MarketOther:
		return true
	}
	return false
}

// MarketFromProvider maps a provider market label onto a Market.
// Unknown or empty labels become MarketOther.
func MarketFromProvider(label string) Market {
	label = strings.TrimSpace(label)
	for m, name := range providerMarkets {
		if strings.EqualFold(name, label) {
			return m
		}
	}
	return MarketOther
}

// ListStatus is the listing state of an instrument.
type ListStatus string

const (
	ListStatusListed   ListStatus = "L"
	ListStatusDelisted ListStatus = "D"
	ListStatusPaused   ListStatus = "P"
)

func (s ListStatus) Valid() bool {
	return s == ListStatusListed || s == ListStatusDelisted || s == ListStatusPaused
}

// RosterRow is one instrument from the roster dataset.
type RosterRow struct {
	Code       string
	Symbol     string
	Name       string
	Area       string
	Industry   string
	Market     Market
	Exchange   string
	ListStatus ListStatus
	ListDate   string
}

// QuoteRow is one end-of-day quote from the quote dataset.
type QuoteRow struct {
	Code  string
	Quote QuoteOverlay
}

// IndicatorRow is one set of valuation indicators.
type IndicatorRow struct {
	Code       string
	Indicators IndicatorOverlay
}

// QuoteOverlay is populated as a whole from a single matched quote row.
type QuoteOverlay struct {
	TradeDate string  `json:"trade_date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	PreClose  float64 `json:"pre_close"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"pct_chg"`
	Volume    float64 `json:"vol"`
	Amount    float64 `json:"amount"`
}

// IndicatorOverlay is populated as a whole from a single matched indicator row.
type IndicatorOverlay struct {
	TradeDate      string  `json:"trade_date"`
	TurnoverRate   float64 `json:"turnover_rate"`
	PE             float64 `json:"pe"`
	PETTM          float64 `json:"pe_ttm"`
	PB             float64 `json:"pb"`
	PS             float64 `json:"ps"`
	PSTTM          float64 `json:"ps_ttm"`
	TotalMarketCap float64 `json:"total_mv"`
	FloatMarketCap float64 `json:"circ_mv"`
}

// InstrumentRecord is one merged output row. Overlays are nil when the
// overlay was not requested, failed, or had no row for this instrument.
type InstrumentRecord struct {
	Code       string            `json:"code"`
	Symbol     string            `json:"symbol"`
	Name       string            `json:"name"`
	Area       string            `json:"area,omitempty"`
	Industry   string            `json:"industry,omitempty"`
	Market     Market            `json:"market"`
	Exchange   string            `json:"exchange,omitempty"`
	ListStatus ListStatus        `json:"list_status"`
	ListDate   string            `json:"list_date,omitempty"`
	TradeDate  string            `json:"trade_date"`
	Quote      *QuoteOverlay     `json:"quote,omitempty"`
	Indicators *IndicatorOverlay `json:"indicators,omitempty"`
}
