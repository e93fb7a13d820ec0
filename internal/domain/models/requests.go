package models

// Requests for the HTTP endpoints. Bound from query/path, then defaults, then validation.

type InstrumentsRequest struct {
	Market         string `query:"market" json:"market" validate:"omitempty,oneof=main gem star bse cdr other"`
	Limit          int    `query:"limit" json:"limit" validate:"omitempty,gte=1"`
	WithQuote      bool   `query:"quote" json:"quote"`
	WithIndicators bool   `query:"indicators" json:"indicators"`
	ListStatus     string `query:"list_status" json:"list_status" default:"L" validate:"oneof=L D P"`
	TradeDate      string `query:"trade_date" json:"trade_date" validate:"omitempty,yyyymmdd"`
	Codes          string `query:"codes" json:"codes" validate:"omitempty,tscodes"`
}

type CalendarRequest struct {
	Exchange  string `query:"exchange" json:"exchange" validate:"omitempty,oneof=SSE SZSE BSE CFFEX SHFE DCE CZCE INE"`
	StartDate string `query:"start_date" json:"start_date" validate:"required,yyyymmdd"`
	EndDate   string `query:"end_date" json:"end_date" validate:"required,yyyymmdd"`
	IsOpen    string `query:"is_open" json:"is_open" validate:"omitempty,oneof=0 1"`
}

type MonthRequest struct {
	Exchange string `query:"exchange" json:"exchange" default:"SSE" validate:"oneof=SSE SZSE BSE CFFEX SHFE DCE CZCE INE"`
	Year     int    `query:"year" json:"year" validate:"required,gte=1990,lte=2100"`
	Month    int    `query:"month" json:"month" validate:"required,gte=1,lte=12"`
	Refresh  bool   `query:"refresh" json:"refresh"`
}

type InvalidateRequest struct {
	Exchange string `param:"exchange" json:"exchange" validate:"required,oneof=SSE SZSE BSE CFFEX SHFE DCE CZCE INE"`
	Year     int    `param:"year" json:"year" validate:"required,gte=1990,lte=2100"`
	Month    int    `param:"month" json:"month" validate:"required,gte=1,lte=12"`
}
