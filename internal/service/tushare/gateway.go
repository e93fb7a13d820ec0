package tushare

import (
	"context"
	"strings"

	"StockPull/internal/domain/models"
	drepo "StockPull/internal/domain/repository"
)

// Dataset names and the fields requested from each.
const (
	DatasetStockBasic = "stock_basic"
	DatasetDaily      = "daily"
	DatasetDailyBasic = "daily_basic"
	DatasetTradeCal   = "trade_cal"

	stockBasicFields = "ts_code,symbol,name,area,industry,market,exchange,list_status,list_date"
	dailyFields      = "ts_code,trade_date,open,high,low,close,pre_close,change,pct_chg,vol,amount"
	dailyBasicFields = "ts_code,trade_date,turnover_rate,pe,pe_ttm,pb,ps,ps_ttm,total_mv,circ_mv"
	tradeCalFields   = "exchange,cal_date,is_open,pretrade_date"
)

// Pager is a SourceClient that can also follow has_more pagination.
type Pager interface {
	drepo.SourceClient
	CallAll(ctx context.Context, dataset string, params map[string]string, fields string) ([]models.Row, error)
}

// Gateway decodes provider tables into typed rows.
type Gateway struct {
	src Pager
}

var _ drepo.MarketData = (*Gateway)(nil)

func NewGateway(src Pager) *Gateway {
	return &Gateway{src: src}
}

func (g *Gateway) Roster(ctx context.Context, market models.Market, status models.ListStatus) ([]models.RosterRow, error) {
	params := map[string]string{"list_status": string(status)}
	if name := market.ProviderName(); name != "" {
		params["market"] = name
	}

	rows, err := g.src.CallAll(ctx, DatasetStockBasic, params, stockBasicFields)
	if err != nil {
		return nil, err
	}

	out := make([]models.RosterRow, 0, len(rows))
	for _, r := range rows {
		rr := models.RosterRow{
			Code:       r.String("ts_code"),
			Symbol:     r.String("symbol"),
			Name:       r.String("name"),
			Area:       r.String("area"),
			Industry:   r.String("industry"),
			Market:     models.MarketFromProvider(r.String("market")),
			Exchange:   r.String("exchange"),
			ListStatus: models.ListStatus(r.String("list_status")),
			ListDate:   r.String("list_date"),
		}
		if rr.ListStatus == "" {
			rr.ListStatus = status
		}
		// the provider has no filter for unlabelled markets
		if market != "" && rr.Market != market {
			continue
		}
		out = append(out, rr)
	}
	return out, nil
}

func (g *Gateway) Quotes(ctx context.Context, tradeDate string, codes []string) ([]models.QuoteRow, error) {
	rows, err := g.src.CallAll(ctx, DatasetDaily, overlayParams(tradeDate, codes), dailyFields)
	if err != nil {
		return nil, err
	}

	out := make([]models.QuoteRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.QuoteRow{
			Code: r.String("ts_code"),
			Quote: models.QuoteOverlay{
				TradeDate: r.String("trade_date"),
				Open:      r.Float("open"),
				High:      r.Float("high"),
				Low:       r.Float("low"),
				Close:     r.Float("close"),
				PreClose:  r.Float("pre_close"),
				Change:    r.Float("change"),
				ChangePct: r.Float("pct_chg"),
				Volume:    r.Float("vol"),
				Amount:    r.Float("amount"),
			},
		})
	}
	return out, nil
}

func (g *Gateway) Indicators(ctx context.Context, tradeDate string, codes []string) ([]models.IndicatorRow, error) {
	rows, err := g.src.CallAll(ctx, DatasetDailyBasic, overlayParams(tradeDate, codes), dailyBasicFields)
	if err != nil {
		return nil, err
	}

	out := make([]models.IndicatorRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.IndicatorRow{
			Code: r.String("ts_code"),
			Indicators: models.IndicatorOverlay{
				TradeDate:      r.String("trade_date"),
				TurnoverRate:   r.Float("turnover_rate"),
				PE:             r.Float("pe"),
				PETTM:          r.Float("pe_ttm"),
				PB:             r.Float("pb"),
				PS:             r.Float("ps"),
				PSTTM:          r.Float("ps_ttm"),
				TotalMarketCap: r.Float("total_mv"),
				FloatMarketCap: r.Float("circ_mv"),
			},
		})
	}
	return out, nil
}

func (g *Gateway) TradeCalendar(ctx context.Context, exchange, startDate, endDate string) ([]models.TradeDayMarker, error) {
	rows, err := g.src.Call(ctx, DatasetTradeCal, map[string]string{
		"exchange":   exchange,
		"start_date": startDate,
		"end_date":   endDate,
	}, tradeCalFields)
	if err != nil {
		return nil, err
	}

	out := make([]models.TradeDayMarker, 0, len(rows))
	for _, r := range rows {
		m := models.TradeDayMarker{
			Exchange:     r.String("exchange"),
			CalDate:      r.String("cal_date"),
			IsOpen:       r.Bool("is_open"),
			PretradeDate: r.String("pretrade_date"),
		}
		if m.Exchange == "" {
			m.Exchange = exchange
		}
		out = append(out, m)
	}
	return out, nil
}

func overlayParams(tradeDate string, codes []string) map[string]string {
	p := map[string]string{"trade_date": tradeDate}
	if len(codes) > 0 {
		p["ts_code"] = strings.Join(codes, ",")
	}
	return p
}
