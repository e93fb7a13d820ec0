package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPull/internal/domain/models"
)

type fakeMarket struct {
	roster     []models.RosterRow
	quotes     []models.QuoteRow
	indicators []models.IndicatorRow

	rosterErr, quoteErr, indicatorErr error

	calls         atomic.Int32
	lastTradeDate atomic.Value
	lastCodes     atomic.Value
}

func (f *fakeMarket) Roster(ctx context.Context, market models.Market, status models.ListStatus) ([]models.RosterRow, error) {
	f.calls.Add(1)
	return f.roster, f.rosterErr
}

func (f *fakeMarket) Quotes(ctx context.Context, tradeDate string, codes []string) ([]models.QuoteRow, error) {
	f.calls.Add(1)
	f.lastTradeDate.Store(tradeDate)
	f.lastCodes.Store(codes)
	return f.quotes, f.quoteErr
}

func (f *fakeMarket) Indicators(ctx context.Context, tradeDate string, codes []string) ([]models.IndicatorRow, error) {
	f.calls.Add(1)
	return f.indicators, f.indicatorErr
}

func (f *fakeMarket) TradeCalendar(ctx context.Context, exchange, start, end string) ([]models.TradeDayMarker, error) {
	return nil, errors.New("not used")
}

type fixedDay string

func (d fixedDay) DefaultTradeDate() string { return string(d) }

func TestAggregateScenarioIndicatorFailure(t *testing.T) {
	data := &fakeMarket{
		roster:       []models.RosterRow{{Code: "600000.SH", Name: "A", Market: models.MarketMain, ListStatus: models.ListStatusListed}},
		quotes:       []models.QuoteRow{{Code: "600000.SH", Quote: models.QuoteOverlay{TradeDate: "20240101", Close: 10.5}}},
		indicatorErr: &models.UpstreamError{Dataset: "daily_basic", Code: 40203, Message: "no permission"},
	}
	uc := NewInstrumentsUseCase(data, fixedDay("20231229"))

	res, err := uc.Aggregate(context.Background(), models.AggregateParams{
		TradeDate:      "20240101",
		WithQuote:      true,
		WithIndicators: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "A", rec.Name)
	require.NotNil(t, rec.Quote)
	assert.Equal(t, 10.5, rec.Quote.Close)
	assert.Nil(t, rec.Indicators)

	assert.Equal(t, 100, res.Meta.Stats.Coverage.QuotePercent)
	assert.Equal(t, 0, res.Meta.Stats.Coverage.IndicatorsPercent)
	assert.Equal(t, models.OverlayOK, res.Meta.Overlays[models.OverlayQuote])
	assert.Equal(t, models.OverlayFailed, res.Meta.Overlays[models.OverlayIndicators])
	assert.Contains(t, res.Meta.Errors[models.OverlayIndicators], "no permission")
	assert.NotContains(t, res.Meta.Errors, models.OverlayQuote)
}

func TestAggregateRosterFailureAborts(t *testing.T) {
	boom := &models.NetworkError{Dataset: "stock_basic", Err: errors.New("refused")}
	data := &fakeMarket{rosterErr: boom}
	uc := NewInstrumentsUseCase(data, fixedDay("20240102"))

	_, err := uc.Aggregate(context.Background(), models.AggregateParams{WithQuote: true})
	var netErr *models.NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestAggregateSkipsUnrequestedOverlays(t *testing.T) {
	data := &fakeMarket{roster: []models.RosterRow{{Code: "600000.SH"}}}
	uc := NewInstrumentsUseCase(data, fixedDay("20240102"))

	res, err := uc.Aggregate(context.Background(), models.AggregateParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, data.calls.Load())
	assert.Equal(t, models.OverlaySkipped, res.Meta.Overlays[models.OverlayQuote])
	assert.Equal(t, models.OverlaySkipped, res.Meta.Overlays[models.OverlayIndicators])
	assert.Nil(t, res.Meta.Errors)
	assert.Equal(t, "20240102", res.Meta.TradeDate)
	assert.Equal(t, models.ListStatusListed, res.Meta.ListStatus)
}

func TestAggregateDefaultsTradeDate(t *testing.T) {
	data := &fakeMarket{roster: []models.RosterRow{{Code: "600000.SH"}}}
	uc := NewInstrumentsUseCase(data, fixedDay("20240308"))

	res, err := uc.Aggregate(context.Background(), models.AggregateParams{WithQuote: true})
	require.NoError(t, err)
	assert.Equal(t, "20240308", data.lastTradeDate.Load())
	assert.Equal(t, "20240308", res.Records[0].TradeDate)
}

func TestAggregateDedupesAndLimits(t *testing.T) {
	data := &fakeMarket{roster: []models.RosterRow{
		{Code: "600000.SH", Name: "first"},
		{Code: ""},
		{Code: "600000.SH", Name: "dup"},
		{Code: "000001.SZ"},
		{Code: "300750.SZ"},
	}}
	uc := NewInstrumentsUseCase(data, fixedDay("20240102"))

	res, err := uc.Aggregate(context.Background(), models.AggregateParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "first", res.Records[0].Name)
	assert.Equal(t, "000001.SZ", res.Records[1].Code)
	assert.Equal(t, 3, res.Meta.Total)
	assert.Equal(t, 2, res.Meta.Returned)
	assert.Equal(t, 2, res.Meta.Stats.Total)
}

func TestAggregateCodesFilter(t *testing.T) {
	data := &fakeMarket{roster: []models.RosterRow{
		{Code: "600000.SH"}, {Code: "000001.SZ"}, {Code: "300750.SZ"},
	}}
	uc := NewInstrumentsUseCase(data, fixedDay("20240102"))

	codes := []string{"300750.SZ", "600000.SH"}
	res, err := uc.Aggregate(context.Background(), models.AggregateParams{Codes: codes, WithQuote: true})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	// roster order, not request order
	assert.Equal(t, "600000.SH", res.Records[0].Code)
	assert.Equal(t, "300750.SZ", res.Records[1].Code)
	assert.Equal(t, codes, data.lastCodes.Load())
}

func TestAggregateValidationBeforeFetch(t *testing.T) {
	cases := []struct {
		name  string
		p     models.AggregateParams
		field string
	}{
		{"bad date", models.AggregateParams{TradeDate: "2024-01-02"}, "trade_date"},
		{"impossible date", models.AggregateParams{TradeDate: "20240230"}, "trade_date"},
		{"bad code", models.AggregateParams{Codes: []string{"600000"}}, "codes"},
		{"bad market", models.AggregateParams{Market: "nasdaq"}, "market"},
		{"bad status", models.AggregateParams{ListStatus: "X"}, "list_status"},
		{"limit too high", models.AggregateParams{Limit: 7000}, "limit"},
		{"negative limit", models.AggregateParams{Limit: -1}, "limit"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := &fakeMarket{}
			uc := NewInstrumentsUseCase(data, fixedDay("20240102"))

			_, err := uc.Aggregate(context.Background(), c.p)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, c.field, verr.Field)
			assert.EqualValues(t, 0, data.calls.Load())
		})
	}
}

func TestAggregateBothOverlaysFail(t *testing.T) {
	data := &fakeMarket{
		roster:       []models.RosterRow{{Code: "600000.SH"}, {Code: "000001.SZ"}},
		quoteErr:     &models.NetworkError{Dataset: "daily", Err: errors.New("timeout")},
		indicatorErr: &models.UpstreamError{Dataset: "daily_basic", Code: 1},
	}
	uc := NewInstrumentsUseCase(data, fixedDay("20240102"))

	res, err := uc.Aggregate(context.Background(), models.AggregateParams{WithQuote: true, WithIndicators: true})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	for _, r := range res.Records {
		assert.Nil(t, r.Quote)
		assert.Nil(t, r.Indicators)
	}
	assert.Len(t, res.Meta.Errors, 2)
}
