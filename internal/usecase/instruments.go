package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"StockPull/internal/domain/models"
	drepo "StockPull/internal/domain/repository"
	"StockPull/internal/services/records"
	applogger "StockPull/pkg/logger"
	"StockPull/pkg/metrics"
	"StockPull/pkg/util"
)

// TradeDateResolver supplies the trade date used when the caller gives none.
type TradeDateResolver interface {
	DefaultTradeDate() string
}

// InstrumentsUseCase fetches the roster and the requested overlays
// concurrently, merges them and summarizes the result. Only a roster
// failure fails the request; overlay failures are reported in the meta
// block and leave that overlay absent.
type InstrumentsUseCase struct {
	data    drepo.MarketData
	days    TradeDateResolver
	log     *applogger.Logger
	metrics drepo.Metrics

	defaultLimit  int
	maxLimit      int
	topIndustries int
	timeout       time.Duration
	now           func() time.Time
}

type InstrumentsOption func(*InstrumentsUseCase)

func WithLimits(def, max int) InstrumentsOption {
	return func(uc *InstrumentsUseCase) {
		if def > 0 {
			uc.defaultLimit = def
		}
		if max > 0 {
			uc.maxLimit = max
		}
	}
}

func WithTopIndustries(n int) InstrumentsOption {
	return func(uc *InstrumentsUseCase) { uc.topIndustries = n }
}

func WithAggregationTimeout(d time.Duration) InstrumentsOption {
	return func(uc *InstrumentsUseCase) { uc.timeout = d }
}

func WithInstrumentsLogger(l *applogger.Logger) InstrumentsOption {
	return func(uc *InstrumentsUseCase) { uc.log = l }
}

func WithInstrumentsMetrics(m drepo.Metrics) InstrumentsOption {
	return func(uc *InstrumentsUseCase) { uc.metrics = m }
}

func NewInstrumentsUseCase(data drepo.MarketData, days TradeDateResolver, opts ...InstrumentsOption) *InstrumentsUseCase {
	uc := &InstrumentsUseCase{
		data:          data,
		days:          days,
		log:           applogger.Nop(),
		metrics:       metrics.Noop{},
		defaultLimit:  100,
		maxLimit:      6000,
		topIndustries: 10,
		timeout:       45 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *InstrumentsUseCase) Aggregate(ctx context.Context, p models.AggregateParams) (*models.AggregateResult, error) {
	start := uc.now()
	if err := uc.normalize(&p); err != nil {
		return nil, err
	}

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	var (
		roster   []models.RosterRow
		overlays models.Overlays
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := uc.data.Roster(gctx, p.Market, p.ListStatus)
		if err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
		roster = rows
		return nil
	})
	if p.WithQuote {
		g.Go(func() error {
			rows, err := uc.data.Quotes(gctx, p.TradeDate, p.Codes)
			if err != nil {
				overlays.Quotes = models.Failed[models.QuoteRow](err)
				return nil
			}
			overlays.Quotes = models.Ok(rows)
			return nil
		})
	}
	if p.WithIndicators {
		g.Go(func() error {
			rows, err := uc.data.Indicators(gctx, p.TradeDate, p.Codes)
			if err != nil {
				overlays.Indicators = models.Failed[models.IndicatorRow](err)
				return nil
			}
			overlays.Indicators = models.Ok(rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.metrics.RecordError("roster")
		return nil, err
	}

	roster = selectRoster(roster, p.Codes)
	total := len(roster)
	if len(roster) > p.Limit {
		roster = roster[:p.Limit]
	}

	recs := records.Merge(p.TradeDate, roster, overlays)
	stats := records.Summarize(recs, uc.topIndustries)

	meta := models.AggregateMeta{
		Total:      total,
		Returned:   len(recs),
		TradeDate:  p.TradeDate,
		Market:     p.Market,
		ListStatus: p.ListStatus,
		Overlays: map[models.OverlayKind]models.OverlayStatus{
			models.OverlayQuote:      overlays.Quotes.Status(),
			models.OverlayIndicators: overlays.Indicators.Status(),
		},
		Stats:       stats,
		GeneratedAt: uc.now().UTC(),
	}
	uc.reportOverlay(&meta, models.OverlayQuote, overlays.Quotes.Err, p.WithQuote, stats.Coverage.QuotePercent)
	uc.reportOverlay(&meta, models.OverlayIndicators, overlays.Indicators.Err, p.WithIndicators, stats.Coverage.IndicatorsPercent)

	elapsed := uc.now().Sub(start)
	meta.ElapsedMs = elapsed.Milliseconds()
	uc.metrics.RecordLatency("aggregate", elapsed.Seconds())

	uc.log.Info("instruments aggregated",
		applogger.String("trade_date", p.TradeDate),
		applogger.String("market", string(p.Market)),
		applogger.Int("total", total),
		applogger.Int("returned", len(recs)),
		applogger.Int("quote_pct", stats.Coverage.QuotePercent),
		applogger.Int("indicators_pct", stats.Coverage.IndicatorsPercent),
		applogger.Duration("elapsed_ms", elapsed),
	)

	return &models.AggregateResult{Records: recs, Meta: meta}, nil
}

func (uc *InstrumentsUseCase) reportOverlay(meta *models.AggregateMeta, kind models.OverlayKind, err error, requested bool, pct int) {
	if !requested {
		return
	}
	if err == nil {
		uc.metrics.RecordCoverage(string(kind), pct)
		return
	}
	if meta.Errors == nil {
		meta.Errors = make(map[models.OverlayKind]string)
	}
	meta.Errors[kind] = err.Error()
	uc.metrics.RecordError("overlay_" + string(kind))
	uc.log.Warn("overlay unavailable, continuing without it",
		applogger.String("overlay", string(kind)),
		applogger.String("trade_date", meta.TradeDate),
		applogger.Error(err),
	)
}

// normalize applies defaults and rejects malformed parameters before any fetch.
func (uc *InstrumentsUseCase) normalize(p *models.AggregateParams) error {
	if p.Market != "" && !p.Market.Valid() {
		return &models.ValidationError{Field: "market", Value: string(p.Market), Message: "unknown sub-market"}
	}

	if p.ListStatus == "" {
		p.ListStatus = models.ListStatusListed
	}
	if !p.ListStatus.Valid() {
		return &models.ValidationError{Field: "list_status", Value: string(p.ListStatus), Message: "must be one of L, D, P"}
	}

	switch {
	case p.Limit == 0:
		p.Limit = uc.defaultLimit
	case p.Limit < 0 || p.Limit > uc.maxLimit:
		return &models.ValidationError{Field: "limit", Value: fmt.Sprint(p.Limit), Message: fmt.Sprintf("must be within 1..%d", uc.maxLimit)}
	}

	if p.TradeDate == "" {
		p.TradeDate = uc.days.DefaultTradeDate()
	} else if _, ok := util.ParseDate8(p.TradeDate); !ok {
		return &models.ValidationError{Field: "trade_date", Value: p.TradeDate, Message: "must be a date in YYYYMMDD format"}
	}

	for _, c := range p.Codes {
		if !util.IsTSCode(c) {
			return &models.ValidationError{Field: "codes", Value: c, Message: "must look like 600000.SH"}
		}
	}
	return nil
}

// selectRoster drops rows without a code and repeated codes (first wins),
// then keeps only the requested codes when any were given.
func selectRoster(rows []models.RosterRow, codes []string) []models.RosterRow {
	var want map[string]struct{}
	if len(codes) > 0 {
		want = make(map[string]struct{}, len(codes))
		for _, c := range codes {
			want[c] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(rows))
	out := make([]models.RosterRow, 0, len(rows))
	for _, r := range rows {
		if r.Code == "" {
			continue
		}
		if _, dup := seen[r.Code]; dup {
			continue
		}
		seen[r.Code] = struct{}{}
		if want != nil {
			if _, ok := want[r.Code]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
