package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"StockPull/internal/domain/models"
	applogger "StockPull/pkg/logger"
	"StockPull/pkg/util"
)

// MonthCache is the month-granular calendar store.
type MonthCache interface {
	GetOrFetch(ctx context.Context, exchange string, year, month int, force bool) (*models.MonthCalendarEntry, error)
	Invalidate(ctx context.Context, exchange string, year, month int) (bool, error)
	Clear(ctx context.Context)
}

// CalendarUseCase serves date ranges by stitching cached months together.
type CalendarUseCase struct {
	cache        MonthCache
	exchanges    []string
	maxRangeDays int
	concurrency  int
	log          *applogger.Logger
}

func NewCalendarUseCase(cache MonthCache, exchanges []string, maxRangeDays, concurrency int, log *applogger.Logger) *CalendarUseCase {
	if len(exchanges) == 0 {
		exchanges = []string{"SSE"}
	}
	if maxRangeDays <= 0 {
		maxRangeDays = 366
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &CalendarUseCase{
		cache:        cache,
		exchanges:    exchanges,
		maxRangeDays: maxRangeDays,
		concurrency:  concurrency,
		log:          log,
	}
}

// Range returns the days between the two dates (inclusive) for one
// exchange, or for every configured exchange when none is given. The
// IsOpen filter applies to the returned days; stats cover the whole range.
func (uc *CalendarUseCase) Range(ctx context.Context, p models.CalendarParams) (*models.CalendarResult, error) {
	start, ok := util.ParseDate8(p.StartDate)
	if !ok {
		return nil, &models.ValidationError{Field: "start_date", Value: p.StartDate, Message: "must be a date in YYYYMMDD format"}
	}
	end, ok := util.ParseDate8(p.EndDate)
	if !ok {
		return nil, &models.ValidationError{Field: "end_date", Value: p.EndDate, Message: "must be a date in YYYYMMDD format"}
	}
	if end.Before(start) {
		return nil, &models.ValidationError{Field: "end_date", Value: p.EndDate, Message: "must not be before start_date"}
	}
	if span := int(end.Sub(start)/(24*time.Hour)) + 1; span > uc.maxRangeDays {
		return nil, &models.ValidationError{Field: "end_date", Value: p.EndDate, Message: fmt.Sprintf("range exceeds %d days", uc.maxRangeDays)}
	}

	exchanges := uc.exchanges
	if ex := strings.ToUpper(strings.TrimSpace(p.Exchange)); ex != "" {
		exchanges = []string{ex}
	}
	months := util.MonthsBetween(start, end)

	entries := make([][]*models.MonthCalendarEntry, len(exchanges))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)
	for i, ex := range exchanges {
		entries[i] = make([]*models.MonthCalendarEntry, len(months))
		for j, ym := range months {
			g.Go(func() error {
				e, err := uc.cache.GetOrFetch(gctx, ex, ym.Year, int(ym.Month), false)
				if err != nil {
					return err
				}
				entries[i][j] = e
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &models.CalendarResult{Days: []models.CalendarDay{}}
	for i, ex := range exchanges {
		exStats := models.ExchangeCalendarStats{Exchange: ex}
		for _, e := range entries[i] {
			for _, d := range e.Days {
				if d.CalDate < p.StartDate || d.CalDate > p.EndDate {
					continue
				}
				if d.IsTrading {
					exStats.TradingDays++
				} else {
					exStats.NonTradingDays++
				}
				if p.IsOpen != nil && d.IsTrading != *p.IsOpen {
					continue
				}
				res.Days = append(res.Days, d)
			}
		}
		exStats.TradingRatio = ratio(exStats.TradingDays, exStats.TradingDays+exStats.NonTradingDays)

		res.Stats.TradingDays += exStats.TradingDays
		res.Stats.NonTradingDays += exStats.NonTradingDays
		res.Stats.ByExchange = append(res.Stats.ByExchange, exStats)
	}
	res.Stats.TotalDays = res.Stats.TradingDays + res.Stats.NonTradingDays
	res.Stats.TradingRatio = ratio(res.Stats.TradingDays, res.Stats.TotalDays)

	uc.log.Debug("calendar range served",
		applogger.String("start", p.StartDate),
		applogger.String("end", p.EndDate),
		applogger.Strings("exchanges", exchanges),
		applogger.Int("days", len(res.Days)),
	)
	return res, nil
}

func (uc *CalendarUseCase) Month(ctx context.Context, exchange string, year, month int, refresh bool) (*models.MonthCalendarEntry, error) {
	return uc.cache.GetOrFetch(ctx, exchange, year, month, refresh)
}

func (uc *CalendarUseCase) Invalidate(ctx context.Context, exchange string, year, month int) (bool, error) {
	return uc.cache.Invalidate(ctx, exchange, year, month)
}

func (uc *CalendarUseCase) Clear(ctx context.Context) error {
	uc.cache.Clear(ctx)
	return nil
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*10000) / 10000
}
