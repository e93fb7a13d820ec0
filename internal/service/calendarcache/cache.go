package calendarcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"StockPull/internal/domain/models"
	drepo "StockPull/internal/domain/repository"
	"StockPull/internal/services/calendar"
	"StockPull/pkg/cache"
	applogger "StockPull/pkg/logger"
	"StockPull/pkg/metrics"
	"StockPull/pkg/util"
)

const l2Namespace = "calendar"

// MonthKey formats the lookup key of one month, e.g. "2024-03-SSE".
func MonthKey(year, month int, exchange string) string {
	return fmt.Sprintf("%04d-%02d-%s", year, month, exchange)
}

// Cache memoizes generated month calendars per (exchange, year, month).
// Entries never expire; they are replaced by a forced refresh or removed
// by Invalidate and Clear.
//
// All work that produces an entry for a key runs under that key's lock,
// so refreshes of one key are serialized and the last one to finish is
// what stays cached. Concurrent non-forced misses share a single fill.
// A forced refresh that fails leaves the previous entry in place.
//
// Invalidate and Clear bump a generation. A fill or L2 promotion that
// started before the bump returns its entry to the caller without caching it.
type Cache struct {
	source      drepo.MarkerSource
	l2          cache.Store
	log         *applogger.Logger
	metrics     drepo.Metrics
	now         func() time.Time
	fillTimeout time.Duration

	mu      sync.RWMutex
	entries map[string]*models.MonthCalendarEntry
	epoch   uint64
	gens    map[string]uint64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	fills singleflight.Group
}

type Option func(*Cache)

// generation identifies the invalidation state a write was based on.
type generation struct {
	epoch uint64
	key   uint64
}

// WithStore adds a shared second-level store. L1 hits keep returning the
// same entry pointer; L2 hits are promoted into L1.
func WithStore(s cache.Store) Option {
	return func(c *Cache) { c.l2 = s }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func WithMetrics(m drepo.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithFillTimeout bounds a shared miss fill. Shared fills do not follow
// the cancellation of the caller that started them. Zero disables the bound.
func WithFillTimeout(d time.Duration) Option {
	return func(c *Cache) { c.fillTimeout = d }
}

func New(source drepo.MarkerSource, opts ...Option) *Cache {
	c := &Cache{
		source:      source,
		log:         applogger.Nop(),
		metrics:     metrics.Noop{},
		now:         time.Now,
		fillTimeout: 45 * time.Second,
		entries:     make(map[string]*models.MonthCalendarEntry),
		gens:        make(map[string]uint64),
		locks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(applogger.String("component", "calendar_cache"))
	return c
}

// Get returns a cached entry without calling the provider.
func (c *Cache) Get(ctx context.Context, exchange string, year, month int) (*models.MonthCalendarEntry, bool, error) {
	exchange, err := validate(exchange, year, month)
	if err != nil {
		return nil, false, err
	}
	key := MonthKey(year, month, exchange)

	if e := c.lookup(key); e != nil {
		c.metrics.RecordCacheLookup("hit")
		return e, true, nil
	}
	if e := c.promote(ctx, key); e != nil {
		c.metrics.RecordCacheLookup("l2_hit")
		return e, true, nil
	}
	return nil, false, nil
}

// GetOrFetch returns the cached entry, filling it on a miss. With force
// set it always refetches the markers and regenerates the month.
func (c *Cache) GetOrFetch(ctx context.Context, exchange string, year, month int, force bool) (*models.MonthCalendarEntry, error) {
	exchange, err := validate(exchange, year, month)
	if err != nil {
		return nil, err
	}
	key := MonthKey(year, month, exchange)

	if force {
		c.metrics.RecordCacheLookup("refresh")
		lock := c.keyLock(key)
		lock.Lock()
		defer lock.Unlock()
		return c.fill(ctx, key, exchange, year, month)
	}

	if e := c.lookup(key); e != nil {
		c.metrics.RecordCacheLookup("hit")
		return e, nil
	}

	ch := c.fills.DoChan(key, func() (interface{}, error) {
		fctx, cancel := c.fillContext(ctx)
		defer cancel()

		lock := c.keyLock(key)
		lock.Lock()
		defer lock.Unlock()

		// a refresh may have landed while we waited for the lock
		if e := c.lookup(key); e != nil {
			c.metrics.RecordCacheLookup("hit")
			return e, nil
		}
		if e := c.promote(fctx, key); e != nil {
			c.metrics.RecordCacheLookup("l2_hit")
			return e, nil
		}
		c.metrics.RecordCacheLookup("miss")
		return c.fill(fctx, key, exchange, year, month)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.MonthCalendarEntry), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) fillContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if c.fillTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.fillTimeout)
}

// Invalidate removes one month. It reports whether L1 held it.
func (c *Cache) Invalidate(ctx context.Context, exchange string, year, month int) (bool, error) {
	exchange, err := validate(exchange, year, month)
	if err != nil {
		return false, err
	}
	key := MonthKey(year, month, exchange)

	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()

	if c.l2 != nil {
		if err := c.l2.Delete(ctx, cache.JoinKey(l2Namespace, key)); err != nil {
			c.log.Warn("l2 delete failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	c.log.Debug("month invalidated", applogger.String("key", key), applogger.Bool("existed", existed))
	return existed, nil
}

// Clear drops every entry.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]*models.MonthCalendarEntry)
	c.epoch++
	c.mu.Unlock()

	if c.l2 != nil {
		if err := c.l2.DeleteByPattern(ctx, cache.PrefixPattern(l2Namespace)); err != nil {
			c.log.Warn("l2 clear failed", applogger.Error(err))
		}
	}
	c.log.Info("calendar cache cleared", applogger.Int("entries", n))
}

// Len is the number of months held in L1.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) lookup(key string) *models.MonthCalendarEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[key]
}

func (c *Cache) generation(key string) generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return generation{epoch: c.epoch, key: c.gens[key]}
}

// install caches e unless an invalidation happened since g was taken.
// With replace unset an entry already in L1 wins and is returned instead.
// The bool reports whether e is now the cached entry.
func (c *Cache) install(key string, e *models.MonthCalendarEntry, g generation, replace bool) (*models.MonthCalendarEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != g.epoch || c.gens[key] != g.key {
		return e, false
	}
	if cur := c.entries[key]; cur != nil && !replace {
		return cur, false
	}
	c.entries[key] = e
	return e, true
}

func (c *Cache) keyLock(key string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

func (c *Cache) promote(ctx context.Context, key string) *models.MonthCalendarEntry {
	if c.l2 == nil {
		return nil
	}
	g := c.generation(key)
	var e models.MonthCalendarEntry
	if err := c.l2.Get(ctx, cache.JoinKey(l2Namespace, key), &e); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn("l2 get failed", applogger.String("key", key), applogger.Error(err))
		}
		return nil
	}
	got, _ := c.install(key, &e, g, false)
	return got
}

// fill must run under the key lock.
func (c *Cache) fill(ctx context.Context, key, exchange string, year, month int) (*models.MonthCalendarEntry, error) {
	start := time.Now()
	g := c.generation(key)
	first, last := util.MonthBounds(year, time.Month(month))

	rows, err := c.source.TradeCalendar(ctx, exchange, first, last)
	if err != nil {
		c.metrics.RecordError("calendar_fetch")
		return nil, fmt.Errorf("load trade calendar %s: %w", key, err)
	}

	days, err := calendar.Generate(exchange, year, month, calendar.MarkersFrom(exchange, rows))
	if err != nil {
		return nil, err
	}

	e := &models.MonthCalendarEntry{
		Exchange:    exchange,
		Year:        year,
		Month:       month,
		Days:        days,
		TradingDays: calendar.TradingDays(days),
		ComputedAt:  c.now().UTC(),
	}
	if _, ok := c.install(key, e, g, true); !ok {
		c.log.Debug("month invalidated during fill, not cached", applogger.String("key", key))
		return e, nil
	}

	if c.l2 != nil {
		l2Key := cache.JoinKey(l2Namespace, key)
		if err := c.l2.Set(ctx, l2Key, e, 0); err != nil {
			c.log.Warn("l2 set failed", applogger.String("key", key), applogger.Error(err))
		} else if c.generation(key) != g {
			_ = c.l2.Delete(ctx, l2Key)
		}
	}

	c.metrics.RecordLatency("calendar.generate", time.Since(start).Seconds())
	c.log.Debug("month generated",
		applogger.String("key", key),
		applogger.Int("markers", len(rows)),
		applogger.Int("trading_days", e.TradingDays),
	)
	return e, nil
}

func validate(exchange string, year, month int) (string, error) {
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if exchange == "" {
		return "", &models.ValidationError{Field: "exchange", Message: "is required"}
	}
	if strings.Contains(exchange, "*") {
		return "", &models.ValidationError{Field: "exchange", Value: exchange, Message: "must not contain wildcards"}
	}
	if year < 1000 || year > 9999 {
		return "", &models.ValidationError{Field: "year", Value: fmt.Sprint(year), Message: "must have four digits"}
	}
	if month < 1 || month > 12 {
		return "", &models.ValidationError{Field: "month", Value: fmt.Sprint(month), Message: "must be within 1..12"}
	}
	return exchange, nil
}
