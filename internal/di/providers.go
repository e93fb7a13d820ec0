package di

import (
	"fmt"

	"StockPull/internal/domain/repository"
	"StockPull/internal/handler/api"
	"StockPull/internal/service/calendarcache"
	"StockPull/internal/service/tradingday"
	"StockPull/internal/service/tushare"
	"StockPull/internal/usecase"
	"StockPull/pkg/cache"
	"StockPull/pkg/config"
	xhttp "StockPull/pkg/http"
	pkgkafka "StockPull/pkg/kafka"
	applogger "StockPull/pkg/logger"
	"StockPull/pkg/metrics"
	"StockPull/pkg/server"
)

const serviceName = "stockpull"

// ProvideKafkaProducer creates the producer used to ship aggregated logs.
// It returns nil when the log collector is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Logging.Collector.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(cfg.Kafka.Producer.HashByKey),
		pkgkafka.WithAutoCreateTopic(cfg.Kafka.Producer.AutoCreate),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger builds the root logger. The collector is attached here so
// every component logger derived from it shares the collector.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			Service:        serviceName,
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.CountThreshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisStore connects the shared calendar store. It returns nil
// when Redis is disabled.
func ProvideRedisStore(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	store, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return store, nil
}

// ProvideTushareClient creates the rate-limited provider client.
func ProvideTushareClient(cfg *config.Config, l *applogger.Logger, m repository.Metrics) (*tushare.Client, error) {
	return tushare.New(cfg.Tushare.Token,
		tushare.WithBaseURL(cfg.Tushare.BaseURL),
		tushare.WithMinInterval(cfg.Tushare.MinInterval),
		tushare.WithTimeout(cfg.Tushare.Timeout),
		tushare.WithPaging(cfg.Tushare.PageSize, cfg.Tushare.MaxPages),
		tushare.WithLogger(l),
		tushare.WithMetrics(m),
	)
}

// ProvideMarketData exposes the provider datasets as typed rows.
func ProvideMarketData(client *tushare.Client) repository.MarketData {
	return tushare.NewGateway(client)
}

func ProvideTradingDays(cfg *config.Config) *tradingday.Resolver {
	return tradingday.New(cfg.Aggregation.CalendarMIC)
}

func ProvideCalendarCache(cfg *config.Config, data repository.MarketData, store *cache.RedisCache, l *applogger.Logger, m repository.Metrics) *calendarcache.Cache {
	opts := []calendarcache.Option{
		calendarcache.WithFillTimeout(cfg.Aggregation.Timeout),
		calendarcache.WithLogger(l),
		calendarcache.WithMetrics(m),
	}
	if store != nil {
		opts = append(opts, calendarcache.WithStore(store))
	}
	return calendarcache.New(data, opts...)
}

func ProvideInstrumentsUseCase(
	cfg *config.Config,
	data repository.MarketData,
	days *tradingday.Resolver,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.InstrumentsUseCase {
	return usecase.NewInstrumentsUseCase(data, days,
		usecase.WithLimits(cfg.Aggregation.DefaultLimit, cfg.Aggregation.MaxLimit),
		usecase.WithTopIndustries(cfg.Aggregation.TopIndustries),
		usecase.WithAggregationTimeout(cfg.Aggregation.Timeout),
		usecase.WithInstrumentsLogger(l.With(applogger.String("component", "instruments"))),
		usecase.WithInstrumentsMetrics(m),
	)
}

func ProvideCalendarUseCase(cfg *config.Config, c *calendarcache.Cache, l *applogger.Logger) *usecase.CalendarUseCase {
	return usecase.NewCalendarUseCase(c,
		cfg.Calendar.Exchanges,
		cfg.Calendar.MaxRangeDays,
		cfg.Calendar.Concurrency,
		l.With(applogger.String("component", "calendar")),
	)
}

// ProvideRouter mounts the API handlers.
func ProvideRouter(
	cfg *config.Config,
	l *applogger.Logger,
	instruments *usecase.InstrumentsUseCase,
	calendar *usecase.CalendarUseCase,
) *api.Router {
	return api.NewRouter(l,
		api.ThrottleConfig{
			Enabled:      cfg.RateLimit.Enabled,
			Capacity:     cfg.RateLimit.Capacity,
			RefillPerSec: cfg.RateLimit.RefillPerSec,
		},
		api.NewInstrumentsEchoHandler(l, instruments),
		api.NewCalendarEchoHandler(l, calendar),
	)
}

func ProvideHTTPServer(cfg *config.Config, router *api.Router, l *applogger.Logger) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(router, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.AllowedOrigins),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application. Optional clients are closed on shutdown.
func ProvideApp(
	srv *xhttp.Server,
	l *applogger.Logger,
	store *cache.RedisCache,
	producer *pkgkafka.Producer,
) *server.App {
	var resources []server.Resource
	if producer != nil {
		resources = append(resources, server.Resource{Name: "kafka", Closer: producer})
	}
	if store != nil {
		resources = append(resources, server.Resource{Name: "redis", Closer: store})
	}
	return server.New(srv, l, resources...)
}
