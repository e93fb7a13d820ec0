//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"StockPull/pkg/config"
	"StockPull/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideRedisStore,

		// Upstream provider
		ProvideTushareClient,
		ProvideMarketData,
		ProvideTradingDays,
		ProvideCalendarCache,

		// Use cases
		ProvideInstrumentsUseCase,
		ProvideCalendarUseCase,

		// HTTP
		ProvideRouter,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
