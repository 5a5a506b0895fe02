//go:build wireinject
// +build wireinject

package di

import (
	"SmartShop/pkg/config"
	"SmartShop/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideRedisCache,
		ProvideKVService,
		ProvideClickHouseClient,

		// Repositories and stores
		ProvidePriceHistory,
		ProvideObservationPublisher,
		ProvideReviewCache,
		ProvideLimiter,

		// Services
		ProvideScraper,
		ProvideClassifier,
		ProvideLLMClient,
		ProvideSummarizer,

		// Use cases
		ProvidePriceRecorder,
		ProvideProductLookup,
		ProvideReviewAnalyzer,
		ProvidePriceForecaster,
		ProvideChatSession,
		ProvidePriceRefreshJob,
		ProvidePriceRefresher,
		ProvideObservationHandler,

		// Delivery and background work
		ProvideHandlers,
		ProvidePruneJob,
		ProvideRefreshQueue,
		ProvideKafkaConsumer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
