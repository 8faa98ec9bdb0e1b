//go:build wireinject
// +build wireinject

package di

import (
	"TradeSage/pkg/config"
	"TradeSage/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,

		// Repositories
		ProvideDecisionStore,
		ProvideBarStore,
		ProvideDecisionPublisher,
		ProvideStream,

		// Engine and services
		ProvideDetector,
		ProvideOverlay,
		ProvideAggregator,
		ProvideLedger,
		ProvideUsageTracker,
		ProvideArbiter,
		ProvideNewsSource,
		ProvideSentimentAnalyzer,

		// Use cases
		ProvideDecisionProcessor,
		ProvideTickCollector,
		ProvideEvaluator,
		ProvideSignalService,
		ProvideBarsUseCase,
		ProvideEvaluateJob,
		ProvideEvalQueue,
		ProvideSweepLocks,
		ProvideTrader,
		ProvideDecisionsHandler,

		// HTTP and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
