package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"TradeSage/internal/domain/repository"
	dservice "TradeSage/internal/domain/service"
	"TradeSage/internal/engine/pattern"
	"TradeSage/internal/engine/quant"
	"TradeSage/internal/handler/api"
	mid "TradeSage/internal/middleware"
	internalrepo "TradeSage/internal/repository"
	icache "TradeSage/internal/service/cache"
	"TradeSage/internal/services/arbiter"
	"TradeSage/internal/services/marketdata"
	"TradeSage/internal/services/news"
	"TradeSage/internal/services/paper"
	"TradeSage/internal/usecase"
	"TradeSage/pkg/cache"
	pkgch "TradeSage/pkg/clickhouse"
	"TradeSage/pkg/config"
	xhttp "TradeSage/pkg/http"
	pkgkafka "TradeSage/pkg/kafka"
	applogger "TradeSage/pkg/logger"
	"TradeSage/pkg/metrics"
	"TradeSage/pkg/queue"
	"TradeSage/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideDecisionStore creates the ClickHouse decision store and ensures the
// schema exists.
func ProvideDecisionStore(chClient *pkgch.Client, log *applogger.Logger) (repository.DecisionStore, error) {
	store := internalrepo.NewCHDecisionStore(chClient)
	store.SetLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideBarStore creates the ClickHouse bar store for historical queries.
func ProvideBarStore(chClient *pkgch.Client, log *applogger.Logger) *internalrepo.CHBarStore {
	store := internalrepo.NewCHBarStore(chClient)
	store.SetLogger(log)
	return store
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDecisionPublisher creates the Kafka decision publisher.
func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer when enabled, to land
// published decisions back into ClickHouse.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideDecisionsHandler registers the handler for the decisions topic.
func ProvideDecisionsHandler(store repository.DecisionStore, cfg *config.Config, log *applogger.Logger) *usecase.DecisionsTopicHandler {
	return usecase.NewDecisionsTopicHandler(cfg.Kafka.Topic, store, log)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideAggregator creates the in-memory bar aggregator.
func ProvideAggregator() *marketdata.Aggregator {
	return marketdata.NewAggregator(0)
}

// ProvideLedger creates the paper trading ledger.
func ProvideLedger(cfg *config.Config) dservice.Ledger {
	return paper.NewLedger(cfg.Paper.InitialBalance)
}

// ProvideStream creates the WebSocket market stream.
func ProvideStream(cfg *config.Config, log *applogger.Logger) repository.MarketStream {
	return marketdata.New(
		cfg.Stream.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		log,
	)
}

// ProvideDecisionProcessor creates the decision routing use case.
func ProvideDecisionProcessor(
	pub repository.Publisher,
	store repository.DecisionStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.DecisionProcessor {
	return usecase.NewDecisionProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideTickCollector builds the stream consumer with its realtime pipeline.
func ProvideTickCollector(
	stream repository.MarketStream,
	agg *marketdata.Aggregator,
	ledger dservice.Ledger,
	proc *usecase.DecisionProcessor,
	m repository.Metrics,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.TickCollector {
	sink := usecase.NewTickSink(agg, ledger, proc, m, log)
	pipe := mid.NewRealtimePipeline(sink, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTickCollector(stream, pipe, m, cfg.Stream.Watchlist, log)
}

// ProvideDetector creates the candlestick pattern detector.
func ProvideDetector() *pattern.Detector {
	return pattern.NewDetector()
}

// ProvideOverlay creates the quant risk overlay.
func ProvideOverlay() *quant.Overlay {
	return quant.NewOverlay()
}

// ProvideUsageTracker creates the arbiter usage tracker.
func ProvideUsageTracker() *arbiter.UsageTracker {
	return arbiter.NewUsageTracker(time.Now())
}

// ProvideArbiter creates the AI arbitration client, or nil when disabled.
func ProvideArbiter(cfg *config.Config, usage *arbiter.UsageTracker, log *applogger.Logger) dservice.Arbiter {
	if !cfg.Arbiter.Enabled {
		return nil
	}
	timeout := cfg.Arbiter.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := xhttp.NewClient(xhttp.WithTimeout(timeout))
	return arbiter.NewHTTPArbiter(arbiter.Config{
		BaseURL: cfg.Arbiter.BaseURL,
		APIKey:  cfg.Arbiter.APIKey,
		Models:  cfg.Arbiter.Models,
		Timeout: timeout,
	}, client, usage, log)
}

// ProvideNewsSource creates the RSS news source, or nil when disabled.
func ProvideNewsSource(cfg *config.Config, log *applogger.Logger) dservice.NewsSource {
	if !cfg.News.Enabled || len(cfg.News.Feeds) == 0 {
		return nil
	}
	feeds := make([]news.Feed, len(cfg.News.Feeds))
	for i, f := range cfg.News.Feeds {
		feeds[i] = news.Feed{Name: f.Name, URL: f.URL}
	}
	client := xhttp.NewClient(xhttp.WithTimeout(10 * time.Second))
	return news.NewRSSSource(feeds, client, log)
}

// ProvideSentimentAnalyzer creates the keyword sentiment analyzer.
func ProvideSentimentAnalyzer() dservice.SentimentAnalyzer {
	return news.NewKeywordAnalyzer()
}

// ProvideEvaluator creates the evaluation state machine.
func ProvideEvaluator(
	detector *pattern.Detector,
	overlay *quant.Overlay,
	arb dservice.Arbiter,
	ledger dservice.Ledger,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Evaluator {
	return usecase.NewEvaluator(detector, overlay, arb, ledger, m, log, cfg.Arbiter.Timeout)
}

// ProvideSignalService creates the signal use case over live aggregated bars.
func ProvideSignalService(
	agg *marketdata.Aggregator,
	detector *pattern.Detector,
	evaluator *usecase.Evaluator,
	source dservice.NewsSource,
	analyzer dservice.SentimentAnalyzer,
	log *applogger.Logger,
) *usecase.SignalService {
	return usecase.NewSignalService(agg, detector, evaluator, source, analyzer, log)
}

// ProvideBarsUseCase serves historical bars from ClickHouse.
func ProvideBarsUseCase(store *internalrepo.CHBarStore) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(store)
}

// ProvideRedisClient creates the shared Redis client.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideEvaluateJob creates the queue job running full evaluations.
func ProvideEvaluateJob(
	signals *usecase.SignalService,
	ledger dservice.Ledger,
	proc *usecase.DecisionProcessor,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.EvaluateSignalJob {
	return usecase.NewEvaluateSignalJob(signals, ledger, proc, m, log)
}

// ProvideEvalQueue creates the Redis evaluation queue with the job registered.
func ProvideEvalQueue(
	log *applogger.Logger,
	cfg *config.Config,
	client *redis.Client,
	job *usecase.EvaluateSignalJob,
) *queue.RedisQueue {
	q := queue.NewRedisQueue(log, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, client, queue.ModeProducerConsumer)
	q.RegisterJob(job)
	return q
}

// ProvideSweepLocks builds the dedup lock cache for the trader sweep. Redis
// when configured so locks are shared across instances, in-process otherwise.
// The redis path is wrapped in the layered cache: locks stay in redis while
// repeated reads are served from the in-process tier.
func ProvideSweepLocks(cfg *config.Config) cache.Service {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryCache()
	}
	host, port := splitHostPort(cfg.Redis.Addr)
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("tradesage"),
	)
	if err != nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(c)
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideTrader creates the watchlist sweep loop.
func ProvideTrader(
	signals *usecase.SignalService,
	q *queue.RedisQueue,
	locks cache.Service,
	cfg *config.Config,
	log *applogger.Logger,
) *usecase.Trader {
	tf := repository.NormalizeTimeframe(cfg.Trader.Timeframe)
	return usecase.NewTrader(signals, q, locks, cfg.Stream.Watchlist, cfg.Trader.ScanInterval, tf, log)
}

// ProvideHandler assembles the HTTP handler surface.
func ProvideHandler(
	log *applogger.Logger,
	signals *usecase.SignalService,
	bars *usecase.BarsUseCase,
	ledger dservice.Ledger,
	agg *marketdata.Aggregator,
	usage *arbiter.UsageTracker,
	collector *usecase.TickCollector,
	store repository.DecisionStore,
	cfg *config.Config,
) *api.EngineHandler {
	h := api.NewEngineHandler(log, signals, bars, ledger, agg, usage, collector, store)
	if cfg.Redis.Addr != "" {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.TickCollector,
	trader *usecase.Trader,
	evalQueue *queue.RedisQueue,
	consumer *pkgkafka.Consumer,
	kh *usecase.DecisionsTopicHandler,
	chClient *pkgch.Client,
	proc *usecase.DecisionProcessor,
	handler *api.EngineHandler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, log, collector, trader, evalQueue, consumer, kh, chClient, proc)
	app.SetHTTPHandler(handler)
	return app
}
