package main

import (
	"context"
	"os"

	"cardpricewatcher/config"
	"cardpricewatcher/internal/inventory"
	"cardpricewatcher/internal/market"
	"cardpricewatcher/internal/normalize"
	"cardpricewatcher/internal/session"
	"cardpricewatcher/logger"
	"cardpricewatcher/services/cache"
	"cardpricewatcher/services/fetcher"
	"cardpricewatcher/services/publisher"
	"cardpricewatcher/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Credentials may come from the environment or the terminal
	if err := cfg.PromptMissingCredentials(os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Could not read credentials")
	}
	if cfg.Username == "" || cfg.Password == "" {
		log.Fatal().Msg("Username and password are required")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("base_url", cfg.BaseURL).
		Str("market_fetch_mode", cfg.MarketFetchMode).
		Msg("Starting application")

	// Fatal log calls skip defers, so all teardown lives in run
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("Pipeline failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()

	cacheService := newCacheService(cfg, log)

	sess, err := session.NewBrowser(cfg.Headless)
	if err != nil {
		return err
	}
	defer sess.Close()

	var pub publisher.Publisher
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		defer redisPublisher.Close()
		pub = redisPublisher

		log.Info().
			Str("addr", cfg.RedisAddr).
			Str("stream", cfg.RedisStream).
			Msg("Publishing analysis records to Redis")
	}

	inventoryFetcher := fetcher.NewSessionFetcher(sess, cacheService, fetcher.Options{
		MinDelay:    cfg.PageDelayMin,
		MaxDelay:    cfg.PageDelayMax,
		WaitTimeout: cfg.PageLoadTimeout,
		CacheKey:    "stock_rate_limited",
		BlockTime:   cfg.BlockTime,
	})

	marketOpts := fetcher.Options{
		MinDelay:    cfg.LookupDelay,
		MaxDelay:    cfg.LookupDelay,
		WaitTimeout: cfg.PageLoadTimeout,
		CacheKey:    "market_rate_limited",
		BlockTime:   cfg.BlockTime,
	}
	var marketFetcher fetcher.PageFetcher
	if cfg.MarketFetchMode == config.FetchModeHTTP {
		marketFetcher = fetcher.NewHTTPFetcher(cacheService, marketOpts)
	} else {
		marketFetcher = fetcher.NewSessionFetcher(sess, cacheService, marketOpts)
	}

	crawler := inventory.NewCrawler(inventoryFetcher, cfg.BaseURL, logger.ForComponent("inventory"))
	aggregator := market.NewAggregator(marketFetcher, normalize.DefaultTables(), cfg.BaseURL,
		logger.ForComponent("market"))

	w := worker.NewWorker(sess, crawler, aggregator, pub, cfg, logger.ForComponent("worker"))
	return w.Run()
}

// newCacheService picks the rate-limit block cache backend. Without a
// memcache address the block markers live in process memory only.
func newCacheService(cfg *config.Config, log *logger.Logger) cache.CacheService {
	if cfg.MemcacheAddr == "" {
		return cache.NewMemoryService()
	}
	log.Info().Str("addr", cfg.MemcacheAddr).Msg("Using memcache for rate-limit markers")
	return cache.NewMemcacheService(cfg.MemcacheAddr)
}
