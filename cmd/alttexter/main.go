// Command alttexter builds a filename-to-URL index from the shop's media
// catalog and enriches a CSV export with generated alt text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/catalogtools/alttexter/pkg/enrich"
	"github.com/catalogtools/alttexter/pkg/index"
	"github.com/catalogtools/alttexter/pkg/logging"
	"github.com/catalogtools/alttexter/pkg/ratelimit"
	"github.com/catalogtools/alttexter/pkg/records"
	"github.com/catalogtools/alttexter/pkg/shopify"
	"github.com/catalogtools/alttexter/pkg/vision"
)

func main() {
	skipIndex := flag.Bool("skip-index", false, "reuse the cached index without sweeping the catalog")
	indexOnly := flag.Bool("index-only", false, "build and persist the index, then exit")
	flag.Parse()

	// Configuration from environment
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	}).With().Str("component", "main").Logger()

	cacheFile := getEnv("CACHE_FILE", "alttexter-cache.json")
	inputCSV := getEnv("INPUT_CSV", "input.csv")
	outputCSV := getEnv("OUTPUT_CSV", "output.csv")
	batchSize := getEnvInt(logger, "BATCH_SIZE", 500)
	chunkSize := getEnvInt(logger, "CHUNK_SIZE", enrich.DefaultChunkSize)
	chunkDelay := time.Duration(getEnvInt(logger, "CHUNK_DELAY_MS", 5000)) * time.Millisecond

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := getEnv("METRICS_ADDR", ""); addr != "" {
		go serveMetrics(logger, addr)
	}

	// The cache must load cleanly before any remote call is made: a corrupt
	// cache silently dropped would trigger a full re-sweep on every run.
	store, err := index.Load(cacheFile)
	if err != nil {
		if errors.Is(err, index.ErrCorruptStore) {
			logger.Fatal().Err(err).Msg("Index cache is corrupt - delete it to rebuild from scratch")
		}
		logger.Fatal().Err(err).Msg("Failed to load index cache")
	}

	if !*skipIndex {
		if err := buildIndex(ctx, logger, store); err != nil {
			logger.Fatal().Err(err).Msg("Index build failed")
		}
	} else {
		logger.Info().Int("entries", store.Len()).Msg("Reusing cached index")
	}

	if *indexOnly {
		logger.Info().Int("entries", store.Len()).Msg("Index built - exiting (index-only)")
		return
	}

	if err := runEnrichment(ctx, logger, store, inputCSV, outputCSV, batchSize, chunkSize, chunkDelay); err != nil {
		logger.Fatal().Err(err).Msg("Enrichment failed")
	}
}

// buildIndex sweeps the three catalog categories into the store.
func buildIndex(ctx context.Context, logger zerolog.Logger, store *index.Store) error {
	cfg := shopify.Config{
		Shop:        getEnv("SHOPIFY_SHOP", ""),
		AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		APIVersion:  getEnv("SHOPIFY_API_VERSION", shopify.DefaultAPIVersion),
	}

	client, err := shopify.NewClient(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := shopify.NewBuilder(client, store, shopify.DefaultPageSize).Run(ctx); err != nil {
		return err
	}
	logger.Info().
		Int("entries", store.Len()).
		Dur("duration", time.Since(start)).
		Msg("Index build complete")
	return nil
}

// runEnrichment processes the input CSV through the enrichment engine.
func runEnrichment(ctx context.Context, logger zerolog.Logger, store *index.Store,
	inputCSV, outputCSV string, batchSize, chunkSize int, chunkDelay time.Duration) error {

	rows, err := records.ReadAll(inputCSV)
	if err != nil {
		return err
	}
	logger.Info().Str("input", inputCSV).Int("rows", len(rows)).Msg("Input loaded")

	budget := ratelimit.NewBudget(
		getEnvInt(logger, "TOKENS_PER_MINUTE", ratelimit.DefaultTokensPerMinute),
		getEnvInt(logger, "TOKENS_PER_CALL", ratelimit.DefaultTokensPerCall),
	)
	generator, err := vision.NewGenerator(vision.Config{
		APIKey:  getEnv("OPENAI_API_KEY", ""),
		Model:   getEnv("OPENAI_MODEL", ""),
		BaseURL: getEnv("OPENAI_BASE_URL", ""),
	}, budget)
	if err != nil {
		return err
	}

	writer, err := records.NewWriter(outputCSV)
	if err != nil {
		return err
	}
	defer writer.Close()

	engine := enrich.NewEngine(store, generator, chunkSize, ratelimit.NewPacer(chunkDelay))

	start := time.Now()
	if err := engine.Run(ctx, rows, batchSize, writer); err != nil {
		return err
	}
	logger.Info().
		Str("output", outputCSV).
		Int("rows", writer.Rows()).
		Dur("duration", time.Since(start)).
		Msg("Enrichment complete")
	return nil
}

// serveMetrics exposes Prometheus metrics and a health probe.
func serveMetrics(logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	logger.Info().Str("addr", addr).Msg("Metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(logger zerolog.Logger, key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", value).Msg("Invalid integer - using default")
		return defaultValue
	}
	return n
}
