// Package enrich runs the alt text enrichment pipeline: rows are processed in
// batches, batches in fixed-size chunks with a pacing delay between them, and
// every completed batch is appended to the output before the next one starts.
// Processing is strictly sequential; ordering of the output matches the input.
package enrich

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/catalogtools/alttexter/pkg/logging"
	"github.com/catalogtools/alttexter/pkg/ratelimit"
	"github.com/catalogtools/alttexter/pkg/records"
)

// Resolver maps a catalog filename to its asset URL.
type Resolver interface {
	Resolve(fileName string) (string, bool)
}

// Generator produces alt text for an image URL.
type Generator interface {
	Generate(ctx context.Context, imageURL string) (string, error)
}

// Sink receives completed batches.
type Sink interface {
	Append(batch []records.Row) error
}

// DefaultChunkSize is the number of rows processed between pacing delays.
const DefaultChunkSize = 30

// Engine enriches catalog rows with generated alt text.
type Engine struct {
	resolver  Resolver
	generator Generator
	chunkSize int
	pacer     *ratelimit.Pacer
	logger    zerolog.Logger
}

// NewEngine creates an Engine. pacer spaces consecutive chunks; a nil pacer
// disables the inter-chunk delay.
func NewEngine(resolver Resolver, generator Generator, chunkSize int, pacer *ratelimit.Pacer) *Engine {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if pacer == nil {
		pacer = ratelimit.NewPacer(0)
	}
	return &Engine{
		resolver:  resolver,
		generator: generator,
		chunkSize: chunkSize,
		pacer:     pacer,
		logger:    logging.NewLogger("enrich"),
	}
}

// Run processes rows in batches of batchSize and appends each completed batch
// to sink. A batch is appended exactly once, after every row in it has been
// handled; on error the already-appended batches remain in the output.
func (e *Engine) Run(ctx context.Context, rows []records.Row, batchSize int, sink Sink) error {
	batches := records.Partition(rows, batchSize)
	e.logger.Info().
		Int("rows", len(rows)).
		Int("batches", len(batches)).
		Int("batch_size", batchSize).
		Int("chunk_size", e.chunkSize).
		Msg("Starting enrichment")

	for i, batch := range batches {
		if err := e.enrichBatch(ctx, batch, i+1); err != nil {
			return fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}
		for j := range batch {
			batch[j].ResolvedURL = ""
		}
		if err := sink.Append(batch); err != nil {
			return fmt.Errorf("append batch %d/%d: %w", i+1, len(batches), err)
		}
		batchesTotal.Inc()
		e.logger.Info().
			Int("batch", i+1).
			Int("batches", len(batches)).
			Int("rows", len(batch)).
			Msg("Batch written")
	}
	return nil
}

// enrichBatch processes one batch chunk by chunk, pausing between chunks.
func (e *Engine) enrichBatch(ctx context.Context, batch []records.Row, batchNum int) error {
	chunks := records.Partition(batch, e.chunkSize)
	for i, chunk := range chunks {
		for j := range chunk {
			if err := e.enrichRow(ctx, &chunk[j]); err != nil {
				return err
			}
		}
		chunksTotal.Inc()
		e.logger.Debug().
			Int("batch", batchNum).
			Int("chunk", i+1).
			Int("chunks", len(chunks)).
			Msg("Chunk processed")

		// No pause after the final chunk.
		if i < len(chunks)-1 {
			if err := e.pacer.Wait(ctx); err != nil {
				return fmt.Errorf("inter-chunk wait: %w", err)
			}
		}
	}
	return nil
}

// enrichRow applies the per-row decision chain. Rows that cannot be enriched
// pass through unchanged; only interruption aborts the run.
func (e *Engine) enrichRow(ctx context.Context, row *records.Row) error {
	if row.FileName == "" {
		rowsTotal.WithLabelValues("skipped_no_filename").Inc()
		e.logger.Warn().
			Str("row_id", row.ID).
			Msg("Row has no filename - skipped")
		return nil
	}

	if row.AltText != "" {
		rowsTotal.WithLabelValues("kept_existing").Inc()
		return nil
	}

	url, ok := e.resolver.Resolve(row.FileName)
	if !ok {
		rowsTotal.WithLabelValues("skipped_unresolved").Inc()
		e.logger.Warn().
			Str("row_id", row.ID).
			Str("file_name", row.FileName).
			Msg("Filename not in index - skipped")
		return nil
	}
	row.ResolvedURL = url

	text, err := e.generator.Generate(ctx, url)
	if err != nil {
		return err
	}
	row.AltText = text
	rowsTotal.WithLabelValues("generated").Inc()
	return nil
}
