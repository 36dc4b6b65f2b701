package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/catalogtools/alttexter/pkg/index"
	"github.com/catalogtools/alttexter/pkg/logging"
)

// assetNode is any edge node that can yield zero or more asset URLs.
type assetNode interface {
	assetURLs() []string
}

// Builder walks the three paginated source categories and populates the
// index store. Sweeps run strictly sequentially: pages within a category are
// cursor-dependent, and categories follow one another in a fixed order. The
// store is persisted after each category's pagination loop fully drains,
// never mid-page.
type Builder struct {
	client   *Client
	store    *index.Store
	pageSize int
	logger   zerolog.Logger
}

// NewBuilder creates a Builder over the given client and store.
func NewBuilder(c *Client, store *index.Store, pageSize int) *Builder {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Builder{
		client:   c,
		store:    store,
		pageSize: pageSize,
		logger:   logging.NewLogger("index-builder"),
	}
}

// Run performs all three sweeps in order, persisting after each. Any
// non-rate-limit failure aborts the run: continuing would persist an index
// that looks complete but is not.
func (b *Builder) Run(ctx context.Context) error {
	if err := runSweep[fileNode](ctx, b, index.CategoryContent, filesQuery, "files"); err != nil {
		return fmt.Errorf("files sweep: %w", err)
	}
	if err := runSweep[collectionNode](ctx, b, index.CategoryCollection, collectionsQuery, "collections"); err != nil {
		return fmt.Errorf("collections sweep: %w", err)
	}
	if err := runSweep[productNode](ctx, b, index.CategoryProduct, productsQuery, "products"); err != nil {
		return fmt.Errorf("products sweep: %w", err)
	}
	return nil
}

// runSweep drains one paginated category into the store and persists it.
func runSweep[T assetNode](ctx context.Context, b *Builder, category index.Category, query, root string) error {
	start := time.Now()
	var cursor *string
	pages, indexed, skipped := 0, 0, 0

	b.logger.Info().
		Str("category", string(category)).
		Int("page_size", b.pageSize).
		Msg("Starting sweep")

	for {
		conn, err := fetchPage[T](ctx, b.client, query, root, b.pageSize, cursor)
		if err != nil {
			return err
		}
		pages++
		sweepPagesTotal.WithLabelValues(string(category)).Inc()

		for _, e := range conn.Edges {
			urls := e.Node.assetURLs()
			if len(urls) == 0 {
				skipped++
				sweepItemsSkippedTotal.WithLabelValues(string(category)).Inc()
				b.logger.Warn().
					Str("category", string(category)).
					Str("cursor", e.Cursor).
					Msg("Item has no usable URL - skipped")
				continue
			}
			for _, rawURL := range urls {
				key, err := index.Key(rawURL, category)
				if err != nil {
					skipped++
					sweepItemsSkippedTotal.WithLabelValues(string(category)).Inc()
					b.logger.Warn().
						Str("category", string(category)).
						Str("url", rawURL).
						Err(err).
						Msg("Could not derive key - skipped")
					continue
				}
				b.store.Merge(key, rawURL)
				indexed++
				sweepItemsIndexedTotal.WithLabelValues(string(category)).Inc()
			}
		}

		if next := conn.lastCursor(); next != nil {
			cursor = next
		}
		if !conn.PageInfo.HasNextPage {
			break
		}
		b.logger.Debug().
			Str("category", string(category)).
			Int("pages", pages).
			Int("indexed", indexed).
			Msg("Sweep progress")
	}

	sweepDurationSeconds.WithLabelValues(string(category)).Observe(time.Since(start).Seconds())
	b.logger.Info().
		Str("category", string(category)).
		Int("pages", pages).
		Int("indexed", indexed).
		Int("skipped", skipped).
		Dur("duration", time.Since(start)).
		Msg("Sweep complete")

	return b.store.Persist()
}

// fetchPage requests one page of a paginated connection.
func fetchPage[T any](ctx context.Context, c *Client, query, root string, pageSize int, cursor *string) (connection[T], error) {
	var conn connection[T]

	variables := map[string]any{
		"pageSize": pageSize,
		"cursor":   nil,
	}
	if cursor != nil {
		variables["cursor"] = *cursor
	}

	data, err := c.execute(ctx, query, variables)
	if err != nil {
		return conn, err
	}

	raw, ok := data[root]
	if !ok {
		return conn, fmt.Errorf("response missing %q payload", root)
	}
	if err := json.Unmarshal(raw, &conn); err != nil {
		return conn, fmt.Errorf("decode %s page: %w", root, err)
	}
	return conn, nil
}
