// Package index provides the durable filename-to-URL index store backing
// row resolution, together with the key normalization rules that populate it.
// The store is a single JSON file, loaded at startup and overwritten
// wholesale after each completed sweep.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/catalogtools/alttexter/pkg/logging"
)

// ErrCorruptStore indicates the cache file exists but does not contain valid
// JSON. Loading never falls back to an empty store in that case, since that
// would silently mask corruption and rebuild on top of it.
var ErrCorruptStore = errors.New("corrupt index cache")

// Store is the key->URL mapping. It is owned by its creator and passed
// explicitly to the builder and the enrichment engine; there is no ambient
// global state.
type Store struct {
	path    string
	entries map[string]string
	logger  zerolog.Logger
}

// Load reads the store from path. A missing file yields an empty store; a
// present but unparseable file yields ErrCorruptStore and the caller is
// expected to abort the run.
func Load(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[string]string),
		logger:  logging.NewLogger("index-store"),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info().Str("path", path).Msg("No index cache found - starting empty")
			return s, nil
		}
		return nil, fmt.Errorf("read index cache: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, path, err)
	}

	indexEntries.Set(float64(len(s.entries)))
	s.logger.Info().
		Str("path", path).
		Int("entries", len(s.entries)).
		Msg("Index cache loaded")

	return s, nil
}

// Merge upserts an entry. The last write for a key wins.
func (s *Store) Merge(key, url string) {
	s.entries[key] = url
	indexEntries.Set(float64(len(s.entries)))
}

// Persist serializes the full mapping to the store's file, overwriting any
// prior content. Callers invoke it only after a sweep completes, never
// mid-page, so a persisted file always reflects whole sweeps.
func (s *Store) Persist() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index cache: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write index cache: %w", err)
	}

	indexPersistsTotal.Inc()
	s.logger.Info().
		Str("path", s.path).
		Int("entries", len(s.entries)).
		Msg("Index cache persisted")

	return nil
}

// Resolve looks up the URL for a row's file name. It tries the exact name
// first, then retries once with a trailing category suffix stripped. The
// suffix strip is the only fallback; in particular there is no
// case-insensitive matching.
func (s *Store) Resolve(fileName string) (string, bool) {
	if url, ok := s.entries[fileName]; ok {
		indexHits.WithLabelValues("exact").Inc()
		return url, true
	}

	stripped := StripCategorySuffix(fileName)
	if stripped != fileName {
		if url, ok := s.entries[stripped]; ok {
			indexHits.WithLabelValues("suffix_stripped").Inc()
			s.logger.Debug().
				Str("file_name", fileName).
				Str("key", stripped).
				Msg("Resolved via suffix fallback")
			return url, true
		}
	}

	indexMisses.Inc()
	return "", false
}

// Len returns the number of entries in the store.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the mapping, for logging and tests.
func (s *Store) Entries() map[string]string {
	out := make(map[string]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}
