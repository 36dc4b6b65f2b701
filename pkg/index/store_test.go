package index

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestLoad_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for corrupt cache, got nil")
	}
	if !errors.Is(err, ErrCorruptStore) {
		t.Errorf("Expected ErrCorruptStore, got %v", err)
	}
}

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	store, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	store.Merge("shoe.jpg", "https://cdn.example.com/shoe.jpg")
	store.Merge("summer.png_collection", "https://cdn.example.com/summer.png")

	if err := store.Persist(); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded Len() = %d, want 2", reloaded.Len())
	}
	if url, ok := reloaded.Resolve("shoe.jpg"); !ok || url != "https://cdn.example.com/shoe.jpg" {
		t.Errorf("Resolve(shoe.jpg) = %q, %v", url, ok)
	}
}

func TestMerge_LastWriteWins(t *testing.T) {
	store := newTestStore(t)

	store.Merge("shoe.jpg", "https://cdn.example.com/v1/shoe.jpg")
	store.Merge("shoe.jpg", "https://cdn.example.com/v2/shoe.jpg")

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	url, ok := store.Resolve("shoe.jpg")
	if !ok || url != "https://cdn.example.com/v2/shoe.jpg" {
		t.Errorf("Resolve() = %q, %v; want v2 URL", url, ok)
	}
}

// A content image and a product image sharing a filename must coexist under
// distinct keys; neither overwrites the other.
func TestSuffixDisambiguation(t *testing.T) {
	store := newTestStore(t)

	contentKey, err := Key("https://cdn.example.com/files/shoe.jpg?v=1", CategoryContent)
	if err != nil {
		t.Fatal(err)
	}
	productKey, err := Key("https://cdn.example.com/products/shoe.jpg?v=2", CategoryProduct)
	if err != nil {
		t.Fatal(err)
	}

	store.Merge(contentKey, "https://cdn.example.com/files/shoe.jpg")
	store.Merge(productKey, "https://cdn.example.com/products/shoe.jpg")

	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 distinct keys", store.Len())
	}
	if url, _ := store.Resolve("shoe.jpg"); url != "https://cdn.example.com/files/shoe.jpg" {
		t.Errorf("Resolve(shoe.jpg) = %q, want content URL", url)
	}
	if url, _ := store.Resolve("shoe.jpg_product"); url != "https://cdn.example.com/products/shoe.jpg" {
		t.Errorf("Resolve(shoe.jpg_product) = %q, want product URL", url)
	}
}

func TestResolve_SuffixStripFallback(t *testing.T) {
	store := newTestStore(t)
	store.Merge("shoe.jpg", "https://cdn.example.com/shoe.jpg")

	// No exact "shoe.jpg_product" key exists; the stripped name must match.
	url, ok := store.Resolve("shoe.jpg_product")
	if !ok {
		t.Fatal("Expected suffix-strip fallback to resolve")
	}
	if url != "https://cdn.example.com/shoe.jpg" {
		t.Errorf("Resolve() = %q, want content URL", url)
	}
}

func TestResolve_ExactBeatsFallback(t *testing.T) {
	store := newTestStore(t)
	store.Merge("shoe.jpg", "https://cdn.example.com/content.jpg")
	store.Merge("shoe.jpg_product", "https://cdn.example.com/product.jpg")

	url, ok := store.Resolve("shoe.jpg_product")
	if !ok || url != "https://cdn.example.com/product.jpg" {
		t.Errorf("Resolve() = %q, %v; exact key must win over fallback", url, ok)
	}
}

func TestResolve_Miss(t *testing.T) {
	store := newTestStore(t)
	store.Merge("other.jpg", "https://cdn.example.com/other.jpg")

	if _, ok := store.Resolve("missing.jpg"); ok {
		t.Error("Expected miss for unknown file name")
	}
	// Lookups are case-sensitive.
	if _, ok := store.Resolve("OTHER.JPG"); ok {
		t.Error("Expected miss for case-mismatched file name")
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	store.Merge("shoe.jpg", "https://cdn.example.com/shoe.jpg")

	entries := store.Entries()
	entries["shoe.jpg"] = "mutated"

	if url, _ := store.Resolve("shoe.jpg"); url != "https://cdn.example.com/shoe.jpg" {
		t.Error("Mutating the Entries() copy must not affect the store")
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Load(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}
