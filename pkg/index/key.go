package index

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Category identifies the origin collection an asset URL was swept from.
type Category string

const (
	// CategoryContent covers standalone content files.
	CategoryContent Category = "files"

	// CategoryCollection covers collection images.
	CategoryCollection Category = "collections"

	// CategoryProduct covers product images.
	CategoryProduct Category = "products"
)

// suffix returns the key suffix disambiguating this category's filenames
// from content filenames. Content keys carry no suffix.
func (c Category) suffix() string {
	switch c {
	case CategoryCollection:
		return "_collection"
	case CategoryProduct:
		return "_product"
	default:
		return ""
	}
}

// Key derives the cache key for an asset URL: the final path segment with
// any query string stripped, suffixed by origin category for collection and
// product assets so same-named files do not collide across categories.
//
// Example:
//
//	Key("https://cdn.example.com/s/files/1/shoe.jpg?v=17", CategoryProduct)
//	  -> "shoe.jpg_product"
func Key(rawURL string, category Category) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse asset url: %w", err)
	}

	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("asset url %q has no file name", rawURL)
	}

	return name + category.suffix(), nil
}

// StripCategorySuffix removes one trailing category suffix from a file name.
// It is the single fallback used during row resolution: a row exported with
// a suffixed name can still match the unsuffixed content key. At most one
// suffix is stripped, and only at the end of the name.
func StripCategorySuffix(fileName string) string {
	for _, suffix := range []string{"_product", "_collection"} {
		if strings.HasSuffix(fileName, suffix) {
			return strings.TrimSuffix(fileName, suffix)
		}
	}
	return fileName
}
