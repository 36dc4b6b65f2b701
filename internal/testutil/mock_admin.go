// Package testutil provides mock remote API servers for tests: a paginated
// Admin GraphQL endpoint and a chat-completions generation endpoint.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// PageFixture is one scripted page of a paginated collection. Nodes are raw
// JSON edge-node objects.
type PageFixture struct {
	Nodes []string
}

// MockAdmin is a configurable mock Admin GraphQL server. Queries are routed
// to fixtures by root field (files, collections, products); each request for
// a root serves its next scripted page with hasNextPage set while pages
// remain.
type MockAdmin struct {
	server *httptest.Server
	mu     sync.Mutex

	pages  map[string][]PageFixture
	served map[string]int

	// ThrottleNext makes the server answer the next N requests with a
	// GraphQL THROTTLED error before serving pages again.
	throttleNext int

	RequestCount   int
	RequestsByRoot map[string]int
	LastToken      string
	LastCursors    map[string][]string
}

// NewMockAdmin creates a mock Admin server with no fixtures; unconfigured
// roots serve a single empty page.
func NewMockAdmin() *MockAdmin {
	m := &MockAdmin{
		pages:          make(map[string][]PageFixture),
		served:         make(map[string]int),
		RequestsByRoot: make(map[string]int),
		LastCursors:    make(map[string][]string),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the mock server URL, usable as the client's endpoint override.
func (m *MockAdmin) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAdmin) Close() {
	m.server.Close()
}

// SetPages scripts the pages served for a root field.
func (m *MockAdmin) SetPages(root string, pages []PageFixture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[root] = pages
	m.served[root] = 0
}

// ThrottleNext makes the next n requests fail with THROTTLED.
func (m *MockAdmin) ThrottleNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttleNext = n
}

// GetRequestCount returns the total number of requests served.
func (m *MockAdmin) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

func (m *MockAdmin) handle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	root := rootForQuery(req.Query)

	m.mu.Lock()
	m.RequestCount++
	m.LastToken = r.Header.Get("X-Shopify-Access-Token")
	if cursor, ok := req.Variables["cursor"].(string); ok {
		m.LastCursors[root] = append(m.LastCursors[root], cursor)
	}

	if m.throttleNext > 0 {
		m.throttleNext--
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"errors":[{"message":"Throttled","extensions":{"code":"THROTTLED"}}]}`)
		return
	}

	m.RequestsByRoot[root]++
	pages := m.pages[root]
	idx := m.served[root]
	if idx < len(pages) {
		m.served[root]++
	}
	m.mu.Unlock()

	var fixture PageFixture
	hasNext := false
	if idx < len(pages) {
		fixture = pages[idx]
		hasNext = idx < len(pages)-1
	}

	edges := make([]string, 0, len(fixture.Nodes))
	for j, node := range fixture.Nodes {
		cursor := fmt.Sprintf("%s-p%d-e%d", root, idx, j)
		edges = append(edges, fmt.Sprintf(`{"cursor":%q,"node":%s}`, cursor, node))
	}

	payload := fmt.Sprintf(
		`{"data":{%q:{"pageInfo":{"hasNextPage":%t},"edges":[%s]}}}`,
		root, hasNext, strings.Join(edges, ","),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, payload)
}

func rootForQuery(query string) string {
	switch {
	case strings.Contains(query, "collections("):
		return "collections"
	case strings.Contains(query, "products("):
		return "products"
	default:
		return "files"
	}
}

// FileImageNode builds a files() media-image node.
func FileImageNode(url string) string {
	return fmt.Sprintf(`{"image":{"url":%q}}`, url)
}

// GenericFileNode builds a files() generic-file node.
func GenericFileNode(url string) string {
	return fmt.Sprintf(`{"url":%q}`, url)
}

// EmptyFileNode builds a files() node with no usable URL.
func EmptyFileNode() string {
	return `{}`
}

// CollectionNode builds a collections() node with an image.
func CollectionNode(url string) string {
	return fmt.Sprintf(`{"image":{"url":%q}}`, url)
}

// CollectionWithoutImageNode builds a collections() node lacking an image.
func CollectionWithoutImageNode() string {
	return `{"image":null}`
}

// ProductNode builds a products() node with nested image URLs.
func ProductNode(urls ...string) string {
	edges := make([]string, 0, len(urls))
	for i, u := range urls {
		edges = append(edges, fmt.Sprintf(`{"cursor":"img-%d","node":{"url":%q}}`, i, u))
	}
	return fmt.Sprintf(
		`{"images":{"pageInfo":{"hasNextPage":false},"edges":[%s]}}`,
		strings.Join(edges, ","),
	)
}
