package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
)

// MockVision is a configurable mock chat-completions server for generation
// tests. It extracts the image URL from each multimodal request and answers
// with deterministic alt text, optionally rate-limiting or failing specific
// URLs first.
type MockVision struct {
	server *httptest.Server
	mu     sync.Mutex

	// rateLimitRemaining maps an image URL to the number of 429 responses
	// still owed before the call succeeds.
	rateLimitRemaining map[string]int

	// failAlways maps an image URL to a terminal 500 response.
	failAlways map[string]bool

	RequestCount int
	ImageURLs    []string
	LastAuth     string
}

// NewMockVision creates the mock generation server.
func NewMockVision() *MockVision {
	m := &MockVision{
		rateLimitRemaining: make(map[string]int),
		failAlways:         make(map[string]bool),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// BaseURL returns the value to set as the generation client's base URL.
func (m *MockVision) BaseURL() string {
	return m.server.URL + "/v1"
}

// Close shuts down the mock server.
func (m *MockVision) Close() {
	m.server.Close()
}

// RateLimitOnce makes the first request for imageURL answer 429; subsequent
// requests succeed.
func (m *MockVision) RateLimitOnce(imageURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimitRemaining[imageURL] = 1
}

// FailAlways makes every request for imageURL answer 500.
func (m *MockVision) FailAlways(imageURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAlways[imageURL] = true
}

// GetRequestCount returns the total number of generation requests received.
func (m *MockVision) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// AltTextFor is the deterministic completion the mock produces for a URL.
func AltTextFor(imageURL string) string {
	return "A studio photo of " + path.Base(strings.SplitN(imageURL, "?", 2)[0])
}

func (m *MockVision) handle(w http.ResponseWriter, r *http.Request) {
	imageURL := extractImageURL(r)

	m.mu.Lock()
	m.RequestCount++
	m.LastAuth = r.Header.Get("Authorization")
	m.ImageURLs = append(m.ImageURLs, imageURL)

	if m.rateLimitRemaining[imageURL] > 0 {
		m.rateLimitRemaining[imageURL]--
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached for requests","type":"tokens"}}`)
		return
	}
	if m.failAlways[imageURL] {
		m.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"The server had an error","type":"server_error"}}`)
		return
	}
	m.mu.Unlock()

	resp := map[string]any{
		"id":     "chatcmpl-mock",
		"object": "chat.completion",
		"model":  "mock-vision",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": "  " + AltTextFor(imageURL) + "\n",
				},
				"finish_reason": "stop",
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// extractImageURL pulls the image_url part out of a multimodal chat request.
func extractImageURL(r *http.Request) string {
	var req struct {
		Messages []struct {
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	for _, msg := range req.Messages {
		var parts []struct {
			Type     string `json:"type"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		}
		if err := json.Unmarshal(msg.Content, &parts); err != nil {
			continue
		}
		for _, part := range parts {
			if part.Type == "image_url" && part.ImageURL != nil {
				return part.ImageURL.URL
			}
		}
	}
	return ""
}
