package shopify

// GraphQL queries for the three paginated sweep categories. Each returns a
// connection of {cursor, node} edges plus a hasNextPage flag; the builder
// advances the cursor to the last edge's cursor until the flag clears.
const (
	filesQuery = `
query Files($pageSize: Int!, $cursor: String) {
  files(first: $pageSize, after: $cursor) {
    pageInfo { hasNextPage }
    edges {
      cursor
      node {
        ... on MediaImage { image { url } }
        ... on GenericFile { url }
      }
    }
  }
}`

	collectionsQuery = `
query Collections($pageSize: Int!, $cursor: String) {
  collections(first: $pageSize, after: $cursor) {
    pageInfo { hasNextPage }
    edges {
      cursor
      node {
        image { url }
      }
    }
  }
}`

	productsQuery = `
query Products($pageSize: Int!, $cursor: String) {
  products(first: $pageSize, after: $cursor) {
    pageInfo { hasNextPage }
    edges {
      cursor
      node {
        images(first: 50) {
          edges {
            node { url }
          }
        }
      }
    }
  }
}`
)

// pageInfo carries the source API's pagination flag.
type pageInfo struct {
	HasNextPage bool `json:"hasNextPage"`
}

// connection is one page of a paginated collection.
type connection[T any] struct {
	PageInfo pageInfo  `json:"pageInfo"`
	Edges    []edge[T] `json:"edges"`
}

type edge[T any] struct {
	Cursor string `json:"cursor"`
	Node   T      `json:"node"`
}

// lastCursor returns the final edge's cursor, or nil for an empty page.
func (c connection[T]) lastCursor() *string {
	if len(c.Edges) == 0 {
		return nil
	}
	cursor := c.Edges[len(c.Edges)-1].Cursor
	return &cursor
}

type imageRef struct {
	URL string `json:"url"`
}

// fileNode is a files() edge node: either a media image or a generic file.
type fileNode struct {
	URL   string    `json:"url"`
	Image *imageRef `json:"image"`
}

// assetURLs returns the node's canonical URL, if it has one.
func (n fileNode) assetURLs() []string {
	if n.Image != nil && n.Image.URL != "" {
		return []string{n.Image.URL}
	}
	if n.URL != "" {
		return []string{n.URL}
	}
	return nil
}

// collectionNode is a collections() edge node.
type collectionNode struct {
	Image *imageRef `json:"image"`
}

func (n collectionNode) assetURLs() []string {
	if n.Image != nil && n.Image.URL != "" {
		return []string{n.Image.URL}
	}
	return nil
}

// productNode is a products() edge node with its nested image connection.
// Nested images are taken in one page of 50; products beyond that surface
// later as resolution misses, never as index corruption.
type productNode struct {
	Images connection[imageRef] `json:"images"`
}

func (n productNode) assetURLs() []string {
	urls := make([]string, 0, len(n.Images.Edges))
	for _, e := range n.Images.Edges {
		if e.Node.URL != "" {
			urls = append(urls, e.Node.URL)
		}
	}
	return urls
}
