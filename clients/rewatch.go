package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// PageSize is the number of videos requested per page.
const PageSize = 100

// maxErrorBody caps how much of a failed response ends up in an error.
const maxErrorBody = 512

const videosQuery = `query ($endCursor: String) {
  channel {
    videos(first: 100, after: $endCursor, orderBy: {field: CREATED_AT, direction: DESC}) {
      edges {
        node {
          id
          title
          createdAt
          transcript {
            sections {
              startTime
              endTime
              cues {
                startTime
                endTime
                speakerName
                text
              }
            }
            summary {
              recap
              actionItems {
                content
                completed
              }
              chapterMarkers {
                title
                items {
                  content
                }
              }
              summaryItems {
                content
              }
            }
          }
        }
      }
      pageInfo {
        endCursor
        hasNextPage
      }
    }
  }
}`

// --- Query builder ---
type GraphQLRequest struct {
	Query     string        `json:"query"`
	Variables PageVariables `json:"variables"`
}

// PageVariables encodes a missing cursor as JSON null.
type PageVariables struct {
	EndCursor *string `json:"endCursor"`
}

// BuildVideosQuery returns the videos query positioned after cursor.
// An empty cursor asks for the first page.
func BuildVideosQuery(cursor string) GraphQLRequest {
	req := GraphQLRequest{Query: videosQuery}
	if cursor != "" {
		c := cursor
		req.Variables.EndCursor = &c
	}
	return req
}

// Endpoint is the GraphQL URL of a Rewatch channel.
func Endpoint(subdomain string) string {
	return fmt.Sprintf("https://%s.rewatch.com/api/graphql", subdomain)
}

// --- Transport ---
type Rewatch struct {
	http     *HTTP
	endpoint string
	apiKey   string
}

type RewatchOption func(*Rewatch)

// WithEndpoint replaces the URL derived from the subdomain.
func WithEndpoint(url string) RewatchOption {
	return func(r *Rewatch) {
		if url != "" {
			r.endpoint = url
		}
	}
}

func NewRewatch(h *HTTP, subdomain, apiKey string, opts ...RewatchOption) *Rewatch {
	if h == nil {
		h = NewHTTP(0)
	}
	r := &Rewatch{http: h, endpoint: Endpoint(subdomain), apiKey: apiKey}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Post sends one GraphQL request and returns the raw body of a 2xx response.
// No retries are made.
func (r *Rewatch) Post(ctx context.Context, gq GraphQLRequest) ([]byte, error) {
	payload, err := json.Marshal(gq)
	if err != nil {
		return nil, &TransportError{Op: "encode", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", `Token token="`+r.apiKey+`"`)

	resp, err := r.http.c.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{
			Op:         "post",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(b)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", Err: err}
	}
	return body, nil
}
