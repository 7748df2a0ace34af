package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVideosQuery(t *testing.T) {
	t.Run("first page sends null cursor", func(t *testing.T) {
		b, err := json.Marshal(BuildVideosQuery(""))
		require.NoError(t, err)
		assert.Contains(t, string(b), `"variables":{"endCursor":null}`)
	})

	t.Run("later page sends cursor", func(t *testing.T) {
		b, err := json.Marshal(BuildVideosQuery("abc=="))
		require.NoError(t, err)
		assert.Contains(t, string(b), `"variables":{"endCursor":"abc=="}`)
	})

	t.Run("query shape", func(t *testing.T) {
		q := BuildVideosQuery("").Query
		for _, want := range []string{
			"query ($endCursor: String)",
			"first: 100",
			"after: $endCursor",
			"orderBy: {field: CREATED_AT, direction: DESC}",
			"speakerName",
			"summaryItems",
			"hasNextPage",
		} {
			assert.Contains(t, q, want)
		}
	})
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://acme.rewatch.com/api/graphql", Endpoint("acme"))
}

func TestRewatchPost(t *testing.T) {
	var gotAuth, gotType, gotMethod string
	var gotBody GraphQLRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	rw := NewRewatch(WrapHTTP(srv.Client()), "acme", "s3cret", WithEndpoint(srv.URL))
	body, err := rw.Post(context.Background(), BuildVideosQuery("cur"))
	require.NoError(t, err)

	assert.Equal(t, `{"data":{}}`, string(body))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, `Token token="s3cret"`, gotAuth)
	assert.Equal(t, "application/json", gotType)
	require.NotNil(t, gotBody.Variables.EndCursor)
	assert.Equal(t, "cur", *gotBody.Variables.EndCursor)
}

func TestRewatchPostErrors(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		rw := NewRewatch(WrapHTTP(srv.Client()), "acme", "s3cret", WithEndpoint(srv.URL))
		_, err := rw.Post(context.Background(), BuildVideosQuery(""))
		require.Error(t, err)

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
		assert.Contains(t, err.Error(), "boom")
		assert.NotContains(t, err.Error(), "s3cret")
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		rw := NewRewatch(NewHTTP(0), "acme", "s3cret", WithEndpoint(url))
		_, err := rw.Post(context.Background(), BuildVideosQuery(""))

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Zero(t, te.StatusCode)
		assert.NotContains(t, err.Error(), "s3cret")
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rw := NewRewatch(WrapHTTP(srv.Client()), "acme", "k", WithEndpoint(srv.URL))
		_, err := rw.Post(ctx, BuildVideosQuery(""))

		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("long error body is truncated", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
		}))
		defer srv.Close()

		rw := NewRewatch(WrapHTTP(srv.Client()), "acme", "k", WithEndpoint(srv.URL))
		_, err := rw.Post(context.Background(), BuildVideosQuery(""))
		require.Error(t, err)
		assert.Less(t, len(err.Error()), 1024)
	})
}
