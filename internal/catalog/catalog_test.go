package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/movielist-back/internal/config"
	"github.com/Rogue-Bear-Innovations/movielist-back/internal/metrics"
)

func newTestClient(url string) *Client {
	return NewClient(&config.Config{
		CatalogURL:      url,
		CatalogAPIKey:   "k3y",
		CatalogLanguage: "pt-BR",
		CatalogTimeout:  time.Second,
	}, zap.NewNop().Sugar())
}

func TestSearchForwardsQueryAndReturnsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "k3y", r.URL.Query().Get("api_key"))
		assert.Equal(t, "cidade de deus & co", r.URL.Query().Get("query"))
		assert.Equal(t, "pt-BR", r.URL.Query().Get("language"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":598,"title":"Cidade de Deus","poster_path":"/k7e.jpg","vote_average":8.4}],"total_pages":1,"total_results":1}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Search(context.Background(), "cidade de deus & co")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, `{"id":598,"title":"Cidade de Deus","poster_path":"/k7e.jpg","vote_average":8.4}`, string(got[0]))
}

func TestSearchEmptyTermIsNotForwarded(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.False(t, called)
}

func TestSearchUpstreamFailures(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"unauthorized": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
		},
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html></html>`))
		},
		"slow": func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(1500 * time.Millisecond)
		},
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			_, err := newTestClient(srv.URL).Search(context.Background(), "alien")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestSearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Search(context.Background(), "alien")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "GET /x?api_key=***", redact("GET /x?api_key=k3y", "k3y"))
	assert.Equal(t, "boom", redact("boom", ""))
}

var durationCount = regexp.MustCompile(`(?m)^movielist_catalog_request_duration_seconds_count (\d+)$`)

func observedSearches(t *testing.T) int {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	m := durationCount.FindStringSubmatch(rec.Body.String())
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	return n
}

func TestSearchObservesDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	before := observedSearches(t)
	_, err := newTestClient(srv.URL).Search(context.Background(), "alien")
	require.NoError(t, err)
	assert.Equal(t, before+1, observedSearches(t))
}
