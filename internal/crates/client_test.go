package crates

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/cratuity/internal/config"
)

const serdePage = `{
  "crates": [
    {
      "id": "serde",
      "name": "serde",
      "updated_at": "2024-04-16T19:45:20.123456+00:00",
      "created_at": "2014-12-05T20:20:39.487502+00:00",
      "downloads": 300000000,
      "recent_downloads": 40000000,
      "max_version": "1.0.200",
      "newest_version": "1.0.200",
      "description": "A generic serialization/deserialization framework",
      "documentation": "https://docs.rs/serde",
      "repository": "https://github.com/serde-rs/serde",
      "links": {
        "version_downloads": "/api/v1/crates/serde/downloads",
        "versions": "/api/v1/crates/serde/versions",
        "owners": "/api/v1/crates/serde/owners",
        "owner_team": "/api/v1/crates/serde/owner_team",
        "owner_user": "/api/v1/crates/serde/owner_user",
        "reverse_dependencies": "/api/v1/crates/serde/reverse_dependencies"
      },
      "exact_match": true
    },
    {
      "id": "serde_json",
      "name": "serde_json",
      "updated_at": "2024-04-16T19:45:20.123456+00:00",
      "created_at": "2016-04-07T00:00:00+00:00",
      "downloads": 250000000,
      "recent_downloads": null,
      "max_version": "1.0.116",
      "newest_version": "1.0.116",
      "description": null,
      "links": {},
      "exact_match": false
    }
  ],
  "meta": {"total": 1234, "next_page": "?page=2", "prev_page": null}
}`

func testClient(url string) *Client {
	cfg := config.TestConfig()
	cfg.API.BaseURL = url
	return NewClient(cfg)
}

func TestClient_Search(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(serdePage))
	}))
	defer server.Close()

	res, err := testClient(server.URL).Search("serde", 2, 50, SortRecentDownloads)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/crates", got.URL.Path)
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "50", got.URL.Query().Get("per_page"))
	assert.Equal(t, "serde", got.URL.Query().Get("q"))
	assert.Equal(t, "recent-downloads", got.URL.Query().Get("sort"))
	assert.Equal(t, "cratuity-test/1.0", got.Header.Get("User-Agent"))

	assert.Equal(t, uint32(1234), res.Total)
	require.Len(t, res.Crates, 2)
	assert.Equal(t, "serde", res.Crates[0].Name)
	assert.Equal(t, "1.0.200", res.Crates[0].NewestVersion)
	assert.Equal(t, "https://docs.rs/serde", res.Crates[0].Documentation)
	assert.Equal(t, "/api/v1/crates/serde/versions", res.Crates[0].Links.Versions)
	assert.True(t, res.Crates[0].ExactMatch)
	assert.Equal(t, 2014, res.Crates[0].CreatedAt.Year())
	assert.Empty(t, res.Crates[1].Description)
	assert.Zero(t, res.Crates[1].RecentDownloads)
}

func TestClient_SearchErrors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"crates": [`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			res, err := testClient(server.URL).Search("serde", 1, 5, SortRelevance)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrTransport))

			var te *TransportError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, tt.wantStatus, te.StatusCode)
		})
	}
}

func TestClient_SearchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := testClient(url).Search("serde", 1, 5, SortRelevance)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_SearchRejectsZeroPage(t *testing.T) {
	c := testClient("http://127.0.0.1:1")
	assert.Panics(t, func() { _, _ = c.Search("serde", 0, 5, SortRelevance) })
	assert.Panics(t, func() { _, _ = c.Search("serde", 1, 0, SortRelevance) })
}

func TestClient_SearchRejectsOversizedPage(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	_, err := testClient(server.URL).Search("serde", 1, MaxPerPage+10, SortRelevance)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "per_page 110")
	assert.Zero(t, calls, "oversized requests never reach the server")
}
