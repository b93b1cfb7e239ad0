package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newshub/internal/config"
	"github.com/deusflow/newshub/internal/news"
)

func source(endpoint string) config.SourceConfig {
	return config.SourceConfig{
		Name:            "Wire",
		Endpoint:        endpoint,
		Format:          config.FormatJSON,
		AuthScheme:      config.AuthNone,
		HeadlinesPath:   config.DefaultHeadlinesPath,
		DefaultCategory: news.International,
	}
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchMapsFields(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"articles": [
		{"title": "A", "description": "first", "url": "https://a", "image": "https://a/img.png",
		 "source": {"name": "Reuters"}, "publishedAt": "2024-05-01T10:00:00Z"},
		{"description": ""}
	]}`)

	src := source(srv.URL)
	src.FieldPaths = map[string]string{config.FieldSource: "source.name"}

	got, err := (&Fetcher{}).Fetch(context.Background(), src)
	require.NoError(t, err)

	want := []news.Item{
		{
			Title:       "A",
			Description: "first",
			URL:         "https://a",
			Image:       "https://a/img.png",
			Source:      "Reuters",
			PublishedAt: "2024-05-01T10:00:00Z",
			Category:    news.International,
		},
		{
			Title:       "N/A",
			Description: news.NoSummary,
			Source:      "Wire",
			Category:    news.International,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchSourceObjectFallsBackToFeedName(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"articles": [{"title": "A", "source": {"id": null, "name": "Reuters"}}]}`)

	got, err := (&Fetcher{}).Fetch(context.Background(), source(srv.URL))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Wire", got[0].Source, "a nested source object is not a name")
}

func TestFetchCapsItems(t *testing.T) {
	body := `{"data": {"items": [`
	for i := 0; i < 30; i++ {
		if i > 0 {
			body += ","
		}
		body += `{"title": "t"}`
	}
	body += `]}}`
	srv := serve(t, http.StatusOK, body)

	src := source(srv.URL)
	src.HeadlinesPath = "data.items"

	got, err := (&Fetcher{}).Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, got, 20)

	got, err = (&Fetcher{MaxItems: 5}).Fetch(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestFetchAuth(t *testing.T) {
	var gotAuth, gotKey, gotCountry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.URL.Query().Get("apiKey")
		gotCountry = r.URL.Query().Get("country")
		_, _ = w.Write([]byte(`{"articles": []}`))
	}))
	defer srv.Close()

	t.Run("bearer", func(t *testing.T) {
		src := source(srv.URL)
		src.AuthScheme = config.AuthBearer
		src.AuthCredential = "tok"
		_, err := (&Fetcher{}).Fetch(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, "Bearer tok", gotAuth)
		assert.Empty(t, gotKey)
	})

	t.Run("api key merged into params", func(t *testing.T) {
		src := source(srv.URL)
		src.AuthScheme = config.AuthAPIKey
		src.AuthCredential = "secret"
		src.QueryParams = map[string]string{"country": "us"}
		_, err := (&Fetcher{}).Fetch(context.Background(), src)
		require.NoError(t, err)
		assert.Empty(t, gotAuth)
		assert.Equal(t, "secret", gotKey)
		assert.Equal(t, "us", gotCountry)
	})

	t.Run("explicit apiKey param wins", func(t *testing.T) {
		src := source(srv.URL)
		src.AuthScheme = config.AuthAPIKey
		src.AuthCredential = "secret"
		src.QueryParams = map[string]string{"apiKey": "mine"}
		_, err := (&Fetcher{}).Fetch(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, "mine", gotKey)
	})
}

func TestFetchFailuresWrapErrFetch(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		path   string
	}{
		{"server error", http.StatusInternalServerError, `{"articles": []}`, "articles"},
		{"not found", http.StatusNotFound, `nope`, "articles"},
		{"malformed body", http.StatusOK, `{"articles": [`, "articles"},
		{"missing path", http.StatusOK, `{"results": []}`, "articles"},
		{"path is not a list", http.StatusOK, `{"articles": {"a": 1}}`, "articles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)
			src := source(srv.URL)
			src.HeadlinesPath = tt.path

			got, err := (&Fetcher{}).Fetch(context.Background(), src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFetch))
			assert.Empty(t, got)
		})
	}
}

func TestFetchStatusError(t *testing.T) {
	srv := serve(t, http.StatusTooManyRequests, "")

	_, err := (&Fetcher{}).Fetch(context.Background(), source(srv.URL))
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := (&Fetcher{Timeout: 50 * time.Millisecond}).Fetch(context.Background(), source(srv.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetchInvalidEndpoint(t *testing.T) {
	_, err := (&Fetcher{}).Fetch(context.Background(), source(""))
	assert.ErrorIs(t, err, ErrFetch)
}

func TestFetchRSS(t *testing.T) {
	srv := serve(t, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Tech Daily</title>
  <link>https://tech.example.com</link>
  <description>feed</description>
  <item>
    <title>New chip announced</title>
    <link>https://tech.example.com/chip</link>
    <description>A faster chip.</description>
    <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
    <enclosure url="https://tech.example.com/chip.jpg" type="image/jpeg" length="1"/>
  </item>
  <item>
    <title>Second</title>
    <link>https://tech.example.com/second</link>
  </item>
</channel>
</rss>`)

	src := source(srv.URL)
	src.Format = config.FormatRSS
	src.DefaultCategory = news.Tech

	got, err := (&Fetcher{}).Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "New chip announced", got[0].Title)
	assert.Equal(t, "A faster chip.", got[0].Description)
	assert.Equal(t, "https://tech.example.com/chip", got[0].URL)
	assert.Equal(t, "https://tech.example.com/chip.jpg", got[0].Image)
	assert.Equal(t, "Tech Daily", got[0].Source)
	assert.Equal(t, "Wed, 01 May 2024 10:00:00 GMT", got[0].PublishedAt)
	assert.Equal(t, news.Tech, got[0].Category)

	assert.Equal(t, news.NoSummary, got[1].Description)
	assert.Empty(t, got[1].Image)
}

func TestFetchRSSMalformed(t *testing.T) {
	srv := serve(t, http.StatusOK, `this is not a feed`)
	src := source(srv.URL)
	src.Format = config.FormatRSS

	_, err := (&Fetcher{}).Fetch(context.Background(), src)
	assert.ErrorIs(t, err, ErrFetch)
}
