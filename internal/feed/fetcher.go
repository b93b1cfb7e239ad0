// Package feed downloads one configured feed and maps its raw records onto
// news.Item through the feed's field paths.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/deusflow/newshub/internal/config"
	"github.com/deusflow/newshub/internal/fieldpath"
	"github.com/deusflow/newshub/internal/news"
)

// ErrFetch wraps every failure that makes a feed contribute nothing:
// network errors, non-2xx responses, unparsable bodies and a missing
// headlines path.
var ErrFetch = errors.New("feed fetch failed")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

const (
	defaultMaxItems = 20
	defaultTimeout  = 10 * time.Second
	maxBodyBytes    = 10 << 20

	// apiKeyParam is the query parameter carrying an api_key credential.
	apiKeyParam = "apiKey"
)

// Fetcher performs one GET per feed. The zero value is usable.
type Fetcher struct {
	Client    *http.Client
	Timeout   time.Duration
	MaxItems  int
	UserAgent string
}

// NewFetcher builds a Fetcher from runtime settings.
func NewFetcher(cfg *config.Config) *Fetcher {
	return &Fetcher{
		Client:    &http.Client{},
		Timeout:   cfg.RequestTimeout,
		MaxItems:  cfg.MaxItemsPerFeed,
		UserAgent: cfg.UserAgent,
	}
}

// Fetch downloads src and returns at most MaxItems items, each carrying the
// feed's declared category. On error the returned slice is nil and the
// error wraps ErrFetch.
func (f *Fetcher) Fetch(ctx context.Context, src config.SourceConfig) ([]news.Item, error) {
	records, err := f.records(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, src.Name, err)
	}

	limit := f.MaxItems
	if limit <= 0 {
		limit = defaultMaxItems
	}
	if len(records) > limit {
		records = records[:limit]
	}

	items := make([]news.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, MapRecord(rec, src))
	}
	return items, nil
}

// MapRecord extracts the canonical fields of one raw record.
func MapRecord(rec any, src config.SourceConfig) news.Item {
	item := news.Item{
		Title:       fieldpath.String(rec, src.Path(config.FieldTitle), "N/A"),
		Description: fieldpath.String(rec, src.Path(config.FieldDescription), ""),
		URL:         fieldpath.String(rec, src.Path(config.FieldURL), ""),
		Image:       fieldpath.String(rec, src.Path(config.FieldImage), ""),
		Source:      fieldpath.String(rec, src.Path(config.FieldSource), ""),
		PublishedAt: fieldpath.String(rec, src.Path(config.FieldPublishedAt), ""),
		Category:    src.DefaultCategory,
	}
	if item.Description == "" {
		item.Description = news.NoSummary
	}
	if item.Source == "" {
		item.Source = src.FallbackSource()
	}
	return item
}

func (f *Fetcher) records(ctx context.Context, src config.SourceConfig) ([]any, error) {
	body, err := f.get(ctx, src)
	if err != nil {
		return nil, err
	}

	if src.Format == config.FormatRSS {
		return parseRSS(body)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	list, ok := fieldpath.List(data, src.HeadlinesPath)
	if !ok {
		return nil, fmt.Errorf("headlines path %q not found", src.HeadlinesPath)
	}
	return list, nil
}

func (f *Fetcher) get(ctx context.Context, src config.SourceConfig) ([]byte, error) {
	endpoint, err := url.Parse(src.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", src.Endpoint)
	}

	q := endpoint.Query()
	for k, v := range src.QueryParams {
		q.Set(k, v)
	}
	if src.AuthScheme == config.AuthAPIKey && !q.Has(apiKeyParam) {
		q.Set(apiKeyParam, src.AuthCredential)
	}
	endpoint.RawQuery = q.Encode()

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if src.AuthScheme == config.AuthBearer {
		req.Header.Set("Authorization", "Bearer "+src.AuthCredential)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
