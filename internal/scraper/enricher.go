// Package scraper fills in thin headlines from their article pages: a longer
// description, the outlet name, a lead image and the readable body text.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/deusflow/newshub/internal/cache"
	"github.com/deusflow/newshub/internal/config"
	"github.com/deusflow/newshub/internal/logger"
	"github.com/deusflow/newshub/internal/news"
)

// ErrEnrich wraps every page fetch or parse failure.
var ErrEnrich = errors.New("enrichment failed")

const (
	defaultMinRunes = 50
	defaultTimeout  = 10 * time.Second
	defaultMaxBytes = 5 << 20
)

// IsIncomplete reports whether text is too thin to publish as is: empty, the
// placeholder, ending in an ellipsis or a digit, or shorter than minRunes.
func IsIncomplete(text string, minRunes int) bool {
	text = strings.TrimSpace(text)
	if text == "" || text == news.NoSummary {
		return true
	}
	if strings.HasSuffix(text, "...") || strings.HasSuffix(text, "…") {
		return true
	}
	if utf8.RuneCountInString(text) < minRunes {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	return unicode.IsDigit(last)
}

// Enricher fetches article pages one at a time. Sleep runs after every
// outbound page request, successful or not. An attempt answered from the
// page cache sends nothing and does not sleep. Log defaults to the package
// logger.
type Enricher struct {
	Client    *http.Client
	Timeout   time.Duration
	Delay     time.Duration
	MinRunes  int
	MaxBytes  int64
	UserAgent string
	Sleep     func(time.Duration)
	Log       *slog.Logger

	pages    *cache.Cache
	requests int
}

// Stats counts what EnrichAll did.
type Stats struct {
	Attempted int // items judged incomplete with a URL
	Requests  int // page fetches issued
	Enriched  int // items that changed
	Failed    int
}

type pageResult struct {
	page *Page
	err  error
}

func NewEnricher(cfg *config.Config, pages *cache.Cache) *Enricher {
	return &Enricher{
		Client:    &http.Client{},
		Timeout:   cfg.EnrichTimeout,
		Delay:     cfg.EnrichDelay,
		MinRunes:  cfg.MinDescriptionRunes,
		MaxBytes:  cfg.MaxPageBytes,
		UserAgent: cfg.UserAgent,
		Sleep:     time.Sleep,
		pages:     pages,
	}
}

// IsIncomplete applies the package predicate with the enricher's minimum.
func (e *Enricher) IsIncomplete(text string) bool {
	minRunes := e.MinRunes
	if minRunes <= 0 {
		minRunes = defaultMinRunes
	}
	return IsIncomplete(text, minRunes)
}

// Enrich returns item with page data applied when its description is
// incomplete and it has a URL. attempted reports whether the page was
// consulted. On error the item comes back unchanged.
func (e *Enricher) Enrich(ctx context.Context, item news.Item) (enriched news.Item, attempted bool, err error) {
	if !e.IsIncomplete(item.Description) || item.URL == "" {
		return item, false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			enriched, err = item, fmt.Errorf("%w: %s: %v", ErrEnrich, item.URL, r)
		}
	}()

	page, err := e.page(ctx, item.URL)
	if err != nil {
		return item, true, err
	}
	return apply(item, page), true, nil
}

// EnrichAll enriches items in order and returns the new slice. Failures are
// logged and leave the item as it was.
func (e *Enricher) EnrichAll(ctx context.Context, items []news.Item) ([]news.Item, Stats) {
	var stats Stats
	log := e.logger()
	before := e.requests
	out := make([]news.Item, 0, len(items))

	for i, item := range items {
		if ctx.Err() != nil {
			out = append(out, items[i:]...)
			break
		}

		enriched, attempted, err := e.Enrich(ctx, item)
		if attempted {
			stats.Attempted++
		}
		switch {
		case err != nil:
			stats.Failed++
			log.Warn("Enrichment failed", "url", item.URL, "error", err)
		case enriched != item:
			stats.Enriched++
			log.Debug("Enriched item", "index", i+1, "title", item.Title)
		}
		out = append(out, enriched)
	}

	stats.Requests = e.requests - before
	return out, stats
}

func (e *Enricher) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return logger.Logger
}

func (e *Enricher) page(ctx context.Context, rawURL string) (*Page, error) {
	key := cache.GenerateKey(rawURL)
	if e.pages != nil {
		if v, ok := e.pages.Get(key); ok {
			res := v.(pageResult)
			return res.page, res.err
		}
	}

	page, err := e.fetch(ctx, rawURL)
	e.requests++
	if e.Sleep != nil && e.Delay > 0 {
		e.Sleep(e.Delay)
	}

	if e.pages != nil {
		e.pages.Set(key, pageResult{page: page, err: err})
	}
	return page, err
}

func (e *Enricher) fetch(ctx context.Context, rawURL string) (*Page, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || !pageURL.IsAbs() {
		return nil, fmt.Errorf("%w: invalid url %q", ErrEnrich, rawURL)
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEnrich, rawURL, err)
	}
	if e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}

	client := e.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEnrich, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrEnrich, rawURL, resp.StatusCode)
	}

	maxBytes := e.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL
	}
	page, err := ParsePage(io.LimitReader(resp.Body, maxBytes), resp.Header.Get("Content-Type"), pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEnrich, rawURL, err)
	}
	return page, nil
}

// apply merges page data into item. The description is replaced only by a
// strictly longer one; a found outlet name always replaces the source.
func apply(item news.Item, page *Page) news.Item {
	if page.Description != "" && runeLen(page.Description) > runeLen(item.Description) {
		item.Description = page.Description
	}
	if page.Source != "" {
		item.Source = page.Source
	}
	if item.Image == "" && page.Image != "" {
		item.Image = page.Image
	}
	switch {
	case page.Text != "":
		item.DetailedContent = page.Text
	case page.Description != "":
		item.DetailedContent = page.Description
	}
	return item
}

// runeLen counts the placeholder as empty.
func runeLen(s string) int {
	if s == news.NoSummary {
		return 0
	}
	return utf8.RuneCountInString(s)
}
