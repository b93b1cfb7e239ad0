package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/deusflow/newshub/internal/cache"
	"github.com/deusflow/newshub/internal/news"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>油价下调</title>
<meta name="description" content="国家发展改革委今日宣布，国内汽油和柴油价格每吨分别降低一百元，自今日二十四时起执行，这是今年以来第五次下调。">
<meta property="og:image" content="/img/lead.jpg">
</head>
<body>
<article>
<h1>油价下调</h1>
<p>来源：新华社</p>
<p>国家发展改革委今日宣布，国内汽油和柴油价格每吨分别降低一百元，自今日二十四时起执行。这是今年以来第五次下调，市场人士预计下一轮调价窗口仍有下行空间。</p>
<p>业内分析认为，国际原油价格近期持续走弱，叠加需求淡季影响，成品油价格短期内难以大幅反弹。</p>
</article>
</body>
</html>`

func TestIsIncomplete(t *testing.T) {
	long := strings.Repeat("新闻", 30)
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", true},
		{"placeholder", news.NoSummary, true},
		{"ascii ellipsis", long + "...", true},
		{"unicode ellipsis", long + "…", true},
		{"short without punctuation", "Short headline without period", true},
		{"trailing digit", long + "2", true},
		{"long and complete", long + "。", false},
		{"long english", strings.Repeat("word ", 12) + "end.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIncomplete(tt.text, 50))
		})
	}
}

func TestParsePage(t *testing.T) {
	pageURL, _ := url.Parse("https://news.example.com/a/1.html")

	page, err := ParsePage(strings.NewReader(articleHTML), "text/html; charset=utf-8", pageURL)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page.Description, "国家发展改革委今日宣布"))
	assert.Equal(t, "https://news.example.com/img/lead.jpg", page.Image)
	assert.Equal(t, "新华社", page.Source)
	assert.Contains(t, page.Text, "国际原油价格")
}

func TestParsePageSourceFromMarkup(t *testing.T) {
	doc := `<html><head><meta property="og:description" content="desc"></head>
<body><div class="info"><span class="Article-Source">人民网</span></div></body></html>`

	page, err := ParsePage(strings.NewReader(doc), "text/html", nil)
	require.NoError(t, err)
	assert.Equal(t, "desc", page.Description)
	assert.Equal(t, "人民网", page.Source)
	assert.Empty(t, page.Image)
}

func TestParsePageDecodesDeclaredCharset(t *testing.T) {
	doc := `<html><head><meta name="description" content="中文描述内容"></head><body></body></html>`
	gbk, err := simplifiedchinese.GBK.NewEncoder().String(doc)
	require.NoError(t, err)

	page, err := ParsePage(strings.NewReader(gbk), "text/html; charset=gbk", nil)
	require.NoError(t, err)
	assert.Equal(t, "中文描述内容", page.Description)
}

type harness struct {
	enricher *Enricher
	hits     *atomic.Int32
	sleeps   []time.Duration
	srv      *httptest.Server
}

func newHarness(t *testing.T, handler http.HandlerFunc) *harness {
	t.Helper()
	h := &harness{hits: &atomic.Int32{}}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(h.srv.Close)

	h.enricher = &Enricher{
		Delay:    500 * time.Millisecond,
		MinRunes: 50,
		Sleep:    func(d time.Duration) { h.sleeps = append(h.sleeps, d) },
		pages:    cache.New(0),
	}
	return h
}

func servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(articleHTML))
}

func TestEnrichFillsThinItem(t *testing.T) {
	h := newHarness(t, servePage)

	item := news.Item{
		Title:       "油价下调",
		Description: "油价今日下调",
		URL:         h.srv.URL + "/a/1.html",
		Source:      "Feed",
		Category:    news.Domestic,
	}

	got, attempted, err := h.enricher.Enrich(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, attempted)
	assert.True(t, strings.HasPrefix(got.Description, "国家发展改革委今日宣布"))
	assert.Equal(t, "新华社", got.Source)
	assert.Equal(t, h.srv.URL+"/img/lead.jpg", got.Image)
	assert.NotEmpty(t, got.DetailedContent)
	assert.Equal(t, item.Title, got.Title)
	assert.Equal(t, item.Category, got.Category)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, h.sleeps)
}

func TestEnrichKeepsLongerDescriptionAndImage(t *testing.T) {
	h := newHarness(t, servePage)

	desc := strings.Repeat("很长的现有摘要", 30) + "..."
	item := news.Item{
		Title:       "油价下调",
		Description: desc,
		URL:         h.srv.URL,
		Image:       "https://cdn.example.com/own.jpg",
		Source:      "Feed",
	}

	got, attempted, err := h.enricher.Enrich(context.Background(), item)
	require.NoError(t, err)
	assert.True(t, attempted)
	assert.Equal(t, desc, got.Description, "only a strictly longer description replaces")
	assert.Equal(t, "https://cdn.example.com/own.jpg", got.Image)
	assert.Equal(t, "新华社", got.Source, "a found outlet always replaces the source")
}

func TestEnrichSkipsCompleteOrURLLessItems(t *testing.T) {
	h := newHarness(t, servePage)

	complete := news.Item{Title: "a", Description: strings.Repeat("完整的摘要内容", 10) + "。", URL: h.srv.URL}
	noURL := news.Item{Title: "b", Description: "short"}

	for _, item := range []news.Item{complete, noURL} {
		got, attempted, err := h.enricher.Enrich(context.Background(), item)
		require.NoError(t, err)
		assert.False(t, attempted)
		assert.Equal(t, item, got)
	}
	assert.Equal(t, int32(0), h.hits.Load())
	assert.Empty(t, h.sleeps)
}

func TestEnrichFailureLeavesItemUnchanged(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	item := news.Item{Title: "t", Description: news.NoSummary, URL: h.srv.URL, Source: "Feed"}
	got, attempted, err := h.enricher.Enrich(context.Background(), item)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEnrich))
	assert.True(t, attempted)
	assert.Equal(t, item, got)
	assert.Len(t, h.sleeps, 1, "the delay follows failed attempts too")
}

func TestEnrichAllCachesPagesPerURL(t *testing.T) {
	h := newHarness(t, servePage)

	items := []news.Item{
		{Title: "a", Description: "thin", URL: h.srv.URL + "/same"},
		{Title: "b", Description: "thin", URL: h.srv.URL + "/same"},
		{Title: "c", Description: "thin"},
	}

	got, stats := h.enricher.EnrichAll(context.Background(), items)
	require.Len(t, got, 3)
	assert.Equal(t, int32(1), h.hits.Load())
	assert.Len(t, h.sleeps, 1)
	assert.Equal(t, Stats{Attempted: 2, Requests: 1, Enriched: 2}, stats)
	assert.Equal(t, "新华社", got[0].Source)
	assert.Equal(t, "新华社", got[1].Source)
	assert.Equal(t, items[2], got[2])
}

func TestEnrichAllRecordsFailures(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	items := []news.Item{{Title: "a", Description: "thin", URL: h.srv.URL}}
	got, stats := h.enricher.EnrichAll(context.Background(), items)
	assert.Equal(t, items, got)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Attempted)
}
