package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/deusflow/newshub/internal/logger"
	"github.com/deusflow/newshub/internal/news"
	"github.com/deusflow/newshub/internal/ratelimit"
)

// Digester replaces long detailed content with a generated digest while
// the request budget lasts. Log defaults to the package logger.
type Digester struct {
	Log *slog.Logger

	gen     Generator
	limiter *ratelimit.AIRateLimiter
}

func NewDigester(gen Generator, limiter *ratelimit.AIRateLimiter) *Digester {
	if limiter == nil {
		limiter = ratelimit.NewAIRateLimiter(0)
	}
	return &Digester{gen: gen, limiter: limiter}
}

// Summarize returns a digest of content.
func (d *Digester) Summarize(ctx context.Context, title, content string) (string, error) {
	if err := d.limiter.UseGemini(); err != nil {
		return "", err
	}

	resp, err := d.gen.Generate(ctx, buildPrompt(title, sanitizeContent(content)))
	if err != nil {
		return "", err
	}

	summary := parseSummary(resp)
	if summary == "" {
		return "", fmt.Errorf("empty summary")
	}
	return summary, nil
}

// DigestAll digests items whose detailed content is longer than their
// description. Failures keep the previous value. It returns the new slice
// and the number of digests written.
func (d *Digester) DigestAll(ctx context.Context, items []news.Item) ([]news.Item, int) {
	out := make([]news.Item, len(items))
	copy(out, items)

	log := d.Log
	if log == nil {
		log = logger.Logger
	}

	done := 0
	for i, item := range out {
		if !needsDigest(item) {
			continue
		}
		if !d.limiter.CanUseGemini() {
			break
		}

		summary, err := d.Summarize(ctx, item.Title, item.DetailedContent)
		if err != nil {
			log.Warn("Gemini digest failed", "title", item.Title, "error", err)
			continue
		}
		out[i].DetailedContent = summary
		done++
	}
	return out, done
}

func needsDigest(item news.Item) bool {
	if item.DetailedContent == "" {
		return false
	}
	desc := item.Description
	if desc == news.NoSummary {
		desc = ""
	}
	return utf8.RuneCountInString(item.DetailedContent) > utf8.RuneCountInString(desc)
}
