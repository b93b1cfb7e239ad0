// Package app wires the pipeline stages together:
// fetch, classify and attribute, dedupe, balance, enrich, render.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/newshub/internal/attribution"
	"github.com/deusflow/newshub/internal/cache"
	"github.com/deusflow/newshub/internal/classify"
	"github.com/deusflow/newshub/internal/config"
	"github.com/deusflow/newshub/internal/feed"
	"github.com/deusflow/newshub/internal/gemini"
	"github.com/deusflow/newshub/internal/logger"
	"github.com/deusflow/newshub/internal/metrics"
	"github.com/deusflow/newshub/internal/news"
	"github.com/deusflow/newshub/internal/ratelimit"
	"github.com/deusflow/newshub/internal/report"
	"github.com/deusflow/newshub/internal/scraper"
)

// Fetcher downloads one feed.
type Fetcher interface {
	Fetch(ctx context.Context, src config.SourceConfig) ([]news.Item, error)
}

// Pipeline runs the stages over one configuration document. Enricher and
// Digester are optional.
type Pipeline struct {
	Fetcher    Fetcher
	Classifier *classify.Classifier
	Attributor *attribution.Attributor
	Enricher   *scraper.Enricher
	Digester   *gemini.Digester
	Metrics    *metrics.Metrics
	Log        *slog.Logger
}

// Run loads the configuration at configPath, runs the pipeline and writes
// the report to outputPath, or to the configured file name when outputPath
// is empty. It returns the path written.
func Run(ctx context.Context, configPath, outputPath string) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("invalid runtime settings: %w", err)
	}
	doc, err := config.LoadDocument(configPath)
	if err != nil {
		return "", err
	}

	log := logger.With("run_id", uuid.NewString())
	log.Info("Starting run", "config", configPath, "feeds", len(doc.Sources), "tech", doc.EnableTech)

	p := &Pipeline{
		Fetcher:    feed.NewFetcher(cfg),
		Classifier: classify.New(classify.DefaultTables(doc.EnableTech)),
		Attributor: attribution.New(attribution.DefaultRules()),
		Metrics:    metrics.New(),
		Log:        log,
	}
	if cfg.EnrichEnabled {
		p.Enricher = scraper.NewEnricher(cfg, cache.New(0))
		p.Enricher.Log = log
	}
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn("Gemini disabled", "error", err)
		} else {
			defer client.Close()
			limiter := ratelimit.NewAIRateLimiter(cfg.MaxGeminiRequests)
			limiter.Log = log
			p.Digester = gemini.NewDigester(client, limiter)
			p.Digester.Log = log
		}
	}

	items := p.Process(ctx, doc)

	if outputPath == "" {
		outputPath = doc.Output.ReportFilename
	}
	if err := writeReport(outputPath, doc.Output.ReportTitle, items); err != nil {
		return "", err
	}

	log.Info("Report generated", "path", outputPath, "items", len(items))
	return outputPath, nil
}

// Process runs every stage but rendering and returns the final items.
func (p *Pipeline) Process(ctx context.Context, doc *config.Document) []news.Item {
	log := p.logger()

	items := p.Collect(ctx, doc.Sources)

	items, removed := news.Dedupe(items)
	p.metrics().AddDuplicatesRemoved(removed)
	if removed > 0 {
		log.Info("Removed duplicate news items", "count", removed)
	}

	items, rep := news.Balance(items, doc.Quotas)
	p.metrics().RecordBalance(rep.Before, rep.After)
	log.Info("Balanced categories", "before", rep.Before, "after", rep.After)

	if p.Enricher != nil {
		var st scraper.Stats
		items, st = p.Enricher.EnrichAll(ctx, items)
		p.metrics().RecordEnrichment(st.Attempted, st.Enriched, st.Failed)
		log.Info("Enrichment completed", "attempted", st.Attempted, "requests", st.Requests, "enriched", st.Enriched, "failed", st.Failed)
	}

	if p.Digester != nil {
		var n int
		items, n = p.Digester.DigestAll(ctx, items)
		p.metrics().AddDigests(n)
	}

	p.metrics().Finish()
	log.Info("Run statistics", p.metrics().LogArgs()...)
	return items
}

// Collect fetches every feed in order, then classifies and attributes the
// items. A failing feed is logged and contributes nothing.
func (p *Pipeline) Collect(ctx context.Context, sources []config.SourceConfig) []news.Item {
	log := p.logger()

	var all []news.Item
	for _, src := range sources {
		log.Info("Fetching feed", "feed", src.Name, "category", src.DefaultCategory)

		items, err := p.Fetcher.Fetch(ctx, src)
		p.metrics().RecordFeed(len(items), err)
		if err != nil {
			log.Warn("Feed failed", "feed", src.Name, "error", err)
			continue
		}
		log.Info("Fetched headlines", "feed", src.Name, "count", len(items))

		all = append(all, p.label(items)...)
	}
	return all
}

// label applies the classifier and the attributor. The source a feed
// declared is the attribution fallback.
func (p *Pipeline) label(items []news.Item) []news.Item {
	labelled := items
	if p.Classifier != nil {
		labelled = p.Classifier.Apply(items)
	}

	reclassified, attributed := 0, 0
	for i := range labelled {
		if labelled[i].Category != items[i].Category {
			reclassified++
		}
		if p.Attributor == nil {
			continue
		}
		desc := labelled[i].Description
		if desc == news.NoSummary {
			desc = ""
		}
		source := p.Attributor.Attribute(labelled[i].Title, desc, labelled[i].Source)
		if source != labelled[i].Source {
			labelled[i].Source = source
			attributed++
		}
	}

	p.metrics().AddReclassified(reclassified)
	p.metrics().AddAttributed(attributed)
	return labelled
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return logger.Logger
}

func (p *Pipeline) metrics() *metrics.Metrics {
	if p.Metrics == nil {
		p.Metrics = metrics.New()
	}
	return p.Metrics
}

func writeReport(path, title string, items []news.Item) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return report.Render(f, title, items, time.Now())
}
