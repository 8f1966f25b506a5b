// Command localscout scrapes the configured news sources, scores the
// extracted articles for regional relevance, and stores the survivors.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/localscout-hq/localscout/internal/config"
	"github.com/localscout-hq/localscout/internal/domain"
	"github.com/localscout-hq/localscout/internal/logger"
	"github.com/localscout-hq/localscout/internal/relevance"
	"github.com/localscout-hq/localscout/internal/scraper"
	"github.com/localscout-hq/localscout/internal/store"
	"github.com/localscout-hq/localscout/pkg/httpclient"
	"github.com/localscout-hq/localscout/pkg/publishers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "localscout: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	db, err := store.OpenBolt(cfg.BoltPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seedSources(ctx, db, cfg.Sources); err != nil {
		return err
	}

	scorer, err := buildScorer(cfg, log)
	if err != nil {
		return err
	}

	pubs, err := buildPublishers(ctx, cfg, log)
	if err != nil {
		return err
	}

	s := scraper.New(scraper.Config{
		Client:       httpclient.NewRestyClient(30 * time.Second),
		Articles:     db,
		Sources:      db,
		Scorer:       scorer,
		Publishers:   pubs,
		Log:          log,
		Workers:      cfg.Workers,
		MinRelevance: cfg.MinRelevance,
	})

	runAll := func() { scrapeAll(ctx, s, cfg, log) }

	if cfg.Cron == "" {
		runAll()
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Cron, runAll); err != nil {
		return fmt.Errorf("schedule %q: %w", cfg.Cron, err)
	}

	log.InfoObj("scheduler started", "scheduler_start", map[string]any{
		"cron":    cfg.Cron,
		"sources": len(cfg.Sources),
	})
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// scrapeAll runs every configured source concurrently, each under its own
// timeout so one slow source never delays the others.
func scrapeAll(ctx context.Context, s *scraper.Scraper, cfg config.Config, log logger.Logger) {
	timeout := time.Duration(cfg.SourceTimeout) * time.Second

	var wg sync.WaitGroup
	for _, src := range cfg.Sources {
		wg.Add(1)
		go func(src config.SourceConfig) {
			defer wg.Done()

			srcCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			s.Scrape(srcCtx, domain.Request{
				FeedURL:  src.FeedURL,
				SourceID: src.ID,
				Region:   src.Region,
			})
		}(src)
	}
	wg.Wait()

	log.InfoObj("scrape round complete", "round_done", map[string]any{
		"sources": len(cfg.Sources),
	})
}

// seedSources writes configured descriptors into the store, preserving any
// accumulated metrics.
func seedSources(ctx context.Context, db *store.Bolt, sources []config.SourceConfig) error {
	for _, src := range sources {
		descriptor := domain.Source{
			ID:              src.ID,
			Name:            src.Name,
			FeedURL:         src.FeedURL,
			Type:            src.Type,
			Region:          src.Region,
			CanonicalDomain: src.CanonicalDomain,
		}

		existing, err := db.GetSource(ctx, src.ID)
		switch {
		case err == nil:
			descriptor.LastScrapedAt = existing.LastScrapedAt
			descriptor.LastMethod = existing.LastMethod
			descriptor.AvgResponseMs = existing.AvgResponseMs
		case !errors.Is(err, domain.ErrSourceNotFound):
			return fmt.Errorf("read source %s: %w", src.ID, err)
		}

		if err := db.PutSource(ctx, descriptor); err != nil {
			return fmt.Errorf("seed source %s: %w", src.ID, err)
		}
	}
	return nil
}

func buildScorer(cfg config.Config, log logger.Logger) (*relevance.Scorer, error) {
	if cfg.RegionsFile == "" {
		return relevance.NewScorer(nil, log), nil
	}

	regions, err := relevance.LoadRegions(cfg.RegionsFile)
	if err != nil {
		return nil, err
	}
	return relevance.NewScorer(regions, log), nil
}

func buildPublishers(ctx context.Context, cfg config.Config, log logger.Logger) ([]publishers.Publisher, error) {
	if cfg.PublishersFile == "" {
		return nil, nil
	}

	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, err
	}
	return publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
}
