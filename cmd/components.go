package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/enrich"
	"github.com/sells-group/leadscout/internal/fetch"
	"github.com/sells-group/leadscout/internal/proxy"
	"github.com/sells-group/leadscout/internal/ratelimit"
	"github.com/sells-group/leadscout/internal/score"
	"github.com/sells-group/leadscout/internal/store"
)

// buildOrchestrator wires the rate limiter, proxy pool, fetch client, and all
// enrichment adapters from config.
func buildOrchestrator(cfg *config.Config) *enrich.Orchestrator {
	limiter := ratelimit.New(
		time.Duration(cfg.RateLimit.IntervalMS)*time.Millisecond,
		time.Duration(cfg.RateLimit.JitterMS)*time.Millisecond,
	)
	proxies := proxy.NewSource(
		cfg.Proxy.List,
		cfg.Proxy.FailureThreshold,
		time.Duration(cfg.Proxy.RecoveryIntervalSecs)*time.Second,
	)
	client := fetch.New(limiter, proxies, fetch.Options{
		Timeout:         time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries:      cfg.Fetch.MaxRetries,
		BackoffBase:     time.Duration(cfg.Fetch.BackoffBaseMS) * time.Millisecond,
		BackoffMax:      time.Duration(cfg.Fetch.BackoffMaxMS) * time.Millisecond,
		UserAgents:      cfg.Fetch.UserAgents,
		BlockSignatures: cfg.Fetch.BlockSignatures,
	})

	// Social bios are matched against both distress and intent vocabularies.
	bioKeywords := append(append([]string{}, cfg.Keywords.FinancialStress...), cfg.Keywords.BuyerIntent...)

	adapters := []enrich.Adapter{
		enrich.NewContactAdapter(cfg.Keywords.DisposableDomains),
		enrich.NewWebsiteAdapter(cfg.Keywords.Website),
		enrich.NewSocialProfileAdapter(cfg.Adapters.SocialProfileURL, bioKeywords),
		enrich.NewProfessionalProfileAdapter(cfg.Adapters.ProfileSearchURL, cfg.Keywords.Professional),
		enrich.NewPropertyLookupAdapter(cfg.Adapters.PropertyLookupURL),
	}

	return enrich.NewOrchestrator(client, adapters, cfg.Pipeline.AdapterConcurrency)
}

func buildEngine(cfg *config.Config) *score.Engine {
	return score.NewEngine(cfg.Score, cfg.Keywords)
}

// initStore opens the run archive, or returns nil when archival is disabled.
// A store that fails to open degrades to no archival rather than failing the
// run.
func initStore(ctx context.Context, disabled bool) store.Store {
	if disabled {
		return nil
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		zap.L().Warn("store unavailable, continuing without run archive", zap.Error(err))
		return nil
	}
	return st
}
