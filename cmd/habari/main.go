package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"habari/internal/aggregate"
	"habari/internal/cache"
	"habari/internal/config"
	"habari/internal/dedup"
	"habari/internal/fallback"
	"habari/internal/logger"
	"habari/internal/metrics"
	"habari/internal/news"
	"habari/internal/prefs"
	"habari/internal/ratelimit"
	"habari/internal/sources"
)

func main() {
	categoryFlag := flag.String("category", "", "category to fetch (defaults to last used)")
	limitFlag := flag.Int("limit", 0, "max articles per category")
	jsonFlag := flag.Bool("json", false, "emit JSON instead of the text preview")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Setup(cfg.Debug)

	store := prefs.NewStore(cfg.PrefsPath)
	if err := store.Load(); err != nil {
		logger.Warn("loading preferences", "error", err)
	}

	agg, err := buildAggregator(cfg)
	if err != nil {
		log.Fatalf("building aggregator: %v", err)
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(cfg.MonitoringPort, agg.Metrics())
	}

	category := news.Category(strings.ToLower(*categoryFlag))
	if category == "" {
		category = news.Category(store.Get().LastCategory)
	}
	if !category.Valid() {
		logger.Warn("unknown category, using latest", "category", category, "valid", news.AllCategories())
		category = news.CategoryLatest
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	articles := agg.FetchCategory(ctx, category, *limitFlag)

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(articles); err != nil {
			log.Fatalf("encoding output: %v", err)
		}
	} else {
		printPreview(category, articles)
	}

	if err := store.Update(func(p *prefs.Preferences) {
		p.LastCategory = string(category)
	}); err != nil {
		logger.Warn("saving preferences", "error", err)
	}
}

func buildAggregator(cfg *config.Config) (*aggregate.Aggregator, error) {
	limiter := ratelimit.New(map[string]int{
		"newsapi":    cfg.NewsAPIDailyLimit,
		"gnews":      cfg.GNewsDailyLimit,
		"mediastack": cfg.MediastackDailyLimit,
	}, cfg.TotalDailyLimit)
	client := sources.NewHTTPJSON(cfg.RequestTimeout, limiter)

	var srcs []sources.Source
	if cfg.NewsAPIKey != "" {
		srcs = append(srcs, sources.NewNewsAPISource(cfg.NewsAPIKey, client))
	}
	if cfg.GNewsKey != "" {
		srcs = append(srcs, sources.NewGNewsSource(cfg.GNewsKey, client))
	}
	if cfg.MediastackKey != "" {
		srcs = append(srcs, sources.NewMediastackSource(cfg.MediastackKey, client))
	}
	if cfg.GuardianKey != "" {
		srcs = append(srcs, sources.NewGuardianSource(cfg.GuardianKey, client))
	}

	feeds, err := sources.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		logger.Warn("loading feeds config", "path", cfg.FeedsConfigPath, "error", err)
	}
	for _, rs := range sources.NewRSSSources(feeds) {
		srcs = append(srcs, rs)
	}
	for _, sc := range sources.KenyanScrapeConfigs() {
		srcs = append(srcs, sources.NewScrapeSource(sc, cfg.RequestTimeout))
	}
	logger.Info("sources registered", "count", len(srcs))

	fb, err := fallback.Load(cfg.FallbackConfigPath)
	if err != nil {
		return nil, err
	}

	return aggregate.New(
		srcs,
		dedup.New(dedup.DefaultThresholds()),
		cache.New(cfg.CacheTTL),
		fb,
		metrics.New(),
		aggregate.Options{
			PrimaryTimeout:   cfg.PrimaryTimeout,
			SecondaryTimeout: cfg.SecondaryTimeout,
			FallbackFraction: cfg.FallbackFraction,
			DefaultLimit:     cfg.DefaultLimit,
		},
	), nil
}

func printPreview(category news.Category, articles []news.Article) {
	fmt.Printf("== %s (%d articles) ==\n\n", category.DisplayName(), len(articles))
	for i, a := range articles {
		fmt.Printf("%2d. %s\n", i+1, a.Title)
		fmt.Printf("    %s · %s\n", a.Source, news.FormatRelativeTime(a.PublishedAt))
		if a.SourceCount > 1 {
			fmt.Printf("    reported by %d outlets: %s\n", a.SourceCount, strings.Join(a.MultipleSources, ", "))
		}
		fmt.Printf("    %s\n\n", a.URL)
	}
}

func startMonitoringServer(port string, m *metrics.Metrics) {
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		w.Header().Set("Content-Type", "application/json")
		if !m.Healthy() {
			status = "error"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	})
	http.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(m.GetStats())
	})

	logger.Info("monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server", "error", err)
	}
}
