package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/futbot/futbot/internal/classify"
	"github.com/futbot/futbot/internal/config"
	"github.com/futbot/futbot/internal/fetch"
	"github.com/futbot/futbot/internal/images"
	"github.com/futbot/futbot/internal/logger"
	"github.com/futbot/futbot/internal/metrics"
	"github.com/futbot/futbot/internal/pipeline"
	"github.com/futbot/futbot/internal/publish"
	"github.com/futbot/futbot/internal/ratelimit"
	"github.com/futbot/futbot/internal/retry"
	"github.com/futbot/futbot/internal/scheduler"
	"github.com/futbot/futbot/internal/source"
	"github.com/futbot/futbot/internal/store"
	"github.com/futbot/futbot/internal/summarize"
)

func main() {
	logger.Init()

	root := &cobra.Command{
		Use:   "futbot",
		Short: "Collects Turkish football news and publishes a curated feed to X",
	}
	root.AddCommand(runCmd(), serveCmd(), statusCmd(), cleanupCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one pipeline run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			p, st, err := buildPipeline(cfg, dryRun)
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := p.Run(cmd.Context(), time.Now().UTC())
			if err != nil {
				return fmt.Errorf("run %s: %w", report.Status, err)
			}

			fmt.Printf("status=%s fetched=%d duplicates=%d candidates=%d admitted=%d published=%d\n",
				report.Status, report.Fetched, report.Duplicates,
				report.Candidates, report.Admitted, report.Published)
			if report.PublishErr != nil {
				fmt.Printf("publish deferred: %v\n", report.PublishErr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "print posts to stdout instead of publishing")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline continuously on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			p, st, err := buildPipeline(cfg, false)
			if err != nil {
				return err
			}
			defer st.Close()

			if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
				go startMonitoringServer()
			}

			sched, err := scheduler.New(cfg.CronSpec, p)
			if err != nil {
				return fmt.Errorf("bad cron spec %q: %w", cfg.CronSpec, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched.Start(ctx)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show recent posting history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			since := time.Now().UTC().Add(-24 * time.Hour)
			records, err := st.RecentPosts(cmd.Context(), since)
			if err != nil {
				return err
			}

			fmt.Printf("posts in last 24h: %d (daily cap %d)\n", len(records), cfg.DailyPostCap)
			for _, rec := range records {
				fmt.Printf("  %s  %-8s  %s\n",
					rec.PostedAt.Format(time.RFC3339), rec.Category, rec.PlatformPostID)
			}
			return nil
		},
	}
}

func cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove post records older than the retention horizon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			horizon := time.Now().UTC().AddDate(0, 0, -cfg.CleanupDays)
			removed, err := st.Cleanup(cmd.Context(), horizon)
			if err != nil {
				return err
			}
			fmt.Printf("removed %d records older than %s\n", removed, horizon.Format(time.RFC3339))
			return nil
		},
	}
}

func buildPipeline(cfg *config.Config, dryRun bool) (*pipeline.Pipeline, store.Store, error) {
	sources, err := source.Load(cfg.SourcesConfigPath, cfg.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("load sources: %w", err)
	}

	keywords, err := loadKeywords(cfg)
	if err != nil {
		return nil, nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	var publisher publish.Publisher
	if dryRun {
		publisher = &publish.ConsolePublisher{Out: os.Stdout}
	} else {
		if !cfg.HasXCredentials() {
			st.Close()
			return nil, nil, fmt.Errorf("X credentials are required outside dry-run mode")
		}
		publisher = publish.NewXClient(cfg.XAPIBaseURL, cfg.XAccessToken, cfg.RequestTimeout)
	}

	var renderer images.Renderer
	if os.Getenv("DISABLE_IMAGES") != "true" {
		renderer = images.NewOpenverseClient(cfg.RequestTimeout)
	}

	p := pipeline.New(pipeline.Deps{
		Sources: sources,
		Fetchers: map[source.Kind]fetch.Fetcher{
			source.KindRSS:  fetch.NewRSSFetcher(cfg.RequestTimeout),
			source.KindSite: fetch.NewSiteFetcher(cfg.RequestTimeout),
		},
		Store:        st,
		Keywords:     keywords,
		Summarizer:   summarize.NewAdapter(summarize.FrequencyRanker{}),
		Renderer:     renderer,
		Publisher:    publisher,
		Gate:         ratelimit.NewGate(cfg.MinMinutesBetweenPosts, cfg.DailyPostCap),
		Retry:        retryConfig(cfg),
		MaxItems:     cfg.MaxItemsPerRun,
		MaxAge:       cfg.NewsMaxAge,
		MaxSentences: cfg.MaxSentences,
	})
	return p, st, nil
}

func loadKeywords(cfg *config.Config) (*classify.Keywords, error) {
	if _, err := os.Stat(cfg.KeywordsConfigPath); os.IsNotExist(err) {
		return classify.DefaultKeywords(), nil
	}
	return classify.LoadKeywords(cfg.KeywordsConfigPath)
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		return store.NewPostgresStore(cfg.DatabaseURL)
	}
	return store.NewFileStore(cfg.StoreFilePath)
}

func retryConfig(cfg *config.Config) retry.Config {
	rc := retry.DefaultConfig()
	if cfg.RetryAttempts > 0 {
		rc.MaxRetries = uint64(cfg.RetryAttempts)
	}
	if cfg.RetryDelay > 0 {
		rc.InitialInterval = cfg.RetryDelay
	}
	return rc
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	slog.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		slog.Error("monitoring server stopped", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
