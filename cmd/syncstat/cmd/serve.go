package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/syncstat/internal/api"
	"github.com/good-yellow-bee/syncstat/internal/dataset"
	"github.com/good-yellow-bee/syncstat/internal/metrics"
	"github.com/good-yellow-bee/syncstat/pkg/config"
)

var (
	serveAddress        string
	serveMetricsAddress string
	serveRateLimit      float64
	serveNoWatch        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [file...]",
	Short: "Serve the activity analytics HTTP API",
	Long: `Load activity logs and serve the analytics views as a JSON API.

Paths come from the arguments or from data.paths in the config file. The
dataset is reloaded when a matching file changes, unless --no-watch is set.
Prometheus metrics are served on a separate address.

Examples:
  # Serve one export on :8080
  syncstat serve activity.tsv

  # Use a config file, custom port, no metrics
  syncstat serve -c syncstat.yaml --address :8181 --metrics-address ""`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "HTTP listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveMetricsAddress, "metrics-address", "", "Prometheus listen address, empty disables (default :9090)")
	serveCmd.Flags().Float64Var(&serveRateLimit, "rate-limit", 0, "requests per second per client IP (0 = unlimited)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload when files change")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override with CLI flags
	if len(args) > 0 {
		cfg.Data.Paths = args
	}
	if cmd.Flags().Changed("address") {
		cfg.Server.HTTPAddress = serveAddress
	}
	if cmd.Flags().Changed("metrics-address") {
		cfg.Server.MetricsAddress = serveMetricsAddress
	}
	if cmd.Flags().Changed("rate-limit") {
		cfg.Server.RateLimitPerSecond = serveRateLimit
	}
	if serveNoWatch {
		cfg.Data.Watch = false
	}
	cfg.Verbose = verbose

	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(cfg.Data.Paths) == 0 {
		return fmt.Errorf("no data paths: pass files as arguments or set data.paths in the config")
	}

	info := config.GetBuildInfo()
	metrics.SetBuildInfo(info.Version, info.Commit, info.BuildTime)

	store := dataset.NewStore(cfg.Data.Paths, loadOptions(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Printf("received signal %v, shutting down...", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	// Serve even when the first load fails; /ready reports it until a
	// reload succeeds.
	if _, err := store.Reload(ctx); err != nil {
		log.Printf("initial load failed: %v", err)
	}

	apiServer, err := api.New(&api.Config{
		Address:            cfg.Server.HTTPAddress,
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
		RateLimitBurst:     cfg.Server.RateLimitBurst,
		Verbose:            cfg.Verbose,
	}, store)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}

	var watcher *dataset.Watcher
	if cfg.Data.Watch {
		watcher, err = dataset.NewWatcher(cfg.Data.Paths, store, &dataset.WatchOptions{
			PollInterval: cfg.PollIntervalDuration(),
			Debounce:     cfg.DebounceDuration(),
		})
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
	}

	log.Printf("starting %s", config.VersionString())

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiServer.Run(gCtx)
	})

	if cfg.Server.MetricsAddress != "" {
		metricsServer := metrics.NewServer(cfg.Server.MetricsAddress)
		g.Go(func() error {
			return metricsServer.Run(gCtx)
		})
	}

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}
