// Package cli defines the landgauge command tree: property analysis, sales
// search, comparable valuation, market statistics, and schema migration.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/landgauge/landgauge/internal/application/analysis"
	"github.com/landgauge/landgauge/internal/application/valuation"
	"github.com/landgauge/landgauge/internal/config"
	"github.com/landgauge/landgauge/internal/infrastructure/database/postgres"
	"github.com/landgauge/landgauge/internal/infrastructure/database/redis"
	"github.com/landgauge/landgauge/internal/infrastructure/geoquery"
	"github.com/landgauge/landgauge/internal/infrastructure/jurisdictions"
	"github.com/landgauge/landgauge/internal/infrastructure/messaging/kafka"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/prometheus"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Timeout    time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config  *config.Config
	Logger  logging.Logger
	Metrics *prometheus.Metrics

	cancel      context.CancelFunc
	stopMetrics func(ctx context.Context) error
}

type cliContextKey struct{}

// NewRootCommand creates the root command with global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "landgauge",
		Short:   "Australian property analysis and valuation engine",
		Long:    "landgauge resolves zoning, development controls, and overlay constraints\nfor Australian properties, estimates development potential, and values\nproperties from comparable sales.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			cc := getCLIContext(cmd)
			if cc.stopMetrics != nil {
				timeout := cc.Config.Server.ShutdownTimeout
				if timeout <= 0 {
					timeout = 10 * time.Second
				}
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				if err := cc.stopMetrics(ctx); err != nil {
					cc.Logger.Warn("metrics listener shutdown failed", logging.Err(err))
				}
				cancel()
			}
			if cc.cancel != nil {
				cc.cancel()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.DurationVar(&opts.Timeout, "timeout", 60*time.Second, "global operation timeout")

	cmd.AddCommand(
		newAnalyzeCommand(),
		newSalesCommand(),
		newMigrateCommand(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cc := &CLIContext{Config: cfg, Logger: log, Metrics: prometheus.NewMetrics()}
	if opts.Timeout > 0 {
		ctx, cc.cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	if cfg.Server.MetricsAddr != "" {
		cc.stopMetrics = prometheus.Serve(cfg.Server.MetricsAddr, cc.Metrics, log.Named("metrics"))
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))
	return nil
}

// getCLIContext extracts the initialized dependencies from the command.
func getCLIContext(cmd *cobra.Command) *CLIContext {
	cc, _ := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	if cc == nil {
		return &CLIContext{Config: &config.Config{}, Logger: logging.NewNopLogger()}
	}
	return cc
}

// printJSON writes v as indented JSON to the command's stdout.  All result
// output goes through here; logs go to stderr so output stays parseable.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// buildGateway assembles the spatial query service: ArcGIS client, optionally
// wrapped with the Redis read-through cache.  A cache that cannot be reached
// degrades to direct queries with a warning.
func buildGateway(ctx context.Context, cc *CLIContext) geoquery.Service {
	gateway := geoquery.NewArcGISClient(
		geoquery.WithTimeout(cc.Config.GeoQuery.RequestTimeout),
		geoquery.WithLogger(cc.Logger.Named("geoquery")),
		geoquery.WithMetrics(cc.Metrics),
	)

	if !cc.Config.GeoQuery.CacheEnabled {
		return gateway
	}
	client, err := redis.NewClient(ctx, &cc.Config.Redis, cc.Logger.Named("redis"))
	if err != nil {
		cc.Logger.Warn("spatial cache unavailable, querying upstream directly", logging.Err(err))
		return gateway
	}
	cache := redis.NewCache(client, cc.Logger.Named("cache"))
	return geoquery.NewCachedService(gateway, cache,
		geoquery.WithCacheTTL(cc.Config.GeoQuery.CacheTTL),
		geoquery.WithCacheLogger(cc.Logger.Named("geoquery")),
		geoquery.WithCacheMetrics(cc.Metrics),
	)
}

// buildAnalysisService wires the full analysis pipeline.
func buildAnalysisService(ctx context.Context, cc *CLIContext) (*analysis.Service, func(), error) {
	gateway := buildGateway(ctx, cc)
	registry := jurisdictions.NewRegistry(gateway, cc.Logger.Named("jurisdictions"))

	publisher, err := kafka.NewPublisher(cc.Config.Kafka, cc.Logger.Named("kafka"))
	if err != nil {
		return nil, nil, err
	}

	svc := analysis.NewService(registry, cc.Logger.Named("analysis"),
		analysis.WithPublisher(publisher),
		analysis.WithMetrics(cc.Metrics))
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			cc.Logger.Warn("publisher close failed", logging.Err(err))
		}
	}
	return svc, cleanup, nil
}

// buildValuationService wires the sales pipeline over the postgres corpus.
func buildValuationService(ctx context.Context, cc *CLIContext) (*valuation.Service, func(), error) {
	conn, err := postgres.NewConnection(ctx, &cc.Config.Database, cc.Logger.Named("postgres"))
	if err != nil {
		return nil, nil, err
	}
	store := postgres.NewSalesStore(conn, cc.Logger.Named("sales_store"))

	publisher, err := kafka.NewPublisher(cc.Config.Kafka, cc.Logger.Named("kafka"))
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	svc := valuation.NewService(store, cc.Logger.Named("valuation"),
		valuation.WithPublisher(publisher),
		valuation.WithMetrics(cc.Metrics),
		valuation.WithQueryDefaults(valuation.QueryDefaults{
			RadiusM:      cc.Config.Sales.DefaultRadiusM,
			MaxAgeMonths: cc.Config.Sales.DefaultMaxAgeMonths,
			MaxLimit:     cc.Config.Sales.MaxSearchLimit,
		}))
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			cc.Logger.Warn("publisher close failed", logging.Err(err))
		}
		if err := conn.Close(); err != nil {
			cc.Logger.Warn("database close failed", logging.Err(err))
		}
	}
	return svc, cleanup, nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
