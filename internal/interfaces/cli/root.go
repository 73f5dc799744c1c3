package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/riskibarqy/match-insights/internal/app"
	"github.com/riskibarqy/match-insights/internal/config"
	"github.com/riskibarqy/match-insights/internal/domain/playerprofile"
	"github.com/riskibarqy/match-insights/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/match-insights/internal/platform/logging"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// MetricsWriter persists a decoded metrics table.
type MetricsWriter interface {
	ReplaceMatchMetrics(ctx context.Context, table playerprofile.MatchMetrics) (int, error)
}

// Options lets tests swap configuration loading and service wiring.
type Options struct {
	Logger            *logging.Logger
	Load              func() (config.Config, error)
	Build             func(config.Config, *logging.Logger) (*app.Services, error)
	OpenMetricsWriter func(config.Config, *logging.Logger) (MetricsWriter, func() error, error)
	OpenMigrator      func(cfg config.Config, dir string) (Migrator, error)
}

type runner struct {
	opts     Options
	format   string
	cfg      config.Config
	loaded   bool
	services *app.Services
}

func NewRootCommand(opts Options) *cobra.Command {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Load == nil {
		opts.Load = config.Load
	}
	if opts.Build == nil {
		opts.Build = app.NewServices
	}
	if opts.OpenMetricsWriter == nil {
		opts.OpenMetricsWriter = openPostgresMetrics
	}
	if opts.OpenMigrator == nil {
		opts.OpenMigrator = openMigrator
	}
	r := &runner{opts: opts}

	root := &cobra.Command{
		Use:           "insights",
		Short:         "Possession recovery, zone entry and player profile analytics on StatsBomb open data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch r.format {
			case formatTable, formatJSON:
				return nil
			default:
				return fmt.Errorf("invalid --output %q: valid values are %s, %s", r.format, formatTable, formatJSON)
			}
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if r.services == nil {
				return nil
			}
			return r.services.Close()
		},
	}
	root.PersistentFlags().StringVarP(&r.format, "output", "o", formatTable, "output format: table or json")

	root.AddCommand(
		r.competitionsCommand(),
		r.matchesCommand(),
		r.recoveryCommand(),
		r.zonesCommand(),
		r.overviewCommand(),
		r.clustersCommand(),
		r.elbowCommand(),
		r.importMetricsCommand(),
		r.migrateCommand(),
	)
	return root
}

// Execute runs the CLI against the process environment and returns the exit code.
func Execute(ctx context.Context, args []string) int {
	logger := logging.NewConsole(logging.ParseLevel(os.Getenv("APP_LOG_LEVEL")))
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	root := NewRootCommand(Options{Logger: logger})
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", "error", err)
		return 1
	}
	return 0
}

func openPostgresMetrics(cfg config.Config, logger *logging.Logger) (MetricsWriter, func() error, error) {
	db, err := app.OpenDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewPlayerMetricsRepository(db), db.Close, nil
}

func (r *runner) config() (config.Config, error) {
	if r.loaded {
		return r.cfg, nil
	}
	cfg, err := r.opts.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	r.cfg, r.loaded = cfg, true
	return cfg, nil
}

func (r *runner) servicesFor() (*app.Services, error) {
	if r.services != nil {
		return r.services, nil
	}
	cfg, err := r.config()
	if err != nil {
		return nil, err
	}
	services, err := r.opts.Build(cfg, r.opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	r.services = services
	return services, nil
}

func (r *runner) render(w io.Writer, payload any, table func(io.Writer) error) error {
	if strings.EqualFold(r.format, formatJSON) {
		return writeJSON(w, payload)
	}
	return table(w)
}
