package main

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cellindex/internal/config"
	logpkg "github.com/kailas-cloud/cellindex/internal/logger"
	"github.com/kailas-cloud/cellindex/internal/metrics"
	"github.com/kailas-cloud/cellindex/internal/version"
)

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	env        string
	configPath string
	logLevel   string

	cfg      config.Config
	logger   *zap.Logger
	runID    string
	registry *prometheus.Registry
	pipeline *metrics.Pipeline
	http     *metrics.HTTP
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "cellindex",
		Short:         "Flatten the cell type ontology graph into a search corpus",
		Version:       version.Version + " (" + version.Commit + ", " + version.Date + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.env, "env", config.GetEnv(), "environment name (local, prod); selects config/<env>.yaml")
	flags.StringVar(&a.configPath, "config", "", "explicit config file path (overrides --env lookup)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override: debug, info, warn, error")

	root.AddCommand(
		newIndexCmd(a),
		newDumpCmd(a),
		newRawCmd(a),
		newCheckCmd(a),
	)
	return root
}

// setup loads config, builds the logger and metrics, and tags the run.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(a.env)
	}
	if err != nil {
		return err
	}

	level := a.cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.logger, err = logpkg.NewLogger(a.env, level)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.pipeline = metrics.NewPipeline(a.registry)
	a.http = metrics.NewHTTP(a.registry)

	a.runID = uuid.NewString()
	ctx := logpkg.ContextWithLogger(cmd.Context(), a.logger)
	ctx = logpkg.With(ctx,
		zap.String("run_id", a.runID),
		zap.String("command", cmd.Name()),
	)
	cmd.SetContext(ctx)

	logpkg.FromContext(ctx).Info("Starting cellindex",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.String("sink_driver", a.cfg.Sink.Driver),
	)
	return nil
}
