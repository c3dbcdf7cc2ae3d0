package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/cellindex/internal/logger"
)

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the corpus and write it to the configured sink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.build(cmd.Context(), "")
		},
	}
}

// build runs the full pipeline; a non-empty out writes a dated JSON file
// instead of the configured sink.
func (a *app) build(ctx context.Context, out string) error {
	exec, src, err := a.openGraph(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = exec.Close(context.WithoutCancel(ctx)) }()

	sink, err := a.openSink(ctx, out)
	if err != nil {
		return err
	}
	defer sink.close()

	stopOps := a.startOps(ctx, exec, sink.pinger())
	defer stopOps()

	species, err := a.loadSpecies(ctx)
	if err != nil {
		return err
	}

	report, err := a.newService(src, sink.sink, species).Run(ctx)
	logReport(ctx, report)
	if err != nil {
		return err
	}
	logpkg.FromContext(ctx).Info("Corpus available", zap.String("location", sink.location))
	return nil
}
