package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/cellindex/internal/logger"
	"github.com/kailas-cloud/cellindex/internal/repository/dump"
)

const defaultRawPath = "dumps/individuals_raw_" + dump.DatePlaceholder + ".json"

func newRawCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "raw",
		Short: "Write the unflattened graph results for every individual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.raw(cmd.Context(), out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", defaultRawPath, "output file path")
	return cmd
}

func (a *app) raw(ctx context.Context, out string) error {
	exec, src, err := a.openGraph(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = exec.Close(context.WithoutCancel(ctx)) }()

	raw, err := a.newService(src, nil, nil).Raw(ctx)
	if err != nil {
		return err
	}

	w := dump.New(out)
	if err := w.Encode(ctx, raw); err != nil {
		return err
	}
	logpkg.FromContext(ctx).Info("Raw results written",
		zap.String("path", w.Path()),
		zap.Int("entities", len(raw.Entities)),
	)
	return nil
}
