package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cellindex/internal/config"
	"github.com/kailas-cloud/cellindex/internal/db"
	logpkg "github.com/kailas-cloud/cellindex/internal/logger"
	documentrepo "github.com/kailas-cloud/cellindex/internal/repository/document"
	"github.com/kailas-cloud/cellindex/internal/usecase/health"
)

// checkOutput is printed by the check command.
type checkOutput struct {
	Status   health.Status                 `json:"status"`
	Checks   map[string]health.CheckResult `json:"checks"`
	Errors   map[string]string             `json:"errors,omitempty"`
	Manifest *documentrepo.Manifest        `json:"manifest,omitempty"`
	Index    *documentrepo.IndexStatus     `json:"index,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe the graph and sink and print the last written manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := logpkg.FromContext(ctx)

			exec, _, err := a.openGraph(ctx)
			if err != nil {
				log.Warn("Graph unavailable", zap.Error(err))
			} else {
				defer func() { _ = exec.Close(ctx) }()
			}

			sink, err := a.openSink(ctx, "")
			if err != nil {
				log.Warn("Sink unavailable", zap.Error(err))
			}
			defer sink.close()

			var graph, store health.Pinger = unavailable{}, sink.pinger()
			if exec != nil {
				graph = exec
			}
			if sink == nil && a.cfg.Sink.Driver != config.DriverFile {
				store = unavailable{}
			}
			report := health.New(graph, store).Check(ctx)

			out := checkOutput{Status: report.Status, Checks: report.Checks}
			if len(report.Errors) > 0 {
				out.Errors = report.Errors
			}
			if sink != nil && sink.repo != nil {
				m, err := sink.repo.Manifest(ctx)
				switch {
				case err == nil:
					out.Manifest = m
				case errors.Is(err, db.ErrKeyNotFound):
					log.Info("No corpus written yet", zap.String("key_prefix", sink.location))
				default:
					log.Warn("Read manifest failed", zap.Error(err))
				}
				if st, err := sink.repo.IndexStatus(ctx); err != nil {
					log.Warn("Read index status failed", zap.Error(err))
				} else {
					out.Index = st
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			if report.Status == health.Unhealthy {
				return fmt.Errorf("status %s", report.Status)
			}
			return nil
		},
	}
}

// unavailable stands in for a collaborator that could not be opened.
type unavailable struct{}

func (unavailable) Ping(_ context.Context) error {
	return errors.New("not connected")
}
