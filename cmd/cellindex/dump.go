package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/cellindex/internal/repository/dump"
)

const defaultDumpPath = "dumps/individuals_metadata_" + dump.DatePlaceholder + ".json"

func newDumpCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Build the corpus and write it as a JSON array",
		Long: "Build the corpus and write it as an indented JSON array of documents.\n" +
			dump.DatePlaceholder + " in the output path is replaced with the current date (YYYYMMDD).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.build(cmd.Context(), out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", defaultDumpPath, "output file path")
	return cmd
}
