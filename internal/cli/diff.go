package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/topomq/topomq/internal/diff"
	"github.com/topomq/topomq/internal/source"
)

func newDiffCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <expected> <actual>",
		Short: "Compare two topologies (snapshot paths or broker addresses)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			expected, err := source.Load(cmd.Context(), args[0], opts.creds(), opts.vhost)
			if err != nil {
				return err
			}
			actual, err := source.Load(cmd.Context(), args[1], opts.creds(), opts.vhost)
			if err != nil {
				return err
			}

			report, err := diff.Topologies(expected.Topology, actual.Topology)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			recordRun(opts.cfg, "diff", args, started, map[string]any{
				"in_sync": report.InSync(),
			})
			return nil
		},
	}
}
