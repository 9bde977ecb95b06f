package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/topomq/topomq/internal/source"
	"github.com/topomq/topomq/internal/topology"
)

func newDumpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <broker-or-snapshot>",
		Short: "Print the cleaned topology of a broker as snapshot JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			src, err := source.Load(cmd.Context(), args[0], opts.creds(), opts.vhost)
			if err != nil {
				return err
			}
			if err := topology.WriteSnapshot(cmd.OutOrStdout(), src.Topology); err != nil {
				return err
			}

			recordRun(opts.cfg, "dump", args, started, map[string]any{
				"origin":    src.Origin,
				"exchanges": len(src.Topology.Exchanges),
				"queues":    len(src.Topology.Queues),
				"bindings":  len(src.Topology.Bindings),
			})
			return nil
		},
	}
}
