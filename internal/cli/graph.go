package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/topomq/topomq/internal/graph"
	"github.com/topomq/topomq/internal/source"
)

func newGraphCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <broker-or-snapshot>",
		Short: "Render a topology as Graphviz DOT text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			src, err := source.Load(cmd.Context(), args[0], opts.creds(), opts.vhost)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.DOT(src.Topology))

			recordRun(opts.cfg, "graph", args, started, map[string]any{
				"origin": src.Origin,
			})
			return nil
		},
	}
}
