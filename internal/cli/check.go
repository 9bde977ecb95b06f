package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/topomq/topomq/internal/check"
	"github.com/topomq/topomq/internal/source"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <broker-or-snapshot>",
		Short: "Flag unbound and misconfigured resources in a topology",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			src, err := source.Load(cmd.Context(), args[0], opts.creds(), opts.vhost)
			if err != nil {
				return err
			}

			report := check.Run(src.Topology, src.Consumers)
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			recordRun(opts.cfg, "check", args, started, map[string]any{
				"clean":              report.Clean(),
				"unbound_queues":     len(report.UnboundQueues),
				"unbound_exchanges":  len(report.UnboundExchanges),
				"queues_without_ttl": len(report.NoConsumersNoTTL),
				"queues_without_dlx": len(report.NoConsumersNoDLX),
			})
			return nil
		},
	}
}
