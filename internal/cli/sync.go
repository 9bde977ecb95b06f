package cli

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/topomq/topomq/internal/amqptarget"
	"github.com/topomq/topomq/internal/mgmt"
	"github.com/topomq/topomq/internal/source"
	"github.com/topomq/topomq/internal/syncer"
	"github.com/topomq/topomq/pkg/metrics"
)

func newSyncCmd(opts *options) *cobra.Command {
	var via string

	cmd := &cobra.Command{
		Use:   "sync <source> <target-broker>",
		Short: "Replay a source topology onto a target broker",
		Long: `Replay a source topology (snapshot path or broker address) onto a target
broker through idempotent create calls: exchanges first, then queues, then
bindings. Individual rejections are collected instead of aborting the run;
the command exits non-zero when any remain.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			ctx := cmd.Context()

			src, err := source.Load(ctx, args[0], opts.creds(), opts.vhost)
			if err != nil {
				return err
			}

			var target syncer.Target
			switch via {
			case "http":
				base, err := mgmt.Resolve(ctx, args[1])
				if err != nil {
					return err
				}
				target = mgmt.NewClient(base, opts.creds())
			case "amqp":
				host, port := splitAddr(args[1], opts.cfg.AMQPPort)
				amqpTarget, err := amqptarget.Dial(host, port, opts.vhost, opts.user, opts.password)
				if err != nil {
					return err
				}
				defer amqpTarget.Close()
				target = amqpTarget
			default:
				return fmt.Errorf("unknown sync transport %q (want http or amqp)", via)
			}

			result, err := syncer.Replay(ctx, src.Topology, target)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}

			metrics.SyncFailures.Add(float64(len(result.Failures)))
			recordRun(opts.cfg, "sync", args, started, map[string]any{
				"synced":   result.Synced(),
				"failures": len(result.Failures),
			})

			if !result.Synced() {
				return fmt.Errorf("sync completed with %d failures", len(result.Failures))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&via, "via", "http", "transport for create calls: http or amqp")
	return cmd
}

func splitAddr(addr, defaultPort string) (host, port string) {
	if strings.Contains(addr, ":") {
		if h, p, err := net.SplitHostPort(addr); err == nil {
			return h, p
		}
	}
	return addr, defaultPort
}
