// Package cli wires the command tree. Commands print their report as JSON to
// stdout (DOT text for graph); logs go to stderr.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/topomq/topomq/config"
	"github.com/topomq/topomq/internal/history"
	"github.com/topomq/topomq/internal/mgmt"
)

type options struct {
	cfg      *config.Config
	user     string
	password string
	vhost    string
}

func (o *options) creds() mgmt.Credentials {
	return mgmt.Credentials{Username: o.user, Password: o.password}
}

// NewRootCmd builds the topomq command tree.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{cfg: cfg}

	root := &cobra.Command{
		Use:           "topomq",
		Short:         "Reconcile declared broker topologies against reference snapshots",
		Version:       cfg.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.user, "user", cfg.Username, "management API username")
	root.PersistentFlags().StringVar(&opts.password, "password", cfg.Password, "management API password")
	root.PersistentFlags().StringVar(&opts.vhost, "vhost", cfg.VHost, "restrict live loads to one vhost")

	root.AddCommand(
		newDumpCmd(opts),
		newDiffCmd(opts),
		newCheckCmd(opts),
		newSyncCmd(opts),
		newGraphCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// recordRun appends one run to the audit log. Advisory only: a history
// failure never fails the command.
func recordRun(cfg *config.Config, command string, args []string, started time.Time, summary any) {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to open history database")
		return
	}
	defer store.Close()

	data, err := json.Marshal(summary)
	if err != nil {
		data = []byte(fmt.Sprintf("%q", fmt.Sprint(summary)))
	}
	run := history.Run{
		Command:    command,
		Args:       strings.Join(args, " "),
		StartedAt:  started,
		DurationMS: time.Since(started).Milliseconds(),
		Summary:    string(data),
	}
	if err := store.Record(run); err != nil {
		log.Warn().Err(err).Msg("Failed to record run in history")
	}
}
