package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/topomq/topomq/web"
)

func newServeCmd(opts *options) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve <broker>",
		Short: "Serve the topology, check report, and metrics over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := web.NewWebServer(&web.Config{
				BrokerAddr:    args[0],
				Username:      opts.user,
				Password:      opts.password,
				VHost:         opts.vhost,
				JwtKey:        opts.cfg.JwtSecret,
				WebServerPort: port,
				Version:       opts.cfg.Version,
			})
			if err != nil {
				return err
			}

			app := server.SetupApp()
			addr := ":" + port
			log.Info().Str("addr", addr).Str("broker", args[0]).Msg("Starting web server")
			return app.Listen(addr)
		},
	}
	cmd.Flags().StringVar(&port, "port", opts.cfg.WebPort, "port to serve on")
	return cmd
}
