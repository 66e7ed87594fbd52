package cli

import (
	"context"
	"net"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatdb/internal/config"
	"github.com/calvinalkan/flatdb/internal/server"
)

// ServeCmd returns the serve command.
func ServeCmd(a *app) *Command {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := flags.IntP("port", "p", 0, "Listen `port` (overrides config)")
	host := flags.String("host", "", "Listen `host` (overrides config)")
	listen := flags.String("listen", "", "Listen `address` as host:port, overrides --host and --port; port 0 picks a free one")

	return &Command{
		Flags: flags,
		Usage: "serve [flags]",
		Group: groupTools,
		Examples: []string{
			"serve",
			"serve --listen 127.0.0.1:8080",
		},
		Short: "Run the HTTP server",
		Long: "Serve the databases over HTTP until interrupted.\n\n" +
			"On first start a default " + config.FileName + " is written to the working\n" +
			"directory and the data directory is created. Every request must\n" +
			"carry ?username=...&password=... matching the config.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if err := exactArgs(args); err != nil {
				return err
			}

			cfg := a.cfg

			if flags.Changed("port") {
				cfg.Port = *port
			}

			if flags.Changed("host") {
				cfg.Host = *host
			}

			if err := config.Validate(cfg); err != nil {
				return err
			}

			addr := cfg.Address()
			if flags.Changed("listen") {
				addr = *listen
			}

			written, err := config.Bootstrap(cfg)
			if err != nil {
				return err
			}

			if written != "" {
				a.log.Info("wrote default config", "path", written)
			}

			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}

			srv := server.New(st, server.Options{
				Username:  cfg.Username,
				Password:  cfg.Password,
				RateLimit: cfg.RateLimit,
				RateBurst: cfg.RateBurst,
				Logger:    a.log,
			})

			return srv.Serve(ctx, addr, func(bound net.Addr) {
				o.Println("listening on", bound.String())
			})
		},
	}
}
