package cli

import (
	"context"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/flatdb/internal/config"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(a *app) *Command {
	flags := flag.NewFlagSet("print-config", flag.ContinueOnError)
	defaults := flags.Bool("default", false, "Print the default config file instead")

	return &Command{
		Flags: flags,
		Usage: "print-config [flags]",
		Group: groupTools,
		Examples: []string{
			"print-config --default > flatdb.json",
		},
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			if *defaults {
				data, err := config.DefaultFile()
				if err != nil {
					return err
				}

				o.Printf("%s\n", data)

				return nil
			}

			return execPrintConfig(o, a.cfg)
		},
	}
}

func execPrintConfig(o *IO, cfg config.Config) error {
	o.Println("effective_cwd=" + cfg.EffectiveCwd)
	o.Println("data_dir=" + cfg.DataDirAbs)
	o.Println("listen=" + cfg.Address())
	o.Println("log_level=" + cfg.LogLevel)

	if cfg.AuthEnabled() {
		o.Println("auth=enabled")
	} else {
		o.Println("auth=disabled")
	}

	if cfg.RateLimit > 0 {
		o.Println("rate_limit=" + strconv.FormatFloat(cfg.RateLimit, 'f', -1, 64))
		o.Println("rate_burst=" + strconv.Itoa(cfg.RateBurst))
	}

	o.Println("")
	o.Println("# sources")

	if !cfg.Sources.Loaded() {
		o.Println("(defaults only)")
	} else {
		if cfg.Sources.Global != "" {
			o.Println("global_config=" + cfg.Sources.Global)
		}

		if cfg.Sources.Project != "" {
			o.Println("project_config=" + cfg.Sources.Project)
		}
	}

	return nil
}
