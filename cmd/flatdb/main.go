// Command flatdb keeps tables in plain text database files and serves them
// over HTTP.
//
// Run "flatdb --help" for the commands.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/calvinalkan/flatdb/internal/cli"
)

func main() {
	os.Exit(run())
}

// run hands the process environment to [cli.Run]. SIGINT and SIGTERM
// cancel the running command, which for "flatdb serve" means a graceful
// shutdown.
func run() int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	defer signal.Stop(sigCh)

	return cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, envMap(os.Environ()), sigCh)
}

// envMap splits KEY=VALUE entries into a map.
func envMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))

	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	return env
}
