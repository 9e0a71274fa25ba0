// ABOUTME: Standalone schema migration runner for the CRM lead table
// ABOUTME: Reports the detected layout version and planned steps with -dry-run, otherwise applies them

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadsheet/cli"
	"github.com/harperreed/leadsheet/config"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backend := flag.String("backend", "", "Override CRM_BACKEND (auto, google, local)")
	jsonOut := flag.Bool("json", false, "Print the report as JSON")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *backend != "" {
		cfg.Backend = config.Backend(*backend)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: cfg.Level(), Prefix: "migrate"})

	if err := migrate(context.Background(), cfg, logger, *dryRun, *jsonOut); err != nil {
		logger.Error("Migration failed", "err", err)
		if hint := cli.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func migrate(ctx context.Context, cfg *config.Config, logger *log.Logger, dryRun, jsonOut bool) error {
	svc, closeBackend, err := cli.OpenService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeBackend() }()

	out := cli.Stdout()
	out.JSON = jsonOut
	var args []string
	if dryRun {
		args = append(args, "--dry-run")
	}
	return cli.MigrateCommand(ctx, svc, out, args)
}
