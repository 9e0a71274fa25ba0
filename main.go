// ABOUTME: Entry point for the lead CRM CLI and MCP server
// ABOUTME: Loads configuration, opens the backend and routes to a subcommand
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadsheet/cli"
	"github.com/harperreed/leadsheet/config"
	"github.com/harperreed/leadsheet/crm"
)

const version = "0.2.0"

type command func(ctx context.Context, svc *crm.Service, out *cli.Output, args []string) error

var commands = map[string]command{
	"add-lead":        cli.AddLeadCommand,
	"update-status":   cli.UpdateStatusCommand,
	"update-score":    cli.UpdateScoreCommand,
	"update-pipeline": cli.UpdatePipelineCommand,
	"read-lead":       cli.ReadLeadCommand,
	"delete-rows":     cli.DeleteRowsCommand,
	"log-activity":    cli.LogActivityCommand,
	"activities":      cli.ActivitiesCommand,
	"tasks":           cli.TasksCommand,
	"add-contact":     cli.AddContactCommand,
	"init-dashboard":  cli.InitDashboardCommand,
	"dashboard":       cli.DashboardCommand,
	"migrate":         cli.MigrateCommand,
}

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	backend := flag.String("backend", "", "Override CRM_BACKEND (auto, google, local)")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("leadsheet version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *backend != "" {
		cfg.Backend = config.Backend(*backend)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.Level(),
		ReportTimestamp: true,
		Prefix:          "leadsheet",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, cfg, logger, args[0], args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, name string, args []string) int {
	cmd, ok := commands[name]
	if !ok && name != "mcp" {
		fmt.Printf("Unknown command: %s\n\n", name)
		printUsage()
		return 1
	}

	svc, closeBackend, err := cli.OpenService(ctx, cfg, logger)
	if err != nil {
		return fail(logger, err)
	}
	defer func() {
		if err := closeBackend(); err != nil {
			logger.Warn("failed to close backend", "err", err)
		}
	}()

	if name == "mcp" {
		err = cli.MCPCommand(ctx, svc, logger, version)
	} else {
		err = cmd(ctx, svc, cli.Stdout(), args)
	}
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return fail(logger, err)
}

func fail(logger *log.Logger, err error) int {
	if err == nil {
		return 0
	}
	logger.Error(err.Error())
	if hint := cli.Hint(err); hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
	return cli.ExitCode(err)
}

func printUsage() {
	fmt.Printf(`leadsheet v%s - lead CRM on a shared spreadsheet

USAGE:
  leadsheet [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --backend <name>       auto, google or local (default: $CRM_BACKEND or auto)

CONFIGURATION (environment or .env):
  GOOGLE_APPLICATION_CREDENTIALS   Service-account key file
  GOOGLE_DRIVE_FOLDER_ID           Folder holding the CRM document
  GOOGLE_IMPERSONATE_USER          Domain-wide delegation subject
  CRM_DOCUMENT_NAME                Document title (default: リード管理CRM)
  CRM_LOCAL_DB                     Local workbook path (default: ~/.local/share/leadsheet/crm.db)
  CRM_LOG_LEVEL                    debug, info, warn or error

COMMANDS:
  mcp                    Start MCP server on stdio

  add-lead               Register a lead
    --company <name>         Company name (required)
    --site, --address, --phone, --report-url, --outreach

  update-status          Update status and/or outreach message
    --company <name>         Company name (required)
    --status <status>        未アプローチ, アプローチ済み, フォーム営業完了, Aランク対応中, ナーチャリング中, 3ヶ月後フォロー
    --outreach <text>        Outreach message

  update-score           Record a scoring result
    --company <name>         Company name (required)
    --score <0-100>          Score
    --rank <A|B|C>           Rank (also sets status and stage unless --no-derive)
    --contact-path, --notes, --next-action, --no-derive

  update-pipeline        Update deal fields
    --company <name>         Company name (required)
    --stage <stage>          リード, アプローチ中, 商談, 提案, 交渉, 受注, 失注
    --amount, --probability, --close-date <YYYY-MM-DD>

  read-lead              Show a lead (--company) or list leads (--all, --unscored)

  delete-rows            Delete lead rows for a company
    --company <name>         Company the rows must hold (required)
    --rows <n,n>             Explicit rows (re-checked before deleting)
    --dry-run                Show the rows only

  log-activity           Log an activity (--company, --type, --person, --content, --result)
  activities             List activities for --company

  tasks add              Add a task (--company, --description, --due, --priority)
  tasks complete <id>    Complete a task
  tasks list             List open tasks (--company, --overdue)

  add-contact            Add a contact (--company, --name, --title, --email, --phone, --keyman, --notes)
  init-dashboard         Write the KPI block to the dashboard tab
  dashboard              Print pipeline and follow-up summary
  migrate                Migrate the lead table (--dry-run to show the plan)

EXAMPLES:
  leadsheet add-lead --company "株式会社サンプル" --report-url https://example.com/r/1
  leadsheet update-score --company サンプル --score 82 --rank A
  leadsheet tasks list --overdue

`, version)
}
