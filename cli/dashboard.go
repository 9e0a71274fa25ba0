// ABOUTME: Terminal dashboard CLI command
// ABOUTME: Summarizes the pipeline, ranks and leads needing attention
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/viz"
)

// DashboardCommand prints the pipeline overview and follow-up warnings.
func DashboardCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	leads, err := svc.ListLeads(ctx, crm.LeadFilter{})
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}
	overdue, err := svc.ListTasks(ctx, crm.TaskFilter{Overdue: true})
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	stats := viz.GenerateDashboardStats(leads, overdue, svc.Now())
	if out.JSON {
		return out.encode(stats)
	}
	_, err = fmt.Fprint(out.W, viz.RenderDashboard(stats))
	return err
}
