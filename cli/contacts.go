// ABOUTME: Contact and document maintenance CLI commands
// ABOUTME: add-contact, init-dashboard and migrate
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/models"
)

// AddContactCommand adds a person at a lead company.
func AddContactCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	name := fs.String("name", "", "Contact name (required)")
	title := fs.String("title", "", "Job title or department")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	keyman := fs.String("keyman", "", "Role in the decision: 決裁者, 窓口, 技術担当, その他")
	notes := fs.String("notes", "", "Notes about the contact")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	contact, res, err := svc.AddContact(ctx, crm.ContactInput{
		Company: *company,
		Name:    *name,
		Title:   *title,
		Email:   *email,
		Phone:   *phone,
		Keyman:  models.Keyman(*keyman),
		Notes:   *notes,
	})
	if err != nil {
		return fmt.Errorf("failed to add contact: %w", err)
	}
	if err := out.Done(contact, "Added %s (%s) at %s", contact.Name, contact.ID, contact.Company); err != nil {
		return err
	}
	out.Outcomes(res)
	return nil
}

// InitDashboardCommand writes the KPI block to the dashboard tab.
func InitDashboardCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("init-dashboard", flag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := svc.InitDashboard(ctx); err != nil {
		return fmt.Errorf("failed to initialize dashboard: %w", err)
	}
	return out.Done(map[string]string{"tab": crm.TabDashboard}, "Dashboard written to %s", crm.TabDashboard)
}

// MigrateCommand migrates the lead table, or prints the plan with --dry-run.
func MigrateCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "Report the detected version and planned steps without writing")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	report, err := svc.Migrate(ctx, *dryRun)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	if out.JSON {
		return out.encode(report)
	}

	verb := "Migrated"
	if *dryRun {
		verb = "Would migrate"
	}
	if len(report.Steps) == 0 && len(report.TabsCreated) == 0 {
		return out.Done(report, "Schema %s is current", report.Initial)
	}
	rows := make([][]string, 0, len(report.Steps)+len(report.TabsCreated))
	for i, step := range report.Steps {
		rows = append(rows, []string{fmt.Sprint(i + 1), step.String()})
	}
	for _, tab := range report.TabsCreated {
		rows = append(rows, []string{"+", "tab " + tab})
	}
	if err := out.Table(report, []string{"#", "STEP"}, rows); err != nil {
		return err
	}
	return out.Done(report, "%s %s -> %s", verb, report.Initial, report.Final)
}
