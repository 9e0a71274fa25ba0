// ABOUTME: Lead CLI commands
// ABOUTME: add-lead, update-status, update-score, update-pipeline, read-lead and delete-rows
package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/models"
)

// parseFlags parses args, reporting bad flags as validation errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w: %w", fs.Name(), err, crm.ErrValidation)
	}
	return nil
}

// AddLeadCommand registers a lead as report generation does.
func AddLeadCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("add-lead", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	site := fs.String("site", "", "Company website")
	address := fs.String("address", "", "Postal address")
	phone := fs.String("phone", "", "Phone number")
	reportURL := fs.String("report-url", "", "Generated report URL")
	outreach := fs.String("outreach", "", "Outreach message")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	res, err := svc.RegisterReport(ctx, crm.ReportInput{
		Company:   *company,
		SiteURL:   *site,
		Address:   *address,
		Phone:     *phone,
		ReportURL: *reportURL,
		Outreach:  *outreach,
	})
	if err != nil {
		return fmt.Errorf("failed to add lead: %w", err)
	}
	if err := out.Done(toJSON(res), "Registered %s (row %d)", res.Company, res.Row); err != nil {
		return err
	}
	out.Outcomes(res)
	return nil
}

// UpdateStatusCommand sets the status and/or outreach message of a lead.
func UpdateStatusCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("update-status", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	status := fs.String("status", "", "New status")
	outreach := fs.String("outreach", "", "Outreach message")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *status != "" && !models.Valid(models.Status(*status), models.Statuses) {
		return fmt.Errorf("invalid status %q (valid: %s): %w", *status, joinValues(models.Statuses), crm.ErrValidation)
	}

	res, err := svc.UpdateStatus(ctx, crm.StatusUpdate{
		Company:  *company,
		Status:   models.Status(*status),
		Outreach: *outreach,
	})
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if err := out.Done(toJSON(res), "Updated %s (row %d)", res.Company, res.Row); err != nil {
		return err
	}
	out.Outcomes(res)
	return nil
}

// UpdateScoreCommand records a scoring result.
func UpdateScoreCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("update-score", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	score := fs.String("score", "", "Score from 0 to 100")
	rank := fs.String("rank", "", "Rank A, B or C")
	path := fs.String("contact-path", "", "How the lead responded")
	notes := fs.String("notes", "", "Response notes")
	next := fs.String("next-action", "", "Recommended next action")
	noDerive := fs.Bool("no-derive", false, "Do not derive status and stage from the rank")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *score != "" {
		n, err := strconv.Atoi(*score)
		if err != nil || n < 0 || n > 100 {
			return fmt.Errorf("score must be 0-100, got %q: %w", *score, crm.ErrValidation)
		}
	}

	res, err := svc.UpdateScore(ctx, crm.ScoreUpdate{
		Company:       *company,
		Score:         *score,
		Rank:          *rank,
		ContactPath:   *path,
		ResponseNotes: *notes,
		NextAction:    *next,
		SkipDerive:    *noDerive,
	})
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if err := out.Done(toJSON(res), "Scored %s (row %d)", res.Company, res.Row); err != nil {
		return err
	}
	out.Outcomes(res)
	return nil
}

// UpdatePipelineCommand changes the deal fields of a lead.
func UpdatePipelineCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("update-pipeline", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	stage := fs.String("stage", "", "Pipeline stage")
	amount := fs.String("amount", "", "Deal amount in yen")
	probability := fs.String("probability", "", "Win probability from 0 to 100")
	closeDate := fs.String("close-date", "", "Expected close date (YYYY-MM-DD)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *stage != "" && !models.Valid(models.Stage(*stage), models.Stages) {
		return fmt.Errorf("invalid stage %q (valid: %s): %w", *stage, joinValues(models.Stages), crm.ErrValidation)
	}
	if *closeDate != "" && !models.ValidDue(*closeDate) {
		return fmt.Errorf("close date must be YYYY-MM-DD, got %q: %w", *closeDate, crm.ErrValidation)
	}

	res, err := svc.UpdatePipeline(ctx, crm.PipelineUpdate{
		Company:        *company,
		Stage:          models.Stage(*stage),
		DealAmount:     *amount,
		WinProbability: *probability,
		ExpectedClose:  *closeDate,
	})
	if err != nil {
		return fmt.Errorf("failed to update pipeline: %w", err)
	}
	if err := out.Done(toJSON(res), "Updated pipeline for %s (row %d)", res.Company, res.Row); err != nil {
		return err
	}
	out.Outcomes(res)
	return nil
}

// ReadLeadCommand shows one lead, or lists leads with --all or --unscored.
func ReadLeadCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("read-lead", flag.ContinueOnError)
	company := fs.String("company", "", "Company name")
	all := fs.Bool("all", false, "List every matching lead")
	unscored := fs.Bool("unscored", false, "List leads without a score")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if *company != "" && !*all && !*unscored {
		lead, err := svc.FindLead(ctx, *company)
		if err != nil {
			return fmt.Errorf("failed to read lead: %w", err)
		}
		return out.Table(lead, []string{"FIELD", "VALUE"}, leadDetailRows(lead))
	}

	leads, err := svc.ListLeads(ctx, crm.LeadFilter{Company: *company, Unscored: *unscored})
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	return out.Table(leads, leadHeaders, leadRows(leads))
}

// DeleteRowsCommand removes lead rows after re-checking their content.
func DeleteRowsCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("delete-rows", flag.ContinueOnError)
	company := fs.String("company", "", "Company the rows must hold (required)")
	rowList := fs.String("rows", "", "Comma-separated row numbers; every matching row when empty")
	dryRun := fs.Bool("dry-run", false, "Show the rows without deleting")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	rows, err := parseRows(*rowList)
	if err != nil {
		return err
	}

	deleted, err := svc.DeleteLeads(ctx, crm.DeleteRequest{Company: *company, Rows: rows, DryRun: *dryRun})
	if err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}
	if *dryRun {
		return out.Table(deleted, leadHeaders, leadRows(deleted))
	}
	return out.Done(deleted, "Deleted %d row(s) for %s", len(deleted), *company)
}

func parseRows(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var rows []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid row %q: %w", part, crm.ErrValidation)
		}
		rows = append(rows, n)
	}
	return rows, nil
}

var leadHeaders = []string{"ROW", "COMPANY", "STATUS", "SCORE", "RANK", "STAGE", "LAST CONTACT"}

func leadRows(leads []models.Lead) [][]string {
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []string{
			strconv.Itoa(l.Row), l.Company, string(l.Status), l.Score,
			string(l.Rank), string(l.Stage), l.LastContactDate,
		})
	}
	return rows
}

func leadDetailRows(l models.Lead) [][]string {
	pairs := [][2]string{
		{"row", strconv.Itoa(l.Row)},
		{"created", l.CreatedDate},
		{"company", l.Company},
		{"site", l.SiteURL},
		{"address", l.Address},
		{"phone", l.Phone},
		{"report", l.ReportURL},
		{"status", string(l.Status)},
		{"score", l.Score},
		{"rank", string(l.Rank)},
		{"scored", l.ScoredDate},
		{"contact path", l.ContactPath},
		{"response", l.ResponseNotes},
		{"next action", l.NextAction},
		{"stage", string(l.Stage)},
		{"amount", l.DealAmount},
		{"probability", l.WinProbability},
		{"close date", l.ExpectedClose},
		{"contact", l.ContactName},
		{"email", l.ContactEmail},
		{"department", l.ContactDept},
		{"last contact", l.LastContactDate},
	}
	var rows [][]string
	for _, p := range pairs {
		if p[1] != "" {
			rows = append(rows, []string{p[0], p[1]})
		}
	}
	return rows
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
