// ABOUTME: Activity and task CLI commands
// ABOUTME: log-activity, activities and the tasks add/complete/list subcommands
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/models"
)

// LogActivityCommand appends a manual activity row.
func LogActivityCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("log-activity", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	kind := fs.String("type", string(models.ActivityOther), "Activity type")
	person := fs.String("person", "", "Person contacted")
	content := fs.String("content", "", "What happened (required)")
	result := fs.String("result", "", "Outcome")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !models.Valid(models.ActivityType(*kind), models.ActivityTypes) {
		return fmt.Errorf("invalid type %q (valid: %s): %w", *kind, joinValues(models.ActivityTypes), crm.ErrValidation)
	}

	res, err := svc.LogActivity(ctx, crm.ActivityInput{
		Company: *company,
		Type:    models.ActivityType(*kind),
		Person:  *person,
		Content: *content,
		Result:  *result,
	})
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	if err := out.Done(toJSON(res), "Logged %s for %s", *kind, res.Company); err != nil {
		return err
	}
	out.Outcomes(res)
	return nil
}

// ActivitiesCommand lists the activity history of a company.
func ActivitiesCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("activities", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	activities, err := svc.ListActivities(ctx, *company)
	if err != nil {
		return fmt.Errorf("failed to list activities: %w", err)
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	rows := make([][]string, 0, len(activities))
	for _, a := range activities {
		rows = append(rows, []string{a.Timestamp, a.Company, string(a.Type), a.Person, a.Content, a.Result, string(a.Recorder)})
	}
	return out.Table(activities, []string{"WHEN", "COMPANY", "TYPE", "PERSON", "CONTENT", "RESULT", "BY"}, rows)
}

// TasksCommand dispatches the tasks subcommands.
func TasksCommand(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("tasks requires a subcommand (add, complete, list): %w", crm.ErrValidation)
	}
	switch args[0] {
	case "add":
		return addTask(ctx, svc, out, args[1:])
	case "complete":
		return completeTask(ctx, svc, out, args[1:])
	case "list":
		return listTasks(ctx, svc, out, args[1:])
	}
	return fmt.Errorf("unknown tasks subcommand %q: %w", args[0], crm.ErrValidation)
}

func addTask(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("tasks add", flag.ContinueOnError)
	company := fs.String("company", "", "Company name (required)")
	description := fs.String("description", "", "What needs doing (required)")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	priority := fs.String("priority", "", "Priority 高, 中 or 低")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	task, err := svc.AddTask(ctx, crm.TaskInput{
		Company:     *company,
		Description: *description,
		Due:         *due,
		Priority:    models.Priority(*priority),
	})
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return out.Done(task, "Added %s for %s", task.ID, task.Company)
}

func completeTask(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("tasks complete", flag.ContinueOnError)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("tasks complete takes one task id: %w", crm.ErrValidation)
	}
	task, err := svc.CompleteTask(ctx, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return out.Done(task, "Completed %s", task.ID)
}

func listTasks(ctx context.Context, svc *crm.Service, out *Output, args []string) error {
	fs := flag.NewFlagSet("tasks list", flag.ContinueOnError)
	company := fs.String("company", "", "Filter by company")
	overdue := fs.Bool("overdue", false, "Only open tasks past their due date")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	tasks, err := svc.ListTasks(ctx, crm.TaskFilter{Company: *company, Overdue: *overdue})
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, t.Company, t.Description, t.Due, string(t.Priority), string(t.Status)})
	}
	return out.Table(tasks, []string{"ID", "COMPANY", "TASK", "DUE", "PRIORITY", "STATUS"}, rows)
}
