// ABOUTME: MCP tool handlers over the CRM service
// ABOUTME: Registers every tool, resource and prompt on an MCP server
package handlers

import (
	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadsheet/crm"
)

// Handlers exposes crm.Service operations as MCP tools.
type Handlers struct {
	svc *crm.Service
	log *log.Logger
}

func New(svc *crm.Service, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{svc: svc, log: logger}
}

// MutationOutput reports a primary write and its best-effort follow-ups.
type MutationOutput struct {
	Company  string            `json:"company"`
	Row      int               `json:"row"`
	Outcomes map[string]string `json:"outcomes,omitempty"`
}

func mutationOutput(res crm.Result) MutationOutput {
	out := MutationOutput{Company: res.Company, Row: res.Row}
	if len(res.Outcomes) > 0 {
		out.Outcomes = make(map[string]string, len(res.Outcomes))
		for name, o := range res.Outcomes {
			out.Outcomes[name] = o.String()
		}
	}
	return out
}

// Register adds every CRM tool, resource and prompt to server.
func (h *Handlers) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "register_report",
		Description: "Register a lead produced by report generation; creates the CRM document if needed",
	}, h.RegisterReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_lead",
		Description: "Find the last lead whose company name matches (substring match in either direction)",
	}, h.FindLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_leads",
		Description: "List leads, optionally filtered by company or limited to unscored leads",
	}, h.ListLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_status",
		Description: "Update a lead's status and/or outreach message",
	}, h.UpdateStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_score",
		Description: "Record a scoring result; rank A/B/C also sets status and pipeline stage",
	}, h.UpdateScore)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_pipeline",
		Description: "Update a lead's pipeline stage, deal amount, win probability or expected close date",
	}, h.UpdatePipeline)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_leads",
		Description: "Delete lead rows for a company; explicit rows must still hold that company",
	}, h.DeleteLeads)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_activity",
		Description: "Log an activity for a company and stamp the lead's last contact date",
	}, h.LogActivity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_activities",
		Description: "List logged activities for a company",
	}, h.ListActivities)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_task",
		Description: "Add a follow-up task with the next T-NNN id",
	}, h.AddTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task done and stamp its completion date",
	}, h.CompleteTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List open tasks, or overdue tasks, optionally filtered by company",
	}, h.ListTasks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact person and copy their details onto the matching lead",
	}, h.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "init_dashboard",
		Description: "Write the KPI formula block to the dashboard tab",
	}, h.InitDashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "migrate_schema",
		Description: "Bring the lead table to the latest column layout, or report the plan with dry_run",
	}, h.MigrateSchema)

	h.registerResources(server)
	h.registerPrompts(server)
}
