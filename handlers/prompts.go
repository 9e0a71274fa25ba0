// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Builds lead-summary and follow-up-plan prompts from live CRM data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadsheet/crm"
)

func (h *Handlers) registerPrompts(server *mcp.Server) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "lead-summary",
		Description: "Summarize a lead with its activity history and suggest next steps",
		Arguments: []*mcp.PromptArgument{
			{Name: "company", Description: "Company name or part of it", Required: true},
		},
	}, h.GetPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-plan",
		Description: "Plan today's follow-ups from overdue tasks and unscored leads",
	}, h.GetPrompt)
}

// GetPrompt generates the prompt message based on the template
func (h *Handlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "lead-summary":
		return h.leadSummaryPrompt(ctx, request.Params.Arguments)
	case "follow-up-plan":
		return h.followUpPlanPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *Handlers) leadSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	company := args["company"]
	if company == "" {
		return nil, fmt.Errorf("company is required")
	}
	lead, err := h.svc.FindLead(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}
	activities, err := h.svc.ListActivities(ctx, lead.Company)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}

	var b strings.Builder
	b.WriteString("Please summarize this sales lead:\n\n")
	fmt.Fprintf(&b, "Company: %s\n", lead.Company)
	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	line("Site", lead.SiteURL)
	line("Status", string(lead.Status))
	line("Score", lead.Score)
	line("Rank", string(lead.Rank))
	line("Stage", string(lead.Stage))
	line("Deal amount", lead.DealAmount)
	line("Win probability", lead.WinProbability)
	line("Contact", lead.ContactName)
	line("Last contact", lead.LastContactDate)
	line("Response notes", lead.ResponseNotes)

	if len(activities) > 0 {
		fmt.Fprintf(&b, "\nActivity history (%d entries):\n", len(activities))
		for _, a := range activities {
			fmt.Fprintf(&b, "- %s [%s] %s\n", a.Timestamp, a.Type, a.Content)
		}
	}

	b.WriteString("\nPlease provide:")
	b.WriteString("\n1. A short assessment of where this lead stands")
	b.WriteString("\n2. The single most useful next action")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Summary for lead: %s", lead.Company),
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: b.String()}},
		},
	}, nil
}

func (h *Handlers) followUpPlanPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	overdue, err := h.svc.ListTasks(ctx, crm.TaskFilter{Overdue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	unscored, err := h.svc.ListLeads(ctx, crm.LeadFilter{Unscored: true})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}

	var b strings.Builder
	b.WriteString("Help me plan today's follow-ups.\n")
	fmt.Fprintf(&b, "\nOverdue tasks (%d):\n", len(overdue))
	for _, t := range overdue {
		fmt.Fprintf(&b, "- %s %s: %s (due %s, priority %s)\n", t.ID, t.Company, t.Description, t.Due, t.Priority)
	}
	fmt.Fprintf(&b, "\nLeads not yet scored (%d):\n", len(unscored))
	for _, l := range unscored {
		fmt.Fprintf(&b, "- %s (%s)\n", l.Company, l.Status)
	}
	b.WriteString("\nOrder the work by urgency and suggest what to say to each company.")

	return &mcp.GetPromptResult{
		Description: "Follow-up plan",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: b.String()}},
		},
	}, nil
}
