// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only JSON views of leads, the pipeline and overdue tasks via crm:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/viz"
)

const (
	uriLeads        = "crm://leads"
	uriPipeline     = "crm://pipeline"
	uriOverdueTasks = "crm://tasks/overdue"
)

func (h *Handlers) registerResources(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		URI:         uriLeads,
		Name:        "leads",
		Description: "Every lead in the CRM document",
		MIMEType:    "application/json",
	}, h.ReadResource)
	server.AddResource(&mcp.Resource{
		URI:         uriPipeline,
		Name:        "pipeline",
		Description: "Lead count, deal amount and weighted amount per pipeline stage",
		MIMEType:    "application/json",
	}, h.ReadResource)
	server.AddResource(&mcp.Resource{
		URI:         uriOverdueTasks,
		Name:        "overdue-tasks",
		Description: "Open tasks whose due date has passed",
		MIMEType:    "application/json",
	}, h.ReadResource)
}

// ReadResource handles resource read requests
func (h *Handlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	var data any
	switch uri {
	case uriLeads:
		leads, err := h.svc.ListLeads(ctx, crm.LeadFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch leads: %w", err)
		}
		data = leads
	case uriPipeline:
		leads, err := h.svc.ListLeads(ctx, crm.LeadFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch leads: %w", err)
		}
		data = viz.Pipeline(leads)
	case uriOverdueTasks:
		tasks, err := h.svc.ListTasks(ctx, crm.TaskFilter{Overdue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tasks: %w", err)
		}
		data = tasks
	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}

	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(text),
		},
	}}, nil
}
