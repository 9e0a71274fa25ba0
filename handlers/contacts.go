// ABOUTME: Contact and document maintenance MCP tool handlers
// ABOUTME: Implements add_contact, init_dashboard and migrate_schema
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/models"
)

type AddContactInput struct {
	Company string `json:"company" jsonschema:"Company name (required)"`
	Name    string `json:"name" jsonschema:"Contact name (required)"`
	Title   string `json:"title,omitempty" jsonschema:"Job title or department"`
	Email   string `json:"email,omitempty" jsonschema:"Email address"`
	Phone   string `json:"phone,omitempty" jsonschema:"Phone number"`
	Keyman  string `json:"keyman,omitempty" jsonschema:"Role in the decision: 決裁者, 窓口, 技術担当, その他"`
	Notes   string `json:"notes,omitempty" jsonschema:"Notes about the contact"`
}

type ContactOutput struct {
	Contact  models.Contact    `json:"contact"`
	Outcomes map[string]string `json:"outcomes,omitempty"`
}

func (h *Handlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	contact, res, err := h.svc.AddContact(ctx, crm.ContactInput{
		Company: input.Company,
		Name:    input.Name,
		Title:   input.Title,
		Email:   input.Email,
		Phone:   input.Phone,
		Keyman:  models.Keyman(input.Keyman),
		Notes:   input.Notes,
	})
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to add contact: %w", err)
	}
	return nil, ContactOutput{Contact: contact, Outcomes: mutationOutput(res).Outcomes}, nil
}

type InitDashboardInput struct{}

type InitDashboardOutput struct {
	Tab string `json:"tab"`
}

func (h *Handlers) InitDashboard(ctx context.Context, _ *mcp.CallToolRequest, _ InitDashboardInput) (*mcp.CallToolResult, InitDashboardOutput, error) {
	if err := h.svc.InitDashboard(ctx); err != nil {
		return nil, InitDashboardOutput{}, fmt.Errorf("failed to initialize dashboard: %w", err)
	}
	return nil, InitDashboardOutput{Tab: crm.TabDashboard}, nil
}

type MigrateSchemaInput struct {
	DryRun bool `json:"dry_run,omitempty" jsonschema:"Report the detected version and planned steps without writing"`
}

type MigrateSchemaOutput struct {
	Initial     string   `json:"initial"`
	Final       string   `json:"final"`
	Steps       []string `json:"steps"`
	TabsCreated []string `json:"tabs_created"`
	DryRun      bool     `json:"dry_run"`
}

func (h *Handlers) MigrateSchema(ctx context.Context, _ *mcp.CallToolRequest, input MigrateSchemaInput) (*mcp.CallToolResult, MigrateSchemaOutput, error) {
	report, err := h.svc.Migrate(ctx, input.DryRun)
	if err != nil {
		return nil, MigrateSchemaOutput{}, fmt.Errorf("failed to migrate schema: %w", err)
	}
	out := MigrateSchemaOutput{
		Initial:     report.Initial.String(),
		Final:       report.Final.String(),
		Steps:       []string{},
		TabsCreated: []string{},
		DryRun:      input.DryRun,
	}
	for _, step := range report.Steps {
		out.Steps = append(out.Steps, step.String())
	}
	out.TabsCreated = append(out.TabsCreated, report.TabsCreated...)
	return nil, out, nil
}
