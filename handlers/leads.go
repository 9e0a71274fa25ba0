// ABOUTME: Lead MCP tool handlers
// ABOUTME: Implements register_report, find_lead, list_leads, the update tools and delete_leads
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/models"
)

type RegisterReportInput struct {
	Company   string `json:"company" jsonschema:"Company name (required)"`
	SiteURL   string `json:"site_url,omitempty" jsonschema:"Company website"`
	Address   string `json:"address,omitempty" jsonschema:"Postal address"`
	Phone     string `json:"phone,omitempty" jsonschema:"Phone number"`
	ReportURL string `json:"report_url,omitempty" jsonschema:"URL of the generated report"`
	Outreach  string `json:"outreach,omitempty" jsonschema:"Outreach message sent through the contact form"`
}

func (h *Handlers) RegisterReport(ctx context.Context, _ *mcp.CallToolRequest, input RegisterReportInput) (*mcp.CallToolResult, MutationOutput, error) {
	res, err := h.svc.RegisterReport(ctx, crm.ReportInput(input))
	if err != nil {
		return nil, MutationOutput{}, fmt.Errorf("failed to register report: %w", err)
	}
	return nil, mutationOutput(res), nil
}

type CompanyInput struct {
	Company string `json:"company" jsonschema:"Company name or part of it (required)"`
}

func (h *Handlers) FindLead(ctx context.Context, _ *mcp.CallToolRequest, input CompanyInput) (*mcp.CallToolResult, models.Lead, error) {
	lead, err := h.svc.FindLead(ctx, input.Company)
	if err != nil {
		return nil, models.Lead{}, fmt.Errorf("failed to find lead: %w", err)
	}
	return nil, lead, nil
}

type ListLeadsInput struct {
	Company  string `json:"company,omitempty" jsonschema:"Only leads whose company matches"`
	Unscored bool   `json:"unscored,omitempty" jsonschema:"Only leads without a score"`
}

type LeadsOutput struct {
	Leads []models.Lead `json:"leads"`
}

func (h *Handlers) ListLeads(ctx context.Context, _ *mcp.CallToolRequest, input ListLeadsInput) (*mcp.CallToolResult, LeadsOutput, error) {
	leads, err := h.svc.ListLeads(ctx, crm.LeadFilter{Company: input.Company, Unscored: input.Unscored})
	if err != nil {
		return nil, LeadsOutput{}, fmt.Errorf("failed to list leads: %w", err)
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	return nil, LeadsOutput{Leads: leads}, nil
}

type UpdateStatusInput struct {
	Company  string `json:"company" jsonschema:"Company name (required)"`
	Status   string `json:"status,omitempty" jsonschema:"New status: 未アプローチ, アプローチ済み, フォーム営業完了, Aランク対応中, ナーチャリング中, 3ヶ月後フォロー"`
	Outreach string `json:"outreach,omitempty" jsonschema:"Outreach message"`
}

func (h *Handlers) UpdateStatus(ctx context.Context, _ *mcp.CallToolRequest, input UpdateStatusInput) (*mcp.CallToolResult, MutationOutput, error) {
	if input.Status != "" && !models.Valid(models.Status(input.Status), models.Statuses) {
		return nil, MutationOutput{}, fmt.Errorf("invalid status: %s", input.Status)
	}
	res, err := h.svc.UpdateStatus(ctx, crm.StatusUpdate{
		Company:  input.Company,
		Status:   models.Status(input.Status),
		Outreach: input.Outreach,
	})
	if err != nil {
		return nil, MutationOutput{}, fmt.Errorf("failed to update status: %w", err)
	}
	return nil, mutationOutput(res), nil
}

type UpdateScoreInput struct {
	Company       string `json:"company" jsonschema:"Company name (required)"`
	Score         string `json:"score,omitempty" jsonschema:"Score from 0 to 100"`
	Rank          string `json:"rank,omitempty" jsonschema:"Rank A, B or C"`
	ContactPath   string `json:"contact_path,omitempty" jsonschema:"How the lead responded: フォーム, テレアポ, 訪問, メール返信, その他"`
	ResponseNotes string `json:"response_notes,omitempty" jsonschema:"Notes on the response"`
	NextAction    string `json:"next_action,omitempty" jsonschema:"Recommended next action"`
	SkipDerive    bool   `json:"skip_derive,omitempty" jsonschema:"Do not derive status and stage from the rank"`
}

func (h *Handlers) UpdateScore(ctx context.Context, _ *mcp.CallToolRequest, input UpdateScoreInput) (*mcp.CallToolResult, MutationOutput, error) {
	res, err := h.svc.UpdateScore(ctx, crm.ScoreUpdate(input))
	if err != nil {
		return nil, MutationOutput{}, fmt.Errorf("failed to update score: %w", err)
	}
	return nil, mutationOutput(res), nil
}

type UpdatePipelineInput struct {
	Company        string `json:"company" jsonschema:"Company name (required)"`
	Stage          string `json:"stage,omitempty" jsonschema:"Stage: リード, アプローチ中, 商談, 提案, 交渉, 受注, 失注"`
	DealAmount     string `json:"deal_amount,omitempty" jsonschema:"Deal amount in yen"`
	WinProbability string `json:"win_probability,omitempty" jsonschema:"Win probability from 0 to 100"`
	ExpectedClose  string `json:"expected_close,omitempty" jsonschema:"Expected close date (YYYY-MM-DD)"`
}

func (h *Handlers) UpdatePipeline(ctx context.Context, _ *mcp.CallToolRequest, input UpdatePipelineInput) (*mcp.CallToolResult, MutationOutput, error) {
	if input.Stage != "" && !models.Valid(models.Stage(input.Stage), models.Stages) {
		return nil, MutationOutput{}, fmt.Errorf("invalid stage: %s", input.Stage)
	}
	res, err := h.svc.UpdatePipeline(ctx, crm.PipelineUpdate{
		Company:        input.Company,
		Stage:          models.Stage(input.Stage),
		DealAmount:     input.DealAmount,
		WinProbability: input.WinProbability,
		ExpectedClose:  input.ExpectedClose,
	})
	if err != nil {
		return nil, MutationOutput{}, fmt.Errorf("failed to update pipeline: %w", err)
	}
	return nil, mutationOutput(res), nil
}

type DeleteLeadsInput struct {
	Company string `json:"company" jsonschema:"Company name the rows must hold (required)"`
	Rows    []int  `json:"rows,omitempty" jsonschema:"Explicit 1-based row numbers; every matching row when empty"`
	DryRun  bool   `json:"dry_run,omitempty" jsonschema:"Report the rows without deleting"`
}

type DeleteLeadsOutput struct {
	Deleted []models.Lead `json:"deleted"`
	DryRun  bool          `json:"dry_run"`
}

func (h *Handlers) DeleteLeads(ctx context.Context, _ *mcp.CallToolRequest, input DeleteLeadsInput) (*mcp.CallToolResult, DeleteLeadsOutput, error) {
	deleted, err := h.svc.DeleteLeads(ctx, crm.DeleteRequest{
		Company: input.Company,
		Rows:    input.Rows,
		DryRun:  input.DryRun,
	})
	if err != nil {
		return nil, DeleteLeadsOutput{}, fmt.Errorf("failed to delete leads: %w", err)
	}
	return nil, DeleteLeadsOutput{Deleted: deleted, DryRun: input.DryRun}, nil
}
