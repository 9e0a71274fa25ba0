// ABOUTME: Tests for the CRM MCP tool, resource and prompt handlers
// ABOUTME: Runs handlers against an in-memory workbook and over an in-memory MCP session
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/models"
	"github.com/harperreed/leadsheet/workbook"
)

var testNow = time.Date(2025, 3, 7, 9, 5, 0, 0, time.UTC)

func setupHandlers(t *testing.T) *Handlers {
	t.Helper()
	logger := log.New(io.Discard)
	svc := crm.NewService(
		crm.NewResolver(workbook.NewMemory(), crm.Settings{FolderID: "folder-crm"}),
		crm.WithClock(func() time.Time { return testNow }),
		crm.WithLogger(logger),
	)
	return New(svc, logger)
}

func registerLead(t *testing.T, h *Handlers, company string) MutationOutput {
	t.Helper()
	_, out, err := h.RegisterReport(context.Background(), nil, RegisterReportInput{
		Company:   company,
		ReportURL: "https://reports.example.com/" + company,
	})
	require.NoError(t, err)
	return out
}

func TestRegisterReportThenFind(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	out := registerLead(t, h, "Example Corp")
	assert.Equal(t, "Example Corp", out.Company)
	assert.Equal(t, 2, out.Row)
	assert.Equal(t, "applied", out.Outcomes["activity"])

	_, lead, err := h.FindLead(ctx, nil, CompanyInput{Company: "Example"})
	require.NoError(t, err)
	assert.Equal(t, "Example Corp", lead.Company)
	assert.Equal(t, models.StatusUnapproached, lead.Status)
	assert.Equal(t, models.StageLead, lead.Stage)
	assert.Equal(t, "25_03_07", lead.CreatedDate)
}

func TestUpdateScoreDerivesStatus(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()
	registerLead(t, h, "Example Corp")

	_, out, err := h.UpdateScore(ctx, nil, UpdateScoreInput{Company: "Example", Score: "90", Rank: "a"})
	require.NoError(t, err)
	assert.Equal(t, "applied", out.Outcomes["derive_rank"])

	_, lead, err := h.FindLead(ctx, nil, CompanyInput{Company: "Example Corp"})
	require.NoError(t, err)
	assert.Equal(t, models.RankA, lead.Rank)
	assert.Equal(t, models.StatusRankAActive, lead.Status)
	assert.Equal(t, models.StageMeeting, lead.Stage)
}

func TestUpdateToolsRejectUnknownEnums(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()
	registerLead(t, h, "Example Corp")

	_, _, err := h.UpdateStatus(ctx, nil, UpdateStatusInput{Company: "Example", Status: "done"})
	assert.Error(t, err)

	_, _, err = h.UpdatePipeline(ctx, nil, UpdatePipelineInput{Company: "Example", Stage: "won"})
	assert.Error(t, err)

	_, _, err = h.LogActivity(ctx, nil, LogActivityInput{Company: "Example", Type: "tweet", Content: "hi"})
	assert.Error(t, err)
}

func TestUpdateStatusMissingLead(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()
	registerLead(t, h, "Example Corp")

	_, _, err := h.UpdateStatus(ctx, nil, UpdateStatusInput{Company: "Globex", Status: string(models.StatusApproached)})
	assert.ErrorIs(t, err, crm.ErrNotFound)
}

func TestListLeadsNeverNil(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()
	registerLead(t, h, "Example Corp")

	_, out, err := h.ListLeads(ctx, nil, ListLeadsInput{Company: "Globex"})
	require.NoError(t, err)
	assert.NotNil(t, out.Leads)
	assert.Empty(t, out.Leads)

	_, out, err = h.ListLeads(ctx, nil, ListLeadsInput{Unscored: true})
	require.NoError(t, err)
	assert.Len(t, out.Leads, 1)
}

func TestTaskTools(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()
	registerLead(t, h, "Example Corp")

	_, task, err := h.AddTask(ctx, nil, AddTaskInput{Company: "Example Corp", Description: "見積送付", Due: "2025-03-01"})
	require.NoError(t, err)
	assert.Equal(t, "T-001", task.ID)
	assert.Equal(t, models.PriorityMedium, task.Priority)

	_, list, err := h.ListTasks(ctx, nil, ListTasksInput{Overdue: true})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)

	_, done, err := h.CompleteTask(ctx, nil, CompleteTaskInput{ID: "T-001"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, done.Status)
	assert.Equal(t, "25_03_07", done.CompletedDate)

	_, list, err = h.ListTasks(ctx, nil, ListTasksInput{Overdue: true})
	require.NoError(t, err)
	assert.Empty(t, list.Tasks)
}

func TestLogActivityAndList(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()
	registerLead(t, h, "Example Corp")

	_, out, err := h.LogActivity(ctx, nil, LogActivityInput{
		Company: "Example Corp",
		Type:    string(models.ActivityCall),
		Content: "担当者と通話",
	})
	require.NoError(t, err)
	assert.Equal(t, "applied", out.Outcomes["last_contact"])

	_, list, err := h.ListActivities(ctx, nil, CompanyInput{Company: "Example"})
	require.NoError(t, err)
	require.Len(t, list.Activities, 2)
	assert.Equal(t, models.ActivityFormOutreach, list.Activities[0].Type)
	assert.Equal(t, "担当者と通話", list.Activities[1].Content)
}

func TestMigrateSchemaDryRunOnCurrentDocument(t *testing.T) {
	h := setupHandlers(t)
	registerLead(t, h, "Example Corp")

	_, out, err := h.MigrateSchema(context.Background(), nil, MigrateSchemaInput{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "S22", out.Initial)
	assert.Equal(t, "S22", out.Final)
	assert.Empty(t, out.Steps)
	assert.True(t, out.DryRun)
}

func TestReadResource(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()
	registerLead(t, h, "Example Corp")

	res, err := h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uriLeads}})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	var leads []models.Lead
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "Example Corp", leads[0].Company)

	_, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "crm://nope"}})
	assert.Error(t, err)
	_, err = h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "http://leads"}})
	assert.Error(t, err)
}

func TestLeadSummaryPrompt(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()
	registerLead(t, h, "Example Corp")

	res, err := h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
		Name:      "lead-summary",
		Arguments: map[string]string{"company": "Example"},
	}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Company: Example Corp")
	assert.Contains(t, text, "レポート生成・CRM登録")

	_, err = h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "lead-summary"}})
	assert.Error(t, err)
}

func TestToolsOverMCPSession(t *testing.T) {
	h := setupHandlers(t)
	registerLead(t, h, "Example Corp")

	impl := &mcp.Implementation{Name: "leadsheet-test", Version: "0.0.1"}
	server := mcp.NewServer(impl, nil)
	h.Register(server)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = server.Run(ctx, serverT) }()

	session, err := mcp.NewClient(impl, nil).Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.Contains(t, names, "find_lead")
	assert.Contains(t, names, "update_score")
	assert.Contains(t, names, "migrate_schema")
	assert.Len(t, names, 15)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "find_lead",
		Arguments: map[string]any{"company": "Example"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text := result.Content[0].(*mcp.TextContent).Text
	assert.True(t, strings.Contains(text, "Example Corp"), text)
}
