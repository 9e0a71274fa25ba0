// ABOUTME: Activity and task MCP tool handlers
// ABOUTME: Implements log_activity, list_activities, add_task, complete_task and list_tasks
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/models"
)

type LogActivityInput struct {
	Company string `json:"company" jsonschema:"Company name (required)"`
	Type    string `json:"type" jsonschema:"Activity type: メール送信, メール返信受信, 電話, 訪問, スコアリング更新, ステータス変更, フォーム営業, その他"`
	Person  string `json:"person,omitempty" jsonschema:"Person contacted"`
	Content string `json:"content" jsonschema:"What happened (required)"`
	Result  string `json:"result,omitempty" jsonschema:"Outcome of the activity"`
}

func (h *Handlers) LogActivity(ctx context.Context, _ *mcp.CallToolRequest, input LogActivityInput) (*mcp.CallToolResult, MutationOutput, error) {
	if input.Type != "" && !models.Valid(models.ActivityType(input.Type), models.ActivityTypes) {
		return nil, MutationOutput{}, fmt.Errorf("invalid activity type: %s", input.Type)
	}
	res, err := h.svc.LogActivity(ctx, crm.ActivityInput{
		Company: input.Company,
		Type:    models.ActivityType(input.Type),
		Person:  input.Person,
		Content: input.Content,
		Result:  input.Result,
	})
	if err != nil {
		return nil, MutationOutput{}, fmt.Errorf("failed to log activity: %w", err)
	}
	return nil, mutationOutput(res), nil
}

type ActivitiesOutput struct {
	Activities []models.Activity `json:"activities"`
}

func (h *Handlers) ListActivities(ctx context.Context, _ *mcp.CallToolRequest, input CompanyInput) (*mcp.CallToolResult, ActivitiesOutput, error) {
	activities, err := h.svc.ListActivities(ctx, input.Company)
	if err != nil {
		return nil, ActivitiesOutput{}, fmt.Errorf("failed to list activities: %w", err)
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	return nil, ActivitiesOutput{Activities: activities}, nil
}

type AddTaskInput struct {
	Company     string `json:"company" jsonschema:"Company name (required)"`
	Description string `json:"description" jsonschema:"What needs doing (required)"`
	Due         string `json:"due,omitempty" jsonschema:"Due date (YYYY-MM-DD)"`
	Priority    string `json:"priority,omitempty" jsonschema:"Priority 高, 中 or 低 (default 中)"`
}

func (h *Handlers) AddTask(ctx context.Context, _ *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, models.Task, error) {
	task, err := h.svc.AddTask(ctx, crm.TaskInput{
		Company:     input.Company,
		Description: input.Description,
		Due:         input.Due,
		Priority:    models.Priority(input.Priority),
	})
	if err != nil {
		return nil, models.Task{}, fmt.Errorf("failed to add task: %w", err)
	}
	return nil, task, nil
}

type CompleteTaskInput struct {
	ID string `json:"id" jsonschema:"Task id such as T-001 (required)"`
}

func (h *Handlers) CompleteTask(ctx context.Context, _ *mcp.CallToolRequest, input CompleteTaskInput) (*mcp.CallToolResult, models.Task, error) {
	task, err := h.svc.CompleteTask(ctx, input.ID)
	if err != nil {
		return nil, models.Task{}, fmt.Errorf("failed to complete task: %w", err)
	}
	return nil, task, nil
}

type ListTasksInput struct {
	Company string `json:"company,omitempty" jsonschema:"Only tasks whose company matches"`
	Overdue bool   `json:"overdue,omitempty" jsonschema:"Only open tasks due before today"`
}

type TasksOutput struct {
	Tasks []models.Task `json:"tasks"`
}

func (h *Handlers) ListTasks(ctx context.Context, _ *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, TasksOutput, error) {
	tasks, err := h.svc.ListTasks(ctx, crm.TaskFilter{Company: input.Company, Overdue: input.Overdue})
	if err != nil {
		return nil, TasksOutput{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return nil, TasksOutput{Tasks: tasks}, nil
}
