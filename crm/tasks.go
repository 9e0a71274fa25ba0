// ABOUTME: Task operations with T-NNN sequence ids
// ABOUTME: Ids are max-seen + 1 at creation time and are not unique under concurrent writers
package crm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/harperreed/leadsheet/models"
	"github.com/harperreed/leadsheet/workbook"
)

var taskIDPattern = regexp.MustCompile(`^T-(\d+)$`)

// NextTaskID returns the id after the highest T-NNN id in the task rows
// (rows[0] is the header). Ids that do not fit the pattern are ignored.
func NextTaskID(rows [][]string) string {
	max := 0
	for i := 1; i < len(rows); i++ {
		m := taskIDPattern.FindStringSubmatch(cell(rows[i], 0))
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("T-%03d", max+1)
}

// TaskInput creates a task.
type TaskInput struct {
	Company     string          `json:"company"`
	Description string          `json:"description"`
	Due         string          `json:"due,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
}

func (s *Service) readTasks(ctx context.Context, conn *Conn) ([][]string, error) {
	if _, err := conn.RequireTab(TabTasks); err != nil {
		return nil, err
	}
	rows, err := conn.Workbook.Get(ctx, workbook.ColumnSpan(TabTasks, 0, auxWidth(TabTasks)-1))
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return rows, nil
}

// AddTask appends a not-started task. Priority defaults to medium.
func (s *Service) AddTask(ctx context.Context, in TaskInput) (models.Task, error) {
	if err := required("company", in.Company); err != nil {
		return models.Task{}, err
	}
	if err := required("description", in.Description); err != nil {
		return models.Task{}, err
	}
	if in.Due != "" && !models.ValidDue(in.Due) {
		return models.Task{}, fmt.Errorf("due date %q is not YYYY-MM-DD: %w", in.Due, ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.Valid(in.Priority, models.Priorities) {
		return models.Task{}, fmt.Errorf("priority %q: %w", in.Priority, ErrValidation)
	}

	conn, err := s.Connect(ctx)
	if err != nil {
		return models.Task{}, err
	}
	rows, err := s.readTasks(ctx, conn)
	if err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:          NextTaskID(rows),
		Company:     in.Company,
		Description: in.Description,
		Due:         in.Due,
		Priority:    in.Priority,
		Status:      models.TaskNotStarted,
		CreatedDate: s.today(),
	}
	row, err := AppendRow(ctx, conn.Workbook, TabTasks, auxWidth(TabTasks), encodeTask(task))
	if err != nil {
		return models.Task{}, err
	}
	task.Row = row
	s.log.Info("added task", "id", task.ID, "company", task.Company)
	return task, nil
}

// CompleteTask marks the task done and stamps its completion date.
func (s *Service) CompleteTask(ctx context.Context, id string) (models.Task, error) {
	if err := required("task id", id); err != nil {
		return models.Task{}, err
	}
	conn, err := s.Connect(ctx)
	if err != nil {
		return models.Task{}, err
	}
	rows, err := s.readTasks(ctx, conn)
	if err != nil {
		return models.Task{}, err
	}
	for i := 1; i < len(rows); i++ {
		if cell(rows[i], 0) != id {
			continue
		}
		task := decodeTask(i+1, rows[i])
		task.Status = models.TaskDone
		task.CompletedDate = s.today()
		err := UpdateCells(ctx, conn.Workbook, TabTasks, task.Row, map[int]string{
			taskColStatus:    string(task.Status),
			taskColCompleted: task.CompletedDate,
		})
		if err != nil {
			return models.Task{}, err
		}
		return task, nil
	}
	return models.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
}

// TaskFilter narrows ListTasks. Without Overdue, done tasks are hidden.
type TaskFilter struct {
	Company string
	Overdue bool
}

func (s *Service) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	conn, err := s.Connect(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.readTasks(ctx, conn)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []models.Task
	for i := 1; i < len(rows); i++ {
		task := decodeTask(i+1, rows[i])
		if task.ID == "" {
			continue
		}
		if filter.Company != "" && !Matches(task.Company, filter.Company) {
			continue
		}
		if filter.Overdue {
			if !task.Overdue(now) {
				continue
			}
		} else if task.Status == models.TaskDone {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}
