// ABOUTME: Tests for task ids, completion, listing, contacts and the dashboard
// ABOUTME: Uses seeded auxiliary tabs on the in-memory backend
package crm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadsheet/models"
	"github.com/harperreed/leadsheet/workbook"
)

func TestNextTaskID(t *testing.T) {
	header := []string{"タスクID"}
	assert.Equal(t, "T-001", NextTaskID(nil))
	assert.Equal(t, "T-001", NextTaskID([][]string{header}))
	assert.Equal(t, "T-008", NextTaskID([][]string{header, {"T-002"}, {"T-007"}, {"X-99"}, {""}}))
	assert.Equal(t, "T-1000", NextTaskID([][]string{header, {"T-999"}}))
}

func seedTasks(t *testing.T, mem *workbook.Memory, doc string, tasks ...[]string) {
	t.Helper()
	mem.SetValues(doc, TabTasks, append([][]string{auxTables[2].headers}, tasks...))
}

func TestAddTask(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem)
	svc := newTestService(mem)
	ctx := context.Background()

	first, err := svc.AddTask(ctx, TaskInput{Company: "Acme", Description: "見積書送付", Due: "2025-03-10"})
	require.NoError(t, err)
	assert.Equal(t, "T-001", first.ID)
	assert.Equal(t, models.PriorityMedium, first.Priority)
	assert.Equal(t, models.TaskNotStarted, first.Status)
	assert.Equal(t, 2, first.Row)

	second, err := svc.AddTask(ctx, TaskInput{Company: "Beta", Description: "電話", Priority: models.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, "T-002", second.ID)

	rows := mem.Values(doc, TabTasks)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"T-001", "Acme", "見積書送付", "2025-03-10", "中", "未着手", "25_03_07"}, rows[1])
}

func TestAddTaskValidation(t *testing.T) {
	mem := workbook.NewMemory()
	seedDoc(t, mem)
	svc := newTestService(mem)
	ctx := context.Background()

	_, err := svc.AddTask(ctx, TaskInput{Description: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddTask(ctx, TaskInput{Company: "Acme", Description: "x", Due: "2025/03/10"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddTask(ctx, TaskInput{Company: "Acme", Description: "x", Priority: "urgent"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompleteTask(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem)
	seedTasks(t, mem, doc,
		[]string{"T-001", "Acme", "電話", "2025-03-01", "高", "未着手", "25_02_20"},
		[]string{"T-002", "Beta", "訪問", "", "中", "進行中", "25_02_21"},
	)
	svc := newTestService(mem)

	task, err := svc.CompleteTask(context.Background(), "T-002")
	require.NoError(t, err)
	assert.Equal(t, 3, task.Row)
	assert.Equal(t, models.TaskDone, task.Status)

	rows := mem.Values(doc, TabTasks)
	assert.Equal(t, []string{"T-002", "Beta", "訪問", "", "中", "完了", "25_02_21", "25_03_07"}, rows[2])
	assert.Equal(t, "未着手", rows[1][5])

	_, err = svc.CompleteTask(context.Background(), "T-00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTasks(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem)
	seedTasks(t, mem, doc,
		[]string{"T-001", "Acme", "電話", "2025-03-01", "高", "未着手"},
		[]string{"T-002", "Acme", "訪問", "2025-03-01", "中", "完了"},
		[]string{"T-003", "Beta", "資料", "2025-03-20", "低", "進行中"},
		[]string{"", "Beta", "idless"},
		[]string{"T-004", "Beta", "期限なし", "", "中", "未着手"},
	)
	svc := newTestService(mem)
	ctx := context.Background()

	ids := func(tasks []models.Task) []string {
		var out []string
		for _, task := range tasks {
			out = append(out, task.ID)
		}
		return out
	}

	open, err := svc.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"T-001", "T-003", "T-004"}, ids(open))

	overdue, err := svc.ListTasks(ctx, TaskFilter{Overdue: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"T-001"}, ids(overdue))

	beta, err := svc.ListTasks(ctx, TaskFilter{Company: "Beta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"T-003", "T-004"}, ids(beta))
}

func TestAddContactFillsLead(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("株式会社Acme", nil))
	svc := newTestService(mem)

	contact, res, err := svc.AddContact(context.Background(), ContactInput{
		Company: "Acme",
		Name:    "山田太郎",
		Title:   "営業部長",
		Email:   "yamada@acme.example",
		Keyman:  models.KeymanDecisionMaker,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(contact.ID, "C-"))
	assert.Equal(t, 2, contact.Row)
	assert.True(t, res.Outcomes["lead_contact"].Applied())

	lead := mem.Values(doc, TabLeads)[1]
	assert.Equal(t, "山田太郎", lead[FieldContactName])
	assert.Equal(t, "yamada@acme.example", lead[FieldContactEmail])
	assert.Equal(t, "営業部長", lead[FieldContactDept])

	contacts := mem.Values(doc, TabContacts)
	require.Len(t, contacts, 2)
	assert.Equal(t, "決裁者", contacts[1][6])
}

func TestAddContactWithoutLead(t *testing.T) {
	mem := workbook.NewMemory()
	seedDoc(t, mem)
	svc := newTestService(mem)

	_, res, err := svc.AddContact(context.Background(), ContactInput{Company: "Acme", Name: "山田"})
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Outcomes["lead_contact"].Kind)

	_, _, err = svc.AddContact(context.Background(), ContactInput{Company: "Acme", Name: "山田", Keyman: "boss"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDashboardRows(t *testing.T) {
	rows := DashboardRows(TabLeads)
	assert.Equal(t, "=COUNTA('リスト'!B:B)-1", rows[3][0])
	assert.Equal(t, `=COUNTIF('リスト'!J:J,"A")`, rows[3][1])
	assert.Equal(t, "パイプライン別集計", rows[5][0])
	assert.Equal(t, string(models.StageLead), rows[7][0])
	assert.Equal(t, "", rows[7+5][3], "won deals carry no weighted amount")
	assert.Equal(t, "ステータス別集計", rows[15][0])
	assert.Len(t, rows, 17+len(models.Statuses))
}

func TestInitDashboard(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem)
	svc := newTestService(mem)

	require.NoError(t, svc.InitDashboard(context.Background()))
	values := mem.Values(doc, TabDashboard)
	assert.Equal(t, "リード管理ダッシュボード", values[0][0])
	assert.NotEmpty(t, mem.Ops(doc))
}
