// ABOUTME: End-to-end tests for CRM operations against the in-memory backend
// ABOUTME: Covers connection errors, lead updates, best-effort propagation and deletes
package crm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadsheet/models"
	"github.com/harperreed/leadsheet/workbook"
)

func TestResolverNotConfigured(t *testing.T) {
	ctx := context.Background()
	_, err := NewResolver(nil, Settings{FolderID: testFolder}).Resolve(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewResolver(workbook.NewMemory(), Settings{}).Resolve(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestResolverScopesToFolder(t *testing.T) {
	mem := workbook.NewMemory()
	mem.AddDocument(DefaultDocumentName, "some-other-folder", TabLeads)

	_, err := NewResolver(mem, Settings{FolderID: testFolder}).Resolve(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveOrCreate(t *testing.T) {
	mem := workbook.NewMemory()
	r := NewResolver(mem, Settings{FolderID: testFolder})

	conn, created, err := r.ResolveOrCreate(context.Background())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{testFolder}, mem.Parents(conn.DocumentID))
	assert.Equal(t, TabLeads, conn.LeadTab().Title)

	again, created, err := r.ResolveOrCreate(context.Background())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conn.DocumentID, again.DocumentID)
}

func TestRegisterThenScore(t *testing.T) {
	mem := workbook.NewMemory()
	svc := newTestService(mem)
	ctx := context.Background()

	res, err := svc.RegisterReport(ctx, ReportInput{
		Company:   "Example Corp",
		SiteURL:   "https://example.com",
		ReportURL: "https://reports.example/1",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Row)
	assert.True(t, res.Outcomes["activity"].Applied())
	assert.True(t, res.Outcomes["row_format"].Applied())

	res, err = svc.UpdateScore(ctx, ScoreUpdate{Company: "Example", Score: "80", Rank: "a"})
	require.NoError(t, err)
	assert.Equal(t, "Example Corp", res.Company)
	assert.True(t, res.Outcomes["derive_rank"].Applied())

	lead, err := svc.FindLead(ctx, "Example Corp")
	require.NoError(t, err)
	assert.Equal(t, "80", lead.Score)
	assert.Equal(t, models.RankA, lead.Rank)
	assert.Equal(t, models.StatusRankAActive, lead.Status)
	assert.Equal(t, models.StageMeeting, lead.Stage)
	assert.Equal(t, "25_03_07", lead.ScoredDate)
	assert.Equal(t, "25_03_07", lead.LastContactDate)
	assert.Equal(t, "25_03_07", lead.CreatedDate)

	acts, err := svc.ListActivities(ctx, "Example")
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, models.ActivityFormOutreach, acts[0].Type)
	assert.Equal(t, models.RecorderAuto, acts[0].Recorder)
	assert.Equal(t, models.ActivityScoring, acts[1].Type)
	assert.Equal(t, "スコアリング更新: スコア: 80 / ランク: A", acts[1].Content)
	assert.Equal(t, "25_03_07 09:05", acts[1].Timestamp)
}

func TestUpdateScoreUnknownRankSkipsDerivation(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", map[Field]string{FieldStatus: string(models.StatusApproached)}))
	svc := newTestService(mem)

	res, err := svc.UpdateScore(context.Background(), ScoreUpdate{Company: "Acme", Rank: "S"})
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Outcomes["derive_rank"].Kind)

	row := mem.Values(doc, TabLeads)[1]
	assert.Equal(t, "S", row[FieldRank])
	assert.Equal(t, string(models.StatusApproached), row[FieldStatus])
	assert.Equal(t, "", cell(row, int(FieldStage)))
}

func TestUpdateScoreSuppressedDerivation(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil))
	svc := newTestService(mem)

	res, err := svc.UpdateScore(context.Background(), ScoreUpdate{Company: "Acme", Rank: "B", SkipDerive: true})
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Outcomes["derive_rank"].Kind)
	assert.Equal(t, "", cell(mem.Values(doc, TabLeads)[1], int(FieldStatus)))
}

func TestUpdateScoreRequiresAField(t *testing.T) {
	mem := workbook.NewMemory()
	seedDoc(t, mem, leadRow("Acme", nil))
	_, err := newTestService(mem).UpdateScore(context.Background(), ScoreUpdate{Company: "Acme"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateStatusTargetsLastMatch(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil), leadRow("Acme Holdings", nil))
	svc := newTestService(mem)

	res, err := svc.UpdateStatus(context.Background(), StatusUpdate{Company: "Acme", Status: models.StatusFormDone})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Row)

	values := mem.Values(doc, TabLeads)
	assert.Equal(t, "", cell(values[1], int(FieldStatus)))
	assert.Equal(t, string(models.StatusFormDone), cell(values[2], int(FieldStatus)))
}

func TestUpdateStatusErrors(t *testing.T) {
	mem := workbook.NewMemory()
	seedDoc(t, mem, leadRow("Acme", nil))
	svc := newTestService(mem)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, StatusUpdate{Company: "Acme"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(ctx, StatusUpdate{Company: "Gamma", Status: models.StatusFormDone})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = newTestService(workbook.NewMemory()).UpdateStatus(ctx, StatusUpdate{Company: "Acme", Status: models.StatusFormDone})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPropagationFailureKeepsPrimaryWrite(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil))
	svc := newTestService(mem)
	mem.FailWhen(func(c workbook.Call) error {
		if c.Method == "append" {
			return errors.New("quota exceeded")
		}
		return nil
	})

	res, err := svc.UpdateStatus(context.Background(), StatusUpdate{Company: "Acme", Status: models.StatusApproached})
	require.NoError(t, err)
	assert.Equal(t, Failed, res.Outcomes["activity"].Kind)
	assert.ErrorIs(t, res.Outcomes["activity"].Err, ErrRemoteCallFailed)
	assert.Equal(t, string(models.StatusApproached), cell(mem.Values(doc, TabLeads)[1], int(FieldStatus)))
}

func TestLogActivityWithFailingLastContact(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil))
	svc := newTestService(mem)
	mem.FailWhen(func(c workbook.Call) error {
		if c.Method == "batch_update" {
			return errors.New("backend unavailable")
		}
		return nil
	})

	res, err := svc.LogActivity(context.Background(), ActivityInput{
		Company: "Acme",
		Type:    models.ActivityCall,
		Content: "初回電話",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Row)
	assert.Equal(t, Failed, res.Outcomes["last_contact"].Kind)

	acts := mem.Values(doc, TabActivities)
	require.Len(t, acts, 2)
	assert.Equal(t, string(models.RecorderManual), acts[1][6])
}

func TestLogActivityValidation(t *testing.T) {
	svc := newTestService(workbook.NewMemory())
	ctx := context.Background()
	_, err := svc.LogActivity(ctx, ActivityInput{Company: "Acme", Content: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.LogActivity(ctx, ActivityInput{Company: "Acme", Type: models.ActivityCall})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordActivitySkipsWithoutActivityTab(t *testing.T) {
	mem := workbook.NewMemory()
	doc := mem.AddDocument(DefaultDocumentName, testFolder, TabLeads)
	mem.SetValues(doc, TabLeads, [][]string{LeadHeaders(), leadRow("Acme", nil)})
	conn := resolveConn(t, mem)
	conn.Schema = SchemaS22
	mem.ResetCalls()

	p := NewPropagator(conn, func() time.Time { return testNow }, quietLogger())
	out := p.RecordActivity(context.Background(), models.Activity{Company: "Acme", Type: models.ActivityOther})
	assert.Equal(t, Skipped, out.Kind)
	assert.Empty(t, mem.Calls())
}

func TestGuardRecoversPanics(t *testing.T) {
	mem := workbook.NewMemory()
	seedDoc(t, mem)
	p := NewPropagator(resolveConn(t, mem), nil, quietLogger())

	out := p.Run("explode", func() error { panic("boom") })
	assert.Equal(t, Failed, out.Kind)
	assert.Contains(t, out.String(), "boom")
}

func TestListLeadsFilters(t *testing.T) {
	mem := workbook.NewMemory()
	seedDoc(t, mem,
		leadRow("Acme", map[Field]string{FieldScore: "55"}),
		leadRow("", map[Field]string{FieldAddress: "orphan"}),
		leadRow("Beta", nil),
	)
	svc := newTestService(mem)

	leads, err := svc.ListLeads(context.Background(), LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, 4, leads[1].Row)

	unscored, err := svc.ListLeads(context.Background(), LeadFilter{Unscored: true})
	require.NoError(t, err)
	require.Len(t, unscored, 1)
	assert.Equal(t, "Beta", unscored[0].Company)
}

func TestUserColumnsPastLatestLayout(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem)
	mem.SetValues(doc, TabLeads, [][]string{
		append(LeadHeaders(), "メモ"),
		append(leadRow("Acme", nil), "要確認"),
	})
	svc := newTestService(mem)
	ctx := context.Background()

	lead, err := svc.FindLead(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, 2, lead.Row)

	_, err = svc.UpdateStatus(ctx, StatusUpdate{Company: "Acme", Status: models.StatusApproached})
	require.NoError(t, err)

	row := mem.Values(doc, TabLeads)[1]
	assert.Equal(t, string(models.StatusApproached), cell(row, int(FieldStatus)))
	assert.Equal(t, "要確認", cell(row, int(fieldCount)))

	report, err := svc.Migrate(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, SchemaS22, report.Initial)
	assert.Empty(t, report.Steps)
}

func TestDeleteLeadsByCompany(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil), leadRow("Beta", nil), leadRow("Acme", nil))
	svc := newTestService(mem)
	ctx := context.Background()

	preview, err := svc.DeleteLeads(ctx, DeleteRequest{Company: "Acme", DryRun: true})
	require.NoError(t, err)
	require.Len(t, preview, 2)
	assert.Len(t, mem.Values(doc, TabLeads), 4)

	deleted, err := svc.DeleteLeads(ctx, DeleteRequest{Company: "Acme"})
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	assert.Equal(t, 2, deleted[0].Row)
	assert.Equal(t, 4, deleted[1].Row)

	values := mem.Values(doc, TabLeads)
	require.Len(t, values, 2)
	assert.Equal(t, "Beta", values[1][FieldCompany])

	var deletes []workbook.DeleteRows
	for _, op := range mem.Ops(doc) {
		if d, ok := op.(workbook.DeleteRows); ok {
			deletes = append(deletes, d)
		}
	}
	require.Len(t, deletes, 2)
	assert.Equal(t, 3, deletes[0].Start)
	assert.Equal(t, 1, deletes[1].Start)
}

func TestDeleteLeadsChecksExplicitRows(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil), leadRow("Beta", nil))
	svc := newTestService(mem)
	ctx := context.Background()

	_, err := svc.DeleteLeads(ctx, DeleteRequest{Company: "Acme", Rows: []int{3}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.DeleteLeads(ctx, DeleteRequest{Company: "Acme", Rows: []int{1}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.DeleteLeads(ctx, DeleteRequest{Company: "Gamma"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, mem.Values(doc, TabLeads), 3)

	deleted, err := svc.DeleteLeads(ctx, DeleteRequest{Company: "Beta", Rows: []int{3}})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Len(t, mem.Values(doc, TabLeads), 2)
}

func TestUpdatePipeline(t *testing.T) {
	mem := workbook.NewMemory()
	doc := seedDoc(t, mem, leadRow("Acme", nil))
	svc := newTestService(mem)

	res, err := svc.UpdatePipeline(context.Background(), PipelineUpdate{
		Company:        "Acme",
		Stage:          models.StageProposal,
		DealAmount:     "1200000",
		WinProbability: "40",
	})
	require.NoError(t, err)
	assert.True(t, res.Outcomes["activity"].Applied())

	row := mem.Values(doc, TabLeads)[1]
	assert.Equal(t, string(models.StageProposal), row[FieldStage])
	assert.Equal(t, "1200000", row[FieldDealAmount])
	assert.Equal(t, "40", row[FieldWinProbability])

	acts := mem.Values(doc, TabActivities)
	require.Len(t, acts, 2)
	assert.Equal(t, "パイプライン更新: 提案 / 金額:1200000 / 確度:40%", acts[1][4])
}
