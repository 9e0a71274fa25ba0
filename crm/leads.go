// ABOUTME: Lead operations: report registration, status, score and pipeline updates, reads
// ABOUTME: Updates write only supplied fields and then run best-effort enrichment
package crm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harperreed/leadsheet/models"
	"github.com/harperreed/leadsheet/workbook"
)

// ReportInput registers a lead produced by report generation.
type ReportInput struct {
	Company   string `json:"company"`
	SiteURL   string `json:"site_url,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	ReportURL string `json:"report_url,omitempty"`
	Outreach  string `json:"outreach,omitempty"`
}

// RegisterReport appends a new lead row, creating the document if needed.
// Duplicate company names are allowed.
func (s *Service) RegisterReport(ctx context.Context, in ReportInput) (Result, error) {
	if err := required("company", in.Company); err != nil {
		return Result{}, err
	}
	conn, err := s.ConnectOrCreate(ctx)
	if err != nil {
		return Result{}, err
	}
	layout, err := conn.Layout()
	if err != nil {
		return Result{}, err
	}

	lead := models.Lead{
		CreatedDate: s.today(),
		Company:     in.Company,
		SiteURL:     in.SiteURL,
		Address:     in.Address,
		Phone:       in.Phone,
		ReportURL:   in.ReportURL,
		Outreach:    in.Outreach,
		Status:      models.StatusUnapproached,
		Stage:       models.StageLead,
	}
	tab := conn.LeadTab()
	row, err := AppendRow(ctx, conn.Workbook, tab.Title, layout.Width(), EncodeLead(layout, lead))
	if err != nil {
		return Result{}, err
	}
	res := Result{Company: in.Company, Row: row}

	p := s.propagator(conn)
	res.record("row_format", p.Run("row_format", func() error {
		if row < 2 {
			return fmt.Errorf("appended row %d is not a data row", row)
		}
		_, err := conn.Workbook.Apply(ctx, rowOps(tab.ID, row)...)
		return err
	}))
	res.record("activity", p.RecordActivity(ctx, models.Activity{
		Company:  in.Company,
		Type:     models.ActivityFormOutreach,
		Content:  "レポート生成・CRM登録: " + in.ReportURL,
		Recorder: models.RecorderAuto,
	}))
	return res, nil
}

// StatusUpdate changes the status and/or outreach message of a lead.
type StatusUpdate struct {
	Company  string        `json:"company"`
	Status   models.Status `json:"status,omitempty"`
	Outreach string        `json:"outreach,omitempty"`
}

func (s *Service) UpdateStatus(ctx context.Context, in StatusUpdate) (Result, error) {
	if err := required("company", in.Company); err != nil {
		return Result{}, err
	}
	fields := map[Field]string{}
	if in.Status != "" {
		fields[FieldStatus] = string(in.Status)
	}
	if in.Outreach != "" {
		fields[FieldOutreach] = in.Outreach
	}
	if len(fields) == 0 {
		return Result{}, fmt.Errorf("status or outreach message is required: %w", ErrValidation)
	}

	conn, res, err := s.updateLead(ctx, in.Company, fields)
	if err != nil {
		return Result{}, err
	}
	if in.Status != "" {
		res.record("activity", s.propagator(conn).RecordActivity(ctx, models.Activity{
			Company:  res.Company,
			Type:     models.ActivityStatusChange,
			Content:  "ステータス変更: " + string(in.Status),
			Recorder: models.RecorderManual,
		}))
	}
	return res, nil
}

// ScoreUpdate records a scoring result. Empty fields are left untouched;
// the scoring date is always stamped.
type ScoreUpdate struct {
	Company       string `json:"company"`
	Score         string `json:"score,omitempty"`
	Rank          string `json:"rank,omitempty"`
	ContactPath   string `json:"contact_path,omitempty"`
	ResponseNotes string `json:"response_notes,omitempty"`
	NextAction    string `json:"next_action,omitempty"`
	// SkipDerive suppresses the rank-derived status and stage write.
	SkipDerive bool `json:"skip_derive,omitempty"`
}

func (s *Service) UpdateScore(ctx context.Context, in ScoreUpdate) (Result, error) {
	if err := required("company", in.Company); err != nil {
		return Result{}, err
	}
	rank := models.Rank(in.Rank)
	if r, ok := models.ParseRank(in.Rank); ok {
		rank = r
	}
	fields := map[Field]string{}
	set := func(f Field, v string) {
		if v != "" {
			fields[f] = v
		}
	}
	set(FieldScore, in.Score)
	set(FieldRank, string(rank))
	set(FieldContactPath, in.ContactPath)
	set(FieldResponseNotes, in.ResponseNotes)
	set(FieldNextAction, in.NextAction)
	if len(fields) == 0 {
		return Result{}, fmt.Errorf("at least one scoring field is required: %w", ErrValidation)
	}
	fields[FieldScoredDate] = s.today()

	conn, res, err := s.updateLead(ctx, in.Company, fields)
	if err != nil {
		return Result{}, err
	}
	p := s.propagator(conn)
	res.record("derive_rank", p.DeriveFromRank(ctx, res.Row, rank, in.SkipDerive))

	var parts []string
	if in.Score != "" {
		parts = append(parts, "スコア: "+in.Score)
	}
	if rank != "" {
		parts = append(parts, "ランク: "+string(rank))
	}
	res.record("activity", p.RecordActivity(ctx, models.Activity{
		Company:  res.Company,
		Type:     models.ActivityScoring,
		Content:  "スコアリング更新: " + strings.Join(parts, " / "),
		Recorder: models.RecorderManual,
	}))
	return res, nil
}

// PipelineUpdate changes deal fields of a lead.
type PipelineUpdate struct {
	Company        string       `json:"company"`
	Stage          models.Stage `json:"stage,omitempty"`
	DealAmount     string       `json:"deal_amount,omitempty"`
	WinProbability string       `json:"win_probability,omitempty"`
	ExpectedClose  string       `json:"expected_close,omitempty"`
}

func (s *Service) UpdatePipeline(ctx context.Context, in PipelineUpdate) (Result, error) {
	if err := required("company", in.Company); err != nil {
		return Result{}, err
	}
	fields := map[Field]string{}
	if in.Stage != "" {
		fields[FieldStage] = string(in.Stage)
	}
	if in.DealAmount != "" {
		fields[FieldDealAmount] = in.DealAmount
	}
	if in.WinProbability != "" {
		fields[FieldWinProbability] = in.WinProbability
	}
	if in.ExpectedClose != "" {
		fields[FieldExpectedClose] = in.ExpectedClose
	}
	if len(fields) == 0 {
		return Result{}, fmt.Errorf("stage, deal amount, win probability or expected close is required: %w", ErrValidation)
	}

	conn, res, err := s.updateLead(ctx, in.Company, fields)
	if err != nil {
		return Result{}, err
	}
	res.record("activity", s.propagator(conn).RecordActivity(ctx, models.Activity{
		Company:  res.Company,
		Type:     models.ActivityStatusChange,
		Content:  "パイプライン更新: " + pipelineSummary(in),
		Recorder: models.RecorderManual,
	}))
	return res, nil
}

func pipelineSummary(in PipelineUpdate) string {
	var parts []string
	if in.Stage != "" {
		parts = append(parts, string(in.Stage))
	}
	if in.DealAmount != "" {
		parts = append(parts, "金額:"+in.DealAmount)
	}
	if in.WinProbability != "" {
		parts = append(parts, "確度:"+in.WinProbability+"%")
	}
	return strings.Join(parts, " / ")
}

// updateLead connects, locates the company row and writes fields in one batch.
func (s *Service) updateLead(ctx context.Context, company string, fields map[Field]string) (*Conn, Result, error) {
	conn, err := s.Connect(ctx)
	if err != nil {
		return nil, Result{}, err
	}
	layout, err := conn.Layout()
	if err != nil {
		return nil, Result{}, err
	}
	tab := conn.LeadTab().Title
	m, err := Locate(ctx, conn.Workbook, tab, company)
	if err != nil {
		return nil, Result{}, err
	}
	if err := UpdateLead(ctx, conn.Workbook, tab, layout, m.Row, fields); err != nil {
		return nil, Result{}, err
	}
	s.log.Debug("updated lead", "company", m.Company(), "row", m.Row, "fields", len(fields))
	return conn, Result{Company: m.Company(), Row: m.Row}, nil
}

// FindLead returns the last lead whose company matches.
func (s *Service) FindLead(ctx context.Context, company string) (models.Lead, error) {
	if err := required("company", company); err != nil {
		return models.Lead{}, err
	}
	conn, err := s.Connect(ctx)
	if err != nil {
		return models.Lead{}, err
	}
	layout, err := conn.Layout()
	if err != nil {
		return models.Lead{}, err
	}
	m, err := Locate(ctx, conn.Workbook, conn.LeadTab().Title, company)
	if err != nil {
		return models.Lead{}, err
	}
	return DecodeLead(layout, m.Row, m.Values), nil
}

// LeadFilter narrows ListLeads. The zero value lists every lead.
type LeadFilter struct {
	Company  string
	Unscored bool
}

// ListLeads returns leads in row order. Rows without a company are skipped.
func (s *Service) ListLeads(ctx context.Context, filter LeadFilter) ([]models.Lead, error) {
	conn, err := s.Connect(ctx)
	if err != nil {
		return nil, err
	}
	layout, err := conn.Layout()
	if err != nil {
		return nil, err
	}
	rows, err := conn.Workbook.Get(ctx, leadRange(conn.LeadTab().Title))
	if err != nil {
		return nil, fmt.Errorf("failed to read lead table: %w", err)
	}
	var leads []models.Lead
	for i := 1; i < len(rows); i++ {
		lead := DecodeLead(layout, i+1, rows[i])
		if lead.Company == "" {
			continue
		}
		if filter.Company != "" && !Matches(lead.Company, filter.Company) {
			continue
		}
		if filter.Unscored && lead.Score != "" {
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// DeleteRequest removes lead rows. Rows are always re-resolved against the
// current content: with Rows empty every row matching Company is removed;
// with Rows set each row must still hold a company matching Company.
type DeleteRequest struct {
	Company string
	Rows    []int
	DryRun  bool
}

// DeleteLeads deletes the resolved rows bottom-up in one structural batch
// and returns the deleted leads in ascending row order.
func (s *Service) DeleteLeads(ctx context.Context, req DeleteRequest) ([]models.Lead, error) {
	if err := required("company", req.Company); err != nil {
		return nil, err
	}
	for _, r := range req.Rows {
		if r < 2 {
			return nil, fmt.Errorf("row %d is not a data row: %w", r, ErrValidation)
		}
	}
	conn, err := s.Connect(ctx)
	if err != nil {
		return nil, err
	}
	layout, err := conn.Layout()
	if err != nil {
		return nil, err
	}
	tab := conn.LeadTab()
	rows, err := conn.Workbook.Get(ctx, leadRange(tab.Title))
	if err != nil {
		return nil, fmt.Errorf("failed to read lead table: %w", err)
	}

	targets := map[int]models.Lead{}
	if len(req.Rows) == 0 {
		for _, m := range AllMatches(rows, int(FieldCompany), req.Company) {
			lead := DecodeLead(layout, m.Row, m.Values)
			if lead.Company != "" {
				targets[m.Row] = lead
			}
		}
	}
	for _, r := range req.Rows {
		var values []string
		if r <= len(rows) {
			values = rows[r-1]
		}
		lead := DecodeLead(layout, r, values)
		if lead.Company == "" || !Matches(lead.Company, req.Company) {
			return nil, fmt.Errorf("row %d holds %q, not %q: %w", r, lead.Company, req.Company, ErrValidation)
		}
		targets[r] = lead
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("rows for %q: %w", req.Company, ErrNotFound)
	}

	order := make([]int, 0, len(targets))
	for r := range targets {
		order = append(order, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(order)))

	deleted := make([]models.Lead, len(order))
	for i, r := range order {
		deleted[len(order)-1-i] = targets[r]
	}
	if req.DryRun {
		return deleted, nil
	}

	ops := make([]workbook.Op, len(order))
	for i, r := range order {
		ops[i] = workbook.DeleteRows{TabID: tab.ID, Start: r - 1, End: r}
	}
	if _, err := conn.Workbook.Apply(ctx, ops...); err != nil {
		return nil, fmt.Errorf("failed to delete rows: %w", err)
	}
	s.log.Info("deleted lead rows", "company", req.Company, "count", len(order))
	return deleted, nil
}
