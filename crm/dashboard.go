// ABOUTME: Dashboard KPI block written as live formulas over the lead table
// ABOUTME: Counts by rank, pipeline counts and sums, and status counts
package crm

import (
	"context"
	"fmt"

	"github.com/harperreed/leadsheet/models"
	"github.com/harperreed/leadsheet/workbook"
)

// DashboardRows builds the KPI formula block for a lead tab.
func DashboardRows(leadTab string) [][]string {
	t := workbook.QuoteTab(leadTab)
	col := func(f Field) string {
		c := workbook.ColumnLetter(int(f))
		return fmt.Sprintf("%s!%s:%s", t, c, c)
	}
	span := func(f Field) string {
		c := workbook.ColumnLetter(int(f))
		return fmt.Sprintf("%s!%s2:%s%d", t, c, c, dataRowLimit)
	}
	countIf := func(f Field, v string) string {
		return fmt.Sprintf(`=COUNTIF(%s,"%s")`, col(f), v)
	}

	rows := [][]string{
		{"リード管理ダッシュボード"},
		{},
		{"総リード数", "Aランク", "Bランク", "Cランク", "未スコア"},
		{
			fmt.Sprintf("=COUNTA(%s)-1", col(FieldCompany)),
			countIf(FieldRank, "A"),
			countIf(FieldRank, "B"),
			countIf(FieldRank, "C"),
			fmt.Sprintf("=COUNTA(%s)-COUNTA(%s)", col(FieldCompany), col(FieldRank)),
		},
		{},
		{"パイプライン別集計"},
		{"ステージ", "件数", "金額合計", "加重金額"},
	}
	for _, stage := range models.Stages {
		v := string(stage)
		row := []string{
			v,
			countIf(FieldStage, v),
			fmt.Sprintf(`=SUMIF(%s,"%s",%s)`, col(FieldStage), v, col(FieldDealAmount)),
			"",
		}
		if stage != models.StageWon && stage != models.StageLost {
			row[3] = fmt.Sprintf(`=SUMPRODUCT((%s="%s")*(%s)*(%s/100))`,
				span(FieldStage), v, span(FieldDealAmount), span(FieldWinProbability))
		}
		rows = append(rows, row)
	}
	rows = append(rows, []string{}, []string{"ステータス別集計"}, []string{"ステータス", "件数"})
	for _, status := range models.Statuses {
		rows = append(rows, []string{string(status), countIf(FieldStatus, string(status))})
	}
	return rows
}

// InitDashboard writes the KPI block into the dashboard tab and styles it.
func (s *Service) InitDashboard(ctx context.Context) error {
	conn, err := s.Connect(ctx)
	if err != nil {
		return err
	}
	dash, err := conn.RequireTab(TabDashboard)
	if err != nil {
		return err
	}
	rows := DashboardRows(conn.LeadTab().Title)
	if err := conn.Workbook.Update(ctx, workbook.Cell(TabDashboard, 0, 1), rows); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	if _, err := conn.Workbook.Apply(ctx, dashboardOps(dash.ID)...); err != nil {
		return fmt.Errorf("failed to style dashboard: %w", err)
	}
	return nil
}
