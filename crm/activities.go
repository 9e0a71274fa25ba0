// ABOUTME: Activity log operations
// ABOUTME: Manual activity rows are primary writes; the last-contact stamp is best-effort
package crm

import (
	"context"
	"fmt"

	"github.com/harperreed/leadsheet/models"
	"github.com/harperreed/leadsheet/workbook"
)

// ActivityInput is a manually logged activity.
type ActivityInput struct {
	Company string              `json:"company"`
	Type    models.ActivityType `json:"type"`
	Person  string              `json:"person,omitempty"`
	Content string              `json:"content"`
	Result  string              `json:"result,omitempty"`
}

// LogActivity appends an activity row and stamps the lead's last-contact date.
func (s *Service) LogActivity(ctx context.Context, in ActivityInput) (Result, error) {
	if err := required("company", in.Company); err != nil {
		return Result{}, err
	}
	if err := required("type", string(in.Type)); err != nil {
		return Result{}, err
	}
	if err := required("content", in.Content); err != nil {
		return Result{}, err
	}
	conn, err := s.Connect(ctx)
	if err != nil {
		return Result{}, err
	}
	if _, err := conn.RequireTab(TabActivities); err != nil {
		return Result{}, err
	}

	activity := models.Activity{
		Timestamp: models.FormatStamp(s.now()),
		Company:   in.Company,
		Type:      in.Type,
		Person:    in.Person,
		Content:   in.Content,
		Result:    in.Result,
		Recorder:  models.RecorderManual,
	}
	row, err := AppendRow(ctx, conn.Workbook, TabActivities, auxWidth(TabActivities), encodeActivity(activity))
	if err != nil {
		return Result{}, err
	}
	res := Result{Company: in.Company, Row: row}
	res.record("last_contact", s.propagator(conn).TouchLastContact(ctx, in.Company))
	return res, nil
}

// ListActivities returns the activity rows whose company matches.
func (s *Service) ListActivities(ctx context.Context, company string) ([]models.Activity, error) {
	if err := required("company", company); err != nil {
		return nil, err
	}
	conn, err := s.Connect(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.RequireTab(TabActivities); err != nil {
		return nil, err
	}
	rows, err := conn.Workbook.Get(ctx, workbook.ColumnSpan(TabActivities, 0, auxWidth(TabActivities)-1))
	if err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}
	var out []models.Activity
	for _, m := range AllMatches(rows, 1, company) {
		out = append(out, decodeActivity(m.Row, m.Values))
	}
	return out, nil
}
