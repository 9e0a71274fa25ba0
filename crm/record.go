// ABOUTME: Encodes and decodes CRM records to and from positional rows
// ABOUTME: Lead columns go through a per-version Layout; auxiliary tabs have fixed columns
package crm

import (
	"github.com/harperreed/leadsheet/models"
)

func leadField(l *models.Lead, f Field) *string {
	switch f {
	case FieldCreated:
		return &l.CreatedDate
	case FieldCompany:
		return &l.Company
	case FieldSiteURL:
		return &l.SiteURL
	case FieldAddress:
		return &l.Address
	case FieldPhone:
		return &l.Phone
	case FieldReportURL:
		return &l.ReportURL
	case FieldOutreach:
		return &l.Outreach
	case FieldStatus:
		return (*string)(&l.Status)
	case FieldScore:
		return &l.Score
	case FieldRank:
		return (*string)(&l.Rank)
	case FieldScoredDate:
		return &l.ScoredDate
	case FieldContactPath:
		return &l.ContactPath
	case FieldResponseNotes:
		return &l.ResponseNotes
	case FieldNextAction:
		return &l.NextAction
	case FieldStage:
		return (*string)(&l.Stage)
	case FieldDealAmount:
		return &l.DealAmount
	case FieldWinProbability:
		return &l.WinProbability
	case FieldExpectedClose:
		return &l.ExpectedClose
	case FieldContactName:
		return &l.ContactName
	case FieldContactEmail:
		return &l.ContactEmail
	case FieldContactDept:
		return &l.ContactDept
	case FieldLastContact:
		return &l.LastContactDate
	}
	return nil
}

// EncodeLead renders a lead as a row in the given layout.
func EncodeLead(layout Layout, l models.Lead) []string {
	row := make([]string, layout.Width())
	for i, f := range layout.Fields {
		if p := leadField(&l, f); p != nil {
			row[i] = *p
		}
	}
	return row
}

// DecodeLead reads a lead from a row in the given layout. Short rows leave
// the missing fields empty.
func DecodeLead(layout Layout, row int, values []string) models.Lead {
	l := models.Lead{Row: row}
	for i, f := range layout.Fields {
		if i >= len(values) {
			break
		}
		if p := leadField(&l, f); p != nil {
			*p = values[i]
		}
	}
	return l
}

func cell(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func encodeActivity(a models.Activity) []string {
	return []string{
		a.Timestamp, a.Company, string(a.Type), a.Person,
		a.Content, a.Result, string(a.Recorder),
	}
}

func decodeActivity(row int, v []string) models.Activity {
	return models.Activity{
		Row:       row,
		Timestamp: cell(v, 0),
		Company:   cell(v, 1),
		Type:      models.ActivityType(cell(v, 2)),
		Person:    cell(v, 3),
		Content:   cell(v, 4),
		Result:    cell(v, 5),
		Recorder:  models.Recorder(cell(v, 6)),
	}
}

const (
	taskColStatus    = 5
	taskColCompleted = 7
)

func encodeTask(t models.Task) []string {
	return []string{
		t.ID, t.Company, t.Description, t.Due, string(t.Priority),
		string(t.Status), t.CreatedDate, t.CompletedDate,
	}
}

func decodeTask(row int, v []string) models.Task {
	return models.Task{
		Row:           row,
		ID:            cell(v, 0),
		Company:       cell(v, 1),
		Description:   cell(v, 2),
		Due:           cell(v, 3),
		Priority:      models.Priority(cell(v, 4)),
		Status:        models.TaskStatus(cell(v, 5)),
		CreatedDate:   cell(v, 6),
		CompletedDate: cell(v, 7),
	}
}

func encodeContact(c models.Contact) []string {
	return []string{
		c.ID, c.Company, c.Name, c.Title, c.Email,
		c.Phone, string(c.Keyman), c.Notes,
	}
}
