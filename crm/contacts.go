// ABOUTME: Contact operations on the contacts tab
// ABOUTME: Also copies the person onto the matching lead row as best-effort enrichment
package crm

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/harperreed/leadsheet/models"
)

// ContactInput adds a person at a lead company.
type ContactInput struct {
	Company string        `json:"company"`
	Name    string        `json:"name"`
	Title   string        `json:"title,omitempty"`
	Email   string        `json:"email,omitempty"`
	Phone   string        `json:"phone,omitempty"`
	Keyman  models.Keyman `json:"keyman,omitempty"`
	Notes   string        `json:"notes,omitempty"`
}

// AddContact appends a contact row with a C-<ulid> id.
func (s *Service) AddContact(ctx context.Context, in ContactInput) (models.Contact, Result, error) {
	if err := required("company", in.Company); err != nil {
		return models.Contact{}, Result{}, err
	}
	if err := required("name", in.Name); err != nil {
		return models.Contact{}, Result{}, err
	}
	if in.Keyman != "" && !models.Valid(in.Keyman, models.Keymen) {
		return models.Contact{}, Result{}, fmt.Errorf("keyman %q: %w", in.Keyman, ErrValidation)
	}
	conn, err := s.Connect(ctx)
	if err != nil {
		return models.Contact{}, Result{}, err
	}
	if _, err := conn.RequireTab(TabContacts); err != nil {
		return models.Contact{}, Result{}, err
	}

	contact := models.Contact{
		ID:      "C-" + ulid.Make().String(),
		Company: in.Company,
		Name:    in.Name,
		Title:   in.Title,
		Email:   in.Email,
		Phone:   in.Phone,
		Keyman:  in.Keyman,
		Notes:   in.Notes,
	}
	row, err := AppendRow(ctx, conn.Workbook, TabContacts, auxWidth(TabContacts), encodeContact(contact))
	if err != nil {
		return models.Contact{}, Result{}, err
	}
	contact.Row = row

	res := Result{Company: in.Company, Row: row}
	res.record("lead_contact", s.copyToLead(ctx, conn, contact))
	return contact, res, nil
}

func (s *Service) copyToLead(ctx context.Context, conn *Conn, c models.Contact) Outcome {
	p := s.propagator(conn)
	return p.guard("lead_contact", func() Outcome {
		layout, err := conn.Layout()
		if err != nil {
			return failedWith(err)
		}
		tab := conn.LeadTab().Title
		m, ok, err := Find(ctx, conn.Workbook, tab, c.Company)
		if err != nil {
			return failedWith(err)
		}
		if !ok {
			return skipped(fmt.Sprintf("no lead matches %q", c.Company))
		}
		fields := map[Field]string{FieldContactName: c.Name}
		if c.Email != "" {
			fields[FieldContactEmail] = c.Email
		}
		if c.Title != "" {
			fields[FieldContactDept] = c.Title
		}
		if err := UpdateLead(ctx, conn.Workbook, tab, layout, m.Row, fields); err != nil {
			return failedWith(err)
		}
		return applied()
	})
}
