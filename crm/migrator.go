// ABOUTME: Schema migrator that walks the lead table header S7 -> S8 -> S14 -> S22
// ABOUTME: Re-reads the live header before every step and provisions the auxiliary tabs
package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadsheet/workbook"
)

// maxSteps bounds the walk from the oldest schema to the latest one.
const maxSteps = 3

// headerWidth is how far the header read reaches, wide enough to notice
// headers that grew past the latest layout.
const headerWidth = 52

// Step is one applied or planned schema transition.
type Step struct {
	From SchemaVersion `json:"from"`
	To   SchemaVersion `json:"to"`
}

func (s Step) String() string {
	return fmt.Sprintf("%s -> %s", s.From, s.To)
}

// MigrationReport describes what a migration did or would do.
type MigrationReport struct {
	Initial     SchemaVersion `json:"initial"`
	Final       SchemaVersion `json:"final"`
	Steps       []Step        `json:"steps"`
	TabsCreated []string      `json:"tabs_created"`
}

// Migrator brings a connected document to the latest schema.
type Migrator struct {
	log *log.Logger
}

func NewMigrator(logger *log.Logger) *Migrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Migrator{log: logger}
}

// next is the transition taken from each migratable version.
var next = map[SchemaVersion]SchemaVersion{
	SchemaEmpty: SchemaS22,
	SchemaS7:    SchemaS8,
	SchemaS8:    SchemaS14,
	SchemaS14:   SchemaS22,
}

func (m *Migrator) readHeader(ctx context.Context, conn *Conn) ([]string, error) {
	tab := conn.LeadTab().Title
	rows, err := conn.Workbook.Get(ctx, workbook.Span(tab, 0, 1, headerWidth-1, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to read lead header: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Plan classifies the header and lists the steps and tabs a migration
// would apply, without writing anything.
func (m *Migrator) Plan(ctx context.Context, conn *Conn) (MigrationReport, error) {
	header, err := m.readHeader(ctx, conn)
	if err != nil {
		return MigrationReport{}, err
	}
	v := Classify(header)
	report := MigrationReport{Initial: v, Final: v}
	if v == SchemaUnrecognized {
		return report, fmt.Errorf("header %q: %w", header, ErrUnrecognizedSchema)
	}
	for v != SchemaLatest {
		to := next[v]
		report.Steps = append(report.Steps, Step{From: v, To: to})
		v = to
	}
	report.Final = v

	tabs, err := conn.Workbook.Tabs(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list tabs: %w", err)
	}
	for _, title := range AuxTabs() {
		if !hasTab(tabs, title) {
			report.TabsCreated = append(report.TabsCreated, title)
		}
	}
	return report, nil
}

// Migrate applies every pending step and then ensures the auxiliary tabs.
// Each step is decided from a fresh header read. A failed step leaves the
// header at its old version and is rerun from the start; conditional
// format rules it already added are added again.
func (m *Migrator) Migrate(ctx context.Context, conn *Conn) (MigrationReport, error) {
	var report MigrationReport
	tab := conn.LeadTab()

	for i := 0; ; i++ {
		header, err := m.readHeader(ctx, conn)
		if err != nil {
			return report, err
		}
		v := Classify(header)
		if i == 0 {
			report.Initial = v
		}
		report.Final = v
		conn.Schema = v

		if v == SchemaLatest {
			break
		}
		if v == SchemaUnrecognized {
			return report, fmt.Errorf("header %q: %w", header, ErrUnrecognizedSchema)
		}
		if i == maxSteps {
			return report, fmt.Errorf("lead table still %s after %d steps: %w", v, maxSteps, ErrUnrecognizedSchema)
		}

		to := next[v]
		m.log.Info("migrating lead table", "tab", tab.Title, "from", v, "to", to)
		if err := m.step(ctx, conn.Workbook, tab, v); err != nil {
			return report, fmt.Errorf("failed to migrate %s to %s: %w", v, to, err)
		}
		report.Steps = append(report.Steps, Step{From: v, To: to})
	}

	created, err := m.ensureTabs(ctx, conn)
	report.TabsCreated = created
	if err != nil {
		return report, err
	}
	return report, nil
}

// step moves the header one version forward. The header write that the
// classifier keys on is always the last call, so a step that fails partway
// is classified at its old version and rerun in full next time.
func (m *Migrator) step(ctx context.Context, wb workbook.Workbook, tab workbook.Tab, v SchemaVersion) error {
	headers := LeadHeaders()
	switch v {
	case SchemaEmpty:
		if err := m.apply(ctx, wb, leadInitOps(tab.ID)); err != nil {
			return err
		}
		return wb.Update(ctx, workbook.Cell(tab.Title, 0, 1), [][]string{headers})

	case SchemaS7:
		// The inserted column leaves G1 blank, which already reads as S8.
		// The S8 step rewrites G1 along with its own labels, so a failed
		// label write here is repaired by the next step.
		outreach := int(FieldOutreach)
		err := m.apply(ctx, wb, []workbook.Op{workbook.InsertColumns{
			TabID: tab.ID, Start: outreach, End: outreach + 1,
		}})
		if err != nil {
			return err
		}
		return wb.Update(ctx, workbook.Cell(tab.Title, outreach, 1), [][]string{{FieldOutreach.Header()}})

	case SchemaS8:
		start, end := int(FieldScore), int(FieldStage)
		ops := headerOps(tab.ID, start, end, leadWidths)
		if err := m.apply(ctx, wb, append(ops, basicDropdownOps(tab.ID)...)); err != nil {
			return err
		}
		from := int(FieldOutreach)
		return wb.Update(ctx, workbook.Cell(tab.Title, from, 1), [][]string{headers[from:end]})

	case SchemaS14:
		start, end := int(FieldStage), int(fieldCount)
		ops := headerOps(tab.ID, start, end, leadWidths)
		ops = append(ops, extendedDropdownOps(tab.ID)...)
		if err := m.apply(ctx, wb, append(ops, colorRuleOps(tab.ID)...)); err != nil {
			return err
		}
		return wb.Update(ctx, workbook.Cell(tab.Title, start, 1), [][]string{headers[start:end]})
	}
	return fmt.Errorf("no migration from %s", v)
}

func (m *Migrator) apply(ctx context.Context, wb workbook.Workbook, ops []workbook.Op) error {
	_, err := wb.Apply(ctx, ops...)
	return err
}

// ensureTabs creates any missing auxiliary tab. A tab that appears between
// the listing and the create call is treated as already provisioned.
func (m *Migrator) ensureTabs(ctx context.Context, conn *Conn) ([]string, error) {
	wb := conn.Workbook
	tabs, err := wb.Tabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}
	for _, t := range tabs {
		conn.addTab(t)
	}

	var created []string
	raced := false
	for _, aux := range auxTables {
		if hasTab(tabs, aux.title) {
			continue
		}
		replies, err := wb.Apply(ctx, workbook.AddTab{Title: aux.title})
		if errors.Is(err, workbook.ErrConflict) {
			m.log.Warn("tab already created concurrently", "tab", aux.title)
			raced = true
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to add tab %s: %w", aux.title, err)
		}
		if len(replies) == 0 || replies[0].AddedTab == nil {
			return created, fmt.Errorf("add tab %s returned no tab", aux.title)
		}
		added := *replies[0].AddedTab
		conn.addTab(added)
		created = append(created, aux.title)
		m.log.Info("created tab", "tab", aux.title)

		if len(aux.headers) == 0 {
			continue
		}
		if err := wb.Update(ctx, workbook.Cell(aux.title, 0, 1), [][]string{aux.headers}); err != nil {
			return created, fmt.Errorf("failed to write %s headers: %w", aux.title, err)
		}
		if err := m.apply(ctx, wb, auxOps(aux, added.ID)); err != nil {
			return created, fmt.Errorf("failed to style %s: %w", aux.title, err)
		}
	}

	if raced {
		tabs, err := wb.Tabs(ctx)
		if err != nil {
			return created, fmt.Errorf("failed to list tabs: %w", err)
		}
		for _, t := range tabs {
			conn.addTab(t)
		}
	}
	return created, nil
}

func hasTab(tabs []workbook.Tab, title string) bool {
	for _, t := range tabs {
		if t.Title == title {
			return true
		}
	}
	return false
}
