// ABOUTME: Best-effort propagation of derived lead state
// ABOUTME: Last-contact dates, rank-derived status/stage and auto activities never fail the caller
package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadsheet/models"
)

// OutcomeKind classifies the result of a best-effort step.
type OutcomeKind int

const (
	Applied OutcomeKind = iota
	Skipped
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome is the result of a best-effort step. It is logged and reported,
// never turned into an error of the primary operation.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Err    error
}

func applied() Outcome { return Outcome{Kind: Applied} }
func skipped(reason string) Outcome { return Outcome{Kind: Skipped, Reason: reason} }
func failedWith(err error) Outcome { return Outcome{Kind: Failed, Err: err} }
func (o Outcome) Applied() bool { return o.Kind == Applied }

func (o Outcome) String() string {
	switch o.Kind {
	case Skipped:
		return "skipped: " + o.Reason
	case Failed:
		return fmt.Sprintf("failed: %v", o.Err)
	default:
		return "applied"
	}
}

// Propagator performs enrichment writes that follow a primary mutation.
type Propagator struct {
	conn *Conn
	now  func() time.Time
	log  *log.Logger
}

func NewPropagator(conn *Conn, now func() time.Time, logger *log.Logger) *Propagator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Propagator{conn: conn, now: now, log: logger}
}

// guard runs one best-effort step, converting panics into Failed and
// logging the outcome.
func (p *Propagator) guard(name string, fn func() Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failedWith(fmt.Errorf("panic: %v", r))
		}
		switch out.Kind {
		case Applied:
			p.log.Debug("best-effort step applied", "step", name)
		case Skipped:
			p.log.Info("best-effort step skipped", "step", name, "reason", out.Reason)
		default:
			p.log.Warn("best-effort step failed", "step", name, "err", out.Err)
		}
	}()
	return fn()
}

// TouchLastContact stamps today's date on the last lead row matching company.
func (p *Propagator) TouchLastContact(ctx context.Context, company string) Outcome {
	return p.guard("last_contact", func() Outcome {
		layout, err := p.conn.Layout()
		if err != nil {
			return failedWith(err)
		}
		col, ok := layout.Column(FieldLastContact)
		if !ok {
			return skipped("lead table has no last-contact column")
		}
		tab := p.conn.LeadTab().Title
		row, found, err := FindFromBottom(ctx, p.conn.Workbook, tab, company)
		if err != nil {
			return failedWith(err)
		}
		if !found {
			return skipped(fmt.Sprintf("no lead matches %q", company))
		}
		date := models.FormatDate(p.now())
		if err := UpdateCells(ctx, p.conn.Workbook, tab, row, map[int]string{col: date}); err != nil {
			return failedWith(err)
		}
		return applied()
	})
}

// DeriveFromRank writes the status and pipeline stage implied by rank on
// row, in one batch. It is skipped when suppressed or when the rank has no
// lookup entry.
func (p *Propagator) DeriveFromRank(ctx context.Context, row int, rank models.Rank, suppress bool) Outcome {
	return p.guard("derive_rank", func() Outcome {
		if suppress {
			return skipped("derivation suppressed by caller")
		}
		status, ok := models.StatusForRank(rank)
		if !ok {
			return skipped(fmt.Sprintf("rank %q has no derived status", rank))
		}
		layout, err := p.conn.Layout()
		if err != nil {
			return failedWith(err)
		}
		fields := map[Field]string{FieldStatus: string(status)}
		if _, ok := layout.Column(FieldStage); ok {
			if stage, ok := models.StageForRank(rank); ok {
				fields[FieldStage] = string(stage)
			}
		}
		if err := UpdateLead(ctx, p.conn.Workbook, p.conn.LeadTab().Title, layout, row, fields); err != nil {
			return failedWith(err)
		}
		return applied()
	})
}

// RecordActivity appends a synthetic activity row and then touches the
// lead's last-contact date. Both steps are best-effort.
func (p *Propagator) RecordActivity(ctx context.Context, a models.Activity) Outcome {
	out := p.guard("activity", func() Outcome {
		if _, ok := p.conn.Tab(TabActivities); !ok {
			return skipped("activity tab missing")
		}
		if a.Timestamp == "" {
			a.Timestamp = models.FormatStamp(p.now())
		}
		if a.Recorder == "" {
			a.Recorder = models.RecorderAuto
		}
		if _, err := AppendRow(ctx, p.conn.Workbook, TabActivities, auxWidth(TabActivities), encodeActivity(a)); err != nil {
			return failedWith(err)
		}
		return applied()
	})
	if out.Applied() {
		p.TouchLastContact(ctx, a.Company)
	}
	return out
}

// Run executes an arbitrary best-effort step under the same guard.
func (p *Propagator) Run(name string, fn func() error) Outcome {
	return p.guard(name, func() Outcome {
		if err := fn(); err != nil {
			return failedWith(err)
		}
		return applied()
	})
}
