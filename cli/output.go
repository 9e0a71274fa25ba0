// ABOUTME: Output helpers shared by CLI commands
// ABOUTME: Renders lipgloss tables on a terminal and JSON otherwise, plus check-mark result lines
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/harperreed/leadsheet/crm"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Output writes command results. Tables become JSON when JSON is set.
type Output struct {
	W    io.Writer
	JSON bool
}

// Stdout returns an Output that emits JSON when stdout is not a terminal.
func Stdout() *Output {
	return &Output{W: os.Stdout, JSON: !term.IsTerminal(int(os.Stdout.Fd()))}
}

// Table prints rows under headers. In JSON mode v is encoded instead.
func (o *Output) Table(v any, headers []string, rows [][]string) error {
	if o.JSON {
		return o.encode(v)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(o.W, "No results.")
		return err
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(o.W, t.Render())
	return err
}

// Done prints a success line, or v as JSON.
func (o *Output) Done(v any, format string, args ...any) error {
	if o.JSON {
		return o.encode(v)
	}
	_, err := fmt.Fprintln(o.W, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
	return err
}

// Outcomes prints one line per best-effort step that was not applied.
func (o *Output) Outcomes(res crm.Result) {
	if o.JSON {
		return
	}
	names := make([]string, 0, len(res.Outcomes))
	for name := range res.Outcomes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		outcome := res.Outcomes[name]
		if outcome.Applied() {
			continue
		}
		_, _ = fmt.Fprintln(o.W, warnStyle.Render(fmt.Sprintf("  %s: %s", name, outcome)))
	}
}

func (o *Output) encode(v any) error {
	enc := json.NewEncoder(o.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resultJSON is the JSON shape of a crm.Result.
type resultJSON struct {
	Company  string            `json:"company"`
	Row      int               `json:"row"`
	Outcomes map[string]string `json:"outcomes,omitempty"`
}

func toJSON(res crm.Result) resultJSON {
	out := resultJSON{Company: res.Company, Row: res.Row}
	if len(res.Outcomes) > 0 {
		out.Outcomes = make(map[string]string, len(res.Outcomes))
		for name, o := range res.Outcomes {
			out.Outcomes[name] = o.String()
		}
	}
	return out
}

// ExitCode maps an error to the process exit status: 2 for bad input or
// missing configuration, 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, crm.ErrValidation), errors.Is(err, crm.ErrNotConfigured):
		return 2
	default:
		return 1
	}
}

// Hint returns guidance for errors a user can act on.
func Hint(err error) string {
	switch {
	case errors.Is(err, crm.ErrNotConfigured):
		return "Set GOOGLE_APPLICATION_CREDENTIALS and GOOGLE_DRIVE_FOLDER_ID, or use CRM_BACKEND=local."
	case errors.Is(err, crm.ErrNotFound):
		return "Create it first (for leads: leadsheet add-lead --company <name>)."
	case errors.Is(err, crm.ErrUnrecognizedSchema):
		return "The lead table header matches no known layout; fix the header row by hand."
	}
	return ""
}
