// ABOUTME: Spreadsheet backend contract shared by the Google, SQLite and in-memory backends
// ABOUTME: Defines Drive/Workbook interfaces, value ranges, and structural operations
package workbook

import "context"

// ValueInput is the write mode used for every value write. Values are
// interpreted as if typed by a user, so formulas and numbers are parsed.
const ValueInput = "USER_ENTERED"

// Tab is a named sub-sheet of a document.
type Tab struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Index int    `json:"index"`
}

// ValueRange is a block of cell values addressed by an A1 range.
type ValueRange struct {
	Range string
	Rows  [][]string
}

// AppendResult reports where appended rows landed.
type AppendResult struct {
	UpdatedRange string
	FirstRow     int
}

// Workbook is one spreadsheet document. Calls are independent; nothing is
// transactional across calls.
type Workbook interface {
	ID() string
	Tabs(ctx context.Context) ([]Tab, error)
	Get(ctx context.Context, rng string) ([][]string, error)
	Update(ctx context.Context, rng string, rows [][]string) error
	Append(ctx context.Context, rng string, rows [][]string) (AppendResult, error)
	BatchUpdate(ctx context.Context, data []ValueRange) error
	Apply(ctx context.Context, ops ...Op) ([]Reply, error)
}

// Drive locates and creates documents inside folders.
type Drive interface {
	Search(ctx context.Context, name, folderID string) ([]string, error)
	Create(ctx context.Context, title string, tabs ...string) (string, error)
	Move(ctx context.Context, documentID, folderID string) error
	Open(documentID string) Workbook
}

// Dimension selects rows or columns for dimension operations.
type Dimension string

const (
	Rows    Dimension = "ROWS"
	Columns Dimension = "COLUMNS"
)

// GridRange is a zero-based, end-exclusive rectangle on one tab.
type GridRange struct {
	TabID    int64 `json:"tab_id"`
	StartRow int   `json:"start_row"`
	EndRow   int   `json:"end_row"`
	StartCol int   `json:"start_col"`
	EndCol   int   `json:"end_col"`
}

// Color is an RGB color with components in [0, 1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// CellFormat describes the user-entered format applied to a range. Only
// the attributes that are set are written.
type CellFormat struct {
	Background    *Color `json:"background,omitempty"`
	TextColor     *Color `json:"text_color,omitempty"`
	Bold          bool   `json:"bold,omitempty"`
	FontSize      int    `json:"font_size,omitempty"`
	HAlign        string `json:"h_align,omitempty"`
	VAlign        string `json:"v_align,omitempty"`
	NumberPattern string `json:"number_pattern,omitempty"`
	Wrap          bool   `json:"wrap,omitempty"`
}

// Op is a structural change applied through Workbook.Apply.
type Op interface {
	opName() string
}

type InsertColumns struct {
	TabID             int64
	Start, End        int
	InheritFromBefore bool
}

type DeleteRows struct {
	TabID      int64
	Start, End int
}

type AddTab struct {
	Title string
}

type MergeCells struct {
	Range GridRange
}

type FormatCells struct {
	Range  GridRange
	Format CellFormat
}

type ResizeDimension struct {
	TabID      int64
	Dimension  Dimension
	Start, End int
	Pixels     int
}

// SetValidation installs a one-of-list dropdown on a range.
type SetValidation struct {
	Range   GridRange
	Options []string
}

// AddConditionalFormat colors cells that equal a value, or that satisfy a
// custom formula when Formula is set.
type AddConditionalFormat struct {
	Range      GridRange
	Equals     string
	Formula    string
	Background Color
	TextColor  *Color
}

type FreezeRows struct {
	TabID int64
	Rows  int
}

func (InsertColumns) opName() string        { return "insert_columns" }
func (DeleteRows) opName() string           { return "delete_rows" }
func (AddTab) opName() string               { return "add_tab" }
func (MergeCells) opName() string           { return "merge_cells" }
func (FormatCells) opName() string          { return "format_cells" }
func (ResizeDimension) opName() string      { return "resize_dimension" }
func (SetValidation) opName() string        { return "set_validation" }
func (AddConditionalFormat) opName() string { return "add_conditional_format" }
func (FreezeRows) opName() string           { return "freeze_rows" }

// OpName returns the stable name of a structural operation.
func OpName(op Op) string {
	return op.opName()
}

// Reply carries per-operation results of Apply. Only AddTab produces one.
type Reply struct {
	AddedTab *Tab
}
