// ABOUTME: Structural operations that style the lead table and auxiliary tabs
// ABOUTME: Header colors, column widths, dropdowns, currency format and color rules
package crm

import (
	"github.com/harperreed/leadsheet/models"
	"github.com/harperreed/leadsheet/workbook"
)

var (
	colorHeader  = workbook.Color{Red: 0.118, Green: 0.227, Blue: 0.376}
	colorWhite   = workbook.Color{Red: 1, Green: 1, Blue: 1}
	colorBlack   = workbook.Color{}
	colorChipBG  = workbook.Color{Red: 0.788, Green: 0.855, Blue: 0.973}
	colorChipFG  = workbook.Color{Red: 0.118, Green: 0.227, Blue: 0.376}
	colorLight   = workbook.Color{Red: 0.937, Green: 0.953, Blue: 0.976}
	colorMuted   = workbook.Color{Red: 0.5, Green: 0.5, Blue: 0.5}
	colorGreen   = workbook.Color{Red: 0.718, Green: 0.882, Blue: 0.804}
	colorYellow  = workbook.Color{Red: 1, Green: 0.949, Blue: 0.8}
	colorRed     = workbook.Color{Red: 0.957, Green: 0.78, Blue: 0.765}
	colorBlue    = workbook.Color{Red: 0.792, Green: 0.855, Blue: 0.969}
	colorGrey    = workbook.Color{Red: 0.816, Green: 0.816, Blue: 0.816}
	colorOrange  = workbook.Color{Red: 1, Green: 0.89, Blue: 0.71}
	leadWidths   = []int{120, 180, 220, 200, 130, 120, 300, 120, 80, 60, 120, 120, 300, 300, 120, 100, 80, 120, 120, 180, 120, 120}
	dataRowLimit = 10000
)

const headerRowPixels = 40

func dataRange(tabID int64, startCol, endCol int) workbook.GridRange {
	return workbook.GridRange{TabID: tabID, StartRow: 1, EndRow: dataRowLimit, StartCol: startCol, EndCol: endCol}
}

func headerFormat() workbook.CellFormat {
	bg, fg := colorHeader, colorWhite
	return workbook.CellFormat{Background: &bg, TextColor: &fg, Bold: true, HAlign: "CENTER"}
}

// headerOps styles header cells [startCol, endCol) and sets their widths.
func headerOps(tabID int64, startCol, endCol int, widths []int) []workbook.Op {
	ops := []workbook.Op{workbook.FormatCells{
		Range:  workbook.GridRange{TabID: tabID, StartRow: 0, EndRow: 1, StartCol: startCol, EndCol: endCol},
		Format: headerFormat(),
	}}
	for col := startCol; col < endCol && col < len(widths); col++ {
		ops = append(ops, workbook.ResizeDimension{
			TabID: tabID, Dimension: workbook.Columns, Start: col, End: col + 1, Pixels: widths[col],
		})
	}
	return ops
}

func frameOps(tabID int64, width int) []workbook.Op {
	return []workbook.Op{
		workbook.ResizeDimension{TabID: tabID, Dimension: workbook.Rows, Start: 0, End: 1, Pixels: headerRowPixels},
		workbook.FormatCells{
			Range:  workbook.GridRange{TabID: tabID, StartRow: 0, EndRow: 1, StartCol: 0, EndCol: width},
			Format: workbook.CellFormat{Wrap: true},
		},
		workbook.FreezeRows{TabID: tabID, Rows: 1},
	}
}

func validation(tabID int64, col int, options []string) workbook.Op {
	return workbook.SetValidation{Range: dataRange(tabID, col, col+1), Options: options}
}

func basicDropdownOps(tabID int64) []workbook.Op {
	return []workbook.Op{
		validation(tabID, int(FieldStatus), labels(models.Statuses)),
		validation(tabID, int(FieldRank), labels(models.Ranks)),
		validation(tabID, int(FieldContactPath), models.ContactPaths),
	}
}

func extendedDropdownOps(tabID int64) []workbook.Op {
	return []workbook.Op{
		validation(tabID, int(FieldStage), labels(models.Stages)),
		workbook.FormatCells{
			Range:  dataRange(tabID, int(FieldDealAmount), int(FieldDealAmount)+1),
			Format: workbook.CellFormat{NumberPattern: "#,##0"},
		},
	}
}

func equalsRule(tabID int64, col int, value string, bg workbook.Color) workbook.Op {
	return workbook.AddConditionalFormat{Range: dataRange(tabID, col, col+1), Equals: value, Background: bg}
}

func colorRuleOps(tabID int64) []workbook.Op {
	rank, status, stage := int(FieldRank), int(FieldStatus), int(FieldStage)
	return []workbook.Op{
		equalsRule(tabID, rank, string(models.RankA), colorGreen),
		equalsRule(tabID, rank, string(models.RankB), colorYellow),
		equalsRule(tabID, rank, string(models.RankC), colorRed),
		equalsRule(tabID, status, string(models.StatusRankAActive), colorGreen),
		equalsRule(tabID, status, string(models.StatusUnapproached), colorRed),
		equalsRule(tabID, status, string(models.StatusNurturing), colorYellow),
		equalsRule(tabID, status, string(models.StatusApproached), colorOrange),
		equalsRule(tabID, status, string(models.StatusFormDone), colorBlue),
		equalsRule(tabID, stage, string(models.StageWon), colorGreen),
		equalsRule(tabID, stage, string(models.StageLost), colorGrey),
		equalsRule(tabID, stage, string(models.StageMeeting), colorBlue),
		equalsRule(tabID, stage, string(models.StageProposal), colorBlue),
		equalsRule(tabID, stage, string(models.StageClosing), colorOrange),
	}
}

// leadInitOps styles a freshly written S22 header.
func leadInitOps(tabID int64) []workbook.Op {
	width := int(fieldCount)
	ops := headerOps(tabID, 0, width, leadWidths)
	ops = append(ops, frameOps(tabID, width)...)
	ops = append(ops, basicDropdownOps(tabID)...)
	ops = append(ops, extendedDropdownOps(tabID)...)
	return append(ops, colorRuleOps(tabID)...)
}

func auxOps(t auxTable, tabID int64) []workbook.Op {
	width := len(t.headers)
	ops := headerOps(tabID, 0, width, t.widths)
	ops = append(ops, frameOps(tabID, width)...)
	for _, dd := range t.dropdowns {
		ops = append(ops, validation(tabID, dd.col, dd.options))
	}
	if t.taskRules {
		muted := colorMuted
		ops = append(ops,
			equalsRule(tabID, 4, string(models.PriorityHigh), colorRed),
			workbook.AddConditionalFormat{
				Range:      dataRange(tabID, 0, width),
				Formula:    `=$F2="` + string(models.TaskDone) + `"`,
				Background: colorGrey,
				TextColor:  &muted,
			},
		)
	}
	return ops
}

// rowOps resets a newly appended lead row and renders the report URL as a chip.
func rowOps(tabID int64, row int) []workbook.Op {
	white, black := colorWhite, colorBlack
	chipBG, chipFG := colorChipBG, colorChipFG
	r := row - 1
	report := int(FieldReportURL)
	return []workbook.Op{
		workbook.FormatCells{
			Range:  workbook.GridRange{TabID: tabID, StartRow: r, EndRow: r + 1, StartCol: 0, EndCol: int(fieldCount)},
			Format: workbook.CellFormat{Background: &white, TextColor: &black},
		},
		workbook.FormatCells{
			Range: workbook.GridRange{TabID: tabID, StartRow: r, EndRow: r + 1, StartCol: report, EndCol: report + 1},
			Format: workbook.CellFormat{
				Background: &chipBG, TextColor: &chipFG, Bold: true,
				HAlign: "CENTER", VAlign: "MIDDLE",
			},
		},
	}
}

func dashboardOps(tabID int64) []workbook.Op {
	hdrBG, white, light := colorHeader, colorWhite, colorLight
	band := func(row, width int, f workbook.CellFormat) workbook.Op {
		return workbook.FormatCells{
			Range:  workbook.GridRange{TabID: tabID, StartRow: row, EndRow: row + 1, StartCol: 0, EndCol: width},
			Format: f,
		}
	}
	ops := []workbook.Op{
		band(0, 5, workbook.CellFormat{Background: &hdrBG, TextColor: &white, Bold: true, FontSize: 14}),
		band(2, 5, workbook.CellFormat{Background: &light, Bold: true, HAlign: "CENTER"}),
		band(3, 5, workbook.CellFormat{Bold: true, FontSize: 20, HAlign: "CENTER"}),
		band(5, 4, workbook.CellFormat{Background: &hdrBG, TextColor: &white, Bold: true}),
		band(15, 4, workbook.CellFormat{Background: &hdrBG, TextColor: &white, Bold: true}),
		band(6, 4, workbook.CellFormat{Background: &light, Bold: true}),
		band(16, 4, workbook.CellFormat{Background: &light, Bold: true}),
		workbook.FormatCells{
			Range:  workbook.GridRange{TabID: tabID, StartRow: 7, EndRow: 14, StartCol: 2, EndCol: 4},
			Format: workbook.CellFormat{NumberPattern: "#,##0"},
		},
	}
	for i, px := range []int{200, 80, 120, 120, 80} {
		ops = append(ops, workbook.ResizeDimension{TabID: tabID, Dimension: workbook.Columns, Start: i, End: i + 1, Pixels: px})
	}
	return ops
}
