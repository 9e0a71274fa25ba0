// ABOUTME: Schema registry for the lead table and the auxiliary tabs
// ABOUTME: Classifies a live header row into one of the known schema versions
package crm

import (
	"github.com/harperreed/leadsheet/models"
)

// Default tab titles. The lead table is always the first tab of the
// document, whatever its title.
const (
	TabLeads      = "リスト"
	TabContacts   = "コンタクト"
	TabActivities = "アクティビティ"
	TabTasks      = "タスク"
	TabDashboard  = "ダッシュボード"
)

// DefaultDocumentName is the title of the CRM document.
const DefaultDocumentName = "リード管理CRM"

// Field names one column of the lead table, in S22 order.
type Field int

const (
	FieldCreated Field = iota
	FieldCompany
	FieldSiteURL
	FieldAddress
	FieldPhone
	FieldReportURL
	FieldOutreach
	FieldStatus
	FieldScore
	FieldRank
	FieldScoredDate
	FieldContactPath
	FieldResponseNotes
	FieldNextAction
	FieldStage
	FieldDealAmount
	FieldWinProbability
	FieldExpectedClose
	FieldContactName
	FieldContactEmail
	FieldContactDept
	FieldLastContact
	fieldCount
)

var leadHeaders = [fieldCount]string{
	"作成日", "会社名", "ホームページURL", "住所", "電話番号",
	"レポートURL", "フォーム営業文", "ステータス",
	"スコア", "ランク", "スコアリング日", "接触経路", "反応メモ", "推奨アクション",
	"パイプライン", "ディール金額", "受注確度(%)", "予想受注日",
	"担当者名", "担当者メール", "担当者部署", "最終接触日",
}

// Header returns the column label of the field.
func (f Field) Header() string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return leadHeaders[f]
}

// LeadHeaders returns the full current header row.
func LeadHeaders() []string {
	return append([]string(nil), leadHeaders[:]...)
}

// SchemaVersion identifies the observed shape of the lead table header.
type SchemaVersion int

const (
	SchemaUnrecognized SchemaVersion = iota
	SchemaEmpty
	SchemaS7
	SchemaS8
	SchemaS14
	SchemaS22
)

// SchemaLatest is the version every migration ends at.
const SchemaLatest = SchemaS22

func (v SchemaVersion) String() string {
	switch v {
	case SchemaEmpty:
		return "empty"
	case SchemaS7:
		return "S7"
	case SchemaS8:
		return "S8"
	case SchemaS14:
		return "S14"
	case SchemaS22:
		return "S22"
	default:
		return "unrecognized"
	}
}

// signature is the structural predicate of a schema version: an exact
// column count and one literal label at a fixed column.
type signature struct {
	version SchemaVersion
	width   int
	col     int
	label   string
}

var signatures = []signature{
	{SchemaS7, 7, 6, "ステータス"},
	{SchemaS8, 8, 7, "ステータス"},
	{SchemaS14, 14, 13, "推奨アクション"},
	{SchemaS22, 22, 21, "最終接触日"},
}

// Classify maps a header row to its schema version. Every input maps to
// exactly one version. A current header followed by extra columns is
// SchemaLatest; anything else that matches no signature is
// SchemaUnrecognized.
func Classify(header []string) SchemaVersion {
	n := len(header)
	for n > 0 && header[n-1] == "" {
		n--
	}
	if n == 0 {
		return SchemaEmpty
	}
	for _, sig := range signatures {
		if n == sig.width && header[sig.col] == sig.label {
			return sig.version
		}
	}
	if n > int(fieldCount) && hasLatestPrefix(header) {
		return SchemaLatest
	}
	return SchemaUnrecognized
}

// hasLatestPrefix reports whether header starts with every current label,
// which is how user-added columns after the last one look.
func hasLatestPrefix(header []string) bool {
	for i, label := range LeadHeaders() {
		if header[i] != label {
			return false
		}
	}
	return true
}

// Layout maps lead fields to column positions for one schema version.
type Layout struct {
	Version SchemaVersion
	Fields  []Field
}

// Column returns the zero-based column of f, or false when this version
// has no such column.
func (l Layout) Column(f Field) (int, bool) {
	for i, lf := range l.Fields {
		if lf == f {
			return i, true
		}
	}
	return -1, false
}

// Width is the number of columns of the layout.
func (l Layout) Width() int {
	return len(l.Fields)
}

func prefix(n int) []Field {
	fields := make([]Field, n)
	for i := range fields {
		fields[i] = Field(i)
	}
	return fields
}

var layouts = map[SchemaVersion]Layout{
	// S7 predates the outreach column; status sits where outreach is now.
	SchemaS7: {SchemaS7, []Field{
		FieldCreated, FieldCompany, FieldSiteURL, FieldAddress,
		FieldPhone, FieldReportURL, FieldStatus,
	}},
	SchemaS8:  {SchemaS8, prefix(8)},
	SchemaS14: {SchemaS14, prefix(14)},
	SchemaS22: {SchemaS22, prefix(int(fieldCount))},
}

// LayoutFor returns the column layout of a recognized, non-empty version.
func LayoutFor(v SchemaVersion) (Layout, bool) {
	l, ok := layouts[v]
	return l, ok
}

// auxTable is the fixed layout of an auxiliary tab.
type auxTable struct {
	title     string
	headers   []string
	widths    []int
	dropdowns []dropdown
	taskRules bool
}

type dropdown struct {
	col     int
	options []string
}

var auxTables = []auxTable{
	{
		title:     TabContacts,
		headers:   []string{"コンタクトID", "会社名", "担当者名", "部署・役職", "メールアドレス", "電話番号", "キーマン", "メモ"},
		widths:    []int{100, 180, 120, 150, 200, 140, 100, 300},
		dropdowns: []dropdown{{6, labels(models.Keymen)}},
	},
	{
		title:     TabActivities,
		headers:   []string{"日時", "会社名", "種別", "担当者名", "内容", "結果", "記録者"},
		widths:    []int{140, 180, 130, 120, 400, 300, 80},
		dropdowns: []dropdown{{2, labels(models.ActivityTypes)}},
	},
	{
		title:   TabTasks,
		headers: []string{"タスクID", "会社名", "タスク内容", "期限", "優先度", "ステータス", "作成日", "完了日"},
		widths:  []int{100, 180, 300, 120, 80, 100, 120, 120},
		dropdowns: []dropdown{
			{4, labels(models.Priorities)},
			{5, labels(models.TaskStatuses)},
		},
		taskRules: true,
	},
	{title: TabDashboard},
}

// AuxTabs lists the auxiliary tab titles in creation order.
func AuxTabs() []string {
	titles := make([]string, len(auxTables))
	for i, t := range auxTables {
		titles[i] = t.title
	}
	return titles
}

func auxWidth(title string) int {
	for _, t := range auxTables {
		if t.title == title {
			return len(t.headers)
		}
	}
	return 0
}

func labels[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
