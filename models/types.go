// ABOUTME: Data models for CRM records kept in the spreadsheet
// ABOUTME: Defines Lead, Activity, Task and Contact plus their enumerations
package models

import (
	"strings"
	"time"
)

// Lead is one row of the lead table. Identity is the company name; row
// numbers are only valid within a single operation.
type Lead struct {
	Row             int    `json:"row,omitempty"`
	CreatedDate     string `json:"created_date,omitempty"`
	Company         string `json:"company"`
	SiteURL         string `json:"site_url,omitempty"`
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
	ReportURL       string `json:"report_url,omitempty"`
	Outreach        string `json:"outreach,omitempty"`
	Status          Status `json:"status,omitempty"`
	Score           string `json:"score,omitempty"`
	Rank            Rank   `json:"rank,omitempty"`
	ScoredDate      string `json:"scored_date,omitempty"`
	ContactPath     string `json:"contact_path,omitempty"`
	ResponseNotes   string `json:"response_notes,omitempty"`
	NextAction      string `json:"next_action,omitempty"`
	Stage           Stage  `json:"stage,omitempty"`
	DealAmount      string `json:"deal_amount,omitempty"`
	WinProbability  string `json:"win_probability,omitempty"`
	ExpectedClose   string `json:"expected_close,omitempty"`
	ContactName     string `json:"contact_name,omitempty"`
	ContactEmail    string `json:"contact_email,omitempty"`
	ContactDept     string `json:"contact_dept,omitempty"`
	LastContactDate string `json:"last_contact_date,omitempty"`
}

// Activity is an append-only log row.
type Activity struct {
	Row       int          `json:"row,omitempty"`
	Timestamp string       `json:"timestamp"`
	Company   string       `json:"company"`
	Type      ActivityType `json:"type"`
	Person    string       `json:"person,omitempty"`
	Content   string       `json:"content,omitempty"`
	Result    string       `json:"result,omitempty"`
	Recorder  Recorder     `json:"recorder"`
}

// Task is a follow-up item with a T-NNN sequence id.
type Task struct {
	Row           int        `json:"row,omitempty"`
	ID            string     `json:"id"`
	Company       string     `json:"company"`
	Description   string     `json:"description"`
	Due           string     `json:"due,omitempty"`
	Priority      Priority   `json:"priority"`
	Status        TaskStatus `json:"status"`
	CreatedDate   string     `json:"created_date,omitempty"`
	CompletedDate string     `json:"completed_date,omitempty"`
}

// Overdue reports whether the task is still open and due before today.
// Unparseable due dates are never overdue.
func (t *Task) Overdue(now time.Time) bool {
	if t.Status == TaskDone || t.Due == "" {
		return false
	}
	due, err := time.ParseInLocation(DueLayout, t.Due, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return due.Before(today)
}

// Contact is a person at a lead company.
type Contact struct {
	Row     int    `json:"row,omitempty"`
	ID      string `json:"id"`
	Company string `json:"company"`
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Keyman  Keyman `json:"keyman,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Status is the sales status of a lead.
type Status string

// Status constants.
const (
	StatusUnapproached  Status = "未アプローチ"
	StatusApproached    Status = "アプローチ済み"
	StatusFormDone      Status = "フォーム営業完了"
	StatusRankAActive   Status = "Aランク対応中"
	StatusNurturing     Status = "ナーチャリング中"
	StatusFollowIn3Mths Status = "3ヶ月後フォロー"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusUnapproached, StatusApproached, StatusFormDone,
	StatusRankAActive, StatusNurturing, StatusFollowIn3Mths,
}

// Rank is the lead grade produced by scoring.
type Rank string

const (
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
)

var Ranks = []Rank{RankA, RankB, RankC}

// ContactPath constants.
const (
	PathForm       = "フォーム"
	PathColdCall   = "テレアポ"
	PathVisit      = "訪問"
	PathEmailReply = "メール返信"
	PathOther      = "その他"
)

var ContactPaths = []string{PathForm, PathColdCall, PathVisit, PathEmailReply, PathOther}

// Stage is the pipeline stage of a lead.
type Stage string

// Stage constants.
const (
	StageLead        Stage = "リード"
	StageApproaching Stage = "アプローチ中"
	StageMeeting     Stage = "商談"
	StageProposal    Stage = "提案"
	StageClosing     Stage = "交渉"
	StageWon         Stage = "受注"
	StageLost        Stage = "失注"
)

var Stages = []Stage{
	StageLead, StageApproaching, StageMeeting, StageProposal,
	StageClosing, StageWon, StageLost,
}

// ActivityType classifies an activity log row.
type ActivityType string

// ActivityType constants.
const (
	ActivityEmailSent     ActivityType = "メール送信"
	ActivityEmailReceived ActivityType = "メール返信受信"
	ActivityCall          ActivityType = "電話"
	ActivityVisit         ActivityType = "訪問"
	ActivityScoring       ActivityType = "スコアリング更新"
	ActivityStatusChange  ActivityType = "ステータス変更"
	ActivityFormOutreach  ActivityType = "フォーム営業"
	ActivityOther         ActivityType = "その他"
)

var ActivityTypes = []ActivityType{
	ActivityEmailSent, ActivityEmailReceived, ActivityCall, ActivityVisit,
	ActivityScoring, ActivityStatusChange, ActivityFormOutreach, ActivityOther,
}

// Recorder tags who wrote an activity row.
type Recorder string

const (
	RecorderManual Recorder = "手動"
	RecorderAuto   Recorder = "自動"
)

// Priority of a task.
type Priority string

const (
	PriorityHigh   Priority = "高"
	PriorityMedium Priority = "中"
	PriorityLow    Priority = "低"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// TaskStatus is the progress of a task.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "未着手"
	TaskInProgress TaskStatus = "進行中"
	TaskDone       TaskStatus = "完了"
)

var TaskStatuses = []TaskStatus{TaskNotStarted, TaskInProgress, TaskDone}

// Keyman is a contact's role in the buying decision.
type Keyman string

const (
	KeymanDecisionMaker Keyman = "決裁者"
	KeymanGatekeeper    Keyman = "窓口"
	KeymanTechnical     Keyman = "技術担当"
	KeymanOther         Keyman = "その他"
)

var Keymen = []Keyman{KeymanDecisionMaker, KeymanGatekeeper, KeymanTechnical, KeymanOther}

var (
	rankStatus = map[Rank]Status{
		RankA: StatusRankAActive,
		RankB: StatusNurturing,
		RankC: StatusFollowIn3Mths,
	}
	rankStage = map[Rank]Stage{
		RankA: StageMeeting,
		RankB: StageApproaching,
		RankC: StageLead,
	}
)

// StatusForRank returns the status implied by a rank.
func StatusForRank(r Rank) (Status, bool) {
	s, ok := rankStatus[r]
	return s, ok
}

// StageForRank returns the pipeline stage implied by a rank.
func StageForRank(r Rank) (Stage, bool) {
	s, ok := rankStage[r]
	return s, ok
}

// ParseRank normalizes user input such as "a" or " B ".
func ParseRank(s string) (Rank, bool) {
	r := Rank(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := rankStatus[r]
	return r, ok
}

// Valid reports whether v is one of the allowed values.
func Valid[T ~string](v T, allowed []T) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
