// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Aggregates leads and tasks into pipeline, rank and attention summaries
package viz

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/leadsheet/models"
)

// StaleAfter is how long a lead may go without contact before it needs attention.
const StaleAfter = 30 * 24 * time.Hour

type DashboardStats struct {
	Pipeline []StageSummary
	ByRank   map[models.Rank]int
	ByStatus map[models.Status]int

	TotalLeads int
	Unscored   int

	OverdueTasks []models.Task
	StaleLeads   []StaleLead
}

// StageSummary aggregates the leads in one pipeline stage.
type StageSummary struct {
	Stage    models.Stage `json:"stage"`
	Count    int          `json:"count"`
	Amount   float64      `json:"amount"`
	Weighted float64      `json:"weighted"`
}

type StaleLead struct {
	Company   string
	DaysSince int // -1 when never contacted
}

// Pipeline groups leads by stage in display order. Leads without a stage
// count as リード. Closed stages carry no weighted amount.
func Pipeline(leads []models.Lead) []StageSummary {
	summaries := make([]StageSummary, len(models.Stages))
	index := make(map[models.Stage]int, len(models.Stages))
	for i, st := range models.Stages {
		summaries[i].Stage = st
		index[st] = i
	}
	for _, lead := range leads {
		stage := lead.Stage
		if stage == "" {
			stage = models.StageLead
		}
		i, ok := index[stage]
		if !ok {
			continue
		}
		s := &summaries[i]
		s.Count++
		amount := ParseNumber(lead.DealAmount)
		s.Amount += amount
		if stage != models.StageWon && stage != models.StageLost {
			s.Weighted += amount * ParseNumber(lead.WinProbability) / 100
		}
	}
	return summaries
}

// ParseNumber reads amounts written as "1,200,000" or "¥500000". Anything
// else counts as zero.
func ParseNumber(s string) float64 {
	s = strings.NewReplacer(",", "", "¥", "", "%", "").Replace(strings.TrimSpace(s))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// GenerateDashboardStats summarizes leads and overdue tasks as of now.
// Closed leads are never stale.
func GenerateDashboardStats(leads []models.Lead, overdue []models.Task, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		Pipeline:     Pipeline(leads),
		ByRank:       make(map[models.Rank]int),
		ByStatus:     make(map[models.Status]int),
		TotalLeads:   len(leads),
		OverdueTasks: overdue,
	}
	for _, lead := range leads {
		if lead.Score == "" {
			stats.Unscored++
		}
		if lead.Rank != "" {
			stats.ByRank[lead.Rank]++
		}
		if lead.Status != "" {
			stats.ByStatus[lead.Status]++
		}
		if lead.Stage == models.StageWon || lead.Stage == models.StageLost {
			continue
		}
		if lead.LastContactDate == "" {
			stats.StaleLeads = append(stats.StaleLeads, StaleLead{Company: lead.Company, DaysSince: -1})
			continue
		}
		last, err := time.ParseInLocation(models.DateLayout, lead.LastContactDate, now.Location())
		if err != nil {
			continue
		}
		if since := now.Sub(last); since > StaleAfter {
			stats.StaleLeads = append(stats.StaleLeads, StaleLead{Company: lead.Company, DaysSince: int(since.Hours() / 24)})
		}
	}
	return stats
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  LEAD CRM DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("PIPELINE OVERVIEW\n")
	renderPipeline(&out, stats.Pipeline)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  %d leads  A:%d  B:%d  C:%d  unscored:%d\n\n",
		stats.TotalLeads, stats.ByRank[models.RankA], stats.ByRank[models.RankB],
		stats.ByRank[models.RankC], stats.Unscored))

	if len(stats.OverdueTasks) > 0 || len(stats.StaleLeads) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		if len(stats.OverdueTasks) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d tasks overdue\n", len(stats.OverdueTasks)))
		}
		if len(stats.StaleLeads) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d leads - no contact in 30+ days\n", len(stats.StaleLeads)))
		}
	}

	return out.String()
}

func renderPipeline(out *strings.Builder, pipeline []StageSummary) {
	maxCount := 0
	for _, s := range pipeline {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for _, s := range pipeline {
		if s.Count == 0 {
			continue
		}
		barLength := (s.Count * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %s %s  %2d (¥%.0f万)\n",
			padStage(s.Stage), bar, s.Count, s.Amount/10000))
	}
}

// padStage pads to a fixed display width; stage labels are full-width.
func padStage(stage models.Stage) string {
	const width = 6
	n := len([]rune(string(stage)))
	if n >= width {
		return string(stage)
	}
	return string(stage) + strings.Repeat("　", width-n)
}
