// ABOUTME: Tests for dashboard aggregation and rendering
// ABOUTME: Checks pipeline sums, rank counts and stale-lead detection
package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadsheet/models"
)

func TestPipeline(t *testing.T) {
	leads := []models.Lead{
		{Company: "a", Stage: models.StageMeeting, DealAmount: "1,000,000", WinProbability: "50"},
		{Company: "b", Stage: models.StageMeeting, DealAmount: "¥200000", WinProbability: "x"},
		{Company: "c", Stage: models.StageWon, DealAmount: "300000", WinProbability: "100"},
		{Company: "d"},
		{Company: "e", Stage: "unknown"},
	}
	summaries := Pipeline(leads)
	require.Len(t, summaries, len(models.Stages))

	byStage := map[models.Stage]StageSummary{}
	for _, s := range summaries {
		byStage[s.Stage] = s
	}
	assert.Equal(t, StageSummary{Stage: models.StageMeeting, Count: 2, Amount: 1200000, Weighted: 500000}, byStage[models.StageMeeting])
	assert.Equal(t, StageSummary{Stage: models.StageWon, Count: 1, Amount: 300000}, byStage[models.StageWon])
	assert.Equal(t, 1, byStage[models.StageLead].Count)
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 1200000.0, ParseNumber(" 1,200,000 "))
	assert.Equal(t, 60.0, ParseNumber("60%"))
	assert.Equal(t, 0.0, ParseNumber("未定"))
}

func TestGenerateDashboardStats(t *testing.T) {
	now := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)
	leads := []models.Lead{
		{Company: "fresh", Score: "80", Rank: models.RankA, Status: models.StatusRankAActive, Stage: models.StageMeeting, LastContactDate: "25_03_01"},
		{Company: "stale", Score: "50", Rank: models.RankB, Status: models.StatusNurturing, Stage: models.StageApproaching, LastContactDate: "25_01_01"},
		{Company: "never", Status: models.StatusUnapproached, Stage: models.StageLead},
		{Company: "won", Rank: models.RankA, Stage: models.StageWon},
	}
	overdue := []models.Task{{ID: "T-001", Company: "stale"}}

	stats := GenerateDashboardStats(leads, overdue, now)
	assert.Equal(t, 4, stats.TotalLeads)
	assert.Equal(t, 2, stats.Unscored)
	assert.Equal(t, 2, stats.ByRank[models.RankA])
	assert.Equal(t, 1, stats.ByStatus[models.StatusNurturing])
	assert.Equal(t, []StaleLead{{Company: "stale", DaysSince: 65}, {Company: "never", DaysSince: -1}}, stats.StaleLeads)

	out := RenderDashboard(stats)
	assert.Contains(t, out, "LEAD CRM DASHBOARD")
	assert.Contains(t, out, "4 leads  A:2  B:1  C:0  unscored:2")
	assert.Contains(t, out, "1 tasks overdue")
	assert.Contains(t, out, "2 leads - no contact in 30+ days")
	assert.True(t, strings.Contains(out, string(models.StageMeeting)))
}
