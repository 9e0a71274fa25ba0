// ABOUTME: Tests for CRM data models
// ABOUTME: Validates rank lookups, enum membership, overdue logic and date formats
package models

import (
	"testing"
	"time"
)

func TestRankLookups(t *testing.T) {
	tests := []struct {
		rank   Rank
		status Status
		stage  Stage
	}{
		{RankA, StatusRankAActive, StageMeeting},
		{RankB, StatusNurturing, StageApproaching},
		{RankC, StatusFollowIn3Mths, StageLead},
	}
	for _, tt := range tests {
		status, ok := StatusForRank(tt.rank)
		if !ok || status != tt.status {
			t.Errorf("StatusForRank(%s) = %s, %v; want %s", tt.rank, status, ok, tt.status)
		}
		stage, ok := StageForRank(tt.rank)
		if !ok || stage != tt.stage {
			t.Errorf("StageForRank(%s) = %s, %v; want %s", tt.rank, stage, ok, tt.stage)
		}
	}

	if _, ok := StatusForRank("D"); ok {
		t.Error("expected no status for rank D")
	}
	if _, ok := StageForRank(""); ok {
		t.Error("expected no stage for empty rank")
	}
}

func TestParseRank(t *testing.T) {
	if r, ok := ParseRank(" a "); !ok || r != RankA {
		t.Errorf("expected A, got %q %v", r, ok)
	}
	if _, ok := ParseRank("S"); ok {
		t.Error("expected S to be rejected")
	}
}

func TestValid(t *testing.T) {
	if !Valid(StageWon, Stages) {
		t.Error("expected 受注 to be a valid stage")
	}
	if Valid(Stage("won"), Stages) {
		t.Error("expected English label to be rejected")
	}
	if !Valid(PathVisit, ContactPaths) {
		t.Error("expected 訪問 to be a valid contact path")
	}
}

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"past open", Task{Due: "2025-03-09", Status: TaskNotStarted}, true},
		{"today", Task{Due: "2025-03-10", Status: TaskInProgress}, false},
		{"future", Task{Due: "2025-04-01", Status: TaskNotStarted}, false},
		{"past done", Task{Due: "2025-01-01", Status: TaskDone}, false},
		{"no due", Task{Status: TaskNotStarted}, false},
		{"garbage", Task{Due: "next week", Status: TaskNotStarted}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Overdue(now); got != tt.want {
				t.Errorf("Overdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateFormats(t *testing.T) {
	ts := time.Date(2025, 3, 7, 9, 5, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "25_03_07" {
		t.Errorf("FormatDate = %s", got)
	}
	if got := FormatStamp(ts); got != "25_03_07 09:05" {
		t.Errorf("FormatStamp = %s", got)
	}
	if !ValidDue("2025-12-31") || ValidDue("2025/12/31") {
		t.Error("ValidDue mismatch")
	}
}
