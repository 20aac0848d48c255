package models

import (
	"testing"
	"time"
)

func statusNamed(id uint, name string) *Status {
	s := &Status{Name: name}
	s.ID = id
	return s
}

func TestApplyStatusTransitionStampsCompletionDate(t *testing.T) {
	today := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	started := today.AddDate(0, 0, -3)

	n := &Notebook{DateStarted: &started}
	inProgress := statusNamed(2, "in progress")
	completed := statusNamed(3, StatusCompleted)

	n.ApplyStatusTransition(inProgress, completed, today)

	if n.StatusID == nil || *n.StatusID != completed.ID {
		t.Fatalf("expected status %d, got %v", completed.ID, n.StatusID)
	}
	if n.DateCompleted == nil || !n.DateCompleted.Equal(today) {
		t.Fatalf("expected completion date %v, got %v", today, n.DateCompleted)
	}
	if n.DateStarted == nil || !n.DateStarted.Equal(started) {
		t.Fatalf("start date must not move on completion, got %v", n.DateStarted)
	}
}

func TestApplyStatusTransitionReopeningRestartsTrip(t *testing.T) {
	today := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	started := today.AddDate(0, 0, -10)
	finished := today.AddDate(0, 0, -5)

	n := &Notebook{DateStarted: &started, DateCompleted: &finished}
	completed := statusNamed(3, StatusCompleted)
	inProgress := statusNamed(2, "in progress")

	n.ApplyStatusTransition(completed, inProgress, today)

	if n.DateCompleted != nil {
		t.Fatalf("expected completion date cleared, got %v", n.DateCompleted)
	}
	if n.DateStarted == nil || !n.DateStarted.Equal(today) {
		t.Fatalf("expected start date reset to %v, got %v", today, n.DateStarted)
	}
}

func TestApplyStatusTransitionBetweenIncompleteStatuses(t *testing.T) {
	today := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	started := today.AddDate(0, 0, -1)

	n := &Notebook{DateStarted: &started}
	notStarted := statusNamed(1, "not started")
	inProgress := statusNamed(2, "in progress")

	n.ApplyStatusTransition(notStarted, inProgress, today)

	if n.DateCompleted != nil {
		t.Fatalf("no completion date expected, got %v", n.DateCompleted)
	}
	if !n.DateStarted.Equal(started) {
		t.Fatalf("start date must be untouched, got %v", n.DateStarted)
	}
}

func TestApplyStatusTransitionClearingStatus(t *testing.T) {
	today := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	finished := today.AddDate(0, 0, -2)

	n := &Notebook{DateCompleted: &finished}
	completed := statusNamed(3, StatusCompleted)

	n.ApplyStatusTransition(completed, nil, today)

	if n.StatusID != nil {
		t.Fatalf("expected status cleared, got %v", n.StatusID)
	}
	if n.DateCompleted != nil {
		t.Fatalf("expected completion date cleared, got %v", n.DateCompleted)
	}
	if n.DateStarted == nil || !n.DateStarted.Equal(today) {
		t.Fatalf("expected start date reset to %v, got %v", today, n.DateStarted)
	}
}
