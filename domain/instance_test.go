package domain

import (
	"testing"
	"time"
)

func buildInstance(now time.Time) *TaskInstance {
	return &TaskInstance{
		ID:           "i1",
		TaskID:       "t1",
		ProfileID:    "p1",
		TimeAccepted: now.Add(-time.Hour),
		Status:       StatusActive,
	}
}

func TestInstanceActiveWithCompletionTime(t *testing.T) {
	now := time.Now()
	inst := buildInstance(now)
	completed := now.Add(-time.Minute)
	inst.TimeCompleted = &completed
	if err := inst.Validate(now); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for active+completed, got %v", err)
	}
}

func TestInstancePendingWithoutCompletionTime(t *testing.T) {
	now := time.Now()
	inst := buildInstance(now)
	inst.Status = StatusPendingApproval
	if err := inst.Validate(now); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for pending without completion time, got %v", err)
	}
}

func TestInstanceCompletedWithoutCompletionTime(t *testing.T) {
	now := time.Now()
	inst := buildInstance(now)
	inst.Status = StatusCompleted
	if err := inst.Validate(now); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for completed without completion time, got %v", err)
	}
}

func TestInstanceCompletionBeforeAcceptance(t *testing.T) {
	now := time.Now()
	inst := buildInstance(now)
	inst.Status = StatusCompleted
	completed := inst.TimeAccepted.Add(-time.Minute)
	inst.TimeCompleted = &completed
	if err := inst.Validate(now); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for completion before acceptance, got %v", err)
	}
}

func TestInstanceFutureCompletion(t *testing.T) {
	now := time.Now()
	inst := buildInstance(now)
	inst.Status = StatusPendingApproval
	completed := now.Add(time.Hour)
	inst.TimeCompleted = &completed
	if err := inst.Validate(now); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for future completion, got %v", err)
	}
}

func TestInstanceValidTransitionsPass(t *testing.T) {
	now := time.Now()
	inst := buildInstance(now)
	if err := inst.Validate(now); err != nil {
		t.Fatalf("active instance should validate, got %v", err)
	}

	completed := now.Add(-time.Minute)
	inst.Status = StatusPendingApproval
	inst.TimeCompleted = &completed
	if err := inst.Validate(now); err != nil {
		t.Fatalf("pending instance should validate, got %v", err)
	}

	inst.Status = StatusExploded
	if err := inst.Validate(now); err != nil {
		t.Fatalf("exploded instance should validate, got %v", err)
	}
}

func TestLikeAndReportSets(t *testing.T) {
	inst := buildInstance(time.Now())
	inst.Likes = []string{"p2", "p3"}
	inst.Reports = []string{"p4"}

	if !inst.LikedBy("p2") || inst.LikedBy("p4") {
		t.Fatal("LikedBy mismatch")
	}
	if !inst.ReportedBy("p4") || inst.ReportedBy("p2") {
		t.Fatal("ReportedBy mismatch")
	}
}
