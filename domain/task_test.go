package domain

import (
	"testing"
	"time"
)

func validTask() *Task {
	return &Task{
		ID:           "t1",
		Title:        "Recycle a bottle",
		Points:       10,
		TimeToRepeat: 24 * time.Hour,
		CategoryID:   "c1",
		Rarity:       RarityNormal,
	}
}

func TestTaskValidateNegativePoints(t *testing.T) {
	task := validTask()
	task.Points = -5
	if err := task.Validate(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for negative points, got %v", err)
	}
}

func TestTaskValidateZeroPoints(t *testing.T) {
	task := validTask()
	task.Points = 0
	if err := task.Validate(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for zero points, got %v", err)
	}
}

func TestTaskValidateNegativeRepeatTime(t *testing.T) {
	task := validTask()
	task.TimeToRepeat = -999 * 24 * time.Hour
	if err := task.Validate(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for negative cooldown, got %v", err)
	}
}

func TestTaskValidateBombWithoutLimit(t *testing.T) {
	task := validTask()
	task.IsBomb = true
	if err := task.Validate(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for bomb without limit, got %v", err)
	}
}

func TestTaskValidateLimitWithoutBomb(t *testing.T) {
	task := validTask()
	task.BombTimeLimit = time.Hour
	if err := task.Validate(); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected INVALID for orphan bomb limit, got %v", err)
	}
}

func TestTaskValidateBombPairing(t *testing.T) {
	task := validTask()
	task.IsBomb = true
	task.BombTimeLimit = 48 * time.Hour
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid bomb task, got %v", err)
	}

	accepted := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	want := accepted.Add(48 * time.Hour)
	if got := task.BombDeadline(accepted); !got.Equal(want) {
		t.Fatalf("deadline = %v, want %v", got, want)
	}
}
