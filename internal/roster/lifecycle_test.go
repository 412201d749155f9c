package roster

import (
	"reflect"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

func TestMarkReady(t *testing.T) {
	schedule := &domain.Schedule{Month: 3, Year: 2025, Status: domain.ScheduleStatusDraft}
	now := time.Now()

	if !MarkReady(schedule, 42, now) {
		t.Error("Expected draft -> ready to report a transition")
	}
	if schedule.Status != domain.ScheduleStatusReady {
		t.Errorf("Expected status %q, got %q", domain.ScheduleStatusReady, schedule.Status)
	}
	if schedule.LastActorID == nil || *schedule.LastActorID != 42 {
		t.Errorf("Expected actor 42, got %v", schedule.LastActorID)
	}
	if schedule.StatusChangedAt == nil || !schedule.StatusChangedAt.Equal(now) {
		t.Errorf("Expected status change time %v, got %v", now, schedule.StatusChangedAt)
	}

	// 重复发布是幂等的，不应再次触发通知
	if MarkReady(schedule, 43, now.Add(time.Hour)) {
		t.Error("Expected repeated MarkReady to report no transition")
	}
	if schedule.Status != domain.ScheduleStatusReady {
		t.Errorf("Expected status to stay %q, got %q", domain.ScheduleStatusReady, schedule.Status)
	}
}

func TestMarkNotReady(t *testing.T) {
	schedule := &domain.Schedule{Month: 3, Year: 2025, Status: domain.ScheduleStatusReady}
	now := time.Now()

	if !MarkNotReady(schedule, 42, now) {
		t.Error("Expected ready -> draft to report a transition")
	}
	if schedule.Status != domain.ScheduleStatusDraft {
		t.Errorf("Expected status %q, got %q", domain.ScheduleStatusDraft, schedule.Status)
	}

	if MarkNotReady(schedule, 42, now) {
		t.Error("Expected repeated MarkNotReady to report no transition")
	}
}

func TestNotifyRecipients(t *testing.T) {
	set, err := NewAssignmentSet(2, 2025)
	if err != nil {
		t.Fatalf("NewAssignmentSet returned error: %v", err)
	}

	inputs := []domain.Assignment{
		{UserID: 7, StoreID: 10, Date: date(2025, time.March, 3), Hours: 8},
		{UserID: 3, StoreID: 10, Date: date(2025, time.March, 4), Hours: 8},
		{UserID: 7, StoreID: 11, Date: date(2025, time.March, 4), Hours: 4},
		{UserID: 5, StoreID: 10, Date: date(2025, time.March, 5), Hours: 8},
	}
	for i := range inputs {
		if err := set.Add(&inputs[i]); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	// 去重且升序：员工 7 只出现一次
	got := NotifyRecipients(set)
	want := []int64{3, 5, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected recipients %v, got %v", want, got)
	}
}

func TestNotifyRecipients_Empty(t *testing.T) {
	set, err := NewAssignmentSet(2, 2025)
	if err != nil {
		t.Fatalf("NewAssignmentSet returned error: %v", err)
	}

	if got := NotifyRecipients(set); len(got) != 0 {
		t.Errorf("Expected no recipients for empty set, got %v", got)
	}
}
