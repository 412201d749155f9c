package roster

import (
	"testing"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

func TestDailyTarget(t *testing.T) {
	store := &domain.Store{WorkingHours: []domain.StoreWorkingHour{
		{Day: calendar.Monday, Hours: 8},
		{Day: calendar.Saturday, Hours: 4},
	}}

	if got := DailyTarget(store, calendar.Monday); got != 8 {
		t.Errorf("Expected 8 hours on Monday, got %f", got)
	}
	if got := DailyTarget(store, calendar.Saturday); got != 4 {
		t.Errorf("Expected 4 hours on Saturday, got %f", got)
	}
	// 没有配置的星期视为 0
	if got := DailyTarget(store, calendar.Sunday); got != 0 {
		t.Errorf("Expected 0 hours on Sunday, got %f", got)
	}
}

func TestWeeklyTarget(t *testing.T) {
	store := &domain.Store{WorkingHours: []domain.StoreWorkingHour{
		{Day: calendar.Monday, Hours: 8},
		{Day: calendar.Tuesday, Hours: 8},
		{Day: calendar.Saturday, Hours: 4.5},
	}}

	if got := WeeklyTarget(store); got != 20.5 {
		t.Errorf("Expected 20.5 weekly hours, got %f", got)
	}
}

func TestMonthlyTarget(t *testing.T) {
	// 只在星期一营业的门店：2025 年 3 月有 5 个星期一
	store := &domain.Store{WorkingHours: []domain.StoreWorkingHour{
		{Day: calendar.Monday, Hours: 8},
	}}

	days, err := calendar.DaysInMonth(2, 2025)
	if err != nil {
		t.Fatalf("DaysInMonth returned error: %v", err)
	}

	if got := MonthlyTarget(store, days); got != 40 {
		t.Errorf("Expected 40 monthly hours, got %f", got)
	}
}
