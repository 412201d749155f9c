package roster

import (
	"math"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

func buildSummaryFixture(t *testing.T) (*AssignmentSet, []*domain.User, []*domain.Store) {
	t.Helper()

	set, err := NewAssignmentSet(2, 2025)
	if err != nil {
		t.Fatalf("NewAssignmentSet returned error: %v", err)
	}

	inputs := []domain.Assignment{
		{UserID: 1, StoreID: 10, Date: date(2025, time.March, 3), Hours: 8},
		{UserID: 1, StoreID: 11, Date: date(2025, time.March, 4), Hours: 4},
		{UserID: 2, StoreID: 10, Date: date(2025, time.March, 4), Hours: 6},
	}
	for i := range inputs {
		if err := set.Add(&inputs[i]); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	employees := []*domain.User{
		{ID: 1, FullName: "张三"},
		{ID: 2, FullName: "李四"},
		{ID: 3, FullName: "王五"}, // 在职但本月没有排班
	}
	stores := []*domain.Store{
		{ID: 10, Name: "东校园店"},
		{ID: 11, Name: "南校园店"},
	}

	return set, employees, stores
}

func TestMonthlySummary(t *testing.T) {
	set, employees, stores := buildSummaryFixture(t)

	report := &CoverageReport{Gaps: []CoverageGap{{StoreID: 11, Date: date(2025, time.March, 5)}}}
	summary := MonthlySummary(set, employees, stores, report)

	if summary.Month != 3 || summary.Year != 2025 {
		t.Errorf("Expected month 3 year 2025, got %d/%d", summary.Month, summary.Year)
	}
	if summary.UncoveredSlots != 1 {
		t.Errorf("Expected 1 uncovered slot, got %d", summary.UncoveredSlots)
	}

	if len(summary.EmployeeTotals) != 2 {
		t.Fatalf("Expected 2 employee totals, got %d", len(summary.EmployeeTotals))
	}
	if summary.EmployeeTotals[0].UserID != 1 || summary.EmployeeTotals[0].Hours != 12 {
		t.Errorf("Unexpected first employee total: %+v", summary.EmployeeTotals[0])
	}
	if summary.EmployeeTotals[0].FullName != "张三" {
		t.Errorf("Expected name 张三, got %q", summary.EmployeeTotals[0].FullName)
	}
	if summary.EmployeeTotals[1].UserID != 2 || summary.EmployeeTotals[1].Hours != 6 {
		t.Errorf("Unexpected second employee total: %+v", summary.EmployeeTotals[1])
	}

	if len(summary.StoreTotals) != 2 {
		t.Fatalf("Expected 2 store totals, got %d", len(summary.StoreTotals))
	}
	if summary.StoreTotals[0].StoreID != 10 || summary.StoreTotals[0].Hours != 14 {
		t.Errorf("Unexpected first store total: %+v", summary.StoreTotals[0])
	}

	// 员工总和、门店总和与总计必须一致
	storeSum := 0.0
	for _, st := range summary.StoreTotals {
		storeSum += st.Hours
	}
	if math.Abs(summary.GrandTotal-18) > 1e-9 || math.Abs(storeSum-summary.GrandTotal) > 1e-9 {
		t.Errorf("Expected grand total 18 matching store sum, got grand=%f stores=%f", summary.GrandTotal, storeSum)
	}
}

func TestMonthlySummary_NilReport(t *testing.T) {
	set, employees, stores := buildSummaryFixture(t)

	summary := MonthlySummary(set, employees, stores, nil)
	if summary.UncoveredSlots != 0 {
		t.Errorf("Expected 0 uncovered slots with nil report, got %d", summary.UncoveredSlots)
	}
}

func TestEmployeeTimesheet(t *testing.T) {
	set, employees, stores := buildSummaryFixture(t)

	ts, err := EmployeeTimesheet(set, employees[0], stores)
	if err != nil {
		t.Fatalf("EmployeeTimesheet returned error: %v", err)
	}

	if len(ts.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(ts.Rows))
	}
	if ts.TotalHours != 12 {
		t.Errorf("Expected 12 total hours, got %f", ts.TotalHours)
	}
	if !ts.Rows[0].Date.Before(ts.Rows[1].Date) {
		t.Error("Expected rows sorted by date")
	}
	if ts.Rows[0].StoreName != "东校园店" {
		t.Errorf("Expected store name 东校园店, got %q", ts.Rows[0].StoreName)
	}
	// 2025-03-03 是星期一
	if ts.Rows[0].Weekday != calendar.Monday {
		t.Errorf("Expected Monday (%d), got %d", calendar.Monday, ts.Rows[0].Weekday)
	}
}

func TestEmployeeTimesheet_IdleEmployee(t *testing.T) {
	set, employees, stores := buildSummaryFixture(t)

	// 在职但没有排班的员工得到空工时表，而不是错误
	ts, err := EmployeeTimesheet(set, employees[2], stores)
	if err != nil {
		t.Fatalf("EmployeeTimesheet returned error: %v", err)
	}
	if len(ts.Rows) != 0 || ts.TotalHours != 0 {
		t.Errorf("Expected empty timesheet, got %d rows with %f hours", len(ts.Rows), ts.TotalHours)
	}
}

func TestEmployeeTimesheet_UnknownEmployee(t *testing.T) {
	set, _, stores := buildSummaryFixture(t)

	_, err := EmployeeTimesheet(set, nil, stores)
	if KindOf(err) != KindNotFound {
		t.Errorf("Expected kind %q, got %q (err=%v)", KindNotFound, KindOf(err), err)
	}
}
