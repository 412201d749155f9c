package roster

import (
	"reflect"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

func fullWeekStore(id int64, name string, hours float64) *domain.Store {
	whs := make([]domain.StoreWorkingHour, 0, 7)
	for day := int32(1); day <= 7; day++ {
		whs = append(whs, domain.StoreWorkingHour{Day: day, Hours: hours})
	}
	return &domain.Store{ID: id, Name: name, IsActive: true, WorkingHours: whs}
}

func employee(id int64, name string) *domain.User {
	return &domain.User{ID: id, FullName: name, Role: domain.RoleClerk, IsActive: true}
}

func TestNewGenerator_NoActiveStores(t *testing.T) {
	inactive := fullWeekStore(1, "东校园店", 8)
	inactive.IsActive = false

	_, err := NewGenerator(2, 2025, []*domain.Store{inactive}, []*domain.User{employee(1, "张三")}, nil)
	if KindOf(err) != KindInvalidArgument {
		t.Errorf("Expected kind %q, got %q (err=%v)", KindInvalidArgument, KindOf(err), err)
	}
}

func TestNewGenerator_NoActiveEmployees(t *testing.T) {
	left := employee(1, "张三")
	left.IsActive = false

	_, err := NewGenerator(2, 2025, []*domain.Store{fullWeekStore(1, "东校园店", 8)}, []*domain.User{left}, nil)
	if KindOf(err) != KindInvalidArgument {
		t.Errorf("Expected kind %q, got %q (err=%v)", KindInvalidArgument, KindOf(err), err)
	}
}

func TestGenerate_FullCoverage(t *testing.T) {
	stores := []*domain.Store{fullWeekStore(1, "东校园店", 8), fullWeekStore(2, "南校园店", 8)}
	employees := []*domain.User{employee(1, "张三"), employee(2, "李四"), employee(3, "王五")}

	g, err := NewGenerator(2, 2025, stores, employees, nil)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}

	set, report, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	// 3 个员工 2 家门店：每天都能覆盖所有门店
	if report.UncoveredCount() != 0 {
		t.Errorf("Expected full coverage, got %d gaps", report.UncoveredCount())
	}

	// 2025 年 3 月有 31 天，每天 2 家门店各 1 条记录
	if set.Len() != 62 {
		t.Errorf("Expected 62 assignments, got %d", set.Len())
	}

	// 一个员工一天只去一个门店
	type dayUser struct {
		date   string
		userID int64
	}
	seen := make(map[dayUser]bool)
	for _, a := range set.Assignments() {
		key := dayUser{date: a.Date.Format("2006-01-02"), userID: a.UserID}
		if seen[key] {
			t.Fatalf("Employee %d assigned to two stores on %v", a.UserID, a.Date)
		}
		seen[key] = true
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	stores := []*domain.Store{fullWeekStore(1, "东校园店", 8), fullWeekStore(2, "南校园店", 6)}
	employees := []*domain.User{employee(1, "张三"), employee(2, "李四"), employee(3, "王五")}

	run := func() []*domain.Assignment {
		g, err := NewGenerator(2, 2025, stores, employees, nil)
		if err != nil {
			t.Fatalf("NewGenerator returned error: %v", err)
		}
		set, _, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		return set.Assignments()
	}

	first := run()
	second := run()

	if len(first) != len(second) {
		t.Fatalf("Expected identical result sizes, got %d and %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.UserID != b.UserID || a.StoreID != b.StoreID || !a.Date.Equal(b.Date) || a.Hours != b.Hours {
			t.Fatalf("Expected identical assignments at index %d, got %+v and %+v", i, a, b)
		}
	}
}

func TestGenerate_FairnessAlternation(t *testing.T) {
	// 一家门店两个员工：贪心按累计工时最少分配，两人应该交替上班
	stores := []*domain.Store{fullWeekStore(1, "东校园店", 8)}
	employees := []*domain.User{employee(1, "张三"), employee(2, "李四")}

	g, err := NewGenerator(2, 2025, stores, employees, nil)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	set, _, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	assignments := set.Assignments()
	for i := 1; i < len(assignments); i++ {
		if assignments[i].UserID == assignments[i-1].UserID {
			t.Fatalf("Expected alternating employees, got %d twice in a row", assignments[i].UserID)
		}
	}

	totals := set.TotalHoursByEmployee()
	// 31 天 8 小时：16 天对 15 天，差恰好一天的工时
	if totals[1]-totals[2] != 8 {
		t.Errorf("Expected employee 1 to lead by exactly one shift, got %v", totals)
	}
}

func TestGenerate_SkipsZeroHourDays(t *testing.T) {
	// 星期日目标工时为 0 的门店当天不排班，也不算未覆盖
	store := fullWeekStore(1, "东校园店", 8)
	store.WorkingHours[6].Hours = 0 // 星期日

	g, err := NewGenerator(2, 2025, []*domain.Store{store}, []*domain.User{employee(1, "张三")}, nil)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	set, report, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if report.UncoveredCount() != 0 {
		t.Errorf("Expected no gaps for zero-hour days, got %d", report.UncoveredCount())
	}

	// 2025 年 3 月有 5 个星期日
	if set.Len() != 26 {
		t.Errorf("Expected 26 assignments (31 days minus 5 Sundays), got %d", set.Len())
	}
}

func TestGenerate_DaysOffCauseGaps(t *testing.T) {
	stores := []*domain.Store{fullWeekStore(1, "东校园店", 8)}
	employees := []*domain.User{employee(1, "张三")}

	dayOff := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	daysOff := DaysOff{1: {dayOff}}

	g, err := NewGenerator(2, 2025, stores, employees, daysOff)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	set, report, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if report.UncoveredCount() != 1 {
		t.Fatalf("Expected exactly 1 gap, got %d", report.UncoveredCount())
	}
	gap := report.Gaps[0]
	if !gap.Date.Equal(dayOff) || gap.StoreID != 1 || gap.TargetHours != 8 {
		t.Errorf("Unexpected gap: %+v", gap)
	}

	for _, a := range set.Assignments() {
		if a.Date.Equal(dayOff) {
			t.Errorf("Expected no assignment on the day off, got %+v", a)
		}
	}
}

func TestGenerate_TieBreakBySmallerID(t *testing.T) {
	stores := []*domain.Store{fullWeekStore(1, "东校园店", 8)}
	employees := []*domain.User{employee(2, "李四"), employee(1, "张三")}

	g, err := NewGenerator(2, 2025, stores, employees, nil)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	set, _, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	// 累计工时都为 0 时，第一天必须选 ID 较小的员工
	first := set.Assignments()[0]
	if first.UserID != 1 {
		t.Errorf("Expected employee 1 on day one, got %d", first.UserID)
	}
}

func TestGenerate_StoresProcessedInIDOrder(t *testing.T) {
	// 单个员工两家门店：每天员工被 ID 较小的门店占用，另一家记入报告
	stores := []*domain.Store{fullWeekStore(2, "南校园店", 8), fullWeekStore(1, "东校园店", 8)}
	employees := []*domain.User{employee(1, "张三")}

	g, err := NewGenerator(2, 2025, stores, employees, nil)
	if err != nil {
		t.Fatalf("NewGenerator returned error: %v", err)
	}
	set, report, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	storeIDs := make(map[int64]bool)
	for _, a := range set.Assignments() {
		storeIDs[a.StoreID] = true
	}
	if !reflect.DeepEqual(storeIDs, map[int64]bool{1: true}) {
		t.Errorf("Expected all assignments at store 1, got %v", storeIDs)
	}

	if report.UncoveredCount() != 31 {
		t.Errorf("Expected 31 gaps for store 2, got %d", report.UncoveredCount())
	}
	for _, gap := range report.Gaps {
		if gap.StoreID != 2 {
			t.Errorf("Expected all gaps at store 2, got %+v", gap)
		}
	}
}
