package roster

import (
	"math"
	"testing"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestAssignmentSet_Add(t *testing.T) {
	set, err := NewAssignmentSet(2, 2025) // 2025 年 3 月
	if err != nil {
		t.Fatalf("NewAssignmentSet returned error: %v", err)
	}

	a := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.March, 5), Hours: 8}
	if err := set.Add(a); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("Expected 1 assignment, got %d", set.Len())
	}
	if a.ID >= 0 {
		t.Errorf("Expected unpersisted assignment to get a negative local ID, got %d", a.ID)
	}
}

func TestAssignmentSet_Add_DuplicateSlot(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)

	first := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.March, 5), Hours: 8}
	if err := set.Add(first); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	// 同一员工、同一天、同一门店：重复
	dup := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.March, 5), Hours: 4}
	err := set.Add(dup)
	if err == nil {
		t.Fatal("Expected error for duplicate slot, got nil")
	}
	if KindOf(err) != KindDuplicateKey {
		t.Errorf("Expected kind %q, got %q", KindDuplicateKey, KindOf(err))
	}

	// 换个门店就不是重复
	other := &domain.Assignment{UserID: 1, StoreID: 11, Date: date(2025, time.March, 5), Hours: 4}
	if err := set.Add(other); err != nil {
		t.Errorf("Expected no error for different store, got %v", err)
	}
}

func TestAssignmentSet_Add_OutOfMonth(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)

	outside := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.April, 1), Hours: 8}
	err := set.Add(outside)
	if err == nil {
		t.Fatal("Expected error for date outside month, got nil")
	}
	if KindOf(err) != KindOutOfRange {
		t.Errorf("Expected kind %q, got %q", KindOutOfRange, KindOf(err))
	}
}

func TestAssignmentSet_Add_InvalidHours(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)

	for _, hours := range []float64{-1, 25} {
		a := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.March, 5), Hours: hours}
		err := set.Add(a)
		if err == nil {
			t.Fatalf("Expected error for hours=%.1f, got nil", hours)
		}
		if KindOf(err) != KindInvalidArgument {
			t.Errorf("Expected kind %q for hours=%.1f, got %q", KindInvalidArgument, hours, KindOf(err))
		}
	}
}

func TestAssignmentSet_Update(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)
	a := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.March, 5), Hours: 8}
	if err := set.Add(a); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	stores := map[int64]*domain.Store{
		10: {ID: 10, Name: "东校园店", IsActive: true},
		11: {ID: 11, Name: "南校园店", IsActive: true},
		12: {ID: 12, Name: "北校园店", IsActive: false},
	}

	hours := 4.0
	updated, err := set.Update(a.ID, AssignmentPatch{Hours: &hours}, stores)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Hours != 4.0 {
		t.Errorf("Expected 4.0 hours after update, got %f", updated.Hours)
	}

	// 换到营业中的门店
	newStore := int64(11)
	updated, err = set.Update(a.ID, AssignmentPatch{StoreID: &newStore}, stores)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.StoreID != 11 {
		t.Errorf("Expected store 11 after update, got %d", updated.StoreID)
	}

	// 换到停业门店被拒绝
	inactive := int64(12)
	if _, err := set.Update(a.ID, AssignmentPatch{StoreID: &inactive}, stores); err == nil {
		t.Error("Expected error when moving to inactive store, got nil")
	}

	// 不存在的记录返回 NotFound
	if _, err := set.Update(999, AssignmentPatch{Hours: &hours}, stores); KindOf(err) != KindNotFound {
		t.Errorf("Expected kind %q for unknown id, got %q", KindNotFound, KindOf(err))
	}
}

func TestAssignmentSet_Update_SlotCollision(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)
	a := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.March, 5), Hours: 8}
	b := &domain.Assignment{UserID: 1, StoreID: 11, Date: date(2025, time.March, 5), Hours: 4}
	if err := set.Add(a); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := set.Add(b); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	stores := map[int64]*domain.Store{
		10: {ID: 10, Name: "东校园店", IsActive: true},
		11: {ID: 11, Name: "南校园店", IsActive: true},
	}

	// 把 b 挪到 a 的槽位上
	target := int64(10)
	_, err := set.Update(b.ID, AssignmentPatch{StoreID: &target}, stores)
	if KindOf(err) != KindDuplicateKey {
		t.Errorf("Expected kind %q for slot collision, got %q", KindDuplicateKey, KindOf(err))
	}
}

func TestAssignmentSet_Remove(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)
	a := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.March, 5), Hours: 8}
	if err := set.Add(a); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if err := set.Remove(a.ID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if set.Len() != 0 {
		t.Errorf("Expected 0 assignments after remove, got %d", set.Len())
	}

	// 删除同一条记录第二次必须报 NotFound，不能静默成功
	err := set.Remove(a.ID)
	if KindOf(err) != KindNotFound {
		t.Errorf("Expected kind %q for double remove, got %q", KindNotFound, KindOf(err))
	}

	// 槽位释放后可以重新占用
	again := &domain.Assignment{UserID: 1, StoreID: 10, Date: date(2025, time.March, 5), Hours: 6}
	if err := set.Add(again); err != nil {
		t.Errorf("Expected freed slot to be reusable, got %v", err)
	}
}

func TestAssignmentSet_Totals(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)
	inputs := []domain.Assignment{
		{UserID: 1, StoreID: 10, Date: date(2025, time.March, 3), Hours: 8},
		{UserID: 1, StoreID: 11, Date: date(2025, time.March, 4), Hours: 4},
		{UserID: 2, StoreID: 10, Date: date(2025, time.March, 3), Hours: 6},
		{UserID: 2, StoreID: 10, Date: date(2025, time.March, 4), Hours: 6.5},
	}
	for i := range inputs {
		if err := set.Add(&inputs[i]); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	byEmployee := set.TotalHoursByEmployee()
	if byEmployee[1] != 12 || byEmployee[2] != 12.5 {
		t.Errorf("Unexpected employee totals: %v", byEmployee)
	}

	byStore := set.TotalHoursByStore()
	if byStore[10] != 20.5 || byStore[11] != 4 {
		t.Errorf("Unexpected store totals: %v", byStore)
	}

	byDate := set.TotalHoursByDate()
	if byDate["2025-03-03"] != 14 || byDate["2025-03-04"] != 10.5 {
		t.Errorf("Unexpected date totals: %v", byDate)
	}

	// 三种汇总方式的总和必须一致
	sum := func(m map[int64]float64) float64 {
		total := 0.0
		for _, h := range m {
			total += h
		}
		return total
	}
	dateSum := 0.0
	for _, h := range byDate {
		dateSum += h
	}
	if math.Abs(sum(byEmployee)-sum(byStore)) > 1e-9 || math.Abs(sum(byEmployee)-dateSum) > 1e-9 {
		t.Errorf("Expected identical grand totals, got employee=%f store=%f date=%f", sum(byEmployee), sum(byStore), dateSum)
	}
}

func TestAssignmentSet_AssignmentsSorted(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)
	inputs := []domain.Assignment{
		{UserID: 2, StoreID: 11, Date: date(2025, time.March, 10), Hours: 4},
		{UserID: 1, StoreID: 10, Date: date(2025, time.March, 3), Hours: 8},
		{UserID: 2, StoreID: 10, Date: date(2025, time.March, 3), Hours: 6},
		{UserID: 1, StoreID: 11, Date: date(2025, time.March, 3), Hours: 2},
	}
	for i := range inputs {
		if err := set.Add(&inputs[i]); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	got := set.Assignments()
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.Date.Before(prev.Date) {
			t.Fatalf("Expected assignments sorted by date, %v before %v", prev.Date, cur.Date)
		}
		if cur.Date.Equal(prev.Date) && cur.StoreID < prev.StoreID {
			t.Fatalf("Expected assignments sorted by store within a day")
		}
		if cur.Date.Equal(prev.Date) && cur.StoreID == prev.StoreID && cur.UserID < prev.UserID {
			t.Fatalf("Expected assignments sorted by user within a store")
		}
	}
}

func TestAssignmentSet_Validate(t *testing.T) {
	set, _ := NewAssignmentSet(2, 2025)

	// 2025-03-03 是星期一
	inputs := []domain.Assignment{
		{UserID: 1, StoreID: 10, Date: date(2025, time.March, 3), Hours: 6},
		{UserID: 2, StoreID: 10, Date: date(2025, time.March, 3), Hours: 6}, // 门店当天共 12 超出目标 8
		{UserID: 3, StoreID: 11, Date: date(2025, time.March, 3), Hours: 7},
		{UserID: 3, StoreID: 10, Date: date(2025, time.March, 4), Hours: 9}, // 员工单日超过 8
	}
	for i := range inputs {
		if err := set.Add(&inputs[i]); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	stores := map[int64]*domain.Store{
		10: {ID: 10, Name: "东校园店", IsActive: true, WorkingHours: []domain.StoreWorkingHour{
			{Day: 1, Hours: 8}, {Day: 2, Hours: 12},
		}},
		11: {ID: 11, Name: "南校园店", IsActive: true, WorkingHours: []domain.StoreWorkingHour{
			{Day: 1, Hours: 8},
		}},
	}

	warnings := set.Validate(stores)
	if len(warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %d: %v", len(warnings), warnings)
	}

	// 警告按日期排序
	if warnings[0].Date != "2025-03-03" || warnings[0].StoreID != 10 {
		t.Errorf("Expected first warning for store 10 on 2025-03-03, got %+v", warnings[0])
	}
	if warnings[1].Date != "2025-03-04" || warnings[1].UserID != 3 {
		t.Errorf("Expected second warning for user 3 on 2025-03-04, got %+v", warnings[1])
	}
}

func TestFromAssignments_RejectsCorruptData(t *testing.T) {
	assignments := []domain.Assignment{
		{ID: 1, UserID: 1, StoreID: 10, Date: date(2025, time.March, 3), Hours: 8},
		{ID: 2, UserID: 1, StoreID: 10, Date: date(2025, time.March, 3), Hours: 4},
	}

	if _, err := FromAssignments(2, 2025, assignments); err == nil {
		t.Error("Expected error for duplicate slots in stored data, got nil")
	}
}
