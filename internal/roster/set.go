package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

const dateKeyLayout = "2006-01-02"

// slotKey 唯一标识一条排班记录所占用的槽位
// 同一个员工在同一天的同一个门店只允许存在一条记录
type slotKey struct {
	userID  int64
	storeID int64
	date    string
}

// AssignmentSet 是某个排班表的全部排班记录在内存中的表示
// 所有的变更操作都会维护槽位唯一性和日期范围这两个不变量
type AssignmentSet struct {
	month0 int
	year   int

	byID  map[int64]*domain.Assignment
	byKey map[slotKey]int64

	// 尚未持久化的记录使用负数 ID，避免和数据库生成的 ID 冲突
	nextLocalID int64
}

func NewAssignmentSet(month0 int, year int) (*AssignmentSet, error) {
	if _, err := calendar.DaysInMonth(month0, year); err != nil {
		return nil, NewError(KindInvalidArgument, err.Error())
	}

	return &AssignmentSet{
		month0:      month0,
		year:        year,
		byID:        make(map[int64]*domain.Assignment),
		byKey:       make(map[slotKey]int64),
		nextLocalID: -1,
	}, nil
}

// FromAssignments 从持久化的记录中恢复出 AssignmentSet
func FromAssignments(month0 int, year int, assignments []domain.Assignment) (*AssignmentSet, error) {
	set, err := NewAssignmentSet(month0, year)
	if err != nil {
		return nil, err
	}

	for i := range assignments {
		if err := set.Add(&assignments[i]); err != nil {
			return nil, err
		}
	}

	return set, nil
}

func (s *AssignmentSet) Month0() int {
	return s.month0
}

func (s *AssignmentSet) Year() int {
	return s.year
}

func (s *AssignmentSet) Len() int {
	return len(s.byID)
}

func (s *AssignmentSet) key(a *domain.Assignment) slotKey {
	return slotKey{
		userID:  a.UserID,
		storeID: a.StoreID,
		date:    calendar.NormalizeDate(a.Date).Format(dateKeyLayout),
	}
}

func (s *AssignmentSet) inMonth(date time.Time) bool {
	d := calendar.NormalizeDate(date)
	return d.Year() == s.year && int(d.Month())-1 == s.month0
}

// Add 插入一条新的排班记录
// 日期不在本月内时返回 OutOfRange，槽位已被占用时返回 DuplicateKey，
// 想要修改已有记录的小时数应该调用 Update 而不是重复 Add
func (s *AssignmentSet) Add(a *domain.Assignment) error {
	if a.Hours < 0 || a.Hours > MaxHoursPerDay {
		return NewError(KindInvalidArgument, fmt.Sprintf("小时数 %.1f 非法（应为 0 到 %.0f）", a.Hours, MaxHoursPerDay))
	}
	if !s.inMonth(a.Date) {
		return NewError(KindOutOfRange, fmt.Sprintf("日期 %s 不在 %d 年 %d 月内", a.Date.Format(dateKeyLayout), s.year, s.month0+1))
	}

	key := s.key(a)
	if _, exists := s.byKey[key]; exists {
		return NewError(KindDuplicateKey, fmt.Sprintf("员工 %d 在 %s 已有门店 %d 的排班记录", a.UserID, key.date, a.StoreID))
	}

	if a.ID == 0 {
		a.ID = s.nextLocalID
		s.nextLocalID--
	}
	a.Date = calendar.NormalizeDate(a.Date)

	s.byID[a.ID] = a
	s.byKey[key] = a.ID

	return nil
}

// AssignmentPatch 描述对一条排班记录的部分修改
type AssignmentPatch struct {
	StoreID *int64
	Hours   *float64
}

// Update 修改一条已有的排班记录
// 修改门店时需要传入门店信息以校验目标门店仍然在营业
func (s *AssignmentSet) Update(id int64, patch AssignmentPatch, stores map[int64]*domain.Store) (*domain.Assignment, error) {
	a, exists := s.byID[id]
	if !exists {
		return nil, NewError(KindNotFound, fmt.Sprintf("排班记录 %d 不存在", id))
	}

	if patch.Hours != nil {
		if *patch.Hours < 0 || *patch.Hours > MaxHoursPerDay {
			return nil, NewError(KindInvalidArgument, fmt.Sprintf("小时数 %.1f 非法（应为 0 到 %.0f）", *patch.Hours, MaxHoursPerDay))
		}
	}

	if patch.StoreID != nil && *patch.StoreID != a.StoreID {
		store, ok := stores[*patch.StoreID]
		if !ok {
			return nil, NewError(KindNotFound, fmt.Sprintf("门店 %d 不存在", *patch.StoreID))
		}
		if !store.IsActive {
			return nil, NewError(KindInvalidArgument, fmt.Sprintf("门店 %s 已停业，不能再安排排班", store.Name))
		}

		newKey := slotKey{
			userID:  a.UserID,
			storeID: *patch.StoreID,
			date:    a.Date.Format(dateKeyLayout),
		}
		if _, occupied := s.byKey[newKey]; occupied {
			return nil, NewError(KindDuplicateKey, fmt.Sprintf("员工 %d 在 %s 已有门店 %d 的排班记录", a.UserID, newKey.date, *patch.StoreID))
		}

		delete(s.byKey, s.key(a))
		a.StoreID = *patch.StoreID
		s.byKey[newKey] = a.ID
	}

	if patch.Hours != nil {
		a.Hours = *patch.Hours
	}

	return a, nil
}

// Remove 删除一条排班记录
// 删除不存在的记录返回 NotFound 而不是静默成功，方便调用方发现并发修改
func (s *AssignmentSet) Remove(id int64) error {
	a, exists := s.byID[id]
	if !exists {
		return NewError(KindNotFound, fmt.Sprintf("排班记录 %d 不存在", id))
	}

	delete(s.byKey, s.key(a))
	delete(s.byID, id)

	return nil
}

// Assignments 按（日期, 门店, 员工）排序返回所有的排班记录，保证遍历顺序稳定
func (s *AssignmentSet) Assignments() []*domain.Assignment {
	list := make([]*domain.Assignment, 0, len(s.byID))
	for _, a := range s.byID {
		list = append(list, a)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		if list[i].StoreID != list[j].StoreID {
			return list[i].StoreID < list[j].StoreID
		}
		return list[i].UserID < list[j].UserID
	})

	return list
}

func (s *AssignmentSet) TotalHoursByEmployee() map[int64]float64 {
	totals := make(map[int64]float64)
	for _, a := range s.byID {
		totals[a.UserID] += a.Hours
	}
	return totals
}

func (s *AssignmentSet) TotalHoursByStore() map[int64]float64 {
	totals := make(map[int64]float64)
	for _, a := range s.byID {
		totals[a.StoreID] += a.Hours
	}
	return totals
}

func (s *AssignmentSet) TotalHoursByDate() map[string]float64 {
	totals := make(map[string]float64)
	for _, a := range s.byID {
		totals[a.Date.Format(dateKeyLayout)] += a.Hours
	}
	return totals
}

// ValidationWarning 是 Validate 给出的提醒
// 手动修改允许超出门店目标或单日工作上限，这里只提醒不拒绝
type ValidationWarning struct {
	Date    string  `json:"date"`
	StoreID int64   `json:"storeID,omitempty"`
	UserID  int64   `json:"userID,omitempty"`
	Hours   float64 `json:"hours"`
	Limit   float64 `json:"limit"`
	Message string  `json:"message"`
}

// Validate 检查当前的排班是否超出门店的每日目标工时或员工的单日工作上限
func (s *AssignmentSet) Validate(stores map[int64]*domain.Store) []ValidationWarning {
	storeDayHours := make(map[slotKey]float64) // userID 置 0，复用 key 结构
	userDayHours := make(map[slotKey]float64)  // storeID 置 0

	for _, a := range s.byID {
		date := a.Date.Format(dateKeyLayout)
		storeDayHours[slotKey{storeID: a.StoreID, date: date}] += a.Hours
		userDayHours[slotKey{userID: a.UserID, date: date}] += a.Hours
	}

	warnings := []ValidationWarning{}

	for key, hours := range storeDayHours {
		store, ok := stores[key.storeID]
		if !ok {
			continue
		}
		date, _ := time.Parse(dateKeyLayout, key.date)
		target := DailyTarget(store, calendar.WeekdayOf(date))
		if hours > target {
			warnings = append(warnings, ValidationWarning{
				Date:    key.date,
				StoreID: key.storeID,
				Hours:   hours,
				Limit:   target,
				Message: fmt.Sprintf("门店 %s 在 %s 的排班 %.1f 小时超出目标 %.1f 小时", store.Name, key.date, hours, target),
			})
		}
	}

	for key, hours := range userDayHours {
		if hours > FullWorkdayHours {
			warnings = append(warnings, ValidationWarning{
				Date:    key.date,
				UserID:  key.userID,
				Hours:   hours,
				Limit:   FullWorkdayHours,
				Message: fmt.Sprintf("员工 %d 在 %s 的排班 %.1f 小时超出单日上限 %.1f 小时", key.userID, key.date, hours, FullWorkdayHours),
			})
		}
	}

	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].Date != warnings[j].Date {
			return warnings[i].Date < warnings[j].Date
		}
		if warnings[i].StoreID != warnings[j].StoreID {
			return warnings[i].StoreID < warnings[j].StoreID
		}
		return warnings[i].UserID < warnings[j].UserID
	})

	return warnings
}
