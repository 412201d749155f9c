package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

type EmployeeTotal struct {
	UserID   int64   `json:"userID"`
	FullName string  `json:"fullName"`
	Hours    float64 `json:"hours"`
}

type StoreTotal struct {
	StoreID   int64   `json:"storeID"`
	StoreName string  `json:"storeName"`
	Hours     float64 `json:"hours"`
}

type Summary struct {
	Month          int32           `json:"month"`
	Year           int32           `json:"year"`
	EmployeeTotals []EmployeeTotal `json:"employeeTotals"`
	StoreTotals    []StoreTotal    `json:"storeTotals"`
	GrandTotal     float64         `json:"grandTotal"`
	UncoveredSlots int             `json:"uncoveredSlots"`
}

// MonthlySummary 计算整个月的汇总视图
// 每次调用都从 AssignmentSet 重新计算，不依赖任何共享的计数器
func MonthlySummary(set *AssignmentSet, employees []*domain.User, stores []*domain.Store, report *CoverageReport) *Summary {
	employeeNames := make(map[int64]string, len(employees))
	for _, e := range employees {
		employeeNames[e.ID] = e.FullName
	}
	storeNames := make(map[int64]string, len(stores))
	for _, s := range stores {
		storeNames[s.ID] = s.Name
	}

	summary := &Summary{
		Month:          int32(set.Month0() + 1),
		Year:           int32(set.Year()),
		EmployeeTotals: []EmployeeTotal{},
		StoreTotals:    []StoreTotal{},
		UncoveredSlots: report.UncoveredCount(),
	}

	for userID, hours := range set.TotalHoursByEmployee() {
		summary.EmployeeTotals = append(summary.EmployeeTotals, EmployeeTotal{
			UserID:   userID,
			FullName: employeeNames[userID],
			Hours:    hours,
		})
		summary.GrandTotal += hours
	}
	sort.Slice(summary.EmployeeTotals, func(i, j int) bool {
		return summary.EmployeeTotals[i].UserID < summary.EmployeeTotals[j].UserID
	})

	for storeID, hours := range set.TotalHoursByStore() {
		summary.StoreTotals = append(summary.StoreTotals, StoreTotal{
			StoreID:   storeID,
			StoreName: storeNames[storeID],
			Hours:     hours,
		})
	}
	sort.Slice(summary.StoreTotals, func(i, j int) bool {
		return summary.StoreTotals[i].StoreID < summary.StoreTotals[j].StoreID
	})

	return summary
}

type TimesheetRow struct {
	Date      time.Time `json:"date"`
	Weekday   int32     `json:"weekday"`
	StoreID   int64     `json:"storeID"`
	StoreName string    `json:"storeName"`
	Hours     float64   `json:"hours"`
}

type Timesheet struct {
	UserID     int64          `json:"userID"`
	FullName   string         `json:"fullName"`
	Month      int32          `json:"month"`
	Year       int32          `json:"year"`
	Rows       []TimesheetRow `json:"rows"`
	TotalHours float64        `json:"totalHours"`
}

// EmployeeTimesheet 生成单个员工的按日期排序的工时表
// 员工不存在是错误，在职但当月没有排班的员工得到的是空的工时表，两者必须区分
func EmployeeTimesheet(set *AssignmentSet, employee *domain.User, stores []*domain.Store) (*Timesheet, error) {
	if employee == nil {
		return nil, NewError(KindNotFound, "员工不存在")
	}

	storeNames := make(map[int64]string, len(stores))
	for _, s := range stores {
		storeNames[s.ID] = s.Name
	}

	ts := &Timesheet{
		UserID:   employee.ID,
		FullName: employee.FullName,
		Month:    int32(set.Month0() + 1),
		Year:     int32(set.Year()),
		Rows:     []TimesheetRow{},
	}

	// Assignments 已按日期排序
	for _, a := range set.Assignments() {
		if a.UserID != employee.ID {
			continue
		}
		name, ok := storeNames[a.StoreID]
		if !ok {
			name = fmt.Sprintf("门店 %d", a.StoreID)
		}
		ts.Rows = append(ts.Rows, TimesheetRow{
			Date:      a.Date,
			Weekday:   calendar.WeekdayOf(a.Date),
			StoreID:   a.StoreID,
			StoreName: name,
			Hours:     a.Hours,
		})
		ts.TotalHours += a.Hours
	}

	return ts, nil
}
