package roster

import (
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

// DaysOff 是生成排班时的输入：每个员工在本月内不能排班的日期
// 这个数据只在生成时使用，不会被持久化
type DaysOff map[int64][]time.Time

// CoverageGap 表示没能覆盖到的（门店, 日期）槽位
type CoverageGap struct {
	StoreID     int64     `json:"storeID"`
	StoreName   string    `json:"storeName"`
	Date        time.Time `json:"date"`
	Weekday     int32     `json:"weekday"`
	TargetHours float64   `json:"targetHours"`
}

// CoverageReport 汇总一次生成中所有未覆盖的槽位
// 人手不足不是错误，生成总是返回能排出的最好结果和这份报告
type CoverageReport struct {
	Gaps []CoverageGap `json:"gaps"`
}

func (r *CoverageReport) UncoveredCount() int {
	if r == nil {
		return 0
	}
	return len(r.Gaps)
}

// Generator 是贪心的排班生成器
//
// 算法是单趟贪心而不是全局最优：按日期顺序遍历每一天，每天内按门店 ID
// 顺序遍历每个营业中的门店，把门店当天的目标工时整体分配给当月累计工时
// 最少的可用员工（累计相同时取 ID 较小者）。一个员工一天只去一个门店。
// 输入相同且遍历顺序相同时结果是确定的，但手动修改过累计工时再重新生成
// 可能得到不同的方案，这是预期内的取舍。
type Generator struct {
	month0    int
	year      int
	stores    []*domain.Store
	employees []*domain.User
	daysOff   map[int64]map[string]bool
}

func NewGenerator(month0 int, year int, stores []*domain.Store, employees []*domain.User, daysOff DaysOff) (*Generator, error) {
	if _, err := calendar.DaysInMonth(month0, year); err != nil {
		return nil, NewError(KindInvalidArgument, err.Error())
	}

	g := &Generator{
		month0:    month0,
		year:      year,
		stores:    make([]*domain.Store, 0, len(stores)),
		employees: make([]*domain.User, 0, len(employees)),
		daysOff:   make(map[int64]map[string]bool),
	}

	// 停业的门店和离职的员工不参与生成
	for _, store := range stores {
		if store.IsActive {
			g.stores = append(g.stores, store)
		}
	}
	for _, employee := range employees {
		if employee.IsActive {
			g.employees = append(g.employees, employee)
		}
	}

	if len(g.stores) == 0 {
		return nil, NewError(KindInvalidArgument, "没有营业中的门店，无法生成排班")
	}
	if len(g.employees) == 0 {
		return nil, NewError(KindInvalidArgument, "没有在职员工，无法生成排班")
	}

	// 保证遍历顺序稳定，这是生成结果确定性的前提
	sort.Slice(g.stores, func(i, j int) bool {
		return g.stores[i].ID < g.stores[j].ID
	})
	sort.Slice(g.employees, func(i, j int) bool {
		return g.employees[i].ID < g.employees[j].ID
	})

	for userID, dates := range daysOff {
		if _, exists := g.daysOff[userID]; !exists {
			g.daysOff[userID] = make(map[string]bool)
		}
		for _, date := range dates {
			g.daysOff[userID][calendar.NormalizeDate(date).Format(dateKeyLayout)] = true
		}
	}

	return g, nil
}

// Generate 生成整个月的排班和覆盖报告
func (g *Generator) Generate() (*AssignmentSet, *CoverageReport, error) {
	days, err := calendar.DaysInMonth(g.month0, g.year)
	if err != nil {
		return nil, nil, NewError(KindInvalidArgument, err.Error())
	}

	set, err := NewAssignmentSet(g.month0, g.year)
	if err != nil {
		return nil, nil, err
	}

	report := &CoverageReport{Gaps: []CoverageGap{}}

	cumulative := make(map[int64]float64)        // 每个员工当月的累计工时
	committed := make(map[string]map[int64]bool) // 每天已被占用的员工

	for _, day := range days {
		dateKey := day.Date.Format(dateKeyLayout)
		if _, exists := committed[dateKey]; !exists {
			committed[dateKey] = make(map[int64]bool)
		}

		for _, store := range g.stores {
			target := DailyTarget(store, day.Weekday)
			if target == 0 {
				continue
			}

			candidate := g.pickCandidate(dateKey, committed[dateKey], cumulative)
			if candidate == nil {
				// 当天所有人都休息或已被其他门店占用，记入报告后继续
				report.Gaps = append(report.Gaps, CoverageGap{
					StoreID:     store.ID,
					StoreName:   store.Name,
					Date:        day.Date,
					Weekday:     day.Weekday,
					TargetHours: target,
				})
				continue
			}

			if err := set.Add(&domain.Assignment{
				UserID:  candidate.ID,
				StoreID: store.ID,
				Date:    day.Date,
				Hours:   target,
			}); err != nil {
				return nil, nil, err
			}

			committed[dateKey][candidate.ID] = true
			cumulative[candidate.ID] += target
		}
	}

	return set, report, nil
}

// pickCandidate 在当天可用的员工中选出累计工时最少的一个
func (g *Generator) pickCandidate(dateKey string, committed map[int64]bool, cumulative map[int64]float64) *domain.User {
	var best *domain.User

	for _, employee := range g.employees {
		if committed[employee.ID] {
			continue
		}
		if g.daysOff[employee.ID][dateKey] {
			continue
		}

		if best == nil {
			best = employee
			continue
		}

		// 员工列表已按 ID 升序排列，严格小于即可保证累计相同时取 ID 较小者
		if cumulative[employee.ID] < cumulative[best.ID] {
			best = employee
		}
	}

	return best
}
