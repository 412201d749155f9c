package roster

import (
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

// 每人每天的合理工作上限，超过这个值时 Validate 会给出提醒
const FullWorkdayHours = 8.0

// 单条排班记录允许的最大小时数
const MaxHoursPerDay = 24.0

// DailyTarget 返回门店在某个星期几的目标工时，没有配置时视为 0
func DailyTarget(store *domain.Store, weekday int32) float64 {
	for _, wh := range store.WorkingHours {
		if wh.Day == weekday {
			return wh.Hours
		}
	}
	return 0
}

// WeeklyTarget 返回门店一周的目标工时总和
func WeeklyTarget(store *domain.Store) float64 {
	total := 0.0
	for _, wh := range store.WorkingHours {
		total += wh.Hours
	}
	return total
}

// MonthlyTarget 返回门店在给定月份的目标工时总和
func MonthlyTarget(store *domain.Store, days []calendar.Day) float64 {
	total := 0.0
	for _, day := range days {
		total += DailyTarget(store, day.Weekday)
	}
	return total
}
