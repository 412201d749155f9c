// Package calendar 提供纯粹的月份与日期计算
// 注意这个包内部的月份统一使用 0 到 11，对外接口层的月份统一使用 1 到 12，
// 两者之间的转换必须在边界处显式进行
package calendar

import (
	"fmt"
	"time"
)

// 星期几统一使用 1 到 7，1 表示星期一，7 表示星期日
const (
	Monday int32 = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

type Day struct {
	Date    time.Time `json:"date"`
	Weekday int32     `json:"weekday"`
}

// WeekdayOf 将 time.Weekday（0 表示星期日）转换为 1 到 7 的表示
func WeekdayOf(t time.Time) int32 {
	wd := int32(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return wd
}

// NormalizeDate 将时间截断到 UTC 的零点，保证日期比较不受时区和时刻影响
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth 按日期顺序返回 (month0, year) 的所有日期
func DaysInMonth(month0 int, year int) ([]Day, error) {
	if month0 < 0 || month0 > 11 {
		return nil, fmt.Errorf("月份 %d 超出范围（应为 0 到 11）", month0)
	}
	if year < 1970 || year > 2100 {
		return nil, fmt.Errorf("年份 %d 超出范围", year)
	}

	first := time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC)
	// 下个月的第一天减去本月的第一天即为本月的天数
	next := first.AddDate(0, 1, 0)
	count := int(next.Sub(first).Hours() / 24)

	days := make([]Day, 0, count)
	for i := 0; i < count; i++ {
		date := first.AddDate(0, 0, i)
		days = append(days, Day{
			Date:    date,
			Weekday: WeekdayOf(date),
		})
	}

	return days, nil
}
