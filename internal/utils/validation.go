package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
)

const DateLayout = "2006-01-02"

// ValidateMonthYear 检查对外接口传入的月份和年份
// 对外的月份统一是 1 到 12
func ValidateMonthYear(month int32, year int32) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("月份 %d 非法（应为 1 到 12）", month)
	}
	if year < 1970 || year > 2100 {
		return fmt.Errorf("年份 %d 非法", year)
	}
	return nil
}

// ValidateWorkingHours 检查门店的目标工时配置
// 必须恰好覆盖星期一到星期日各一次，工时为 0 到 24 且是 0.5 的整数倍
func ValidateWorkingHours(whs []domain.StoreWorkingHour) error {
	if len(whs) != 7 {
		return errors.New("目标工时必须覆盖一周七天")
	}

	seen := make(map[int32]bool)
	for _, wh := range whs {
		if wh.Day < 1 || wh.Day > 7 {
			return fmt.Errorf("星期 %d 非法（应为 1 到 7）", wh.Day)
		}
		if seen[wh.Day] {
			return fmt.Errorf("星期 %d 出现了多次", wh.Day)
		}
		seen[wh.Day] = true

		if wh.Hours < 0 || wh.Hours > 24 {
			return fmt.Errorf("星期 %d 的目标工时 %.1f 非法（应为 0 到 24）", wh.Day, wh.Hours)
		}
		if math.Mod(wh.Hours*2, 1) != 0 {
			return fmt.Errorf("星期 %d 的目标工时 %.2f 非法（只支持 0.5 的整数倍）", wh.Day, wh.Hours)
		}
	}

	return nil
}

// AssignmentInput 是传输层传入的单条排班记录，在进入引擎之前完成校验
type AssignmentInput struct {
	UserID  int64   `json:"userID" validate:"required"`
	StoreID int64   `json:"storeID" validate:"required"`
	Date    string  `json:"date" validate:"required"`
	Hours   float64 `json:"hours" validate:"min=0,max=24"`
}

// ValidateAssignmentBatch 对整批排班输入进行校验并解析日期
// 任何一条不合法都拒绝整批数据，错误信息中带有每一条的诊断
func ValidateAssignmentBatch(inputs []AssignmentInput, month0 int, year int) ([]domain.Assignment, error) {
	problems := []string{}
	assignments := make([]domain.Assignment, 0, len(inputs))

	for i, input := range inputs {
		date, err := time.Parse(DateLayout, input.Date)
		if err != nil {
			problems = append(problems, fmt.Sprintf("第 %d 条：日期 %q 格式错误（应为 YYYY-MM-DD）", i+1, input.Date))
			continue
		}

		date = calendar.NormalizeDate(date)
		if date.Year() != year || int(date.Month())-1 != month0 {
			problems = append(problems, fmt.Sprintf("第 %d 条：日期 %s 不在 %d 年 %d 月内", i+1, input.Date, year, month0+1))
			continue
		}

		if input.Hours < 0 || input.Hours > 24 {
			problems = append(problems, fmt.Sprintf("第 %d 条：小时数 %.1f 非法（应为 0 到 24）", i+1, input.Hours))
			continue
		}

		assignments = append(assignments, domain.Assignment{
			UserID:  input.UserID,
			StoreID: input.StoreID,
			Date:    date,
			Hours:   input.Hours,
		})
	}

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "；"))
	}

	return assignments, nil
}

// ParseDaysOff 解析生成排班时传入的休息日
func ParseDaysOff(items []DaysOffInput, month0 int, year int) (map[int64][]time.Time, error) {
	problems := []string{}
	daysOff := make(map[int64][]time.Time, len(items))

	for i, item := range items {
		for _, dateStr := range item.Dates {
			date, err := time.Parse(DateLayout, dateStr)
			if err != nil {
				problems = append(problems, fmt.Sprintf("第 %d 条：日期 %q 格式错误（应为 YYYY-MM-DD）", i+1, dateStr))
				continue
			}

			date = calendar.NormalizeDate(date)
			if date.Year() != year || int(date.Month())-1 != month0 {
				problems = append(problems, fmt.Sprintf("第 %d 条：日期 %s 不在 %d 年 %d 月内", i+1, dateStr, year, month0+1))
				continue
			}

			daysOff[item.UserID] = append(daysOff[item.UserID], date)
		}
	}

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "；"))
	}

	return daysOff, nil
}

type DaysOffInput struct {
	UserID int64    `json:"userID" validate:"required"`
	Dates  []string `json:"dates" validate:"required"`
}
