package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/repository"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/roster"
)

// StoreHourMap 是门店名称到一周目标工时的映射
// 星期使用 1 到 7，1 是星期一
var StoreHourMap = map[string][]domain.StoreWorkingHour{
	"东校园店": {
		{Day: 1, Hours: 8}, {Day: 2, Hours: 8}, {Day: 3, Hours: 8},
		{Day: 4, Hours: 8}, {Day: 5, Hours: 8}, {Day: 6, Hours: 4}, {Day: 7, Hours: 0},
	},
	"南校园店": {
		{Day: 1, Hours: 8}, {Day: 2, Hours: 8}, {Day: 3, Hours: 8},
		{Day: 4, Hours: 8}, {Day: 5, Hours: 8}, {Day: 6, Hours: 8}, {Day: 7, Hours: 4},
	},
	"北校园店": {
		{Day: 1, Hours: 4}, {Day: 2, Hours: 4}, {Day: 3, Hours: 4},
		{Day: 4, Hours: 4}, {Day: 5, Hours: 4}, {Day: 6, Hours: 0}, {Day: 7, Hours: 0},
	},
}

// SeedRealData 从 CSV 文件导入真实的员工名单，并插入预设的门店
// CSV 的表头为：用户名,姓名,邮箱,角色
func SeedRealData(r *repository.Repository) {
	for name, hours := range StoreHourMap {
		store := &domain.Store{
			Name:         name,
			WorkingHours: hours,
		}
		if err := r.CreateStore(store); err != nil {
			slog.Error("插入门店失败", "name", name, "error", err)
			continue
		}
	}

	file, err := os.Open("./internal/seed/data/employees.csv")
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		slog.Error("读取表头失败", "error", err)
		return
	}

	cnt := 0
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("读取文件失败", "error", err)
			return
		}

		record := make(map[string]string)
		for i, value := range row {
			record[headers[i]] = value
		}

		username := record["用户名"]
		if username == "" {
			slog.Error("没有找到用户名", "record", record)
			continue
		}

		// 已存在的员工跳过，保证重复导入是安全的
		if _, err := r.GetUserByUsername(username); err == nil {
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("获取员工失败", "error", err)
			continue
		}

		user := &domain.User{
			Username:     username,
			PasswordHash: "$2a$10$aUTaWl3vmXuQFocBkb9Qx.YJPAzNoaAcj2VC5tI45l1Roh24meCgO", // roster@test8403
			FullName:     record["姓名"],
			Email:        record["邮箱"],
			Role:         domain.Role(record["角色"]),
		}

		if err := r.CreateUser(user); err != nil {
			slog.Error("插入员工失败", "error", err)
			continue
		}

		cnt++
	}

	slog.Info("导入数据完成", "employees", cnt)
}

// SeedGeneratedSchedule 为指定月份生成并保存一份草稿排班表
func SeedGeneratedSchedule(r *repository.Repository, month int32, year int32) {
	stores, err := r.GetAllStores(false)
	if err != nil {
		slog.Error("无法获取门店列表", "error", err)
		return
	}

	employees, err := r.GetActiveEmployees()
	if err != nil {
		slog.Error("无法获取员工列表", "error", err)
		return
	}

	generator, err := roster.NewGenerator(int(month)-1, int(year), stores, employees, nil)
	if err != nil {
		slog.Error("无法创建排班生成器", "error", err)
		return
	}

	set, report, err := generator.Generate()
	if err != nil {
		slog.Error("生成排班失败", "error", err)
		return
	}

	schedule := &domain.Schedule{
		Month: month,
		Year:  year,
	}
	for _, a := range set.Assignments() {
		schedule.Assignments = append(schedule.Assignments, *a)
	}

	if err := r.UpsertSchedule(schedule); err != nil {
		slog.Error("保存排班表失败", "error", err)
		return
	}

	slog.Info("生成排班表完成",
		"month", month,
		"year", year,
		"assignments", set.Len(),
		"uncovered", report.UncoveredCount(),
	)
}
