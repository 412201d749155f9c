package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/repository"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/seed"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var month int
	var year int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入随机门店, 3: 生成指定月份的草稿排班表, 4: 导入真实数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.IntVar(&month, "month", int(time.Now().Month()), "排班表的月份 (1 到 12)")
	flag.IntVar(&year, "year", time.Now().Year(), "排班表的年份")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomEmployee(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机员工", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入员工", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入员工成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的门店数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				store := utils.GenerateRandomStore()
				if err := repo.CreateStore(store); err != nil {
					slog.Error("无法插入门店", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入门店成功", slog.Int("count", n-cnt))
		}
	case 3:
		if err := utils.ValidateMonthYear(int32(month), int32(year)); err != nil {
			slog.Error("月份或年份非法", slog.String("error", err.Error()))
			return
		}

		seed.SeedGeneratedSchedule(repo, int32(month), int32(year))
	case 4:
		seed.SeedRealData(repo)
	default:
		slog.Error("指定的操作非法")
	}
}
