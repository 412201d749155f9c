package domain

import "time"

type ScheduleStatus string

const (
	ScheduleStatusDraft ScheduleStatus = "草稿"
	ScheduleStatusReady ScheduleStatus = "已发布"
)

// Schedule 表示某个月份的完整排班表
// month 对外统一使用 1 到 12
type Schedule struct {
	ID              int64          `json:"id"`
	Month           int32          `json:"month"`
	Year            int32          `json:"year"`
	Status          ScheduleStatus `json:"status"`
	LastActorID     *int64         `json:"lastActorID"` // 最后一次修改状态的用户
	StatusChangedAt *time.Time     `json:"statusChangedAt"`
	Assignments     []Assignment   `json:"assignments"`
	CreatedAt       time.Time      `json:"createdAt"`
	Version         int32          `json:"-"`
}

// Assignment 表示某个员工在某一天到某个门店工作的小时数
type Assignment struct {
	ID         int64     `json:"id"`
	ScheduleID int64     `json:"scheduleID"`
	UserID     int64     `json:"userID"`
	StoreID    int64     `json:"storeID"`
	Date       time.Time `json:"date"`
	Hours      float64   `json:"hours"`
	Version    int32     `json:"-"`
}
