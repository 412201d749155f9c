package domain

import "time"

// StoreWorkingHour 表示门店在某个星期几的目标营业工时
// day 的取值为 1 到 7，1 表示星期一，7 表示星期日
type StoreWorkingHour struct {
	Day   int32   `json:"day"`
	Hours float64 `json:"hours"`
}

type Store struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	WorkingHours []StoreWorkingHour `json:"workingHours"`
	IsActive     bool               `json:"isActive"`
	CreatedAt    time.Time          `json:"createdAt"`
	Version      int32              `json:"-"`
}
