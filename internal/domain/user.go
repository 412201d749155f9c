package domain

import (
	"time"
)

type Role string

const (
	RoleClerk   Role = "店员"
	RoleManager Role = "店长"
)

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	TelegramChatID *int64    `json:"telegramChatID"` // 为 nil 时表示该员工没有绑定 Telegram
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}
