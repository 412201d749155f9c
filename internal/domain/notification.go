package domain

type NotificationMessage struct {
	Type           string `json:"type"`
	UserID         int64  `json:"userID"`
	Email          string `json:"email"`
	TelegramChatID *int64 `json:"telegramChatID"`
	Data           any    `json:"data"`
}

type ScheduleReadyData struct {
	FullName string `json:"fullName"`
	Month    int32  `json:"month"`
	Year     int32  `json:"year"`
}

type AssignmentChangedData struct {
	FullName  string  `json:"fullName"`
	Month     int32   `json:"month"`
	Year      int32   `json:"year"`
	Date      string  `json:"date"`
	StoreName string  `json:"storeName"`
	Hours     float64 `json:"hours"`
	Removed   bool    `json:"removed"`
}

type NewAccountData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}
