package handler

type ContextKey string

var (
	RoleCtxKey    ContextKey = "role"
	SubCtxKey     ContextKey = "sub"
	MyInfoCtx     ContextKey = "myInfo"
	UserInfoCtx   ContextKey = "userInfo"
	StoreCtx      ContextKey = "store"
	ScheduleCtx   ContextKey = "schedule"
	AssignmentCtx ContextKey = "assignment"
)
