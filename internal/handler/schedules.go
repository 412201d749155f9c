package handler

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/roster"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/utils"
)

// GenerateSchedule 按贪心算法生成一份排班方案
// 生成结果只返回给前端预览，不落库，店长确认后通过 PUT /schedules 保存
func (h *Handler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month   int32                `json:"month" validate:"required"`
		Year    int32                `json:"year" validate:"required"`
		DaysOff []utils.DaysOffInput `json:"daysOff"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateMonthYear(req.Month, req.Year); err != nil {
		h.badRequest(w, r, err)
		return
	}

	month0 := int(req.Month) - 1

	daysOff, err := utils.ParseDaysOff(req.DaysOff, month0, int(req.Year))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	stores, err := h.repository.GetAllStores(false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	employees, err := h.repository.GetActiveEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	generator, err := roster.NewGenerator(month0, int(req.Year), stores, employees, daysOff)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	set, report, err := generator.Generate()
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	storesByID := make(map[int64]*domain.Store, len(stores))
	for _, s := range stores {
		storesByID[s.ID] = s
	}

	h.successResponse(w, r, "生成排班方案成功", map[string]any{
		"month":       req.Month,
		"year":        req.Year,
		"assignments": set.Assignments(),
		"coverage":    report,
		"warnings":    set.Validate(storesByID),
	})
}

// UpsertSchedule 整体保存某个月份的排班表
// 同一个月份只有一份排班表：不存在则新建草稿，存在则整体替换其排班记录
func (h *Handler) UpsertSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month       int32                   `json:"month" validate:"required"`
		Year        int32                   `json:"year" validate:"required"`
		Assignments []utils.AssignmentInput `json:"assignments" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateMonthYear(req.Month, req.Year); err != nil {
		h.badRequest(w, r, err)
		return
	}

	month0 := int(req.Month) - 1

	assignments, err := utils.ValidateAssignmentBatch(req.Assignments, month0, int(req.Year))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 引擎负责结构性校验：同一员工同一天同一门店不能出现两条记录
	set, err := roster.FromAssignments(month0, int(req.Year), assignments)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	release, err := h.acquireScheduleLock(req.Month, req.Year)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}
	defer release()

	schedule := &domain.Schedule{
		Month: req.Month,
		Year:  req.Year,
	}
	for _, a := range set.Assignments() {
		schedule.Assignments = append(schedule.Assignments, *a)
	}

	if err := h.repository.UpsertSchedule(schedule); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 已发布的排班表被整体替换，要重新通知所有涉及的员工
	if schedule.Status == domain.ScheduleStatusReady {
		h.notifyScheduleReady(schedule, set)
	}

	stores, err := h.repository.GetAllStores(true)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	storesByID := make(map[int64]*domain.Store, len(stores))
	for _, s := range stores {
		storesByID[s.ID] = s
	}

	h.successResponse(w, r, "保存排班表成功", map[string]any{
		"schedule": schedule,
		"warnings": set.Validate(storesByID),
	})
}

func (h *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	monthParam := r.URL.Query().Get("month")
	yearParam := r.URL.Query().Get("year")

	// 不带参数时返回所有月份的元信息
	if monthParam == "" && yearParam == "" {
		schedules, err := h.repository.GetAllSchedules()
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		h.successResponse(w, r, "获取排班表列表成功", schedules)
		return
	}

	month, err := strconv.ParseInt(monthParam, 10, 32)
	if err != nil {
		h.errorResponseKind(w, r, roster.KindInvalidArgument, "月份无效")
		return
	}
	year, err := strconv.ParseInt(yearParam, 10, 32)
	if err != nil {
		h.errorResponseKind(w, r, roster.KindInvalidArgument, "年份无效")
		return
	}
	if err := utils.ValidateMonthYear(int32(month), int32(year)); err != nil {
		h.badRequest(w, r, err)
		return
	}

	schedule, err := h.repository.GetScheduleByMonthYear(int32(month), int32(year))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindNotFound, "该月份还没有排班表")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取排班表成功", schedule)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	h.successResponse(w, r, "获取排班表成功", schedule)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	release, err := h.acquireScheduleLock(schedule.Month, schedule.Year)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}
	defer release()

	if err := h.repository.DeleteSchedule(schedule.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindNotFound, "排班表不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除排班表成功", nil)
}

func (h *Handler) GetScheduleSummary(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	set, err := roster.FromAssignments(int(schedule.Month)-1, int(schedule.Year), schedule.Assignments)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	employees, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	stores, err := h.repository.GetAllStores(true)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班汇总成功", roster.MonthlySummary(set, employees, stores, nil))
}

var weekdayNames = map[int32]string{
	calendar.Monday:    "星期一",
	calendar.Tuesday:   "星期二",
	calendar.Wednesday: "星期三",
	calendar.Thursday:  "星期四",
	calendar.Friday:    "星期五",
	calendar.Saturday:  "星期六",
	calendar.Sunday:    "星期日",
}

func (h *Handler) GetEmployeeTimesheet(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	userIDParam := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDParam, 10, 64)
	if err != nil {
		h.errorResponseKind(w, r, roster.KindInvalidArgument, "用户ID无效")
		return
	}

	var employee *domain.User
	switch user, err := h.repository.GetUserByID(userID); {
	case err == nil:
		employee = user
	case errors.Is(err, sql.ErrNoRows):
		// employee 留空，引擎统一报员工不存在
	default:
		h.internalServerError(w, r, err)
		return
	}

	set, err := roster.FromAssignments(int(schedule.Month)-1, int(schedule.Year), schedule.Assignments)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	stores, err := h.repository.GetAllStores(true)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	timesheet, err := roster.EmployeeTimesheet(set, employee, stores)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		h.writeTimesheetCSV(w, r, timesheet)
		return
	}

	h.successResponse(w, r, "获取员工工时表成功", timesheet)
}

func (h *Handler) writeTimesheetCSV(w http.ResponseWriter, r *http.Request, ts *roster.Timesheet) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="timesheet-%d-%02d-%d.csv"`, ts.Year, ts.Month, ts.UserID))

	cw := csv.NewWriter(w)
	records := [][]string{{"日期", "星期", "门店", "小时数"}}
	for _, row := range ts.Rows {
		records = append(records, []string{
			row.Date.Format(utils.DateLayout),
			weekdayNames[row.Weekday],
			row.StoreName,
			strconv.FormatFloat(row.Hours, 'f', 1, 64),
		})
	}
	records = append(records, []string{"合计", "", "", strconv.FormatFloat(ts.TotalHours, 'f', 1, 64)})

	if err := cw.WriteAll(records); err != nil {
		h.logInternalServerError(r, err)
	}
}

// MarkScheduleReady 发布排班表
// 只有从草稿到已发布的真正状态迁移才触发通知，重复发布是幂等的
func (h *Handler) MarkScheduleReady(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	actorID, err := h.subject(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	release, err := h.acquireScheduleLock(schedule.Month, schedule.Year)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}
	defer release()

	transitioned := roster.MarkReady(schedule, actorID, time.Now())

	if err := h.repository.UpdateScheduleStatus(schedule); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindConflict, "排班表已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if transitioned {
		set, err := roster.FromAssignments(int(schedule.Month)-1, int(schedule.Year), schedule.Assignments)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		h.notifyScheduleReady(schedule, set)
	}

	h.successResponse(w, r, "发布排班表成功", schedule)
}

// MarkScheduleNotReady 将已发布的排班表撤回为草稿，撤回不重新通知员工
func (h *Handler) MarkScheduleNotReady(w http.ResponseWriter, r *http.Request) {
	schedule := r.Context().Value(ScheduleCtx).(*domain.Schedule)

	actorID, err := h.subject(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	release, err := h.acquireScheduleLock(schedule.Month, schedule.Year)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}
	defer release()

	roster.MarkNotReady(schedule, actorID, time.Now())

	if err := h.repository.UpdateScheduleStatus(schedule); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindConflict, "排班表已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "撤回排班表成功", schedule)
}

// notifyScheduleReady 给排班表中涉及的每个员工投递一条发布通知
// 每个员工只通知一次，单个员工查询失败不影响其余员工
func (h *Handler) notifyScheduleReady(schedule *domain.Schedule, set *roster.AssignmentSet) {
	for _, userID := range roster.NotifyRecipients(set) {
		user, err := h.repository.GetUserByID(userID)
		if err != nil {
			slog.Error("无法查询待通知的员工", "userID", userID, "error", err)
			continue
		}
		h.publishNotification(user, "schedule_ready", domain.ScheduleReadyData{
			FullName: user.FullName,
			Month:    schedule.Month,
			Year:     schedule.Year,
		})
	}
}
