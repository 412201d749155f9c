package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/roster"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/utils"
)

// UpdateAssignment 修改单条排班记录的门店或小时数
// 修改先进入引擎做结构性校验（槽位冲突、门店是否营业），通过后才落库
func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	assignment := r.Context().Value(AssignmentCtx).(*domain.Assignment)

	var req struct {
		StoreID *int64   `json:"storeID"`
		Hours   *float64 `json:"hours"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.StoreID == nil && req.Hours == nil {
		h.errorResponseKind(w, r, roster.KindInvalidArgument, "没有需要修改的字段")
		return
	}

	schedule, err := h.repository.GetScheduleByID(assignment.ScheduleID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindNotFound, "排班表不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	release, err := h.acquireScheduleLock(schedule.Month, schedule.Year)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}
	defer release()

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
	storesByID := make(map[int64]*domain.Store, len(stores))
	for _, s := range stores {
		storesByID[s.ID] = s
	}

	updated, err := set.Update(assignment.ID, roster.AssignmentPatch{
		StoreID: req.StoreID,
		Hours:   req.Hours,
	}, storesByID)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}

	updated.Version = assignment.Version
	if err := h.repository.UpdateAssignment(updated); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindConflict, "排班记录已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 已发布排班表的改动要通知受影响的员工
	if schedule.Status == domain.ScheduleStatusReady {
		h.notifyAssignmentChanged(schedule, updated, storesByID, false)
	}

	h.successResponse(w, r, "更新排班记录成功", updated)
}

// DeleteAssignment 删除单条排班记录
func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	assignment := r.Context().Value(AssignmentCtx).(*domain.Assignment)

	schedule, err := h.repository.GetScheduleByID(assignment.ScheduleID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindNotFound, "排班表不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	release, err := h.acquireScheduleLock(schedule.Month, schedule.Year)
	if err != nil {
		h.rosterError(w, r, err)
		return
	}
	defer release()

	set, err := roster.FromAssignments(int(schedule.Month)-1, int(schedule.Year), schedule.Assignments)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := set.Remove(assignment.ID); err != nil {
		h.rosterError(w, r, err)
		return
	}

	if err := h.repository.DeleteAssignment(assignment.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindNotFound, "排班记录不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if schedule.Status == domain.ScheduleStatusReady {
		stores, err := h.repository.GetAllStores(true)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		storesByID := make(map[int64]*domain.Store, len(stores))
		for _, s := range stores {
			storesByID[s.ID] = s
		}
		h.notifyAssignmentChanged(schedule, assignment, storesByID, true)
	}

	h.successResponse(w, r, "删除排班记录成功", nil)
}

func (h *Handler) notifyAssignmentChanged(schedule *domain.Schedule, a *domain.Assignment, stores map[int64]*domain.Store, removed bool) {
	user, err := h.repository.GetUserByID(a.UserID)
	if err != nil {
		slog.Error("无法查询待通知的员工", "userID", a.UserID, "error", err)
		return
	}

	storeName := ""
	if store, ok := stores[a.StoreID]; ok {
		storeName = store.Name
	}

	h.publishNotification(user, "assignment_changed", domain.AssignmentChangedData{
		FullName:  user.FullName,
		Month:     schedule.Month,
		Year:      schedule.Year,
		Date:      a.Date.Format(utils.DateLayout),
		StoreName: storeName,
		Hours:     a.Hours,
		Removed:   removed,
	})
}
