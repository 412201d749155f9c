package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/roster"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/utils"
)

func (h *Handler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string                    `json:"name" validate:"required"`
		WorkingHours []domain.StoreWorkingHour `json:"workingHours" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 检查目标工时配置是否合法
	if err := utils.ValidateWorkingHours(req.WorkingHours); err != nil {
		h.badRequest(w, r, err)
		return
	}

	store := &domain.Store{
		Name:         req.Name,
		WorkingHours: req.WorkingHours,
	}

	if err := h.repository.CreateStore(store); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "stores_name_key":
				h.errorResponse(w, r, "门店名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建门店成功", store)
}

func (h *Handler) GetAllStores(w http.ResponseWriter, r *http.Request) {
	// 默认只返回营业中的门店
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	stores, err := h.repository.GetAllStores(includeInactive)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取门店列表成功", stores)
}

func (h *Handler) GetStore(w http.ResponseWriter, r *http.Request) {
	store := r.Context().Value(StoreCtx).(*domain.Store)

	h.successResponse(w, r, "获取门店信息成功", store)
}

func (h *Handler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	store := r.Context().Value(StoreCtx).(*domain.Store)

	var req struct {
		Name         *string                   `json:"name"`
		WorkingHours []domain.StoreWorkingHour `json:"workingHours"`
		IsActive     *bool                     `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		store.Name = *req.Name
	}
	if req.WorkingHours != nil {
		if err := utils.ValidateWorkingHours(req.WorkingHours); err != nil {
			h.badRequest(w, r, err)
			return
		}
		store.WorkingHours = req.WorkingHours
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateStore(store); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "stores_name_key":
				h.errorResponse(w, r, "门店名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindConflict, "门店信息已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新门店信息成功", store)
}

// DeactivateStore 停业门店
// 历史排班记录还要引用门店，所以这里是软删除，门店不再出现在默认列表中
// 也不再参与排班生成
func (h *Handler) DeactivateStore(w http.ResponseWriter, r *http.Request) {
	store := r.Context().Value(StoreCtx).(*domain.Store)

	store.IsActive = false
	if err := h.repository.UpdateStore(store); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponseKind(w, r, roster.KindConflict, "门店信息已被其他人修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "门店已停业", store)
}
