package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/roster"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorKind string `json:"errorKind,omitempty"`
	Data      any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

// errorResponseKind 在业务错误响应中带上错误分类，方便前端按类型处理
func (h *Handler) errorResponseKind(w http.ResponseWriter, r *http.Request, kind roster.Kind, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success:   false,
		Message:   msg,
		ErrorKind: string(kind),
		Data:      nil,
	})
}

// rosterError 将排班引擎返回的错误映射为响应
// 引擎的错误都带有分类，没有分类的是意料之外的内部错误
func (h *Handler) rosterError(w http.ResponseWriter, r *http.Request, err error) {
	if kind := roster.KindOf(err); kind != "" {
		h.errorResponseKind(w, r, kind, err.Error())
		return
	}
	h.internalServerError(w, r, err)
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponseKind(w, r, roster.KindInvalidArgument, err.Error())
		return
	}

	h.errorResponseKind(w, r, roster.KindInvalidArgument, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
