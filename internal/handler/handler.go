package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/config"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/store-roster/backend/internal/repository"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	translator    ut.Translator
	notifyChannel *amqp.Channel
	redisClient   *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, notifyCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		translator:    trans,
		notifyChannel: notifyCh,
		redisClient:   rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Patch("/telegram", h.BindTelegram)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo) // 所有员工都可以查看其他人的基本信息
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleManager})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/stores", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/", h.CreateStore)
			r.Get("/", h.GetAllStores)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.storeInfo)
				r.Get("/", h.GetStore)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Patch("/", h.UpdateStore)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Delete("/", h.DeactivateStore)
			})
		})

		r.Route("/schedules", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/generate", h.GenerateSchedule)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Put("/", h.UpsertSchedule)
			r.Get("/", h.GetSchedules)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.scheduleInfo)
				r.Get("/", h.GetSchedule)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Delete("/", h.DeleteSchedule)
				r.Get("/summary", h.GetScheduleSummary)
				r.Get("/timesheets/{userID}", h.GetEmployeeTimesheet)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/ready", h.MarkScheduleReady)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager})).Post("/draft", h.MarkScheduleNotReady)
			})
		})

		r.Route("/assignments/{id}", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleManager}))
			r.Use(h.assignmentInfo)
			r.Patch("/", h.UpdateAssignment)
			r.Delete("/", h.DeleteAssignment)
		})
	})
}
