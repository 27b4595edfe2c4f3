package handler

import (
	"context"
	"net/http"

	"github.com/campops-dev/camp-manager/backend/internal/config"
	"github.com/campops-dev/camp-manager/backend/internal/domain"
	"github.com/campops-dev/camp-manager/backend/internal/metrics"
	"github.com/campops-dev/camp-manager/backend/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

type Beds interface {
	Occupancy(ctx context.Context, campID int64, filter domain.BedFilter) ([]domain.BedAvailability, error)
	Available(ctx context.Context, campID int64, filter domain.BedFilter) ([]domain.BedAvailability, error)
	Admit(ctx context.Context, campID, bedID, occupantID int64) (*domain.Assignment, error)
	Vacate(ctx context.Context, campID, assignmentID int64) (*domain.Assignment, error)
}

type BookingWindow interface {
	Probe(ctx context.Context, campID int64) (*scheduler.ProbeResult, error)
	Reconcile(ctx context.Context, campID int64) (*scheduler.ReconcileResult, error)
	Override(ctx context.Context, campID, sittingID int64, active bool) (*domain.MealSitting, error)
}

type LessonStaff interface {
	ReplaceAll(ctx context.Context, campID, lessonID int64, staffIDs []int64) (*domain.LessonStaffChange, error)
	Members(ctx context.Context, campID, lessonID int64) ([]int64, error)
}

// Pinger 用于健康检查，*sql.DB 满足该接口
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	translator    ut.Translator
	beds          Beds
	bookingWindow BookingWindow
	lessonStaff   LessonStaff
	db            Pinger
	metrics       *metrics.Metrics

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, beds Beds, bw BookingWindow, staff LessonStaff, db Pinger, m *metrics.Metrics) (*Handler, error) {
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
		translator:    trans,
		beds:          beds,
		bookingWindow: bw,
		lessonStaff:   staff,
		db:            db,
		metrics:       m,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/healthz", h.Healthz)
	h.Mux.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	// 以下 API 必须携带有效的令牌
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		managers := h.RequiredRole([]domain.Role{domain.RoleDirector, domain.RoleCoordinator})

		r.Route("/beds", func(r chi.Router) {
			r.Get("/availability", h.GetBedAvailability)
			r.Get("/occupancy", h.GetBedOccupancy)
			r.Post("/{id}/assignments", h.AdmitOccupant)
		})
		r.Post("/assignments/{id}/end", h.EndAssignment)

		r.Route("/booking-window", func(r chi.Router) {
			r.Get("/status", h.GetBookingWindowStatus)
			r.With(managers).Post("/reconcile", h.ReconcileBookingWindow)
		})
		r.With(managers).Put("/meal-sittings/{id}/booking-active", h.OverrideBookingActive)

		r.Route("/lessons/{id}/staff", func(r chi.Router) {
			r.Get("/", h.GetLessonStaff)
			r.With(managers).Post("/", h.ReplaceLessonStaff)
		})
	})
}
