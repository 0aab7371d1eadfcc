package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hmendoza/prepflow-backend/api/controllers"
	"github.com/hmendoza/prepflow-backend/api/middleware"
	"github.com/hmendoza/prepflow-backend/internal/appointments"
	"github.com/hmendoza/prepflow-backend/internal/auth"
	"github.com/hmendoza/prepflow-backend/internal/branches"
	"github.com/hmendoza/prepflow-backend/internal/deliveries"
	"github.com/hmendoza/prepflow-backend/internal/profiles"
	"github.com/hmendoza/prepflow-backend/internal/users"
	"github.com/hmendoza/prepflow-backend/internal/vehicles"
	"github.com/hmendoza/prepflow-backend/pkg/auth/session"
	"github.com/hmendoza/prepflow-backend/pkg/config"
	"github.com/hmendoza/prepflow-backend/pkg/db"
	"github.com/hmendoza/prepflow-backend/pkg/logger"
	"github.com/hmendoza/prepflow-backend/pkg/metrics"
	"github.com/hmendoza/prepflow-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient db.Pinger,
	redisClient *redis.Client,
	requestMetrics *metrics.RequestMetrics,
	sessionManager session.AccessSessionChecker,
	authService auth.Service,
	branchService branches.Service,
	userService users.Service,
	profileService profiles.Service,
	vehicleService vehicles.Service,
	appointmentService appointments.Service,
	deliveryService deliveries.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(requestMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if requestMetrics != nil {
		r.Method(http.MethodGet, "/metrics", requestMetrics.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Get("/auth/me", controllers.AuthMe(authService, logg))
		r.Post("/auth/logout", controllers.AuthLogout(authService, logg))

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", controllers.BranchList(branchService, logg))
			r.With(middleware.RequireAdmin(logg)).Post("/", controllers.BranchCreate(branchService, logg))
			r.Get("/{id}", controllers.BranchDetail(branchService, logg))
			r.Put("/{id}", controllers.BranchUpdate(branchService, logg))
			r.Patch("/{id}", controllers.BranchUpdate(branchService, logg))
			r.With(middleware.RequireAdmin(logg)).Delete("/{id}", controllers.BranchDelete(branchService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UserList(userService, logg))
			r.Post("/", controllers.UserCreate(userService, logg))
			r.Get("/{id}", controllers.UserDetail(userService, logg))
			r.Put("/{id}", controllers.UserUpdate(userService, logg))
			r.Patch("/{id}", controllers.UserUpdate(userService, logg))
			r.Delete("/{id}", controllers.UserDelete(userService, logg))
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", controllers.ProfileList(profileService, logg))
			r.Post("/", controllers.ProfileCreate(profileService, logg))
			r.Get("/{id}", controllers.ProfileDetail(profileService, logg))
			r.Put("/{id}", controllers.ProfileUpdate(profileService, logg))
			r.Patch("/{id}", controllers.ProfileUpdate(profileService, logg))
			r.Delete("/{id}", controllers.ProfileDelete(profileService, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.VehicleList(vehicleService, logg))
			r.Post("/", controllers.VehicleCreate(vehicleService, logg))
			r.Get("/{id}", controllers.VehicleDetail(vehicleService, logg))
			r.Put("/{id}", controllers.VehicleUpdate(vehicleService, logg))
			r.Patch("/{id}", controllers.VehicleUpdate(vehicleService, logg))
			r.Delete("/{id}", controllers.VehicleDelete(vehicleService, logg))
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", controllers.AppointmentList(appointmentService, logg))
			r.Post("/", controllers.AppointmentCreate(appointmentService, logg))
			r.Get("/{id}", controllers.AppointmentDetail(appointmentService, logg))
			r.Put("/{id}", controllers.AppointmentUpdate(appointmentService, logg))
			r.Patch("/{id}", controllers.AppointmentUpdate(appointmentService, logg))
			r.Delete("/{id}", controllers.AppointmentDelete(appointmentService, logg))
			r.Post("/{id}/update_status", controllers.AppointmentUpdateStatus(appointmentService, logg))
			r.Post("/{id}/update_duration", controllers.AppointmentUpdateDuration(appointmentService, logg))
		})

		r.Route("/deliveries", func(r chi.Router) {
			r.Get("/", controllers.DeliveryList(deliveryService, logg))
			r.Post("/", controllers.DeliveryCreate(deliveryService, logg))
			r.Get("/{id}", controllers.DeliveryDetail(deliveryService, logg))
			r.Put("/{id}", controllers.DeliveryUpdate(deliveryService, logg))
			r.Patch("/{id}", controllers.DeliveryUpdate(deliveryService, logg))
			r.Delete("/{id}", controllers.DeliveryDelete(deliveryService, logg))
		})
	})

	return r
}
