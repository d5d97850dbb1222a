package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jecaicedo27/toppingfrozen-backend/api/controllers"
	"github.com/jecaicedo27/toppingfrozen-backend/api/middleware"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/auth"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/carriers"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/messengers"
	metricssvc "github.com/jecaicedo27/toppingfrozen-backend/internal/metrics"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/orders"
	"github.com/jecaicedo27/toppingfrozen-backend/internal/pos"
	siigosvc "github.com/jecaicedo27/toppingfrozen-backend/internal/siigo"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/config"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/db"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/enums"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/logger"
	pkgmetrics "github.com/jecaicedo27/toppingfrozen-backend/pkg/metrics"
	"github.com/jecaicedo27/toppingfrozen-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    db.Pinger
	RedisClient *redis.Client

	AuthService      *auth.Service
	OrdersService    *orders.Service
	POSService       *pos.Service
	MessengerService *messengers.Service
	Reconciler       *messengers.Reconciler
	MetricsService   *metricssvc.Service
	CarriersService  *carriers.Service
	SiigoConsulta    *siigosvc.ConsultaService
	SiigoAdmin       *siigosvc.AdminService

	HTTPMetrics        *pkgmetrics.HTTPMetrics
	JobMetrics         *pkgmetrics.JobMetrics
	PrometheusRegistry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.HTTPMetrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyChecks(deps)))
	})

	if deps.PrometheusRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PrometheusRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RedisClient, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleFacturador, enums.UserRoleLogistica)).
				Post("/{orderId}/status", controllers.OrderUpdateStatus(deps.OrdersService, logg))
		})

		r.Route("/pos", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.UserRolePOS)).
				Post("/upload-evidence-and-deliver", controllers.POSUploadEvidence(deps.POSService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleCartera)).
				Get("/pending-transfers", controllers.POSPendingTransfers(deps.POSService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleCartera)).
				Post("/approve-transfer/{orderId}", controllers.POSApproveTransfer(deps.POSService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleCartera)).
				Post("/reject-transfer/{orderId}", controllers.POSRejectTransfer(deps.POSService, logg))
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/", controllers.MetricsSummary(deps.MetricsService, logg))
			r.Post("/update", controllers.MetricsUpdate(deps.MetricsService, logg))
		})

		r.Route("/messenger/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleMensajero))
			r.Get("/", controllers.MessengerOrders(deps.MessengerService, logg))
			r.Post("/{orderId}/accept", controllers.MessengerAccept(deps.MessengerService, logg))
			r.Post("/{orderId}/reject", controllers.MessengerReject(deps.MessengerService, logg))
			r.Post("/{orderId}/start", controllers.MessengerStart(deps.MessengerService, logg))
			r.Post("/{orderId}/complete", controllers.MessengerComplete(deps.MessengerService, logg))
			r.Post("/{orderId}/fail", controllers.MessengerFail(deps.MessengerService, logg))
		})

		r.With(middleware.RequireRole(logg, enums.UserRoleLogistica)).
			Post("/logistics/orders/{orderId}/assign", controllers.LogisticsAssign(deps.MessengerService, logg))

		r.Route("/carriers", func(r chi.Router) {
			r.Get("/", controllers.CarrierList(deps.CarriersService, logg))
			r.Get("/{carrierId}", controllers.CarrierDetail(deps.CarriersService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleLogistica)).
				Post("/", controllers.CarrierCreate(deps.CarriersService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleLogistica)).
				Put("/{carrierId}", controllers.CarrierUpdate(deps.CarriersService, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleLogistica)).
				Post("/{carrierId}/toggle", controllers.CarrierToggle(deps.CarriersService, logg))
			r.With(middleware.RequireRole(logg)).
				Delete("/{carrierId}", controllers.CarrierDelete(deps.CarriersService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg))

		r.Post("/messengers/reconcile", controllers.MessengersReconcile(deps.Reconciler, deps.JobMetrics, logg))

		r.Route("/siigo", func(r chi.Router) {
			r.Get("/credentials", controllers.SiigoSettings(deps.SiigoAdmin, logg))
			r.Put("/credentials", controllers.SiigoUpdateCredentials(deps.SiigoAdmin, logg))
			r.Delete("/credentials", controllers.SiigoDeleteCredentials(deps.SiigoAdmin, logg))
			r.Post("/test", controllers.SiigoTestConnection(deps.SiigoAdmin, logg))
			r.Post("/toggle", controllers.SiigoToggle(deps.SiigoAdmin, logg))
			r.Get("/status", controllers.SiigoSettings(deps.SiigoAdmin, logg))
			r.Get("/connection", controllers.SiigoConnection(deps.SiigoConsulta, logg))
			r.Get("/customers", controllers.SiigoSearchCustomers(deps.SiigoConsulta, logg))
			r.Get("/customers/{nit}", controllers.SiigoCustomerByNIT(deps.SiigoConsulta, logg))
		})
	})

	return r
}

func readyChecks(deps Deps) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if deps.DBPinger != nil {
		checks["mysql"] = deps.DBPinger
	}
	if deps.RedisClient != nil {
		checks["redis"] = deps.RedisClient
	}
	return checks
}
