package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/armeriaops/armimport-backend/api/controllers"
	"github.com/armeriaops/armimport-backend/api/middleware"
	"github.com/armeriaops/armimport-backend/internal/auth"
	"github.com/armeriaops/armimport-backend/internal/clients"
	"github.com/armeriaops/armimport-backend/internal/contracts"
	"github.com/armeriaops/armimport-backend/internal/documents"
	"github.com/armeriaops/armimport-backend/internal/groups"
	"github.com/armeriaops/armimport-backend/internal/memberships"
	"github.com/armeriaops/armimport-backend/internal/notifications"
	"github.com/armeriaops/armimport-backend/internal/payments"
	"github.com/armeriaops/armimport-backend/internal/refdata"
	"github.com/armeriaops/armimport-backend/internal/reservations"
	"github.com/armeriaops/armimport-backend/internal/serials"
	"github.com/armeriaops/armimport-backend/internal/users"
	"github.com/armeriaops/armimport-backend/internal/weapons"
	"github.com/armeriaops/armimport-backend/pkg/auth/session"
	"github.com/armeriaops/armimport-backend/pkg/config"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	"github.com/armeriaops/armimport-backend/pkg/logger"
	redisclient "github.com/armeriaops/armimport-backend/pkg/redis"
)

const (
	roleAdmin      = string(enums.UserRoleAdmin)
	roleOperations = string(enums.UserRoleOperations)
	roleVendor     = string(enums.UserRoleVendor)
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Registry *prometheus.Registry

	DBPinger    controllers.Pinger
	RedisClient *redisclient.Client
	Sessions    session.AccessSessionChecker

	AuthService          auth.Service
	UsersService         users.Service
	ClientsService       clients.Service
	GroupsService        groups.Service
	MembershipsService   memberships.Service
	WeaponsService       weapons.Service
	SerialsService       serials.Service
	ReservationsService  reservations.Service
	DocumentsService     documents.Service
	PaymentsService      payments.Service
	ContractsService     contracts.Service
	NotificationsService notifications.Service
	RefdataRepo          *refdata.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.CORS(),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(cfg.AuthRateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DBPinger,
			"redis":    deps.RedisClient,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RedisClient, logg)).
			Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	// Email verification links land here without a session.
	r.Get("/api/v1/clients/verify", controllers.ClientVerifyEmail(deps.ClientsService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/refdata", func(r chi.Router) {
			r.Get("/provinces", controllers.ProvinceList(deps.RefdataRepo, logg))
			r.Get("/provinces/{provinceId}/cantons", controllers.CantonList(deps.RefdataRepo, logg))
			r.Get("/identification-types", controllers.IdentificationTypeList(deps.RefdataRepo, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, roleAdmin))
			r.Post("/", controllers.UserCreate(deps.UsersService, logg))
			r.Get("/", controllers.UserList(deps.UsersService, logg))
			r.Get("/{userId}", controllers.UserGet(deps.UsersService, logg))
			r.Delete("/{userId}", controllers.UserDeactivate(deps.UsersService, logg))
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", controllers.ClientCreate(deps.ClientsService, logg))
			r.Get("/", controllers.ClientList(deps.ClientsService, logg))
			r.Get("/{clientId}", controllers.ClientGet(deps.ClientsService, logg))
			r.Patch("/{clientId}", controllers.ClientUpdate(deps.ClientsService, logg))
			r.With(middleware.RequireRole(logg, roleAdmin, roleOperations)).
				Post("/{clientId}/archive", controllers.ClientArchive(deps.ClientsService, logg))

			r.Get("/{clientId}/documents", controllers.DocumentListByClient(deps.DocumentsService, logg))
			r.Get("/{clientId}/reservations", controllers.ReservationListByClient(deps.ReservationsService, logg))
			r.Get("/{clientId}/serials", controllers.SerialListByClient(deps.SerialsService, logg))
			r.Get("/{clientId}/payments", controllers.PaymentListByClient(deps.PaymentsService, logg))
			r.Get("/{clientId}/contracts", controllers.ContractListByClient(deps.ContractsService, logg))
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", controllers.GroupList(deps.GroupsService, logg))
			r.Get("/{groupId}", controllers.GroupGet(deps.GroupsService, logg))
			r.Get("/{groupId}/occupancy", controllers.GroupOccupancy(deps.GroupsService, logg))
			r.Get("/{groupId}/limits", controllers.GroupListCategoryLimits(deps.GroupsService, logg))
			r.Get("/{groupId}/vendors", controllers.GroupListVendorAssignments(deps.GroupsService, logg))
			r.Get("/{groupId}/memberships", controllers.MembershipListByGroup(deps.MembershipsService, logg))
			r.Get("/{groupId}/serials", controllers.SerialListByGroup(deps.SerialsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, roleAdmin, roleOperations))
				r.Post("/", controllers.GroupCreate(deps.GroupsService, logg))
				r.Post("/{groupId}/stage", controllers.GroupAdvanceStage(deps.GroupsService, logg))
				r.Put("/{groupId}/limits", controllers.GroupSetCategoryLimit(deps.GroupsService, logg))
				r.Put("/{groupId}/vendors", controllers.GroupAssignVendor(deps.GroupsService, logg))
				r.Post("/{groupId}/memberships", controllers.MembershipManualAdd(deps.MembershipsService, logg))
			})
		})

		r.Route("/memberships", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, roleAdmin, roleOperations))
			r.Post("/{membershipId}/cancel", controllers.MembershipCancel(deps.MembershipsService, logg))
			r.Post("/{membershipId}/transition", controllers.MembershipTransition(deps.MembershipsService, logg))
		})

		r.Route("/weapons", func(r chi.Router) {
			r.Get("/", controllers.WeaponList(deps.WeaponsService, logg))
			r.Get("/categories", controllers.WeaponCategories(deps.WeaponsService, logg))
			r.Get("/{weaponId}", controllers.WeaponGet(deps.WeaponsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, roleAdmin, roleOperations))
				r.Post("/", controllers.WeaponCreate(deps.WeaponsService, logg))
				r.Patch("/{weaponId}", controllers.WeaponUpdate(deps.WeaponsService, logg))
			})
		})

		r.Route("/serials", func(r chi.Router) {
			r.Get("/{serialId}", controllers.SerialGet(deps.SerialsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, roleAdmin, roleOperations))
				r.Post("/assign", controllers.SerialAssign(deps.SerialsService, logg))
				r.Post("/import", controllers.SerialImport(deps.SerialsService, logg))
				r.Post("/{serialId}/liberate", controllers.SerialLiberate(deps.SerialsService, logg))
				r.Post("/{serialId}/sell", controllers.SerialSell(deps.SerialsService, logg))
				r.Post("/{serialId}/retire", controllers.SerialRetire(deps.SerialsService, logg))
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", controllers.ReservationCreate(deps.ReservationsService, logg))
			r.Post("/{reservationId}/cancel", controllers.ReservationCancel(deps.ReservationsService, logg))
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", controllers.DocumentUpload(deps.DocumentsService, logg))
			r.Get("/{documentId}/download", controllers.DocumentDownload(deps.DocumentsService, logg))
			r.Delete("/{documentId}", controllers.DocumentDelete(deps.DocumentsService, logg))
			r.With(middleware.RequireRole(logg, roleAdmin, roleOperations)).
				Post("/{documentId}/review", controllers.DocumentReview(deps.DocumentsService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, roleAdmin, roleOperations))
			r.Post("/", controllers.PaymentRecord(deps.PaymentsService, logg))
			r.Post("/{paymentId}/confirm", controllers.PaymentConfirm(deps.PaymentsService, logg))
			r.Post("/{paymentId}/void", controllers.PaymentVoid(deps.PaymentsService, logg))
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/{contractId}", controllers.ContractGet(deps.ContractsService, logg))
			r.Get("/{contractId}/download", controllers.ContractDownload(deps.ContractsService, logg))
			r.With(middleware.RequireRole(logg, roleAdmin, roleOperations)).
				Post("/", controllers.ContractIssue(deps.ContractsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(deps.NotificationsService, logg))
			r.Post("/{notificationId}/read", controllers.NotificationMarkRead(deps.NotificationsService, logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(deps.NotificationsService, logg))
		})
	})

	return r
}
