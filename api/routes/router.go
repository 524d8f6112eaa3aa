package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evolvespaces/evolve-backend/api/controllers"
	"github.com/evolvespaces/evolve-backend/api/middleware"
	"github.com/evolvespaces/evolve-backend/internal/auth"
	"github.com/evolvespaces/evolve-backend/internal/expenses"
	"github.com/evolvespaces/evolve-backend/internal/grievances"
	"github.com/evolvespaces/evolve-backend/internal/inventory"
	"github.com/evolvespaces/evolve-backend/internal/locations"
	"github.com/evolvespaces/evolve-backend/internal/members"
	"github.com/evolvespaces/evolve-backend/internal/notifications"
	"github.com/evolvespaces/evolve-backend/internal/subscriptions"
	"github.com/evolvespaces/evolve-backend/internal/waitinglist"
	"github.com/evolvespaces/evolve-backend/pkg/auth/session"
	"github.com/evolvespaces/evolve-backend/pkg/config"
	"github.com/evolvespaces/evolve-backend/pkg/db"
	"github.com/evolvespaces/evolve-backend/pkg/logger"
	"github.com/evolvespaces/evolve-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the router hands to controllers.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Members       members.Service
	Locations     locations.Service
	Subscriptions subscriptions.Service
	WaitingList   waitinglist.Service
	Notifications notifications.Service
	Grievances    grievances.Service
	Inventory     inventory.Service
	Expenses      expenses.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	svcs Services,
) http.Handler {
	// Guard against a typed-nil client sneaking into the interfaces.
	var redisPinger redis.Pinger
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		redisPinger = redisClient
		idemStore = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.Idempotency(idemStore, logg))

			r.Get("/ping", controllers.PrivatePing())

			// Account creation is an admin action, not self-service.
			r.With(middleware.RequireRole("admin", logg)).
				Post("/auth/register", controllers.AuthRegister(svcs.Register, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.NotificationList(svcs.Notifications, logg))
				r.Post("/{id}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
				r.Post("/read-all", controllers.NotificationMarkAllRead(svcs.Notifications, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireStaff(logg))
					r.Post("/", controllers.NotificationCreate(svcs.Notifications, logg))
					r.Post("/generate", controllers.NotificationGenerate(svcs.Notifications, logg))
				})
				r.With(middleware.RequireRole("admin", logg)).
					Delete("/", controllers.NotificationPurge(svcs.Notifications, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))

				r.Route("/members", func(r chi.Router) {
					r.Post("/", controllers.MemberCreate(svcs.Members, logg))
					r.Get("/", controllers.MemberList(svcs.Members, logg))
					r.Get("/{id}", controllers.MemberGet(svcs.Members, logg))
					r.Put("/{id}", controllers.MemberUpdate(svcs.Members, logg))
					r.Delete("/{id}", controllers.MemberDelete(svcs.Members, logg))
				})

				r.Route("/locations", func(r chi.Router) {
					r.Get("/", controllers.LocationList(svcs.Locations, logg))
					r.With(middleware.LocationScope("id", logg)).
						Get("/{id}", controllers.LocationGet(svcs.Locations, logg))

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireRole("admin", logg))
						r.Post("/", controllers.LocationCreate(svcs.Locations, logg))
						r.Put("/{id}", controllers.LocationUpdate(svcs.Locations, logg))
						r.Delete("/{id}", controllers.LocationDelete(svcs.Locations, logg))
					})
				})

				r.Route("/subscriptions", func(r chi.Router) {
					r.Post("/", controllers.SubscriptionAssign(svcs.Subscriptions, logg))
					r.Get("/", controllers.SubscriptionList(svcs.Subscriptions, logg))
					r.Get("/{id}", controllers.SubscriptionGet(svcs.Subscriptions, logg))
				})

				r.Route("/waiting-list", func(r chi.Router) {
					r.Get("/", controllers.WaitingListList(svcs.WaitingList, logg))
					r.Delete("/{id}", controllers.WaitingListRemove(svcs.WaitingList, logg))
				})

				r.Route("/grievances", func(r chi.Router) {
					r.Post("/", controllers.GrievanceCreate(svcs.Grievances, logg))
					r.Get("/", controllers.GrievanceList(svcs.Grievances, logg))
					r.Get("/{id}", controllers.GrievanceGet(svcs.Grievances, logg))
					r.Post("/{id}/status", controllers.GrievanceUpdateStatus(svcs.Grievances, logg))
				})

				r.Route("/inventory", func(r chi.Router) {
					r.Post("/", controllers.InventoryCreate(svcs.Inventory, logg))
					r.Get("/", controllers.InventoryList(svcs.Inventory, logg))
					r.Get("/{id}", controllers.InventoryGet(svcs.Inventory, logg))
					r.Put("/{id}", controllers.InventoryUpdate(svcs.Inventory, logg))
					r.Delete("/{id}", controllers.InventoryDelete(svcs.Inventory, logg))
				})

				r.Route("/expenses", func(r chi.Router) {
					r.Post("/", controllers.ExpenseCreate(svcs.Expenses, logg))
					r.Get("/", controllers.ExpenseList(svcs.Expenses, logg))
					r.Get("/monthly-total", controllers.ExpenseMonthlyTotal(svcs.Expenses, logg))
					r.Delete("/{id}", controllers.ExpenseDelete(svcs.Expenses, logg))
				})
			})
		})
	})

	return r
}
