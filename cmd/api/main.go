package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/armeriaops/armimport-backend/api/routes"
	"github.com/armeriaops/armimport-backend/internal/auth"
	"github.com/armeriaops/armimport-backend/internal/clients"
	"github.com/armeriaops/armimport-backend/internal/contracts"
	"github.com/armeriaops/armimport-backend/internal/documents"
	"github.com/armeriaops/armimport-backend/internal/groups"
	"github.com/armeriaops/armimport-backend/internal/matching"
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
	"github.com/armeriaops/armimport-backend/pkg/db"
	"github.com/armeriaops/armimport-backend/pkg/logger"
	"github.com/armeriaops/armimport-backend/pkg/mailer"
	"github.com/armeriaops/armimport-backend/pkg/metrics"
	"github.com/armeriaops/armimport-backend/pkg/migrate"
	"github.com/armeriaops/armimport-backend/pkg/pdf"
	"github.com/armeriaops/armimport-backend/pkg/redis"
	"github.com/armeriaops/armimport-backend/pkg/storage"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	operationMetrics := metrics.NewOperationMetrics(registry)

	fileStore, err := storage.New(cfg.Storage.Root)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare file storage", err)
		os.Exit(1)
	}

	var mail mailer.Sender
	if cfg.SMTP.Enabled() {
		mail = mailer.NewSMTPSender(cfg.SMTP)
	} else {
		logg.Warn(context.Background(), "smtp not configured, outbound mail disabled")
	}

	gdb := dbClient.DB()

	usersRepo := users.NewRepository(gdb)
	weaponsRepo := weapons.NewRepository(gdb)
	groupsRepo := groups.NewRepository(gdb)
	reservationsRepo := reservations.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	requireService(logg, "auth", err)

	usersService, err := users.NewService(usersRepo, cfg.Password)
	requireService(logg, "users", err)

	weaponsService, err := weapons.NewService(weaponsRepo)
	requireService(logg, "weapons", err)

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notifications.NewRepository(gdb),
		Logger: logg,
	})
	requireService(logg, "notifications", err)

	groupsService, err := groups.NewService(groupsRepo, weaponsRepo, notificationsService)
	requireService(logg, "groups", err)

	reservationsService, err := reservations.NewService(reservationsRepo, weaponsRepo)
	requireService(logg, "reservations", err)

	matcher, err := matching.NewService(groupsRepo, reservationsRepo)
	requireService(logg, "matching", err)

	documentsService, err := documents.NewService(documents.ServiceParams{
		Repo:     documents.NewRepository(gdb),
		Files:    fileStore,
		Logger:   logg,
		Notifier: notificationsService,
	})
	requireService(logg, "documents", err)

	serialsService, err := serials.NewService(serials.ServiceParams{
		Repo:    serials.NewRepository(gdb),
		Tx:      dbClient,
		Metrics: operationMetrics,
	})
	requireService(logg, "serials", err)

	membershipsService, err := memberships.NewService(memberships.ServiceParams{
		Repo:         memberships.NewRepository(gdb),
		Tx:           dbClient,
		Clients:      memberships.NewClientSource(gdb),
		Reservations: reservationsRepo,
		Documents:    documentsService,
		Serials:      serialsService,
	})
	requireService(logg, "memberships", err)

	clientsService, err := clients.NewService(clients.ServiceParams{
		Repo:    clients.NewRepository(gdb),
		Tx:      dbClient,
		Matcher: matcher,
		Redis:   redisClient,
		Mail:    mail,
		Logger:  logg,
		Metrics: operationMetrics,
		Config:  cfg.Verification,
	})
	requireService(logg, "clients", err)

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo: payments.NewRepository(gdb),
	})
	requireService(logg, "payments", err)

	contractsService, err := contracts.NewService(contracts.ServiceParams{
		Repo:     contracts.NewRepository(gdb),
		Tx:       dbClient,
		Renderer: pdf.NewRenderer(cfg.Contracts),
		Files:    fileStore,
		Mail:     mail,
		Logger:   logg,
		Metrics:  operationMetrics,
	})
	requireService(logg, "contracts", err)

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Registry: registry,

		DBPinger:    dbClient,
		RedisClient: redisClient,
		Sessions:    sessionManager,

		AuthService:          authService,
		UsersService:         usersService,
		ClientsService:       clientsService,
		GroupsService:        groupsService,
		MembershipsService:   membershipsService,
		WeaponsService:       weaponsService,
		SerialsService:       serialsService,
		ReservationsService:  reservationsService,
		DocumentsService:     documentsService,
		PaymentsService:      paymentsService,
		ContractsService:     contractsService,
		NotificationsService: notificationsService,
		RefdataRepo:          refdata.NewRepository(gdb),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+name+" service", err)
		os.Exit(1)
	}
}
