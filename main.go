package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"storefront/internal/apperrors"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/jobs"
	"storefront/internal/logging"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/pkg/cache"
	"storefront/pkg/rabbitmq"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.Development())

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("storefront stopped with error")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.close()

	application.scheduler.Start()

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		serverErr <- application.app.Listen(cfg.Port)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := application.app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	if err := application.scheduler.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("scheduled jobs did not finish in time")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}

// application is the wired service with the resources it owns.
type application struct {
	app       *fiber.App
	scheduler *jobs.Scheduler
	closers   []func() error
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("error releasing resource")
		}
	}
}

type repositorySet struct {
	users       repositories.UserRepository
	products    repositories.ProductRepository
	carts       repositories.CartRepository
	orders      repositories.OrderRepository
	checkouts   repositories.CheckoutRepository
	subscribers repositories.SubscriberRepository
}

// newApplication wires storage, cache, broker, services, routes and jobs.
// Redis and RabbitMQ are optional and skipped when their address is empty.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	a := &application{}
	checks := map[string]server.HealthCheck{}

	repos, err := a.openRepositories(cfg, checks)
	if err != nil {
		a.close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis.Addr, cache.WithPassword(cfg.Redis.Password), cache.WithDB(cfg.Redis.DB))
		catalogCache := cache.NewRedisCache(client, "storefront")
		a.closers = append(a.closers, catalogCache.Close)
		checks["redis"] = catalogCache.Ping
		repos.products = repositories.NewCachedProductRepository(repos.products, catalogCache, cfg.Redis.CacheTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("catalog cache enabled")
	}

	var events services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, mq.Close)
		events = mq
		if err := mq.ConsumeOrderEvents(ctx, orderEventHandler(services.OrderNotifier{})); err != nil {
			a.close()
			return nil, err
		}
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events are not published")
	}

	svc := server.Services{
		Auth:        services.NewAuthService(repos.users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Users:       services.NewUserService(repos.users),
		Products:    services.NewProductService(repos.products),
		Carts:       services.NewCartService(repos.carts, repos.products),
		Checkouts:   services.NewCheckoutService(repos.checkouts, events),
		Orders:      services.NewOrderService(repos.orders),
		Subscribers: services.NewSubscriberService(repos.subscribers),
	}

	if err := seedAdmin(ctx, svc.Users, cfg.Admin); err != nil {
		a.close()
		return nil, err
	}

	a.scheduler = jobs.NewScheduler()
	if err := a.scheduler.Add(jobs.NewGuestCartCleanup(svc.Carts, cfg.Jobs.CleanupSchedule, cfg.Jobs.GuestCartTTL)); err != nil {
		a.close()
		return nil, err
	}

	a.app = server.New(svc, server.Options{
		CORSOrigins:  cfg.CORSOrigins,
		AccessLog:    cfg.Development(),
		HealthChecks: checks,
	})
	return a, nil
}

func (a *application) openRepositories(cfg *config.Config, checks map[string]server.HealthCheck) (repositorySet, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		carts := repositories.NewMemoryCartRepository()
		orders := repositories.NewMemoryOrderRepository()
		return repositorySet{
			users:       repositories.NewMemoryUserRepository(),
			products:    repositories.NewMemoryProductRepository(),
			carts:       carts,
			orders:      orders,
			checkouts:   repositories.NewMemoryCheckoutRepository(orders, carts),
			subscribers: repositories.NewMemorySubscriberRepository(),
		}, nil
	}

	db, err := database.OpenAndMigrate(cfg.Database)
	if err != nil {
		return repositorySet{}, err
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })
	checks["database"] = func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	return repositorySet{
		users:       repositories.NewGORMUserRepository(db),
		products:    repositories.NewGORMProductRepository(db),
		carts:       repositories.NewGORMCartRepository(db),
		orders:      repositories.NewGORMOrderRepository(db),
		checkouts:   repositories.NewGORMCheckoutRepository(db),
		subscribers: repositories.NewGORMSubscriberRepository(db),
	}, nil
}

// orderEventHandler feeds deliveries to the notifier. Malformed messages are
// dropped instead of requeued forever.
func orderEventHandler(notifier services.OrderNotifier) rabbitmq.Handler {
	return func(msg amqp.Delivery) error {
		err := notifier.Handle(msg.Type, msg.Body)
		if errors.Is(err, apperrors.ErrInvalidRequest) {
			log.Warn().Err(err).Uint64("delivery_tag", msg.DeliveryTag).Msg("dropping malformed order event")
			return nil
		}
		return err
	}
}

// seedAdmin creates the bootstrap admin account if it does not exist yet.
func seedAdmin(ctx context.Context, users *services.UserService, admin config.Admin) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	_, err := users.Create(ctx, "Admin", admin.Email, admin.Password, "admin")
	switch {
	case err == nil:
		log.Info().Str("email", admin.Email).Msg("admin account created")
		return nil
	case errors.Is(err, apperrors.ErrConflict):
		return nil
	default:
		return fmt.Errorf("failed to seed admin account: %w", err)
	}
}
