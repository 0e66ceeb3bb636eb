package routes

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/messagely/messagely/internal/auth"
	"github.com/messagely/messagely/internal/config"
	"github.com/messagely/messagely/internal/identity"
	"github.com/messagely/messagely/internal/message"
	"github.com/messagely/messagely/internal/middleware"
	"github.com/messagely/messagely/internal/notification"
	"github.com/messagely/messagely/internal/password"
)

// Deps aggregates shared dependencies required to wire routes. DB and SQLite
// are only consulted for their storage driver; Cache and Notifier are optional.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	SQLite   *sql.DB
	Cache    *redis.Client
	Notifier notification.Notifier
	Logger   *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}

	identityRepo, messageRepo, err := newStores(d)
	if err != nil {
		return err
	}
	hasher, err := password.NewHasher(d.Cfg.BcryptWorkFactor)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokens(d.Cfg.SecretKey)
	if err != nil {
		return err
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	identitySvc := identity.NewService(identityRepo, hasher)
	authSvc := auth.NewService(identitySvc, tokens, d.Logger)
	messageSvc := message.NewService(messageRepo, notifier, d.Logger)

	// Middlewares
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(recover.New())
	app.Use(middleware.Authenticate(tokens))

	RegisterHealthRoutes(app, d)
	RegisterAuthRoutes(app, auth.NewHandler(authSvc))

	messageHandler := message.NewHandler(messageSvc)
	RegisterUserRoutes(app, identity.NewHandler(identitySvc), messageHandler)

	var sendGuards []fiber.Handler
	if d.Cache != nil {
		sendGuards = append(sendGuards, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterMessageRoutes(app, messageHandler, sendGuards...)

	return nil
}

func newStores(d Deps) (identity.Repository, message.Repository, error) {
	switch d.Cfg.StorageDriver {
	case config.DriverPostgres:
		if d.DB == nil {
			return nil, nil, fmt.Errorf("postgres storage selected but no pool was provided")
		}
		return identity.NewPostgresRepository(d.DB), message.NewPostgresRepository(d.DB), nil
	case config.DriverSQLite:
		if d.SQLite == nil {
			return nil, nil, fmt.Errorf("sqlite storage selected but no database was provided")
		}
		return identity.NewSQLiteRepository(d.SQLite), message.NewSQLiteRepository(d.SQLite), nil
	case config.DriverMemory, "":
		users := identity.NewMemoryRepository()
		return users, message.NewMemoryRepository(users), nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", d.Cfg.StorageDriver)
	}
}
