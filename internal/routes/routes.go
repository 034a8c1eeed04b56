package routes

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tally-app/tally/internal/auth"
	"github.com/tally-app/tally/internal/config"
	"github.com/tally-app/tally/internal/identity"
	"github.com/tally-app/tally/internal/ledger"
	"github.com/tally-app/tally/internal/middleware"
	"github.com/tally-app/tally/internal/notification"
	"github.com/tally-app/tally/internal/password"
)

// Deps aggregates shared dependencies required to wire routes. DB takes
// precedence over SQLite; with neither, in-memory stores are used (dev only).
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	SQLite *sql.DB
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if !d.Cfg.IsDev() && d.DB == nil && d.SQLite == nil {
		return fmt.Errorf("a database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	tokens, err := auth.NewTokens(d.Cfg.JWTSecret, d.Cfg.AppName, time.Now)
	if err != nil {
		return err
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(corsMiddleware(d.Cfg.CORSOrigins))
	if d.Cfg.IsDev() {
		// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger, middleware.StatusOf))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	identityRepo, entryStore, backend := selectStores(d)
	d.Logger.Info("storage selected", slog.String("backend", backend))

	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(identityRepo, password.NewBcrypt(d.Cfg.BcryptCost), notifier, d.Logger)
	authSvc := auth.NewService(identitySvc, tokens)
	ledgerSvc := ledger.NewService(entryStore, d.Logger)

	identityHandler := identity.NewHandler(identitySvc, d.Logger)
	authHandler := auth.NewHandler(authSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)

	// Guards are mounted per route so unknown paths still 404.
	var public, protected []fiber.Handler
	protected = append(protected, middleware.JWTAuth(tokens, d.Logger))
	if d.Cache != nil {
		idempotency := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
		public = append(public, idempotency)
		protected = append(protected, idempotency)
	}

	// Public routes
	RegisterIdentityRoutes(app, identityHandler, public)
	RegisterAuthRoutes(app, authHandler)

	// Protected routes
	RegisterProfileRoutes(app, identityHandler, protected)
	RegisterLedgerRoutes(app, ledgerHandler, protected)

	return nil
}

// chain returns guards followed by h without aliasing guards.
func chain(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}

func selectStores(d Deps) (identity.Repository, ledger.Store, string) {
	switch {
	case d.DB != nil:
		return identity.NewPostgresRepository(d.DB), ledger.NewPostgresStore(d.DB), "postgres"
	case d.SQLite != nil:
		return identity.NewSQLiteRepository(d.SQLite), ledger.NewSQLiteStore(d.SQLite), "sqlite"
	default:
		return identity.NewMemoryRepository(), ledger.NewInMemory(), "memory"
	}
}

func corsMiddleware(origins []string) fiber.Handler {
	allow := strings.Join(origins, ",")
	if allow == "" {
		allow = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
		AllowCredentials: allow != "*",
	})
}
