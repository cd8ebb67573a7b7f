package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/api-inventario/docs"
	"github.com/jhoicas/api-inventario/internal/application/auth"
	"github.com/jhoicas/api-inventario/internal/application/orders"
	"github.com/jhoicas/api-inventario/internal/application/usecase"
	infrapdf "github.com/jhoicas/api-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/api-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/api-inventario/internal/infrastructure/ratelimit"
	httpRouter "github.com/jhoicas/api-inventario/internal/interfaces/http"
	"github.com/jhoicas/api-inventario/pkg/config"
	"github.com/jhoicas/api-inventario/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.ApplyMigrations(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	if len(applied) > 0 {
		log.Info().Strs("versions", applied).Msg("migraciones aplicadas")
	}

	limiterStore := newRateLimitStore(ctx, cfg, log)

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Orders.LockTimeout)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	placeOrderUC := orders.NewPlaceOrderUseCase(txRunner, log, orders.Options{
		TxTimeout:   cfg.Orders.TxTimeout,
		MaxAttempts: cfg.Orders.MaxAttempts,
	})
	// PDF: comprobante de la orden
	receiptPDF := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	orderQueryUC := orders.NewQueryUseCase(orderRepo, userRepo, receiptPDF)

	app := httpRouter.NewApp(cfg.App.Name, log)

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "API Inventario",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger UI deshabilitado: archivo no encontrado")
	}
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(docs.JSON())
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db": dbStatus(c.UserContext(), pool)})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UserUC:         usecase.NewUserUseCase(userRepo),
		ProductUC:      usecase.NewProductUseCase(productRepo),
		PlaceOrder:     placeOrderUC,
		OrderQuery:     orderQueryUC,
		JWTSecret:      cfg.JWT.Secret,
		RateLimitStore: limiterStore,
		AuthRateMax:    cfg.RateLimit.AuthMax,
		AuthRateWindow: cfg.RateLimit.AuthWindow,
		Log:            log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// newRateLimitStore usa Redis si REDIS_URL está configurado; si no, o si no responde, memoria.
func newRateLimitStore(ctx context.Context, cfg *config.Config, log *logger.Logger) ratelimit.Store {
	if cfg.Redis.URL != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL)
		if err == nil {
			log.Info().Msg("rate limiter sobre Redis")
			return ratelimit.NewRedisStore(rdb)
		}
		log.Warn().Err(err).Msg("Redis no disponible, rate limiter en memoria")
	}
	mem := ratelimit.NewMemoryStore()
	go mem.RunPurge(ctx, 5*time.Minute)
	return mem
}

func dbStatus(ctx context.Context, pool *pgxpool.Pool) string {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		return "down"
	}
	return "up"
}
