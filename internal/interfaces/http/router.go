package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/jhoicas/api-inventario/internal/application/auth"
	"github.com/jhoicas/api-inventario/internal/application/orders"
	"github.com/jhoicas/api-inventario/internal/application/usecase"
	"github.com/jhoicas/api-inventario/internal/domain/entity"
	"github.com/jhoicas/api-inventario/internal/infrastructure/ratelimit"
	"github.com/jhoicas/api-inventario/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	ProductUC  *usecase.ProductUseCase
	PlaceOrder *orders.PlaceOrderUseCase
	OrderQuery *orders.QueryUseCase
	JWTSecret  string

	// Límite de intentos en /auth por IP.
	RateLimitStore ratelimit.Store
	AuthRateMax    int
	AuthRateWindow time.Duration
	Log            *logger.Logger
}

// NewApp crea la app Fiber con el manejo de errores y los middlewares comunes
// (recover, request id, CORS y log de peticiones).
func NewApp(appName string, log *logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowHeaders:  "Authorization, Content-Type, X-Request-ID",
		ExposeHeaders: "X-Request-ID, Content-Disposition",
	}))
	app.Use(RequestLogger(log.Component("http")))
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	store := deps.RateLimitStore
	if store == nil {
		store = ratelimit.NewMemoryStore()
	}
	rateMax, rateWindow := deps.AuthRateMax, deps.AuthRateWindow
	if rateMax <= 0 {
		rateMax = 20
	}
	if rateWindow <= 0 {
		rateWindow = time.Minute
	}

	api := app.Group("/api")

	// Auth (público, con límite de intentos)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup := api.Group("/auth")
	authLimited := RateLimiter(store, "auth", rateMax, rateWindow, log)
	authGroup.Post("/register", authLimited, authHandler.Register)
	authGroup.Post("/login", authLimited, authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	// Products: lectura para cualquier rol, escritura solo ADMIN
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Orders
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.PlaceOrder, deps.OrderQuery)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/my-orders", orderHandler.MyOrders)
	ordersGroup.Get("/", adminOnly, orderHandler.ListAll)
	ordersGroup.Get("/:id/receipt", orderHandler.Receipt)
	ordersGroup.Get("/:id", orderHandler.GetByID)
}
