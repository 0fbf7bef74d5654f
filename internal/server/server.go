package server

import (
	"strings"

	"pyme-backend/internal/audit"
	"pyme-backend/internal/auth"
	"pyme-backend/internal/config"
	"pyme-backend/internal/dashboard"
	"pyme-backend/internal/database"
	"pyme-backend/internal/httpx"
	"pyme-backend/internal/inventory"
	"pyme-backend/internal/logger"
	"pyme-backend/internal/metrics"
	"pyme-backend/internal/partner"
	"pyme-backend/internal/production"
	"pyme-backend/internal/trade"
	"pyme-backend/internal/treasury"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the fiber app with every route. The database must already be
// initialised in database.DB.
func New(cfg *config.Config, limiter *auth.RateLimiter) *fiber.App {
	metrics.Register()

	app := fiber.New(fiber.Config{
		ErrorHandler: httpx.ErrorHandler,
		AppName:      "pyme-backend",
	})

	app.Use(recover.New())
	app.Use(logger.Middleware())
	app.Use(metrics.Middleware())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Public auth
	public := api.Group("/auth", limiter.Middleware())
	public.Post("/signup", auth.SignupHandler(cfg))
	public.Post("/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("", auth.JWTMiddleware(cfg))
	protected.Get("/auth/me", auth.MeHandler())

	// Dashboard
	protected.Get("/dashboard", dashboard.SummaryHandler())
	protected.Get("/dashboard/cash-chart", dashboard.CashChartHandler())

	// Proveedores
	protected.Get("/suppliers", partner.ListSuppliersHandler())
	protected.Get("/suppliers/options", partner.ListSupplierOptionsHandler())
	protected.Get("/suppliers/:id", partner.GetSupplierHandler())
	protected.Post("/suppliers", partner.CreateSupplierHandler())
	protected.Put("/suppliers/:id", partner.UpdateSupplierHandler())
	protected.Delete("/suppliers/:id", partner.DeleteSupplierHandler())

	// Clientes
	protected.Get("/clients", partner.ListClientsHandler())
	protected.Get("/clients/:id", partner.GetClientHandler())
	protected.Post("/clients", partner.CreateClientHandler())
	protected.Put("/clients/:id", partner.UpdateClientHandler())
	protected.Delete("/clients/:id", partner.DeleteClientHandler())

	// Productos
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Get("/products/:id", inventory.GetProductHandler())
	protected.Post("/products", inventory.CreateProductHandler(cfg))
	protected.Put("/products/:id", inventory.UpdateProductHandler())
	protected.Delete("/products/:id", inventory.DeleteProductHandler())
	protected.Put("/products/:id/stock", inventory.UpsertStockHandler(cfg))

	// Inventario
	protected.Get("/stock", inventory.ListStockHandler())
	protected.Get("/stock/export", inventory.ExportStockHandler())

	// Compras y ventas
	protected.Get("/purchases", trade.ListPurchasesHandler())
	protected.Get("/purchases/:id", trade.GetPurchaseHandler())
	protected.Post("/purchases", trade.CreatePurchaseHandler())
	protected.Put("/purchases/:id", trade.UpdatePurchaseHandler())
	protected.Delete("/purchases/:id", trade.DeletePurchaseHandler())

	protected.Get("/sales", trade.ListSalesHandler())
	protected.Get("/sales/:id", trade.GetSaleHandler())
	protected.Post("/sales", trade.CreateSaleHandler())
	protected.Put("/sales/:id", trade.UpdateSaleHandler())
	protected.Delete("/sales/:id", trade.DeleteSaleHandler())

	// Producción
	protected.Get("/production", production.ListProductionHandler())
	protected.Get("/production/:id", production.GetProductionHandler())
	protected.Post("/production", production.CreateProductionHandler())
	protected.Put("/production/:id", production.UpdateProductionHandler())
	protected.Delete("/production/:id", production.DeleteProductionHandler())

	// Tesorería, summary antes de :id
	protected.Get("/treasury", treasury.ListTreasuryHandler())
	protected.Get("/treasury/summary", treasury.SummaryHandler())
	protected.Get("/treasury/:id", treasury.GetTreasuryHandler())
	protected.Post("/treasury", treasury.CreateTreasuryHandler())
	protected.Put("/treasury/:id", treasury.UpdateTreasuryHandler())
	protected.Delete("/treasury/:id", treasury.DeleteTreasuryHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	return app
}
