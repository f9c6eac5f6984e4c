package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger/internal/application/auth"
	appledger "github.com/jhoicas/retail-ledger/internal/application/ledger"
	appstock "github.com/jhoicas/retail-ledger/internal/application/stock"
	apptransfer "github.com/jhoicas/retail-ledger/internal/application/transfer"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC   *appledger.UseCase
	StockUC    *appstock.UseCase
	TransferUC *apptransfer.UseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
	Log        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	// Login (público)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))

	admin := RequireRole(entity.RoleAdmin)
	stockWriters := RequireRole(entity.RoleAdmin, entity.RoleWarehouse)
	cashiers := RequireRole(entity.RoleAdmin, entity.RoleCashier)

	protected.Post("/auth/register", admin, authHandler.Register)

	// Cuentas de clientes
	ledgerHandler := NewLedgerHandler(deps.LedgerUC, deps.Log)
	accounts := protected.Group("/accounts")
	accounts.Post("/", cashiers, ledgerHandler.CreateAccount)
	accounts.Get("/balances", ledgerHandler.Balances)
	accounts.Get("/:id/statement", ledgerHandler.Statement)
	accounts.Get("/:id/statement.pdf", ledgerHandler.StatementPDF)

	events := protected.Group("/ledger/events")
	events.Post("/", cashiers, ledgerHandler.RecordEvent)
	events.Post("/:id/void", admin, ledgerHandler.VoidEvent)

	// Inventario
	stockHandler := NewStockHandler(deps.StockUC, deps.Log)
	stock := protected.Group("/stock")
	stock.Post("/movements", stockWriters, stockHandler.ApplyMovement)
	stock.Post("/movements/:id/reverse", admin, stockHandler.ReverseMovement)
	stock.Get("/products/:id/movements", stockHandler.Movements)
	stock.Get("/products/:id/reconcile", admin, stockHandler.Reconcile)
	stock.Get("/low-stock", stockHandler.LowStock)

	branches := protected.Group("/branches")
	branches.Post("/", admin, stockHandler.CreateBranch)
	branches.Get("/", stockHandler.Branches)

	products := protected.Group("/products")
	products.Post("/", stockWriters, stockHandler.CreateProduct)
	products.Get("/", stockHandler.Products)

	// Traslados
	transferHandler := NewTransferHandler(deps.TransferUC, deps.Log)
	transfers := protected.Group("/transfers")
	transfers.Post("/", stockWriters, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/:id/advance", stockWriters, transferHandler.Advance)
	transfers.Post("/:id/reverse", admin, transferHandler.Reverse)
}
