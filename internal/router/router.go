package router

import (
	"net/http"

	"github.com/Nhattien2912/ExpenseManager-sub000/internal/config"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/debt"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/handler"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/ledger"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/middleware"
	"github.com/Nhattien2912/ExpenseManager-sub000/internal/recurrence"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRouter configures the Gin engine and mounts the API.
func SetupRouter(cfg *config.Config, store *ledger.Store, engine *recurrence.Engine, settler *debt.Settler, log *logrus.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ====== API ======
	api := r.Group("/api")
	api.Use(middleware.AuditMiddleware(store))

	walletHandler := handler.NewWalletHandler(store)
	api.POST("/wallets", walletHandler.CreateWallet)
	api.GET("/wallets", walletHandler.ListWallets)
	api.GET("/wallets/:id", walletHandler.GetWallet)
	api.PUT("/wallets/:id", walletHandler.UpdateWallet)
	api.DELETE("/wallets/:id", walletHandler.ArchiveWallet)

	txHandler := handler.NewTransactionHandler(store, cfg.App.PageSize)
	api.POST("/transactions", txHandler.CreateTransaction)
	api.GET("/transactions", txHandler.ListTransactions)
	api.PUT("/transactions/:id", txHandler.UpdateTransaction)
	api.DELETE("/transactions/:id", txHandler.DeleteTransaction)
	api.GET("/stats/monthly", txHandler.GetMonthlyStats)

	obHandler := handler.NewObligationHandler(store, engine)
	api.POST("/obligations", obHandler.CreateObligation)
	api.GET("/obligations", obHandler.ListObligations)
	api.GET("/obligations/upcoming", obHandler.UpcomingObligations)
	api.PUT("/obligations/:id", obHandler.UpdateObligation)
	api.POST("/obligations/:id/toggle", obHandler.ToggleObligation)
	api.DELETE("/obligations/:id", obHandler.DeleteObligation)

	debtHandler := handler.NewDebtHandler(store, settler)
	api.GET("/debts", debtHandler.ListDebts)
	api.POST("/debts/:id/settle", debtHandler.SettleDebt)

	plannedHandler := handler.NewPlannedHandler(store)
	api.POST("/planned", plannedHandler.CreatePlannedItem)
	api.GET("/planned", plannedHandler.ListPlannedItems)
	api.POST("/planned/:id/toggle", plannedHandler.TogglePlannedItem)
	api.DELETE("/planned/:id", plannedHandler.DeletePlannedItem)

	budgetHandler := handler.NewBudgetHandler(store, cfg.Budget.DefaultLimit)
	api.GET("/budget", budgetHandler.GetBudget)
	api.PUT("/budget", budgetHandler.SetBudget)
	api.GET("/budget/status", budgetHandler.GetBudgetStatus)

	return r
}
