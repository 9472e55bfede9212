package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type requestValidator struct {
	validator *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

// NewRouter wires every HTTP route of the service.
func NewRouter(
	treeHandler *TreeHandler,
	ledgerHandler *LedgerHandler,
	payoutHandler *PayoutHandler,
	periodHandler *PeriodHandler,
	planHandler *PlanHandler) *echo.Echo {

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validator: validator.New()}

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/enrollments", treeHandler.Enroll)
	e.POST("/placements", treeHandler.PlaceBinary)
	e.GET("/distributors/:id", treeHandler.GetDistributor)
	e.GET("/distributors/:id/balance", ledgerHandler.GetBalance)
	e.GET("/distributors/:id/commissions", ledgerHandler.ListCommissions)

	e.POST("/payouts", payoutHandler.Create)
	e.GET("/payouts/:id", payoutHandler.Get)
	e.POST("/payouts/:id/approve", payoutHandler.Approve)
	e.POST("/payouts/:id/cancel", payoutHandler.Cancel)
	e.POST("/webhooks/executor", payoutHandler.ExecutorWebhook)

	e.POST("/periods/close", periodHandler.Close)
	e.POST("/periods/:id/run", periodHandler.Run)
	e.GET("/periods/:id/commissions", periodHandler.ListCommissions)
	e.GET("/periods/:id/snapshots", periodHandler.ListSnapshots)

	e.POST("/plans", planHandler.Create)
	e.GET("/plans/latest", planHandler.GetLatest)
	e.GET("/plans/:version", planHandler.Get)

	return e
}
