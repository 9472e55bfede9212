package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nexaline/comp-service/internal/domain"
)

type PlanHandler struct {
	planRepo domain.PlanRepository
}

func NewPlanHandler(planRepo domain.PlanRepository) *PlanHandler {
	return &PlanHandler{planRepo: planRepo}
}

// Create installs a new plan version. Existing versions are immutable; closed
// periods keep the version they were run with.
func (h *PlanHandler) Create(c echo.Context) error {
	var plan domain.Plan
	if err := c.Bind(&plan); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if plan.Version == "" || len(plan.Ranks) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "version and ranks are required"})
	}
	plan.CreatedAt = time.Now()

	if err := h.planRepo.SavePlan(&plan); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) GetLatest(c echo.Context) error {
	plan, err := h.planRepo.LatestPlan()
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) Get(c echo.Context) error {
	plan, err := h.planRepo.GetPlan(c.Param("version"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, plan)
}
