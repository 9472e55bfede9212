package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/usecase"
	"github.com/nexaline/comp-service/internal/usecase/calculator"
)

type PeriodHandler struct {
	calculatorUc calculator.CalculatorUsecase
	ledgerUc     usecase.LedgerUsecase
	snapshotRepo domain.SnapshotRepository
}

func NewPeriodHandler(
	calculatorUc calculator.CalculatorUsecase,
	ledgerUc usecase.LedgerUsecase,
	snapshotRepo domain.SnapshotRepository) *PeriodHandler {

	return &PeriodHandler{calculatorUc: calculatorUc, ledgerUc: ledgerUc, snapshotRepo: snapshotRepo}
}

type PeriodResponse struct {
	ID          string     `json:"id"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      time.Time  `json:"ends_at"`
	PlanVersion string     `json:"plan_version"`
	RunStatus   string     `json:"run_status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toPeriodResponse(p *domain.Period) PeriodResponse {
	return PeriodResponse{
		ID:          p.ID,
		StartsAt:    p.StartsAt,
		EndsAt:      p.EndsAt,
		PlanVersion: p.PlanVersion,
		RunStatus:   string(p.RunStatus),
		CompletedAt: p.CompletedAt,
	}
}

// Close seals the open window and runs the calculation for it.
func (h *PeriodHandler) Close(c echo.Context) error {
	period, err := h.calculatorUc.ClosePeriod(time.Now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toPeriodResponse(period))
}

// Run re-runs a closed period. Reruns are idempotent.
func (h *PeriodHandler) Run(c echo.Context) error {
	if err := h.calculatorUc.RunPeriod(c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type SnapshotResponse struct {
	DistributorID   string `json:"distributor_id"`
	PeriodID        string `json:"period_id"`
	IsActive        bool   `json:"is_active"`
	Rank            int    `json:"rank"`
	PV              string `json:"pv"`
	TV              string `json:"tv"`
	LesserLegVolume string `json:"lesser_leg_volume"`
}

// ListSnapshots returns the eligibility results of a completed run.
func (h *PeriodHandler) ListSnapshots(c echo.Context) error {
	snapshots, err := h.snapshotRepo.GetSnapshotsByPeriod(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	responses := make([]SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		responses[i] = SnapshotResponse{
			DistributorID:   s.DistributorID,
			PeriodID:        s.PeriodID,
			IsActive:        s.IsActive,
			Rank:            int(s.Rank),
			PV:              s.PV.String(),
			TV:              s.TV.String(),
			LesserLegVolume: s.LesserLegVolume.String(),
		}
	}
	return c.JSON(http.StatusOK, responses)
}

func (h *PeriodHandler) ListCommissions(c echo.Context) error {
	items, err := h.ledgerUc.ListPeriodCommissions(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toLineItemResponses(items))
}
