package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nexaline/comp-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrDistributorNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrPayoutNotFound),
		errors.Is(err, domain.ErrPeriodNotFound),
		errors.Is(err, domain.ErrPlanNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrBelowMinimum):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrInsufficientBalance):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrSlotOccupied),
		errors.Is(err, domain.ErrCycleDetected),
		errors.Is(err, domain.ErrDuplicateOrder),
		errors.Is(err, domain.ErrAlreadyReversed),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrRunInProgress),
		errors.Is(err, domain.ErrPeriodNotClosed),
		errors.Is(err, domain.ErrPeriodOverlap):
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})

	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}
