package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/usecase"
)

type LedgerHandler struct {
	ledgerUc usecase.LedgerUsecase
}

func NewLedgerHandler(ledgerUc usecase.LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{ledgerUc: ledgerUc}
}

type BalanceResponse struct {
	DistributorID string `json:"distributor_id"`
	Available     string `json:"available"`
}

type LineItemResponse struct {
	ID                  string    `json:"id"`
	DistributorID       string    `json:"distributor_id"`
	PeriodID            string    `json:"period_id"`
	Type                string    `json:"type"`
	Amount              string    `json:"amount"`
	SourceDistributorID string    `json:"source_distributor_id"`
	SourceOrderID       string    `json:"source_order_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

type LineItemListResponse struct {
	Items []LineItemResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

func toLineItemResponses(items []*domain.CommissionLineItem) []LineItemResponse {
	out := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		resp := LineItemResponse{
			ID:                  item.ID,
			DistributorID:       item.DistributorID,
			PeriodID:            item.PeriodID,
			Type:                string(item.Type),
			Amount:              item.Amount.String(),
			SourceDistributorID: item.SourceDistributorID,
			CreatedAt:           item.CreatedAt,
		}
		if item.SourceOrderID != nil {
			resp.SourceOrderID = *item.SourceOrderID
		}
		out = append(out, resp)
	}
	return out
}

func (h *LedgerHandler) GetBalance(c echo.Context) error {
	distributorID := c.Param("id")
	balance, err := h.ledgerUc.AvailableBalance(distributorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, BalanceResponse{
		DistributorID: distributorID,
		Available:     balance.String(),
	})
}

func (h *LedgerHandler) ListCommissions(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	items, total, err := h.ledgerUc.ListCommissions(c.Param("id"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, LineItemListResponse{
		Items: toLineItemResponses(items),
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
