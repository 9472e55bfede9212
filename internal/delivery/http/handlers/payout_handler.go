package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/usecase"
	payoutdto "github.com/nexaline/comp-service/internal/usecase/dto/payout"
	"github.com/shopspring/decimal"
)

type PayoutHandler struct {
	payoutUc usecase.PayoutUsecase
}

func NewPayoutHandler(payoutUc usecase.PayoutUsecase) *PayoutHandler {
	return &PayoutHandler{payoutUc: payoutUc}
}

type CreatePayoutRequest struct {
	DistributorID string `json:"distributor_id" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	Method        string `json:"method" validate:"required"`
}

type PayoutResponse struct {
	ID              string    `json:"id"`
	DistributorID   string    `json:"distributor_id"`
	RequestedAmount string    `json:"requested_amount"`
	FeeAmount       string    `json:"fee_amount"`
	NetAmount       string    `json:"net_amount"`
	Method          string    `json:"method"`
	Status          string    `json:"status"`
	TransactionRef  string    `json:"transaction_ref,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ExecutorWebhookRequest is the executor's transfer-resolution callback.
type ExecutorWebhookRequest struct {
	IdempotencyKey string `json:"idempotency_key" validate:"required"`
	Status         string `json:"status" validate:"required,oneof=completed failed"`
	TransactionRef string `json:"transaction_ref"`
}

func toPayoutResponse(p *domain.PayoutRequest) PayoutResponse {
	resp := PayoutResponse{
		ID:              p.ID,
		DistributorID:   p.DistributorID,
		RequestedAmount: p.RequestedAmount.String(),
		FeeAmount:       p.FeeAmount.String(),
		NetAmount:       p.NetAmount.String(),
		Method:          p.Method,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
	}
	if p.TransactionRef != nil {
		resp.TransactionRef = *p.TransactionRef
	}
	return resp
}

func (h *PayoutHandler) Create(c echo.Context) error {
	var req CreatePayoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid amount"})
	}

	payout, err := h.payoutUc.CreatePayout(&payoutdto.CreatePayoutInput{
		DistributorID: req.DistributorID,
		Amount:        amount,
		Method:        req.Method,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toPayoutResponse(payout))
}

func (h *PayoutHandler) Get(c echo.Context) error {
	payout, err := h.payoutUc.GetPayout(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPayoutResponse(payout))
}

func (h *PayoutHandler) Approve(c echo.Context) error {
	payout, err := h.payoutUc.ApprovePayout(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPayoutResponse(payout))
}

func (h *PayoutHandler) Cancel(c echo.Context) error {
	payout, err := h.payoutUc.CancelPayout(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPayoutResponse(payout))
}

func (h *PayoutHandler) ExecutorWebhook(c echo.Context) error {
	var req ExecutorWebhookRequest
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	payout, err := h.payoutUc.HandleExecutorCallback(&payoutdto.ExecutorCallbackInput{
		IdempotencyKey: req.IdempotencyKey,
		Status:         req.Status,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPayoutResponse(payout))
}
