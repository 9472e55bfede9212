package executor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
)

// Client talks to the external payout executor. Every call carries the
// request's stable idempotency key, so a retried handoff cannot cause a
// double transfer on the executor side.
type Client struct {
	Address string
}

func NewClient(address string) *Client {
	return &Client{Address: address}
}

type TransferRequest struct {
	IdempotencyKey string          `json:"idempotency_key"`
	DistributorID  string          `json:"distributor_id"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Method         string          `json:"method"`
}

type TransferStatus struct {
	IdempotencyKey string `json:"idempotency_key"`
	Status         string `json:"status"` // pending | completed | failed
	TransactionRef string `json:"transaction_ref,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SubmitTransfer hands the payout off. The executor deduplicates on the
// idempotency key, so callers may retry on transport errors.
func (c *Client) SubmitTransfer(req TransferRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	response, err := http.Post(fmt.Sprintf("%s/transfers", c.Address), "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	var errResp errorResponse
	if err := json.Unmarshal(responseBody, &errResp); err != nil {
		return err
	}
	return errors.New(errResp.Error)
}

// GetTransferStatus polls for requests whose callback never arrived.
func (c *Client) GetTransferStatus(idempotencyKey string) (*TransferStatus, error) {
	response, err := http.Get(fmt.Sprintf("%s/transfers/%s", c.Address, idempotencyKey))
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var status TransferStatus
		if err := json.Unmarshal(responseBody, &status); err != nil {
			return nil, err
		}
		return &status, nil
	}
	var errResp errorResponse
	if err := json.Unmarshal(responseBody, &errResp); err != nil {
		return nil, err
	}
	return nil, errors.New(errResp.Error)
}
