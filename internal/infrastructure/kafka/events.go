package publisher

import "time"

// CommissionEvent is one commission line item on the outbound stream.
type CommissionEvent struct {
	LineItemID          string `json:"line_item_id"`
	DistributorID       string `json:"distributor_id"`
	PeriodID            string `json:"period_id"`
	Type                string `json:"type"`
	Amount              string `json:"amount"`
	SourceDistributorID string `json:"source_distributor_id"`
	SourceOrderID       string `json:"source_order_id,omitempty"`
}

// PayoutEvent announces a payout request status transition.
type PayoutEvent struct {
	PayoutID       string `json:"payout_id"`
	DistributorID  string `json:"distributor_id"`
	Status         string `json:"status"`
	NetAmount      string `json:"net_amount"`
	Method         string `json:"method"`
	TransactionRef string `json:"transaction_ref,omitempty"`
}

// OrderCaptureEvent is the inbound order event from the checkout system.
type OrderCaptureEvent struct {
	OrderID      string    `json:"order_id"`
	PurchaserID  string    `json:"purchaser_id"`
	Amount       string    `json:"amount"`
	IsFirstOrder bool      `json:"is_first_order"`
	CapturedAt   time.Time `json:"captured_at"`
	// Refund marks the event as a refund of an earlier capture.
	Refund bool `json:"refund"`
}

// EnrollmentEvent is the inbound event from the enrollment form.
type EnrollmentEvent struct {
	DistributorID   string    `json:"distributor_id"`
	SponsorID       string    `json:"sponsor_id"`
	PlacementParent string    `json:"placement_parent,omitempty"`
	PlacementLeg    string    `json:"placement_leg,omitempty"`
	EnrolledAt      time.Time `json:"enrolled_at"`
}
