package volumedto

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecordOrderInput struct {
	OrderID      string
	PurchaserID  string
	Amount       decimal.Decimal
	IsFirstOrder bool
	CapturedAt   time.Time
}
