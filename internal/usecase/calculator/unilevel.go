package calculator

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

// orderCV returns each captured order's ledger CV: the purchaser's
// non-reversal entry, i.e. the CV computed under the schedule in force when
// the order posted.
func (r *periodRun) orderCV() map[string]decimal.Decimal {
	cv := make(map[string]decimal.Decimal, len(r.orders))
	for _, entry := range r.entries {
		if entry.Reversal {
			continue
		}
		cv[entry.SourceOrderID] = cv[entry.SourceOrderID].Add(entry.CV)
	}
	return cv
}

// runUnilevel walks each order's sponsor chain up to the plan's depth and
// pays every active ancestor its level rate. A chain shorter than the full
// depth just stops at the root.
func (uc *DefaultCalculatorUsecase) runUnilevel(store domain.RunStore, run *periodRun) ([]*domain.CommissionLineItem, error) {
	cvByOrder := run.orderCV()

	var inserted []*domain.CommissionLineItem
	for _, order := range run.orders {
		if order.Status == domain.OrderRefunded {
			continue
		}
		cv, ok := cvByOrder[order.ID]
		if !ok || cv.IsZero() {
			continue
		}

		ancestors := run.arena.UnilevelAncestors(order.PurchaserID, run.plan.UnilevelDepth())
		for i, ancestor := range ancestors {
			depth := i + 1
			if !run.isActive(ancestor.ID) {
				continue
			}
			rate := run.plan.UnilevelRate(depth)
			if rate.IsZero() {
				continue
			}

			orderID := order.ID
			item := &domain.CommissionLineItem{
				ID:                  newLineItemID(),
				DistributorID:       ancestor.ID,
				PeriodID:            run.period.ID,
				Type:                domain.UnilevelType(depth),
				Amount:              cv.Mul(rate),
				SourceDistributorID: order.PurchaserID,
				SourceOrderID:       &orderID,
				CreatedAt:           time.Now(),
			}
			ok, err := store.AppendIfAbsent(item)
			if err != nil {
				return nil, err
			}
			if ok {
				inserted = append(inserted, item)
			}
		}
	}
	return inserted, nil
}
