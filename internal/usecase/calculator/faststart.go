package calculator

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
)

// runFastStart pays the flat enrollment bonus to the direct sponsor of every
// new distributor whose first qualifying order posted this period, plus the
// larger boost bonus on the sponsor's Nth fast-start inside the rolling
// window. The rolling count queries commission-ledger history across periods,
// which is why fast-start items carry the source order's capture time as
// CreatedAt: the window stays stable across reruns.
func (uc *DefaultCalculatorUsecase) runFastStart(store domain.RunStore, run *periodRun) ([]*domain.CommissionLineItem, error) {
	rules := run.plan.FastStart
	if rules.Bonus.IsZero() {
		return nil, nil
	}
	enrollmentWindow := time.Duration(rules.EnrollmentWindowDays) * 24 * time.Hour
	boostWindow := time.Duration(rules.BoostWindowDays) * 24 * time.Hour

	var inserted []*domain.CommissionLineItem
	for _, order := range run.orders {
		if order.Status == domain.OrderRefunded || !order.IsFirstOrder {
			continue
		}
		purchaser := run.arena.Nodes[order.PurchaserID]
		if purchaser == nil || purchaser.SponsorID == nil {
			continue
		}
		if enrollmentWindow > 0 && order.CapturedAt.After(purchaser.EnrolledAt.Add(enrollmentWindow)) {
			continue
		}
		sponsorID := *purchaser.SponsorID
		if !run.isActive(sponsorID) {
			continue
		}

		orderID := order.ID
		item := &domain.CommissionLineItem{
			ID:                  newLineItemID(),
			DistributorID:       sponsorID,
			PeriodID:            run.period.ID,
			Type:                domain.CommissionFastStart,
			Amount:              rules.Bonus,
			SourceDistributorID: order.PurchaserID,
			SourceOrderID:       &orderID,
			CreatedAt:           order.CapturedAt,
		}
		ok, err := store.AppendIfAbsent(item)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		inserted = append(inserted, item)

		if rules.BoostCount <= 0 || rules.BoostBonus.IsZero() || boostWindow <= 0 {
			continue
		}
		// count includes the item just written; the boost fires on exactly
		// the Nth event so it is emitted at most once per window crossing
		count, err := store.CountFastStartsInWindow(sponsorID, order.CapturedAt.Add(-boostWindow), order.CapturedAt)
		if err != nil {
			return nil, err
		}
		if count != int64(rules.BoostCount) {
			continue
		}

		boost := &domain.CommissionLineItem{
			ID:                  newLineItemID(),
			DistributorID:       sponsorID,
			PeriodID:            run.period.ID,
			Type:                domain.CommissionFastStartBoost,
			Amount:              rules.BoostBonus,
			SourceDistributorID: order.PurchaserID,
			SourceOrderID:       &orderID,
			CreatedAt:           order.CapturedAt,
		}
		ok, err = store.AppendIfAbsent(boost)
		if err != nil {
			return nil, err
		}
		if ok {
			inserted = append(inserted, boost)
		}
	}
	return inserted, nil
}
