package calculator

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

// runBinary matches each distributor's left and right leg volume, pays the
// matched volume at the rank's binary rate up to the rank's weekly cap, and
// records the stronger leg's unmatched surplus as next period's carryover.
// Volume matched above the cap is flushed, not carried.
func (uc *DefaultCalculatorUsecase) runBinary(store domain.RunStore, run *periodRun) ([]*domain.CommissionLineItem, error) {
	var inserted []*domain.CommissionLineItem
	var carryovers []*domain.BinaryCarryover
	now := time.Now()

	for _, snapshot := range run.snapshots {
		id := snapshot.DistributorID

		left := run.volumes.LegVolume(run.arena, id, domain.LegLeft)
		right := run.volumes.LegVolume(run.arena, id, domain.LegRight)
		if prior := run.priorCarry[id]; prior != nil {
			if c := prior[domain.LegLeft]; c != nil {
				left = left.Add(c.Volume)
			}
			if c := prior[domain.LegRight]; c != nil {
				right = right.Add(c.Volume)
			}
		}
		if left.IsZero() && right.IsZero() {
			continue
		}

		row := run.plan.RankRow(snapshot.Rank)
		if !snapshot.IsActive || row == nil {
			// inactive or unranked distributors forfeit both legs for the
			// period; nothing is matched and nothing carries
			continue
		}

		// refunds can push a leg negative; a negative leg matches nothing
		// and carries nothing
		matched := decimal.Min(left, right)
		if matched.IsNegative() {
			matched = decimal.Zero
		}
		amount := matched.Mul(row.BinaryRate)
		if row.WeeklyCap.GreaterThan(decimal.Zero) && amount.GreaterThan(row.WeeklyCap) {
			amount = row.WeeklyCap
		}

		if amount.GreaterThan(decimal.Zero) {
			item := &domain.CommissionLineItem{
				ID:                  newLineItemID(),
				DistributorID:       id,
				PeriodID:            run.period.ID,
				Type:                domain.CommissionBinary,
				Amount:              amount,
				SourceDistributorID: id,
				CreatedAt:           now,
			}
			ok, err := store.AppendIfAbsent(item)
			if err != nil {
				return nil, err
			}
			if ok {
				inserted = append(inserted, item)
			}
		}

		// the stronger leg keeps its surplus beyond the match
		carryLeg, surplus := domain.LegLeft, left.Sub(matched)
		if right.GreaterThan(left) {
			carryLeg, surplus = domain.LegRight, right.Sub(matched)
		}
		if surplus.GreaterThan(decimal.Zero) {
			carryovers = append(carryovers, &domain.BinaryCarryover{
				DistributorID: id,
				PeriodID:      run.period.ID,
				Leg:           carryLeg,
				Volume:        surplus,
				CreatedAt:     now,
			})
		}
	}

	if err := store.SaveCarryovers(carryovers); err != nil {
		return nil, err
	}
	return inserted, nil
}
