package calculator

import (
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

// runRankBonus pays the one-time achievement bonus when a distributor's
// evaluated rank exceeds their lifetime highest, then advances the stored
// rank markers. Reaching a rank attained before pays nothing again, and a
// jump over intermediate ranks pays only the rank actually reached.
func (uc *DefaultCalculatorUsecase) runRankBonus(store domain.RunStore, run *periodRun) ([]*domain.CommissionLineItem, error) {
	var inserted []*domain.CommissionLineItem
	now := time.Now()

	for _, snapshot := range run.snapshots {
		id := snapshot.DistributorID
		node := run.arena.Nodes[id]
		if node == nil {
			continue
		}

		if snapshot.Rank > node.HighestRank {
			row := run.plan.RankRow(snapshot.Rank)
			if row != nil && row.RankBonus.GreaterThan(decimal.Zero) {
				item := &domain.CommissionLineItem{
					ID:                  newLineItemID(),
					DistributorID:       id,
					PeriodID:            run.period.ID,
					Type:                domain.CommissionRankBonus,
					Amount:              row.RankBonus,
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
		}

		if snapshot.Rank > node.Rank || snapshot.Rank > node.HighestRank {
			highest := node.HighestRank
			if snapshot.Rank > highest {
				highest = snapshot.Rank
			}
			if err := store.UpdateRanks(id, snapshot.Rank, highest); err != nil {
				return nil, err
			}
		}
	}
	return inserted, nil
}
