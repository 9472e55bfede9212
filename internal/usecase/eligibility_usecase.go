package usecase

import (
	"sort"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

// PeriodVolumes is the memoized bottom-up aggregation for one period: each
// distributor's PV, unilevel TV and per-leg binary subtree volume, computed
// in O(n) and shared by the evaluator and the binary calculator.
type PeriodVolumes struct {
	PV        map[string]decimal.Decimal
	TV        map[string]decimal.Decimal
	BinaryVol map[string]decimal.Decimal
}

// LegVolume returns the binary subtree volume of the child on the given leg.
func (v *PeriodVolumes) LegVolume(arena *TreeArena, id string, leg domain.BinaryLeg) decimal.Decimal {
	childID, ok := arena.BinaryChildren[id][leg]
	if !ok {
		return decimal.Zero
	}
	return v.BinaryVol[childID]
}

// ComputePeriodVolumes folds the period's ledger entries up both trees.
// Descendant aggregates are computed once and reused by every ancestor.
func ComputePeriodVolumes(arena *TreeArena, entries []*domain.VolumeEntry) *PeriodVolumes {
	volumes := &PeriodVolumes{
		PV:        make(map[string]decimal.Decimal, len(arena.Nodes)),
		TV:        make(map[string]decimal.Decimal, len(arena.Nodes)),
		BinaryVol: make(map[string]decimal.Decimal, len(arena.Nodes)),
	}

	for id := range arena.Nodes {
		volumes.PV[id] = decimal.Zero
	}
	for _, entry := range entries {
		if _, ok := arena.Nodes[entry.DistributorID]; !ok {
			continue
		}
		volumes.PV[entry.DistributorID] = volumes.PV[entry.DistributorID].Add(entry.PV)
	}

	for _, id := range arena.PostOrder(func(id string) []string {
		return arena.UnilevelChildren[id]
	}) {
		tv := volumes.PV[id]
		for _, childID := range arena.UnilevelChildren[id] {
			tv = tv.Add(volumes.TV[childID])
		}
		volumes.TV[id] = tv
	}

	for _, id := range arena.PostOrder(func(id string) []string {
		var children []string
		for _, childID := range arena.BinaryChildren[id] {
			children = append(children, childID)
		}
		return children
	}) {
		vol := volumes.PV[id]
		for _, childID := range arena.BinaryChildren[id] {
			vol = vol.Add(volumes.BinaryVol[childID])
		}
		volumes.BinaryVol[id] = vol
	}

	return volumes
}

type EligibilityEvaluator struct{}

func NewEligibilityEvaluator() *EligibilityEvaluator {
	return &EligibilityEvaluator{}
}

// Evaluate produces the period's eligibility snapshots. It is a pure function
// of the arena, the period's entries and the plan: recomputing a closed
// period yields identical snapshots. Ranks are never demoted here: the
// effective rank is the qualified rank or the stored rank, whichever is
// higher.
func (e *EligibilityEvaluator) Evaluate(
	arena *TreeArena,
	volumes *PeriodVolumes,
	plan *domain.Plan,
	periodID string,
) []*domain.EligibilitySnapshot {

	snapshots := make([]*domain.EligibilitySnapshot, 0, len(arena.Nodes))
	now := time.Now()

	for id, node := range arena.Nodes {
		pv := volumes.PV[id]
		tv := volumes.TV[id]
		leftVol := volumes.LegVolume(arena, id, domain.LegLeft)
		rightVol := volumes.LegVolume(arena, id, domain.LegRight)
		lesser := decimal.Min(leftVol, rightVol)

		rank := plan.QualifiedRank(pv, tv, lesser)
		if node.Rank > rank {
			rank = node.Rank
		}

		active := node.Status == domain.StatusActive &&
			pv.GreaterThanOrEqual(plan.ActivityThreshold)

		snapshots = append(snapshots, &domain.EligibilitySnapshot{
			DistributorID:   id,
			PeriodID:        periodID,
			IsActive:        active,
			Rank:            rank,
			PV:              pv,
			TV:              tv,
			LesserLegVolume: lesser,
			CreatedAt:       now,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].DistributorID < snapshots[j].DistributorID
	})
	return snapshots
}
