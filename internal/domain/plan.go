package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RankRequirement is one row of the ordered rank table. A distributor
// qualifies for the highest row whose thresholds all hold.
type RankRequirement struct {
	Name         string          `json:"name"`
	MinPV        decimal.Decimal `json:"min_pv"`
	MinTV        decimal.Decimal `json:"min_tv"`
	MinLesserLeg decimal.Decimal `json:"min_lesser_leg"`
	BinaryRate   decimal.Decimal `json:"binary_rate"`
	WeeklyCap    decimal.Decimal `json:"weekly_cap"`
	RankBonus    decimal.Decimal `json:"rank_bonus"`
}

type FastStartRules struct {
	Bonus decimal.Decimal `json:"bonus"`
	// BoostBonus is the larger bonus paid on the BoostCount-th fast-start
	// event inside a rolling BoostWindowDays window.
	BoostBonus      decimal.Decimal `json:"boost_bonus"`
	BoostCount      int             `json:"boost_count"`
	BoostWindowDays int             `json:"boost_window_days"`
	// EnrollmentWindowDays bounds how long after enrollment a first order
	// still qualifies for fast-start.
	EnrollmentWindowDays int `json:"enrollment_window_days"`
}

// Plan is the versioned compensation plan. Every rate the calculator applies
// comes from here, never from constants, so re-running a past period with its
// pinned version reproduces the original output.
type Plan struct {
	Version           string                     `json:"version"`
	CVFirstOrderRate  decimal.Decimal            `json:"cv_first_order_rate"`
	CVRepeatOrderRate decimal.Decimal            `json:"cv_repeat_order_rate"`
	ActivityThreshold decimal.Decimal            `json:"activity_threshold"`
	UnilevelRates     []decimal.Decimal          `json:"unilevel_rates"`
	Ranks             []RankRequirement          `json:"ranks"`
	FastStart         FastStartRules             `json:"fast_start"`
	PayoutMinimum     decimal.Decimal            `json:"payout_minimum"`
	PayoutFees        map[string]decimal.Decimal `json:"payout_fees"`
	CreatedAt         time.Time                  `json:"created_at"`
}

// CVRate returns the commissionable-volume percentage for an order.
func (p *Plan) CVRate(firstOrder bool) decimal.Decimal {
	if firstOrder {
		return p.CVFirstOrderRate
	}
	return p.CVRepeatOrderRate
}

// RankRow returns the requirement row for a rank level, nil for unranked.
func (p *Plan) RankRow(r Rank) *RankRequirement {
	if r <= 0 || int(r) > len(p.Ranks) {
		return nil
	}
	return &p.Ranks[r-1]
}

func (p *Plan) RankName(r Rank) string {
	if row := p.RankRow(r); row != nil {
		return row.Name
	}
	return "unranked"
}

// QualifiedRank resolves the highest rank whose pv/tv/lesser-leg thresholds
// are all met. The table is ordered ascending.
func (p *Plan) QualifiedRank(pv, tv, lesserLeg decimal.Decimal) Rank {
	qualified := Rank(0)
	for i, row := range p.Ranks {
		if pv.GreaterThanOrEqual(row.MinPV) &&
			tv.GreaterThanOrEqual(row.MinTV) &&
			lesserLeg.GreaterThanOrEqual(row.MinLesserLeg) {
			qualified = Rank(i + 1)
		}
	}
	return qualified
}

func (p *Plan) UnilevelRate(depth int) decimal.Decimal {
	if depth < 1 || depth > len(p.UnilevelRates) {
		return decimal.Zero
	}
	return p.UnilevelRates[depth-1]
}

func (p *Plan) UnilevelDepth() int {
	return len(p.UnilevelRates)
}

func (p *Plan) FeePercent(method string) decimal.Decimal {
	if fee, ok := p.PayoutFees[method]; ok {
		return fee
	}
	return decimal.Zero
}

type PlanRepository interface {
	SavePlan(plan *Plan) error
	GetPlan(version string) (*Plan, error)
	LatestPlan() (*Plan, error)
}
