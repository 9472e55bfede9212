package domain

import "time"

type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunActive    RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// Period is a closed [StartsAt, EndsAt) commission window. PlanVersion pins
// the plan rules in force at close time so reruns stay idempotent after the
// plan changes.
type Period struct {
	ID          string
	StartsAt    time.Time
	EndsAt      time.Time
	PlanVersion string
	RunStatus   RunStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type PeriodRepository interface {
	CreatePeriod(p *Period) error
	GetPeriod(id string) (*Period, error)
	LatestPeriod() (*Period, error)
	// PriorPeriod returns the period ending at or before p starts, nil if p is
	// the first one.
	PriorPeriod(p *Period) (*Period, error)
	// TryStartRun is the single-flight run lock: a compare-and-swap of
	// PENDING or FAILED to RUNNING. ErrRunInProgress if already RUNNING,
	// ErrPeriodNotClosed if already COMPLETED.
	TryStartRun(periodID string) error
	FinishRun(periodID string, status RunStatus) error
}
