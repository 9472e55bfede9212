package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
)

func createTestPeriod(t *testing.T, repo *DefaultPeriodRepository, id string, start, end time.Time) {
	t.Helper()
	err := repo.CreatePeriod(&domain.Period{
		ID:          id,
		StartsAt:    start,
		EndsAt:      end,
		PlanVersion: "v1",
		RunStatus:   domain.RunPending,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("CreatePeriod failed: %v", err)
	}
}

func TestCreatePeriod_RejectsOverlap(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultPeriodRepository(db)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	createTestPeriod(t, repo, "p1", start, end)

	// a window straddling the boundary intersects p1
	err := repo.CreatePeriod(&domain.Period{
		ID:          "p2",
		StartsAt:    end.Add(-24 * time.Hour),
		EndsAt:      end.AddDate(0, 0, 7),
		PlanVersion: "v1",
		RunStatus:   domain.RunPending,
		CreatedAt:   time.Now(),
	})
	if !errors.Is(err, domain.ErrPeriodOverlap) {
		t.Errorf("Expected ErrPeriodOverlap, got %v", err)
	}

	// windows sharing only the boundary instant do not overlap
	createTestPeriod(t, repo, "p3", end, end.AddDate(0, 0, 7))
}

func TestTryStartRun_Lock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultPeriodRepository(db)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	createTestPeriod(t, repo, "p1", start, start.AddDate(0, 0, 7))

	if err := repo.TryStartRun("p1"); err != nil {
		t.Fatalf("TryStartRun failed: %v", err)
	}

	err := repo.TryStartRun("p1")
	if !errors.Is(err, domain.ErrRunInProgress) {
		t.Errorf("Expected ErrRunInProgress, got %v", err)
	}
}

func TestTryStartRun_AfterCompletion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultPeriodRepository(db)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	createTestPeriod(t, repo, "p1", start, start.AddDate(0, 0, 7))

	if err := repo.TryStartRun("p1"); err != nil {
		t.Fatalf("TryStartRun failed: %v", err)
	}
	if err := repo.FinishRun("p1", domain.RunCompleted); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	err := repo.TryStartRun("p1")
	if !errors.Is(err, domain.ErrPeriodNotClosed) {
		t.Errorf("Expected ErrPeriodNotClosed for a completed period, got %v", err)
	}

	period, err := repo.GetPeriod("p1")
	if err != nil {
		t.Fatalf("GetPeriod failed: %v", err)
	}
	if period.CompletedAt == nil {
		t.Error("Expected CompletedAt to be set after a completed run")
	}
}

func TestTryStartRun_RetryAfterFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultPeriodRepository(db)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	createTestPeriod(t, repo, "p1", start, start.AddDate(0, 0, 7))

	if err := repo.TryStartRun("p1"); err != nil {
		t.Fatalf("TryStartRun failed: %v", err)
	}
	if err := repo.FinishRun("p1", domain.RunFailed); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	// failed runs may be retried
	if err := repo.TryStartRun("p1"); err != nil {
		t.Errorf("Expected retry of a failed period to succeed, got %v", err)
	}
}

func TestPriorPeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultPeriodRepository(db)

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	createTestPeriod(t, repo, "p1", start, start.AddDate(0, 0, 7))
	createTestPeriod(t, repo, "p2", start.AddDate(0, 0, 7), start.AddDate(0, 0, 14))

	p2, err := repo.GetPeriod("p2")
	if err != nil {
		t.Fatalf("GetPeriod failed: %v", err)
	}
	prior, err := repo.PriorPeriod(p2)
	if err != nil {
		t.Fatalf("PriorPeriod failed: %v", err)
	}
	if prior == nil || prior.ID != "p1" {
		t.Errorf("Expected p1 as prior period, got %v", prior)
	}

	p1, err := repo.GetPeriod("p1")
	if err != nil {
		t.Fatalf("GetPeriod failed: %v", err)
	}
	first, err := repo.PriorPeriod(p1)
	if err != nil {
		t.Fatalf("PriorPeriod failed: %v", err)
	}
	if first != nil {
		t.Errorf("Expected no prior period for the first one, got %v", first)
	}
}
