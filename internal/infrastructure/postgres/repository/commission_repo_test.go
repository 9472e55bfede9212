package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/nexaline/comp-service/internal/domain"
	"github.com/shopspring/decimal"
)

func lineItem(id, distributorID, periodID string, itemType domain.CommissionType, amount string, sourceOrderID *string) *domain.CommissionLineItem {
	return &domain.CommissionLineItem{
		ID:                  id,
		DistributorID:       distributorID,
		PeriodID:            periodID,
		Type:                itemType,
		Amount:              decimal.RequireFromString(amount),
		SourceDistributorID: distributorID,
		SourceOrderID:       sourceOrderID,
		CreatedAt:           time.Now(),
	}
}

func TestAppendIfAbsent_Dedupe(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultCommissionRepository(db)

	orderID := "order-1"
	item := lineItem("li-1", "d1", "p1", domain.UnilevelType(1), "12.50", &orderID)
	inserted, err := repo.AppendIfAbsent(item)
	if err != nil {
		t.Fatalf("AppendIfAbsent failed: %v", err)
	}
	if !inserted {
		t.Fatal("Expected first append to insert")
	}

	// same tuple, fresh row id: a rerun of the same period
	duplicate := lineItem("li-2", "d1", "p1", domain.UnilevelType(1), "12.50", &orderID)
	inserted, err = repo.AppendIfAbsent(duplicate)
	if err != nil {
		t.Fatalf("AppendIfAbsent failed: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate tuple to be skipped")
	}

	sum, err := repo.SumByDistributor("d1")
	if err != nil {
		t.Fatalf("SumByDistributor failed: %v", err)
	}
	if !sum.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("Expected sum 12.50, got %s", sum.String())
	}
}

func TestAppendIfAbsent_NoOrderSource(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultCommissionRepository(db)

	inserted, err := repo.AppendIfAbsent(lineItem("li-1", "d1", "p1", domain.CommissionBinary, "60", nil))
	if err != nil {
		t.Fatalf("AppendIfAbsent failed: %v", err)
	}
	if !inserted {
		t.Fatal("Expected first append to insert")
	}

	// absent order ids must still collide with each other
	inserted, err = repo.AppendIfAbsent(lineItem("li-2", "d1", "p1", domain.CommissionBinary, "60", nil))
	if err != nil {
		t.Fatalf("AppendIfAbsent failed: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate binary item without order source to be skipped")
	}

	items, _, err := repo.ListByDistributor("d1", 1, 10)
	if err != nil {
		t.Fatalf("ListByDistributor failed: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(items))
	}
	if items[0].SourceOrderID != nil {
		t.Errorf("Expected nil SourceOrderID, got %v", *items[0].SourceOrderID)
	}
}

func TestCountFastStartsInWindow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultCommissionRepository(db)

	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 24 * time.Hour, 48 * time.Hour} {
		orderID := string(rune('a' + i))
		item := lineItem(orderID, "sponsor", "p1", domain.CommissionFastStart, "25", &orderID)
		item.SourceDistributorID = orderID
		item.CreatedAt = base.Add(offset)
		if _, err := repo.AppendIfAbsent(item); err != nil {
			t.Fatalf("AppendIfAbsent failed: %v", err)
		}
	}

	// window is (from, to]: the event at the lower bound is excluded, the
	// one at the upper bound counts
	count, err := repo.CountFastStartsInWindow("sponsor", base, base.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("CountFastStartsInWindow failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 fast starts in window, got %d", count)
	}
}

func TestListByDistributor_HonorsLargeLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultCommissionRepository(db)

	for i := 0; i < 60; i++ {
		orderID := fmt.Sprintf("order-%d", i)
		item := lineItem(fmt.Sprintf("li-%d", i), "d1", "p1", domain.UnilevelType(1), "1", &orderID)
		if _, err := repo.AppendIfAbsent(item); err != nil {
			t.Fatalf("AppendIfAbsent failed: %v", err)
		}
	}

	items, total, err := repo.ListByDistributor("d1", 1, 200)
	if err != nil {
		t.Fatalf("ListByDistributor failed: %v", err)
	}
	if total != 60 {
		t.Errorf("Expected total 60, got %d", total)
	}
	if len(items) != 60 {
		t.Errorf("Expected a 200-row page to hold all 60 items, got %d", len(items))
	}
}

func TestSaveCarryovers_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDefaultCommissionRepository(db)

	first := []*domain.BinaryCarryover{{
		DistributorID: "d1",
		PeriodID:      "p1",
		Leg:           domain.LegLeft,
		Volume:        decimal.RequireFromString("400"),
		CreatedAt:     time.Now(),
	}}
	if err := repo.SaveCarryovers(first); err != nil {
		t.Fatalf("SaveCarryovers failed: %v", err)
	}

	// a rerun recomputes the same key with a fresh value
	first[0].Volume = decimal.RequireFromString("350")
	if err := repo.SaveCarryovers(first); err != nil {
		t.Fatalf("SaveCarryovers upsert failed: %v", err)
	}

	rows, err := repo.GetCarryovers("p1")
	if err != nil {
		t.Fatalf("GetCarryovers failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 carryover, got %d", len(rows))
	}
	if !rows[0].Volume.Equal(decimal.RequireFromString("350")) {
		t.Errorf("Expected volume 350 after upsert, got %s", rows[0].Volume.String())
	}
}
