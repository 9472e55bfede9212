package usecase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/executor"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/repository"
	payoutdto "github.com/nexaline/comp-service/internal/usecase/dto/payout"
	"gorm.io/gorm"
)

type payoutFixture struct {
	db             *gorm.DB
	payoutRepo     *repository.DefaultPayoutRepository
	commissionRepo *repository.DefaultCommissionRepository
	uc             PayoutUsecase
}

func setupPayoutUsecase(t *testing.T, executorURL string) *payoutFixture {
	t.Helper()

	db := setupTestDB(t)
	planRepo := repository.NewDefaultPlanRepository(db)
	if err := planRepo.SavePlan(testPlan()); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}

	treeRepo := repository.NewDefaultTreeRepository(db)
	if err := treeRepo.CreateDistributor(testDistributor("d1", nil, nil, nil)); err != nil {
		t.Fatalf("CreateDistributor failed: %v", err)
	}

	f := &payoutFixture{
		db:             db,
		payoutRepo:     repository.NewDefaultPayoutRepository(db),
		commissionRepo: repository.NewDefaultCommissionRepository(db),
	}
	f.uc = NewDefaultPayoutUsecase(
		f.payoutRepo, planRepo, executor.NewClient(executorURL), nil, nil, "payout-events")
	return f
}

func (f *payoutFixture) earn(t *testing.T, distributorID string, amounts ...string) {
	t.Helper()
	for i, amount := range amounts {
		item := &domain.CommissionLineItem{
			ID:                  uuid.New().String(),
			DistributorID:       distributorID,
			PeriodID:            "p1",
			Type:                domain.UnilevelType(1),
			Amount:              dec(amount),
			SourceDistributorID: fmt.Sprintf("src-%d", i),
			CreatedAt:           time.Now(),
		}
		if _, err := f.commissionRepo.AppendIfAbsent(item); err != nil {
			t.Fatalf("AppendIfAbsent failed: %v", err)
		}
	}
}

func (f *payoutFixture) create(t *testing.T, amount, method string) *domain.PayoutRequest {
	t.Helper()
	request, err := f.uc.CreatePayout(&payoutdto.CreatePayoutInput{
		DistributorID: "d1",
		Amount:        dec(amount),
		Method:        method,
	})
	if err != nil {
		t.Fatalf("CreatePayout failed: %v", err)
	}
	return request
}

func TestCreatePayout_FreezesFee(t *testing.T) {
	f := setupPayoutUsecase(t, "")
	f.earn(t, "d1", "200")

	request := f.create(t, "100", "bank")
	if request.Status != domain.PayoutPending {
		t.Errorf("status = %s, want PENDING", request.Status)
	}
	if !request.FeeAmount.Equal(dec("2.5")) {
		t.Errorf("fee = %s, want 2.5", request.FeeAmount)
	}
	if !request.NetAmount.Equal(dec("97.5")) {
		t.Errorf("net = %s, want 97.5", request.NetAmount)
	}
	if request.IdempotencyKey == "" {
		t.Error("idempotency key not assigned")
	}

	crypto := f.create(t, "100", "crypto")
	if !crypto.FeeAmount.Equal(dec("1")) {
		t.Errorf("crypto fee = %s, want 1", crypto.FeeAmount)
	}
}

func TestCreatePayout_BelowMinimum(t *testing.T) {
	f := setupPayoutUsecase(t, "")
	f.earn(t, "d1", "200")

	_, err := f.uc.CreatePayout(&payoutdto.CreatePayoutInput{
		DistributorID: "d1",
		Amount:        dec("10"),
		Method:        "bank",
	})
	if err != domain.ErrBelowMinimum {
		t.Fatalf("err = %v, want ErrBelowMinimum", err)
	}
}

func TestCreatePayout_ReservesBalance(t *testing.T) {
	f := setupPayoutUsecase(t, "")
	f.earn(t, "d1", "120", "80")

	first := f.create(t, "150", "bank")

	// 150 of the 200 is reserved while the first request is open
	_, err := f.uc.CreatePayout(&payoutdto.CreatePayoutInput{
		DistributorID: "d1",
		Amount:        dec("100"),
		Method:        "bank",
	})
	if err != domain.ErrInsufficientBalance {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	if _, err := f.uc.CancelPayout(first.ID); err != nil {
		t.Fatalf("CancelPayout failed: %v", err)
	}
	f.create(t, "100", "bank")
}

func TestPayoutTransitions(t *testing.T) {
	f := setupPayoutUsecase(t, "")
	f.earn(t, "d1", "200")
	request := f.create(t, "100", "bank")

	approved, err := f.uc.ApprovePayout(request.ID)
	if err != nil {
		t.Fatalf("ApprovePayout failed: %v", err)
	}
	if approved.Status != domain.PayoutApproved {
		t.Errorf("status = %s, want APPROVED", approved.Status)
	}

	cancelled, err := f.uc.CancelPayout(request.ID)
	if err != nil {
		t.Fatalf("CancelPayout failed: %v", err)
	}
	if cancelled.Status != domain.PayoutCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}

	if _, err := f.uc.ApprovePayout(request.ID); err != domain.ErrInvalidTransition {
		t.Errorf("approve after cancel: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.uc.CancelPayout(request.ID); err != domain.ErrInvalidTransition {
		t.Errorf("cancel after cancel: err = %v, want ErrInvalidTransition", err)
	}
}

func TestHandoffApproved(t *testing.T) {
	var submitted []executor.TransferRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req executor.TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad transfer body: %v", err)
		}
		submitted = append(submitted, req)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	f := setupPayoutUsecase(t, server.URL)
	f.earn(t, "d1", "200")
	request := f.create(t, "100", "bank")
	if _, err := f.uc.ApprovePayout(request.ID); err != nil {
		t.Fatalf("ApprovePayout failed: %v", err)
	}

	if err := f.uc.HandoffApproved(); err != nil {
		t.Fatalf("HandoffApproved failed: %v", err)
	}

	got, err := f.uc.GetPayout(request.ID)
	if err != nil {
		t.Fatalf("GetPayout failed: %v", err)
	}
	if got.Status != domain.PayoutProcessing {
		t.Errorf("status = %s, want PROCESSING", got.Status)
	}
	if len(submitted) != 1 {
		t.Fatalf("executor received %d transfers, want 1", len(submitted))
	}
	if submitted[0].IdempotencyKey != request.IdempotencyKey {
		t.Errorf("submitted key = %q, want %q", submitted[0].IdempotencyKey, request.IdempotencyKey)
	}
	if !submitted[0].NetAmount.Equal(dec("97.5")) {
		t.Errorf("submitted net = %s, want 97.5", submitted[0].NetAmount)
	}

	// a second tick finds nothing in APPROVED
	if err := f.uc.HandoffApproved(); err != nil {
		t.Fatalf("second HandoffApproved failed: %v", err)
	}
	if len(submitted) != 1 {
		t.Errorf("executor received %d transfers after second tick, want 1", len(submitted))
	}
}

func TestHandleExecutorCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	f := setupPayoutUsecase(t, server.URL)
	f.earn(t, "d1", "200")
	request := f.create(t, "100", "bank")
	if _, err := f.uc.ApprovePayout(request.ID); err != nil {
		t.Fatalf("ApprovePayout failed: %v", err)
	}
	if err := f.uc.HandoffApproved(); err != nil {
		t.Fatalf("HandoffApproved failed: %v", err)
	}

	resolved, err := f.uc.HandleExecutorCallback(&payoutdto.ExecutorCallbackInput{
		IdempotencyKey: request.IdempotencyKey,
		Status:         "completed",
		TransactionRef: "tx-123",
	})
	if err != nil {
		t.Fatalf("HandleExecutorCallback failed: %v", err)
	}
	if resolved.Status != domain.PayoutCompleted {
		t.Errorf("status = %s, want COMPLETED", resolved.Status)
	}
	if resolved.TransactionRef == nil || *resolved.TransactionRef != "tx-123" {
		t.Errorf("transaction ref = %v, want tx-123", resolved.TransactionRef)
	}

	// terminal states never move again
	_, err = f.uc.HandleExecutorCallback(&payoutdto.ExecutorCallbackInput{
		IdempotencyKey: request.IdempotencyKey,
		Status:         "failed",
	})
	if err != domain.ErrInvalidTransition {
		t.Errorf("callback on completed payout: err = %v, want ErrInvalidTransition", err)
	}

	_, err = f.uc.HandleExecutorCallback(&payoutdto.ExecutorCallbackInput{
		IdempotencyKey: "no-such-key",
		Status:         "completed",
	})
	if err != domain.ErrPayoutNotFound {
		t.Errorf("callback with unknown key: err = %v, want ErrPayoutNotFound", err)
	}
}

func TestReconcileStale(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transfers", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("/transfers/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(executor.TransferStatus{
			IdempotencyKey: strings.TrimPrefix(r.URL.Path, "/transfers/"),
			Status:         "completed",
			TransactionRef: "tx-rec",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := setupPayoutUsecase(t, server.URL)
	f.earn(t, "d1", "200")
	request := f.create(t, "100", "bank")
	if _, err := f.uc.ApprovePayout(request.ID); err != nil {
		t.Fatalf("ApprovePayout failed: %v", err)
	}
	if err := f.uc.HandoffApproved(); err != nil {
		t.Fatalf("HandoffApproved failed: %v", err)
	}

	// fresh PROCESSING requests are left for the callback
	if err := f.uc.ReconcileStale(30 * time.Minute); err != nil {
		t.Fatalf("ReconcileStale failed: %v", err)
	}
	got, err := f.uc.GetPayout(request.ID)
	if err != nil {
		t.Fatalf("GetPayout failed: %v", err)
	}
	if got.Status != domain.PayoutProcessing {
		t.Errorf("status = %s, want PROCESSING before backdating", got.Status)
	}

	err = f.db.Exec("UPDATE payout_requests SET updated_at = ? WHERE id = ?",
		time.Now().Add(-time.Hour), request.ID).Error
	if err != nil {
		t.Fatalf("backdating failed: %v", err)
	}

	if err := f.uc.ReconcileStale(30 * time.Minute); err != nil {
		t.Fatalf("ReconcileStale failed: %v", err)
	}
	got, err = f.uc.GetPayout(request.ID)
	if err != nil {
		t.Fatalf("GetPayout failed: %v", err)
	}
	if got.Status != domain.PayoutCompleted {
		t.Errorf("status = %s, want COMPLETED after reconcile", got.Status)
	}
	if got.TransactionRef == nil || *got.TransactionRef != "tx-rec" {
		t.Errorf("transaction ref = %v, want tx-rec", got.TransactionRef)
	}
}
