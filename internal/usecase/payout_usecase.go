package usecase

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/nexaline/comp-service/internal/domain"
	"github.com/nexaline/comp-service/internal/infrastructure/executor"
	publisher "github.com/nexaline/comp-service/internal/infrastructure/kafka"
	"github.com/nexaline/comp-service/internal/infrastructure/metrics"
	payoutdto "github.com/nexaline/comp-service/internal/usecase/dto/payout"
)

type PayoutUsecase interface {
	CreatePayout(input *payoutdto.CreatePayoutInput) (*domain.PayoutRequest, error)
	GetPayout(id string) (*domain.PayoutRequest, error)
	ApprovePayout(id string) (*domain.PayoutRequest, error)
	CancelPayout(id string) (*domain.PayoutRequest, error)
	// HandoffApproved drains APPROVED requests to the executor. Safe to call
	// from a ticker: a request that fails mid-handoff is retried next tick.
	HandoffApproved() error
	// HandleExecutorCallback resolves a PROCESSING request from the
	// executor's webhook.
	HandleExecutorCallback(input *payoutdto.ExecutorCallbackInput) (*domain.PayoutRequest, error)
	// ReconcileStale polls the executor for PROCESSING requests whose
	// callback never arrived.
	ReconcileStale(olderThan time.Duration) error
}

type DefaultPayoutUsecase struct {
	payoutRepo domain.PayoutRepository
	planRepo   domain.PlanRepository
	executor   *executor.Client
	publisher  *publisher.DefaultKafkaPublisher
	metrics    *metrics.CompMetrics

	payoutTopic string
}

func NewDefaultPayoutUsecase(
	payoutRepo domain.PayoutRepository,
	planRepo domain.PlanRepository,
	executorClient *executor.Client,
	kafkaPublisher *publisher.DefaultKafkaPublisher,
	compMetrics *metrics.CompMetrics,
	payoutTopic string) *DefaultPayoutUsecase {

	return &DefaultPayoutUsecase{
		payoutRepo:  payoutRepo,
		planRepo:    planRepo,
		executor:    executorClient,
		publisher:   kafkaPublisher,
		metrics:     compMetrics,
		payoutTopic: payoutTopic,
	}
}

// CreatePayout freezes the fee schedule into the request at creation time.
// The balance check and the insert run in one repository transaction, so two
// concurrent requests cannot both reserve the same funds.
func (uc *DefaultPayoutUsecase) CreatePayout(input *payoutdto.CreatePayoutInput) (*domain.PayoutRequest, error) {
	plan, err := uc.planRepo.LatestPlan()
	if err != nil {
		return nil, err
	}
	if input.Amount.LessThan(plan.PayoutMinimum) {
		return nil, domain.ErrBelowMinimum
	}

	keyGenerator, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}

	fee := input.Amount.Mul(plan.FeePercent(input.Method))
	now := time.Now()
	request := &domain.PayoutRequest{
		ID:              uuid.New().String(),
		DistributorID:   input.DistributorID,
		RequestedAmount: input.Amount,
		FeeAmount:       fee,
		NetAmount:       input.Amount.Sub(fee),
		Method:          input.Method,
		Status:          domain.PayoutPending,
		IdempotencyKey:  keyGenerator(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.payoutRepo.CreateWithBalanceCheck(request); err != nil {
		return nil, err
	}

	slog.Info("payout requested",
		"payout_id", request.ID,
		"distributor_id", request.DistributorID,
		"amount", request.RequestedAmount.String(),
		"net", request.NetAmount.String())
	uc.notifyTransition(request)
	return request, nil
}

func (uc *DefaultPayoutUsecase) GetPayout(id string) (*domain.PayoutRequest, error) {
	return uc.payoutRepo.GetPayout(id)
}

func (uc *DefaultPayoutUsecase) ApprovePayout(id string) (*domain.PayoutRequest, error) {
	return uc.transition(id, domain.PayoutPending, domain.PayoutApproved, nil)
}

// CancelPayout releases the reservation. Only PENDING and APPROVED requests
// can still be cancelled; anything handed to the executor must resolve
// through it.
func (uc *DefaultPayoutUsecase) CancelPayout(id string) (*domain.PayoutRequest, error) {
	request, err := uc.payoutRepo.GetPayout(id)
	if err != nil {
		return nil, err
	}
	if !request.Status.CanTransitionTo(domain.PayoutCancelled) {
		return nil, domain.ErrInvalidTransition
	}
	return uc.transition(id, request.Status, domain.PayoutCancelled, nil)
}

func (uc *DefaultPayoutUsecase) HandoffApproved() error {
	approved, err := uc.payoutRepo.ListByStatus(domain.PayoutApproved)
	if err != nil {
		return err
	}

	for _, request := range approved {
		// move to PROCESSING before calling out: if the submit succeeds but
		// the process dies before the update, the reconciler resolves it by
		// the idempotency key rather than submitting twice
		if _, err := uc.transition(request.ID, domain.PayoutApproved, domain.PayoutProcessing, nil); err != nil {
			slog.Error("failed to mark payout processing", "payout_id", request.ID, "error", err.Error())
			continue
		}

		err := uc.executor.SubmitTransfer(executor.TransferRequest{
			IdempotencyKey: request.IdempotencyKey,
			DistributorID:  request.DistributorID,
			NetAmount:      request.NetAmount,
			Method:         request.Method,
		})
		if err != nil {
			if uc.metrics != nil {
				uc.metrics.ExecutorErrorsTotal.Inc()
			}
			slog.Error("executor handoff failed", "payout_id", request.ID, "error", err.Error())
			continue
		}
		slog.Info("payout handed to executor", "payout_id", request.ID, "idempotency_key", request.IdempotencyKey)
	}
	return nil
}

func (uc *DefaultPayoutUsecase) HandleExecutorCallback(input *payoutdto.ExecutorCallbackInput) (*domain.PayoutRequest, error) {
	request, err := uc.payoutRepo.GetByIdempotencyKey(input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	return uc.resolveProcessing(request, input.Status, input.TransactionRef)
}

func (uc *DefaultPayoutUsecase) ReconcileStale(olderThan time.Duration) error {
	stale, err := uc.payoutRepo.ListStaleProcessing(time.Now().Add(-olderThan))
	if err != nil {
		return err
	}

	for _, request := range stale {
		status, err := uc.executor.GetTransferStatus(request.IdempotencyKey)
		if err != nil {
			if uc.metrics != nil {
				uc.metrics.ExecutorErrorsTotal.Inc()
			}
			slog.Error("executor status poll failed", "payout_id", request.ID, "error", err.Error())
			continue
		}
		if status.Status == "pending" {
			continue
		}
		if _, err := uc.resolveProcessing(request, status.Status, status.TransactionRef); err != nil {
			slog.Error("failed to reconcile payout", "payout_id", request.ID, "error", err.Error())
		}
	}
	return nil
}

func (uc *DefaultPayoutUsecase) resolveProcessing(request *domain.PayoutRequest, outcome, transactionRef string) (*domain.PayoutRequest, error) {
	var target domain.PayoutStatus
	switch outcome {
	case "completed":
		target = domain.PayoutCompleted
	case "failed":
		target = domain.PayoutFailed
	default:
		return nil, domain.ErrInvalidTransition
	}

	var ref *string
	if transactionRef != "" {
		ref = &transactionRef
	}
	return uc.transition(request.ID, domain.PayoutProcessing, target, ref)
}

func (uc *DefaultPayoutUsecase) transition(id string, from, to domain.PayoutStatus, transactionRef *string) (*domain.PayoutRequest, error) {
	if err := uc.payoutRepo.UpdateStatus(id, from, to, transactionRef); err != nil {
		return nil, err
	}
	request, err := uc.payoutRepo.GetPayout(id)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RecordPayoutTransition(string(from), string(to))
		if to == domain.PayoutCompleted || to == domain.PayoutFailed || to == domain.PayoutCancelled {
			amount, _ := request.RequestedAmount.Float64()
			uc.metrics.PayoutAmountTotal.WithLabelValues(string(to)).Add(amount)
		}
	}
	slog.Info("payout transitioned", "payout_id", id, "from", string(from), "to", string(to))
	uc.notifyTransition(request)
	return request, nil
}

func (uc *DefaultPayoutUsecase) notifyTransition(request *domain.PayoutRequest) {
	if uc.publisher == nil {
		return
	}
	event := publisher.PayoutEvent{
		PayoutID:      request.ID,
		DistributorID: request.DistributorID,
		Status:        string(request.Status),
		NetAmount:     request.NetAmount.String(),
		Method:        request.Method,
	}
	if request.TransactionRef != nil {
		event.TransactionRef = *request.TransactionRef
	}
	go func() {
		if err := uc.publisher.PublishPayout(uc.payoutTopic, event); err != nil {
			slog.Error("failed to publish payout event", "error", err.Error())
		}
	}()
}
