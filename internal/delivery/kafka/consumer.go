package kafka

import (
	"encoding/json"
	"log/slog"

	"github.com/nexaline/comp-service/internal/domain"
	publisher "github.com/nexaline/comp-service/internal/infrastructure/kafka"
	"github.com/nexaline/comp-service/internal/usecase"
	enrollmentdto "github.com/nexaline/comp-service/internal/usecase/dto/enrollment"
	volumedto "github.com/nexaline/comp-service/internal/usecase/dto/volume"
	"github.com/shopspring/decimal"
)

// EventConsumer projects the inbound streams into the engine: order capture
// and refund events into the volume ledger, enrollment events into the tree.
type EventConsumer struct {
	subscriber domain.SubscriberPort
	treeUc     usecase.TreeUsecase
	volumeUc   usecase.VolumeUsecase

	orderTopic      string
	enrollmentTopic string
	groupID         string
}

func NewEventConsumer(
	subscriber domain.SubscriberPort,
	treeUc usecase.TreeUsecase,
	volumeUc usecase.VolumeUsecase,
	orderTopic, enrollmentTopic, groupID string) *EventConsumer {

	return &EventConsumer{
		subscriber:      subscriber,
		treeUc:          treeUc,
		volumeUc:        volumeUc,
		orderTopic:      orderTopic,
		enrollmentTopic: enrollmentTopic,
		groupID:         groupID,
	}
}

// Start launches one goroutine per inbound topic.
func (c *EventConsumer) Start() error {
	orders, err := c.subscriber.Subscribe(c.orderTopic, c.groupID)
	if err != nil {
		return err
	}
	enrollments, err := c.subscriber.Subscribe(c.enrollmentTopic, c.groupID)
	if err != nil {
		return err
	}

	go c.consumeOrders(orders)
	go c.consumeEnrollments(enrollments)
	return nil
}

func (c *EventConsumer) consumeOrders(messages <-chan domain.Message) {
	for message := range messages {
		var event publisher.OrderCaptureEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			slog.Error("malformed order event", "error", err.Error())
			continue
		}

		if event.Refund {
			if _, err := c.volumeUc.ReverseOrder(event.OrderID); err != nil {
				c.logConsumeError("order refund", event.OrderID, err)
			}
			continue
		}

		amount, err := decimal.NewFromString(event.Amount)
		if err != nil {
			slog.Error("malformed order amount", "order_id", event.OrderID, "amount", event.Amount)
			continue
		}
		_, err = c.volumeUc.RecordOrder(&volumedto.RecordOrderInput{
			OrderID:      event.OrderID,
			PurchaserID:  event.PurchaserID,
			Amount:       amount,
			IsFirstOrder: event.IsFirstOrder,
			CapturedAt:   event.CapturedAt,
		})
		if err != nil {
			c.logConsumeError("order capture", event.OrderID, err)
		}
	}
}

func (c *EventConsumer) consumeEnrollments(messages <-chan domain.Message) {
	for message := range messages {
		var event publisher.EnrollmentEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			slog.Error("malformed enrollment event", "error", err.Error())
			continue
		}

		input := &enrollmentdto.EnrollInput{
			DistributorID:     event.DistributorID,
			SponsorID:         event.SponsorID,
			PlacementParentID: event.PlacementParent,
			PlacementLeg:      domain.BinaryLeg(event.PlacementLeg),
			EnrolledAt:        event.EnrolledAt,
		}
		if _, err := c.treeUc.Enroll(input); err != nil {
			c.logConsumeError("enrollment", event.DistributorID, err)
		}
	}
}

func (c *EventConsumer) logConsumeError(kind, id string, err error) {
	// duplicates are expected under at-least-once delivery
	switch err {
	case domain.ErrDuplicateOrder, domain.ErrAlreadyReversed:
		slog.Info("event already applied", "kind", kind, "id", id)
	default:
		slog.Error("failed to apply event", "kind", kind, "id", id, "error", err.Error())
	}
}
