package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"

	"storefront/internal/model"
	"storefront/internal/monitor"
	"storefront/internal/notify"
	"storefront/internal/queue"
	"storefront/internal/service/basket"
	"storefront/internal/service/order"
	"storefront/pkg/log"
)

// Outcome is the terminal state of a checkout attempt that did not fail
type Outcome int

const (
	// OutcomeCommitted means the order was created and the basket deleted
	OutcomeCommitted Outcome = iota
	// OutcomeEmptyBasket means the basket had no items left at commit time;
	// nothing was created, deleted, or notified
	OutcomeEmptyBasket
)

// ItemQuantity is one submitted (product, quantity) pair
type ItemQuantity struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"nonnegative"`
}

// Result is the outcome of a checkout attempt
type Result struct {
	Outcome Outcome
	Order   *model.Order
}

// Locker is a single-use mutual exclusion guard around the commit pipeline
type Locker interface {
	TryLock(ctx context.Context, maxRetries int, retryDelay time.Duration) error
	Unlock(ctx context.Context) error
}

// LockFactory builds a locker for the given key
type LockFactory func(key string) Locker

// DeliveryDispatcher notifies the delivery order processor
type DeliveryDispatcher interface {
	Dispatch(ctx context.Context, notification *notify.DeliveryNotification) error
}

// Reserver notifies the order items reserver
type Reserver interface {
	Reserve(ctx context.Context, items map[string]int) error
}

// CheckoutService checkout service interface
type CheckoutService interface {
	// Checkout applies the submitted quantities, commits the basket to an
	// order shipped to address, deletes the basket, and fans out the
	// post-checkout notifications
	Checkout(ctx context.Context, basketID uint64, items []ItemQuantity, address model.Address) (*Result, error)
}

// checkoutService checkout service implementation
type checkoutService struct {
	basketSvc     basket.BasketService
	orderSvc      order.OrderService
	delivery      DeliveryDispatcher
	reserver      Reserver
	publisher     queue.Publisher
	lockFactory   LockFactory
	metrics       *monitor.MetricsCollector
	tracer        *monitor.Tracer
	notifyTimeout time.Duration
}

// NewCheckoutService creates a checkout service. The lock factory, metrics
// and tracer are optional.
func NewCheckoutService(
	basketSvc basket.BasketService,
	orderSvc order.OrderService,
	delivery DeliveryDispatcher,
	reserver Reserver,
	publisher queue.Publisher,
	lockFactory LockFactory,
	metrics *monitor.MetricsCollector,
	tracer *monitor.Tracer,
	notifyTimeout time.Duration,
) CheckoutService {
	if notifyTimeout <= 0 {
		notifyTimeout = 15 * time.Second
	}
	return &checkoutService{
		basketSvc:     basketSvc,
		orderSvc:      orderSvc,
		delivery:      delivery,
		reserver:      reserver,
		publisher:     publisher,
		lockFactory:   lockFactory,
		metrics:       metrics,
		tracer:        tracer,
		notifyTimeout: notifyTimeout,
	}
}

// BuildQuantityUpdate collapses the submitted pairs into a quantity update.
// A product submitted more than once keeps the last quantity.
func BuildQuantityUpdate(items []ItemQuantity) model.QuantityUpdate {
	update := make(model.QuantityUpdate, len(items))
	for _, item := range items {
		update[item.ProductID] = item.Quantity
	}
	return update
}

// Checkout runs the commit pipeline in strict order: quantity update, order
// creation, basket deletion, then notification fan-out. An empty basket at
// commit time is recoverable and short-circuits the rest.
func (s *checkoutService) Checkout(ctx context.Context, basketID uint64, items []ItemQuantity, address model.Address) (*Result, error) {
	start := time.Now()

	if s.tracer != nil {
		var span oteltrace.Span
		ctx, span = s.tracer.StartSpan(ctx, "checkout.execute")
		defer span.End()
	}

	if s.lockFactory != nil {
		guard := s.lockFactory(fmt.Sprintf("checkout:basket:%d", basketID))
		if err := guard.TryLock(ctx, 3, 100*time.Millisecond); err != nil {
			s.record("error", start)
			return nil, fmt.Errorf("basket %d is already being checked out: %w", basketID, err)
		}
		defer func() {
			if err := guard.Unlock(context.WithoutCancel(ctx)); err != nil {
				log.WithFields(map[string]interface{}{
					"basket_id": basketID,
					"error":     err.Error(),
				}).Warn("Failed to release checkout lock")
			}
		}()
	}

	update := BuildQuantityUpdate(items)

	if err := s.basketSvc.SetQuantities(ctx, basketID, update); err != nil {
		s.record("error", start)
		return nil, fmt.Errorf("failed to apply quantity update: %w", err)
	}

	committed, err := s.orderSvc.CreateOrder(ctx, basketID, address)
	if err != nil {
		if errors.Is(err, order.ErrEmptyBasketOnCheckout) {
			log.WithFields(map[string]interface{}{
				"basket_id": basketID,
			}).Warn("Checkout attempted against an empty basket")
			s.record("empty_basket", start)
			return &Result{Outcome: OutcomeEmptyBasket}, nil
		}
		s.record("error", start)
		return nil, err
	}

	if err := s.basketSvc.DeleteBasket(ctx, basketID); err != nil {
		s.record("error", start)
		return nil, fmt.Errorf("failed to delete basket after commit: %w", err)
	}

	if err := s.fanOut(ctx, committed, update, address); err != nil {
		s.record("error", start)
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"order_no":  committed.OrderNo,
		"basket_id": basketID,
		"total":     committed.Total,
	}).Info("Checkout committed")

	s.record("committed", start)
	return &Result{Outcome: OutcomeCommitted, Order: committed}, nil
}

// fanOut notifies the downstream services about the committed order. The
// delivery and reservation channels propagate failure; the queue channel
// never does.
func (s *checkoutService) fanOut(ctx context.Context, committed *model.Order, update model.QuantityUpdate, address model.Address) error {
	if err := s.dispatchDelivery(ctx, committed, update, address); err != nil {
		return fmt.Errorf("delivery notification failed: %w", err)
	}

	s.publishQueue(ctx, update)

	if err := s.reserve(ctx, update); err != nil {
		return fmt.Errorf("reservation notification failed: %w", err)
	}

	return nil
}

// dispatchDelivery posts the delivery notification
func (s *checkoutService) dispatchDelivery(ctx context.Context, committed *model.Order, update model.QuantityUpdate, address model.Address) error {
	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	start := time.Now()
	err := s.delivery.Dispatch(notifyCtx, &notify.DeliveryNotification{
		ID:              uuid.NewString(),
		ShippingAddress: address.String(),
		ListOfItems:     update,
		FinalPrice:      committed.GetTotalDollars(),
	})
	s.recordNotification("delivery", start, err)
	return err
}

// publishQueue publishes the quantity mapping to the service bus queue.
// Failure is logged and swallowed so a broker outage cannot fail checkout.
func (s *checkoutService) publishQueue(ctx context.Context, update model.QuantityUpdate) {
	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	start := time.Now()
	body, err := json.Marshal(update)
	if err == nil {
		err = s.publisher.Publish(notifyCtx, body)
	}
	s.recordNotification("queue", start, err)

	if err != nil {
		log.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Warn("Queue publish failed, continuing checkout")
	}
}

// reserve posts the reservation notification
func (s *checkoutService) reserve(ctx context.Context, update model.QuantityUpdate) error {
	notifyCtx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	start := time.Now()
	err := s.reserver.Reserve(notifyCtx, update)
	s.recordNotification("reservation", start, err)
	return err
}

// record records the checkout outcome metric
func (s *checkoutService) record(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordCheckout(outcome, time.Since(start))
	}
}

// recordNotification records a fan-out channel metric
func (s *checkoutService) recordNotification(channel string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	s.metrics.RecordNotification(channel, status, time.Since(start))
}
