package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-backend/internal/client"
	"storefront-backend/internal/dto"
	"storefront-backend/internal/mailer"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
)

type OrderService interface {
	FinalizeOrder(ctx context.Context, req dto.FinalizeOrderRequest) (*dto.FinalizeOrderResponse, error)
	ChangeStatus(ctx context.Context, orderID string, req dto.StatusChangeRequest) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
}

// Notifier sends lifecycle emails. Failures are logged by the service and
// never fail the calling operation.
type Notifier interface {
	SendOrderEvent(kind mailer.EventKind, order *model.Order, items []model.OrderItem) error
	SendAdminNewOrder(order *model.Order, items []model.OrderItem) error
}

type Options struct {
	ExpressSurcharge decimal.Decimal
	DefaultCountry   string
	LookupTimeout    time.Duration
}

type orderServiceImpl struct {
	orderRepo  repository.OrderRepository
	reconciler *reconciler
	notifier   Notifier
	opts       Options
	log        *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	payments client.PaymentClient,
	notifier Notifier,
	opts Options,
	log *zap.Logger,
) OrderService {
	if opts.LookupTimeout == 0 {
		opts.LookupTimeout = 10 * time.Second
	}
	return &orderServiceImpl{
		orderRepo: orderRepo,
		reconciler: &reconciler{
			payments:       payments,
			defaultCountry: opts.DefaultCountry,
			lookupTimeout:  opts.LookupTimeout,
			log:            log,
		},
		notifier: notifier,
		opts:     opts,
		log:      log,
	}
}

func (s *orderServiceImpl) FinalizeOrder(ctx context.Context, req dto.FinalizeOrderRequest) (*dto.FinalizeOrderResponse, error) {
	rec, err := s.reconciler.Reconcile(ctx, req)
	if err != nil {
		return nil, err
	}

	// Idempotency guard: a payment session maps to at most one order. This
	// read is an optimization; the unique index on payment_session_id is the
	// real backstop for concurrent submissions.
	existing, err := s.orderRepo.FindByPaymentSessionID(ctx, req.PaymentSessionID)
	if err == nil {
		s.log.Info("payment session already finalized, returning existing order",
			zap.String("payment_session_id", req.PaymentSessionID),
			zap.String("order_number", existing.OrderNumber))
		return finalizeResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lookup by payment session: %v", ErrPersistence, err)
	}

	pricing := ComputePricing(rec.Items, rec.DeliveryOption, s.opts.ExpressSurcharge)

	order := s.buildOrder(req.PaymentSessionID, rec, pricing)
	if err := s.orderRepo.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent finalize for the same
			// session; the other writer's order is the order.
			winner, ferr := s.orderRepo.FindByPaymentSessionID(ctx, req.PaymentSessionID)
			if ferr == nil {
				return finalizeResponse(winner), nil
			}
		}
		return nil, fmt.Errorf("%w: create order: %v", ErrPersistence, err)
	}

	items := buildOrderItems(order.ID, rec.Items)
	if err := s.orderRepo.CreateItems(ctx, items); err != nil {
		// The header is durable and the payment is already captured, so the
		// order stands. Missing line detail is recoverable by support staff;
		// a missing order header is not.
		s.log.Error("order items failed to persist, order header kept",
			zap.String("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}

	emailItems := make([]model.OrderItem, len(items))
	for i, item := range items {
		emailItems[i] = *item
	}

	s.notify(mailer.EventReceived, order, emailItems)
	if err := s.notifier.SendAdminNewOrder(order, emailItems); err != nil {
		s.log.Error("admin new-order notification failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}

	return finalizeResponse(order), nil
}

func (s *orderServiceImpl) ChangeStatus(ctx context.Context, orderID string, req dto.StatusChangeRequest) (*model.Order, error) {
	newStatus := model.Status(req.NewStatus)
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.NewStatus)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: load order: %v", ErrPersistence, err)
	}

	updates := map[string]interface{}{"status": newStatus}

	if newStatus == model.StatusDispatched {
		tracking := strings.TrimSpace(req.TrackingNumber)
		if tracking == "" {
			return nil, ErrMissingTrackingNumber
		}
		if order.TrackingNumber == "" {
			updates["tracking_number"] = tracking
			order.TrackingNumber = tracking
		} else if order.TrackingNumber != tracking {
			// Tracking numbers are immutable once set.
			s.log.Warn("ignoring attempt to change tracking number",
				zap.String("order_number", order.OrderNumber),
				zap.String("existing", order.TrackingNumber),
				zap.String("ignored", tracking))
		}
		if order.DispatchedAt == nil {
			now := time.Now()
			updates["dispatched_at"] = now
			order.DispatchedAt = &now
		}
	}

	if newStatus.IsBackwardFrom(order.Status) {
		// Allowed on purpose: admins use this to correct mistakes. Logged so
		// the anomaly is visible.
		s.log.Warn("backward status transition",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", string(order.Status)),
			zap.String("to", string(newStatus)))
	}

	if err := s.orderRepo.UpdateStatusFields(ctx, orderID, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: update status: %v", ErrPersistence, err)
	}
	order.Status = newStatus

	if kind, ok := eventForStatus(newStatus); ok {
		s.notify(kind, order, order.Items)
	}

	return order, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: load order: %v", ErrPersistence, err)
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrPersistence, err)
	}
	return orders, nil
}

func (s *orderServiceImpl) buildOrder(paymentSessionID string, rec *ReconciledOrder, pricing PriceBreakdown) *model.Order {
	order := &model.Order{
		ID:               uuid.NewString(),
		OrderNumber:      newOrderNumber(),
		PaymentSessionID: paymentSessionID,
		CustomerName:     strings.TrimSpace(rec.Customer.FirstName + " " + rec.Customer.LastName),
		CustomerEmail:    rec.Customer.Email,
		CustomerPhone:    rec.Customer.Phone,
		DeliveryOption:   rec.DeliveryOption,
		TotalAmount:      pricing.Total.Round(2),
		Status:           model.StatusPending,
	}

	if addr := rec.Customer.Shipping; addr != nil {
		order.ShippingLine1 = addr.Line1
		order.ShippingLine2 = addr.Line2
		order.ShippingCity = addr.City
		order.ShippingPostcode = addr.Postcode
		order.ShippingCountry = addr.Country
	}
	if addr := rec.Customer.Billing; addr != nil {
		order.BillingLine1 = addr.Line1
		order.BillingLine2 = addr.Line2
		order.BillingCity = addr.City
		order.BillingPostcode = addr.Postcode
		order.BillingCountry = addr.Country
	}

	return order
}

func buildOrderItems(orderID string, items []dto.Item) []*model.OrderItem {
	out := make([]*model.OrderItem, len(items))
	for i, item := range items {
		unit := decimal.NewFromFloat(item.CurrentPrice)
		qty := decimal.NewFromInt(int64(item.Quantity))
		out[i] = &model.OrderItem{
			OrderID:     orderID,
			Sku:         item.Sku,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   unit.Round(2),
			TotalPrice:  unit.Mul(qty).Round(2),
			Size:        item.Size,
			Color:       item.Color,
			Depth:       item.Depth,
			Firmness:    item.Firmness,
			Length:      item.Length,
			Width:       item.Width,
			Height:      item.Height,
			Weight:      item.Weight,
			Material:    item.Material,
			Brand:       item.Brand,
		}
	}
	return out
}

func (s *orderServiceImpl) notify(kind mailer.EventKind, order *model.Order, items []model.OrderItem) {
	if err := s.notifier.SendOrderEvent(kind, order, items); err != nil {
		s.log.Error("order notification failed",
			zap.String("order_number", order.OrderNumber),
			zap.String("event", string(kind)),
			zap.Error(err))
	}
}

func eventForStatus(status model.Status) (mailer.EventKind, bool) {
	switch status {
	case model.StatusProcessing:
		return mailer.EventConfirmed, true
	case model.StatusDispatched:
		return mailer.EventDispatched, true
	case model.StatusDelivered:
		return mailer.EventDelivered, true
	case model.StatusCancelled:
		return mailer.EventCancelled, true
	default:
		return "", false
	}
}

func finalizeResponse(order *model.Order) *dto.FinalizeOrderResponse {
	return &dto.FinalizeOrderResponse{
		Success:     true,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}
}

func newOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}
