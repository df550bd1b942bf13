package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-backend/internal/dto"
	"storefront-backend/internal/mailer"
	"storefront-backend/internal/model"
)

func newTestService(repo *mockOrderRepo, payments *mockPaymentClient, notifier *mockNotifier) OrderService {
	return NewOrderService(repo, payments, notifier, Options{
		ExpressSurcharge: decimal.RequireFromString("15.00"),
		DefaultCountry:   "GB",
	}, zap.NewNop())
}

func validRequest() dto.FinalizeOrderRequest {
	return dto.FinalizeOrderRequest{
		PaymentSessionID: "sess_1",
		Customer: &dto.Customer{
			FirstName: "A",
			LastName:  "B",
			Email:     "a@b.com",
		},
		Items: []dto.Item{
			{Name: "Mattress", CurrentPrice: 500, Quantity: 1},
		},
		DeliveryOption: "standard",
	}
}

func TestFinalizeOrder_CreatesOrder(t *testing.T) {
	repo := newMockOrderRepo()
	notifier := &mockNotifier{}
	svc := newTestService(repo, &mockPaymentClient{}, notifier)

	resp, err := svc.FinalizeOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.OrderID)
	assert.NotEmpty(t, resp.OrderNumber)

	require.Len(t, repo.created, 1)
	order := repo.created[0]
	assert.Equal(t, "sess_1", order.PaymentSessionID)
	assert.Equal(t, "A B", order.CustomerName)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("500.00")),
		"total was %s", order.TotalAmount)

	require.Len(t, repo.createdItems, 1)
	items := repo.createdItems[0]
	require.Len(t, items, 1)
	assert.Equal(t, "Mattress", items[0].ProductName)
	assert.True(t, items[0].TotalPrice.Equal(decimal.RequireFromString("500.00")))

	require.Len(t, notifier.events, 1)
	assert.Equal(t, mailer.EventReceived, notifier.events[0].kind)
	assert.Equal(t, 1, notifier.adminCalls)
}

func TestFinalizeOrder_ExpressSurcharge(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	req := validRequest()
	req.Items = []dto.Item{
		{Name: "Mattress", CurrentPrice: 10.00, Quantity: 2},
		{Name: "Pillow", CurrentPrice: 25.50, Quantity: 1},
	}
	req.DeliveryOption = DeliveryOptionExpress

	_, err := svc.FinalizeOrder(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].TotalAmount.Equal(decimal.RequireFromString("60.50")),
		"total was %s", repo.created[0].TotalAmount)
}

func TestFinalizeOrder_IdempotentReplay(t *testing.T) {
	repo := newMockOrderRepo()
	notifier := &mockNotifier{}
	svc := newTestService(repo, &mockPaymentClient{}, notifier)

	first, err := svc.FinalizeOrder(context.Background(), validRequest())
	require.NoError(t, err)

	// Replay with a different payload for the same session.
	req := validRequest()
	req.Items = []dto.Item{{Name: "Different", CurrentPrice: 999, Quantity: 3}}
	second, err := svc.FinalizeOrder(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)
	assert.Len(t, repo.created, 1, "replay must not create a second order")
	assert.Len(t, notifier.events, 1, "replay must not resend notifications")
	assert.Equal(t, 1, notifier.adminCalls)
}

func TestFinalizeOrder_DuplicateKeyRace(t *testing.T) {
	repo := newMockOrderRepo()
	winner := &model.Order{
		ID:               "winner-id",
		OrderNumber:      "ORD-1-WINNER",
		PaymentSessionID: "sess_1",
	}
	repo.raceWinner = winner
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	resp, err := svc.FinalizeOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "winner-id", resp.OrderID)
	assert.Equal(t, "ORD-1-WINNER", resp.OrderNumber)
}

func TestFinalizeOrder_NotificationFailureStillSucceeds(t *testing.T) {
	repo := newMockOrderRepo()
	notifier := &mockNotifier{
		sendErr:  errors.New("smtp down"),
		adminErr: errors.New("smtp down"),
	}
	svc := newTestService(repo, &mockPaymentClient{}, notifier)

	resp, err := svc.FinalizeOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, repo.created, 1)
}

func TestFinalizeOrder_ItemInsertFailureStillSucceeds(t *testing.T) {
	repo := newMockOrderRepo()
	repo.createItemsErr = errors.New("disk full")
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	resp, err := svc.FinalizeOrder(context.Background(), validRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, repo.created, 1, "order header must survive item failure")
}

func TestFinalizeOrder_HeaderInsertFailure(t *testing.T) {
	repo := newMockOrderRepo()
	repo.createErr = errors.New("connection reset")
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	_, err := svc.FinalizeOrder(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, repo.createdItems, "items must not be written after header failure")
}

func seedOrder(repo *mockOrderRepo, status model.Status) *model.Order {
	order := &model.Order{
		ID:               "order-1",
		OrderNumber:      "ORD-1-TEST",
		PaymentSessionID: "sess_seed",
		CustomerName:     "A B",
		CustomerEmail:    "a@b.com",
		Status:           status,
		TotalAmount:      decimal.RequireFromString("500.00"),
	}
	repo.ordersByID[order.ID] = order
	repo.ordersBySession[order.PaymentSessionID] = order
	return order
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, model.StatusPending)
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	_, err := svc.ChangeStatus(context.Background(), "order-1", dto.StatusChangeRequest{NewStatus: "shipped"})

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, repo.updates)
}

func TestChangeStatus_OrderNotFound(t *testing.T) {
	repo := newMockOrderRepo()
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	_, err := svc.ChangeStatus(context.Background(), "missing", dto.StatusChangeRequest{NewStatus: "processing"})

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestChangeStatus_DispatchRequiresTracking(t *testing.T) {
	repo := newMockOrderRepo()
	order := seedOrder(repo, model.StatusProcessing)
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	_, err := svc.ChangeStatus(context.Background(), "order-1", dto.StatusChangeRequest{NewStatus: "dispatched"})

	assert.ErrorIs(t, err, ErrMissingTrackingNumber)
	assert.Empty(t, repo.updates, "status must be left unchanged")
	assert.Equal(t, model.StatusProcessing, order.Status)
}

func TestChangeStatus_DispatchSetsTrackingAndTimestamp(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, model.StatusProcessing)
	notifier := &mockNotifier{}
	svc := newTestService(repo, &mockPaymentClient{}, notifier)

	order, err := svc.ChangeStatus(context.Background(), "order-1", dto.StatusChangeRequest{
		NewStatus:      "dispatched",
		TrackingNumber: "T1",
	})

	require.NoError(t, err)
	assert.Equal(t, model.StatusDispatched, order.Status)
	assert.Equal(t, "T1", order.TrackingNumber)
	require.NotNil(t, order.DispatchedAt)

	require.Len(t, repo.updates, 1)
	assert.Equal(t, "T1", repo.updates[0]["tracking_number"])
	assert.Contains(t, repo.updates[0], "dispatched_at")

	require.Len(t, notifier.events, 1)
	assert.Equal(t, mailer.EventDispatched, notifier.events[0].kind)
}

func TestChangeStatus_TrackingAndDispatchedAtImmutable(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, model.StatusProcessing)
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	first, err := svc.ChangeStatus(context.Background(), "order-1", dto.StatusChangeRequest{
		NewStatus:      "dispatched",
		TrackingNumber: "T1",
	})
	require.NoError(t, err)
	firstDispatchedAt := *first.DispatchedAt

	second, err := svc.ChangeStatus(context.Background(), "order-1", dto.StatusChangeRequest{
		NewStatus:      "dispatched",
		TrackingNumber: "T2",
	})
	require.NoError(t, err)

	assert.Equal(t, "T1", second.TrackingNumber, "tracking number is immutable once set")
	assert.Equal(t, firstDispatchedAt, *second.DispatchedAt, "dispatchedAt is set exactly once")

	require.Len(t, repo.updates, 2)
	assert.NotContains(t, repo.updates[1], "tracking_number")
	assert.NotContains(t, repo.updates[1], "dispatched_at")
}

func TestChangeStatus_ProcessingSendsConfirmation(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, model.StatusPending)
	notifier := &mockNotifier{}
	svc := newTestService(repo, &mockPaymentClient{}, notifier)

	order, err := svc.ChangeStatus(context.Background(), "order-1", dto.StatusChangeRequest{NewStatus: "processing"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, order.Status)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, mailer.EventConfirmed, notifier.events[0].kind)
}

func TestChangeStatus_BackwardTransitionAllowed(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, model.StatusDelivered)
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{})

	order, err := svc.ChangeStatus(context.Background(), "order-1", dto.StatusChangeRequest{NewStatus: "processing"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusProcessing, order.Status)
}

func TestChangeStatus_NotificationFailureStillSucceeds(t *testing.T) {
	repo := newMockOrderRepo()
	seedOrder(repo, model.StatusPending)
	svc := newTestService(repo, &mockPaymentClient{}, &mockNotifier{sendErr: errors.New("smtp down")})

	order, err := svc.ChangeStatus(context.Background(), "order-1", dto.StatusChangeRequest{NewStatus: "cancelled"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, order.Status)
}
