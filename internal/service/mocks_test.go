package service

import (
	"context"

	"gorm.io/gorm"

	"storefront-backend/internal/client"
	"storefront-backend/internal/mailer"
	"storefront-backend/internal/model"
)

// mockOrderRepo is an in-memory OrderRepository recording calls for assertions.
type mockOrderRepo struct {
	ordersBySession map[string]*model.Order
	ordersByID      map[string]*model.Order

	created      []*model.Order
	createdItems [][]*model.OrderItem
	updates      []map[string]interface{}

	createErr      error
	createItemsErr error
	updateErr      error

	// raceWinner simulates a concurrent insert: Create fails with a
	// duplicate-key error and the winner becomes visible to lookups.
	raceWinner *model.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		ordersBySession: make(map[string]*model.Order),
		ordersByID:      make(map[string]*model.Order),
	}
}

func (m *mockOrderRepo) Create(ctx context.Context, order *model.Order) error {
	if m.raceWinner != nil {
		m.ordersBySession[m.raceWinner.PaymentSessionID] = m.raceWinner
		m.ordersByID[m.raceWinner.ID] = m.raceWinner
		return gorm.ErrDuplicatedKey
	}
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, order)
	m.ordersBySession[order.PaymentSessionID] = order
	m.ordersByID[order.ID] = order
	return nil
}

func (m *mockOrderRepo) CreateItems(ctx context.Context, items []*model.OrderItem) error {
	if m.createItemsErr != nil {
		return m.createItemsErr
	}
	m.createdItems = append(m.createdItems, items)
	return nil
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	if order, ok := m.ordersByID[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) FindByPaymentSessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	if order, ok := m.ordersBySession[sessionID]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	for _, order := range m.ordersByID {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (m *mockOrderRepo) UpdateStatusFields(ctx context.Context, id string, updates map[string]interface{}) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.ordersByID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.updates = append(m.updates, updates)
	return nil
}

type mockPaymentClient struct {
	session *client.ProviderSession
	err     error
	calls   int
}

func (m *mockPaymentClient) GetCheckoutSession(ctx context.Context, sessionID string) (*client.ProviderSession, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

type sentEvent struct {
	kind        mailer.EventKind
	orderNumber string
}

type mockNotifier struct {
	events     []sentEvent
	adminCalls int

	sendErr  error
	adminErr error
}

func (m *mockNotifier) SendOrderEvent(kind mailer.EventKind, order *model.Order, items []model.OrderItem) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.events = append(m.events, sentEvent{kind: kind, orderNumber: order.OrderNumber})
	return nil
}

func (m *mockNotifier) SendAdminNewOrder(order *model.Order, items []model.OrderItem) error {
	if m.adminErr != nil {
		return m.adminErr
	}
	m.adminCalls++
	return nil
}
