package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-backend/internal/client"
	"storefront-backend/internal/dto"
)

const (
	metaKeyItemCount      = "itemCount"
	metaKeyItemName       = "itemName"
	metaKeyDeliveryOption = "deliveryOption"
)

// ReconciledOrder is the canonical (customer, items, delivery option) triple.
// Downstream code can rely on every field being populated.
type ReconciledOrder struct {
	Customer       dto.Customer
	Items          []dto.Item
	DeliveryOption string
}

// reconciler merges the caller payload with the provider's session record.
// The payload wins wherever it is populated: the client has full cart state
// (per-item size, colour, firmness and so on) that the provider was never
// told. The provider session is the fallback when the client request arrives
// incomplete or is replayed by the provider itself.
type reconciler struct {
	payments       client.PaymentClient
	defaultCountry string
	lookupTimeout  time.Duration
	log            *zap.Logger
}

func (r *reconciler) Reconcile(ctx context.Context, req dto.FinalizeOrderRequest) (*ReconciledOrder, error) {
	if strings.TrimSpace(req.PaymentSessionID) == "" {
		return nil, fmt.Errorf("%w: paymentSessionId is required", ErrInvalidRequest)
	}

	// The session is fetched at most once, and only if some field needs it.
	var session *client.ProviderSession
	fetchSession := func() (*client.ProviderSession, error) {
		if session != nil {
			return session, nil
		}
		lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
		defer cancel()

		sess, err := r.payments.GetCheckoutSession(lookupCtx, req.PaymentSessionID)
		if err != nil {
			if errors.Is(err, client.ErrSessionNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		session = sess
		return session, nil
	}

	out := &ReconciledOrder{}

	if req.Customer != nil && req.Customer.Email != "" {
		out.Customer = *req.Customer
	} else {
		sess, err := fetchSession()
		if err != nil {
			return nil, err
		}
		out.Customer = r.customerFromSession(sess)
	}

	if len(req.Items) > 0 {
		out.Items = req.Items
	} else {
		sess, err := fetchSession()
		if err != nil {
			return nil, err
		}
		out.Items = r.itemsFromSession(sess)
	}

	if req.DeliveryOption != "" {
		out.DeliveryOption = req.DeliveryOption
	} else {
		sess, err := fetchSession()
		if err != nil {
			return nil, err
		}
		if opt := sess.Metadata[metaKeyDeliveryOption]; opt != "" {
			out.DeliveryOption = opt
		} else {
			out.DeliveryOption = DeliveryOptionStandard
		}
	}

	if out.Customer.Email == "" {
		return nil, fmt.Errorf("%w: customer email could not be determined", ErrInvalidRequest)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrInvalidRequest)
	}

	return out, nil
}

func (r *reconciler) customerFromSession(sess *client.ProviderSession) dto.Customer {
	first, last := splitName(sess.CustomerName)

	customer := dto.Customer{
		FirstName: first,
		LastName:  last,
		Email:     sess.CustomerEmail,
		Phone:     sess.CustomerPhone,
	}

	if addr := sess.Address; addr != nil {
		country := addr.Country
		if country == "" {
			country = r.defaultCountry
		}
		shipping := &dto.Address{
			Line1:    addr.Line1,
			Line2:    addr.Line2,
			City:     addr.City,
			Postcode: addr.Postcode,
			Country:  country,
		}
		customer.Shipping = shipping
		customer.Billing = shipping
	}

	return customer
}

// itemsFromSession synthesizes a single best-effort line item from the coarse
// metadata the provider keeps. The provider never sees per-item pricing, so
// the placeholder is zero-priced; support staff reconcile it against the
// captured payment afterwards.
func (r *reconciler) itemsFromSession(sess *client.ProviderSession) []dto.Item {
	count := 1
	if raw := sess.Metadata[metaKeyItemCount]; raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			count = n
		}
	}

	name := sess.Metadata[metaKeyItemName]
	if name == "" {
		name = "Order item"
	}

	r.log.Warn("payload carried no items, falling back to provider session metadata",
		zap.String("payment_session_id", sess.ID),
		zap.Int("item_count", count))

	return []dto.Item{{
		Name:         name,
		Quantity:     count,
		CurrentPrice: 0,
	}}
}

func splitName(fullName string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(fullName), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
