package client

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v78"
	stripeclient "github.com/stripe/stripe-go/v78/client"
)

// ErrSessionNotFound is returned when the provider has no record of the
// requested checkout session.
var ErrSessionNotFound = errors.New("payment session not found")

// ProviderSession is the subset of the provider's checkout-session record the
// order flow reconciles against.
type ProviderSession struct {
	ID            string
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Address       *SessionAddress
	Metadata      map[string]string
}

type SessionAddress struct {
	Line1    string
	Line2    string
	City     string
	Postcode string
	Country  string
}

type PaymentClient interface {
	GetCheckoutSession(ctx context.Context, sessionID string) (*ProviderSession, error)
}

// stripeSessionAPI is the slice of the stripe client the payment client
// actually uses, kept narrow so tests can stub it.
type stripeSessionAPI interface {
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeClientImpl struct {
	sessions stripeSessionAPI
}

func NewStripeClient(apiKey string) PaymentClient {
	sc := stripeclient.New(apiKey, nil)
	return &stripeClientImpl{
		sessions: sc.CheckoutSessions,
	}
}

func (c *stripeClientImpl) GetCheckoutSession(ctx context.Context, sessionID string) (*ProviderSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := c.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	out := &ProviderSession{
		ID:            sess.ID,
		CustomerEmail: sess.CustomerEmail,
		Metadata:      sess.Metadata,
	}

	if details := sess.CustomerDetails; details != nil {
		if details.Email != "" {
			out.CustomerEmail = details.Email
		}
		out.CustomerName = details.Name
		out.CustomerPhone = details.Phone
		if addr := details.Address; addr != nil {
			out.Address = &SessionAddress{
				Line1:    addr.Line1,
				Line2:    addr.Line2,
				City:     addr.City,
				Postcode: addr.PostalCode,
				Country:  addr.Country,
			}
		}
	}

	return out, nil
}
