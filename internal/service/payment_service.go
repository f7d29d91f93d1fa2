package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

var (
	ErrPaymentUnavailable = errors.New("payments are not configured")
	ErrPlanUnknown        = errors.New("unknown subscription plan")
)

// Plan is a purchasable membership tier. Amounts are in the smallest
// currency unit.
type Plan struct {
	Code     string
	Name     string
	Amount   int64
	Currency string
}

var defaultPlans = map[string]Plan{
	"silver":   {Code: "silver", Name: "Silver membership (3 months)", Amount: 299900, Currency: "inr"},
	"gold":     {Code: "gold", Name: "Gold membership (6 months)", Amount: 499900, Currency: "inr"},
	"platinum": {Code: "platinum", Name: "Platinum membership (12 months)", Amount: 799900, Currency: "inr"},
}

// CheckoutSession is what the client needs to hand off to Stripe.
type CheckoutSession struct {
	SessionID string
	URL       string
}

// PaymentService creates Stripe checkout sessions. Webhook processing is
// intentionally not handled here.
type PaymentService struct {
	successURL string
	cancelURL  string
	plans      map[string]Plan
	enabled    bool

	createSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewPaymentService(secretKey, successURL, cancelURL string) *PaymentService {
	enabled := secretKey != ""
	if enabled {
		stripe.Key = secretKey
	}
	return &PaymentService{
		successURL:    successURL,
		cancelURL:     cancelURL,
		plans:         defaultPlans,
		enabled:       enabled,
		createSession: session.New,
	}
}

func (s *PaymentService) CreateCheckoutSession(ctx context.Context, accountID uuid.UUID, planCode string) (*CheckoutSession, error) {
	if !s.enabled {
		return nil, ErrPaymentUnavailable
	}
	plan, ok := s.plans[planCode]
	if !ok {
		return nil, ErrPlanUnknown
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(plan.Currency),
					UnitAmount: stripe.Int64(plan.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(accountID.String()),
	}
	params.Context = ctx

	created, err := s.createSession(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{SessionID: created.ID, URL: created.URL}, nil
}

// Plans lists the purchasable tiers.
func (s *PaymentService) Plans() []Plan {
	out := make([]Plan, 0, len(s.plans))
	for _, plan := range s.plans {
		out = append(out, plan)
	}
	return out
}
