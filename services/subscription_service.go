package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/logger"
	"akneDenikAPI/internal/metrics"
	"akneDenikAPI/internal/types/subscription"
)

type SubscriptionStore interface {
	SetSubscription(ctx context.Context, userID string, sub subscription.Subscription) error
}

type CheckoutConfig struct {
	Prices     map[string]string
	SuccessURL string
	CancelURL  string
}

type SubscriptionService struct {
	store      SubscriptionStore
	cfg        CheckoutConfig
	log        *logger.Logger
	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewSubscriptionService(store SubscriptionStore, cfg CheckoutConfig, log *logger.Logger) *SubscriptionService {
	if log == nil {
		log = logger.Nop()
	}
	return &SubscriptionService{store: store, cfg: cfg, log: log, newSession: session.New}
}

// CreateCheckout opens a one-off Stripe Checkout for plan. The user and plan travel as metadata on
// both the session and its payment intent so either webhook can activate the subscription.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, userID, plan string) (subscription.CheckoutResponse, error) {
	if _, ok := subscription.PlanEnd(plan, time.Time{}); !ok {
		return subscription.CheckoutResponse{}, apperr.Validation("plan must be %q or %q", subscription.PlanMonthly, subscription.PlanYearly)
	}
	price := s.cfg.Prices[plan]
	if price == "" {
		return subscription.CheckoutResponse{}, fmt.Errorf("no stripe price configured for plan %s", plan)
	}

	meta := map[string]string{"user_id": userID, "plan": plan}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(price),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: meta,
		},
	}
	params.Context = ctx
	for k, v := range meta {
		params.AddMetadata(k, v)
	}

	sess, err := s.newSession(params)
	if err != nil {
		s.log.Error("Stripe checkout session failed", "user_id", userID, "plan", plan, "error", err)
		return subscription.CheckoutResponse{}, apperr.Unavailable("stripe checkout", err)
	}
	s.log.Info("Checkout session created", "user_id", userID, "plan", plan, "session_id", sess.ID)
	return subscription.CheckoutResponse{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}

// HandleEvent applies a verified Stripe event. It reports false for events that carry nothing to
// act on; those are acknowledged without a write.
func (s *SubscriptionService) HandleEvent(ctx context.Context, event stripe.Event) (bool, error) {
	eventType := string(event.Type)

	if event.Data == nil {
		return false, apperr.Validation("event %s has no data", event.ID)
	}
	var meta map[string]string
	switch eventType {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			metrics.StripeWebhookEvents.WithLabelValues(eventType, "malformed").Inc()
			return false, apperr.Validation("invalid checkout session payload")
		}
		meta = cs.Metadata
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			metrics.StripeWebhookEvents.WithLabelValues(eventType, "malformed").Inc()
			return false, apperr.Validation("invalid payment intent payload")
		}
		meta = pi.Metadata
	default:
		s.log.Info("Ignoring stripe event", "type", eventType, "event_id", event.ID)
		metrics.StripeWebhookEvents.WithLabelValues(eventType, "ignored").Inc()
		return false, nil
	}

	userID, plan := meta["user_id"], meta["plan"]
	if userID == "" {
		s.log.Warn("Stripe event without user_id metadata", "type", eventType, "event_id", event.ID)
		metrics.StripeWebhookEvents.WithLabelValues(eventType, "unattributed").Inc()
		return false, nil
	}

	start := time.Unix(event.Created, 0).UTC()
	if event.Created == 0 {
		start = time.Now().UTC()
	}
	if err := s.Activate(ctx, userID, plan, start); err != nil {
		metrics.StripeWebhookEvents.WithLabelValues(eventType, "error").Inc()
		return false, err
	}
	metrics.StripeWebhookEvents.WithLabelValues(eventType, "applied").Inc()
	return true, nil
}

// Activate records a paid plan starting at start.
func (s *SubscriptionService) Activate(ctx context.Context, userID, plan string, start time.Time) error {
	end, ok := subscription.PlanEnd(plan, start)
	if !ok {
		return apperr.WithUser(apperr.Validation("unknown plan %q", plan), userID, 0)
	}
	sub := subscription.Subscription{
		Status: subscription.StatusActive,
		Type:   plan,
		Start:  &start,
		End:    &end,
	}
	if err := s.store.SetSubscription(ctx, userID, sub); err != nil {
		s.log.Error("Failed to store subscription", "user_id", userID, "plan", plan, "error", err)
		return apperr.WithUser(err, userID, 0)
	}
	s.log.Info("Subscription activated", "user_id", userID, "plan", plan, "until", end)
	return nil
}
