package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/repository"
	"akneDenikAPI/internal/types/subscription"
)

func newSubscriptions(t *testing.T) (*SubscriptionService, *repository.Memory) {
	t.Helper()
	store := repository.NewMemory()
	s := NewSubscriptionService(store, CheckoutConfig{
		Prices:     map[string]string{subscription.PlanMonthly: "price_m", subscription.PlanYearly: "price_y"},
		SuccessURL: "https://app.example/ok",
		CancelURL:  "https://app.example/cancel",
	}, nil)
	return s, store
}

func stripeEvent(t *testing.T, typ string, created time.Time, obj any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":      "evt_1",
		"object":  "event",
		"type":    typ,
		"created": created.Unix(),
		"data":    map[string]any{"object": obj},
	})
	require.NoError(t, err)
	var ev stripe.Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func TestCreateCheckoutSendsMetadata(t *testing.T) {
	s, _ := newSubscriptions(t)
	var got *stripe.CheckoutSessionParams
	s.newSession = func(p *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = p
		return &stripe.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/c/cs_123"}, nil
	}

	resp, err := s.CreateCheckout(context.Background(), "u1", subscription.PlanYearly)
	require.NoError(t, err)
	assert.Equal(t, "cs_123", resp.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_123", resp.CheckoutURL)

	require.NotNil(t, got)
	assert.Equal(t, "price_y", *got.LineItems[0].Price)
	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *got.Mode)
	assert.Equal(t, "u1", got.Metadata["user_id"])
	assert.Equal(t, subscription.PlanYearly, got.PaymentIntentData.Metadata["plan"])
}

func TestCreateCheckoutRejectsUnknownPlan(t *testing.T) {
	s, _ := newSubscriptions(t)
	_, err := s.CreateCheckout(context.Background(), "u1", "weekly")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateCheckoutStripeFailure(t *testing.T) {
	s, _ := newSubscriptions(t)
	s.newSession = func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("api down")
	}
	_, err := s.CreateCheckout(context.Background(), "u1", subscription.PlanMonthly)
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
}

func TestCheckoutCompletedActivatesPlan(t *testing.T) {
	s, store := newSubscriptions(t)
	ctx := context.Background()
	paid := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)

	ev := stripeEvent(t, "checkout.session.completed", paid, map[string]any{
		"id":       "cs_1",
		"object":   "checkout.session",
		"metadata": map[string]string{"user_id": "u1", "plan": "monthly"},
	})
	handled, err := s.HandleEvent(ctx, ev)
	require.NoError(t, err)
	assert.True(t, handled)

	p, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	sub := p.Subscription
	assert.Equal(t, subscription.StatusActive, sub.Status)
	assert.Equal(t, subscription.PlanMonthly, sub.Type)
	require.NotNil(t, sub.Start)
	require.NotNil(t, sub.End)
	assert.True(t, paid.Equal(*sub.Start))
	assert.True(t, paid.AddDate(0, 1, 0).Equal(*sub.End))
}

func TestPaymentIntentSucceededYearly(t *testing.T) {
	s, store := newSubscriptions(t)
	ctx := context.Background()
	paid := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ev := stripeEvent(t, "payment_intent.succeeded", paid, map[string]any{
		"id":       "pi_1",
		"object":   "payment_intent",
		"metadata": map[string]string{"user_id": "u9", "plan": "yearly"},
	})
	handled, err := s.HandleEvent(ctx, ev)
	require.NoError(t, err)
	assert.True(t, handled)

	p, err := store.GetProfile(ctx, "u9")
	require.NoError(t, err)
	assert.True(t, paid.AddDate(1, 0, 0).Equal(*p.Subscription.End))
}

func TestEventsWithoutUserAreAcknowledged(t *testing.T) {
	s, store := newSubscriptions(t)
	ctx := context.Background()

	handled, err := s.HandleEvent(ctx, stripeEvent(t, "checkout.session.completed", fixedNow, map[string]any{"id": "cs_2"}))
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = s.HandleEvent(ctx, stripeEvent(t, "customer.created", fixedNow, map[string]any{"id": "cus_1"}))
	require.NoError(t, err)
	assert.False(t, handled)

	_, err = store.GetProfile(ctx, "u1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
