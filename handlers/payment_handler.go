package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/logger"
	"akneDenikAPI/internal/metrics"
	"akneDenikAPI/internal/types/subscription"
	"akneDenikAPI/services"
)

const maxWebhookBody = int64(65536)

type PaymentHandler struct {
	subscriptions *services.SubscriptionService
	webhookSecret string
	log           *logger.Logger
}

func NewPaymentHandler(subscriptions *services.SubscriptionService, webhookSecret string, log *logger.Logger) *PaymentHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &PaymentHandler{subscriptions: subscriptions, webhookSecret: webhookSecret, log: log}
}

func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req subscription.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.subscriptions.CreateCheckout(ctx, userID, req.Plan)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// HandleStripeWebhook verifies and applies events sent by Stripe. Events that can never succeed are
// acknowledged so Stripe stops retrying them; store outages answer 503 so it retries.
func (h *PaymentHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Warn("Error reading webhook body", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	if h.webhookSecret == "" {
		h.log.Error("STRIPE_WEBHOOK_SECRET is not set")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		sigErr := apperr.Signature(err)
		h.log.Warn("Rejected stripe webhook", "op", sigErr.Op, "error", sigErr)
		metrics.StripeWebhookEvents.WithLabelValues("unknown", "bad_signature").Inc()
		respondWithAppError(w, sigErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	handled, err := h.subscriptions.HandleEvent(ctx, event)
	switch {
	case err == nil:
		h.log.Info("Stripe webhook processed", "type", event.Type, "event_id", event.ID, "handled", handled)
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, apperr.ErrValidation):
		h.log.Warn("Acknowledging unusable stripe event", "type", event.Type, "event_id", event.ID, "error", err)
		w.WriteHeader(http.StatusOK)
	default:
		h.log.Error("Failed to apply stripe event", "type", event.Type, "event_id", event.ID, "error", err)
		respondWithAppError(w, err)
	}
}
