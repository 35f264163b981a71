package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DaysCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "days_completed_total",
			Help: "Total number of successfully completed program days",
		},
	)
	ContentResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_resolutions_total",
			Help: "Day content resolutions by source",
		},
		[]string{"source"},
	)
	PhotoUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_uploads_total",
			Help: "Photo uploads to blob storage by result",
		},
		[]string{"result"},
	)
	StripeWebhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stripe_webhook_events_total",
			Help: "Stripe webhook events by type and result",
		},
		[]string{"type", "result"},
	)
)

// Register adds the domain collectors to reg. Call once from main.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(DaysCompleted, ContentResolutions, PhotoUploads, StripeWebhookEvents)
}
