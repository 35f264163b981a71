package handlers

import (
	"net/http"
	"slices"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"akneDenikAPI/internal/logger"
	"akneDenikAPI/middleware"
)

// Routes collects everything the HTTP surface is assembled from.
type Routes struct {
	Verifier middleware.TokenVerifier
	Limiter  *middleware.RateLimiter
	Log      *logger.Logger

	Health   *HealthHandler
	Days     *DayHandler
	Content  *ContentHandler
	Messages *MessageHandler
	Products *ProductHandler
	Payments *PaymentHandler

	Metrics     http.Handler
	MetricsUser string
	MetricsPass string

	// Pprof is mounted under /debug/pprof/ when set.
	Pprof       http.Handler
	PprofSecret string

	CORSOrigins []string
}

func NewRouter(rt Routes) http.Handler {
	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()
	if rt.Limiter != nil {
		standardRouter.Use(rt.Limiter.Middleware)
	}
	standardRouter.Use(middleware.MonitorMiddleware)

	if rt.Metrics != nil {
		standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(rt.MetricsUser, rt.MetricsPass)(rt.Metrics)).Methods("GET")
	}
	if rt.Pprof != nil {
		standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(rt.PprofSecret)(rt.Pprof))
	}

	standardRouter.HandleFunc("/health", rt.Health.Health).Methods("GET")
	standardRouter.HandleFunc("/webhooks/stripe", rt.Payments.HandleStripeWebhook).Methods("POST")

	protected := standardRouter.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.FirebaseAuthMiddleware(rt.Verifier, rt.Log))

	protected.HandleFunc("/me", rt.Days.GetProfile).Methods("GET")
	protected.HandleFunc("/days/today", rt.Days.GetToday).Methods("GET")
	protected.HandleFunc("/days/{day:[0-9]+}", rt.Days.GetDay).Methods("GET")
	protected.HandleFunc("/days/{day:[0-9]+}/log", rt.Days.CompleteDay).Methods("PUT")
	protected.HandleFunc("/days/{day:[0-9]+}/photos", rt.Days.UploadPhoto).Methods("POST")
	protected.HandleFunc("/logs", rt.Days.GetLogs).Methods("GET")

	protected.HandleFunc("/messages", rt.Messages.GetThread).Methods("GET")
	protected.HandleFunc("/messages", rt.Messages.Send).Methods("POST")
	protected.HandleFunc("/messages/read", rt.Messages.MarkRead).Methods("PUT")
	protected.HandleFunc("/devices", rt.Messages.RegisterDevice).Methods("POST")

	protected.HandleFunc("/products", rt.Products.ListActive).Methods("GET")
	protected.HandleFunc("/checkout", rt.Payments.CreateCheckout).Methods("POST")

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/content", rt.Content.List).Methods("GET")
	admin.HandleFunc("/content/{day:[0-9]+}", rt.Content.Get).Methods("GET")
	admin.HandleFunc("/content/{day:[0-9]+}", rt.Content.Put).Methods("PUT")
	admin.HandleFunc("/content/{day:[0-9]+}", rt.Content.Delete).Methods("DELETE")

	admin.HandleFunc("/conversations", rt.Messages.ListConversations).Methods("GET")
	admin.HandleFunc("/conversations/{userId}", rt.Messages.GetConversation).Methods("GET")
	admin.HandleFunc("/conversations/{userId}/reply", rt.Messages.Reply).Methods("POST")
	admin.HandleFunc("/conversations/{userId}/read", rt.Messages.MarkConversationRead).Methods("PUT")

	admin.HandleFunc("/products", rt.Products.ListAll).Methods("GET")
	admin.HandleFunc("/products", rt.Products.Create).Methods("POST")
	admin.HandleFunc("/products/{id}", rt.Products.Update).Methods("PUT")
	admin.HandleFunc("/products/{id}", rt.Products.Delete).Methods("DELETE")

	return corsHandler(rt.CORSOrigins)(r)
}

// corsHandler only allows credentials for an explicit origin list; browsers refuse them with "*".
func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	opts := []gorillaHandlers.CORSOption{
		gorillaHandlers.AllowedOrigins(origins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Stripe-Signature", "X-Pprof-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	}
	if !slices.Contains(origins, "*") {
		opts = append(opts, gorillaHandlers.AllowCredentials())
	}
	return gorillaHandlers.CORS(opts...)
}
