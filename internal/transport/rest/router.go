package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
	"go.uber.org/zap"

	_ "createform/docs" // registers the OpenAPI document
	"createform/internal/config"
	"createform/internal/metrics"
	"createform/internal/service"
	"createform/internal/transport/rest/handler"
	"createform/internal/transport/rest/middleware"
	"createform/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	WorkspaceService  *service.WorkspaceService
	SurveyService     *service.SurveyService
	SubmissionService *service.SubmissionService
	AnalyticsService  *service.AnalyticsService
	ExportService     *service.ExportService
	WSHub             *ws.Hub
	CORS              *CORS
	Metrics           *metrics.Recorder
	Gatherer          prometheus.Gatherer
	Logger            *zap.Logger
	// TrustedProxies may set forwarding headers; nil keys clients on the peer address
	TrustedProxies *middleware.TrustedProxies
	// Health checks the backing stores; nil reports healthy
	Health func(ctx context.Context) error
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.CORS == nil {
		c.CORS = NewCORS(config.CORSConfig{})
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	workspaceHandler := handler.NewWorkspaceHandler(c.WorkspaceService)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	formHandler := handler.NewFormHandler(c.SurveyService, c.SubmissionService, c.TrustedProxies)
	submissionHandler := handler.NewSubmissionHandler(c.SubmissionService, c.AnalyticsService, c.ExportService)
	wsHandler := ws.NewHandler(c.WSHub, c.SubmissionService, c.Metrics, c.Logger)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)
	r.Use(middleware.Observe(c.Logger, c.Metrics))

	// Ops
	r.HandleFunc("/health", healthHandler(c.Health)).Methods("GET")
	gatherer := c.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	r.HandleFunc("/swagger/doc.json", swaggerDoc).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	v1.HandleFunc("/forms/{surveyId}", formHandler.Get).Methods("GET")

	respondentRoutes := v1.NewRoute().Subrouter()
	respondentRoutes.Use(authMW.OptionalOwner)
	respondentRoutes.HandleFunc("/forms/{surveyId}/submissions", formHandler.Submit).Methods("POST")

	// Owner routes (require owner auth)
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireOwner)

	ownerRoutes.HandleFunc("/workspaces", workspaceHandler.List).Methods("GET")
	ownerRoutes.HandleFunc("/workspaces", workspaceHandler.Create).Methods("POST")
	ownerRoutes.HandleFunc("/workspaces/{workspaceId}", workspaceHandler.Rename).Methods("PUT")
	ownerRoutes.HandleFunc("/workspaces/{workspaceId}", workspaceHandler.Delete).Methods("DELETE")

	ownerRoutes.HandleFunc("/surveys", surveyHandler.List).Methods("GET")
	ownerRoutes.HandleFunc("/surveys", surveyHandler.Create).Methods("POST")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Get).Methods("GET")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Update).Methods("PUT")
	ownerRoutes.HandleFunc("/surveys/{surveyId}", surveyHandler.Delete).Methods("DELETE")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/publish", surveyHandler.Publish).Methods("POST")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/unpublish", surveyHandler.Unpublish).Methods("POST")

	ownerRoutes.HandleFunc("/surveys/{surveyId}/questions", surveyHandler.AddQuestion).Methods("POST")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/questions/{questionId}", surveyHandler.UpdateQuestion).Methods("PUT")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/questions/{questionId}", surveyHandler.DeleteQuestion).Methods("DELETE")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/outcomes", surveyHandler.AddOutcome).Methods("POST")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/outcomes/{outcomeId}", surveyHandler.UpdateOutcome).Methods("PUT")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/outcomes/{outcomeId}", surveyHandler.DeleteOutcome).Methods("DELETE")

	ownerRoutes.HandleFunc("/surveys/{surveyId}/submissions", submissionHandler.List).Methods("GET")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/submissions/export", submissionHandler.Export).Methods("GET")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/analytics", submissionHandler.Analytics).Methods("GET")
	ownerRoutes.HandleFunc("/surveys/{surveyId}/preview", submissionHandler.Preview).Methods("POST")

	// WebSocket routes (token in query param)
	streamRoutes := v1.NewRoute().Subrouter()
	streamRoutes.Use(authMW.RequireOwnerStream)
	streamRoutes.HandleFunc("/ws/surveys/{surveyId}/submissions", wsHandler.SurveyFeed).Methods("GET")

	// CORS wraps the router so preflight requests are answered for every path
	return c.CORS.Middleware(r)
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, `{"error":"api documentation unavailable"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
