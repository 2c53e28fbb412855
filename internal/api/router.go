package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/rescueassist/internal/api/middleware"
	"github.com/kiranshivaraju/rescueassist/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler http.HandlerFunc

	ListFlows http.HandlerFunc
	RunFlow   http.HandlerFunc

	ListJobs        http.HandlerFunc
	GetJob          http.HandlerFunc
	UpdateJob       http.HandlerFunc
	AppendJobLog    http.HandlerFunc
	SuggestDriver   http.HandlerFunc
	TripReport      http.HandlerFunc
	Receipt         http.HandlerFunc
	InsuranceReport http.HandlerFunc
	Categorize      http.HandlerFunc

	ListUsers       http.HandlerFunc
	DashboardStats  http.HandlerFunc
	DashboardReport http.HandlerFunc
	MapMarkers      http.HandlerFunc
	VehicleLookup   http.HandlerFunc

	// MCP serves the Model Context Protocol endpoint. Nil leaves /mcp unrouted.
	MCP http.Handler
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/flows", orNotImplemented(deps.ListFlows))
		r.Post("/api/v1/flows/{name}", orNotImplemented(deps.RunFlow))

		r.Route("/api/v1/jobs", func(r chi.Router) {
			r.Get("/", orNotImplemented(deps.ListJobs))
			r.Route("/{jobID}", func(r chi.Router) {
				r.Get("/", orNotImplemented(deps.GetJob))
				r.Patch("/", orNotImplemented(deps.UpdateJob))
				r.Post("/log", orNotImplemented(deps.AppendJobLog))
				r.Post("/suggest-driver", orNotImplemented(deps.SuggestDriver))
				r.Post("/trip-report", orNotImplemented(deps.TripReport))
				r.Post("/receipt", orNotImplemented(deps.Receipt))
				r.Post("/insurance-report", orNotImplemented(deps.InsuranceReport))
				r.Post("/categorize", orNotImplemented(deps.Categorize))
			})
		})

		r.Get("/api/v1/users", orNotImplemented(deps.ListUsers))
		r.Get("/api/v1/dashboard/stats", orNotImplemented(deps.DashboardStats))
		r.Get("/api/v1/dashboard/report", orNotImplemented(deps.DashboardReport))
		r.Get("/api/v1/map/markers", orNotImplemented(deps.MapMarkers))
		r.Get("/api/v1/vehicles/{plate}", orNotImplemented(deps.VehicleLookup))

		if deps.MCP != nil {
			r.Handle("/mcp", deps.MCP)
		}
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
