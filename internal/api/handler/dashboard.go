package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/rescueassist/internal/analysis"
	"github.com/kiranshivaraju/rescueassist/internal/api/response"
	"github.com/kiranshivaraju/rescueassist/internal/flows"
	"github.com/kiranshivaraju/rescueassist/internal/store"
	"github.com/kiranshivaraju/rescueassist/internal/vehicles"
	"github.com/kiranshivaraju/rescueassist/pkg/geo"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// NewListUsersHandler returns an http.HandlerFunc for GET /api/v1/users.
func NewListUsersHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		if role != "" && !models.ValidRole(role) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"role must be one of Dispatcher, Driver", nil)
			return
		}

		users, err := st.ListUsers(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if role != "" {
			filtered := []models.User{}
			for _, u := range users {
				if string(u.Role) == role {
					filtered = append(filtered, u)
				}
			}
			users = filtered
		}
		response.Collection(w, users, response.CollectionMeta{Total: len(users)})
	}
}

// NewDashboardStatsHandler returns an http.HandlerFunc for GET /api/v1/dashboard/stats.
func NewDashboardStatsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topN := analysis.DefaultTopN
		if v := r.URL.Query().Get("top"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 20 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "top must be between 1 and 20", nil)
				return
			}
			topN = n
		}

		jobs, users, err := loadAll(r, st)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, analysis.Summarize(jobs, users, topN))
	}
}

// NewDashboardReportHandler returns an http.HandlerFunc for GET /api/v1/dashboard/report.
func NewDashboardReportHandler(st store.Store, svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, users, err := loadAll(r, st)
		if err != nil {
			writeError(w, r, err)
			return
		}
		report, err := svc.GenerateDashboardReport(r.Context(), flows.DashboardReportInput{Jobs: jobs, Users: users})
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, report)
	}
}

// NewMapMarkersHandler returns an http.HandlerFunc for GET /api/v1/map/markers.
func NewMapMarkersHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, users, err := loadAll(r, st)
		if err != nil {
			writeError(w, r, err)
			return
		}
		markers := geo.Markers(geo.Stockholm, users, jobs)
		response.Collection(w, markers, response.CollectionMeta{Total: len(markers)})
	}
}

// NewVehicleLookupHandler returns an http.HandlerFunc for GET /api/v1/vehicles/{plate}.
func NewVehicleLookupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plate := chi.URLParam(r, "plate")
		rec, ok := vehicles.Lookup(plate)
		if !ok {
			response.Error(w, http.StatusNotFound, "VEHICLE_NOT_FOUND",
				"No vehicle registered with plate "+vehicles.NormalizePlate(plate), nil)
			return
		}
		response.JSON(w, rec)
	}
}

func loadAll(r *http.Request, st store.Store) ([]models.Job, []models.User, error) {
	jobs, err := st.ListJobs(r.Context(), store.JobFilter{})
	if err != nil {
		return nil, nil, err
	}
	users, err := st.ListUsers(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return jobs, users, nil
}
