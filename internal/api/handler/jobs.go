package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/rescueassist/internal/api/response"
	"github.com/kiranshivaraju/rescueassist/internal/flows"
	"github.com/kiranshivaraju/rescueassist/internal/schema"
	"github.com/kiranshivaraju/rescueassist/internal/store"
	"github.com/kiranshivaraju/rescueassist/pkg/jobquery"
	"github.com/kiranshivaraju/rescueassist/pkg/models"
)

// Search modes reported in list metadata.
const (
	SearchAI       = "ai"
	SearchFallback = "fallback"
)

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs.
// A q parameter is turned into filters by the extractSearchFilters flow; when
// the flow fails the query is matched as plain text instead.
func NewListJobsHandler(st store.Store, svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status != "" && !models.ValidJobStatus(status) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"status must be one of New, In Progress, Completed", nil)
			return
		}

		jobs, err := st.ListJobs(r.Context(), store.JobFilter{
			Status:     models.JobStatus(status),
			AssignedTo: r.URL.Query().Get("assignedTo"),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			response.Collection(w, jobs, response.CollectionMeta{Total: len(jobs)})
			return
		}

		users, err := st.ListUsers(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		mode := SearchAI
		var res jobquery.Result
		filters, err := svc.ExtractSearchFilters(r.Context(), flows.SearchInput{Query: q})
		if err != nil {
			slog.Warn("ai search failed, falling back to text search", "query", q, "error", err)
			mode = SearchFallback
			res = jobquery.Fallback(jobs, q)
		} else {
			res = jobquery.Apply(jobs, users, filters)
		}

		response.Collection(w, res.Jobs, response.CollectionMeta{
			Total:   len(res.Jobs),
			Filters: res.Applied,
			Search:  mode,
		})
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := st.GetJob(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, job)
	}
}

type updateJobRequest struct {
	Status           *models.JobStatus `json:"status" validate:"omitempty,jobstatus"`
	AssignedTo       *string           `json:"assignedTo"`
	Costs            *models.Costs     `json:"costs" validate:"omitempty"`
	DestinationNotes *string           `json:"destinationNotes"`
	KeysLocation     *string           `json:"keysLocation"`
	Category         *string           `json:"category"`
	Priority         *models.Priority  `json:"priority" validate:"omitempty,priority"`
	ActionsTaken     []string          `json:"actionsTaken" validate:"omitempty,dive,required"`
	DriverDiagnosis  []string          `json:"driverDiagnosis" validate:"omitempty,dive,required"`
	TMAUsed          *bool             `json:"tmaUsed"`
}

// NewUpdateJobHandler returns an http.HandlerFunc for PATCH /api/v1/jobs/{jobID}.
func NewUpdateJobHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateJobRequest
		if err := decodeBody(w, r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		if err := schema.ValidateStruct("updateJob", req); err != nil {
			writeError(w, r, err)
			return
		}
		if (req.Category == nil) != (req.Priority == nil) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"category and priority must be set together", nil)
			return
		}

		var opts []store.JobUpdateOption
		if req.AssignedTo != nil {
			if *req.AssignedTo != "" {
				if err := requireDriver(r, st, *req.AssignedTo); err != nil {
					writeError(w, r, err)
					return
				}
			}
			opts = append(opts, store.WithAssignee(*req.AssignedTo))
		}
		if req.Status != nil {
			opts = append(opts, store.WithStatus(*req.Status))
		}
		if req.Costs != nil {
			opts = append(opts, store.WithCosts(*req.Costs))
		}
		if req.DestinationNotes != nil {
			opts = append(opts, store.WithDestinationNotes(*req.DestinationNotes))
		}
		if req.KeysLocation != nil {
			opts = append(opts, store.WithKeysLocation(*req.KeysLocation))
		}
		if req.Category != nil {
			opts = append(opts, store.WithCategorization(*req.Category, *req.Priority))
		}
		if req.ActionsTaken != nil {
			opts = append(opts, store.WithActions(req.ActionsTaken))
		}
		if req.DriverDiagnosis != nil {
			opts = append(opts, store.WithDiagnosis(req.DriverDiagnosis))
		}
		if req.TMAUsed != nil {
			opts = append(opts, store.WithTMAUsed(*req.TMAUsed))
		}

		job, err := st.UpdateJob(r.Context(), chi.URLParam(r, "jobID"), opts...)
		if err != nil {
			writeError(w, r, err)
			return
		}
		slog.Info("job updated", "job_id", job.ID, "status", job.Status, "assigned_to", job.AssignedTo)
		response.JSON(w, job)
	}
}

// requireDriver returns a ValidationError unless id names a driver.
func requireDriver(r *http.Request, st store.Store, id string) error {
	u, err := st.GetUser(r.Context(), id)
	if err != nil {
		return &schema.ValidationError{Flow: "updateJob", Field: "assignedTo", Rule: "driver", Err: err}
	}
	if u.Role != models.RoleDriver {
		return &schema.ValidationError{Flow: "updateJob", Field: "assignedTo", Rule: "driver"}
	}
	return nil
}

type appendLogRequest struct {
	Event string `json:"event" validate:"required"`
}

// NewAppendJobLogHandler returns an http.HandlerFunc for POST /api/v1/jobs/{jobID}/log.
func NewAppendJobLogHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appendLogRequest
		if err := decodeBody(w, r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		if !store.ValidLogEvent(req.Event) {
			writeError(w, r, &schema.ValidationError{Flow: "appendJobLog", Field: "event", Rule: "oneof"})
			return
		}

		job, err := st.AppendJobLog(r.Context(), chi.URLParam(r, "jobID"), req.Event)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, job)
	}
}

// jobFlowResult is returned by the job-scoped flow shortcuts. Job is set when
// the result was written back to the job.
type jobFlowResult struct {
	Result any         `json:"result"`
	Job    *models.Job `json:"job,omitempty"`
}

func applyRequested(r *http.Request) bool {
	apply, _ := strconv.ParseBool(r.URL.Query().Get("apply"))
	return apply
}

// NewSuggestDriverHandler returns an http.HandlerFunc for
// POST /api/v1/jobs/{jobID}/suggest-driver. With ?apply=true the suggested
// driver is assigned and the job moves to In Progress.
func NewSuggestDriverHandler(st store.Store, svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := st.GetJob(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		users, err := st.ListUsers(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		pos := job.Position
		suggestion, err := svc.SuggestDriver(r.Context(), flows.SuggestDriverInput{
			Job:     flows.DriverJob{Location: job.Location, VehicleType: job.Vehicle.Type, Position: &pos},
			Drivers: flows.DriverCandidates(users),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := jobFlowResult{Result: suggestion}
		if applyRequested(r) {
			out.Job, err = st.UpdateJob(r.Context(), job.ID,
				store.WithAssignee(suggestion.DriverID),
				store.WithStatus(models.JobStatusInProgress),
			)
			if err != nil {
				writeError(w, r, err)
				return
			}
		}
		response.JSON(w, out)
	}
}

type tripReportRequest struct {
	StartLocation string         `json:"startLocation"`
	Pricing       *flows.Pricing `json:"pricing,omitempty"`
}

// NewTripReportHandler returns an http.HandlerFunc for
// POST /api/v1/jobs/{jobID}/trip-report. The route runs from startLocation via
// the job's location to its destination. With ?apply=true the costs are
// stored on the job.
func NewTripReportHandler(st store.Store, svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tripReportRequest
		if err := decodeBody(w, r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		job, err := st.GetJob(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		report, err := svc.GenerateTripReport(r.Context(), flows.TripReportInput{
			StartLocation:     req.StartLocation,
			BreakdownLocation: job.Location,
			Destination:       job.Destination,
			Pricing:           req.Pricing,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := jobFlowResult{Result: report}
		if applyRequested(r) {
			costs := models.Costs{
				Deductible: report.Costs.Deductible,
				OtherFees:  report.Costs.OtherFees,
				Total:      report.Costs.Total,
			}
			if job.Costs != nil {
				costs.PaidOnSite = job.Costs.PaidOnSite
			}
			out.Job, err = st.UpdateJob(r.Context(), job.ID, store.WithCosts(costs))
			if err != nil {
				writeError(w, r, err)
				return
			}
		}
		response.JSON(w, out)
	}
}

// NewReceiptHandler returns an http.HandlerFunc for POST /api/v1/jobs/{jobID}/receipt.
func NewReceiptHandler(st store.Store, svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := st.GetJob(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		receipt, err := svc.GenerateReceiptMessage(r.Context(), flows.ReceiptInputFromJob(*job))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, jobFlowResult{Result: receipt})
	}
}

// NewInsuranceReportHandler returns an http.HandlerFunc for
// POST /api/v1/jobs/{jobID}/insurance-report.
func NewInsuranceReportHandler(st store.Store, svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := st.GetJob(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		report, err := svc.GenerateInsuranceReport(r.Context(), flows.InsuranceReportInput{Job: *job})
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, jobFlowResult{Result: report})
	}
}

// NewCategorizeHandler returns an http.HandlerFunc for
// POST /api/v1/jobs/{jobID}/categorize. With ?apply=true the category and
// priority are stored on the job.
func NewCategorizeHandler(st store.Store, svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := st.GetJob(r.Context(), chi.URLParam(r, "jobID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		cat, err := svc.CategorizeJob(r.Context(), flows.CategorizeInput{Description: job.Description})
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := jobFlowResult{Result: cat}
		if applyRequested(r) {
			out.Job, err = st.UpdateJob(r.Context(), job.ID, store.WithCategorization(cat.Category, cat.Priority))
			if err != nil {
				writeError(w, r, err)
				return
			}
		}
		response.JSON(w, out)
	}
}
