package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/rescueassist/internal/api/response"
	"github.com/kiranshivaraju/rescueassist/internal/flows"
	"github.com/kiranshivaraju/rescueassist/internal/schema"
)

// maxBodyBytes bounds request bodies. Photo and audio data URIs are the largest inputs.
const maxBodyBytes = 16 << 20

// FlowService is the flow surface the handlers depend on. *flows.Service satisfies it.
type FlowService interface {
	Registry() *schema.Registry
	Run(ctx context.Context, name string, raw json.RawMessage) (any, error)

	GenerateTripReport(ctx context.Context, in flows.TripReportInput) (flows.TripReport, error)
	GenerateReceiptMessage(ctx context.Context, in flows.ReceiptInput) (flows.Receipt, error)
	GenerateInsuranceReport(ctx context.Context, in flows.InsuranceReportInput) (flows.Report, error)
	GenerateDashboardReport(ctx context.Context, in flows.DashboardReportInput) (flows.DashboardReport, error)
	SuggestDriver(ctx context.Context, in flows.SuggestDriverInput) (flows.DriverSuggestion, error)
	CategorizeJob(ctx context.Context, in flows.CategorizeInput) (flows.Categorization, error)
	ExtractSearchFilters(ctx context.Context, in flows.SearchInput) (flows.SearchFilters, error)
}

var _ FlowService = (*flows.Service)(nil)

type flowInfo struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Cacheable    bool            `json:"cacheable"`
	Tools        []string        `json:"tools,omitempty"`
	InputSchema  json.RawMessage `json:"inputSchema"`
	OutputSchema json.RawMessage `json:"outputSchema"`
}

// NewListFlowsHandler returns an http.HandlerFunc for GET /api/v1/flows.
func NewListFlowsHandler(svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specs := svc.Registry().List()
		out := make([]flowInfo, 0, len(specs))
		for _, s := range specs {
			info := flowInfo{
				Name:         s.Name,
				Description:  s.Description,
				Cacheable:    s.Cacheable,
				InputSchema:  s.InputSchema,
				OutputSchema: s.OutputSchema,
			}
			for _, t := range s.Tools {
				info.Tools = append(info.Tools, t.Name)
			}
			out = append(out, info)
		}
		response.Collection(w, out, response.CollectionMeta{Total: len(out)})
	}
}

// NewRunFlowHandler returns an http.HandlerFunc for POST /api/v1/flows/{name}.
func NewRunFlowHandler(svc FlowService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if _, err := svc.Registry().Get(name); err != nil {
			writeError(w, r, err)
			return
		}

		raw, err := readBody(w, r)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}

		out, err := svc.Run(r.Context(), name, raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, out)
	}
}

// readBody returns the request body as JSON. An empty body reads as {}.
func readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("request body too large")
		}
		return nil, errors.New("could not read request body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(body) {
		return nil, errors.New("invalid JSON body")
	}
	return body, nil
}

// decodeBody decodes an optional JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	raw, err := readBody(w, r)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}
