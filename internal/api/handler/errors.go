package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/rescueassist/internal/ai"
	"github.com/kiranshivaraju/rescueassist/internal/api/response"
	"github.com/kiranshivaraju/rescueassist/internal/schema"
	"github.com/kiranshivaraju/rescueassist/internal/store"
)

// statusClientClosedRequest is the nginx convention for a caller that went away.
const statusClientClosedRequest = 499

// writeError maps flow, store and provider errors onto the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *schema.ValidationError
		merr *schema.OutputMismatchError
		terr *ai.TransportError
	)
	switch {
	case errors.As(err, &verr):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", verr.Error(), map[string]string{
			"flow":  verr.Flow,
			"field": verr.Field,
			"rule":  verr.Rule,
		})
	case errors.Is(err, schema.ErrUnknownFlow):
		response.Error(w, http.StatusNotFound, "FLOW_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "RESOURCE_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, store.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.As(err, &merr):
		slog.Warn("model output mismatch", "flow", merr.Flow, "details", merr.Details)
		response.Error(w, http.StatusBadGateway, "AI_OUTPUT_MISMATCH",
			"The AI answer did not match the expected format", merr.Details)
	case errors.Is(err, ai.ErrCanceled):
		slog.Info("request canceled by client", "method", r.Method, "path", r.URL.Path)
		response.Error(w, statusClientClosedRequest, "REQUEST_CANCELED",
			"The request was cancelled before the AI call finished", nil)
	case errors.Is(err, ai.ErrInferenceTimeout):
		response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
			"The AI call took too long and was cancelled", nil)
	case errors.Is(err, ai.ErrUnsupportedMedia), errors.Is(err, ai.ErrMediaWithTools):
		response.Error(w, http.StatusUnprocessableEntity, "UNSUPPORTED_MEDIA", err.Error(), nil)
	case errors.As(err, &terr), errors.Is(err, ai.ErrProviderUnavailable):
		response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
			"The AI provider is not available", nil)
	case errors.Is(err, ai.ErrInvalidResponse):
		response.Error(w, http.StatusBadGateway, "AI_INVALID_RESPONSE",
			"The AI provider returned an unusable response", nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
