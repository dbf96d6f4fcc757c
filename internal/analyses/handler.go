package analyses

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-match-api/internal/llm"
	"resume-match-api/internal/shared/metrics"
	"resume-match-api/internal/shared/server/middleware"
	"resume-match-api/internal/shared/server/respond"
	"resume-match-api/internal/shared/telemetry"
)

const (
	maxBodyBytes = 1 << 20
	outcomeKey   = "analysisOutcome"
)

// Handler serves the analyze endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the analyze route. Every method is routed here so
// non-POST requests get the JSON 405 body.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.Any("/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		respond.Error(c, http.StatusMethodNotAllowed, "method_not_allowed", msgMethodNotAllowed)
		return
	}

	if !h.Svc.Configured() {
		c.Set(outcomeKey, OutcomeNotConfigured)
		metrics.IncAnalyzeFailed(OutcomeNotConfigured)
		respond.Error(c, http.StatusInternalServerError, "configuration_error", msgMissingAPIKey)
		return
	}

	var req AnalyzeRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := decodeBody(c.Request.Body, &req); err != nil {
		c.Set(outcomeKey, OutcomeInvalidInput)
		telemetry.Warn("analysis.invalid_body", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"err":        err.Error(),
		})
		respond.Error(c, http.StatusBadRequest, "validation_error", msgInvalidBody)
		return
	}
	if missing := MissingFields(req.Role, req.ResumeText); len(missing) > 0 {
		c.Set(outcomeKey, OutcomeInvalidInput)
		telemetry.Warn("analysis.missing_fields", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"fields":     missing,
		})
		respond.Error(c, http.StatusBadRequest, "validation_error", msgMissingFields)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	rec, err := h.Svc.Analyze(ctx, req.Role, req.ResumeText)
	if err != nil {
		status, code, msg, outcome := classify(err)
		c.Set(outcomeKey, outcome)
		respond.Error(c, status, code, msg)
		return
	}

	c.Set(outcomeKey, OutcomeCompleted)
	respond.OK(c, rec)
}

func classify(err error) (status int, code, message, outcome string) {
	var malformed *MalformedResponseError
	switch {
	case errors.Is(err, ErrGatewayNotConfigured):
		return http.StatusInternalServerError, "configuration_error", msgMissingAPIKey, OutcomeNotConfigured
	case errors.Is(err, ErrMissingInput):
		return http.StatusBadRequest, "validation_error", msgMissingFields, OutcomeInvalidInput
	case errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusInternalServerError, "empty_response", msgEmptyResponse, OutcomeEmptyResponse
	case errors.As(err, &malformed):
		return http.StatusInternalServerError, "malformed_response", msgMalformed, OutcomeMalformedReply
	default:
		return http.StatusInternalServerError, "gateway_error", msgAnalyzeFailed, OutcomeGatewayError
	}
}

// decodeBody decodes exactly one JSON value; trailing content is an error.
func decodeBody(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected content after json body")
	}
	return nil
}
