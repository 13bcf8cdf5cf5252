package httpapi

import (
	"context"
	"errors"
	"net/http"

	gojson "github.com/goccy/go-json"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/components/values"
	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/groups"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/options"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/schema"
	"github.com/goliatone/go-dynform/pkg/submission"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// Option customises the API handler.
type Option func(*Handler)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithValues mounts allowed-values endpoints next to the API.
func WithValues(endpoints ...*values.Endpoint) Option {
	return func(h *Handler) {
		for _, e := range endpoints {
			if e != nil {
				h.values = append(h.values, e)
			}
		}
	}
}

// Handler serves the form engine endpoints.
type Handler struct {
	orch   *orchestrator.Orchestrator
	logger *zap.Logger
	values []*values.Endpoint
}

// New builds a Handler around orch.
func New(orch *orchestrator.Orchestrator, opts ...Option) *Handler {
	if orch == nil {
		orch = orchestrator.New()
	}
	h := &Handler{orch: orch, logger: zap.L()}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// NewRouter returns a chi router with the API registered at the root.
func NewRouter(orch *orchestrator.Orchestrator, opts ...Option) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	New(orch, opts...).RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/forms", func(r chi.Router) {
		r.Post("/config", h.buildConfig)
		r.Post("/model", h.formatModel)
		r.Post("/options", h.loadOptions)
		r.Post("/errors", h.applyErrors)
		r.Post("/submission", h.formatSubmission)
	})
	for _, e := range h.values {
		e.Mount(r)
		h.logger.Debug("httpapi: mounted values endpoint", zap.String("path", e.Path()))
	}
}

type formRequest struct {
	Schema  gojson.RawMessage   `json:"schema"`
	Payload map[string]any      `json:"payload"`
	Groups  []groups.Definition `json:"groups,omitempty"`
}

type configRequest struct {
	formRequest
	ResolveOptions bool `json:"resolveOptions"`
}

type configResponse struct {
	Fields  []model.FieldConfig            `json:"fields"`
	Model   map[string]any                 `json:"model"`
	Options map[string][]model.OptionEntry `json:"options,omitempty"`
}

type optionsRequest struct {
	formRequest
	Key   string `json:"key"`
	Query string `json:"query"`
}

type optionsResponse struct {
	Key         string              `json:"key"`
	Elements    []model.OptionEntry `json:"elements"`
	FullyLoaded bool                `json:"fullyLoaded"`
}

type errorsRequest struct {
	formRequest
	Errors gojson.RawMessage `json:"errors"`
}

type errorsResponse struct {
	Errors  map[string]map[string]model.ErrorDetail `json:"errors"`
	Dropped []model.ValidationError                 `json:"dropped"`
}

func (h *Handler) buildConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields, ok := h.build(r.Context(), w, req.formRequest)
	if !ok {
		return
	}

	resp := configResponse{Fields: fields, Model: h.orch.GetModel(req.Payload)}
	if req.ResolveOptions {
		resolved, err := h.orch.ResolveOptions(r.Context(), fields)
		if err != nil {
			h.fetchFailed(w, r, err)
			return
		}
		resp.Options = resolved
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) formatModel(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if !decodeJSON(w, r, &payload) {
		return
	}
	writeJSON(w, http.StatusOK, h.orch.GetModel(payload))
}

func (h *Handler) loadOptions(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields, ok := h.build(r.Context(), w, req.formRequest)
	if !ok {
		return
	}

	for _, field := range groups.Flatten(fields) {
		if field.Key != req.Key {
			continue
		}
		if field.Options == nil {
			writeError(w, http.StatusUnprocessableEntity, "NO_OPTIONS", "field has no allowed values: "+req.Key)
			return
		}
		entries, err := field.Options.Load(r.Context(), req.Query)
		if err != nil {
			h.fetchFailed(w, r, err)
			return
		}
		resp := optionsResponse{Key: field.Key, Elements: entries}
		if loader, ok := field.Options.(interface{ FullyLoaded() bool }); ok {
			resp.FullyLoaded = loader.FullyLoaded()
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeError(w, http.StatusNotFound, "UNKNOWN_FIELD", "unknown field: "+req.Key)
}

func (h *Handler) applyErrors(w http.ResponseWriter, r *http.Request) {
	var req errorsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields, ok := h.build(r.Context(), w, req.formRequest)
	if !ok {
		return
	}
	wire, err := validation.Decode(req.Errors)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ERRORS", err.Error())
		return
	}

	f := form.New(fields, h.orch.GetModel(req.Payload))
	dropped := validation.Apply(f, validation.Format(wire))
	if dropped == nil {
		dropped = []model.ValidationError{}
	}
	writeJSON(w, http.StatusOK, errorsResponse{Errors: f.Errors(), Dropped: dropped})
}

func (h *Handler) formatSubmission(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if !decodeJSON(w, r, &payload) {
		return
	}
	writeJSON(w, http.StatusOK, submission.FormatModel(payload))
}

func (h *Handler) build(ctx context.Context, w http.ResponseWriter, req formRequest) ([]model.FieldConfig, bool) {
	if len(req.Schema) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_SCHEMA", "schema is required")
		return nil, false
	}
	doc, err := schema.Parse(req.Schema)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SCHEMA", err.Error())
		return nil, false
	}
	fields, err := h.orch.GetConfig(ctx, doc, req.Payload, groups.Configs(req.Groups)...)
	if err != nil {
		h.logger.Error("httpapi: build config", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "CONFIG_FAILED", err.Error())
		return nil, false
	}
	return fields, true
}

func (h *Handler) fetchFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("httpapi: option fetch failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	)
	var fetchErr *options.FetchError
	if errors.As(err, &fetchErr) {
		writeError(w, http.StatusBadGateway, "FETCH_FAILED", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "OPTIONS_FAILED", err.Error())
}
