package submission

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/validation"
)

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service submits forms and maps validation answers back onto them.
type Service struct {
	transport Transport
	logger    *zap.Logger
}

// NewService builds a Service on transport.
func NewService(transport Transport, opts ...ServiceOption) *Service {
	s := &Service{transport: transport, logger: zap.L()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit sends the form. With a resource id the model is PATCHed to
// endpoint/id; otherwise it is sent to endpoint with method, POST by
// default. A 422 answer is applied to the form and returned as a
// *ValidationFailure; other errors are returned unchanged.
func (s *Service) Submit(ctx context.Context, f *form.Form, endpoint, resourceID, method string) ([]byte, error) {
	f.MarkSubmitted()
	payload := FormatModel(f.RawValue())

	var (
		body []byte
		err  error
	)
	if resourceID != "" {
		body, err = s.transport.Update(ctx, strings.TrimSuffix(endpoint, "/")+"/"+resourceID, payload)
	} else {
		method = strings.ToUpper(strings.TrimSpace(method))
		switch method {
		case "":
			method = http.MethodPost
		case http.MethodPost, http.MethodPatch:
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
		}
		body, err = s.transport.Create(ctx, endpoint, method, payload)
	}
	if err == nil {
		return body, nil
	}

	var status *StatusError
	if !errors.As(err, &status) || status.Code != http.StatusUnprocessableEntity {
		return nil, err
	}
	wire, derr := validation.Decode(status.Body)
	if derr != nil {
		s.logger.Warn("undecodable validation response", zap.String("url", status.URL), zap.Error(derr))
		return nil, err
	}
	errs := validation.Format(wire)
	if dropped := validation.Apply(f, errs); len(dropped) > 0 {
		s.logger.Debug("validation errors without control", zap.Int("count", len(dropped)))
	}
	return nil, &ValidationFailure{Errors: errs, Err: err}
}

// Validate asks endpoint/form to validate the current model and applies the
// returned validation errors to the form.
func (s *Service) Validate(ctx context.Context, f *form.Form, endpoint string) ([]model.ValidationError, error) {
	body, err := s.transport.Create(ctx, strings.TrimSuffix(endpoint, "/")+"/form", http.MethodPost, FormatModel(f.RawValue()))
	if err != nil {
		return nil, err
	}
	wire, err := validation.DecodeValidationErrors(body)
	if err != nil {
		return nil, err
	}
	errs := validation.Format(wire)
	validation.Apply(f, errs)
	return errs, nil
}

// IsolatedErrors validates values against endpoint without touching any form
// and returns key→message, limited to keys when given.
func (s *Service) IsolatedErrors(ctx context.Context, values map[string]any, endpoint string, keys ...string) (map[string]string, error) {
	body, err := s.transport.Create(ctx, endpoint, http.MethodPost, FormatModel(values))
	if err != nil {
		return nil, err
	}
	wire, err := validation.DecodeValidationErrors(body)
	if err != nil {
		return nil, err
	}
	return validation.Isolated(validation.Format(wire), keys...), nil
}
