package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-dynform/pkg/model"
)

// ErrEmptyBody is returned when an error response carries no body.
var ErrEmptyBody = errors.New("validation: empty error body")

// WireError is one error resource as returned by the API.
type WireError struct {
	Type            string `json:"_type,omitempty"`
	ErrorIdentifier string `json:"errorIdentifier,omitempty"`
	Message         string `json:"message"`
	Embedded        struct {
		Details struct {
			Attribute string `json:"attribute"`
		} `json:"details"`
	} `json:"_embedded"`
}

// Attribute returns the attribute the error is about.
func (e WireError) Attribute() string {
	return e.Embedded.Details.Attribute
}

// NewWireError builds a wire error for attribute.
func NewWireError(attribute, message string) WireError {
	var e WireError
	e.Type = "Error"
	e.ErrorIdentifier = "urn:openproject-org:api:v3:errors:PropertyConstraintViolation"
	e.Message = message
	e.Embedded.Details.Attribute = attribute
	return e
}

type envelope struct {
	Type            string `json:"_type,omitempty"`
	ErrorIdentifier string `json:"errorIdentifier,omitempty"`
	Message         string `json:"message"`
	Embedded        struct {
		Errors           []WireError          `json:"errors"`
		ValidationErrors map[string]WireError `json:"validationErrors"`
		Details          struct {
			Attribute string `json:"attribute"`
		} `json:"details"`
	} `json:"_embedded"`
}

// Decode reads a 422 body. A multiple-errors envelope yields its embedded
// errors, a bare array is taken as the error list, and any other body is
// treated as a single error.
func Decode(body []byte) ([]WireError, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, ErrEmptyBody
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []WireError
		if err := gojson.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("validation: decode error list: %w", err)
		}
		return list, nil
	}
	var env envelope
	if err := gojson.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("validation: decode error body: %w", err)
	}
	if env.Embedded.Errors != nil {
		return env.Embedded.Errors, nil
	}
	single := WireError{
		Type:            env.Type,
		ErrorIdentifier: env.ErrorIdentifier,
		Message:         env.Message,
	}
	single.Embedded.Details.Attribute = env.Embedded.Details.Attribute
	return []WireError{single}, nil
}

// DecodeValidationErrors reads the validationErrors map of a form
// validation response, ordered by attribute.
func DecodeValidationErrors(body []byte) ([]WireError, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyBody
	}
	var env envelope
	if err := gojson.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("validation: decode validation errors: %w", err)
	}
	keys := make([]string, 0, len(env.Embedded.ValidationErrors))
	for key := range env.Embedded.ValidationErrors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]WireError, 0, len(keys))
	for _, key := range keys {
		out = append(out, env.Embedded.ValidationErrors[key])
	}
	return out, nil
}

// Format turns wire errors into key/message pairs.
func Format(wire []WireError) []model.ValidationError {
	out := make([]model.ValidationError, 0, len(wire))
	for _, e := range wire {
		out = append(out, model.ValidationError{Key: e.Attribute(), Message: e.Message})
	}
	return out
}
