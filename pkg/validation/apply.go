package validation

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/form"
	"github.com/goliatone/go-dynform/pkg/model"
	"github.com/goliatone/go-dynform/pkg/schema"
)

// LookupDirect finds the control addressed by key at the top of the tree.
func LookupDirect(f *form.Form, key string) *form.Control {
	if f == nil || key == "" {
		return nil
	}
	return f.Get(key)
}

// LookupRelation finds the control addressed by key inside the relations
// namespace.
func LookupRelation(f *form.Form, key string) *form.Control {
	if f == nil || key == "" {
		return nil
	}
	return f.Get(string(schema.LocationLinks)).Get(key)
}

// Lookup tries LookupDirect, then LookupRelation.
func Lookup(f *form.Form, key string) *form.Control {
	if ctrl := LookupDirect(f, key); ctrl != nil {
		return ctrl
	}
	return LookupRelation(f, key)
}

// Apply attaches each error to its control as {key: {message}}, replacing
// the control's previous errors. Errors addressing no control are dropped
// and returned.
func Apply(f *form.Form, errs []model.ValidationError) []model.ValidationError {
	var dropped []model.ValidationError
	for _, e := range errs {
		ctrl := Lookup(f, e.Key)
		if ctrl == nil {
			zap.L().Debug("validation error addresses no control",
				zap.String("key", e.Key),
				zap.String("message", e.Message),
			)
			dropped = append(dropped, e)
			continue
		}
		f.SetControlErrors(ctrl, map[string]model.ErrorDetail{
			e.Key: {Message: e.Message},
		})
	}
	return dropped
}

// Isolated returns key→message for errs, limited to keys when any are given.
func Isolated(errs []model.ValidationError, keys ...string) map[string]string {
	var allowed map[string]struct{}
	if len(keys) > 0 {
		allowed = make(map[string]struct{}, len(keys))
		for _, key := range keys {
			allowed[key] = struct{}{}
		}
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if allowed != nil {
			if _, ok := allowed[e.Key]; !ok {
				continue
			}
		}
		out[e.Key] = e.Message
	}
	return out
}
