// Package form keeps the live state of a rendered form: one control per
// field key, nested by the dotted key segments, holding the current value and
// the validation errors attached to it.
package form

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-dynform/pkg/model"
)

// Control is one node of the control tree. Leaf controls hold a value;
// group controls hold children.
type Control struct {
	key      string
	name     string
	value    any
	hidden   bool
	errors   map[string]model.ErrorDetail
	children map[string]*Control
	order    []string
}

// Key returns the full dotted key of the control.
func (c *Control) Key() string {
	if c == nil {
		return ""
	}
	return c.key
}

// IsGroup reports whether the control has children.
func (c *Control) IsGroup() bool {
	return c != nil && c.children != nil
}

// Get returns the direct child called name, or nil.
func (c *Control) Get(name string) *Control {
	if c == nil || c.children == nil {
		return nil
	}
	return c.children[name]
}

// Value returns the current value of a leaf control.
func (c *Control) Value() any {
	if c == nil {
		return nil
	}
	return c.value
}

// Hidden reports whether the field behind the control is hidden.
func (c *Control) Hidden() bool {
	return c != nil && c.hidden
}

// Errors returns a copy of the attached errors.
func (c *Control) Errors() map[string]model.ErrorDetail {
	if c == nil || len(c.errors) == 0 {
		return nil
	}
	out := make(map[string]model.ErrorDetail, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Invalid reports whether the control or any descendant carries errors.
func (c *Control) Invalid() bool {
	if c == nil {
		return false
	}
	if len(c.errors) > 0 {
		return true
	}
	for _, name := range c.order {
		if c.children[name].Invalid() {
			return true
		}
	}
	return false
}

func (c *Control) child(name string) *Control {
	if c.children == nil {
		c.children = make(map[string]*Control)
	}
	if existing, ok := c.children[name]; ok {
		return existing
	}
	key := name
	if c.key != "" {
		key = c.key + "." + name
	}
	next := &Control{key: key, name: name}
	c.children[name] = next
	c.order = append(c.order, name)
	return next
}

func (c *Control) raw() any {
	if c.children == nil {
		return c.value
	}
	out := make(map[string]any, len(c.children))
	for _, name := range c.order {
		out[name] = c.children[name].raw()
	}
	return out
}

func (c *Control) walk(fn func(*Control)) {
	fn(c)
	for _, name := range c.order {
		c.children[name].walk(fn)
	}
}

// Form is the live control tree of one rendered form. It is safe for
// concurrent use.
type Form struct {
	mu        sync.RWMutex
	root      *Control
	submitted bool
}

// New builds the control tree for fields, seeding values from data. Group
// nodes are transparent: their members become controls at their own keys.
func New(fields []model.FieldConfig, data map[string]any) *Form {
	f := &Form{root: &Control{children: make(map[string]*Control)}}
	f.add(fields, data)
	return f
}

func (f *Form) add(fields []model.FieldConfig, data map[string]any) {
	for _, field := range fields {
		if field.IsGroup() {
			f.add(field.FieldGroup, data)
			continue
		}
		if field.Key == "" {
			continue
		}
		ctrl := f.root
		for _, segment := range strings.Split(field.Key, ".") {
			ctrl = ctrl.child(segment)
		}
		ctrl.hidden = field.Hide
		if value, ok := lookup(data, field.Key); ok {
			ctrl.value = value
		}
	}
}

// Get resolves a dotted path to its control, or nil.
func (f *Form) Get(path string) *Control {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.get(path)
}

func (f *Form) get(path string) *Control {
	if path == "" {
		return nil
	}
	ctrl := f.root
	for _, segment := range strings.Split(path, ".") {
		ctrl = ctrl.Get(segment)
		if ctrl == nil {
			return nil
		}
	}
	return ctrl
}

// SetValue replaces the value of the control at path. It reports false when
// no leaf control exists there.
func (f *Form) SetValue(path string, value any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ctrl := f.get(path)
	if ctrl == nil || ctrl.IsGroup() {
		return false
	}
	ctrl.value = value
	return true
}

// SetErrors replaces the errors attached to the control at path.
func (f *Form) SetErrors(path string, errs map[string]model.ErrorDetail) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ctrl := f.get(path)
	if ctrl == nil {
		return false
	}
	if len(errs) == 0 {
		ctrl.errors = nil
		return true
	}
	ctrl.errors = make(map[string]model.ErrorDetail, len(errs))
	for k, v := range errs {
		ctrl.errors[k] = v
	}
	return true
}

// SetControlErrors attaches errs to ctrl, which must belong to this form.
func (f *Form) SetControlErrors(ctrl *Control, errs map[string]model.ErrorDetail) {
	if ctrl == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ctrl.errors = make(map[string]model.ErrorDetail, len(errs))
	for k, v := range errs {
		ctrl.errors[k] = v
	}
}

// ClearErrors removes every attached error.
func (f *Form) ClearErrors() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.root.walk(func(c *Control) { c.errors = nil })
}

// Errors lists the attached errors keyed by control key.
func (f *Form) Errors() map[string]map[string]model.ErrorDetail {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]map[string]model.ErrorDetail)
	f.root.walk(func(c *Control) {
		if len(c.errors) > 0 {
			out[c.key] = c.Errors()
		}
	})
	return out
}

// Invalid reports whether the control at key carries errors.
func (f *Form) Invalid(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.get(key).Invalid()
}

// Valid reports whether no control carries errors.
func (f *Form) Valid() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.root.Invalid()
}

// MarkSubmitted flags the form as submitted.
func (f *Form) MarkSubmitted() {
	f.mu.Lock()
	f.submitted = true
	f.mu.Unlock()
}

// Submitted reports whether the form was submitted.
func (f *Form) Submitted() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitted
}

// Keys lists the leaf control keys in sorted order.
func (f *Form) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var keys []string
	f.root.walk(func(c *Control) {
		if c != f.root && !c.IsGroup() {
			keys = append(keys, c.key)
		}
	})
	sort.Strings(keys)
	return keys
}

// RawValue returns the nested value map of every control.
func (f *Form) RawValue() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out, _ := f.root.raw().(map[string]any)
	return out
}

// ExpressionContext exposes the live state to field expressions.
func (f *Form) ExpressionContext() model.ExpressionContext {
	return model.ExpressionContext{
		Model:     f.RawValue(),
		Submitted: f.Submitted(),
		Invalid:   f.Invalid,
	}
}

func lookup(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
