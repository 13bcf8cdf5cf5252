package model

// Decorator post-processes an assembled field tree before it is handed to
// renderers.
type Decorator interface {
	Decorate(fields []FieldConfig) ([]FieldConfig, error)
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(fields []FieldConfig) ([]FieldConfig, error)

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(fields []FieldConfig) ([]FieldConfig, error) {
	return fn(fields)
}
