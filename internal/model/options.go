package model

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/options"
	"github.com/goliatone/go-dynform/pkg/widgets"
)

// Options configures the behaviour of the Builder. They are assembled by the
// orchestrator and passed into New.
type Options struct {
	Registry *widgets.Registry
	// LoaderOptions are applied to every option loader the builder creates.
	LoaderOptions []options.LoaderOption
	Labeler       func(string) string
	Logger        *zap.Logger
}

func defaultOptions() Options {
	return Options{
		Labeler: DefaultLabeler,
	}
}
