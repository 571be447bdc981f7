package simulation

import (
	"log/slog"

	"github.com/ja7ad/uepsim/pkg/decoder"
)

type options struct {
	factory decoder.Factory
	logger  *slog.Logger
	workers int
}

// Option customizes an Engine or a Runner.
type Option func(*options)

// WithDecoder sets the decoder factory. The default is decoder.NewPeeling.
func WithDecoder(f decoder.Factory) Option {
	return func(o *options) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers sets the number of parallel workers of a Runner. Values <= 0
// fall back to Config.Workers and then to runtime.NumCPU().
func WithWorkers(p int) Option {
	return func(o *options) { o.workers = p }
}

func buildOptions(opts []Option) options {
	o := options{
		factory: decoder.NewPeeling,
		logger:  slog.Default(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
