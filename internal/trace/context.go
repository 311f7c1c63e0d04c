package trace

import "context"

type tracerKey struct{}

// WithTracer returns ctx carrying t; a nil t is stored as Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}
