package logging

import "context"

type fieldsKey struct{}

// WithFields returns a copy of ctx carrying key-value pairs. Every Logger
// method called with that context, or one derived from it, appends them to
// the record before its own args.
func WithFields(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := fields(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

func fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(fieldsKey{}).([]any)
	return v
}

// withFields prepends the fields carried by ctx to args.
func withFields(ctx context.Context, args []any) []any {
	f := fields(ctx)
	if len(f) == 0 {
		return args
	}
	out := make([]any, 0, len(f)+len(args))
	out = append(out, f...)
	return append(out, args...)
}
