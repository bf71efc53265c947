package logging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type operationCtxKey struct{}

type operation struct {
	name string
	id   string
}

// WithOperation tags ctx with an operation name and a fresh id so every log
// line emitted while serving one user action can be correlated.
func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationCtxKey{}, operation{name: name, id: uuid.NewString()})
}

// OperationFromContext returns the operation name and id, if any.
func OperationFromContext(ctx context.Context) (name, id string, ok bool) {
	if ctx == nil {
		return "", "", false
	}
	op, ok := ctx.Value(operationCtxKey{}).(operation)
	return op.name, op.id, ok
}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if name, id, ok := OperationFromContext(ctx); ok {
		fields = append(fields,
			zap.String("op", name),
			zap.String("op.id", id),
		)
	}
	return fields
}
