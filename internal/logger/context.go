package logger

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	scopeKey contextKey = iota
	loggerKey
)

// scope is the set of correlation values carried on a context. It is copied on
// every change so parent contexts never see child fields.
type scope struct {
	requestID string
	userID    string
	fields    []Field
}

func scopeFrom(ctx context.Context) scope {
	if s, ok := ctx.Value(scopeKey).(scope); ok {
		return s
	}
	return scope{}
}

func (s scope) with(update func(*scope)) scope {
	next := scope{requestID: s.requestID, userID: s.userID}
	next.fields = append(make([]Field, 0, len(s.fields)), s.fields...)
	update(&next)
	return next
}

// WithRequestID adds a request ID to the context.
// If requestID is empty, a new UUID is generated.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return context.WithValue(ctx, scopeKey, scopeFrom(ctx).with(func(s *scope) { s.requestID = requestID }))
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// WithUserID adds a user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, scopeKey, scopeFrom(ctx).with(func(s *scope) { s.userID = userID }))
}

// UserIDFromContext extracts the user ID from context
func UserIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).userID
}

// WithFields attaches fields that Ctx adds to every entry logged with ctx,
// such as the habit being recomputed or the kind of background run.
func WithFields(ctx context.Context, fields ...Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	return context.WithValue(ctx, scopeKey, scopeFrom(ctx).with(func(s *scope) { s.fields = append(s.fields, fields...) }))
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context, or returns the default logger
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

func extractContextFields(ctx context.Context) []Field {
	s := scopeFrom(ctx)
	fields := make([]Field, 0, 2+len(s.fields))
	if s.requestID != "" {
		fields = append(fields, String("request_id", s.requestID))
	}
	if s.userID != "" {
		fields = append(fields, String("user_id", s.userID))
	}
	return append(fields, s.fields...)
}

// Ctx returns the context's logger enriched with its correlation fields
func Ctx(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
