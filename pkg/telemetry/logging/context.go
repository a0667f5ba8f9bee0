package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// DocumentKey is the context key for the property document path.
	DocumentKey contextKey = "document"

	// PropertyIDKey is the context key for property identifiers.
	PropertyIDKey contextKey = "property_id"

	// SetVersionKey is the context key for the property-set fingerprint.
	SetVersionKey contextKey = "set_version"
)

// WithDocument adds a document path to the context.
func WithDocument(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, DocumentKey, path)
}

// GetDocument retrieves the document path from the context.
func GetDocument(ctx context.Context) string {
	if path, ok := ctx.Value(DocumentKey).(string); ok {
		return path
	}
	return ""
}

// WithPropertyID adds a property identifier to the context.
func WithPropertyID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, PropertyIDKey, id)
}

// GetPropertyID retrieves the property identifier from the context.
func GetPropertyID(ctx context.Context) string {
	if id, ok := ctx.Value(PropertyIDKey).(string); ok {
		return id
	}
	return ""
}

// WithSetVersion adds a property-set fingerprint to the context.
func WithSetVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, SetVersionKey, version)
}

// GetSetVersion retrieves the property-set fingerprint from the context.
func GetSetVersion(ctx context.Context) string {
	if version, ok := ctx.Value(SetVersionKey).(string); ok {
		return version
	}
	return ""
}

// ContextFields extracts known fields from the context as key-value
// pairs suitable for slog's With.
func ContextFields(ctx context.Context) []any {
	var fields []any
	if path := GetDocument(ctx); path != "" {
		fields = append(fields, string(DocumentKey), path)
	}
	if id := GetPropertyID(ctx); id != "" {
		fields = append(fields, string(PropertyIDKey), id)
	}
	if version := GetSetVersion(ctx); version != "" {
		fields = append(fields, string(SetVersionKey), version)
	}
	return fields
}
