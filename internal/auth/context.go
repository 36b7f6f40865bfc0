package auth

import "context"

type contextKey string

const (
	contextKeySubject contextKey = "auth.subject"
	contextKeyEmail   contextKey = "auth.email"
)

// WithIdentity stores the authenticated subject in context.
func WithIdentity(ctx context.Context, subjectID, email string) context.Context {
	ctx = context.WithValue(ctx, contextKeySubject, subjectID)
	ctx = context.WithValue(ctx, contextKeyEmail, email)
	return ctx
}

// SubjectFromContext extracts the authenticated subject id.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subjectID, ok := ctx.Value(contextKeySubject).(string); ok {
		return subjectID
	}
	return ""
}

// EmailFromContext extracts the authenticated email.
func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if email, ok := ctx.Value(contextKeyEmail).(string); ok {
		return email
	}
	return ""
}
