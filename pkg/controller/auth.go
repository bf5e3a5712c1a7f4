package controller

import (
	"context"
	"net/http"
	"shoptogether/pkg/serrors"
	"strings"
)

// Verifier validates a bearer token and returns its subject.
type Verifier interface {
	Verify(token string) (string, error)
}

type subjectKey struct{}

// Subject returns the authenticated subject of the request, or "".
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)

	return s
}

// WithSubject stores an authenticated subject in ctx.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// RequireBearer rejects requests without a valid "Authorization: Bearer" token
// and stores the token subject for next.
func RequireBearer(v Verifier, next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			return serrors.With(serrors.ErrUnauthorized, "authentication required")
		}

		subject, err := v.Verify(strings.TrimSpace(raw))
		if err != nil {
			return serrors.Wrap(serrors.ErrUnauthorized, err, "invalid or expired token")
		}

		return next(w, r.WithContext(WithSubject(r.Context(), subject)))
	}
}
