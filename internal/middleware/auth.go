package middleware

import (
	"context"
	"net/http"
	"strings"

	"prize_wheel/pkg/resp"
	"prize_wheel/pkg/token"
)

type ctxKey struct{}

// Auth - requires "Authorization: Bearer <token>" and puts the session ID
// from the token subject into the request context. Browsers cannot set
// headers on websocket upgrades, so the token may also come as ?token=.
func Auth(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r)
			if len(raw) == 0 {
				resp.WriteError(w, http.StatusUnauthorized, "missing access token")
				return
			}

			claims, err := token.VerifyToken(raw, secretKey)
			if err != nil {
				resp.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), claims.Subject)))
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return r.URL.Query().Get("token")
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && len(id) > 0
}
