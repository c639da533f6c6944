package middleware

import (
	"net/http"

	"github.com/angelmondragon/narkk-storefront/internal/session"
	"github.com/angelmondragon/narkk-storefront/pkg/logger"
)

// Session attaches the visitor's session id to the request context, issuing
// a signed cookie on first contact.
func Session(codec *session.Codec, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, issued := codec.Resolve(w, r)

			ctx := session.WithID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
				if issued {
					logg.Debug(ctx, "session.issued")
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
