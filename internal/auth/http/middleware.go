package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sableforge/authd/internal/auth/domain"
	"github.com/sableforge/authd/pkg/jwtx"
)

type ctxKey int

const ctxKeyIdentity ctxKey = iota

// identityFrom returns the identity injected by requireBearer.
func identityFrom(ctx context.Context) (jwtx.Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(jwtx.Identity)
	return id, ok
}

// requireBearer authenticates the request with a bearer access token. Tokens
// still pending a 2FA check are refused: a temp token must not operate the
// 2FA toggles it exists to satisfy.
func requireBearer(codec *jwtx.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeError(w, r, domain.Unauthorizedf("Not authenticated"))
				return
			}

			claims, err := codec.Decode(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					writeError(w, r, domain.Unauthorizedf("Token has expired"))
					return
				}
				writeError(w, r, domain.Unauthorizedf("Invalid token"))
				return
			}

			if claims.MFAPending {
				writeError(w, r, domain.Unauthorizedf("Invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
