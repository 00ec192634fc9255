package middleware

import (
	"net/http"
	"strings"

	"github.com/storelinkhq/storelink-backend/api/responses"
	pkgauth "github.com/storelinkhq/storelink-backend/pkg/auth"
	"github.com/storelinkhq/storelink-backend/pkg/config"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the owner
// and, when present, the acting agent.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithOwnerID(r.Context(), claims.OwnerID.String())
			if claims.AgentID != "" {
				ctx = WithAgentID(ctx, claims.AgentID)
			}

			if logg != nil {
				ctx = logg.WithOwnerID(ctx, claims.OwnerID.String())
				if claims.AgentID != "" {
					ctx = logg.WithAgentID(ctx, claims.AgentID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
