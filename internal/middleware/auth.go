package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"classroom_service/internal/auth"
	"classroom_service/internal/gate"
	"classroom_service/pkg/ctxdata"
	"classroom_service/pkg/logging"
)

// RequireRoles resolves the caller's credential through the authenticator and
// runs the access gate against the declared role set. A denial never reaches
// the wrapped handler and never surfaces as an error payload; it resolves to
// a redirect toward the gate's deny destination, with the unauthenticated/
// forbidden distinction kept in the logs.
func RequireRoles(g *gate.Gate, authenticator auth.Authenticator, requiredRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			credential := auth.CredentialFromHeader(r.Header.Get("Authorization"))

			role := ""
			var principal *auth.Principal
			if credential != "" {
				p, err := authenticator.Authenticate(ctx, credential)
				if err != nil {
					// An unresolvable token is as good as no token.
					credential = ""
				} else {
					principal = p
					role = p.Role
				}
			}

			decision := g.Evaluate(credential, role, requiredRoles)
			if !decision.Allowed() {
				if logger, ok := logging.GetFromContext(ctx); ok {
					logger.Info(ctx, "access denied",
						zap.String("path", r.URL.Path),
						zap.String("decision", decision.String()),
					)
				}
				http.Redirect(w, r, g.RedirectTarget(decision), http.StatusSeeOther)
				return
			}

			ctx = ctxdata.WithUserID(ctx, principal.UserID.String())
			ctx = ctxdata.WithUserRole(ctx, principal.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
