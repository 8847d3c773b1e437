package middleware

import (
	"net/http"
	"strings"

	"gitea.com/go-chi/session"

	"github.com/mhollis/practicum-tracker/models"
	"github.com/mhollis/practicum-tracker/userctx"
)

// Session keys written by the auth callback
const (
	SessionPrincipalID    = "principal_id"
	SessionPrincipalEmail = "principal_email"
	SessionPrincipalRole  = "principal_role"
)

// RequireAuth ensures the request carries an authenticated session and puts
// the resolved principal on the request context. API requests get a JSON 401;
// everything else is redirected to the login flow.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		id, idOK := sess.Get(SessionPrincipalID).(int64)
		email, emailOK := sess.Get(SessionPrincipalEmail).(string)
		role, roleOK := sess.Get(SessionPrincipalRole).(string)

		if !idOK || !emailOK || !roleOK {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "authentication required"}`))
				return
			}

			sess.Set("redirect_after_login", r.URL.Path)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		principal := userctx.Principal{ID: id, Email: email, Role: models.Role(role)}
		next.ServeHTTP(w, r.WithContext(userctx.WithPrincipal(r.Context(), principal)))
	})
}
