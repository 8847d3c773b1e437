package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/mhollis/practicum-tracker/authenticator"
	"github.com/mhollis/practicum-tracker/middleware"
	"github.com/mhollis/practicum-tracker/services"
)

type AuthController struct {
	identity services.IdentityService
}

func NewAuthController(services *services.Services) *AuthController {
	return &AuthController{identity: services.Identity}
}

// Login initiates the authentication process
func (ac *AuthController) Login(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := generateRandomState()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Save the state in the session to validate in callback
		sess := session.GetSession(r)
		sess.Set("state", state)

		http.Redirect(w, r, auth.GetAuthURL(state), http.StatusTemporaryRedirect)
	}
}

// Callback handles the redirect back from the identity provider. The email
// claim is resolved to a trainee or staff account; unknown emails are turned
// away without a session.
func (ac *AuthController) Callback(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		storedState := sess.Get("state")
		if storedState == nil {
			http.Error(w, "State not found in session", http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("state") != storedState.(string) {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := auth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, "Failed to exchange authorization code for a token: "+err.Error(), http.StatusUnauthorized)
			return
		}

		claims, err := auth.GetClaims(r.Context(), token)
		if err != nil {
			http.Error(w, "Failed to verify ID Token: "+err.Error(), http.StatusInternalServerError)
			return
		}

		email := claims.Email()
		if email == "" {
			http.Error(w, "Identity provider returned no email claim", http.StatusUnauthorized)
			return
		}

		p, err := ac.identity.Resolve(r.Context(), email)
		if err != nil {
			if errors.Is(err, services.ErrUnknownIdentity) {
				http.Error(w, "No account is registered for "+email, http.StatusForbidden)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		sess.Set(middleware.SessionPrincipalID, p.ID)
		sess.Set(middleware.SessionPrincipalEmail, p.Email)
		sess.Set(middleware.SessionPrincipalRole, string(p.Role))
		sess.Delete("state")

		redirect := "/"
		if stored, ok := sess.Get("redirect_after_login").(string); ok && stored != "" {
			redirect = stored
			sess.Delete("redirect_after_login")
		}
		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// Logout clears the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	sess.Delete(middleware.SessionPrincipalID)
	sess.Delete(middleware.SessionPrincipalEmail)
	sess.Delete(middleware.SessionPrincipalRole)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
