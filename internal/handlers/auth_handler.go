package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"examcoach/internal/security"
	"examcoach/internal/service"
)

// AuthHandler handles login and logout
type AuthHandler struct {
	gate      *service.GateService
	signer    *security.TokenSigner
	templates *template.Template
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gate *service.GateService, signer *security.TokenSigner, templates *template.Template) *AuthHandler {
	return &AuthHandler{
		gate:      gate,
		signer:    signer,
		templates: templates,
	}
}

// Home redirects to the practice page when authenticated, otherwise to login
func (h *AuthHandler) Home(m *Middleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess := m.ResolveSession(r); sess != nil && sess.Authenticated {
			http.Redirect(w, r, "/practice", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, "")
}

// Login checks the submitted access password and starts a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data", "failed to parse login form", err)
		return
	}

	password := r.FormValue("password")

	sess, err := h.gate.Login(password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGateLocked):
			h.renderLogin(w, "Access is not configured. Contact the administrator.")
		case errors.Is(err, service.ErrInvalidPassword):
			h.renderLogin(w, "Incorrect password")
		default:
			respondWithError(w, http.StatusInternalServerError, "Login failed", "login error", err)
		}
		return
	}

	token, err := h.signer.Sign(sess.ID, sess.ExpiresAt)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Login failed", "failed to sign session token", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, token, sess.ExpiresAt))
	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

// Logout ends the session and clears the cookie
func (h *AuthHandler) Logout(m *Middleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess := m.ResolveSession(r); sess != nil {
			h.gate.Logout(sess.ID)
		}

		http.SetCookie(w, security.CreateDeleteCookie(r))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, errMsg string) {
	data := LoginViewData{
		Title: "Sign In",
		Error: errMsg,
	}
	if err := h.templates.ExecuteTemplate(w, "login.tmpl", data); err != nil {
		log.Printf("failed to render login template: %v", err)
	}
}
