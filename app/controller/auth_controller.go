package controller

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"armario-outfits/models"
	"armario-outfits/service"
)

// AuthController handles HTTP requests for accounts
type AuthController struct {
	auth         service.AuthServiceInterface
	cookieName   string
	cookieSecure bool
}

// NewAuthController creates a new AuthController
func NewAuthController(auth service.AuthServiceInterface, cookieName string, cookieSecure bool) *AuthController {
	return &AuthController{auth: auth, cookieName: cookieName, cookieSecure: cookieSecure}
}

func (c *AuthController) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.cookieSecure,
		Expires:  time.Now().Add(service.TokenTTL),
	})
}

// Register handles POST /api/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	log.Infof("📥 Register: Received %s request to %s", r.Method, r.URL.Path)

	var req models.AuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Register", err)
		return
	}
	resp, err := c.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, "Register", err)
		return
	}
	c.setCookie(w, resp.Token)
	writeJSON(w, http.StatusCreated, resp)
}

// SignIn handles POST /api/auth/sign-in
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "SignIn", err)
		return
	}
	resp, err := c.auth.SignIn(r.Context(), req)
	if err != nil {
		writeError(w, "SignIn", err)
		return
	}
	c.setCookie(w, resp.Token)
	log.Infof("✅ SignIn: %s signed in", resp.User.ID)
	writeJSON(w, http.StatusOK, resp)
}

// SignOut handles POST /api/auth/sign-out
func (c *AuthController) SignOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.cookieSecure,
		MaxAge:   -1,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Me handles GET /api/auth/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.auth.Me(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
