package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"github.com/MinjunBark/ForRev/internal/auth"
	"github.com/MinjunBark/ForRev/internal/logger"
	"github.com/MinjunBark/ForRev/internal/models"
	"github.com/MinjunBark/ForRev/internal/utils"
)

type Handler struct {
	AuthService *auth.AuthService
	Sessions    auth.SessionManager
	Logger      *logger.Logger

	CookieName   string
	CookieTTL    time.Duration
	CookieSecure bool
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
}

// CSRFToken handles GET /auth/csrf/. The csrf middleware has already set the
// cookie by the time this runs; we just echo the token for header-based
// clients and confirm.
func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-CSRF-Token", csrf.Token(r))
	utils.RespondJSON(w, http.StatusOK, map[string]string{"detail": "CSRF cookie set"})
}

// Register handles POST /auth/register/.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "Username and Password are required")
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			utils.RespondError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		h.Logger.Error("AUTH", fmt.Sprintf("Registration failed for %q: %v", req.Username, err))
		utils.RespondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	if err := h.openSession(w, r, user); err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Failed to open session for %q: %v", user.Username, err))
		utils.RespondError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("Registered user %q", user.Username))
	utils.RespondJSON(w, http.StatusCreated, userResponse{
		Message: "Registration Successful",
		User:    user.Public(),
	})
}

// Login handles POST /auth/login/.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "Username and Password are required")
		return
	}

	user, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("Invalid credentials for %q", req.Username))
		utils.RespondError(w, http.StatusUnauthorized, "Invalid Credentials")
		return
	}

	if err := h.openSession(w, r, user); err != nil {
		h.Logger.Error("AUTH", fmt.Sprintf("Failed to open session for %q: %v", user.Username, err))
		utils.RespondError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, userResponse{
		Message: "Login Successful",
		User:    user.Public(),
	})
}

// Logout handles POST /auth/logout/. It succeeds whether or not a session
// exists.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := auth.SessionID(r.Context()); sessionID != "" {
		if err := h.Sessions.Destroy(r.Context(), sessionID); err != nil {
			h.Logger.Warn("AUTH", fmt.Sprintf("Failed to destroy session: %v", err))
		}
	}
	h.clearSessionCookie(w)
	utils.RespondMessage(w, http.StatusOK, "Logout Successful")
}

// CurrentUser handles GET /auth/user/. Anonymous callers get a 200 with
// isAuthenticated false rather than an error, so the frontend can probe
// session state without special-casing failures.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"isAuthenticated": false,
			"user":            nil,
		})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"isAuthenticated": true,
		"user":            user.Public(),
	})
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sessionID, err := h.Sessions.Create(r.Context(), user.ID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  time.Now().Add(h.CookieTTL),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
