package auth

import (
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/MinjunBark/ForRev/internal/utils"
)

// CSRFProtection wraps the router in double-submit cookie CSRF protection.
// Safe methods pass through and receive the cookie; unsafe methods must echo
// the token back in the X-CSRF-Token header. trustedOrigins holds the
// host:port values browser clients send in their Origin header; without them
// every cross-origin request is rejected regardless of token.
func CSRFProtection(authKey []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.TrustedOrigins(trustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	}
	return csrf.Protect(authKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondError(w, http.StatusForbidden, "CSRF token validation failed")
}
