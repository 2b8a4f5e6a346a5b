package admin

import (
	"net/http"
	"strings"

	"github.com/louisbranch/adminactions/internal/platform/requestctx"
	"github.com/louisbranch/adminactions/internal/platform/timeouts"
	routepath "github.com/louisbranch/adminactions/internal/services/admin/routepath"
	"github.com/louisbranch/adminactions/internal/services/shared/authctx"
	"github.com/louisbranch/adminactions/internal/services/shared/htmx"
)

// tokenCookieName is the domain-scoped cookie set by the login service.
const tokenCookieName = "fs_token"

// AuthConfig holds auth middleware configuration for the admin operator plane.
type AuthConfig struct {
	IntrospectURL  string
	ResourceSecret string
	LoginURL       string
}

// Enabled reports whether introspection is configured.
func (c AuthConfig) Enabled() bool {
	return strings.TrimSpace(c.IntrospectURL) != ""
}

// requireAuth wraps next with token-introspection-based authentication.
//
// Active tokens put the operator identity and its permissions on the request
// context; per-action permission checks read them from there.
func requireAuth(next http.Handler, introspector TokenIntrospector, loginURL string, logf func(string, ...any)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAuthExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(tokenCookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			htmx.Redirect(w, r, loginURL)
			return
		}

		result, err := introspector.Introspect(r.Context(), cookie.Value)
		if err != nil {
			logf("admin auth introspect error: %v", err)
			htmx.Redirect(w, r, loginURL)
			return
		}
		if !result.Active || strings.TrimSpace(result.UserID) == "" {
			htmx.Redirect(w, r, loginURL)
			return
		}

		ctx := requestctx.WithIdentity(r.Context(), requestctx.Identity{
			UserID:      result.UserID,
			Permissions: result.Permissions,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isAuthExempt returns true for paths that should bypass authentication.
func isAuthExempt(path string) bool {
	return path == routepath.Healthz
}

// TokenIntrospector validates an OAuth access token via introspection.
type TokenIntrospector = authctx.Introspector

// introspectResponse mirrors the auth service's introspect JSON shape.
type introspectResponse = authctx.IntrospectionResult

// newHTTPIntrospector creates an introspector that POSTs to the given URL.
func newHTTPIntrospector(url, resourceSecret string) TokenIntrospector {
	return authctx.NewHTTPIntrospector(url, resourceSecret, &http.Client{Timeout: timeouts.Introspect})
}
