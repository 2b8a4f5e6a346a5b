package httpmux

import (
	"context"
	"net/http"

	routepath "github.com/louisbranch/adminactions/internal/services/admin/routepath"
)

// HealthCheck reports whether a dependency is ready to serve.
type HealthCheck func(ctx context.Context) error

// MountHealth wires the liveness probe into the root mux. A failing check
// answers 503 so orchestrators stop routing traffic.
func MountHealth(rootMux *http.ServeMux, check HealthCheck) {
	if rootMux == nil {
		return
	}
	rootMux.HandleFunc(routepath.Healthz, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if check != nil {
			if err := check(r.Context()); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}

// MountAdminRoutes mounts admin application routes under root path.
func MountAdminRoutes(rootMux *http.ServeMux, adminHandler http.Handler) {
	if rootMux == nil || adminHandler == nil {
		return
	}
	rootMux.Handle(routepath.Root, adminHandler)
}
