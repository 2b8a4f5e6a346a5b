package registry

import (
	"net/http"
	"strings"

	routepath "github.com/louisbranch/adminactions/internal/services/admin/routepath"
	sharedroute "github.com/louisbranch/adminactions/internal/services/shared/route"
)

// Service defines action registry handlers consumed by this route module.
type Service interface {
	HandleActionsPage(w http.ResponseWriter, r *http.Request)
	HandleActionToggle(w http.ResponseWriter, r *http.Request, name string, enable bool)
}

// RegisterRoutes wires action registry routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Actions, func(w http.ResponseWriter, r *http.Request) {
		if !sharedroute.AllowMethods(w, r, http.MethodGet) {
			return
		}
		service.HandleActionsPage(w, r)
	})
	mux.HandleFunc(routepath.ActionsPrefix, func(w http.ResponseWriter, r *http.Request) {
		HandleActionPath(w, r, service)
	})
}

// HandleActionPath parses /actions/{name}/{disable|enable} and dispatches to
// the toggle handler.
func HandleActionPath(w http.ResponseWriter, r *http.Request, service Service) {
	if service == nil {
		http.NotFound(w, r)
		return
	}
	if sharedroute.RedirectTrailingSlash(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, routepath.ActionsPrefix)
	parts := sharedroute.SplitPathParts(path)
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	var enable bool
	switch parts[1] {
	case routepath.ActionEnableSuffix:
		enable = true
	case routepath.ActionDisableSuffix:
	default:
		http.NotFound(w, r)
		return
	}
	if !sharedroute.AllowMethods(w, r, http.MethodPost) {
		return
	}
	service.HandleActionToggle(w, r, parts[0], enable)
}
