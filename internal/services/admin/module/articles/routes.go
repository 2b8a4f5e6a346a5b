package articles

import (
	"net/http"

	routepath "github.com/louisbranch/adminactions/internal/services/admin/routepath"
	sharedroute "github.com/louisbranch/adminactions/internal/services/shared/route"
)

// Service defines article change-list handlers consumed by this route module.
type Service interface {
	HandleArticlesPage(w http.ResponseWriter, r *http.Request)
	HandleArticlesAction(w http.ResponseWriter, r *http.Request)
}

// RegisterRoutes wires article routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Articles, func(w http.ResponseWriter, r *http.Request) {
		HandleArticles(w, r, service)
	})
	mux.HandleFunc(routepath.ArticlesPrefix, func(w http.ResponseWriter, r *http.Request) {
		if sharedroute.RedirectTrailingSlash(w, r) {
			return
		}
		http.NotFound(w, r)
	})
}

// HandleArticles serves the list on GET and dispatches actions on POST.
func HandleArticles(w http.ResponseWriter, r *http.Request, service Service) {
	if service == nil {
		http.NotFound(w, r)
		return
	}
	if !sharedroute.AllowMethods(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		service.HandleArticlesAction(w, r)
		return
	}
	service.HandleArticlesPage(w, r)
}
