package admin

import (
	"net/http"
)

func (h *Handler) HandleArticlesPage(w http.ResponseWriter, r *http.Request) {
	h.handleArticlesPage(w, r)
}

func (h *Handler) HandleArticlesAction(w http.ResponseWriter, r *http.Request) {
	h.handleArticlesAction(w, r)
}

func (h *Handler) HandleActionsPage(w http.ResponseWriter, r *http.Request) {
	h.handleActionsPage(w, r)
}

func (h *Handler) HandleActionToggle(w http.ResponseWriter, r *http.Request, name string, enable bool) {
	h.handleActionToggle(w, r, name, enable)
}
