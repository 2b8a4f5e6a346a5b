package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/adminactions/internal/services/admin/actions"
	routepath "github.com/louisbranch/adminactions/internal/services/admin/routepath"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
	"github.com/louisbranch/adminactions/internal/services/admin/templates"
	"github.com/louisbranch/adminactions/internal/services/shared/htmx"
	"golang.org/x/text/message"
)

const actionLogTimeLayout = "2006-01-02 15:04:05"

// handleActionsPage renders the global action registry with the audit log.
func (h *Handler) handleActionsPage(w http.ResponseWriter, r *http.Request) {
	loc, tag := h.localizer(w, r)
	title := loc.Sprintf("admin.registry.title")
	view := templates.ActionsPageView{Rows: buildRegistryRows(h.registry, loc)}

	entries, err := h.store.ListActionLogs(r.Context(), actionLogLimit)
	if err != nil {
		h.logf("admin list action logs: %v", err)
	}
	view.Log = buildActionLogRows(entries)

	page := h.pageContext(tag, loc, r, title)
	htmx.RenderPage(w, r, nil, templates.ActionsPage(page, view), htmx.TitleTag(title))
}

// handleActionToggle disables or enables one global action.
func (h *Handler) handleActionToggle(w http.ResponseWriter, r *http.Request, name string, enable bool) {
	loc, _ := h.localizer(w, r)
	if !requireSameOrigin(w, r, loc) {
		return
	}
	if _, err := h.registry.Lookup(name); err != nil {
		if errors.Is(err, actions.ErrNotFound) {
			http.Error(w, loc.Sprintf("admin.error.action_unknown"), http.StatusNotFound)
			return
		}
		h.logf("admin lookup action %q: %v", name, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	operator := operatorID(r.Context())
	key := "admin.registry.disabled"
	if enable {
		h.registry.Enable(name)
		key = "admin.registry.enabled"
		h.logf("admin action %q enabled by %q", name, operator)
	} else {
		h.registry.Disable(name)
		h.logf("admin action %q disabled by %q", name, operator)
	}
	h.messages.Push(r.Context(), operator, actions.Message{
		Text:  loc.Sprintf(key, name),
		Level: actions.LevelSuccess,
	})
	htmx.Redirect(w, r, routepath.Actions)
}

func buildRegistryRows(registry *actions.Registry, loc *message.Printer) []templates.RegistryRow {
	registered := registry.Actions()
	rows := make([]templates.RegistryRow, 0, len(registered))
	for _, action := range registered {
		disabled := registry.IsDisabled(action.Name)
		toggle := routepath.ActionDisable(action.Name)
		if disabled {
			toggle = routepath.ActionEnable(action.Name)
		}
		rows = append(rows, templates.RegistryRow{
			Name:        action.Name,
			Description: actionLabel(loc, action),
			Permissions: strings.Join(action.Permissions, ", "),
			Disabled:    disabled,
			ToggleURL:   toggle,
		})
	}
	return rows
}

func buildActionLogRows(entries []storage.ActionLogEntry) []templates.ActionLogRow {
	rows := make([]templates.ActionLogRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, templates.ActionLogRow{
			When:     entry.CreatedAt.UTC().Format(actionLogTimeLayout),
			View:     entry.ViewName,
			Action:   entry.ActionName,
			Identity: entry.Identity,
			Count:    fmt.Sprintf("%d/%d", entry.ResolvedCount, entry.RequestedCount),
			Outcome:  entry.Outcome,
		})
	}
	return rows
}
