package admin

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/adminactions/internal/platform/requestctx"
	"github.com/louisbranch/adminactions/internal/services/admin/actions"
	"github.com/louisbranch/adminactions/internal/services/admin/actions/builtin"
	"github.com/louisbranch/adminactions/internal/services/admin/flash"
	"github.com/louisbranch/adminactions/internal/services/admin/i18n"
	articlesmodule "github.com/louisbranch/adminactions/internal/services/admin/module/articles"
	registrymodule "github.com/louisbranch/adminactions/internal/services/admin/module/registry"
	routepath "github.com/louisbranch/adminactions/internal/services/admin/routepath"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
	"github.com/louisbranch/adminactions/internal/services/admin/templates"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// articlesViewName identifies the articles view in logs and audit entries.
	articlesViewName = "articles"
	// articlesPageSize caps the number of articles shown per page.
	articlesPageSize = 25
	// actionLogLimit caps the audit entries shown on the registry page.
	actionLogLimit = 50
	// maxFormBytes caps action form bodies; select-across keeps them small.
	maxFormBytes = 1 << 20
	// pageTokenParam carries the article list page token.
	pageTokenParam = "page_token"
)

// HandlerConfig wires the collaborators of the admin HTTP surface.
type HandlerConfig struct {
	// Store backs the articles view and the audit log.
	Store storage.Store
	// Registry holds global actions. Nil uses actions.Default().
	Registry *actions.Registry
	// Messages queues flash notices. Nil creates an in-memory queue.
	Messages *flash.Queue
	// Permissions checks per-action permissions. Nil derives grants from the
	// authenticated identity.
	Permissions actions.PermissionChecker
	// Tracer opens dispatch spans. Nil uses the global provider.
	Tracer trace.Tracer
	// Logf is the operational log channel. Nil uses log.Printf.
	Logf func(format string, args ...any)
}

// Handler routes admin requests.
type Handler struct {
	store      storage.Store
	registry   *actions.Registry
	messages   *flash.Queue
	articles   *actions.ViewResolver
	dispatcher *actions.Dispatcher
	logf       func(format string, args ...any)
}

// NewHandler builds the HTTP handler for the admin server.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	h, err := newHandler(cfg)
	if err != nil {
		return nil, err
	}
	return h.routes(), nil
}

func newHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Store == nil {
		return nil, errors.New("admin store is required")
	}
	registry := cfg.Registry
	if registry == nil {
		registry = actions.Default()
	}
	messages := cfg.Messages
	if messages == nil {
		messages = flash.NewQueue()
	}
	permissions := cfg.Permissions
	if permissions == nil {
		permissions = identityPermissions{}
	}
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}

	resolver, err := actions.NewViewResolver(registry, articlesView(cfg.Store, permissions))
	if err != nil {
		return nil, err
	}
	return &Handler{
		store:    cfg.Store,
		registry: registry,
		messages: messages,
		articles: resolver,
		dispatcher: &actions.Dispatcher{
			Messages: messages,
			AuditLog: cfg.Store,
			Tracer:   cfg.Tracer,
			Logf:     logf,
		},
		logf: logf,
	}, nil
}

// articlesView lists publish and unpublish as bound view-local actions on top
// of the enabled globals.
func articlesView(collection storage.Collection, permissions actions.PermissionChecker) actions.View {
	return actions.View{
		Name:       articlesViewName,
		Collection: collection,
		Actions: []actions.ActionRef{
			actions.ByName("publish"),
			actions.ByName("unpublish"),
		},
		Bound: map[string]actions.Action{
			"publish":   builtin.Publish(),
			"unpublish": builtin.Unpublish(),
		},
		Permissions: permissions,
	}
}

// routes wires the HTTP routes for the admin handler.
func (h *Handler) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(routepath.Root, http.HandlerFunc(h.handleRoot))
	articlesmodule.RegisterRoutes(mux, h)
	registrymodule.RegisterRoutes(mux, h)
	return mux
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routepath.Root {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, routepath.Articles, http.StatusFound)
}

func (h *Handler) localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, language.Tag) {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.Printer(tag), tag
}

// pageContext drains pending notices for the operator into the page.
func (h *Handler) pageContext(tag language.Tag, loc *message.Printer, r *http.Request, title string) templates.PageContext {
	page := templates.PageContext{
		Lang:         tag.String(),
		Loc:          loc,
		Title:        title,
		CurrentPath:  r.URL.Path,
		CurrentQuery: listQuery(r.URL.Query()).Encode(),
	}
	for _, msg := range h.messages.Drain(operatorID(r.Context())) {
		page.Messages = append(page.Messages, templates.FlashMessage{Text: msg.Text, Level: string(msg.Level)})
	}
	return page
}

// operatorID returns the authenticated operator, or "" when auth is off.
func operatorID(ctx context.Context) string {
	return requestctx.UserIDFromContext(ctx)
}

// listQuery drops the language switch from a list query before it is
// preserved across redirects.
func listQuery(query url.Values) url.Values {
	out := url.Values{}
	for key, values := range query {
		if key == i18n.LangParam {
			continue
		}
		out[key] = append([]string(nil), values...)
	}
	return out
}

// actionLabel localizes catalog-key descriptions and shows others verbatim.
func actionLabel(loc *message.Printer, action actions.Action) string {
	description := strings.TrimSpace(action.Description)
	if strings.HasPrefix(description, "admin.") {
		return loc.Sprintf(description)
	}
	if description == "" {
		return actions.HumanizeName(action.Name)
	}
	return description
}

func requireSameOrigin(w http.ResponseWriter, r *http.Request, loc *message.Printer) bool {
	if r == nil {
		http.Error(w, loc.Sprintf("admin.error.csrf_invalid"), http.StatusForbidden)
		return false
	}
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		if !sameOrigin(origin, r) {
			http.Error(w, loc.Sprintf("admin.error.csrf_invalid"), http.StatusForbidden)
			return false
		}
		return true
	}
	if referer := strings.TrimSpace(r.Referer()); referer != "" {
		if !sameOrigin(referer, r) {
			http.Error(w, loc.Sprintf("admin.error.csrf_invalid"), http.StatusForbidden)
			return false
		}
		return true
	}
	http.Error(w, loc.Sprintf("admin.error.csrf_invalid"), http.StatusForbidden)
	return false
}

func sameOrigin(rawURL string, r *http.Request) bool {
	if rawURL == "" || rawURL == "null" || r == nil {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	if !strings.EqualFold(parsed.Host, r.Host) {
		return false
	}
	if parsed.Scheme != "" {
		return strings.EqualFold(parsed.Scheme, requestScheme(r))
	}
	return true
}

func requestScheme(r *http.Request) string {
	if r == nil {
		return "http"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		parts := strings.Split(proto, ",")
		return strings.ToLower(strings.TrimSpace(parts[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
