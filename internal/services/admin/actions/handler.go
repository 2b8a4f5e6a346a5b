package actions

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/adminactions/internal/services/admin/storage"
	"golang.org/x/text/language"
)

// Reserved request fields.
const (
	// ActionField carries the chosen action name.
	ActionField = "action"
	// IndexField picks one ActionField value when a page renders several action bars.
	IndexField = "index"
	// SelectionField is repeated once per selected identifier.
	SelectionField = "_selected_action"
	// SelectAcrossField set to "1" selects every record matching the active filter.
	SelectAcrossField = "select_across"
	// PopupField marks related-object popups, which never offer bulk actions.
	PopupField = "_popup"
	// FilterField is the list view query key holding the AIP-160 filter.
	FilterField = "filter"
	// ConfirmField marks the second, confirmed submission of an intermediate page.
	ConfirmField = "post"
)

// Level classifies a user-facing message.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Message is a user-facing notice produced by an action.
type Message struct {
	Text  string
	Level Level
}

// Result is what a handler returns.
//
// A nil Response means "no response": the dispatcher redirects back to the
// list view. Message, when set, is queued before the redirect or response.
type Result struct {
	Response http.Handler
	Message  *Message
}

// NoResponse falls through to the default redirect.
func NoResponse() Result {
	return Result{}
}

// Respond returns payload verbatim as the HTTP response.
func Respond(payload http.Handler) Result {
	return Result{Response: payload}
}

// Notify queues a message and falls through to the default redirect.
func Notify(level Level, text string) Result {
	return Result{Message: &Message{Text: text, Level: level}}
}

// Handler is the contract every action fulfills.
//
// records holds the resolved selection in selection order. Handlers are called
// exactly once per dispatch and are never retried.
type Handler interface {
	HandleAction(ctx context.Context, ac *Context, records []storage.Record) (Result, error)
}

// HandlerFunc adapts a function to Handler. Its Go function name seeds the
// derived action name when none is given at registration.
type HandlerFunc func(ctx context.Context, ac *Context, records []storage.Record) (Result, error)

// HandleAction implements Handler.
func (f HandlerFunc) HandleAction(ctx context.Context, ac *Context, records []storage.Record) (Result, error) {
	return f(ctx, ac, records)
}

// Request is the transport-neutral view of an action submission.
type Request struct {
	// Identity is the operator behind the request.
	Identity string
	// Form holds submitted fields (action, selection, select_across, ...).
	Form url.Values
	// Path is the originating list view path.
	Path string
	// Query is the list view query (filters, ordering, paging) to preserve.
	Query url.Values
	// Locale is the operator's resolved language.
	Locale language.Tag
}

// ListURL returns the originating list view URL with its query intact.
func (r Request) ListURL() string {
	path := r.Path
	if strings.TrimSpace(path) == "" {
		path = "/"
	}
	if len(r.Query) == 0 {
		return path
	}
	return path + "?" + r.Query.Encode()
}

// IsPopup reports whether the request comes from a related-object popup.
func (r Request) IsPopup() bool {
	_, inQuery := r.Query[PopupField]
	_, inForm := r.Form[PopupField]
	return inQuery || inForm
}

// SelectAcross reports whether the operator selected every matching record.
func (r Request) SelectAcross() bool {
	return strings.TrimSpace(r.Form.Get(SelectAcrossField)) == "1"
}

// Filter returns the active list filter.
func (r Request) Filter() string {
	return strings.TrimSpace(r.Query.Get(FilterField))
}

// PermissionChecker decides whether an identity holds a permission.
type PermissionChecker interface {
	HasPermission(ctx context.Context, identity string, permission string) bool
}

// AllowAll grants every permission.
type AllowAll struct{}

// HasPermission implements PermissionChecker.
func (AllowAll) HasPermission(context.Context, string, string) bool {
	return true
}

// Context is the admin-context reference handed to handlers. It lets a handler
// call back into the owning view: messaging, permission checks, the collection
// and the selection codec for intermediate pages.
type Context struct {
	viewName    string
	actionName  string
	request     Request
	collection  storage.Collection
	permissions PermissionChecker
	codec       SelectionCodec
	selection   Selection
	messages    []Message
}

// ViewName returns the owning view name.
func (c *Context) ViewName() string {
	return c.viewName
}

// ActionName returns the name the action was invoked under.
func (c *Context) ActionName() string {
	return c.actionName
}

// Request returns the request being dispatched.
func (c *Context) Request() Request {
	return c.request
}

// Identity returns the operator identity.
func (c *Context) Identity() string {
	return c.request.Identity
}

// Collection returns the view's selectable collection.
func (c *Context) Collection() storage.Collection {
	return c.collection
}

// Codec returns the selection codec used by the dispatcher.
func (c *Context) Codec() SelectionCodec {
	return c.codec
}

// Selection returns the identifiers that were resolved into records.
func (c *Context) Selection() Selection {
	return append(Selection(nil), c.selection...)
}

// Confirmed reports whether the request carries the confirmation field.
func (c *Context) Confirmed() bool {
	return strings.TrimSpace(c.request.Form.Get(ConfirmField)) != ""
}

// HasPermission checks perm for the request identity.
func (c *Context) HasPermission(ctx context.Context, perm string) bool {
	if c.permissions == nil {
		return true
	}
	return c.permissions.HasPermission(ctx, c.request.Identity, perm)
}

// Message queues a user-facing message.
func (c *Context) Message(level Level, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.messages = append(c.messages, Message{Text: text, Level: level})
}
