package actions

import (
	"fmt"
	"reflect"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	apperrors "github.com/louisbranch/adminactions/internal/platform/errors"
)

// Scope is where an action is registered.
type Scope int

const (
	// ScopeGlobal actions live in a Registry.
	ScopeGlobal Scope = iota
	// ScopeViewLocal actions are declared by a single view.
	ScopeViewLocal
)

// String returns the scope label.
func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeViewLocal:
		return "view"
	default:
		return "unknown"
	}
}

// Action is a named bulk operation.
type Action struct {
	Name        string
	Description string
	Handler     Handler
	Scope       Scope
	// Permissions the operator must hold for the action to be offered.
	Permissions []string
}

// Registry maps global action names to handlers and tracks the names an
// operator disabled. All methods are safe for concurrent use; readers always
// observe a complete registration.
type Registry struct {
	mu       sync.RWMutex
	names    []string
	actions  map[string]Action
	disabled map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:  make(map[string]Action),
		disabled: make(map[string]struct{}),
	}
}

var defaultRegistry atomic.Pointer[Registry]

func init() {
	defaultRegistry.Store(NewRegistry())
}

// Default returns the process-wide registry. It starts empty and is never
// persisted.
func Default() *Registry {
	return defaultRegistry.Load()
}

// ResetDefault replaces the process-wide registry with an empty one.
func ResetDefault() {
	defaultRegistry.Store(NewRegistry())
}

// Register adds a global action. An empty name is derived from the handler.
// Registering the same handler again under the same name is a no-op.
func (r *Registry) Register(handler Handler, name string) (string, error) {
	return r.RegisterAction(Action{Name: name, Handler: handler})
}

// RegisterAction adds a fully described global action.
func (r *Registry) RegisterAction(action Action) (string, error) {
	normalized, err := normalizeAction(action)
	if err != nil {
		return "", err
	}
	normalized.Scope = ScopeGlobal

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.actions[normalized.Name]; ok {
		if sameHandler(existing.Handler, normalized.Handler) {
			return normalized.Name, nil
		}
		return "", apperrors.WithMetadata(
			ErrDuplicateName.Code,
			fmt.Sprintf("action %q is already registered", normalized.Name),
			map[string]string{"name": normalized.Name},
		)
	}
	r.names = append(r.names, normalized.Name)
	r.actions[normalized.Name] = normalized
	return normalized.Name, nil
}

// Unregister removes a global action. Unknown names are ignored.
func (r *Registry) Unregister(name string) {
	name = strings.TrimSpace(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[name]; !ok {
		return
	}
	delete(r.actions, name)
	delete(r.disabled, name)
	r.names = slices.DeleteFunc(r.names, func(n string) bool { return n == name })
}

// Disable suppresses a global action from default resolution without
// unregistering it. Names not registered yet stay disabled once registered.
func (r *Registry) Disable(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled[name] = struct{}{}
}

// Enable removes name from the disabled set.
func (r *Registry) Enable(name string) {
	name = strings.TrimSpace(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.disabled, name)
}

// IsDisabled reports whether name is in the disabled set.
func (r *Registry) IsDisabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.disabled[strings.TrimSpace(name)]
	return ok
}

// Disabled returns the disabled names in lexical order.
func (r *Registry) Disabled() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.disabled))
	for name := range r.disabled {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the global action registered under name, disabled or not.
func (r *Registry) Lookup(name string) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, ok := r.actions[strings.TrimSpace(name)]
	if !ok {
		return Action{}, apperrors.New(ErrNotFound.Code, fmt.Sprintf("action %q is not registered", name))
	}
	return cloneAction(action), nil
}

// Actions returns every global action in registration order.
func (r *Registry) Actions() []Action {
	return r.snapshot(false)
}

// EnabledActions returns the global actions not disabled, in registration order.
func (r *Registry) EnabledActions() []Action {
	return r.snapshot(true)
}

func (r *Registry) snapshot(enabledOnly bool) []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Action, 0, len(r.names))
	for _, name := range r.names {
		if _, off := r.disabled[name]; enabledOnly && off {
			continue
		}
		out = append(out, cloneAction(r.actions[name]))
	}
	return out
}

func cloneAction(action Action) Action {
	action.Permissions = slices.Clone(action.Permissions)
	return action
}

// normalizeAction fills the derived name and description and validates both.
func normalizeAction(action Action) (Action, error) {
	if action.Handler == nil {
		return Action{}, apperrors.New(ErrInvalidName.Code, "action handler is required")
	}
	name := strings.TrimSpace(action.Name)
	if name == "" {
		name = DeriveName(action.Handler)
	}
	if !ValidName(name) {
		return Action{}, apperrors.WithMetadata(
			ErrInvalidName.Code,
			fmt.Sprintf("action name %q is not form-safe", name),
			map[string]string{"name": name},
		)
	}
	action.Name = name
	if strings.TrimSpace(action.Description) == "" {
		action.Description = deriveDescription(action.Handler, name)
	}
	action.Permissions = slices.Clone(action.Permissions)
	return action, nil
}

// ValidName reports whether name is non-empty and URL/form-safe.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case (r == '.' || r == '-') && i > 0:
		default:
			return false
		}
	}
	return true
}

// DeriveName computes the canonical action name for a handler: its
// ActionName method when present, otherwise its Go function or type name.
func DeriveName(handler Handler) string {
	if named, ok := handler.(interface{ ActionName() string }); ok {
		return CanonicalName(named.ActionName())
	}
	value := reflect.ValueOf(handler)
	if value.Kind() == reflect.Func {
		if fn := runtime.FuncForPC(value.Pointer()); fn != nil {
			return CanonicalName(shortFuncName(fn.Name()))
		}
		return ""
	}
	typ := reflect.TypeOf(handler)
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	return CanonicalName(typ.Name())
}

// CanonicalName lower-cases s, splits CamelCase words and folds spaces,
// hyphens and underscores into single underscores.
func CanonicalName(s string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(s))
	lastUnderscore := true
	for i, r := range runes {
		switch {
		case r == ' ' || r == '-' || r == '_':
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		case unicode.IsUpper(r):
			if i > 0 && !lastUnderscore && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// shortFuncName reduces "example.com/pkg.(*view).publish-fm" to "publish".
// Function literals take the name of the function that declares them;
// package-level literals have no declared name and yield "".
func shortFuncName(full string) string {
	if idx := strings.LastIndex(full, "/"); idx >= 0 {
		full = full[idx+1:]
	}
	// Dots in the last import path element are escaped, so the first dot
	// ends the package name.
	idx := strings.Index(full, ".")
	if idx < 0 {
		return ""
	}
	full = stripTypeArgs(full[idx+1:])

	segments := strings.Split(full, ".")
	for len(segments) > 0 && isClosureSegment(segments[len(segments)-1]) {
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return ""
	}
	name := strings.TrimSuffix(segments[len(segments)-1], "-fm")
	if name == "init" || name == "glob" || strings.HasPrefix(name, "(") {
		return ""
	}
	return name
}

// isClosureSegment matches the compiler's "func1", "1" and "glob." parts.
func isClosureSegment(segment string) bool {
	if segment == "" || segment == "glob" {
		return true
	}
	digits := strings.TrimPrefix(segment, "func")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripTypeArgs(name string) string {
	var b strings.Builder
	depth := 0
	for _, r := range name {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func deriveDescription(handler Handler, name string) string {
	if described, ok := handler.(interface{ ActionDescription() string }); ok {
		if desc := strings.TrimSpace(described.ActionDescription()); desc != "" {
			return desc
		}
	}
	return HumanizeName(name)
}

// HumanizeName turns "delete_selected" into "Delete selected".
func HumanizeName(name string) string {
	text := strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if text == "" {
		return ""
	}
	runes := []rune(text)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// sameHandler reports handler identity: structurally equal values, where
// function values match by code pointer. Values holding slices or maps are
// never the same handler.
func sameHandler(a, b Handler) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return sameValue(reflect.ValueOf(a), reflect.ValueOf(b))
}

func sameValue(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.Func:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return sameValue(a.Elem(), b.Elem())
	case reflect.Struct:
		for i := range a.NumField() {
			if !sameValue(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := range a.Len() {
			if !sameValue(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() == b.Float()
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	default:
		return false
	}
}
