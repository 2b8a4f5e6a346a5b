package actions

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/adminactions/internal/platform/errors"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
)

// ActionRef is one entry of a view's action list: a name looked up on the
// view's bound handlers then in the global registry, or a handler given
// directly.
type ActionRef struct {
	name        string
	description string
	handler     Handler
	permissions []string
}

// ByName references a bound handler of the view or a global action by name.
// A globally disabled action referenced this way is enabled for the view.
func ByName(name string) ActionRef {
	return ActionRef{name: strings.TrimSpace(name)}
}

// Direct references a handler value. name and description may be empty to
// derive them from the handler.
func Direct(handler Handler, name string, description string, permissions ...string) ActionRef {
	return ActionRef{
		name:        strings.TrimSpace(name),
		description: description,
		handler:     handler,
		permissions: permissions,
	}
}

// View configures the bulk actions of one collection view.
type View struct {
	// Name identifies the view in logs and audit entries.
	Name string
	// Collection resolves selections into records.
	Collection storage.Collection
	// Actions lists view-local action references. Nil keeps only the enabled
	// global actions.
	Actions []ActionRef
	// ActionsDisabled turns bulk actions off for the view, overriding every
	// global and local action.
	ActionsDisabled bool
	// Bound holds handlers owned by the view, addressable with ByName.
	Bound map[string]Action
	// Permissions filters actions by their required permissions. Nil allows all.
	Permissions PermissionChecker
	// Hook runs last with the working set and returns the authoritative set.
	Hook func(ctx context.Context, req Request, set *EnabledSet) *EnabledSet
}

// ViewResolver computes the enabled actions of one view per request. Local
// references are resolved once at construction into a handler table.
type ViewResolver struct {
	registry *Registry
	view     View
	local    []Action
}

// NewViewResolver binds view to registry and resolves its action references.
func NewViewResolver(registry *Registry, view View) (*ViewResolver, error) {
	if registry == nil {
		registry = Default()
	}
	if view.Permissions == nil {
		view.Permissions = AllowAll{}
	}
	resolver := &ViewResolver{registry: registry, view: view}
	for _, ref := range view.Actions {
		action, err := resolver.resolveRef(ref)
		if err != nil {
			return nil, fmt.Errorf("view %q: %w", view.Name, err)
		}
		resolver.local = append(resolver.local, action)
	}
	return resolver, nil
}

func (r *ViewResolver) resolveRef(ref ActionRef) (Action, error) {
	if ref.handler != nil {
		action, err := normalizeAction(Action{
			Name:        ref.name,
			Description: ref.description,
			Handler:     ref.handler,
			Permissions: ref.permissions,
		})
		if err != nil {
			return Action{}, err
		}
		action.Scope = ScopeViewLocal
		return action, nil
	}
	if ref.name == "" {
		return Action{}, apperrors.New(ErrUnresolvedRef.Code, "action reference has neither name nor handler")
	}
	if bound, ok := r.view.Bound[ref.name]; ok {
		bound.Name = ref.name
		action, err := normalizeAction(bound)
		if err != nil {
			return Action{}, err
		}
		action.Scope = ScopeViewLocal
		return action, nil
	}
	action, err := r.registry.Lookup(ref.name)
	if err != nil {
		return Action{}, apperrors.Wrap(
			ErrUnresolvedRef.Code,
			fmt.Sprintf("action %q is neither bound to the view nor registered", ref.name),
			err,
		)
	}
	return action, nil
}

// View returns the view configuration.
func (r *ViewResolver) View() View {
	return r.view
}

// Registry returns the registry the view reads global actions from.
func (r *ViewResolver) Registry() *Registry {
	return r.registry
}

// Resolve returns the actions enabled for req.
func (r *ViewResolver) Resolve(ctx context.Context, req Request) *EnabledSet {
	if r.view.ActionsDisabled || req.IsPopup() {
		return NewEnabledSet()
	}

	set := NewEnabledSet()
	for _, action := range r.registry.EnabledActions() {
		set.Put(action)
	}
	for _, action := range r.local {
		set.Put(action)
	}

	for _, action := range set.Actions() {
		for _, perm := range action.Permissions {
			if !r.view.Permissions.HasPermission(ctx, req.Identity, perm) {
				set.Remove(action.Name)
				break
			}
		}
	}

	if r.view.Hook != nil {
		set = r.view.Hook(ctx, req, set)
		if set == nil {
			set = NewEnabledSet()
		}
	}
	return set
}
