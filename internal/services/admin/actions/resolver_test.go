package actions

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"slices"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

type denyPermission struct {
	denied string
}

func (d denyPermission) HasPermission(_ context.Context, _ string, permission string) bool {
	return permission != d.denied
}

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	registry := NewRegistry()
	for _, name := range names {
		if _, err := registry.Register(HandlerFunc(noop), name); err != nil {
			t.Fatalf("Register(%q) error = %v", name, err)
		}
	}
	return registry
}

func newTestResolver(t *testing.T, registry *Registry, view View) *ViewResolver {
	t.Helper()
	resolver, err := NewViewResolver(registry, view)
	if err != nil {
		t.Fatalf("NewViewResolver() error = %v", err)
	}
	return resolver
}

func TestResolveWithoutOverrideYieldsEnabledGlobals(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "delete_selected", "export", "archive")
	registry.Disable("export")
	resolver := newTestResolver(t, registry, View{Name: "articles"})

	got := resolver.Resolve(context.Background(), Request{}).Names()
	if want := []string{"delete_selected", "archive"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestResolveDisabledSentinelYieldsEmpty(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "delete_selected", "export")
	hookCalled := false
	resolver := newTestResolver(t, registry, View{
		Name:            "articles",
		Actions:         []ActionRef{ByName("export"), Direct(HandlerFunc(noop), "local", "")},
		ActionsDisabled: true,
		Hook: func(_ context.Context, _ Request, set *EnabledSet) *EnabledSet {
			hookCalled = true
			return set
		},
	})

	if got := resolver.Resolve(context.Background(), Request{}).Len(); got != 0 {
		t.Fatalf("len = %d, want 0", got)
	}
	if hookCalled {
		t.Fatal("hook should not run for a view with actions disabled")
	}
}

func TestResolveLocalNameReenablesDisabledGlobal(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "delete_selected", "export")
	registry.Disable("export")
	withOverride := newTestResolver(t, registry, View{Name: "articles", Actions: []ActionRef{ByName("export")}})
	withoutOverride := newTestResolver(t, registry, View{Name: "authors"})

	if !withOverride.Resolve(context.Background(), Request{}).Has("export") {
		t.Fatal("export should be re-enabled by the local listing")
	}
	if withoutOverride.Resolve(context.Background(), Request{}).Has("export") {
		t.Fatal("export should stay disabled for other views")
	}
	if !registry.IsDisabled("export") {
		t.Fatal("local listing must not change the global disabled set")
	}
}

func TestResolveOrderingKeepsFirstPosition(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "a", "b", "c")
	override := HandlerFunc(publishArticles)
	resolver := newTestResolver(t, registry, View{
		Name: "articles",
		Actions: []ActionRef{
			Direct(HandlerFunc(noop), "local_one", "Local one"),
			Direct(override, "b", "Overridden b"),
			ByName("bound"),
		},
		Bound: map[string]Action{
			"bound": {Handler: HandlerFunc(noop), Description: "Bound"},
		},
	})

	set := resolver.Resolve(context.Background(), Request{})
	if want := []string{"a", "b", "c", "local_one", "bound"}; !reflect.DeepEqual(set.Names(), want) {
		t.Fatalf("names = %v, want %v", set.Names(), want)
	}
	b, ok := set.Get("b")
	if !ok {
		t.Fatal("b missing")
	}
	if b.Description != "Overridden b" || !sameHandler(b.Handler, override) {
		t.Fatalf("b = %+v, want local override", b)
	}
	if b.Scope != ScopeViewLocal {
		t.Fatalf("b scope = %v, want %v", b.Scope, ScopeViewLocal)
	}
}

func TestResolveHookIsAuthoritative(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "delete_selected", "export")
	registry.Disable("export")
	resolver := newTestResolver(t, registry, View{
		Name:    "articles",
		Actions: []ActionRef{ByName("export")},
		Hook: func(_ context.Context, req Request, set *EnabledSet) *EnabledSet {
			if req.Identity != "root" {
				set.Remove("export")
			}
			set.Put(Action{Name: "hooked", Handler: HandlerFunc(noop)})
			return set
		},
	})

	guest := resolver.Resolve(context.Background(), Request{Identity: "guest"})
	if want := []string{"delete_selected", "hooked"}; !reflect.DeepEqual(guest.Names(), want) {
		t.Fatalf("guest names = %v, want %v", guest.Names(), want)
	}
	root := resolver.Resolve(context.Background(), Request{Identity: "root"})
	if want := []string{"delete_selected", "export", "hooked"}; !reflect.DeepEqual(root.Names(), want) {
		t.Fatalf("root names = %v, want %v", root.Names(), want)
	}
}

func TestResolveNilHookResultIsEmpty(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "a")
	resolver := newTestResolver(t, registry, View{
		Name: "articles",
		Hook: func(context.Context, Request, *EnabledSet) *EnabledSet { return nil },
	})
	if got := resolver.Resolve(context.Background(), Request{}).Len(); got != 0 {
		t.Fatalf("len = %d, want 0", got)
	}
}

func TestResolveFiltersByPermission(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if _, err := registry.RegisterAction(Action{Name: "delete_selected", Handler: HandlerFunc(noop), Permissions: []string{"delete"}}); err != nil {
		t.Fatalf("RegisterAction() error = %v", err)
	}
	if _, err := registry.RegisterAction(Action{Name: "export", Handler: HandlerFunc(noop), Permissions: []string{"view"}}); err != nil {
		t.Fatalf("RegisterAction() error = %v", err)
	}
	resolver := newTestResolver(t, registry, View{Name: "articles", Permissions: denyPermission{denied: "delete"}})

	got := resolver.Resolve(context.Background(), Request{Identity: "editor"}).Names()
	if want := []string{"export"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestResolvePopupYieldsEmpty(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "a")
	resolver := newTestResolver(t, registry, View{Name: "articles"})
	req := Request{Query: url.Values{PopupField: {"1"}}}
	if got := resolver.Resolve(context.Background(), req).Len(); got != 0 {
		t.Fatalf("len = %d, want 0", got)
	}
}

func TestNewViewResolverUnresolvedReference(t *testing.T) {
	t.Parallel()

	_, err := NewViewResolver(NewRegistry(), View{Name: "articles", Actions: []ActionRef{ByName("missing")}})
	if !errors.Is(err, ErrUnresolvedRef) {
		t.Fatalf("error = %v, want ErrUnresolvedRef", err)
	}
	_, err = NewViewResolver(NewRegistry(), View{Name: "articles", Actions: []ActionRef{ByName("")}})
	if !errors.Is(err, ErrUnresolvedRef) {
		t.Fatalf("error = %v, want ErrUnresolvedRef", err)
	}
}

func TestResolveReflectsRegistryChanges(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "a")
	resolver := newTestResolver(t, registry, View{Name: "articles"})
	if _, err := registry.Register(HandlerFunc(noop), "b"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	registry.Disable("a")

	got := resolver.Resolve(context.Background(), Request{}).Names()
	if want := []string{"b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestResolveGlobalsProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		all := rapid.SliceOfDistinct(rapid.StringMatching(`[a-z][a-z0-9_]{0,8}`), rapid.ID[string]).Draw(t, "names")
		registry := NewRegistry()
		var want []string
		for _, name := range all {
			if _, err := registry.Register(HandlerFunc(noop), name); err != nil {
				t.Fatalf("Register(%q) error = %v", name, err)
			}
			if rapid.Bool().Draw(t, "disable_"+name) {
				registry.Disable(name)
				continue
			}
			want = append(want, name)
		}
		resolver, err := NewViewResolver(registry, View{Name: "prop"})
		if err != nil {
			t.Fatalf("NewViewResolver() error = %v", err)
		}
		got := resolver.Resolve(context.Background(), Request{}).Names()
		if len(got) != len(want) {
			t.Fatalf("names = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("names = %v, want %v", got, want)
			}
		}
	})
}

func TestResolveSeesConsistentRegistrySnapshots(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry(t, "archive", "toggle", "export")
	resolver := newTestResolver(t, registry, View{Name: "articles"})
	valid := [][]string{
		{"archive", "export"},
		{"archive", "toggle", "export"},
		{"archive", "export", "flip"},
		{"archive", "toggle", "export", "flip"},
	}

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range rounds {
			registry.Disable("toggle")
			registry.Enable("toggle")
		}
	}()
	go func() {
		defer wg.Done()
		for range rounds {
			if _, err := registry.Register(HandlerFunc(noop), "flip"); err != nil {
				t.Errorf("Register(flip) error = %v", err)
				return
			}
			registry.Unregister("flip")
		}
	}()

	errs := make(chan []string, 4)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				got := resolver.Resolve(context.Background(), Request{}).Names()
				if !slices.ContainsFunc(valid, func(want []string) bool { return slices.Equal(got, want) }) {
					errs <- got
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Fatalf("resolved %v, not a state the registry was ever in", got)
	}
}
