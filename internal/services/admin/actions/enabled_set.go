package actions

import "slices"

// EnabledSet is the per-request mapping of action name to action. Iteration
// follows first insertion; overwriting a name updates the value in place.
type EnabledSet struct {
	names   []string
	actions map[string]Action
}

// NewEnabledSet returns an empty set.
func NewEnabledSet() *EnabledSet {
	return &EnabledSet{actions: make(map[string]Action)}
}

// Put adds or overwrites action, keeping the position of an existing name.
func (s *EnabledSet) Put(action Action) {
	if _, ok := s.actions[action.Name]; !ok {
		s.names = append(s.names, action.Name)
	}
	s.actions[action.Name] = cloneAction(action)
}

// Remove deletes name and reports whether it was present.
func (s *EnabledSet) Remove(name string) bool {
	if _, ok := s.actions[name]; !ok {
		return false
	}
	delete(s.actions, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	return true
}

// Get returns the action for name.
func (s *EnabledSet) Get(name string) (Action, bool) {
	if s == nil {
		return Action{}, false
	}
	action, ok := s.actions[name]
	if !ok {
		return Action{}, false
	}
	return cloneAction(action), true
}

// Has reports whether name is enabled.
func (s *EnabledSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.actions[name]
	return ok
}

// Len returns the number of enabled actions.
func (s *EnabledSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the enabled names in order.
func (s *EnabledSet) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.names)
}

// Actions returns the enabled actions in order.
func (s *EnabledSet) Actions() []Action {
	if s == nil {
		return nil
	}
	out := make([]Action, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, cloneAction(s.actions[name]))
	}
	return out
}

// Clone returns an independent copy.
func (s *EnabledSet) Clone() *EnabledSet {
	out := NewEnabledSet()
	for _, action := range s.Actions() {
		out.Put(action)
	}
	return out
}
