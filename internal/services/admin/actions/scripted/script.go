package scripted

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/adminactions/internal/services/admin/actions"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
)

const (
	// DefaultStepLimit bounds the VM instructions of one evaluation.
	DefaultStepLimit = 10_000_000
	// hookInterval is how many instructions run between limit checks.
	hookInterval = 1000
)

// ErrStepLimit is returned when a script exceeds its instruction budget.
var ErrStepLimit = errors.New("script exceeded its instruction budget")

// Script is a Lua-defined bulk action. Each invocation evaluates the source in
// a fresh interpreter state, so a Script is safe for concurrent use.
type Script struct {
	// StepLimit overrides DefaultStepLimit when positive.
	StepLimit int

	name        string
	description string
	permissions []string
	path        string
	source      string
}

// Outcome is the decoded result of a script run.
type Outcome struct {
	Changes map[string]string
	// IDs restricts the changes to these records when non-nil.
	IDs     []string
	Message string
	Level   actions.Level
}

// Load reads and validates one script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return Parse(path, string(data))
}

// Parse validates source and reads its metadata. path names the chunk in
// errors and seeds the action name when the script sets none.
func Parse(path string, source string) (*Script, error) {
	script := &Script{path: path, source: source}
	state, _, err := script.evaluate(context.Background())
	if err != nil {
		return nil, err
	}

	script.name = stringField(state, "name")
	if script.name == "" {
		script.name = actions.CanonicalName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	if !actions.ValidName(script.name) {
		return nil, fmt.Errorf("script %s: invalid action name %q", path, script.name)
	}
	script.description = stringField(state, "description")

	state.Field(-1, "permissions")
	if state.TypeOf(-1) == lua.TypeTable {
		script.permissions = stringArray(state, -1)
	}
	state.Pop(1)

	state.Field(-1, "run")
	if !state.IsFunction(-1) {
		return nil, fmt.Errorf("script %s: run must be a function", path)
	}
	return script, nil
}

// LoadDir loads every *.lua file in dir in lexical order.
func LoadDir(dir string) ([]*Script, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return nil, fmt.Errorf("glob scripts in %s: %w", dir, err)
	}
	sort.Strings(paths)
	scripts := make([]*Script, 0, len(paths))
	for _, path := range paths {
		script, err := Load(path)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

// RegisterDir loads dir and registers each script as a global action.
func RegisterDir(registry *actions.Registry, dir string) ([]string, error) {
	scripts, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(scripts))
	for _, script := range scripts {
		name, err := registry.RegisterAction(script.Action())
		if err != nil {
			return nil, fmt.Errorf("register script %s: %w", script.path, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// Action describes the script as a registrable action.
func (s *Script) Action() actions.Action {
	return actions.Action{
		Name:        s.name,
		Description: s.description,
		Handler:     s,
		Permissions: slices.Clone(s.permissions),
	}
}

// ActionName implements the handler naming hook.
func (s *Script) ActionName() string {
	return s.name
}

// ActionDescription implements the handler description hook.
func (s *Script) ActionDescription() string {
	return s.description
}

// Path returns the file the script was loaded from.
func (s *Script) Path() string {
	return s.path
}

// HandleAction runs the script over records and applies its result.
func (s *Script) HandleAction(ctx context.Context, ac *actions.Context, records []storage.Record) (actions.Result, error) {
	if err := ctx.Err(); err != nil {
		return actions.Result{}, err
	}
	outcome, err := s.Run(ctx, records)
	if err != nil {
		return actions.Result{}, err
	}

	if len(outcome.Changes) > 0 {
		ids := recordIDs(records)
		if outcome.IDs != nil {
			ids = slices.DeleteFunc(ids, func(id string) bool { return !slices.Contains(outcome.IDs, id) })
		}
		if len(ids) > 0 {
			if _, err := ac.Collection().UpdateRecords(ctx, ids, outcome.Changes); err != nil {
				return actions.Result{}, fmt.Errorf("script %s: apply changes: %w", s.name, err)
			}
		}
	}
	if outcome.Message == "" {
		return actions.NoResponse(), nil
	}
	return actions.Notify(outcome.Level, outcome.Message), nil
}

// Run evaluates the script and calls run with records. The run stops with
// ctx's error once ctx is done, or with ErrStepLimit when it runs too long.
func (s *Script) Run(ctx context.Context, records []storage.Record) (Outcome, error) {
	state, guard, err := s.evaluate(ctx)
	if err != nil {
		return Outcome{}, err
	}
	state.Field(-1, "run")
	if !state.IsFunction(-1) {
		return Outcome{}, fmt.Errorf("script %s: run must be a function", s.path)
	}
	pushRecords(state, records)
	if err := state.ProtectedCall(1, 1, 0); err != nil {
		return Outcome{}, fmt.Errorf("script %s: run: %w", s.name, guard.cause(err))
	}
	return decodeOutcome(state, s.name)
}

// evaluate runs the chunk in a fresh sandboxed state and leaves the returned
// definition table on top of the stack.
func (s *Script) evaluate(ctx context.Context) (*lua.State, *stepGuard, error) {
	state := newSandbox()
	guard := &stepGuard{ctx: ctx, limit: s.StepLimit}
	if guard.limit <= 0 {
		guard.limit = DefaultStepLimit
	}
	lua.SetDebugHook(state, guard.hook, lua.MaskCount, hookInterval)

	if err := lua.LoadBuffer(state, s.source, "@"+s.path, ""); err != nil {
		return nil, nil, fmt.Errorf("load script %s: %w", s.path, err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, nil, fmt.Errorf("evaluate script %s: %w", s.path, guard.cause(err))
	}
	if state.TypeOf(-1) != lua.TypeTable {
		return nil, nil, fmt.Errorf("script %s: must return a table", s.path)
	}
	return state, guard, nil
}

// stepGuard aborts a Lua call when its context ends or its budget runs out.
type stepGuard struct {
	ctx     context.Context
	limit   int
	steps   int
	stopped error
}

func (g *stepGuard) hook(state *lua.State, _ lua.Debug) {
	g.steps += hookInterval
	switch {
	case g.ctx.Err() != nil:
		g.stopped = g.ctx.Err()
	case g.steps > g.limit:
		g.stopped = ErrStepLimit
	default:
		return
	}
	lua.Errorf(state, "%s", g.stopped.Error())
}

// cause prefers the reason the guard stopped the call over the Lua error.
func (g *stepGuard) cause(err error) error {
	if g.stopped != nil {
		return g.stopped
	}
	return err
}

// newSandbox opens the base, string, table and math libraries only; scripts
// have no file, OS or module loading access.
func newSandbox() *lua.State {
	state := lua.NewState()
	for _, lib := range []struct {
		name string
		open lua.Function
	}{
		{name: "_G", open: lua.BaseOpen},
		{name: "string", open: lua.StringOpen},
		{name: "table", open: lua.TableOpen},
		{name: "math", open: lua.MathOpen},
	} {
		lua.Require(state, lib.name, lib.open, true)
		state.Pop(1)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "require"} {
		state.PushNil()
		state.SetGlobal(name)
	}
	return state
}

func pushRecords(state *lua.State, records []storage.Record) {
	state.NewTable()
	for i, record := range records {
		state.NewTable()
		if fields, ok := record.(storage.FieldRecord); ok {
			values := fields.Fields()
			keys := make([]string, 0, len(values))
			for key := range values {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				state.PushString(values[key])
				state.SetField(-2, key)
			}
		}
		state.PushString(record.RecordID())
		state.SetField(-2, "id")
		state.RawSetInt(-2, i+1)
	}
}

func decodeOutcome(state *lua.State, name string) (Outcome, error) {
	outcome := Outcome{Level: actions.LevelInfo}
	switch state.TypeOf(-1) {
	case lua.TypeNil:
		return outcome, nil
	case lua.TypeTable:
	default:
		return Outcome{}, fmt.Errorf("script %s: run must return a table or nil", name)
	}

	state.Field(-1, "changes")
	if state.TypeOf(-1) == lua.TypeTable {
		outcome.Changes = stringMap(state, -1)
	}
	state.Pop(1)

	state.Field(-1, "ids")
	if state.TypeOf(-1) == lua.TypeTable {
		outcome.IDs = stringArray(state, -1)
	}
	state.Pop(1)

	outcome.Message = stringField(state, "message")
	switch level := actions.Level(stringField(state, "level")); level {
	case actions.LevelDebug, actions.LevelInfo, actions.LevelSuccess, actions.LevelWarning, actions.LevelError:
		outcome.Level = level
	}
	return outcome, nil
}

// stringField reads t[key] of the table on top of the stack as a string.
func stringField(state *lua.State, key string) string {
	state.Field(-1, key)
	defer state.Pop(1)
	if state.TypeOf(-1) != lua.TypeString && state.TypeOf(-1) != lua.TypeNumber {
		return ""
	}
	value, _ := state.ToString(-1)
	return strings.TrimSpace(value)
}

func stringArray(state *lua.State, index int) []string {
	index = state.AbsIndex(index)
	length := state.RawLength(index)
	out := make([]string, 0, length)
	for i := 1; i <= length; i++ {
		state.RawGetInt(index, i)
		if value, ok := state.ToString(-1); ok {
			out = append(out, value)
		}
		state.Pop(1)
	}
	return out
}

func stringMap(state *lua.State, index int) map[string]string {
	index = state.AbsIndex(index)
	out := map[string]string{}
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			switch state.TypeOf(-1) {
			case lua.TypeString, lua.TypeNumber:
				value, _ := state.ToString(-1)
				out[key] = value
			case lua.TypeBoolean:
				out[key] = fmt.Sprint(state.ToBoolean(-1))
			}
		}
		state.Pop(1)
	}
	return out
}

func recordIDs(records []storage.Record) []string {
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.RecordID())
	}
	return ids
}
