package actions

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/adminactions/internal/platform/errors"
	"github.com/louisbranch/adminactions/internal/platform/id"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName scopes dispatch spans.
const tracerName = "github.com/louisbranch/adminactions/internal/services/admin/actions"

// State is a dispatch lifecycle state.
type State int

const (
	StateAwaitingAction State = iota
	StateValidated
	StateResolved
	StateInvoked
	StateCompleted
	StateRejected
)

// String returns the state label.
func (s State) String() string {
	switch s {
	case StateAwaitingAction:
		return "awaiting_action"
	case StateValidated:
		return "validated"
	case StateResolved:
		return "resolved"
	case StateInvoked:
		return "invoked"
	case StateCompleted:
		return "completed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateRejected
}

// OutcomeKind is the response directive produced by a dispatch.
type OutcomeKind int

const (
	// OutcomeRedirect sends the operator back to the list view.
	OutcomeRedirect OutcomeKind = iota
	// OutcomeResponse serves a handler-provided payload verbatim.
	OutcomeResponse
	// OutcomeRejected re-renders the list view with an error message.
	OutcomeRejected
)

// Outcome is the result of one dispatch.
type Outcome struct {
	Kind  OutcomeKind
	State State
	// Action is the requested action name, possibly empty.
	Action string
	// RedirectURL is the list view URL with its query intact.
	RedirectURL string
	// Response is set for OutcomeResponse.
	Response http.Handler
	// Err is set for OutcomeRejected. Internal failures carry a generic error.
	Err *apperrors.Error
	// Processed is the number of records handed to the handler.
	Processed int
}

// MessageSink receives user-facing messages. Push is fire-and-forget.
type MessageSink interface {
	Push(ctx context.Context, identity string, msg Message)
}

// Dispatcher validates action submissions, runs the chosen handler and maps
// its result to an Outcome. A Dispatcher holds no per-request state and may be
// shared across goroutines.
type Dispatcher struct {
	// Codec decodes the submitted selection. Zero value uses SelectionField.
	Codec SelectionCodec
	// Messages receives handler messages. Nil drops them.
	Messages MessageSink
	// AuditLog records invocations when set.
	AuditLog storage.ActionLogStore
	// Tracer opens dispatch spans. Nil uses the global provider.
	Tracer trace.Tracer
	// Logf is the operational log channel. Nil uses log.Printf.
	Logf func(format string, args ...any)
	// Now is the audit clock. Nil uses time.Now.
	Now func() time.Time
}

// dispatchRun tracks one dispatch through its states.
type dispatchRun struct {
	state   State
	outcome Outcome
}

func (r *dispatchRun) advance(next State) {
	if r.state.Terminal() {
		return
	}
	r.state = next
}

func (r *dispatchRun) reject(err *apperrors.Error) Outcome {
	r.advance(StateRejected)
	r.outcome.Kind = OutcomeRejected
	r.outcome.State = r.state
	r.outcome.Err = err
	return r.outcome
}

// Dispatch runs the action chosen in req against view's selection.
func (d *Dispatcher) Dispatch(ctx context.Context, view *ViewResolver, req Request) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := d.tracer().Start(ctx, "admin.actions.dispatch")
	defer span.End()

	outcome := d.dispatch(ctx, view, req)

	span.SetAttributes(
		attribute.String("admin.view", view.View().Name),
		attribute.String("admin.action", outcome.Action),
		attribute.Int("admin.selection.count", outcome.Processed),
		attribute.String("admin.dispatch.state", outcome.State.String()),
	)
	if outcome.Err != nil {
		if outcome.Err.Code.Class() == apperrors.ClassInternal {
			span.SetStatus(codes.Error, outcome.Err.Message)
		} else {
			span.SetAttributes(attribute.String("admin.rejection", string(outcome.Err.Code)))
		}
	}
	return outcome
}

func (d *Dispatcher) dispatch(ctx context.Context, view *ViewResolver, req Request) Outcome {
	run := &dispatchRun{state: StateAwaitingAction}
	run.outcome.RedirectURL = req.ListURL()

	name := chosenAction(req.Form)
	run.outcome.Action = name
	if name == "" {
		return run.reject(rejection(ErrNoActionSelected))
	}

	enabled := view.Resolve(ctx, req)
	action, ok := enabled.Get(name)
	if !ok {
		return run.reject(rejection(ErrActionNotPermitted))
	}
	run.advance(StateValidated)

	cfg := view.View()
	collection := cfg.Collection
	if collection == nil {
		d.logf("admin action %q on view %q: view has no collection", name, cfg.Name)
		return run.reject(rejection(ErrActionFailed))
	}

	var selection Selection
	if req.SelectAcross() {
		ids, err := collection.MatchingIDs(ctx, req.Filter())
		if err != nil {
			d.logf("admin action %q on view %q: select across filter %q: %v", name, cfg.Name, req.Filter(), err)
			return run.reject(rejection(ErrActionFailed))
		}
		selection = Dedupe(ids)
	} else {
		selection = d.Codec.Decode(req.Form)
	}
	if selection.IsEmpty() {
		return run.reject(rejection(ErrNoItemsSelected))
	}

	records, err := collection.ResolveRecords(ctx, selection)
	if err != nil {
		d.logf("admin action %q on view %q: resolve %d records: %v", name, cfg.Name, len(selection), err)
		return run.reject(rejection(ErrActionFailed))
	}
	resolved, resolvedIDs := keepSelected(records, selection)
	if len(resolved) != len(selection) {
		d.logf("admin action %q on view %q: requested=%d resolved=%d", name, cfg.Name, len(selection), len(resolved))
	}
	if len(resolved) == 0 {
		return run.reject(rejection(ErrNoItemsSelected))
	}
	run.advance(StateResolved)

	ac := &Context{
		viewName:    cfg.Name,
		actionName:  name,
		request:     req,
		collection:  collection,
		permissions: cfg.Permissions,
		codec:       d.Codec,
		selection:   resolvedIDs,
	}
	result, err := d.invoke(ctx, action, ac, resolved)
	run.advance(StateInvoked)
	run.outcome.Processed = len(resolved)

	entry := storage.ActionLogEntry{
		ViewName:       cfg.Name,
		ActionName:     name,
		Identity:       req.Identity,
		RequestedCount: len(selection),
		ResolvedCount:  len(resolved),
	}
	if err != nil {
		d.logf("admin action %q on view %q by %q failed: %v", name, cfg.Name, req.Identity, err)
		entry.Outcome = storage.ActionOutcomeFailed
		d.audit(ctx, entry)
		return run.reject(rejection(ErrActionFailed))
	}

	for _, msg := range ac.messages {
		d.push(ctx, req.Identity, msg)
	}
	if result.Message != nil {
		d.push(ctx, req.Identity, *result.Message)
	}

	run.advance(StateCompleted)
	run.outcome.State = run.state
	if result.Response != nil {
		entry.Outcome = storage.ActionOutcomeResponse
		d.audit(ctx, entry)
		run.outcome.Kind = OutcomeResponse
		run.outcome.Response = result.Response
		return run.outcome
	}
	entry.Outcome = storage.ActionOutcomeCompleted
	d.audit(ctx, entry)
	run.outcome.Kind = OutcomeRedirect
	return run.outcome
}

// invoke calls the handler once, converting panics into errors.
func (d *Dispatcher) invoke(ctx context.Context, action Action, ac *Context, records []storage.Record) (result Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v\n%s", recovered, debug.Stack())
		}
	}()
	return action.Handler.HandleAction(ctx, ac, records)
}

// keepSelected drops records the collection returned that were not selected
// and returns the identifiers that resolved, in record order.
func keepSelected(records []storage.Record, selection Selection) ([]storage.Record, Selection) {
	wanted := make(map[string]struct{}, len(selection))
	for _, id := range selection {
		wanted[id] = struct{}{}
	}
	kept := make([]storage.Record, 0, len(records))
	ids := make(Selection, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		recordID := record.RecordID()
		if _, ok := wanted[recordID]; !ok {
			continue
		}
		delete(wanted, recordID)
		kept = append(kept, record)
		ids = append(ids, recordID)
	}
	return kept, ids
}

// chosenAction returns the trimmed action name; IndexField picks among
// several submitted action bars.
func chosenAction(form map[string][]string) string {
	values := form[ActionField]
	if len(values) == 0 {
		return ""
	}
	index := 0
	if raw := strings.TrimSpace(firstValue(form[IndexField])); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed >= len(values) {
			return ""
		}
		index = parsed
	}
	return strings.TrimSpace(values[index])
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (d *Dispatcher) push(ctx context.Context, identity string, msg Message) {
	if d.Messages == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	if msg.Level == "" {
		msg.Level = LevelInfo
	}
	d.Messages.Push(ctx, identity, msg)
}

func (d *Dispatcher) audit(ctx context.Context, entry storage.ActionLogEntry) {
	if d.AuditLog == nil {
		return
	}
	entryID, err := id.NewID()
	if err != nil {
		d.logf("admin action audit id: %v", err)
		return
	}
	entry.ID = entryID
	entry.CreatedAt = d.now()
	if err := d.AuditLog.PutActionLog(ctx, entry); err != nil {
		d.logf("admin action audit %q on view %q: %v", entry.ActionName, entry.ViewName, err)
	}
}

func (d *Dispatcher) tracer() trace.Tracer {
	if d.Tracer != nil {
		return d.Tracer
	}
	return otel.Tracer(tracerName)
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.Logf != nil {
		d.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}
