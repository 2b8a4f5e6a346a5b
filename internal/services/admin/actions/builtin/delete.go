package builtin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/adminactions/internal/services/admin/actions"
	admini18n "github.com/louisbranch/adminactions/internal/services/admin/i18n"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
	"github.com/louisbranch/adminactions/internal/services/admin/templates"
	"golang.org/x/text/message"
)

const (
	// DeleteSelectedName is the registered name of DeleteSelected.
	DeleteSelectedName = "delete_selected"
	// PermissionDelete is required to run DeleteSelected.
	PermissionDelete = "delete"
	// confirmValue marks the confirmed submission.
	confirmValue = "yes"
)

// DeleteSelected deletes the selected records after an intermediate
// confirmation page.
type DeleteSelected struct{}

// ActionName implements the handler naming hook.
func (DeleteSelected) ActionName() string {
	return DeleteSelectedName
}

// ActionDescription returns the catalog key of the action label.
func (DeleteSelected) ActionDescription() string {
	return "admin.delete.description"
}

// HandleAction renders the confirmation page first; the confirmed submission
// deletes the records and queues a success message.
func (DeleteSelected) HandleAction(ctx context.Context, ac *actions.Context, records []storage.Record) (actions.Result, error) {
	printer := admini18n.Printer(ac.Request().Locale)
	if !ac.HasPermission(ctx, PermissionDelete) {
		return actions.Notify(actions.LevelError, printer.Sprintf("admin.delete.denied")), nil
	}
	if !ac.Confirmed() {
		return actions.Respond(confirmationPage(ac, records, printer)), nil
	}

	deleted, err := ac.Collection().DeleteRecords(ctx, ac.Selection())
	if err != nil {
		return actions.Result{}, fmt.Errorf("delete %d records: %w", len(records), err)
	}
	return actions.Notify(actions.LevelSuccess, printer.Sprintf("admin.delete.success", deleted)), nil
}

func confirmationPage(ac *actions.Context, records []storage.Record, printer *message.Printer) http.Handler {
	req := ac.Request()
	hidden := ac.Codec().Encode(ac.Selection())
	hidden.Set(actions.ActionField, ac.ActionName())
	hidden.Set(actions.ConfirmField, confirmValue)

	items := make([]string, 0, len(records))
	for _, record := range records {
		items = append(items, RecordLabel(record))
	}
	page := templates.PageContext{
		Lang:         req.Locale.String(),
		Loc:          printer,
		Title:        printer.Sprintf("admin.delete.title"),
		CurrentPath:  req.Path,
		CurrentQuery: req.Query.Encode(),
	}
	view := templates.DeleteConfirmationView{
		FormAction: req.ListURL(),
		Items:      items,
		Hidden:     hidden,
		CancelURL:  req.ListURL(),
	}
	return templ.Handler(templates.DeleteConfirmationPage(page, view))
}

// RecordLabel returns the display label of a record: its title field when it
// has one, otherwise its identifier.
func RecordLabel(record storage.Record) string {
	if fields, ok := record.(storage.FieldRecord); ok {
		if title := fields.Fields()["title"]; title != "" {
			return title
		}
	}
	return record.RecordID()
}

// Register adds the built-in global actions to registry.
func Register(registry *actions.Registry) error {
	_, err := registry.RegisterAction(actions.Action{
		Handler:     DeleteSelected{},
		Permissions: []string{PermissionDelete},
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", DeleteSelectedName, err)
	}
	return nil
}
