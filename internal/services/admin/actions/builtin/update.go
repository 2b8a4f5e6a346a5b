package builtin

import (
	"context"
	"fmt"

	"github.com/louisbranch/adminactions/internal/services/admin/actions"
	admini18n "github.com/louisbranch/adminactions/internal/services/admin/i18n"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
)

// FieldUpdate sets one field to a fixed value on every selected record.
type FieldUpdate struct {
	Field string
	Value string
	// MessageKey formats the success message with the updated count.
	MessageKey string
}

// HandleAction implements actions.Handler.
func (u FieldUpdate) HandleAction(ctx context.Context, ac *actions.Context, records []storage.Record) (actions.Result, error) {
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.RecordID())
	}
	updated, err := ac.Collection().UpdateRecords(ctx, ids, map[string]string{u.Field: u.Value})
	if err != nil {
		return actions.Result{}, fmt.Errorf("update %s on %d records: %w", u.Field, len(ids), err)
	}
	if u.MessageKey == "" {
		return actions.NoResponse(), nil
	}
	printer := admini18n.Printer(ac.Request().Locale)
	return actions.Notify(actions.LevelSuccess, printer.Sprintf(u.MessageKey, updated)), nil
}

// Publish marks articles published.
func Publish() actions.Action {
	return actions.Action{
		Description: "admin.articles.publish.description",
		Handler: FieldUpdate{
			Field:      "status",
			Value:      storage.ArticleStatusPublished,
			MessageKey: "admin.articles.published",
		},
	}
}

// Unpublish moves articles back to draft.
func Unpublish() actions.Action {
	return actions.Action{
		Description: "admin.articles.unpublish.description",
		Handler: FieldUpdate{
			Field:      "status",
			Value:      storage.ArticleStatusDraft,
			MessageKey: "admin.articles.unpublished",
		},
	}
}
