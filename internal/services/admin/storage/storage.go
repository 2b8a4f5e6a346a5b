package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/adminactions/internal/platform/errors"
)

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// Record is one selectable row of a collection.
type Record interface {
	RecordID() string
}

// FieldRecord is a Record that exposes its columns as strings.
type FieldRecord interface {
	Record
	Fields() map[string]string
}

// Collection is the selectable collection behind one list view.
//
// ResolveRecords returns records in the order of ids and omits ids with no
// matching record. MatchingIDs returns every identifier matching an AIP-160
// filter expression; an empty filter matches everything.
type Collection interface {
	ResolveRecords(ctx context.Context, ids []string) ([]Record, error)
	MatchingIDs(ctx context.Context, filter string) ([]string, error)
	UpdateRecords(ctx context.Context, ids []string, changes map[string]string) (int, error)
	DeleteRecords(ctx context.Context, ids []string) (int, error)
}

// Article statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
	ArticleStatusArchived  = "archived"
)

// Article is the record type of the articles list view.
type Article struct {
	ID        string
	Title     string
	Author    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecordID implements Record.
func (a Article) RecordID() string {
	return a.ID
}

// Fields implements FieldRecord.
func (a Article) Fields() map[string]string {
	return map[string]string{
		"id":         a.ID,
		"title":      a.Title,
		"author":     a.Author,
		"status":     a.Status,
		"created_at": a.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ArticlePage is one page of a filtered article listing.
type ArticlePage struct {
	Articles      []Article
	NextPageToken string
}

// ArticleStore persists articles.
type ArticleStore interface {
	PutArticle(ctx context.Context, article Article) error
	GetArticle(ctx context.Context, id string) (Article, error)
	ListArticles(ctx context.Context, filter string, pageSize int, pageToken string) (ArticlePage, error)
}

// Action log outcomes.
const (
	ActionOutcomeCompleted = "completed"
	ActionOutcomeResponse  = "response"
	ActionOutcomeFailed    = "failed"
)

// ActionLogEntry records one bulk action invocation for audit.
type ActionLogEntry struct {
	ID             string
	ViewName       string
	ActionName     string
	Identity       string
	RequestedCount int
	ResolvedCount  int
	Outcome        string
	CreatedAt      time.Time
}

// ActionLogStore persists bulk action audit entries.
type ActionLogStore interface {
	PutActionLog(ctx context.Context, entry ActionLogEntry) error
	ListActionLogs(ctx context.Context, limit int) ([]ActionLogEntry, error)
}

// Store is a composite interface for admin storage concerns.
type Store interface {
	Collection
	ArticleStore
	ActionLogStore
	Close() error
}
