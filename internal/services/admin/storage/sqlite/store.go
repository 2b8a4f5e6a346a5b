package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/adminactions/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/adminactions/internal/services/admin/filter"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
	"github.com/louisbranch/adminactions/internal/services/admin/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const timeFormat = filter.TimestampLayout

const (
	// idChunkSize bounds the number of bound parameters per IN clause.
	idChunkSize     = 500
	defaultPageSize = 25
	maxPageSize     = 200
	maxLogLimit     = 500
)

const articleColumns = "id, title, author, status, created_at, updated_at"

// updatableColumns lists the article columns bulk actions may change.
var updatableColumns = map[string]bool{
	"title":  true,
	"author": true,
	"status": true,
}

// Store provides a SQLite-backed store implementing admin storage interfaces.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{
		sqlDB: sqlDB,
		now:   time.Now,
	}

	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(context.Background(), s.sqlDB, migrations.FS, "")
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Ping reports whether the database answers queries.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.sqlDB.PingContext(ctx)
}

// PutArticle inserts or replaces an article.
func (s *Store) PutArticle(ctx context.Context, article storage.Article) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(article.ID) == "" {
		return fmt.Errorf("article id is required")
	}
	if strings.TrimSpace(article.Status) == "" {
		article.Status = storage.ArticleStatusDraft
	}
	now := s.now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = article.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO articles (id, title, author, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    author = excluded.author,
    status = excluded.status,
    updated_at = excluded.updated_at`,
		article.ID,
		article.Title,
		article.Author,
		article.Status,
		article.CreatedAt.UTC().Format(timeFormat),
		article.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("put article %s: %w", article.ID, err)
	}
	return nil
}

// GetArticle returns one article or storage.ErrNotFound.
func (s *Store) GetArticle(ctx context.Context, id string) (storage.Article, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Article{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE id = ?", id)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Article{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Article{}, fmt.Errorf("get article %s: %w", id, err)
	}
	return article, nil
}

// ListArticles returns one page of articles matching an AIP-160 filter,
// newest first.
func (s *Store) ListArticles(ctx context.Context, filterStr string, pageSize int, pageToken string) (storage.ArticlePage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ArticlePage{}, err
	}
	cond, err := filter.ParseArticleFilter(filterStr)
	if err != nil {
		return storage.ArticlePage{}, err
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	offset, err := decodePageToken(pageToken)
	if err != nil {
		return storage.ArticlePage{}, err
	}

	query := "SELECT " + articleColumns + " FROM articles" + cond.Where() +
		" ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"
	params := append(append([]any{}, cond.Params...), pageSize+1, offset)
	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return storage.ArticlePage{}, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	page := storage.ArticlePage{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return storage.ArticlePage{}, fmt.Errorf("scan article: %w", err)
		}
		page.Articles = append(page.Articles, article)
	}
	if err := rows.Err(); err != nil {
		return storage.ArticlePage{}, fmt.Errorf("list articles: %w", err)
	}
	if len(page.Articles) > pageSize {
		page.Articles = page.Articles[:pageSize]
		page.NextPageToken = encodePageToken(offset + pageSize)
	}
	return page, nil
}

// ResolveRecords returns the articles for ids in the order of ids. Unknown
// identifiers are omitted.
func (s *Store) ResolveRecords(ctx context.Context, ids []string) ([]storage.Record, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	found := make(map[string]storage.Article, len(ids))
	err := forEachChunk(ids, func(chunk []string) error {
		query := "SELECT " + articleColumns + " FROM articles WHERE id IN (" + placeholders(len(chunk)) + ")"
		rows, err := s.sqlDB.QueryContext(ctx, query, stringArgs(chunk)...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			article, err := scanArticle(rows)
			if err != nil {
				return err
			}
			found[article.ID] = article
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("resolve articles: %w", err)
	}

	records := make([]storage.Record, 0, len(found))
	for _, id := range ids {
		if article, ok := found[id]; ok {
			records = append(records, article)
		}
	}
	return records, nil
}

// MatchingIDs returns the identifiers of every article matching filterStr, in
// list order.
func (s *Store) MatchingIDs(ctx context.Context, filterStr string) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	cond, err := filter.ParseArticleFilter(filterStr)
	if err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT id FROM articles"+cond.Where()+" ORDER BY created_at DESC, id ASC", cond.Params...)
	if err != nil {
		return nil, fmt.Errorf("match articles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan article id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match articles: %w", err)
	}
	return ids, nil
}

// UpdateRecords applies changes to the articles in ids and returns the number
// of rows changed. Only title, author and status may be changed.
func (s *Store) UpdateRecords(ctx context.Context, ids []string, changes map[string]string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	if len(changes) == 0 || len(ids) == 0 {
		return 0, nil
	}
	fields := make([]string, 0, len(changes))
	for field := range changes {
		if !updatableColumns[field] {
			return 0, fmt.Errorf("field %q cannot be updated", field)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	assignments := make([]string, 0, len(fields)+1)
	setParams := make([]any, 0, len(fields)+1)
	for _, field := range fields {
		assignments = append(assignments, field+" = ?")
		setParams = append(setParams, changes[field])
	}
	assignments = append(assignments, "updated_at = ?")
	setParams = append(setParams, s.now().UTC().Format(timeFormat))
	prefix := "UPDATE articles SET " + strings.Join(assignments, ", ") + " WHERE id IN ("

	return s.execChunked(ctx, ids, func(chunk []string) (string, []any) {
		return prefix + placeholders(len(chunk)) + ")", append(append([]any{}, setParams...), stringArgs(chunk)...)
	})
}

// DeleteRecords deletes the articles in ids and returns the number removed.
func (s *Store) DeleteRecords(ctx context.Context, ids []string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	return s.execChunked(ctx, ids, func(chunk []string) (string, []any) {
		return "DELETE FROM articles WHERE id IN (" + placeholders(len(chunk)) + ")", stringArgs(chunk)
	})
}

// execChunked runs one statement per id chunk inside a single transaction.
func (s *Store) execChunked(ctx context.Context, ids []string, build func(chunk []string) (string, []any)) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	total := 0
	err = forEachChunk(ids, func(chunk []string) error {
		query, params := build(chunk)
		result, err := tx.ExecContext(ctx, query, params...)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		total += int(affected)
		return nil
	})
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("exec bulk statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk statement: %w", err)
	}
	return total, nil
}

// PutActionLog appends one audit entry.
func (s *Store) PutActionLog(ctx context.Context, entry storage.ActionLogEntry) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("action log id is required")
	}
	if strings.TrimSpace(entry.ActionName) == "" {
		return fmt.Errorf("action name is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO action_logs (id, view_name, action_name, identity, requested_count, resolved_count, outcome, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ViewName,
		entry.ActionName,
		entry.Identity,
		entry.RequestedCount,
		entry.ResolvedCount,
		entry.Outcome,
		entry.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("put action log %s: %w", entry.ID, err)
	}
	return nil
}

// ListActionLogs returns the most recent audit entries, newest first.
func (s *Store) ListActionLogs(ctx context.Context, limit int) ([]storage.ActionLogEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxLogLimit {
		limit = maxLogLimit
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, view_name, action_name, identity, requested_count, resolved_count, outcome, created_at
FROM action_logs
ORDER BY created_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list action logs: %w", err)
	}
	defer rows.Close()

	var entries []storage.ActionLogEntry
	for rows.Next() {
		var (
			entry     storage.ActionLogEntry
			createdAt string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.ViewName,
			&entry.ActionName,
			&entry.Identity,
			&entry.RequestedCount,
			&entry.ResolvedCount,
			&entry.Outcome,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan action log: %w", err)
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list action logs: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (storage.Article, error) {
	var (
		article   storage.Article
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&article.ID, &article.Title, &article.Author, &article.Status, &createdAt, &updatedAt); err != nil {
		return storage.Article{}, err
	}
	var err error
	if article.CreatedAt, err = parseTime(createdAt); err != nil {
		return storage.Article{}, err
	}
	if article.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return storage.Article{}, err
	}
	return article, nil
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}

func forEachChunk(ids []string, fn func(chunk []string) error) error {
	for start := 0; start < len(ids); start += idChunkSize {
		end := start + idChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := fn(ids[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}

func encodePageToken(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("invalid page token")
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid page token")
	}
	return offset, nil
}

var _ storage.Store = (*Store)(nil)
