package actions

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/louisbranch/adminactions/internal/services/admin/storage"
)

// memCollection is an in-memory articles collection for dispatcher tests.
type memCollection struct {
	mu         sync.Mutex
	order      []string
	articles   map[string]storage.Article
	updates    int
	deletes    int
	resolveErr error
}

func newMemCollection(articles ...storage.Article) *memCollection {
	c := &memCollection{articles: make(map[string]storage.Article)}
	for _, article := range articles {
		c.order = append(c.order, article.ID)
		c.articles[article.ID] = article
	}
	return c
}

func (c *memCollection) ResolveRecords(_ context.Context, ids []string) ([]storage.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolveErr != nil {
		return nil, c.resolveErr
	}
	out := make([]storage.Record, 0, len(ids))
	for _, id := range ids {
		if article, ok := c.articles[id]; ok {
			out = append(out, article)
		}
	}
	return out, nil
}

// MatchingIDs supports "field = value" filters only.
func (c *memCollection) MatchingIDs(_ context.Context, filter string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	field, value := "", ""
	if strings.TrimSpace(filter) != "" {
		parts := strings.SplitN(filter, "=", 2)
		if len(parts) != 2 {
			return nil, errors.New("unsupported filter")
		}
		field = strings.TrimSpace(parts[0])
		value = strings.Trim(strings.TrimSpace(parts[1]), `"`)
	}
	var out []string
	for _, id := range c.order {
		article, ok := c.articles[id]
		if !ok {
			continue
		}
		if field != "" && article.Fields()[field] != value {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (c *memCollection) UpdateRecords(_ context.Context, ids []string, changes map[string]string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates++
	updated := 0
	for _, id := range ids {
		article, ok := c.articles[id]
		if !ok {
			continue
		}
		if status, ok := changes["status"]; ok {
			article.Status = status
		}
		if title, ok := changes["title"]; ok {
			article.Title = title
		}
		c.articles[id] = article
		updated++
	}
	return updated, nil
}

func (c *memCollection) DeleteRecords(_ context.Context, ids []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	deleted := 0
	for _, id := range ids {
		if _, ok := c.articles[id]; ok {
			delete(c.articles, id)
			deleted++
		}
	}
	return deleted, nil
}

func (c *memCollection) status(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.articles[id].Status
}

func (c *memCollection) mutations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates + c.deletes
}

// recordingSink collects pushed messages.
type recordingSink struct {
	mu       sync.Mutex
	messages []Message
	identity []string
}

func (s *recordingSink) Push(_ context.Context, identity string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.identity = append(s.identity, identity)
}

// recordingAudit collects audit entries.
type recordingAudit struct {
	mu      sync.Mutex
	entries []storage.ActionLogEntry
	err     error
}

func (a *recordingAudit) PutActionLog(_ context.Context, entry storage.ActionLogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, entry)
	return nil
}

func (a *recordingAudit) ListActionLogs(_ context.Context, limit int) ([]storage.ActionLogEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit <= 0 || limit > len(a.entries) {
		limit = len(a.entries)
	}
	return append([]storage.ActionLogEntry(nil), a.entries[:limit]...), nil
}

// setStatus returns a handler that sets status on every record.
func setStatus(status string) HandlerFunc {
	return func(ctx context.Context, ac *Context, records []storage.Record) (Result, error) {
		ids := make([]string, 0, len(records))
		for _, record := range records {
			ids = append(ids, record.RecordID())
		}
		if _, err := ac.Collection().UpdateRecords(ctx, ids, map[string]string{"status": status}); err != nil {
			return Result{}, err
		}
		return NoResponse(), nil
	}
}

func noop(context.Context, *Context, []storage.Record) (Result, error) {
	return NoResponse(), nil
}

func publishArticles(ctx context.Context, ac *Context, records []storage.Record) (Result, error) {
	return setStatus(storage.ArticleStatusPublished)(ctx, ac, records)
}
