package admin

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/adminactions/internal/services/admin/actions"
	"github.com/louisbranch/adminactions/internal/services/admin/filter"
	"github.com/louisbranch/adminactions/internal/services/admin/i18n"
	routepath "github.com/louisbranch/adminactions/internal/services/admin/routepath"
	"github.com/louisbranch/adminactions/internal/services/admin/storage"
	"github.com/louisbranch/adminactions/internal/services/admin/templates"
	"github.com/louisbranch/adminactions/internal/services/shared/htmx"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const articleTimeLayout = "2006-01-02 15:04"

// handleArticlesPage renders the articles change list.
func (h *Handler) handleArticlesPage(w http.ResponseWriter, r *http.Request) {
	loc, tag := h.localizer(w, r)
	view := h.buildChangeList(r, loc, tag, nil)
	h.renderChangeList(w, r, loc, tag, view)
}

// handleArticlesAction dispatches a bulk action submitted from the list.
func (h *Handler) handleArticlesAction(w http.ResponseWriter, r *http.Request) {
	loc, tag := h.localizer(w, r)
	if !requireSameOrigin(w, r, loc) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	outcome := h.dispatcher.Dispatch(r.Context(), h.articles, actionRequest(r, tag))
	switch outcome.Kind {
	case actions.OutcomeRedirect:
		htmx.Redirect(w, r, outcome.RedirectURL)
	case actions.OutcomeResponse:
		if htmx.IsHTMXRequest(r) {
			// Intermediate pages are full documents; swap only their content.
			w.Header().Set("HX-Reselect", "#content")
			w.Header().Set("HX-Reswap", "outerHTML")
		}
		outcome.Response.ServeHTTP(w, r)
	default:
		selected := h.dispatcher.Codec.Decode(r.PostForm)
		view := h.buildChangeList(r, loc, tag, selected)
		view.Error = i18n.ErrorMessage(loc, outcome.Err)
		h.renderChangeList(w, r, loc, tag, view)
	}
}

func (h *Handler) renderChangeList(w http.ResponseWriter, r *http.Request, loc *message.Printer, tag language.Tag, view templates.ChangeListView) {
	title := loc.Sprintf("admin.articles.title")
	page := h.pageContext(tag, loc, r, title)
	htmx.RenderPage(w, r, nil, templates.ChangeListPage(page, view), htmx.TitleTag(title))
}

// buildChangeList loads one page of articles and the actions enabled for the
// request. selected pre-checks rows after a rejected dispatch.
func (h *Handler) buildChangeList(r *http.Request, loc *message.Printer, tag language.Tag, selected actions.Selection) templates.ChangeListView {
	query := listQuery(r.URL.Query())
	filterExpr := strings.TrimSpace(query.Get(actions.FilterField))
	pageToken := strings.TrimSpace(query.Get(pageTokenParam))

	nextQuery := url.Values{}
	for key, values := range query {
		if key != pageTokenParam {
			nextQuery[key] = values
		}
	}
	view := templates.ChangeListView{
		FormAction: routepath.WithQuery(routepath.Articles, query),
		Filter:     filterExpr,
		Columns: []string{
			loc.Sprintf("admin.articles.column.title"),
			loc.Sprintf("admin.articles.column.author"),
			loc.Sprintf("admin.articles.column.status"),
			loc.Sprintf("admin.articles.column.updated"),
		},
		Empty: loc.Sprintf("admin.articles.empty"),
	}

	enabled := h.articles.Resolve(r.Context(), actionRequest(r, tag))
	for _, action := range enabled.Actions() {
		view.Actions = append(view.Actions, templates.ActionOption{
			Name:  action.Name,
			Label: actionLabel(loc, action),
		})
	}

	if _, err := filter.ParseArticleFilter(filterExpr); err != nil {
		view.FilterError = loc.Sprintf("admin.articles.filter.invalid")
		return view
	}
	page, err := h.store.ListArticles(r.Context(), filterExpr, articlesPageSize, pageToken)
	if err != nil {
		h.logf("admin list articles (filter %q): %v", filterExpr, err)
		view.Error = loc.Sprintf("admin.error.storage_unavailable")
		return view
	}
	view.Rows = buildArticleRows(page.Articles, selected)
	if page.NextPageToken != "" {
		nextQuery.Set(pageTokenParam, page.NextPageToken)
		view.NextPageURL = routepath.WithQuery(routepath.Articles, nextQuery)
	}
	return view
}

// actionRequest builds the transport-neutral dispatch request. Only the POST
// body counts as the action form; the URL query is the preserved list state.
func actionRequest(r *http.Request, tag language.Tag) actions.Request {
	return actions.Request{
		Identity: operatorID(r.Context()),
		Form:     r.PostForm,
		Path:     routepath.Articles,
		Query:    listQuery(r.URL.Query()),
		Locale:   tag,
	}
}

func buildArticleRows(articles []storage.Article, selected actions.Selection) []templates.ChangeListRow {
	rows := make([]templates.ChangeListRow, 0, len(articles))
	for _, article := range articles {
		rows = append(rows, templates.ChangeListRow{
			ID: article.ID,
			Cells: []string{
				article.Title,
				article.Author,
				article.Status,
				article.UpdatedAt.UTC().Format(articleTimeLayout),
			},
			Selected: selected.Contains(article.ID),
		})
	}
	return rows
}
