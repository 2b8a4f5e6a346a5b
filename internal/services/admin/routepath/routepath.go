package routepath

import (
	"net/url"
	"strings"
)

const (
	Root = "/"
	// Healthz answers liveness probes without authentication.
	Healthz = "/healthz"
)

const (
	Articles       = "/articles"
	ArticlesPrefix = "/articles/"
)

const (
	Actions       = "/actions"
	ActionsPrefix = "/actions/"
)

const (
	// ActionDisableSuffix and ActionEnableSuffix close /actions/{name}/... routes.
	ActionDisableSuffix = "disable"
	ActionEnableSuffix  = "enable"
)

func ActionDisable(name string) string {
	return ActionsPrefix + escapeSegment(name) + "/" + ActionDisableSuffix
}

func ActionEnable(name string) string {
	return ActionsPrefix + escapeSegment(name) + "/" + ActionEnableSuffix
}

// WithQuery appends an encoded query to path when it is not empty.
func WithQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
