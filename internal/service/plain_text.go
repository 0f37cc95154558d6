package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup from value and returns the remaining text exactly as the client typed it.
// Ampersands are escaped before sanitising so entity-like text such as "&amp;" survives literally,
// and the policy's output escaping is undone afterwards.
func plainText(policy *bluemonday.Policy, value string) string {
	guarded := strings.ReplaceAll(value, "&", "&amp;")
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(guarded)))
}
