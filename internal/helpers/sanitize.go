package helpers

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	postPolicyOnce sync.Once
	postPolicy     *bluemonday.Policy
)

// PostHTMLPolicy returns the policy applied to rendered post titles and
// excerpts. It keeps the formatting a post body commonly carries (paragraphs,
// emphasis, lists, links, figures) and removes scripts, event handlers and
// javascript: URLs. The policy is cached.
func PostHTMLPolicy() *bluemonday.Policy {
	postPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("figure", "figcaption")
		policy.AllowAttrs("class").OnElements("code", "pre", "figure", "a", "p", "span")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.AllowRelativeURLs(true)
		policy.RequireParseableURLs(true)
		postPolicy = policy
	})
	return postPolicy
}

// SanitizePostHTML cleans s with PostHTMLPolicy. Whitespace is kept as is so
// that sanitized markup stays byte-identical to clean input.
func SanitizePostHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	return PostHTMLPolicy().Sanitize(s)
}
