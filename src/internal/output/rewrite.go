// FILE: logscribe/src/internal/output/rewrite.go
package output

import "strings"

// TagRewriter strips a configured dotted prefix from tags
type TagRewriter struct {
	prefix          string
	separated       string
	defaultCategory string
}

// NewTagRewriter returns a rewriter for prefix; an empty prefix disables it
func NewTagRewriter(prefix, defaultCategory string) *TagRewriter {
	r := &TagRewriter{
		prefix:          prefix,
		defaultCategory: defaultCategory,
	}
	if prefix != "" {
		r.separated = prefix + "."
	}
	return r
}

// Rewrite returns the tag to store for an incoming event.
// "app.access" -> "access", "app" -> default category, anything else as is.
func (r *TagRewriter) Rewrite(tag string) string {
	if r.prefix == "" {
		return tag
	}

	if tag == r.prefix {
		return r.defaultCategory
	}

	if len(tag) > len(r.separated) && strings.HasPrefix(tag, r.separated) {
		return tag[len(r.separated):]
	}

	return tag
}
