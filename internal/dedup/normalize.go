package dedup

import (
	"net/url"
	"strings"
	"unicode"
)

// Tracking parameters stripped before URLs are compared.
var trackingParams = []string{
	"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content",
	"fbclid", "gclid", "mc_cid", "mc_eid", "ref",
}

// NormalizeURL canonicalizes a link for exact-duplicate detection:
// tracking parameters and the leading www. are removed, scheme and
// host are lowercased, trailing slashes dropped.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	u.Fragment = ""

	q := u.Query()
	for _, p := range trackingParams {
		q.Del(p)
	}
	u.RawQuery = q.Encode()

	s := u.String()
	return strings.TrimSuffix(s, "/")
}

// NormalizeTitle lowercases, strips punctuation and collapses
// whitespace so trivially restyled headlines compare equal.
func NormalizeTitle(title string) string {
	title = strings.ToLower(title)
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "as": true, "is": true, "are": true,
	"was": true, "be": true, "by": true, "from": true, "after": true,
	"over": true, "amid": true, "about": true, "up": true, "out": true,
}

// SignificantWords returns up to max content words from a normalized
// title, skipping stop-words and tokens shorter than three runes.
// When nothing survives the filter the leading raw words are used so
// very short headlines still produce a comparable set.
func SignificantWords(normalizedTitle string, max int) []string {
	words := strings.Fields(normalizedTitle)
	out := make([]string, 0, max)
	for _, w := range words {
		if len(out) >= max {
			break
		}
		if stopWords[w] || len([]rune(w)) < 3 {
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		for i := 0; i < len(words) && i < max; i++ {
			out = append(out, words[i])
		}
	}
	return out
}
