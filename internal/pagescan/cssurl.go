package pagescan

import (
	"net/url"
	"regexp"
	"strings"
)

// Matches url("path"), url('path'), and url(path).
var cssURLPattern = regexp.MustCompile(`url\s*\(\s*['"]?([^'")]+)['"]?\s*\)`)

// ExtractCSSURLs scans CSS text for url(...) references and resolves
// each against base, in order of appearance. Unresolvable values are
// dropped silently. The caller is responsible for blocklist checks and
// deduplication on insertion.
func ExtractCSSURLs(cssText string, base *url.URL) []string {
	matches := cssURLPattern.FindAllStringSubmatch(cssText, -1)
	if len(matches) == 0 {
		return nil
	}

	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		val := strings.TrimSpace(m[1])
		if val == "" || strings.HasPrefix(val, "data:") {
			continue
		}
		if resolved, ok := resolveRef(base, val); ok {
			urls = append(urls, resolved)
		}
	}
	return urls
}
