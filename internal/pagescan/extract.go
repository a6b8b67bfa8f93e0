package pagescan

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/probelab/page-resource-inspector/internal/model"
)

// ExtractResult holds everything discovered from a single document pass.
type ExtractResult struct {
	// Candidates is the partially-filled candidate set; the stylesheet
	// crawler may still enrich it before it is frozen.
	Candidates *CandidateSet
	// Stylesheets lists linked stylesheet URLs for secondary crawling,
	// in document order.
	Stylesheets []string
}

// Extract parses an HTML document and collects externally-referenced
// resources into a candidate set capped at maxResources. Traversal runs
// in a fixed category order (scripts, images, links, iframes, media,
// inline styles, style tags) so a given document always produces the
// same set. Raw URLs are resolved against base; unresolvable or blocked
// results are discarded, and the first-seen initiator wins on duplicates.
func Extract(body io.Reader, base *url.URL, maxResources int) (*ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{Candidates: NewCandidateSet(maxResources)}

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		result.add(base, sel.AttrOr("src", ""), model.InitiatorScript)
	})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		result.add(base, sel.AttrOr("src", ""), model.InitiatorImg)
		result.add(base, sel.AttrOr("data-src", ""), model.InitiatorImg)
		for _, entry := range strings.Split(sel.AttrOr("srcset", ""), ",") {
			// Each srcset entry is "URL [descriptor]"; only the URL
			// token before the first whitespace matters here.
			if fields := strings.Fields(entry); len(fields) > 0 {
				result.add(base, fields[0], model.InitiatorImgSrcset)
			}
		}
	})

	doc.Find("link[href]").Each(func(_ int, sel *goquery.Selection) {
		href := sel.AttrOr("href", "")
		switch {
		case linkRelContains(sel, "stylesheet"):
			if resolved, ok := resolveRef(base, href); ok && !IsBlockedURL(resolved) {
				result.Stylesheets = append(result.Stylesheets, resolved)
			}
			result.add(base, href, model.InitiatorStylesheet)
		case linkRelContains(sel, "preload"):
			result.add(base, href, model.InitiatorPreload)
		}
	})

	doc.Find("iframe[src]").Each(func(_ int, sel *goquery.Selection) {
		result.add(base, sel.AttrOr("src", ""), model.InitiatorIframe)
	})

	doc.Find("audio[src], video[src], source[src]").Each(func(_ int, sel *goquery.Selection) {
		result.add(base, sel.AttrOr("src", ""), model.InitiatorMedia)
	})

	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		for _, u := range ExtractCSSURLs(sel.AttrOr("style", ""), base) {
			result.addResolved(u, model.InitiatorInlineStyle)
		}
	})

	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		for _, u := range ExtractCSSURLs(sel.Text(), base) {
			result.addResolved(u, model.InitiatorStyleTag)
		}
	})

	return result, nil
}

// add resolves a raw URL against base and inserts it if it survives
// resolution and the blocklist.
func (r *ExtractResult) add(base *url.URL, raw string, initiator model.Initiator) {
	resolved, ok := resolveRef(base, raw)
	if !ok {
		return
	}
	r.addResolved(resolved, initiator)
}

func (r *ExtractResult) addResolved(resolved string, initiator model.Initiator) {
	if IsBlockedURL(resolved) {
		return
	}
	r.Candidates.Add(resolved, initiator)
}

// linkRelContains reports whether the link's rel attribute contains the
// given token. rel is a space-separated, case-insensitive token list
// ("preload", "Stylesheet", "preload stylesheet", ...).
func linkRelContains(sel *goquery.Selection, token string) bool {
	for _, t := range strings.Fields(sel.AttrOr("rel", "")) {
		if strings.EqualFold(t, token) {
			return true
		}
	}
	return false
}
