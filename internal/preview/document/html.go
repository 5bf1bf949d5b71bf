package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IsStandalone reports whether generated text already looks like a
// complete document rather than a fragment.
func IsStandalone(text string) bool {
	head := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(head, "<!doctype") || strings.Contains(head, "<html")
}

// ExtractInlineScripts parses an HTML document and returns the bodies of
// its inline scripts, in document order. External scripts and non-script
// types are skipped. Used by the preflight to parse-check plain scripts
// before the browser ever loads the surface; a parse failure here never
// blocks the build.
func ExtractInlineScripts(htmlText string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return nil
	}

	var scripts []string
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		if typ, ok := sel.Attr("type"); ok && typ != "" && typ != "text/javascript" {
			return
		}
		body := strings.TrimSpace(sel.Text())
		if body != "" {
			scripts = append(scripts, body)
		}
	})

	return scripts
}

// Title extracts the document title from generated HTML, if any.
func Title(htmlText string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
