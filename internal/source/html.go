package source

import (
	"strings"

	"golang.org/x/net/html"
)

// ExtractReviewsHTML pulls review snippets out of a saved review page.
// Elements whose class mentions "review" or "comment" are taken as one
// snippet each; pages without such markup fall back to <p> and <li> text.
func ExtractReviewsHTML(htmlContent string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	snippets := collect(doc, isReviewNode)
	if len(snippets) == 0 {
		snippets = collect(doc, func(n *html.Node) bool {
			return n.Data == "p" || n.Data == "li"
		})
	}

	return dedupe(snippets), nil
}

// collect returns the visible text of the innermost elements matching pick
func collect(root *html.Node, pick func(*html.Node) bool) []string {
	var out []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skipElement(n) {
				return
			}
			if pick(n) && !hasMatchingDescendant(n, pick) {
				if text := visibleText(n); text != "" {
					out = append(out, text)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(root)
	return out
}

func hasMatchingDescendant(n *html.Node, pick func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (pick(c) || hasMatchingDescendant(c, pick)) {
			return true
		}
	}
	return false
}

func isReviewNode(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		class := strings.ToLower(attr.Val)
		if strings.Contains(class, "review") || strings.Contains(class, "comment") {
			return true
		}
	}
	return false
}

func skipElement(n *html.Node) bool {
	switch n.Data {
	case "script", "style", "noscript", "iframe", "head":
		return true
	}
	return false
}

// visibleText joins the text nodes under n, skipping scripts/styles
func visibleText(n *html.Node) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipElement(n) {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return strings.Join(parts, " ")
}
