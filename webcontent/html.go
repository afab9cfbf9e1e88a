package webcontent

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"insight-agent/types"
)

// Elements that never carry article content.
const strippedSelectors = "script, style, noscript, iframe, nav, header, footer, aside, form, " +
	".ad, .ads, .advertisement, [role=banner], [role=navigation], [role=complementary], [role=contentinfo]"

// Likely article containers, tried in order. The first whose extracted
// text exceeds minContainerChars wins; otherwise the full body is used.
var contentSelectors = []string{
	"article",
	"[role=main]",
	"main",
	".post-content",
	".article-content",
	".entry-content",
	".article-body",
	".story-body",
	".content",
	"#content",
}

const minContainerChars = 200

var (
	spacePattern   = regexp.MustCompile(`[ \t]+`)
	newlinePattern = regexp.MustCompile(`\n{3,}`)
)

func (f *Fetcher) extractHTML(rawURL, host string, body io.Reader) types.FetchedContent {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return f.failure(rawURL, fmt.Sprintf("could not parse HTML: %v", err))
	}

	doc.Find(strippedSelectors).Remove()

	title := firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="twitter:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	if title == "" {
		title = "Untitled"
	}

	description := firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="twitter:description"]`),
		metaContent(doc, `meta[name="description"]`),
	)
	author := firstNonEmpty(
		metaContent(doc, `meta[name="author"]`),
		metaContent(doc, `meta[property="article:author"]`),
		strings.TrimSpace(doc.Find(`[rel="author"]`).First().Text()),
	)
	publishedDate := firstNonEmpty(
		metaContent(doc, `meta[property="article:published_time"]`),
		metaContent(doc, `meta[name="date"]`),
		attrContent(doc, "time[datetime]", "datetime"),
	)
	siteName := firstNonEmpty(
		metaContent(doc, `meta[property="og:site_name"]`),
		metaContent(doc, `meta[name="application-name"]`),
		host,
	)

	container := doc.Find("body")
	for _, selector := range contentSelectors {
		candidate := doc.Find(selector).First()
		if candidate.Length() == 0 {
			continue
		}
		if len(formatContent(candidate)) > minContainerChars {
			container = candidate
			break
		}
	}

	content := formatContent(container)
	if content == "" {
		content = strings.TrimSpace(container.Text())
	}
	content = collapseWhitespace(content)
	content = truncate(content, f.cfg.FetchMaxContentChars)

	return types.FetchedContent{
		URL:           rawURL,
		Title:         title,
		Content:       content,
		Description:   description,
		Author:        author,
		PublishedDate: publishedDate,
		SiteName:      siteName,
		WordCount:     len(strings.Fields(content)),
		Success:       true,
	}
}

// formatContent walks heading/paragraph/list/table/quote/code elements in
// document order and applies light markdown-like formatting.
func formatContent(sel *goquery.Selection) string {
	var parts []string

	sel.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, table").Each(func(_ int, node *goquery.Selection) {
		// Skip tags nested inside another captured tag (a <p> inside a
		// <blockquote>, a <table> inside a <li>) so text is not doubled.
		if node.ParentsFiltered("li, blockquote, pre, table").Length() > 0 {
			return
		}

		text := strings.TrimSpace(node.Text())
		if text == "" {
			return
		}

		switch goquery.NodeName(node) {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			parts = append(parts, "## "+text)
		case "li":
			parts = append(parts, "• "+text)
		case "blockquote":
			parts = append(parts, "> "+text)
		default:
			parts = append(parts, text)
		}
	})

	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func attrContent(doc *goquery.Document, selector, attr string) string {
	content, _ := doc.Find(selector).First().Attr(attr)
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	s = spacePattern.ReplaceAllString(s, " ")
	s = newlinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
