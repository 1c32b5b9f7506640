package adapter

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

var (
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
	markdownHeading = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// titleSuffixes are removed from <title> text.
var titleSuffixes = []string{" | Docs", " - Documentation", " | Documentation"}

// bareLanguageClasses are class names that name a code language on their own.
var bareLanguageClasses = map[string]bool{
	"python":     true,
	"javascript": true,
	"typescript": true,
	"bash":       true,
	"shell":      true,
	"json":       true,
	"yaml":       true,
}

// normalizeCodeLanguages rewrites the class of every <pre><code> to a single
// "language-x" so the converter labels fenced blocks. The language is read
// from the code element first, then from the enclosing <pre>.
func normalizeCodeLanguages(content *goquery.Selection) {
	content.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		code := pre.Find("code").First()
		if code.Length() == 0 {
			return
		}
		lang := codeLanguage(code.AttrOr("class", ""))
		if lang == "" {
			lang = codeLanguage(pre.AttrOr("class", ""))
		}
		if lang == "" {
			code.RemoveAttr("class")
			return
		}
		code.SetAttr("class", "language-"+lang)
	})
}

func codeLanguage(classes string) string {
	for _, cls := range strings.Fields(classes) {
		switch {
		case strings.HasPrefix(cls, "language-"):
			return strings.TrimPrefix(cls, "language-")
		case strings.HasPrefix(cls, "lang-"):
			return strings.TrimPrefix(cls, "lang-")
		case bareLanguageClasses[cls]:
			return cls
		}
	}
	return ""
}

// cleanMarkdown collapses runs of blank lines, strips trailing whitespace
// from every line and trims the document.
func cleanMarkdown(markdown string) string {
	markdown = excessNewlines.ReplaceAllString(markdown, "\n\n")
	lines := strings.Split(markdown, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractTitle tries og:title, <title> without site suffixes, the first
// <h1> and finally the first Markdown heading.
func extractTitle(doc *goquery.Document, markdown string) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		for _, suffix := range titleSuffixes {
			title = strings.TrimSuffix(title, suffix)
		}
		return title
	}

	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		if text := strings.Join(strings.Fields(h1.Text()), " "); text != "" {
			return text
		}
	}

	if m := markdownHeading.FindStringSubmatch(markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

type article struct {
	title string
	html  string
}

// readabilityArticle extracts the main article of a page whose structure
// matched no content selector.
func readabilityArticle(documentHTML, pageURL string) (article, bool) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return article{}, false
	}

	a, err := readability.FromReader(strings.NewReader(documentHTML), parsedURL)
	if err != nil {
		return article{}, false
	}

	content := strings.TrimSpace(a.Content)
	if content == "" || strings.TrimSpace(a.TextContent) == "" {
		return article{}, false
	}
	return article{title: strings.TrimSpace(a.Title), html: content}, true
}
