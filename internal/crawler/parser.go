package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/docscrape/internal/model"
)

// Parser extracts the title and same-host links of an HTML page.
type Parser struct {
	// pageURL is the address of the page being parsed, used for resolving relative URLs.
	pageURL *url.URL

	// contentSelector restricts link extraction to the first matching element.
	// Empty means the whole document.
	contentSelector string
}

// ParseResult contains the information the recursive strategy needs from a page.
type ParseResult struct {
	// Title is the <title> text, or the first <h1> when the title is empty.
	Title string

	// InternalLinks are the resolved hrefs in the link area that point to the
	// page's host, in document order, without fragments or trailing slashes.
	InternalLinks []string
}

// NewParser creates a parser for the page at pageURL.
func NewParser(pageURL, contentSelector string) (*Parser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	return &Parser{pageURL: u, contentSelector: contentSelector}, nil
}

// Parse reads HTML content and extracts the title and links.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Title:         extractTitle(doc),
		InternalLinks: make([]string, 0),
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if resolved := p.resolveURL(getAttr(n, "href")); resolved != "" && p.isSameHost(resolved) {
				result.InternalLinks = append(result.InternalLinks, model.NormalizeURL(resolved))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(p.linkRoot(doc))

	return result, nil
}

// linkRoot returns the node links are collected from.
func (p *Parser) linkRoot(doc *html.Node) *html.Node {
	if p.contentSelector == "" {
		return doc
	}
	sel := goquery.NewDocumentFromNode(doc).Find(p.contentSelector).First()
	if sel.Length() == 0 {
		return doc
	}
	return sel.Nodes[0]
}

// resolveURL resolves href against the page URL. Script, mail, phone,
// data and fragment-only links resolve to "".
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "#"} {
		if strings.HasPrefix(href, prefix) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return p.pageURL.ResolveReference(u).String()
}

func (p *Parser) isSameHost(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, p.pageURL.Host)
}

// extractTitle returns the trimmed <title> text, falling back to the first
// <h1>.
func extractTitle(doc *html.Node) string {
	if n := findElement(doc, "title"); n != nil {
		if title := strings.TrimSpace(textContent(n)); title != "" {
			return title
		}
	}
	if n := findElement(doc, "h1"); n != nil {
		return strings.Join(strings.Fields(textContent(n)), " ")
	}
	return ""
}

// findElement returns the first element named tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
