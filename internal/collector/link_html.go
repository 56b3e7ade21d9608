package collector

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var _ LinkCollector = (*HTMLLinkCollector)(nil)

// HTMLLinkCollector is a collector that collects links from a reader of an HTML or XHTML document.
//
// Links are grouped by the order of the configured tags: with the default tags, every anchor href comes first (in document
// order), followed by every image src (in document order).
//
//	c := NewHTMLLinkCollector()
//	links, err := c.GetLinks(r)
//	if err != nil {
//		return nil, err
//	}
//
//	fmt.Println(links)
type HTMLLinkCollector struct {
	tags []TagAttribute
}

// GetLinks collects links from a reader of an HTML document.
func (c HTMLLinkCollector) GetLinks(r io.Reader) ([]string, error) {
	z := html.NewTokenizer(r)
	buckets := make([][]string, len(c.tags))

process:
	for {
		switch tt := z.Next(); tt { // nolint: exhaustive // We ignore the other tokens because we focus on the tag attributes.
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				break process
			}

			return nil, fmt.Errorf("could not collect links from html doc: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tag := z.Token()

			for i, want := range c.tags {
				if tag.Data != want.Tag {
					continue
				}

				if val, ok := attrValue(tag, want.Attribute); ok {
					buckets[i] = append(buckets[i], val)
				}
			}
		}
	}

	total := 0
	for _, b := range buckets {
		total += len(b)
	}

	links := make([]string, 0, total)
	for _, b := range buckets {
		links = append(links, b...)
	}

	return links, nil
}

// attrValue returns the value of the first attribute with the given key. An attribute that is present but empty still counts.
func attrValue(tag html.Token, key string) (string, bool) {
	for _, attr := range tag.Attr {
		if attr.Key == key {
			// In HTML, \n does not mean new line. Browser will ignore it, so link like "\nhttps://example.org/\npath" will be interpreted
			// as "https://example.org/path".
			return strings.ReplaceAll(attr.Val, "\n", ""), true
		}
	}

	return "", false
}

// NewHTMLLinkCollector creates a new collector for collecting anchor hrefs and image sources from an HTML document.
func NewHTMLLinkCollector(tags ...TagAttribute) *HTMLLinkCollector {
	if len(tags) == 0 {
		tags = []TagAttribute{
			{Tag: "a", Attribute: "href"},
			{Tag: "img", Attribute: "src"},
		}
	}

	return &HTMLLinkCollector{tags: tags}
}
