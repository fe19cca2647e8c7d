package feed

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/newsdesk/app/textfmt"
)

const blockSelector = "p, div, li, h1, h2, h3, h4, h5, h6, blockquote, tr, section, article"

// ContentExtractor turns item HTML into plain text suitable for moderation.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (e *ContentExtractor) Run(data []byte) (string, error) {
	doc, err := e.parse(data)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, iframe, nav, header, footer, aside, figcaption").Remove()
	doc.Find("br").ReplaceWithHtml(" ")
	doc.Find(blockSelector).AppendHtml(" ")

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	text := textfmt.Normalize(root.Text())
	if text == "" {
		return "", fmt.Errorf("no text extracted from HTML data")
	}

	return text, nil
}

// FirstImage returns the src of the first image in data, if any.
func (e *ContentExtractor) FirstImage(data []byte) string {
	doc, err := e.parse(data)
	if err != nil {
		return ""
	}

	src, _ := doc.Find("img[src]").First().Attr("src")
	return src
}

func (e *ContentExtractor) parse(data []byte) (*goquery.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}
