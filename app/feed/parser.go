package feed

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
	extractor    *ContentExtractor
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		extractor:    NewContentExtractor(),
	}
}

// RunFile parses the RSS/Atom document at path.
func (p *Parser) RunFile(path string) (*Metadata, []Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open feed file: %w", err)
	}
	defer file.Close()

	return p.run(file)
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	return p.run(bytes.NewReader(data))
}

func (p *Parser) run(r io.Reader) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		normalized := p.normalizeItem(item)
		normalized.ContentHash = p.generateContentHash(normalized)
		items = append(items, normalized)
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       strings.TrimSpace(item.Title),
		Link:        item.Link,
		Description: item.Description,
		Content:     item.Content,
		Categories:  item.Categories,
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = *item.UpdatedParsed
	}

	normalized.Authors = p.extractAuthors(item)
	normalized.Text = p.extractText(normalized)
	normalized.ImageURL = p.extractImage(item)

	return normalized
}

func (p *Parser) extractText(item Item) string {
	for _, source := range []string{item.Description, item.Content} {
		if strings.TrimSpace(source) == "" {
			continue
		}
		text, err := p.extractor.Run([]byte(source))
		if err != nil {
			slog.Debug("Failed to extract item text", "guid", item.GUID, "error", err)
			continue
		}
		return text
	}
	return ""
}

func (p *Parser) extractImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}

	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}

	return p.extractor.FirstImage([]byte(cmp.Or(item.Content, item.Description)))
}

func (p *Parser) generateContentHash(item Item) string {
	content := fmt.Sprintf("%s|%s",
		item.Title,
		item.Link)

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

func (p *Parser) extractAuthors(item *gofeed.Item) []string {
	var authors []string

	if len(item.Authors) > 0 {
		for _, author := range item.Authors {
			if author != nil {
				if name := p.formatAuthor(author.Name, author.Email); name != "" {
					authors = append(authors, name)
				}
			}
		}
	} else if item.Author != nil {
		if name := p.formatAuthor(item.Author.Name, item.Author.Email); name != "" {
			authors = append(authors, name)
		}
	}

	return authors
}

func (p *Parser) formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s (%s)", email, name)
	case name != "":
		return name
	default:
		return email
	}
}
