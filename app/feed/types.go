package feed

import (
	"time"

	"github.com/lysyi3m/newsdesk/app/news"
)

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string // raw, may contain HTML
	Content     string // raw, may contain HTML
	Text        string // plain text taken from Description or Content
	ImageURL    string
	PublishedAt time.Time
	Authors     []string
	Categories  []string

	ContentHash  string
	IsFiltered   bool
	FilterReason string
}

// Configuration types

// Config describes one local RSS/Atom file whose items are submitted as news.
// Every imported item is attributed to the configured city, topic and publisher.
type Config struct {
	Name           string         // Derived from filename (without .yml extension)
	Path           string         `yaml:"path"` // relative paths resolve against the imports directory
	City           string         `yaml:"city"`
	Topic          news.Topic     `yaml:"topic"`
	PublisherName  string         `yaml:"publisher_name"`
	PublisherPhone string         `yaml:"publisher_phone"`
	Settings       ConfigSettings `yaml:"settings"`
	Filters        []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled  bool `yaml:"enabled"`
	MaxItems int  `yaml:"max_items"`
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Submission turns an imported item into a submission from the configured publisher.
func (c *Config) Submission(item Item) news.Submission {
	return news.Submission{
		Title:          item.Title,
		Description:    item.Text,
		City:           c.City,
		Topic:          c.Topic,
		PublisherName:  c.PublisherName,
		PublisherPhone: c.PublisherPhone,
		ImageURI:       item.ImageURL,
	}
}
