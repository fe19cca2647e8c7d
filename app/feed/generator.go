package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/lysyi3m/newsdesk/app/cfg"
	"github.com/lysyi3m/newsdesk/app/news"
)

// Generator renders published stories as an RSS 2.0 document.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(stories []news.Story) (string, error) {
	var buf bytes.Buffer

	baseURL := g.baseURL()

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", "Newsdesk", 4)
	g.writeElement(&buf, "link", baseURL, 4)
	g.writeElement(&buf, "description", "Local community news, moderated and edited", 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(baseURL+"/feed.rss")))

	lastBuildDate := time.Now().In(time.Local)
	if len(stories) > 0 {
		lastBuildDate = time.UnixMilli(stories[0].Timestamp).In(time.Local)
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Newsdesk/%s", cfg.Get().Version), 4)

	for _, story := range stories {
		g.writeItem(&buf, story, baseURL)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, story news.Story, baseURL string) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(story.ID))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", story.EditedTitle, 6)
	g.writeElement(buf, "link", fmt.Sprintf("%s/api/news/%s", baseURL, story.ID), 6)
	g.writeElement(buf, "description", story.EditedSummary, 6)
	g.writeElement(buf, "pubDate", time.UnixMilli(story.Timestamp).In(time.Local).Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", story.Topic.String(), 6)
	g.writeElement(buf, "category", story.City, 6)

	// Local image URIs are not enclosed
	if g.isURL(story.ImageURI) {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
			html.EscapeString(story.ImageURI),
			html.EscapeString(g.imageType(story.ImageURI))))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) baseURL() string {
	if base := cfg.Get().BaseUrl; base != "" {
		return strings.TrimRight(base, "/")
	}
	return fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
}

func (g *Generator) imageType(uri string) string {
	ext := path.Ext(strings.SplitN(uri, "?", 2)[0])
	if mimeType := mime.TypeByExtension(ext); strings.HasPrefix(mimeType, "image/") {
		return mimeType
	}
	return "image/jpeg"
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
