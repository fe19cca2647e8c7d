package feed

import (
	"strings"
	"testing"
)

func TestContentExtractor_Paragraphs(t *testing.T) {
	extractor := NewContentExtractor()

	html := `<p>The <b>bridge</b> on Elm Street reopens today.</p><p>Residents can cross again.<br>Traffic is light.</p>`

	text, err := extractor.Run([]byte(html))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	want := "The bridge on Elm Street reopens today. Residents can cross again. Traffic is light."
	if text != want {
		t.Errorf("Expected '%s', got '%s'", want, text)
	}
}

func TestContentExtractor_DropsChrome(t *testing.T) {
	extractor := NewContentExtractor()

	html := `<html><body>
		<nav>Home | About</nav>
		<article><h1>Park cleanup</h1><p>Volunteers cleared the park.</p></article>
		<footer>Copyright 2024</footer>
		<script>alert("x")</script>
	</body></html>`

	text, err := extractor.Run([]byte(html))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(text, "Volunteers cleared the park.") {
		t.Errorf("Expected article text, got '%s'", text)
	}
	for _, unwanted := range []string{"Home | About", "Copyright", "alert"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("Expected '%s' to be removed, got '%s'", unwanted, text)
		}
	}
}

func TestContentExtractor_PlainTextAndEntities(t *testing.T) {
	text, err := NewContentExtractor().Run([]byte("Fish &amp; chips   night at the   community hall"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if text != "Fish & chips night at the community hall" {
		t.Errorf("Expected decoded, collapsed text, got '%s'", text)
	}
}

func TestContentExtractor_Empty(t *testing.T) {
	extractor := NewContentExtractor()

	if _, err := extractor.Run(nil); err == nil {
		t.Error("Expected error for empty data")
	}
	if _, err := extractor.Run([]byte("<div>   </div>")); err == nil {
		t.Error("Expected error when no text is present")
	}
}

func TestContentExtractor_FirstImage(t *testing.T) {
	extractor := NewContentExtractor()

	html := `<p>Intro</p><img alt="no source"><img src="https://example.com/a.jpg"><img src="https://example.com/b.jpg">`
	if got := extractor.FirstImage([]byte(html)); got != "https://example.com/a.jpg" {
		t.Errorf("Expected first image, got '%s'", got)
	}
	if got := extractor.FirstImage([]byte("<p>No images</p>")); got != "" {
		t.Errorf("Expected no image, got '%s'", got)
	}
}
