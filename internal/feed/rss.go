package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/PoorRican/BidBeast/internal/model"
)

// Upwork appends its brand to every entry title; the suffix carries no
// information and breaks title-based dedup across feeds.
const titleSuffix = " - Upwork"

// rssDocument models the subset of RSS 2.0 consumed by the pipeline.
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
}

// RSSSource fetches job feeds over HTTP and normalizes entries into
// RawEntry values.
type RSSSource struct {
	client *http.Client
}

// NewRSSSource creates a feed source backed by the given HTTP client.
func NewRSSSource(client *http.Client) *RSSSource {
	return &RSSSource{client: client}
}

// Fetch retrieves and parses the feed at url.
func (s *RSSSource) Fetch(ctx context.Context, url string) ([]model.RawEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed fetch for %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("feed fetch for %s", url),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed %s: %w", url, err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", url, err)
	}

	entries := make([]model.RawEntry, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		entries = append(entries, extractEntry(item))
	}
	return entries, nil
}

// extractEntry normalizes one RSS item: the branding suffix is trimmed from
// the title and the HTML description is flattened to plain text.
func extractEntry(item rssItem) model.RawEntry {
	return model.RawEntry{
		Title:       strings.TrimSpace(strings.TrimSuffix(item.Title, titleSuffix)),
		Description: flattenHTML(item.Description),
		Link:        strings.TrimSpace(item.Link),
	}
}

// flattenHTML converts an HTML (or HTML-encoded) description into plain
// text, preserving paragraph and line breaks.
func flattenHTML(content string) string {
	unescaped := html.UnescapeString(content)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		// Not parseable as HTML; use as-is.
		return strings.TrimSpace(unescaped)
	}

	// Block-level elements become line breaks so pros/cons style markup
	// survives flattening.
	doc.Find("br").Each(func(_ int, sel *goquery.Selection) {
		sel.ReplaceWithHtml("\n")
	})
	doc.Find("p, li, div").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	text := doc.Text()
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}

	var out []string
	blank := false
	for _, line := range lines {
		if line == "" {
			// Collapse runs of blank lines.
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
