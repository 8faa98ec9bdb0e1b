package news

import (
	"context"
	"encoding/xml"
	"sort"
	"strings"
	"sync"
	"time"

	"TradeSage/internal/domain/models"
	httpclient "TradeSage/pkg/http"
	"TradeSage/pkg/logger"
)

// Feed is one configured RSS source.
type Feed struct {
	Name string `yaml:"name" validate:"required"`
	URL  string `yaml:"url" validate:"required,url"`
}

// RSSSource fetches headlines from a set of RSS feeds in parallel and filters
// them by ticker relevance. Failed feeds are skipped, never fatal.
type RSSSource struct {
	feeds      []Feed
	client     *httpclient.Client
	log        *logger.Logger
	perFeedMax int
}

func NewRSSSource(feeds []Feed, client *httpclient.Client, log *logger.Logger) *RSSSource {
	return &RSSSource{
		feeds:      feeds,
		client:     client,
		log:        log,
		perFeedMax: 10,
	}
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
}

// Fetch pulls all configured feeds concurrently and returns the most recent
// ticker-relevant articles, newest first, up to limit.
func (s *RSSSource) Fetch(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	if len(s.feeds) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	var all []models.NewsArticle
	var wg sync.WaitGroup

	for _, feed := range s.feeds {
		wg.Add(1)
		go func(f Feed) {
			defer wg.Done()
			items, err := s.fetchFeed(ctx, f)
			if err != nil {
				s.log.Warn("rss feed fetch failed",
					logger.String("feed", f.Name),
					logger.Error(err))
				return
			}
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
		}(feed)
	}
	wg.Wait()

	all = filterByTicker(all, ticker)
	all = deduplicate(all)
	sort.Slice(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, f Feed) ([]models.NewsArticle, error) {
	var raw []byte
	err := s.client.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    f.URL,
	}, &raw)
	if err != nil {
		return nil, err
	}

	var doc rssDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	items := doc.Channel.Items
	if len(items) > s.perFeedMax {
		items = items[:s.perFeedMax]
	}
	out := make([]models.NewsArticle, 0, len(items))
	for _, it := range items {
		out = append(out, models.NewsArticle{
			Title:     strings.TrimSpace(it.Title),
			Summary:   truncate(stripTags(it.Description), 200),
			Source:    f.Name,
			Link:      it.Link,
			Published: parsePubDate(it.PubDate),
		})
	}
	return out, nil
}

func filterByTicker(articles []models.NewsArticle, ticker string) []models.NewsArticle {
	if ticker == "" {
		return articles
	}
	needle := strings.ToLower(ticker)
	out := articles[:0]
	for _, a := range articles {
		text := strings.ToLower(a.Title + " " + a.Summary)
		if strings.Contains(text, needle) {
			out = append(out, a)
		}
	}
	return out
}

func deduplicate(articles []models.NewsArticle) []models.NewsArticle {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0]
	for _, a := range articles {
		key := strings.ToLower(a.Title)
		if len(key) > 50 {
			key = key[:50]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// stripTags drops anything inside angle brackets; RSS descriptions often
// embed markup.
func stripTags(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
