package compose

import (
	"time"

	"github.com/appkivawa/pulseboard/app/aggregator"
)

// FeedItem is the display-ready projection of an aggregator item. It is
// recomputed on every composition pass and never persisted.
type FeedItem struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Kind        string     `json:"kind,omitempty"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Author      string     `json:"author,omitempty"`
	URL         string     `json:"url,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Score       float64    `json:"score"`
	IsSaved     bool       `json:"is_saved"`
}

// Section is one capped, ordered display block of the composed feed.
type Section struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Items    []FeedItem `json:"items"`
}

func NewFeedItem(it aggregator.Item) FeedItem {
	return FeedItem{
		ID:          it.ID,
		Source:      it.Source,
		Kind:        it.Kind,
		Title:       it.Title,
		Summary:     it.Summary,
		Author:      it.Author,
		URL:         it.URL,
		ImageURL:    it.ImageURL,
		PublishedAt: it.PublishedAt,
		Score:       it.ScoreValue(),
	}
}
