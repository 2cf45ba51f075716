// Package cluster removes near-duplicate articles by fuzzy title
// comparison, keeping one representative per group of similar titles.
package cluster

import (
	"log/slog"
	"strings"

	"daily-brief/internal/domain/entity"
)

// DefaultThreshold is the similarity ratio above which two titles are
// considered the same story.
const DefaultThreshold = 0.65

// Clusterer groups near-identical article titles and keeps the first-seen
// representative of each group. Candidates are compared pairwise against
// every already-kept title, which is O(n²) per topic; n is tens of articles,
// so clarity and deterministic output win over asymptotics here.
type Clusterer struct {
	threshold float64
}

// New creates a Clusterer with the given similarity threshold.
// A non-positive threshold falls back to DefaultThreshold.
func New(threshold float64) *Clusterer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Clusterer{threshold: threshold}
}

// Dedupe filters articles whose title is near-duplicate of an earlier one.
// Input order is preserved (first-seen wins, keeping upstream ranking) and
// a title is a duplicate only when its similarity to a kept title strictly
// exceeds the threshold. Returns the surviving articles and the number
// removed.
//
// The first-seen representative is not necessarily the "best" one (working
// URL, fuller description); a quality-based tie-break would be a behavior
// change for downstream consumers, so it stays first-seen.
func (c *Clusterer) Dedupe(articles []entity.Article) ([]entity.Article, int) {
	kept := make([]entity.Article, 0, len(articles))
	keptTitles := make([]string, 0, len(articles))
	removed := 0

	for _, a := range articles {
		title := strings.ToLower(a.Title)

		duplicate := false
		for i, existing := range keptTitles {
			ratio := Similarity(title, existing)
			if ratio > c.threshold {
				duplicate = true
				slog.Debug("duplicate title",
					slog.String("title", a.Title),
					slog.String("kept", kept[i].Title),
					slog.Float64("ratio", ratio))
				break
			}
		}

		if duplicate {
			removed++
			continue
		}
		kept = append(kept, a)
		keptTitles = append(keptTitles, title)
	}

	return kept, removed
}

// DedupeTopics runs Dedupe independently for each topic and returns the
// cleaned mapping plus the total number of removed articles.
func (c *Clusterer) DedupeTopics(byTopic map[string][]entity.Article) (map[string][]entity.Article, int) {
	cleaned := make(map[string][]entity.Article, len(byTopic))
	totalRemoved := 0

	for topic, articles := range byTopic {
		kept, removed := c.Dedupe(articles)
		cleaned[topic] = kept
		totalRemoved += removed
	}

	if totalRemoved > 0 {
		slog.Info("deduplication removed redundant articles",
			slog.Int("removed", totalRemoved))
	}
	return cleaned, totalRemoved
}
