package entity

import (
	"errors"
	"fmt"
)

// DefaultMaxArticles caps how many articles survive per topic after
// deduplication when the topic does not specify its own limit.
const DefaultMaxArticles = 8

// Topic is the configuration record for one digest topic.
// It is a single explicit struct on purpose: every consumer reads the same
// named fields, there is no dynamic fallback path.
type Topic struct {
	// ID is the stable identifier used for cache keys and logging.
	ID string `yaml:"id"`

	// Name is the human-readable topic label used in the digest output.
	Name string `yaml:"name"`

	// Keywords are the search terms handed to the upstream fetchers.
	Keywords []string `yaml:"keywords"`

	// Cities optionally narrows regional feeds to titles or summaries
	// mentioning one of these places. Empty means no filtering.
	Cities []string `yaml:"cities,omitempty"`

	// MaxArticles caps the deduplicated article list for this topic.
	// Zero means DefaultMaxArticles.
	MaxArticles int `yaml:"max_articles,omitempty"`
}

// ErrInvalidTopic is returned when a topic record fails validation.
var ErrInvalidTopic = errors.New("invalid topic")

// Validate checks that the topic carries the fields the pipeline depends on.
func (t *Topic) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: id must not be empty", ErrInvalidTopic)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: name must not be empty (topic %q)", ErrInvalidTopic, t.ID)
	}
	if len(t.Keywords) == 0 {
		return fmt.Errorf("%w: at least one keyword required (topic %q)", ErrInvalidTopic, t.ID)
	}
	if t.MaxArticles < 0 {
		return fmt.Errorf("%w: max_articles must not be negative (topic %q)", ErrInvalidTopic, t.ID)
	}
	return nil
}

// Limit returns the effective per-topic article cap.
func (t *Topic) Limit() int {
	if t.MaxArticles > 0 {
		return t.MaxArticles
	}
	return DefaultMaxArticles
}
