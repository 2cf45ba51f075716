// Package entity defines the core domain entities for the digest pipeline:
// the Article produced by upstream fetchers and the Topic configuration
// record that drives each collection run.
package entity

// Article represents a single news item produced by an upstream fetch call.
// Articles are ephemeral: they live only for the duration of a collection
// run, except where a deduplicated list is wrapped in a cache entry.
type Article struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}
