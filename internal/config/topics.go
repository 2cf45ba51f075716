// Package config loads the digest pipeline configuration.
// Topics come from a YAML file; operational settings come from the
// environment (see internal/infra/worker).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"daily-brief/internal/domain/entity"
)

// topicsFile is the YAML document layout of the topics file.
type topicsFile struct {
	Topics []entity.Topic `yaml:"topics"`
}

// LoadTopics reads and validates the topics YAML file at path.
//
// Example file:
//
//	topics:
//	  - id: tech
//	    name: Technology
//	    keywords: [AI, semiconductors]
//	  - id: karachi
//	    name: Karachi
//	    keywords: [Karachi]
//	    cities: [Karachi, Clifton]
//	    max_articles: 5
func LoadTopics(path string) ([]entity.Topic, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}

	var doc topicsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse topics file %s: %w", path, err)
	}

	if len(doc.Topics) == 0 {
		return nil, fmt.Errorf("topics file %s: no topics defined", path)
	}

	seen := make(map[string]bool, len(doc.Topics))
	for i := range doc.Topics {
		t := &doc.Topics[i]
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("topics file %s: %w", path, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("topics file %s: duplicate topic id %q", path, t.ID)
		}
		seen[t.ID] = true
	}

	return doc.Topics, nil
}
