package search

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/Brawl345/lensbot/model"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var embeddedFixtures []byte

type (
	Fixtures struct {
		Web      WebFixtures   `yaml:"web"`
		Image    ImageFixtures `yaml:"image"`
		Trending []string      `yaml:"trending"`
	}

	WebFixtures struct {
		Results        []model.SearchResult `yaml:"results"`
		RelatedQueries []string             `yaml:"relatedQueries"`
	}

	ImageFixtures struct {
		Answer         string                `yaml:"answer"`
		AdditionalInfo string                `yaml:"additionalInfo"`
		Results        []model.SearchResult  `yaml:"results"`
		VisualMatches  []model.ImageMatch    `yaml:"visualMatches"`
		Shopping       []model.ShoppingMatch `yaml:"shopping"`
		RelatedQueries []string              `yaml:"relatedQueries"`
	}
)

var (
	defaultFixtures     *Fixtures
	defaultFixturesOnce sync.Once
)

// DefaultFixtures returns the fixture set compiled into the binary.
func DefaultFixtures() *Fixtures {
	defaultFixturesOnce.Do(func() {
		fixtures, err := ParseFixtures(embeddedFixtures)
		if err != nil {
			panic(fmt.Sprintf("embedded fixtures are invalid: %v", err))
		}
		defaultFixtures = fixtures
	})
	return defaultFixtures
}

func ParseFixtures(data []byte) (*Fixtures, error) {
	var fixtures Fixtures
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	if len(fixtures.Web.Results) == 0 {
		return nil, fmt.Errorf("fixtures need at least one web result")
	}
	if len(fixtures.Image.VisualMatches) == 0 {
		return nil, fmt.Errorf("fixtures need at least one visual match")
	}
	return &fixtures, nil
}

func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixtures(data)
}
