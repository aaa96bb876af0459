package model

type (
	QueryKind string
	Origin    string
)

const (
	QueryKindWeb   QueryKind = "web"
	QueryKindImage QueryKind = "image"

	OriginLive     Origin = "live"
	OriginFixture  Origin = "fixture"
	OriginFallback Origin = "fallback"

	DefaultResultLimit = 10
)

type (
	SearchQuery struct {
		Text        string
		Kind        QueryKind
		ResultLimit int
	}

	SearchResult struct {
		Title       string `json:"title" yaml:"title"`
		Link        string `json:"link" yaml:"link"`
		Description string `json:"description" yaml:"description"`
		DisplayLink string `json:"displayLink" yaml:"displayLink"`
		Favicon     string `json:"favicon,omitempty" yaml:"favicon,omitempty"`
		Source      string `json:"source,omitempty" yaml:"source,omitempty"`
		Date        string `json:"date,omitempty" yaml:"date,omitempty"`
	}

	ImageMatch struct {
		Title       string `json:"title" yaml:"title"`
		Link        string `json:"link" yaml:"link"`
		Source      string `json:"source" yaml:"source"`
		ImageURL    string `json:"imageUrl" yaml:"imageUrl"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
	}

	ShoppingMatch struct {
		Title    string `json:"title" yaml:"title"`
		Link     string `json:"link" yaml:"link"`
		Price    string `json:"price" yaml:"price"`
		Store    string `json:"store" yaml:"store"`
		ImageURL string `json:"imageUrl" yaml:"imageUrl"`
	}

	// SearchResponse is the only shape the presentation layer consumes,
	// whether the data came from an upstream engine, fixtures or the fallback.
	SearchResponse struct {
		Query           string          `json:"query"`
		Results         []SearchResult  `json:"results"`
		ImageMatches    []ImageMatch    `json:"imageMatches"`
		ShoppingMatches []ShoppingMatch `json:"shoppingMatches"`
		RelatedQueries  []string        `json:"relatedQueries"`
		Answer          string          `json:"answer,omitempty"`
		AdditionalInfo  string          `json:"additionalInfo,omitempty"`
		TotalHits       int64           `json:"totalHits,omitempty"`
		Origin          Origin          `json:"origin,omitempty"`
	}
)

func (q SearchQuery) Limit() int {
	if q.ResultLimit <= 0 {
		return DefaultResultLimit
	}
	return q.ResultLimit
}

// Normalize replaces nil lists with empty ones.
func (r SearchResponse) Normalize() SearchResponse {
	if r.Results == nil {
		r.Results = []SearchResult{}
	}
	if r.ImageMatches == nil {
		r.ImageMatches = []ImageMatch{}
	}
	if r.ShoppingMatches == nil {
		r.ShoppingMatches = []ShoppingMatch{}
	}
	if r.RelatedQueries == nil {
		r.RelatedQueries = []string{}
	}
	return r
}
