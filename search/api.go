package search

type (
	// WikipediaResponse is the subset of the MediaWiki list=search response we read.
	// Every sub-object is optional.
	WikipediaResponse struct {
		Query *struct {
			SearchInfo *struct {
				TotalHits  int64  `json:"totalhits"`
				Suggestion string `json:"suggestion"`
			} `json:"searchinfo"`
			Search []WikipediaHit `json:"search"`
		} `json:"query"`
		Error *WikipediaError `json:"error"`
	}

	WikipediaHit struct {
		Title     string `json:"title"`
		PageID    int64  `json:"pageid"`
		Snippet   string `json:"snippet"`
		Timestamp string `json:"timestamp"`
	}

	WikipediaError struct {
		Code string `json:"code"`
		Info string `json:"info"`
	}

	// SerpResponse is the generic SerpAPI JSON document. Its shape varies by query,
	// so it is kept as a map and read defensively.
	SerpResponse map[string]any
)

func (e *WikipediaError) Error() string {
	return "wikipedia: " + e.Code + ": " + e.Info
}
