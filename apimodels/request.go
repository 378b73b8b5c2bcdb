package apimodels

// AnalysisRequest carries the raw form input of either analyze endpoint.
// Both fields are validated and defaulted by the analyzer.
type AnalysisRequest struct {
	// Community is the subreddit name, with or without the r/ prefix
	Community string `json:"subreddit"`

	// Limit is the requested number of posts, left as text so that
	// validation happens in one place
	Limit string `json:"limit"`
}
