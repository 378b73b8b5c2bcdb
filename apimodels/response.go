package apimodels

// DashboardResponse is returned by the dashboard form endpoint.
type DashboardResponse struct {
	Status    string            `json:"status"`
	Subreddit string            `json:"subreddit"`
	Results   []DashboardResult `json:"results"`
}

type DashboardResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Score    int    `json:"score"`
	Analysis string `json:"analysis"`
}

// DashboardError mirrors DashboardResponse for failures.
type DashboardError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// APIResponse is returned by the JSON API consumed by decoupled frontends.
type APIResponse struct {
	Data []APIResult `json:"data"`
}

type APIResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Upvotes  int    `json:"upvotes"`
	Analysis string `json:"analysis"`
}

type APIError struct {
	Error string `json:"error"`
}
