package analyzer

// Variant parameterizes Analyze for one endpoint: the defaults it applies,
// the prompt it sends and how it samples.
type Variant struct {
	Name             string
	DefaultCommunity string
	DefaultLimit     int
	// PromptFormat receives the post title, body excerpt and community, in that order
	PromptFormat  string
	ExcerptLength int
	Temperature   *float64
}

func temperature(t float64) *float64 {
	return &t
}

var (
	Dashboard = Variant{
		Name:             "dashboard",
		DefaultCommunity: "startups",
		DefaultLimit:     5,
		PromptFormat:     "Identify business opportunities in this Reddit post (respond in markdown bullets):\n\nTitle: %s\nContent: %s\nSubreddit: %s",
		ExcerptLength:    500,
		Temperature:      temperature(0.5),
	}

	API = Variant{
		Name:             "api",
		DefaultCommunity: "seo",
		DefaultLimit:     20,
		PromptFormat:     "Analyze this Reddit post for startup opportunities, meaning: generate startup ideas from this post (format as markdown):\nTitle: %s\nContent: %s\nSubreddit: %s",
		ExcerptLength:    300,
	}
)
