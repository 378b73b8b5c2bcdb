package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sozercan/ideator/internal/config"
)

// ErrNotFound is returned when a subreddit does not exist or cannot be read
// with app-only credentials (private, quarantined, banned).
var ErrNotFound = errors.New("subreddit not found")

type TimeWindow string

const (
	WindowHour  TimeWindow = "hour"
	WindowDay   TimeWindow = "day"
	WindowWeek  TimeWindow = "week"
	WindowMonth TimeWindow = "month"
	WindowYear  TimeWindow = "year"
	WindowAll   TimeWindow = "all"
)

type Subreddit struct {
	ID   string
	Name string
}

type Post struct {
	ID        string
	Title     string
	Body      string
	Permalink string
	Score     int
}

// APIError is a non-2xx answer from Reddit other than a missing subreddit.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("reddit returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("reddit returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	httpClient *http.Client
	apiURL     string
	userAgent  string
}

func NewClient(cfg *config.RedditConfig) (*Client, error) {
	slog.Info("Creating Reddit client", "endpoint", cfg.APIURL)
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("reddit client id and secret cannot be empty")
	}
	if cfg.APIURL == "" || cfg.AuthURL == "" {
		return nil, fmt.Errorf("reddit endpoints cannot be empty")
	}

	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: cfg.UserAgent},
	}

	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     strings.TrimRight(cfg.AuthURL, "/") + "/api/v1/access_token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// Token requests go through base so they carry the user agent too.
	httpClient := creds.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	httpClient.Timeout = cfg.Timeout
	// Reddit redirects unknown subreddits to its search page.
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		userAgent:  cfg.UserAgent,
	}, nil
}

// Resolve looks up a subreddit and verifies that it can be read.
func (c *Client) Resolve(ctx context.Context, name string) (*Subreddit, error) {
	body, err := c.get(ctx, name, "/about", nil)
	if err != nil {
		return nil, err
	}

	if kind := gjson.GetBytes(body, "kind").String(); kind != "t5" {
		slog.Debug("Unexpected about listing", "subreddit", name, "kind", kind)
		return nil, fmt.Errorf("%w: r/%s", ErrNotFound, name)
	}

	data := gjson.GetBytes(body, "data")
	sub := &Subreddit{
		ID:   data.Get("id").String(),
		Name: data.Get("display_name").String(),
	}
	if sub.ID == "" {
		return nil, fmt.Errorf("%w: r/%s", ErrNotFound, name)
	}
	return sub, nil
}

// TopPosts returns up to limit posts ranked by score within window.
func (c *Client) TopPosts(ctx context.Context, name string, window TimeWindow, limit int) ([]Post, error) {
	query := url.Values{}
	query.Set("t", string(window))
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, name, "/top", query)
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, limit)
	gjson.GetBytes(body, "data.children").ForEach(func(_, child gjson.Result) bool {
		data := child.Get("data")
		posts = append(posts, Post{
			ID:        data.Get("id").String(),
			Title:     data.Get("title").String(),
			Body:      data.Get("selftext").String(),
			Permalink: data.Get("permalink").String(),
			Score:     int(data.Get("score").Int()),
		})
		return len(posts) < limit
	})

	slog.Debug("Fetched top posts", "subreddit", name, "window", window, "count", len(posts))
	return posts, nil
}

func (c *Client) get(ctx context.Context, name, suffix string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("raw_json", "1")
	endpoint := c.apiURL + "/r/" + url.PathEscape(name) + suffix + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s (Subreddit: %s)", c.userAgent, name))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read reddit response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode >= 300 && resp.StatusCode < 400:
		slog.Debug("Subreddit unavailable", "subreddit", name, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: r/%s", ErrNotFound, name)
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("reddit returned malformed JSON")
	}
	return body, nil
}

func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error", "reason"} {
		if v := gjson.GetBytes(body, path); v.Exists() {
			return v.String()
		}
	}
	return ""
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
