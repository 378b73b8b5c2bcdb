package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/sozercan/ideator/apimodels"
	"github.com/sozercan/ideator/internal/config"
	"github.com/sozercan/ideator/internal/llm"
	"github.com/sozercan/ideator/internal/reddit"
)

const (
	// MaxLimit bounds the number of completion calls a single request can trigger
	MaxLimit = 20

	permalinkBase = "https://reddit.com"
)

var communityPattern = regexp.MustCompile(`^[A-Za-z0-9_]{2,21}$`)

// PostSource is the forum service the analyzer reads from.
type PostSource interface {
	Resolve(ctx context.Context, name string) (*reddit.Subreddit, error)
	TopPosts(ctx context.Context, name string, window reddit.TimeWindow, limit int) ([]reddit.Post, error)
}

type Result struct {
	ID       string
	Title    string
	URL      string
	Score    int
	Analysis string
}

type Report struct {
	Community string
	Results   []Result
	Duration  time.Duration
}

type Analyzer struct {
	posts       PostSource
	llmProvider llm.Provider
	concurrency int
}

func New(posts PostSource, llmProvider llm.Provider, cfg config.AnalyzerConfig) *Analyzer {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Analyzer{
		posts:       posts,
		llmProvider: llmProvider,
		concurrency: concurrency,
	}
}

// Analyze resolves the requested community, fetches its top posts of the day
// and asks the completion service for startup ideas on each of them. Any
// returned error is an *Error.
func (a *Analyzer) Analyze(ctx context.Context, req apimodels.AnalysisRequest, v Variant) (*Report, error) {
	startTime := time.Now()

	community, limit, err := v.normalize(req)
	if err != nil {
		return nil, err
	}

	slog.Info("Analyzing subreddit", "subreddit", community, "limit", limit, "variant", v.Name)

	if _, err := a.posts.Resolve(ctx, community); err != nil {
		if errors.Is(err, reddit.ErrNotFound) {
			return nil, newError(KindNotFound, fmt.Sprintf("Subreddit %q not found or inaccessible", community), err)
		}
		return nil, forumError(err)
	}

	posts, err := a.posts.TopPosts(ctx, community, reddit.WindowDay, limit)
	if err != nil {
		if errors.Is(err, reddit.ErrNotFound) {
			return nil, newError(KindNotFound, fmt.Sprintf("Subreddit %q not found or inaccessible", community), err)
		}
		return nil, forumError(err)
	}
	slog.Info("Fetched posts", "subreddit", community, "count", len(posts))

	if len(posts) == 0 {
		return nil, newError(KindNotFound, fmt.Sprintf("No posts found in r/%s", community), nil)
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}

	results, err := a.analyzePosts(ctx, community, posts, v)
	if err != nil {
		return nil, err
	}

	slog.Info("Analysis completed", "subreddit", community, "results", len(results), "duration", time.Since(startTime))
	return &Report{
		Community: community,
		Results:   results,
		Duration:  time.Since(startTime),
	}, nil
}

// analyzePosts issues one completion per post. With a concurrency of 1 the
// calls run strictly one after another; results keep the post order either way.
func (a *Analyzer) analyzePosts(ctx context.Context, community string, posts []reddit.Post, v Variant) ([]Result, error) {
	results := make([]Result, len(posts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, post := range posts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			analysis, err := a.analyzePost(gctx, community, post, v)
			if err != nil {
				return err
			}
			results[i] = Result{
				ID:       post.ID,
				Title:    post.Title,
				URL:      permalinkBase + post.Permalink,
				Score:    post.Score,
				Analysis: analysis,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var aerr *Error
		if errors.As(err, &aerr) {
			return nil, aerr
		}
		return nil, newError(KindInternal, internalMessage, err)
	}
	return results, nil
}

func (a *Analyzer) analyzePost(ctx context.Context, community string, post reddit.Post, v Variant) (string, error) {
	prompt := v.prompt(post, community)

	opts := []llm.Option{}
	if v.Temperature != nil {
		opts = append(opts, llm.WithTemperature(*v.Temperature))
	}

	slog.Debug("Requesting completion", "post", post.ID, "subreddit", community)
	resp, err := a.llmProvider.Complete(ctx, prompt, opts...)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", newError(KindInternal, internalMessage, err)
		}
		return "", newError(KindUpstream, "Completion API error: "+err.Error(), err)
	}

	slog.Debug("Completion received", "post", post.ID, "tokens", resp.Usage.TotalTokens)
	return resp.Content, nil
}

func forumError(err error) *Error {
	if errors.Is(err, context.Canceled) {
		return newError(KindInternal, internalMessage, err)
	}
	return newError(KindUpstream, "Reddit API error: "+err.Error(), err)
}

// normalize applies the variant defaults to the raw request and validates it.
func (v Variant) normalize(req apimodels.AnalysisRequest) (string, int, error) {
	community := strings.TrimSpace(req.Community)
	community = strings.TrimPrefix(community, "/")
	if strings.HasPrefix(strings.ToLower(community), "r/") {
		community = community[2:]
	}
	if community == "" {
		community = v.DefaultCommunity
	}
	if !communityPattern.MatchString(community) {
		return "", 0, newError(KindInvalidInput, fmt.Sprintf("Invalid subreddit name %q", community), nil)
	}

	limit := v.DefaultLimit
	if raw := strings.TrimSpace(req.Limit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return "", 0, newError(KindInvalidInput, fmt.Sprintf("Invalid limit %q: must be a positive integer", raw), err)
		}
		limit = n
	}
	return community, min(limit, MaxLimit), nil
}

func (v Variant) prompt(post reddit.Post, community string) string {
	return fmt.Sprintf(v.PromptFormat, post.Title, excerpt(post.Body, v.ExcerptLength), community)
}

// excerpt cuts s to at most n characters without splitting a rune.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
