// Package mocks holds testify mocks for the analyzer's collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sozercan/ideator/internal/llm"
	"github.com/sozercan/ideator/internal/reddit"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type PostSource struct {
	mock.Mock
}

func NewPostSource(t testingT) *PostSource {
	m := &PostSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *PostSource) Resolve(ctx context.Context, name string) (*reddit.Subreddit, error) {
	args := m.Called(ctx, name)
	sub, _ := args.Get(0).(*reddit.Subreddit)
	return sub, args.Error(1)
}

func (m *PostSource) TopPosts(ctx context.Context, name string, window reddit.TimeWindow, limit int) ([]reddit.Post, error) {
	args := m.Called(ctx, name, window, limit)
	posts, _ := args.Get(0).([]reddit.Post)
	return posts, args.Error(1)
}

// Provider records the resolved llm.Options of each call as its third argument.
type Provider struct {
	mock.Mock
}

func NewProvider(t testingT) *Provider {
	m := &Provider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Provider) Complete(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Response, error) {
	var options llm.Options
	for _, opt := range opts {
		opt(&options)
	}
	args := m.Called(ctx, prompt, options)
	resp, _ := args.Get(0).(*llm.Response)
	return resp, args.Error(1)
}
