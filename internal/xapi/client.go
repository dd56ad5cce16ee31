// Package xapi is the upstream HTTP collaborator: a thin typed client for
// the X API v2 endpoints the tools need.
package xapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	userFields        = "id,name,username,description,public_metrics,profile_image_url,verified,created_at"
	tweetLookupFields = "id,text,author_id,created_at,public_metrics,context_annotations,referenced_tweets"
	timelineFields    = "id,text,author_id,created_at,public_metrics"
)

// API is the set of upstream operations the tools consume. Lookups return
// (nil, nil) when the upstream reports the resource does not exist.
type API interface {
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	PostTweet(ctx context.Context, text, replyTo string) (*Tweet, error)
	SearchTweets(ctx context.Context, params SearchParams) (*SearchResult, error)
	GetTweet(ctx context.Context, id string) (*TweetLookup, error)
	GetUserTweets(ctx context.Context, userID string, maxResults int) ([]Tweet, error)
}

type Client struct {
	doer Doer
}

var _ API = (*Client)(nil)

func NewClient(doer Doer) *Client {
	return &Client{doer: doer}
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	var env envelope[User]
	path := "/users/by/username/" + url.PathEscape(username)
	if err := c.call(ctx, http.MethodGet, path, map[string]string{"user.fields": userFields}, nil, &env); err != nil {
		return nil, err
	}
	return lookupResult(env)
}

func (c *Client) GetUserByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("user id is required")
	}

	var env envelope[User]
	path := "/users/" + url.PathEscape(id)
	if err := c.call(ctx, http.MethodGet, path, map[string]string{"user.fields": userFields}, nil, &env); err != nil {
		return nil, err
	}
	return lookupResult(env)
}

func (c *Client) PostTweet(ctx context.Context, text, replyTo string) (*Tweet, error) {
	body := PostTweetRequest{Text: text}
	if replyTo != "" {
		body.Reply = &ReplySettings{InReplyToTweetID: replyTo}
	}

	var env envelope[Tweet]
	if err := c.call(ctx, http.MethodPost, "/tweets", nil, body, &env); err != nil {
		return nil, err
	}
	if len(env.Errors) > 0 && env.Data == nil {
		return nil, &APIError{Status: http.StatusBadRequest, Message: describeProblems(env.Errors)}
	}
	if env.Data == nil {
		return nil, &APIError{Status: http.StatusBadRequest, Message: "No data returned from post tweet"}
	}
	return env.Data, nil
}

func (c *Client) SearchTweets(ctx context.Context, p SearchParams) (*SearchResult, error) {
	params := map[string]string{"query": p.Query}
	if p.MaxResults > 0 {
		params["max_results"] = strconv.Itoa(p.MaxResults)
	}
	if len(p.TweetFields) > 0 {
		params["tweet.fields"] = strings.Join(p.TweetFields, ",")
	}
	if len(p.UserFields) > 0 {
		params["user.fields"] = strings.Join(p.UserFields, ",")
	}
	if len(p.Expansions) > 0 {
		params["expansions"] = strings.Join(p.Expansions, ",")
	}

	var env envelope[[]Tweet]
	if err := c.call(ctx, http.MethodGet, "/tweets/search/recent", params, nil, &env); err != nil {
		return nil, err
	}
	if len(env.Errors) > 0 && env.Data == nil {
		return nil, &APIError{Status: http.StatusBadRequest, Message: describeProblems(env.Errors)}
	}

	result := &SearchResult{Tweets: []Tweet{}}
	if env.Data != nil {
		result.Tweets = *env.Data
	}
	if env.Includes != nil {
		result.Users = env.Includes.Users
	}
	return result, nil
}

func (c *Client) GetTweet(ctx context.Context, id string) (*TweetLookup, error) {
	if id == "" {
		return nil, fmt.Errorf("tweet id is required")
	}

	params := map[string]string{
		"tweet.fields": tweetLookupFields,
		"expansions":   "author_id",
	}

	var env envelope[Tweet]
	if err := c.call(ctx, http.MethodGet, "/tweets/"+url.PathEscape(id), params, nil, &env); err != nil {
		return nil, err
	}
	tweet, err := lookupResult(env)
	if err != nil || tweet == nil {
		return nil, err
	}

	lookup := &TweetLookup{Tweet: *tweet}
	if env.Includes != nil {
		for i := range env.Includes.Users {
			if env.Includes.Users[i].ID == tweet.AuthorID {
				lookup.Author = &env.Includes.Users[i]
				break
			}
		}
	}
	return lookup, nil
}

func (c *Client) GetUserTweets(ctx context.Context, userID string, maxResults int) ([]Tweet, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	params := map[string]string{"tweet.fields": timelineFields}
	if maxResults > 0 {
		params["max_results"] = strconv.Itoa(maxResults)
	}

	var env envelope[[]Tweet]
	if err := c.call(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/tweets", params, nil, &env); err != nil {
		return nil, err
	}
	if len(env.Errors) > 0 && env.Data == nil {
		return nil, &APIError{Status: http.StatusBadRequest, Message: describeProblems(env.Errors)}
	}
	if env.Data == nil {
		return []Tweet{}, nil
	}
	return *env.Data, nil
}

func (c *Client) call(ctx context.Context, method, path string, params map[string]string, body interface{}, out interface{}) error {
	resp, err := c.doer.Do(ctx, method, path, params, body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: string(resp.Body)}
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		log.Error("failed to parse response", "path", path, "body", string(resp.Body))
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func lookupResult[T any](env envelope[T]) (*T, error) {
	if env.Data != nil {
		return env.Data, nil
	}
	if len(env.Errors) == 0 || onlyNotFound(env.Errors) {
		return nil, nil
	}
	return nil, &APIError{Status: http.StatusBadRequest, Message: describeProblems(env.Errors)}
}
