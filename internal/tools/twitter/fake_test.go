package twitter

import (
	"context"
	"sync"

	"github.com/alucardeht/x-mcp/internal/xapi"
)

// fakeAPI records every call and answers from canned fields.
type fakeAPI struct {
	mu sync.Mutex

	users    map[string]*xapi.User
	byID     map[string]*xapi.User
	tweets   map[string]*xapi.TweetLookup
	search   *xapi.SearchResult
	posted   *xapi.Tweet
	timeline []xapi.Tweet
	err      error

	usernameCalls []string
	idCalls       []string
	postCalls     []postCall
	searchCalls   []xapi.SearchParams
	tweetCalls    []string
	timelineCalls []timelineCall
}

type postCall struct {
	text    string
	replyTo string
}

type timelineCall struct {
	userID     string
	maxResults int
}

func (f *fakeAPI) GetUserByUsername(_ context.Context, username string) (*xapi.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usernameCalls = append(f.usernameCalls, username)
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

func (f *fakeAPI) GetUserByID(_ context.Context, id string) (*xapi.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.idCalls = append(f.idCalls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakeAPI) PostTweet(_ context.Context, text, replyTo string) (*xapi.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.postCalls = append(f.postCalls, postCall{text: text, replyTo: replyTo})
	if f.err != nil {
		return nil, f.err
	}
	return f.posted, nil
}

func (f *fakeAPI) SearchTweets(_ context.Context, params xapi.SearchParams) (*xapi.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, params)
	if f.err != nil {
		return nil, f.err
	}
	if f.search == nil {
		return &xapi.SearchResult{Tweets: []xapi.Tweet{}}, nil
	}
	return f.search, nil
}

func (f *fakeAPI) GetTweet(_ context.Context, id string) (*xapi.TweetLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tweetCalls = append(f.tweetCalls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.tweets[id], nil
}

func (f *fakeAPI) GetUserTweets(_ context.Context, userID string, maxResults int) ([]xapi.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timelineCalls = append(f.timelineCalls, timelineCall{userID: userID, maxResults: maxResults})
	if f.err != nil {
		return nil, f.err
	}
	if f.timeline == nil {
		return []xapi.Tweet{}, nil
	}
	return f.timeline, nil
}
