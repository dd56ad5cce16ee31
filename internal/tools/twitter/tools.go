// Package twitter holds the X tools exposed over MCP: get_user, post_tweet,
// search_tweets, get_tweet and get_user_tweets.
package twitter

import (
	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/xapi"
)

const (
	defaultMaxResults = 10
	maxResultsCeiling = 100

	// upstream rejects smaller pages on these endpoints
	searchMinResults   = 10
	timelineMinResults = 5

	DefaultMaxTweetLength = 280
)

type Options struct {
	// MaxTweetLength caps post_tweet text in runes after NFC normalization;
	// zero disables the check.
	MaxTweetLength int
	Resolver       *UserResolver
}

func GetTools(api xapi.API, opts Options) []tools.Tool {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewUserResolver(api, 0, 0)
	}

	return []tools.Tool{
		&GetUserTool{api: api, resolver: resolver},
		&PostTweetTool{api: api, maxLength: opts.MaxTweetLength},
		&SearchTweetsTool{api: api},
		&GetTweetTool{api: api},
		&GetUserTweetsTool{api: api, resolver: resolver},
	}
}

func GetToolByName(name string, api xapi.API) tools.Tool {
	for _, tool := range GetTools(api, Options{}) {
		if tool.Name() == name {
			return tool
		}
	}
	return nil
}

// clampResults silently pulls requested into [lo, maxResultsCeiling];
// nil means the caller did not ask and gets the default.
func clampResults(requested *int, lo int) int {
	n := defaultMaxResults
	if requested != nil {
		n = *requested
	}
	if n < lo {
		return lo
	}
	if n > maxResultsCeiling {
		return maxResultsCeiling
	}
	return n
}
