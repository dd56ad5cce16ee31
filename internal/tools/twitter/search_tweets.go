package twitter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/xapi"
)

type SearchTweetsRequest struct {
	Query          string `json:"query"`
	MaxResults     *int   `json:"max_results,omitempty"`
	IncludeUsers   bool   `json:"include_users"`
	IncludeMetrics bool   `json:"include_metrics"`
}

type SearchTweetsTool struct {
	api xapi.API
}

func (t *SearchTweetsTool) Name() string {
	return "search_tweets"
}

func (t *SearchTweetsTool) Description() string {
	return "Search for tweets"
}

func (t *SearchTweetsTool) Title() string {
	return "Search Tweets"
}

func (t *SearchTweetsTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *SearchTweetsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Search query"
			},
			"max_results": {
				"type": "integer",
				"description": "Maximum number of results (default: 10, max: 100)",
				"default": 10,
				"minimum": 10,
				"maximum": 100
			},
			"include_users": {
				"type": "boolean",
				"description": "Include user information in results",
				"default": false
			},
			"include_metrics": {
				"type": "boolean",
				"description": "Include tweet metrics",
				"default": false
			}
		},
		"required": ["query"]
	}`)
}

func (t *SearchTweetsTool) Execute(ctx context.Context, input json.RawMessage) (tools.Envelope, error) {
	var req SearchTweetsRequest
	if err := tools.DecodeArguments(input, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, tools.MissingField("query")
	}

	params := xapi.SearchParams{
		Query:       req.Query,
		MaxResults:  clampResults(req.MaxResults, searchMinResults),
		TweetFields: []string{"id", "text", "author_id", "created_at"},
	}
	if req.IncludeMetrics {
		params.TweetFields = append(params.TweetFields, "public_metrics")
	}
	if req.IncludeUsers {
		params.UserFields = []string{"id", "name", "username"}
		params.Expansions = []string{"author_id"}
	}

	result, err := t.api.SearchTweets(ctx, params)
	if err != nil {
		return nil, err
	}

	env := tools.Envelope{
		"tweets": result.Tweets,
		"count":  len(result.Tweets),
	}
	if req.IncludeUsers && len(result.Users) > 0 {
		env["users"] = result.Users
	}
	return tools.Success(env), nil
}
