package twitter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/xapi"
)

type GetUserTweetsRequest struct {
	Identifier string `json:"identifier"`
	IsUserID   bool   `json:"is_user_id"`
	MaxResults *int   `json:"max_results,omitempty"`
}

// GetUserTweetsTool is the one multi-step tool: username resolution first,
// then the timeline fetch.
type GetUserTweetsTool struct {
	api      xapi.API
	resolver *UserResolver
}

func (t *GetUserTweetsTool) Name() string {
	return "get_user_tweets"
}

func (t *GetUserTweetsTool) Description() string {
	return "Get user's recent tweets"
}

func (t *GetUserTweetsTool) Title() string {
	return "Get User Tweets"
}

func (t *GetUserTweetsTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *GetUserTweetsTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"identifier": {
				"type": "string",
				"description": "Username or user ID"
			},
			"is_user_id": {
				"type": "boolean",
				"description": "Whether the identifier is a user ID (true) or username (false)",
				"default": false
			},
			"max_results": {
				"type": "integer",
				"description": "Maximum number of tweets to retrieve (default: 10, max: 100)",
				"default": 10,
				"minimum": 5,
				"maximum": 100
			}
		},
		"required": ["identifier"]
	}`)
}

func (t *GetUserTweetsTool) Execute(ctx context.Context, input json.RawMessage) (tools.Envelope, error) {
	var req GetUserTweetsRequest
	if err := tools.DecodeArguments(input, &req); err != nil {
		return nil, err
	}
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, tools.MissingField("identifier")
	}

	userID := identifier
	if !req.IsUserID {
		id, found, err := t.resolver.Resolve(ctx, identifier)
		if err != nil {
			return nil, err
		}
		if !found {
			return tools.Failure("User not found"), nil
		}
		userID = id
	}

	tweets, err := t.api.GetUserTweets(ctx, userID, clampResults(req.MaxResults, timelineMinResults))
	if err != nil {
		return nil, err
	}

	return tools.Success(tools.Envelope{
		"tweets":  tweets,
		"count":   len(tweets),
		"user_id": userID,
	}), nil
}
