package twitter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/xapi"
)

type GetTweetRequest struct {
	TweetID string `json:"tweet_id"`
}

type GetTweetTool struct {
	api xapi.API
}

func (t *GetTweetTool) Name() string {
	return "get_tweet"
}

func (t *GetTweetTool) Description() string {
	return "Get a specific tweet by ID"
}

func (t *GetTweetTool) Title() string {
	return "Get Tweet"
}

func (t *GetTweetTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *GetTweetTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"tweet_id": {
				"type": "string",
				"description": "The tweet ID"
			}
		},
		"required": ["tweet_id"]
	}`)
}

func (t *GetTweetTool) Execute(ctx context.Context, input json.RawMessage) (tools.Envelope, error) {
	var req GetTweetRequest
	if err := tools.DecodeArguments(input, &req); err != nil {
		return nil, err
	}
	id := strings.TrimSpace(req.TweetID)
	if id == "" {
		return nil, tools.MissingField("tweet_id")
	}

	lookup, err := t.api.GetTweet(ctx, id)
	if err != nil {
		return nil, err
	}
	if lookup == nil {
		return tools.Failure("Tweet not found"), nil
	}

	env := tools.Envelope{"tweet": lookup.Tweet}
	if lookup.Author != nil {
		env["author"] = lookup.Author
	}
	return tools.Success(env), nil
}
