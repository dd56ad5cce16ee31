package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/xapi"
)

type PostTweetRequest struct {
	Text    string `json:"text"`
	ReplyTo string `json:"reply_to,omitempty"`
}

type PostTweetTool struct {
	api       xapi.API
	maxLength int
}

func (t *PostTweetTool) Name() string {
	return "post_tweet"
}

func (t *PostTweetTool) Description() string {
	return "Post a new tweet"
}

func (t *PostTweetTool) Title() string {
	return "Post Tweet"
}

func (t *PostTweetTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

func (t *PostTweetTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"text": {
				"type": "string",
				"description": "The text content of the tweet"
			},
			"reply_to": {
				"type": "string",
				"description": "Optional tweet ID to reply to"
			}
		},
		"required": ["text"]
	}`)
}

func (t *PostTweetTool) Execute(ctx context.Context, input json.RawMessage) (tools.Envelope, error) {
	var req PostTweetRequest
	if err := tools.DecodeArguments(input, &req); err != nil {
		return nil, err
	}

	// the upstream counts characters on the NFC form
	text := norm.NFC.String(req.Text)
	if strings.TrimSpace(text) == "" {
		return nil, tools.MissingField("text")
	}
	if t.maxLength > 0 {
		if n := utf8.RuneCountInString(text); n > t.maxLength {
			return nil, fmt.Errorf("tweet text exceeds maximum length of %d characters (got %d)", t.maxLength, n)
		}
	}

	tweet, err := t.api.PostTweet(ctx, text, strings.TrimSpace(req.ReplyTo))
	if err != nil {
		return nil, err
	}

	return tools.Success(tools.Envelope{"tweet": tweet}), nil
}
