package twitter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/xapi"
)

type GetUserRequest struct {
	Identifier string `json:"identifier"`
	IsUserID   bool   `json:"is_user_id"`
}

type GetUserTool struct {
	api      xapi.API
	resolver *UserResolver
}

func (t *GetUserTool) Name() string {
	return "get_user"
}

func (t *GetUserTool) Description() string {
	return "Get user information by username or user ID"
}

func (t *GetUserTool) Title() string {
	return "Get User"
}

func (t *GetUserTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *GetUserTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"identifier": {
				"type": "string",
				"description": "Username (without @) or user ID"
			},
			"is_user_id": {
				"type": "boolean",
				"description": "Whether the identifier is a user ID (true) or username (false)",
				"default": false
			}
		},
		"required": ["identifier"]
	}`)
}

func (t *GetUserTool) Execute(ctx context.Context, input json.RawMessage) (tools.Envelope, error) {
	var req GetUserRequest
	if err := tools.DecodeArguments(input, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Identifier) == "" {
		return nil, tools.MissingField("identifier")
	}

	var (
		user *xapi.User
		err  error
	)
	if req.IsUserID {
		user, err = t.api.GetUserByID(ctx, req.Identifier)
	} else {
		user, err = t.api.GetUserByUsername(ctx, req.Identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return tools.Failure("User not found"), nil
	}

	if !req.IsUserID && t.resolver != nil {
		t.resolver.Remember(req.Identifier, user.ID)
	}

	return tools.Success(tools.Envelope{"user": user}), nil
}
