package daemon

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/x-mcp/pkg/protocol"
)

// Client talks to a running daemon over its socket.
type Client struct {
	conn *jsonrpc2.Conn
}

func Dial(ctx context.Context, socketPath string) (*Client, error) {
	nc, err := NewSocketConnector(socketPath).Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", socketPath, err)
	}

	stream := jsonrpc2.NewBufferedStream(nc, jsonrpc2.PlainObjectCodec{})
	conn := jsonrpc2.NewConn(context.Background(), stream, jsonrpc2.HandlerWithError(refuseRequests))
	return &Client{conn: conn}, nil
}

// the server never calls back into the client
func refuseRequests(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (interface{}, error) {
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "Method not found"}
}

func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	return c.conn.Call(ctx, method, params, result)
}

func (c *Client) Notify(ctx context.Context, method string, params interface{}) error {
	return c.conn.Notify(ctx, method, params)
}

func (c *Client) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	var result struct {
		Tools []protocol.Tool `json:"tools"`
	}
	if err := c.Call(ctx, "tools/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (*protocol.CallToolResult, error) {
	var result protocol.CallToolResult
	params := protocol.CallToolParams{Name: name, Arguments: args}
	if err := c.Call(ctx, "tools/call", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
