package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/tools/twitter"
	"github.com/alucardeht/x-mcp/internal/xapi"
)

// stubAPI knows a single user and a single tweet.
type stubAPI struct {
	searches []xapi.SearchParams
}

func (s *stubAPI) GetUserByUsername(_ context.Context, username string) (*xapi.User, error) {
	if username == "jack" {
		return &xapi.User{ID: "12", Name: "jack", Username: "jack"}, nil
	}
	return nil, nil
}

func (s *stubAPI) GetUserByID(_ context.Context, id string) (*xapi.User, error) {
	if id == "12" {
		return &xapi.User{ID: "12", Name: "jack", Username: "jack"}, nil
	}
	return nil, nil
}

func (s *stubAPI) PostTweet(_ context.Context, text, _ string) (*xapi.Tweet, error) {
	return &xapi.Tweet{ID: "1", Text: text}, nil
}

func (s *stubAPI) SearchTweets(_ context.Context, params xapi.SearchParams) (*xapi.SearchResult, error) {
	s.searches = append(s.searches, params)
	return &xapi.SearchResult{Tweets: []xapi.Tweet{}}, nil
}

func (s *stubAPI) GetTweet(_ context.Context, id string) (*xapi.TweetLookup, error) {
	return nil, nil
}

func (s *stubAPI) GetUserTweets(_ context.Context, userID string, _ int) ([]xapi.Tweet, error) {
	return nil, &xapi.APIError{Status: 503, Message: "Service Unavailable"}
}

func newTestHandler(t *testing.T, api xapi.API) *Handler {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range twitter.GetTools(api, twitter.Options{MaxTweetLength: twitter.DefaultMaxTweetLength}) {
		require.NoError(t, registry.Register(tool))
	}
	return NewHandler(registry, DefaultServerInfo())
}

func run(t *testing.T, h *Handler, input string) []string {
	t.Helper()
	var out bytes.Buffer
	err := NewServer(h).ProcessStream(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	text := out.String()
	if text == "" {
		return nil
	}
	require.True(t, strings.HasSuffix(text, "\n"), "every reply ends with a newline")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func decodeLine(t *testing.T, line string) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(line), &m))
	return m
}

// envelopeOf digs the tool envelope out of a tools/call reply.
func envelopeOf(t *testing.T, line string) (map[string]interface{}, bool) {
	t.Helper()
	var resp struct {
		Result struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(line), &resp))
	require.Len(t, resp.Result.Content, 1)
	assert.Equal(t, "text", resp.Result.Content[0].Type)

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), &env))
	return env, resp.Result.IsError
}

func TestMalformedLinesProduceNoOutput(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	input := strings.Join([]string{
		`{not json`,
		``,
		`   `,
		`null`,
		`[1,2,3]`,
		`42`,
		`"string"`,
	}, "\n") + "\n"

	assert.Empty(t, run(t, h, input))
}

func TestUnknownMethod(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	lines := run(t, h, `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`+"\n")

	require.Len(t, lines, 1)
	var resp struct {
		ID    int `json:"id"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	assert.Equal(t, 1, resp.ID)
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Equal(t, "Method not found", resp.Error.Message)

	_, hasResult := decodeLine(t, lines[0])["result"]
	assert.False(t, hasResult)
}

func TestNonStringMethodIsUnknown(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	lines := run(t, h, `{"jsonrpc":"2.0","id":"x","method":7}`+"\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"code":-32601`)
}

func TestIDCorrelation(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})

	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "number", id: `7`, want: `7`},
		{name: "float", id: `1.50`, want: `1.50`},
		{name: "string", id: `"abc"`, want: `"abc"`},
		{name: "escaped string", id: `"a\u0041"`, want: `"a\u0041"`},
		{name: "null", id: `null`, want: `null`},
		{name: "large number", id: `12345678901234567890`, want: `12345678901234567890`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := run(t, h, `{"jsonrpc":"2.0","id":`+tt.id+`,"method":"ping"}`+"\n")
			require.Len(t, lines, 1)
			assert.Equal(t, tt.want, string(decodeLine(t, lines[0])["id"]))
		})
	}
}

func TestAbsentIDRepliesWithNull(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	lines := run(t, h, `{"jsonrpc":"2.0","method":"bogus"}`+"\n")
	require.Len(t, lines, 1)
	assert.Equal(t, `null`, string(decodeLine(t, lines[0])["id"]))
}

func TestNotificationsAreSilent(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	input := `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":3}}` + "\n"

	assert.Empty(t, run(t, h, input))
	assert.True(t, h.Initialized())
}

func TestInitialize(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})

	tests := []struct {
		requested string
		want      string
	}{
		{"2025-06-18", "2025-06-18"},
		{"2025-03-26", "2025-03-26"},
		{"1999-01-01", "2024-11-05"},
		{"", "2024-11-05"},
	}

	for _, tt := range tests {
		req := `{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"` + tt.requested +
			`","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}` + "\n"
		lines := run(t, h, req)
		require.Len(t, lines, 1)

		var resp struct {
			Result struct {
				ProtocolVersion string                     `json:"protocolVersion"`
				Capabilities    map[string]json.RawMessage `json:"capabilities"`
				ServerInfo      struct {
					Name    string `json:"name"`
					Version string `json:"version"`
				} `json:"serverInfo"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
		assert.Equal(t, tt.want, resp.Result.ProtocolVersion)
		assert.Equal(t, "x-mcp-server", resp.Result.ServerInfo.Name)
		assert.NotEmpty(t, resp.Result.ServerInfo.Version)
		assert.Contains(t, resp.Result.Capabilities, "tools")
	}
}

func TestInitializeWithoutParams(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	lines := run(t, h, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`+"\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"protocolVersion":"2024-11-05"`)
}

func TestToolsList(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	lines := run(t, h, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`+"\n")
	require.Len(t, lines, 1)

	var resp struct {
		Result struct {
			Tools []struct {
				Name        string                 `json:"name"`
				Description string                 `json:"description"`
				InputSchema map[string]interface{} `json:"inputSchema"`
				Annotations map[string]bool        `json:"annotations"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &resp))
	require.Len(t, resp.Result.Tools, 5)

	names := make([]string, 0, 5)
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.InputSchema["type"])
	}
	assert.Equal(t, []string{"get_user", "post_tweet", "search_tweets", "get_tweet", "get_user_tweets"}, names)
	assert.False(t, resp.Result.Tools[1].Annotations["readOnlyHint"])
	assert.True(t, resp.Result.Tools[0].Annotations["readOnlyHint"])
}

func TestToolsCallGetUser(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})

	lines := run(t, h, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_user","arguments":{"identifier":"jack"}}}`+"\n")
	require.Len(t, lines, 1)
	env, isError := envelopeOf(t, lines[0])
	assert.False(t, isError)
	assert.Equal(t, true, env["success"])
	assert.Equal(t, "12", env["user"].(map[string]interface{})["id"])

	lines = run(t, h, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_user","arguments":{"identifier":"nobody"}}}`+"\n")
	require.Len(t, lines, 1)
	env, isError = envelopeOf(t, lines[0])
	assert.True(t, isError)
	assert.Equal(t, map[string]interface{}{"success": false, "error": "User not found"}, env)
}

func TestToolsCallFailuresStayInsideResult(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})

	tests := []struct {
		name   string
		params string
		want   string
	}{
		{"unknown tool", `{"name":"delete_everything","arguments":{}}`, "Unknown tool: delete_everything"},
		{"missing arguments", `{"name":"get_user"}`, "invalid arguments: missing field `identifier`"},
		{"wrong argument type", `{"name":"get_tweet","arguments":{"tweet_id":5}}`, "invalid arguments:"},
		{"upstream error", `{"name":"get_user_tweets","arguments":{"identifier":"12","is_user_id":true}}`, "X API error: 503 - Service Unavailable"},
		{"not found", `{"name":"get_tweet","arguments":{"tweet_id":"5"}}`, "Tweet not found"},
		{"params not an object", `[1]`, "invalid arguments:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := run(t, h, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":`+tt.params+`}`+"\n")
			require.Len(t, lines, 1)
			_, hasError := decodeLine(t, lines[0])["error"]
			assert.False(t, hasError)

			env, isError := envelopeOf(t, lines[0])
			assert.True(t, isError)
			assert.Equal(t, false, env["success"])
			assert.Contains(t, env["error"], tt.want)
		})
	}
}

func TestToolsCallClampsSearch(t *testing.T) {
	api := &stubAPI{}
	h := newTestHandler(t, api)

	lines := run(t, h, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"search_tweets","arguments":{"query":"golang","max_results":500}}}`+"\n")
	require.Len(t, lines, 1)
	env, _ := envelopeOf(t, lines[0])
	assert.Equal(t, true, env["success"])
	require.Len(t, api.searches, 1)
	assert.Equal(t, 100, api.searches[0].MaxResults)
}

func TestOneReplyPerRequestInOrder(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		`garbage`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"nope"}`,
	}, "\n")

	lines := run(t, h, input)
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Equal(t, string(rune('1'+i)), string(decodeLine(t, line)["id"]))
	}
}

func TestLastLineWithoutNewline(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	lines := run(t, h, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	require.Len(t, lines, 1)
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":{}}`, lines[0])
}

func TestEmptyInputClosesCleanly(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	assert.Empty(t, run(t, h, ""))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestReadErrorIsFatal(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	err := NewServer(h).ProcessStream(context.Background(), failingReader{}, io.Discard)
	assert.ErrorContains(t, err, "device gone")
}

type brokenWriter struct {
	err    error
	writes int
}

func (w *brokenWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, w.err
}

func TestWriteFailureKeepsServing(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	w := &brokenWriter{err: errors.New("transient")}
	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" + `{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n"

	err := NewServer(h).ProcessStream(context.Background(), strings.NewReader(input), w)
	assert.NoError(t, err)
	assert.Equal(t, 2, w.writes)
}

func TestClosedPipeEndsSession(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	w := &brokenWriter{err: io.ErrClosedPipe}
	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" + `{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n"

	err := NewServer(h).ProcessStream(context.Background(), strings.NewReader(input), w)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, 1, w.writes)
}

func TestCancelledContextStops(t *testing.T) {
	h := newTestHandler(t, &stubAPI{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := NewServer(h).ProcessStream(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestParseRequest(t *testing.T) {
	req, ok := ParseRequest([]byte(` {"jsonrpc":"2.0","id":"a","method":"ping","params":{"x":1}} ` + "\r\n"))
	require.True(t, ok)
	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, `"a"`, string(req.ID))
	assert.Equal(t, "ping", req.Method)
	assert.JSONEq(t, `{"x":1}`, string(req.Params))
	assert.False(t, req.IsNotification())

	req, ok = ParseRequest([]byte(`{"method":"notifications/initialized"}`))
	require.True(t, ok)
	assert.True(t, req.IsNotification())

	_, ok = ParseRequest([]byte(`null`))
	assert.False(t, ok)
}
