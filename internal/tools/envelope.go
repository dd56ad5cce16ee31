package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the {"success": ..., ...} payload a tool hands back to the
// client, independent of the JSON-RPC wrapper around it.
type Envelope map[string]interface{}

func Success(fields Envelope) Envelope {
	env := Envelope{"success": true}
	for k, v := range fields {
		if k == "success" {
			continue
		}
		env[k] = v
	}
	return env
}

func Failure(message string) Envelope {
	return Envelope{
		"success": false,
		"error":   message,
	}
}

func (e Envelope) Succeeded() bool {
	ok, _ := e["success"].(bool)
	return ok
}

// Pretty renders the envelope as indented JSON for MCP text content.
func (e Envelope) Pretty() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// DecodeArguments unmarshals raw tool arguments into dst. Absent or null
// arguments decode to the zero value so required-field checks can report
// what is missing.
func DecodeArguments(input json.RawMessage, dst interface{}) error {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '{' {
		return NewInvalidArgumentsError(fmt.Errorf("arguments must be a JSON object"))
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return NewInvalidArgumentsError(err)
	}
	return nil
}

func MissingField(name string) error {
	return NewInvalidArgumentsError(fmt.Errorf("missing field `%s`", name))
}
