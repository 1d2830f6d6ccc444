package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xai-assistant/internal/responder"
)

func text(t *testing.T, res *mcp.CallToolResultFor[any]) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestSelectResponse(t *testing.T) {
	tools := NewTools(responder.Default(), nil)

	res, err := tools.SelectResponse(context.Background(), nil, &mcp.CallToolParamsFor[SelectParams]{
		Arguments: SelectParams{Message: "AI calling agents please"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.True(t, strings.HasPrefix(text(t, res), "AI Calling Agents:"))
	assert.Equal(t, responder.RuleAICallingAgents, res.Meta["rule"])
	assert.Equal(t, false, res.Meta["fallback"])

	res, err = tools.SelectResponse(context.Background(), nil, &mcp.CallToolParamsFor[SelectParams]{
		Arguments: SelectParams{Message: "zzz"},
	})
	require.NoError(t, err)
	assert.Equal(t, responder.MenuPrompt, text(t, res))
	assert.Equal(t, true, res.Meta["fallback"])
}

func TestSelectResponse_Empty(t *testing.T) {
	tools := NewTools(responder.Default(), nil)
	res, err := tools.SelectResponse(context.Background(), nil, &mcp.CallToolParamsFor[SelectParams]{
		Arguments: SelectParams{Message: "   "},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListRules(t *testing.T) {
	tools := NewTools(responder.Default(responder.WithMatchMode(responder.MatchWord)), nil)
	res, err := tools.ListRules(context.Background(), nil, &mcp.CallToolParamsFor[ListRulesParams]{})
	require.NoError(t, err)

	out := text(t, res)
	assert.True(t, strings.HasPrefix(out, "1. contact:"))
	assert.Contains(t, out, "fallback: menu")
	assert.Equal(t, "word", res.Meta["match_mode"])

	infos, ok := res.Meta["rules"].([]RuleInfo)
	require.True(t, ok)
	require.Len(t, infos, len(responder.DefaultRules()))
	assert.Equal(t, responder.RuleDemo, infos[len(infos)-1].Name)
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(NewTools(responder.Default(), nil), "test"))
}
