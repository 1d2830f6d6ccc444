package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"xai-assistant/internal/responder"
)

// SelectParams are the arguments of select_response.
type SelectParams struct {
	Message string `json:"message" mcp:"the visitor message to answer"`
}

// ListRulesParams are the arguments of list_rules.
type ListRulesParams struct{}

// RuleInfo describes one rule of the table.
type RuleInfo struct {
	Name  string   `json:"name"`
	Terms []string `json:"terms"`
}

// Tools exposes the response selector as MCP tools.
type Tools struct {
	selector *responder.Selector
	logger   *zap.Logger
}

func NewTools(selector *responder.Selector, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{selector: selector, logger: logger}
}

// SelectResponse returns the canned reply for a message.
func (t *Tools) SelectResponse(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[SelectParams]) (*mcp.CallToolResultFor[any], error) {
	msg := strings.TrimSpace(params.Arguments.Message)
	if msg == "" {
		return &mcp.CallToolResultFor[any]{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "message is required"},
			},
		}, nil
	}

	m := t.selector.Resolve(msg)
	t.logger.Debug("select_response", zap.String("rule", m.Rule), zap.Bool("fallback", m.Fallback))
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: m.Response},
		},
		Meta: map[string]interface{}{
			"rule":     m.Rule,
			"fallback": m.Fallback,
		},
	}, nil
}

// ListRules lists the rule table in priority order.
func (t *Tools) ListRules(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListRulesParams]) (*mcp.CallToolResultFor[any], error) {
	rules := t.selector.Rules()
	infos := make([]RuleInfo, 0, len(rules))
	var b strings.Builder
	for i, r := range rules {
		infos = append(infos, RuleInfo{Name: r.Name, Terms: r.Terms})
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, r.Name, strings.Join(r.Terms, ", "))
	}
	fmt.Fprintf(&b, "fallback: %s\n", t.selector.Fallback().Name)

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: b.String()},
		},
		Meta: map[string]interface{}{
			"rules":      infos,
			"match_mode": string(t.selector.Mode()),
		},
	}, nil
}

// NewServer registers the tools on a new MCP server.
func NewServer(tools *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "xai-assistant",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "select_response",
		Description: "Returns the Xai-industries assistant reply for a visitor message",
	}, tools.SelectResponse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_rules",
		Description: "Lists the keyword rules in priority order",
	}, tools.ListRules)

	return server
}

// Run serves the tools over stdin/stdout until ctx is done.
func Run(ctx context.Context, tools *Tools, version string) error {
	tools.logger.Info("starting MCP server on stdio")
	return NewServer(tools, version).Run(ctx, mcp.NewStdioTransport())
}
