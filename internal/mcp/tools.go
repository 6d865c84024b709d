package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/transmute-lang/transmute/internal/ir"
)

// SymbolInfo is the wire form of one resolved symbol.
type SymbolInfo struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	ID    uint32 `json:"id"`
	Depth int    `json:"depth"`
}

// DepInfo is the wire form of one resolved include.
type DepInfo struct {
	Path  string `json:"path"`
	Nodes int    `json:"nodes"`
}

// AddResolveTool registers the transmute_resolve tool.
func AddResolveTool(s *server.MCPServer, engine *Engine) {
	tool := mcp.NewTool(
		"transmute_resolve",
		mcp.WithDescription("Resolve an identifier against the loaded translation unit. Returns every named declaration whose last name segment matches, visible from the asking symbol's nesting level."),
		mcp.WithString("identifier",
			mcp.Required(),
			mcp.Description("Bare identifier to resolve (e.g. 'helper')")),
		mcp.WithString("asking",
			mcp.Required(),
			mcp.Description("Qualified name of the symbol asking (e.g. 'NS.Foo.bar')")),
		mcp.WithBoolean("same_level",
			mcp.Description("Also return declarations at the asking symbol's own nesting level (default: true)")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, resolveHandler(engine))
}

func resolveHandler(engine *Engine) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments"), nil
		}
		identifier, _ := args["identifier"].(string)
		asking, _ := args["asking"].(string)
		if identifier == "" || asking == "" {
			return mcp.NewToolResultError("identifier and asking are required"), nil
		}
		sameLevel := true
		if v, ok := args["same_level"].(bool); ok {
			sameLevel = v
		}

		askingNode, ok := engine.Graph.NodeByName(asking)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown symbol: %s", asking)), nil
		}

		var out []SymbolInfo
		for _, node := range engine.Graph.ResolveName(identifier, askingNode, sameLevel) {
			out = append(out, SymbolInfo{
				Name:  node.QualifiedName,
				Kind:  node.Kind(),
				ID:    node.ID,
				Depth: ir.NameDepth(node.QualifiedName),
			})
		}
		return jsonResult(out)
	}
}

// AddDepsTool registers the transmute_deps tool.
func AddDepsTool(s *server.MCPServer, engine *Engine) {
	tool := mcp.NewTool(
		"transmute_deps",
		mcp.WithDescription("List the include files resolved for the loaded translation unit."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	s.AddTool(tool, depsHandler(engine))
}

func depsHandler(engine *Engine) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var out []DepInfo
		for _, inc := range engine.Includes {
			out = append(out, DepInfo{
				Path:  inc.Root.QualifiedName,
				Nodes: len(inc.Nodes),
			})
		}
		return jsonResult(out)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
