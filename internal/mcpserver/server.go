// Package mcpserver exposes agent tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/ai"
	"github.com/spigell/job-bot/internal/utils"
)

const maxLogLength = 200

func New(name, version string, tools []ai.Tool, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(name, version)
	for _, tool := range tools {
		s.AddTool(definition(tool), handler(tool, logger))
		logger.Debug("registered mcp tool", zap.String("tool", tool.Name))
	}
	return s
}

// Serve blocks serving s over stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func definition(tool ai.Tool) mcp.Tool {
	def := mcp.NewTool(tool.Name, mcp.WithDescription(tool.Description))

	props := make(map[string]interface{}, len(tool.Params))
	required := make([]string, 0, len(tool.Params))
	for _, p := range tool.Params {
		props[p.Name] = map[string]interface{}{"type": "string", "description": p.Description}
		required = append(required, p.Name)
	}

	def.InputSchema = mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
	return def
}

func handler(tool ai.Tool, logger *zap.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		args := make(map[string]string, len(raw))
		for k, v := range raw {
			if v == nil {
				continue
			}
			args[k] = strings.TrimSpace(fmt.Sprint(v))
		}

		if missing := tool.Missing(args); len(missing) > 0 {
			return mcp.NewToolResultError("missing required fields: " + strings.Join(missing, ", ")), nil
		}

		out, err := tool.Call(ctx, args)
		if err != nil {
			logger.Warn("mcp tool failed", zap.String("tool", tool.Name), zap.Error(err))
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool.Name, err)), nil
		}

		logger.Debug("mcp tool call",
			zap.String("tool", tool.Name),
			zap.String("output", utils.TruncateForLog(out, maxLogLength)),
		)
		return mcp.NewToolResultText(out), nil
	}
}
