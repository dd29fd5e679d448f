package mcpserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/spigell/job-bot/internal/ai"
)

func upperTool() ai.Tool {
	return ai.Tool{
		Name:        "upper",
		Description: "upper-cases the word",
		Params:      []ai.Param{{Name: "word", Description: "word"}},
		Call: func(_ context.Context, args map[string]string) (string, error) {
			if args["word"] == "boom" {
				return "", errors.New("kaput")
			}
			return strings.ToUpper(args["word"]), nil
		},
	}
}

func callTool(t *testing.T, args any) *mcp.CallToolResult {
	t.Helper()

	req := mcp.CallToolRequest{}
	req.Params.Name = "upper"
	req.Params.Arguments = args

	res, err := handler(upperTool(), zap.NewNop())(context.Background(), req)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()

	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return text.Text
}

func TestHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    any
		isError bool
		expect  string
	}{
		{name: "ok", args: map[string]interface{}{"word": " hi "}, expect: "HI"},
		{name: "missing", args: map[string]interface{}{}, isError: true, expect: "missing required fields: word"},
		{name: "bad format", args: "nope", isError: true, expect: "invalid arguments format"},
		{name: "tool error", args: map[string]interface{}{"word": "boom"}, isError: true, expect: "upper failed: kaput"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := callTool(t, tt.args)
			if res.IsError != tt.isError {
				t.Fatalf("expected isError=%v, got %v", tt.isError, res.IsError)
			}
			if got := resultText(t, res); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestDefinition(t *testing.T) {
	t.Parallel()

	def := definition(upperTool())
	if def.Name != "upper" || def.Description != "upper-cases the word" {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if len(def.InputSchema.Required) != 1 || def.InputSchema.Required[0] != "word" {
		t.Fatalf("unexpected required: %v", def.InputSchema.Required)
	}
	if _, ok := def.InputSchema.Properties["word"]; !ok {
		t.Fatalf("missing property: %v", def.InputSchema.Properties)
	}

	if New("job-bot", "test", []ai.Tool{upperTool()}, nil) == nil {
		t.Fatal("expected server")
	}
}
