package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers the aggregation tools on an MCP server so the
// LLM collaborator can pull restaurant data directly.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerCollect(srv)
	s.registerDishImage(srv)
	s.registerBrief(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// addTool wires a typed handler to the server: decode arguments,
// invoke, marshal the result into text content. Handler errors become
// tool errors, never protocol errors.
func addTool[Req any](srv *mcp.Server, tool *mcp.Tool, handle func(ctx context.Context, req *Req) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, r *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req Req
		if err := json.Unmarshal(r.Params.Arguments, &req); err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("invalid arguments: %w", err))
			return &res, nil
		}
		resp, err := handle(ctx, &req)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func (s *Service) registerCollect(srv *mcp.Server) {
	type req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}

	tool := &mcp.Tool{
		Name:        "restaurant_collect",
		Description: "Aggregate reviews, menu, photos and ratings for a restaurant from all configured providers",
		InputSchema: inputSchema(map[string]any{
			"name":    map[string]any{"type": "string", "description": "Restaurant name"},
			"address": map[string]any{"type": "string", "description": "Street address"},
		}, []string{"name", "address"}),
	}

	addTool(srv, tool, func(ctx context.Context, r *req) (any, error) {
		return s.CollectRestaurantData(ctx, r.Name, r.Address)
	})
}

func (s *Service) registerDishImage(srv *mcp.Server) {
	type req struct {
		Restaurant string `json:"restaurant"`
		Dish       string `json:"dish"`
		Location   string `json:"location"`
	}

	tool := &mcp.Tool{
		Name:        "dish_image_search",
		Description: "Find an image for a specific dish at a restaurant; is_reference marks generic stock imagery",
		InputSchema: inputSchema(map[string]any{
			"restaurant": map[string]any{"type": "string", "description": "Restaurant name"},
			"dish":       map[string]any{"type": "string", "description": "Dish name"},
			"location":   map[string]any{"type": "string", "description": "City or neighborhood, optional"},
		}, []string{"restaurant", "dish"}),
	}

	addTool(srv, tool, func(ctx context.Context, r *req) (any, error) {
		return s.SearchDishImage(ctx, r.Restaurant, r.Dish, r.Location), nil
	})
}

func (s *Service) registerBrief(srv *mcp.Server) {
	type req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}

	tool := &mcp.Tool{
		Name:        "restaurant_brief",
		Description: "Render the aggregated restaurant record as a plain-text analysis brief",
		InputSchema: inputSchema(map[string]any{
			"name":    map[string]any{"type": "string", "description": "Restaurant name"},
			"address": map[string]any{"type": "string", "description": "Street address"},
		}, []string{"name", "address"}),
	}

	addTool(srv, tool, func(ctx context.Context, r *req) (any, error) {
		data, err := s.CollectRestaurantData(ctx, r.Name, r.Address)
		if err != nil {
			return nil, err
		}
		return FormatForAnalysis(data), nil
	})
}
