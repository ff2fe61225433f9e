package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/sson-dev/sson/matcher"
	"github.com/sson-dev/sson/strategy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose extract/convert/filter as MCP tools over stdio",
	RunE:  runServe,
}

// extractInput, convertInput, and filterInput are the JSON-schema-backed
// argument shapes for each MCP tool: a raw JSON document plus the same
// NAME[.GROUP][:DEFINITION] matcher/handler syntax the CLI subcommands
// accept, so a caller doesn't need to learn a second configuration
// language to drive sson through MCP instead of a pipe.
type extractInput struct {
	Document   string   `json:"document" jsonschema:"the JSON document to extract from"`
	Matchers   []string `json:"matchers" jsonschema:"one or more NAME[.GROUP][:DEFINITION] path matchers"`
	ExportPath bool     `json:"export_path,omitempty" jsonschema:"include each item's path alongside its bytes"`
}

type extractOutput struct {
	JobID string          `json:"job_id"`
	Items []extractRecord `json:"items"`
}

type convertInput struct {
	Document string   `json:"document" jsonschema:"the JSON document to convert"`
	Matchers []string `json:"matchers" jsonschema:"NAME[.GROUP][:DEFINITION] path matchers, one group per handler"`
	Handlers []string `json:"handlers" jsonschema:"NAME[.GROUP][:DEFINITION] handlers, one per matcher group"`
}

type convertOutput struct {
	JobID    string `json:"job_id"`
	Document string `json:"document"`
}

type filterInput struct {
	Document string   `json:"document" jsonschema:"the JSON document to filter"`
	Matchers []string `json:"matchers" jsonschema:"NAME[.GROUP][:DEFINITION] path matchers naming regions to remove"`
	Handlers []string `json:"handlers,omitempty" jsonschema:"optional NAME[.GROUP][:DEFINITION] handlers to run over removed regions"`
}

type filterOutput struct {
	JobID    string `json:"job_id"`
	Document string `json:"document"`
}

func runServe(cmd *cobra.Command, _ []string) error {
	server := mcp.NewServer(&mcp.Implementation{Name: "sson", Version: "0.1.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract",
		Description: "Yield matched regions of a JSON document as independent sub-documents",
	}, serveExtract)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert",
		Description: "Replace matched regions of a JSON document with a handler's output",
	}, serveConvert)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "filter",
		Description: "Remove matched regions from a JSON document while keeping it valid",
	}, serveFilter)

	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}

func serveExtract(ctx context.Context, _ *mcp.CallToolRequest, in extractInput) (*mcp.CallToolResult, extractOutput, error) {
	matchers, err := matcherGroups(in.Matchers)
	if err != nil {
		return nil, extractOutput{}, err
	}
	if len(matchers) == 0 {
		return nil, extractOutput{}, fmt.Errorf("extract: at least one matcher is required")
	}
	var combined matcher.Matcher
	for _, m := range matchers {
		if combined == nil {
			combined = m
		} else {
			combined = matcher.Or(combined, m)
		}
	}

	ex := strategy.NewExtract(combined, in.ExportPath)
	items, err := ex.Process([]byte(in.Document))
	if err != nil {
		return nil, extractOutput{}, err
	}
	tail, err := ex.Terminate()
	if err != nil {
		return nil, extractOutput{}, err
	}
	items = append(items, tail...)

	out := extractOutput{JobID: uuid.NewString(), Items: make([]extractRecord, 0, len(items))}
	for _, item := range items {
		rec := extractRecord{Data: item.Bytes}
		if item.HasPath {
			rec.Path = item.Path
		}
		out.Items = append(out.Items, rec)
	}
	return nil, out, nil
}

func serveConvert(ctx context.Context, _ *mcp.CallToolRequest, in convertInput) (*mcp.CallToolResult, convertOutput, error) {
	matchers, err := matcherGroups(in.Matchers)
	if err != nil {
		return nil, convertOutput{}, err
	}
	handlers, err := handlerGroups(ctx, in.Handlers)
	if err != nil {
		return nil, convertOutput{}, err
	}
	for group := range matchers {
		if handlers[group] == nil {
			return nil, convertOutput{}, fmt.Errorf("convert: matcher group %q has no bound handler", group)
		}
	}

	cv := strategy.NewConvert(bindings(matchers, handlers)...)
	frames, err := cv.Process([]byte(in.Document))
	if err != nil {
		return nil, convertOutput{}, err
	}
	tail, err := cv.Terminate()
	if err != nil {
		return nil, convertOutput{}, err
	}
	frames = append(frames, tail...)
	return nil, convertOutput{JobID: uuid.NewString(), Document: string(flattenFrames(frames))}, nil
}

func serveFilter(ctx context.Context, _ *mcp.CallToolRequest, in filterInput) (*mcp.CallToolResult, filterOutput, error) {
	matchers, err := matcherGroups(in.Matchers)
	if err != nil {
		return nil, filterOutput{}, err
	}
	handlers, err := handlerGroups(ctx, in.Handlers)
	if err != nil {
		return nil, filterOutput{}, err
	}

	fl := strategy.NewFilter(bindings(matchers, handlers)...)
	frames, err := fl.Process([]byte(in.Document))
	if err != nil {
		return nil, filterOutput{}, err
	}
	tail, err := fl.Terminate()
	if err != nil {
		return nil, filterOutput{}, err
	}
	frames = append(frames, tail...)
	return nil, filterOutput{JobID: uuid.NewString(), Document: string(flattenFrames(frames))}, nil
}
