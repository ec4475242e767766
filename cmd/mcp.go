package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/daikw/angertranslator/internal/annotate"
	"github.com/daikw/angertranslator/internal/persona"
	"github.com/daikw/angertranslator/internal/translator"
)

func handleMCP(ctx context.Context, c *cli.Command) error {
	// stdout carries the protocol
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	gen, err := a.generator(ctx, c)
	if err != nil {
		return describeError(err)
	}
	svc := translator.New(gen,
		translator.WithAdmitter(a.admitter()),
		translator.WithPolicy(a.policy()),
		translator.WithTimeout(a.cfg.RequestTimeout))

	s := newMCPServer(svc, a.identity(ctx))
	log.Debug().Str("generator", gen.Name()).Msg("Serving MCP over stdio")
	return server.NewStdioServer(s).Listen(ctx, os.Stdin, os.Stdout)
}

func personaIDs() []string {
	ids := make([]string, 0, len(persona.All()))
	for _, id := range persona.All() {
		ids = append(ids, string(id))
	}
	return ids
}

func newMCPServer(svc *translator.Service, identity string) *server.MCPServer {
	s := server.NewMCPServer("angertranslator", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("translate",
		mcp.WithDescription("Rewrite a polite message in an angry persona's voice. Returns display text, annotated text and playback segments."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The polite message")),
		mcp.WithString("persona", mcp.Description("Persona id"), mcp.Enum(personaIDs()...)),
		mcp.WithNumber("intensity", mcp.Description("Anger intensity from 0 to 100")),
	), translateTool(svc, identity))

	s.AddTool(mcp.NewTool("segments",
		mcp.WithDescription("Split annotated text into ordered speech and bleep segments."),
		mcp.WithString("annotated", mcp.Required(), mcp.Description("Annotated text with [cues] and **censor spans**")),
	), segmentsTool)

	return s
}

func translateTool(svc *translator.Service, identity string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res, err := svc.Translate(ctx, identity, translator.Request{
			Text:      text,
			Persona:   req.GetString("persona", string(persona.Karen)),
			Intensity: req.GetInt("intensity", 50),
		})
		if err != nil {
			return mcp.NewToolResultError(describeError(err).Error()), nil
		}
		return jsonResult(res)
	}
}

func segmentsTool(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	annotated, err := req.RequireString("annotated")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"display":  annotate.ToDisplayText(annotated),
		"segments": annotate.ParseSegments(annotated),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
