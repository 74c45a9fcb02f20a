package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"codedoc/internal/index"
	"codedoc/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing codebase question answering tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	idx, err := index.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	s := mcpserver.NewMCPServer("codedoc", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(askCodebaseTool(), makeAskHandler(idx))
	s.AddTool(searchCodebaseTool(), makeSearchHandler(idx))
	s.AddTool(ingestDirectoryTool(), makeIngestHandler(idx))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func askCodebaseTool() mcp.Tool {
	return mcp.NewTool("ask_codebase",
		mcp.WithDescription("Answer a question about the ingested codebase. Retrieves relevant chunks, follows calls and imports to related code, and asks the language model."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural language question about the code"),
		),
	)
}

func searchCodebaseTool() mcp.Tool {
	return mcp.NewTool("search_codebase",
		mcp.WithDescription("Semantically search the ingested codebase. Returns the closest code chunks with file paths and similarity scores."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword query to search the codebase"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to return (default top_k)"),
		),
	)
}

func ingestDirectoryTool() mcp.Tool {
	return mcp.NewTool("ingest_directory",
		mcp.WithDescription("Ingest and index a directory so later questions can be answered from it."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(false),
			DestructiveHint: mcp.ToBoolPtr(true),
			IdempotentHint:  mcp.ToBoolPtr(true),
			OpenWorldHint:   mcp.ToBoolPtr(false),
		}),
		mcp.WithString("directory",
			mcp.Required(),
			mcp.Description("Path of the directory to ingest"),
		),
	)
}

// --- Handler factories ---

func makeAskHandler(idx *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		if question == "" {
			return mcp.NewToolResultError("question is required"), nil
		}
		answer, err := idx.Ask(ctx, question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatAnswer(answer)), nil
	}
}

func makeSearchHandler(idx *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		results, err := idx.Search(ctx, query, req.GetInt("k", 0))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatSearchResults(query, results)), nil
	}
}

func makeIngestHandler(idx *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dir := req.GetString("directory", "")
		if dir == "" {
			return mcp.NewToolResultError("directory is required"), nil
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		stats, err := idx.Index(ctx, abs, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ingest failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Ingested %d files into %d chunks from %s.",
			stats.FilesIngested, stats.Chunks, abs)), nil
	}
}

// --- Formatting helpers ---

func formatAnswer(answer *index.Answer) string {
	var sb strings.Builder
	sb.WriteString(answer.Text)
	if len(answer.Context) > 0 {
		sb.WriteString("\n\n## Sources\n\n")
		for _, c := range answer.Context {
			fmt.Fprintf(&sb, "- `%s` (chunk %d)", c.FilePath, c.ChunkIndex)
			if c.Name != "" {
				fmt.Fprintf(&sb, " %s %s", c.ChunkType, c.Name)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatSearchResults(query string, results []store.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d chunks)\n\n", query, len(results))

	for i, r := range results {
		c := r.Chunk
		fmt.Fprintf(&sb, "### Result %d: `%s` (chunk %d)\n\n", i+1, c.FilePath, c.ChunkIndex)
		if c.Name != "" {
			fmt.Fprintf(&sb, "**Kind:** %s  \n**Name:** %s  \n", c.ChunkType, c.Name)
		}
		fmt.Fprintf(&sb, "**Lines:** %d-%d  \n**Score:** %.3f\n\n", c.StartLine, c.EndLine, r.Score)
		fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", strings.TrimPrefix(c.FileType, "."), c.Content)
	}

	return sb.String()
}
