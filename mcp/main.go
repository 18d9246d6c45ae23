// MCP Server for clockfix - exposes the wall-clock codemod to LLMs
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"clockfix/engine"
	"clockfix/render"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Input types for tools
type ScanInput struct {
	Path       string `json:"path" jsonschema:"Path to the Rust project root to scan"`
	Structural bool   `json:"structural,omitempty" jsonschema:"Use ast-grep structural matching instead of line regexes"`
}

type FixInput struct {
	Path       string `json:"path" jsonschema:"Path to the Rust project root to fix in place"`
	Ref        string `json:"ref,omitempty" jsonschema:"When set, only fix files changed vs this git ref"`
	HelperPath string `json:"helper_path,omitempty" jsonschema:"Project-relative helper module path (default src/time_helpers.rs)"`
	ExportPath string `json:"export_path,omitempty" jsonschema:"Project-relative export file path (default src/lib.rs)"`
}

func main() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "clockfix",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_tree",
		Description: "Scan a Rust project for SystemTime::now() call sites and classify each by usage context (timestamp conversion, direct assignment, struct field, function call). Read-only: reports what a fix run would touch without writing anything.",
	}, handleScanTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "apply_fixes",
		Description: "Rewrite SystemTime::now() call sites in a Rust project: inject the canonical time_helpers module, convert epoch-conversion chains to helper calls, point known timestamp struct fields at current_timestamp, and annotate allowed direct assignments in test/utility code. Idempotent: re-running changes nothing.",
	}, handleApplyFixes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Check clockfix MCP server status. Returns version and confirms local filesystem access is available.",
	}, handleStatus)

	// Run server on stdio
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Printf("Server error: %v", err)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

func handleScanTree(ctx context.Context, req *mcp.CallToolRequest, input ScanInput) (*mcp.CallToolResult, any, error) {
	absRoot, err := filepath.Abs(input.Path)
	if err != nil {
		return errorResult("Invalid path: " + err.Error()), nil, nil
	}

	report, err := engine.Run(absRoot, engine.Options{
		DryRun:     true,
		Structural: input.Structural,
	})
	if err != nil {
		return errorResult("Scan error: " + err.Error()), nil, nil
	}

	output := captureOutput(func() {
		render.Summary(report)
	})
	return textResult(output), nil, nil
}

func handleApplyFixes(ctx context.Context, req *mcp.CallToolRequest, input FixInput) (*mcp.CallToolResult, any, error) {
	absRoot, err := filepath.Abs(input.Path)
	if err != nil {
		return errorResult("Invalid path: " + err.Error()), nil, nil
	}

	report, err := engine.Run(absRoot, engine.Options{
		DiffRef:    input.Ref,
		HelperPath: input.HelperPath,
		ExportPath: input.ExportPath,
	})
	if err != nil {
		return errorResult("Fix error: " + err.Error()), nil, nil
	}

	output := captureOutput(func() {
		render.Summary(report)
	})
	return textResult(output), nil, nil
}

// EmptyInput for tools that don't need parameters
type EmptyInput struct{}

func handleStatus(ctx context.Context, req *mcp.CallToolRequest, input EmptyInput) (*mcp.CallToolResult, any, error) {
	cwd, _ := os.Getwd()

	return textResult(fmt.Sprintf(`clockfix MCP server v1.0.0
Status: connected
Local filesystem access: enabled
Working directory: %s

Available tools:
  scan_tree   - Classify SystemTime::now() call sites (read-only)
  apply_fixes - Rewrite call sites in place (idempotent)`, cwd)), nil, nil
}

// ANSI escape code pattern
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// stripANSI removes ANSI color codes from a string
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// captureOutput captures stdout from a function and strips ANSI codes
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return stripANSI(buf.String())
}
