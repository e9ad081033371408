package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kakuhq/kaku/internal/corpus"
	"github.com/kakuhq/kaku/internal/embeddings/embeddingstest"
	"github.com/kakuhq/kaku/internal/logger"
	"github.com/kakuhq/kaku/internal/retrieval"
)

const owner = "local"

func newTestServer(t *testing.T, samples map[string]string) *Server {
	t.Helper()
	svc := corpus.NewService(corpus.NewMemoryRepository(), embeddingstest.NewHash(32), logger.Nop())
	for title, text := range samples {
		if _, err := svc.AddText(context.Background(), owner, title, text); err != nil {
			t.Fatalf("AddText(%q): %v", title, err)
		}
	}
	return NewServer(svc, retrieval.New(svc, svc.Embedder()), owner)
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	switch c := r.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	}
	t.Fatalf("unexpected content type %T", r.Content[0])
	return ""
}

var samples = map[string]string{
	"Garden notes": "The tomatoes ripened early this year. However, the basil struggled in the heat.",
	"Team update":  "Our quarterly revenue grew steadily. Furthermore, the support backlog is finally clear.",
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{searchCorpusTool, "search_corpus"},
		{styleProfileTool, "style_profile"},
		{composePromptTool, "compose_prompt"},
		{listDocumentsTool, "list_documents"},
		{addSampleTool, "add_sample"},
	}
	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, nil)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.owner != owner {
		t.Errorf("owner = %q, want %q", srv.owner, owner)
	}
}

func TestHandleSearchCorpus(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t, samples)

	t.Run("basic search", func(t *testing.T) {
		result, err := srv.handleSearchCorpus(ctx, call(map[string]any{"query": "tomatoes and basil", "limit": 1}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "Found 1 passage(s)") {
			t.Errorf("expected one passage, got:\n%s", text)
		}
		if !strings.Contains(text, "Source: ") {
			t.Errorf("expected a source line, got:\n%s", text)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		result, err := srv.handleSearchCorpus(ctx, call(map[string]any{}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		result, err := newTestServer(t, nil).handleSearchCorpus(ctx, call(map[string]any{"query": "anything"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
		if !strings.Contains(resultText(t, result), "kaku upload") {
			t.Error("expected an upload hint")
		}
	})
}

func TestHandleStyleProfile(t *testing.T) {
	ctx := context.Background()

	result, err := newTestServer(t, nil).handleStyleProfile(ctx, call(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resultText(t, result), "corpus is empty") {
		t.Errorf("expected empty corpus message, got %q", resultText(t, result))
	}

	result, err = newTestServer(t, samples).handleStyleProfile(ctx, call(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Formality:", "Average sentence length:", "Vocabulary diversity:"} {
		if !strings.Contains(text, want) {
			t.Errorf("profile missing %q:\n%s", want, text)
		}
	}
}

func TestHandleComposePrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("with corpus and topic", func(t *testing.T) {
		srv := newTestServer(t, samples)
		result, err := srv.handleComposePrompt(ctx, call(map[string]any{
			"style":   "professional",
			"purpose": "business",
			"topic":   "quarterly revenue",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "## The user's writing style") {
			t.Errorf("expected measured style section:\n%s", text)
		}
		if !strings.Contains(text, "## Relevant excerpts") {
			t.Errorf("expected retrieved excerpts:\n%s", text)
		}
	})

	t.Run("without corpus", func(t *testing.T) {
		result, err := newTestServer(t, nil).handleComposePrompt(ctx, call(map[string]any{"topic": "anything"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := resultText(t, result)
		if strings.Contains(text, "## Relevant excerpts") {
			t.Error("empty corpus should not add excerpts")
		}
		if !strings.Contains(text, "has not uploaded any writing samples") {
			t.Errorf("expected generic style guidance:\n%s", text)
		}
	})
}

func TestHandleListAndAdd(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t, nil)

	result, err := srv.handleListDocuments(ctx, call(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resultText(t, result), "corpus is empty") {
		t.Error("expected empty corpus message")
	}

	result, err = srv.handleAddSample(ctx, call(map[string]any{"title": "Note", "content": "A short note about nothing."}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	result, err = srv.handleListDocuments(ctx, call(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "1 document(s)") || !strings.Contains(text, "Note") {
		t.Errorf("unexpected listing:\n%s", text)
	}

	result, err = srv.handleAddSample(ctx, call(map[string]any{"title": "Empty", "content": "   "}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected error for empty content")
	}
}
