package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kakuhq/kaku/internal/prompt"
	"github.com/kakuhq/kaku/internal/retrieval"
	"github.com/kakuhq/kaku/internal/style"
)

const (
	defaultSearchLimit      = 5
	maxSearchLimit          = 50
	defaultMaxContextTokens = 2000
)

const emptyCorpusHint = "The corpus is empty. Upload writing samples with `kaku upload` first."

func (s *Server) handleSearchCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	results, err := s.searcher.Search(ctx, s.owner, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching passages. " + emptyCorpusHint), nil
	}
	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

func (s *Server) handleStyleProfile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.corpus.Profile(ctx, s.owner)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading style profile: %v", err)), nil
	}
	if !p.HasDocuments {
		return mcp.NewToolResultText(emptyCorpusHint), nil
	}
	return mcp.NewToolResultText(formatProfile(p)), nil
}

func (s *Server) handleComposePrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.corpus.Profile(ctx, s.owner)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading style profile: %v", err)), nil
	}

	opts := prompt.Options{
		Profile: p,
		Style:   prompt.ParseStyle(request.GetString("style", "")),
		Purpose: prompt.ParsePurpose(request.GetString("purpose", "")),
	}

	if topic := strings.TrimSpace(request.GetString("topic", "")); topic != "" && p.HasDocuments {
		budget := request.GetInt("max_context_tokens", defaultMaxContextTokens)
		if budget <= 0 {
			budget = defaultMaxContextTokens
		}
		results, err := s.searcher.Search(ctx, s.owner, topic, retrieval.DefaultContextTopK)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("retrieving context: %v", err)), nil
		}
		if text := retrieval.FormatContext(results, budget); text != retrieval.NoRelevantDocuments {
			opts.Context = text
		}
	}

	return mcp.NewToolResultText(prompt.SystemPrompt(opts)), nil
}

func (s *Server) handleListDocuments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.corpus.List(ctx, s.owner)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText(emptyCorpusHint), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d document(s):\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(&sb, "- %s (%d words, %s) id=%s\n", d.Title, d.Metadata.WordCount, d.Metadata.FileType, d.ID)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleAddSample(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	doc, err := s.corpus.AddText(ctx, s.owner, title, content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("adding sample: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Added %q (%d words) as document %s.", doc.Title, doc.Metadata.WordCount, doc.ID)), nil
}

// formatSearchResults renders ranked passages for an agent to read.
func formatSearchResults(results []retrieval.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d passage(s):\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		if r.Chunk.DocumentTitle != "" {
			fmt.Fprintf(&sb, "Source: %s\n", r.Chunk.DocumentTitle)
		}
		fmt.Fprintf(&sb, "Similarity: %.1f%%\n\n", r.Similarity*100)
		sb.WriteString(r.Chunk.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatProfile(p style.Profile) string {
	var sb strings.Builder
	sb.WriteString("Writing style profile\n\n")
	fmt.Fprintf(&sb, "Formality: %.1f/10 (%s)\n", p.FormalityScore, prompt.FormalityLabel(p.FormalityScore))
	fmt.Fprintf(&sb, "Average sentence length: %.1f words (%s)\n", p.AverageSentenceLength, prompt.SentenceLengthLabel(p.AverageSentenceLength))
	fmt.Fprintf(&sb, "Average paragraph length: %.1f words (%s)\n", p.AverageParagraphLength, prompt.ParagraphLengthLabel(p.AverageParagraphLength))
	fmt.Fprintf(&sb, "Vocabulary diversity: %.2f\n", p.VocabularyDiversity)
	if len(p.CommonComplexWords) > 0 {
		fmt.Fprintf(&sb, "Common complex words: %s\n", strings.Join(p.CommonComplexWords, ", "))
	}
	if len(p.CommonTransitions) > 0 {
		fmt.Fprintf(&sb, "Common transitions: %s\n", strings.Join(p.CommonTransitions, ", "))
	}
	if p.SampleText != "" {
		fmt.Fprintf(&sb, "\nSample:\n%s\n", p.SampleText)
	}
	return sb.String()
}
