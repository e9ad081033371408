package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kakuhq/kaku/internal/prompt"
)

var searchCorpusTool = mcp.NewTool("search_corpus",
	mcp.WithDescription("Semantically search the user's writing samples. Returns the closest passages with their source titles."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of passages to return (default 5)"),
	),
)

var styleProfileTool = mcp.NewTool("style_profile",
	mcp.WithDescription("Get the user's measured writing style: sentence and paragraph length, formality, vocabulary and favourite transitions."),
)

var composePromptTool = mcp.NewTool("compose_prompt",
	mcp.WithDescription("Build a system prompt that makes a language model write in the user's voice, optionally grounded in passages relevant to a topic."),
	mcp.WithString("style",
		mcp.Description("Requested style preset"),
		mcp.Enum(enumStrings(prompt.Styles)...),
	),
	mcp.WithString("purpose",
		mcp.Description("Purpose of the writing"),
		mcp.Enum(enumStrings(prompt.Purposes)...),
	),
	mcp.WithString("topic",
		mcp.Description("What will be written; used to retrieve relevant passages"),
	),
	mcp.WithNumber("max_context_tokens",
		mcp.Description("Token budget for retrieved passages (default 2000)"),
	),
)

var listDocumentsTool = mcp.NewTool("list_documents",
	mcp.WithDescription("List the writing samples in the user's corpus."),
)

var addSampleTool = mcp.NewTool("add_sample",
	mcp.WithDescription("Add a piece of the user's own writing to the corpus."),
	mcp.WithString("title",
		mcp.Required(),
		mcp.Description("Title of the sample"),
	),
	mcp.WithString("content",
		mcp.Required(),
		mcp.Description("Full text of the sample"),
	),
)

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
